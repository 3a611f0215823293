package obs

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Process-wide counters for the command, transaction, workflow and event layers.
var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clierp_commands_total",
			Help: "Dispatched CLI commands by name and outcome.",
		},
		[]string{"command", "status"},
	)

	transactionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clierp_transactions_total",
			Help: "Database transactions by outcome (commit, rollback).",
		},
		[]string{"outcome"},
	)

	eventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clierp_events_published_total",
			Help: "Domain events published by type.",
		},
		[]string{"type"},
	)

	eventHandlerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clierp_event_handler_failures_total",
			Help: "Domain event handler failures by event type.",
		},
		[]string{"type"},
	)

	workflowSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "clierp_workflow_steps_total",
			Help: "Workflow step executions by workflow and outcome.",
		},
		[]string{"workflow", "status"},
	)
)

// Init registers the metrics in the default registry.
func Init() {
	prometheus.MustRegister(
		commandsTotal,
		transactionsTotal,
		eventsPublished,
		eventHandlerFailures,
		workflowSteps,
	)
}

func CountCommand(name, status string) { commandsTotal.WithLabelValues(name, status).Inc() }

func CountTransaction(outcome string) { transactionsTotal.WithLabelValues(outcome).Inc() }

func CountEvent(eventType string) { eventsPublished.WithLabelValues(eventType).Inc() }

func CountHandlerFailure(eventType string) {
	eventHandlerFailures.WithLabelValues(eventType).Inc()
}

func CountWorkflowStep(workflow, status string) {
	workflowSteps.WithLabelValues(workflow, status).Inc()
}
