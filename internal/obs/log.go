package obs

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

var (
	loggerOnce sync.Once
	logger     *log.Logger

	verboseMu sync.RWMutex
	verbose   bool
)

// Logger returns the shared structured logger used across the application.
func Logger() *log.Logger {
	loggerOnce.Do(func() {
		logger = log.New(os.Stderr, "", 0)
	})
	return logger
}

// SetVerbose toggles emission of debug-level lines.
func SetVerbose(v bool) {
	verboseMu.Lock()
	verbose = v
	verboseMu.Unlock()
}

// Log emits a structured JSON log line with a level and message.
func Log(level, msg string, fields map[string]any) {
	if level == "debug" {
		verboseMu.RLock()
		v := verbose
		verboseMu.RUnlock()
		if !v {
			return
		}
	}
	entry := map[string]any{
		"ts":    time.Now().UTC().Format(time.RFC3339Nano),
		"level": level,
		"msg":   msg,
	}
	for k, v := range fields {
		entry[k] = v
	}
	data, err := json.Marshal(entry)
	if err != nil {
		Logger().Println(`{"level":"error","msg":"log marshal failed"}`)
		return
	}
	Logger().Println(string(data))
}

func Debug(msg string, fields map[string]any) { Log("debug", msg, fields) }
func Info(msg string, fields map[string]any)  { Log("info", msg, fields) }
func Warn(msg string, fields map[string]any)  { Log("warn", msg, fields) }
func Error(msg string, fields map[string]any) { Log("error", msg, fields) }
