package crm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"clierp.org/internal/erperr"
	"clierp.org/internal/pagination"
)

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewService(db), mock
}

func TestCreateCustomerStartsAsLead(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("insert into customers").
		WithArgs("Acme Corp", "sales@acme.test", "555-0100", StatusLead).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(17))

	c, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		Name: " Acme Corp ", Email: "Sales@Acme.TEST", Phone: "555-0100",
	})
	if err != nil {
		t.Fatalf("create customer: %v", err)
	}
	if c.ID != 17 || c.Status != StatusLead || c.Email != "sales@acme.test" {
		t.Fatalf("unexpected customer %+v", c)
	}
}

func TestCreateCustomerRequiresName(t *testing.T) {
	svc, _ := newTestService(t)
	if _, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{}); !errors.Is(err, erperr.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestGetCustomerNotFound(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("select id, name, email, phone, status").
		WithArgs(int64(404)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := svc.GetCustomer(context.Background(), 404); !errors.Is(err, erperr.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSetStatusValidatesAndUpdates(t *testing.T) {
	svc, mock := newTestService(t)

	if err := svc.SetStatus(context.Background(), 1, "vip"); !errors.Is(err, erperr.ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	mock.ExpectExec("update customers set status").
		WithArgs(StatusActive, int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	if err := svc.SetStatus(context.Background(), 1, StatusActive); err != nil {
		t.Fatalf("set status: %v", err)
	}

	mock.ExpectExec("update customers set status").
		WithArgs(StatusActive, int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 0))
	if err := svc.SetStatus(context.Background(), 2, StatusActive); !errors.Is(err, erperr.ErrNotFound) {
		t.Fatalf("expected not found for missing row, got %v", err)
	}
}

func TestListCustomersWithFilter(t *testing.T) {
	svc, mock := newTestService(t)

	now := time.Now()
	mock.ExpectQuery(`select count\(\*\) from customers`).
		WithArgs(StatusActive).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("select id, name, email, phone, status").
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "name", "email", "phone", "status", "created_at", "updated_at"}).
			AddRow(3, "Acme", "sales@acme.test", "", StatusActive, now, now))

	res, err := svc.ListCustomers(context.Background(),
		ListFilter{Status: StatusActive}, pagination.Params{Page: 1, PerPage: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 1 || res.Total != 1 || res.Items[0].Name != "Acme" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestStats(t *testing.T) {
	svc, mock := newTestService(t)

	mock.ExpectQuery("select count").
		WillReturnRows(sqlmock.NewRows(
			[]string{"total", "leads", "active", "inactive"}).AddRow(10, 4, 5, 1))

	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Total != 10 || st.Leads != 4 || st.Active != 5 || st.Inactive != 1 {
		t.Fatalf("unexpected stats %+v", st)
	}
}
