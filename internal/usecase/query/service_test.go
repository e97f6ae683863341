package query

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/prospect/internal/domain"
)

type mockExecutor struct {
	lastQuery string
	rs        domain.RowSet
	err       error
}

func (m *mockExecutor) ReadQuery(_ context.Context, query string) (domain.RowSet, error) {
	m.lastQuery = query
	return m.rs, m.err
}

func (m *mockExecutor) Tables(_ context.Context) ([]string, error) { return nil, nil }

func (m *mockExecutor) TableSchema(_ context.Context, table string) (domain.TableSchema, error) {
	return domain.TableSchema{Name: table}, nil
}

func TestExecute_RejectsNonSelect(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec, 50, 1000)

	for _, q := range []string{
		"DELETE FROM companies",
		"INSERT INTO companies VALUES (1)",
		"UPDATE companies SET name = 'x'",
		"DROP TABLE companies",
		"TRUNCATE companies",
		"",
		"EXPLAIN SELECT 1",
	} {
		if _, err := svc.Execute(context.Background(), q, 0); !errors.Is(err, domain.ErrQueryNotReadOnly) {
			t.Errorf("query %q: expected ErrQueryNotReadOnly, got %v", q, err)
		}
	}
	if exec.lastQuery != "" {
		t.Errorf("rejected query still reached the executor: %q", exec.lastQuery)
	}
}

func TestExecute_RejectsModificationInsideSelect(t *testing.T) {
	svc := New(&mockExecutor{}, 50, 1000)

	q := "SELECT 1; DROP TABLE companies"
	if _, err := svc.Execute(context.Background(), q, 0); !errors.Is(err, domain.ErrQueryNotReadOnly) {
		t.Fatalf("expected ErrQueryNotReadOnly, got %v", err)
	}
}

func TestExecute_AcceptsSelectAndWithSelect(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec, 50, 1000)

	for _, q := range []string{
		"SELECT id FROM companies",
		"WITH top AS (SELECT id FROM companies) SELECT * FROM top",
	} {
		if _, err := svc.Execute(context.Background(), q, 0); err != nil {
			t.Errorf("query %q: unexpected error %v", q, err)
		}
	}
}

func TestExecute_AppendsDefaultLimit(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec, 50, 1000)

	if _, err := svc.Execute(context.Background(), "SELECT id FROM companies", 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(exec.lastQuery, "LIMIT 50") {
		t.Errorf("expected LIMIT 50 appended, got %q", exec.lastQuery)
	}
}

func TestExecute_KeepsExistingLimit(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec, 50, 1000)

	q := "SELECT id FROM companies LIMIT 5"
	if _, err := svc.Execute(context.Background(), q, 0); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.lastQuery != q {
		t.Errorf("query with LIMIT was rewritten: %q", exec.lastQuery)
	}
}

func TestExecute_CapsLimitAtMax(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec, 50, 1000)

	if _, err := svc.Execute(context.Background(), "SELECT id FROM companies", 99999); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(exec.lastQuery, "LIMIT 1000") {
		t.Errorf("expected LIMIT capped at 1000, got %q", exec.lastQuery)
	}
}

func TestExecute_TrimsTrailingSemicolonBeforeLimit(t *testing.T) {
	exec := &mockExecutor{}
	svc := New(exec, 50, 1000)

	if _, err := svc.Execute(context.Background(), "SELECT id FROM companies;", 10); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if exec.lastQuery != "SELECT id FROM companies LIMIT 10" {
		t.Errorf("unexpected bounded query: %q", exec.lastQuery)
	}
}
