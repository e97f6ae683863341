package health

import (
	"context"
	"errors"
	"testing"
)

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

type mockChecker struct{ err error }

func (m *mockChecker) HealthCheck(context.Context) error { return m.err }

func TestCheck_AllHealthy(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{}, &mockChecker{})

	rep := svc.Check(context.Background())
	if rep.Status != Healthy {
		t.Errorf("expected ok, got %s", rep.Status)
	}
	for _, name := range []string{"chunk_store", "record_store", "embedding"} {
		if rep.Checks[name] != CheckOK {
			t.Errorf("check %s = %s, want ok", name, rep.Checks[name])
		}
	}
}

func TestCheck_DegradedOnAnyFailure(t *testing.T) {
	svc := New(&mockPinger{err: errors.New("down")}, &mockPinger{}, &mockChecker{})

	rep := svc.Check(context.Background())
	if rep.Status != Degraded {
		t.Errorf("expected degraded, got %s", rep.Status)
	}
	if rep.Checks["chunk_store"] != CheckError {
		t.Errorf("chunk_store = %s, want error", rep.Checks["chunk_store"])
	}
	if rep.Checks["record_store"] != CheckOK {
		t.Errorf("record_store = %s, want ok", rep.Checks["record_store"])
	}
}

func TestCheck_NilEmbeddingIsSkipped(t *testing.T) {
	svc := New(&mockPinger{}, &mockPinger{}, nil)

	rep := svc.Check(context.Background())
	if rep.Status != Healthy {
		t.Errorf("expected ok without an embedding provider, got %s", rep.Status)
	}
	if _, ok := rep.Checks["embedding"]; ok {
		t.Error("embedding check reported despite nil provider")
	}
}
