package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status                 `json:"status"`
	Checks map[string]CheckResult `json:"checks"`
}

// Service coordinates health checks over the chunk store, the record store
// and the embedding provider.
type Service struct {
	chunkStore  Pinger
	recordStore Pinger
	embedding   EmbeddingChecker
}

// New creates a Service. embedding can be nil when no provider is configured.
func New(chunkStore, recordStore Pinger, embedding EmbeddingChecker) *Service {
	return &Service{chunkStore: chunkStore, recordStore: recordStore, embedding: embedding}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if err := s.chunkStore.Ping(ctx); err != nil {
		checks["chunk_store"] = CheckError
	} else {
		checks["chunk_store"] = CheckOK
	}

	if err := s.recordStore.Ping(ctx); err != nil {
		checks["record_store"] = CheckError
	} else {
		checks["record_store"] = CheckOK
	}

	if s.embedding != nil {
		if err := s.embedding.HealthCheck(ctx); err != nil {
			checks["embedding"] = CheckError
		} else {
			checks["embedding"] = CheckOK
		}
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}
