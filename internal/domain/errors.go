package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrEmbedderNotConfigured signals a missing embedding provider (no API key).
	ErrEmbedderNotConfigured = errors.New("embedding provider not configured")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrSearchFailed signals a similarity-search backend failure.
	ErrSearchFailed = errors.New("similarity search failed")
	// ErrCompanyNotFound signals a missing company record.
	ErrCompanyNotFound = errors.New("company not found")
	// ErrStoreFailed signals a record store failure.
	ErrStoreFailed = errors.New("record store failure")
	// ErrTimeout signals a bounded operation that ran out of time.
	ErrTimeout = errors.New("operation timed out")
	// ErrQueryNotReadOnly signals a rejected non-SELECT query.
	ErrQueryNotReadOnly = errors.New("only SELECT queries are allowed")
)

// TimeoutError wraps ErrTimeout with the bound that was exceeded.
type TimeoutError struct {
	Bound time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("operation timed out after %dms", e.Bound.Milliseconds())
}

func (e *TimeoutError) Unwrap() error { return ErrTimeout }

// NewTimeout creates a timeout error carrying the elapsed bound.
func NewTimeout(bound time.Duration) error {
	return &TimeoutError{Bound: bound}
}
