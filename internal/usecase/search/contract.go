package search

import (
	"context"

	"github.com/kailas-cloud/prospect/internal/domain"
)

// ChunkSearcher finds chunk rows near a query vector.
// limit bounds the number of chunk rows, not distinct companies.
type ChunkSearcher interface {
	Match(ctx context.Context, vector []float32, threshold float64, limit int) ([]domain.ChunkMatch, error)
}

// ResultCache retains the most recent ranked result set per session.
type ResultCache interface {
	Put(session string, matches []domain.CompanyMatch)
	GetByPosition(session string, index int) (domain.CompanyMatch, bool)
}
