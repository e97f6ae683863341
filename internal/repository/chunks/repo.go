package chunks

import (
	"context"
	"fmt"

	"github.com/kailas-cloud/prospect/internal/db"
	"github.com/kailas-cloud/prospect/internal/domain"
)

// Hash field names of an indexed chunk document.
const (
	FieldCompanyID   = "company_id"
	FieldCompanyName = "company_name"
	FieldIndustry    = "industry"
	FieldContent     = "content"
	FieldVector      = "vector"
)

// store is the consumer interface for chunk search.
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo searches indexed company chunks by vector similarity.
type Repo struct {
	store     store
	indexName string
}

// New creates a chunk search repository over the given FT index.
func New(s store, indexName string) *Repo {
	return &Repo{store: s, indexName: indexName}
}

// Match returns up to limit chunk rows with similarity >= threshold,
// most similar first. limit bounds chunk rows, not distinct companies.
func (r *Repo) Match(
	ctx context.Context, vector []float32, threshold float64, limit int,
) ([]domain.ChunkMatch, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Vector:       vector,
		K:            limit,
		ReturnFields: []string{FieldCompanyID, FieldCompanyName, FieldIndustry, FieldContent},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", r.indexName, err)
	}

	if sr == nil || len(sr.Entries) == 0 {
		return nil, nil
	}

	matches := make([]domain.ChunkMatch, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if entry.Score < threshold {
			continue
		}

		companyID := entry.Fields[FieldCompanyID]
		if companyID == "" {
			// A chunk without a company id cannot be aggregated; skip it.
			continue
		}

		name := entry.Fields[FieldCompanyName]
		if name == "" {
			name = domain.UnknownCompanyName
		}

		matches = append(matches, domain.ChunkMatch{
			CompanyID:   companyID,
			CompanyName: name,
			Industry:    entry.Fields[FieldIndustry],
			Content:     entry.Fields[FieldContent],
			Similarity:  entry.Score,
		})
	}

	return matches, nil
}
