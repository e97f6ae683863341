package search

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prospect/internal/domain"
	"github.com/kailas-cloud/prospect/internal/metrics"
)

// Service turns a free-text query into a ranked list of companies with
// supporting chunk evidence. One chunk row set in, one company list out;
// failures are all-or-nothing and never retried here.
type Service struct {
	embed  domain.Embedder // nil when no provider is configured
	chunks ChunkSearcher
	cache  ResultCache
	logger *zap.Logger
}

// New creates a search aggregator. embed may be nil; Search then fails with
// domain.ErrEmbedderNotConfigured.
func New(embed domain.Embedder, chunks ChunkSearcher, cache ResultCache, logger *zap.Logger) *Service {
	return &Service{embed: embed, chunks: chunks, cache: cache, logger: logger}
}

// Search embeds the query, fetches up to topK chunk rows above threshold,
// groups them by company and ranks companies by their best chunk.
//
// Grouping preserves first-seen company order; the sort by score is stable,
// so ties keep discovery order. When chunk rows disagree on company metadata,
// the first row seen for a company id wins. The session's cached result set
// is replaced wholesale, even by an empty result.
func (s *Service) Search(
	ctx context.Context, session, query string, topK int, threshold float64,
) ([]domain.CompanyMatch, error) {
	if s.embed == nil {
		return nil, domain.ErrEmbedderNotConfigured
	}

	embResult, err := s.embed.Embed(ctx, query)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("vectorize query: %w", err)
	}

	rows, err := s.chunks.Match(ctx, embResult.Embedding, threshold, topK)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("%w: %s", domain.ErrSearchFailed, err)
	}

	matches := groupByCompany(rows)

	s.cache.Put(session, matches)

	metrics.SearchRequestsTotal.WithLabelValues("success").Inc()
	metrics.SearchCompaniesReturned.Observe(float64(len(matches)))

	s.logger.Debug("search aggregated",
		zap.String("session", session),
		zap.Int("chunk_rows", len(rows)),
		zap.Int("companies", len(matches)),
	)

	return matches, nil
}

// ByPosition resolves a 0-based index against the session's cached result
// set. Out-of-bounds returns false rather than an error.
func (s *Service) ByPosition(session string, index int) (domain.CompanyMatch, bool) {
	return s.cache.GetByPosition(session, index)
}

// groupByCompany collapses chunk rows into per-company matches.
func groupByCompany(rows []domain.ChunkMatch) []domain.CompanyMatch {
	buckets := make(map[string]int, len(rows)) // company id -> index in matches
	matches := make([]domain.CompanyMatch, 0, len(rows))

	for _, row := range rows {
		i, ok := buckets[row.CompanyID]
		if !ok {
			i = len(matches)
			buckets[row.CompanyID] = i
			matches = append(matches, domain.CompanyMatch{
				CompanyID:   row.CompanyID,
				CompanyName: row.CompanyName,
				Industry:    row.Industry,
				Score:       row.Similarity,
			})
		}

		m := &matches[i]
		m.Chunks = append(m.Chunks, row)
		if row.Similarity > m.Score {
			m.Score = row.Similarity
		}
	}

	// Stable: equal scores keep first-seen order.
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	for i := range matches {
		m := &matches[i]
		sort.SliceStable(m.Chunks, func(a, b int) bool {
			return m.Chunks[a].Similarity > m.Chunks[b].Similarity
		})
		m.Rank = i + 1
	}

	return matches
}
