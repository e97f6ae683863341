package ingest

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/kailas-cloud/prospect/internal/db"
	dbredis "github.com/kailas-cloud/prospect/internal/db/redis"
	"github.com/kailas-cloud/prospect/internal/repository/chunks"
	"github.com/kailas-cloud/prospect/internal/repository/companies"
)

// Source provides companies to index.
type Source interface {
	AllForIndexing(ctx context.Context) ([]companies.CompanyForIndexing, error)
}

// BatchEmbedder vectorizes several texts at once, preserving order.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Sink writes chunk documents and manages the FT index.
type Sink interface {
	HSetMulti(ctx context.Context, items []db.HashSetItem) error
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// Config holds indexing settings.
type Config struct {
	IndexName       string
	KeyPrefix       string
	VectorDim       int
	HNSWM           int
	HNSWEFConstruct int
	ChunkMaxChars   int
	EmbedBatchSize  int
}

// Service builds the chunk index: companies -> sentence chunks -> embeddings
// -> hash documents behind an FT index.
type Service struct {
	source  Source
	embed   BatchEmbedder
	sink    Sink
	chunker *Chunker
	cfg     Config
	logger  *zap.Logger
}

// New creates an indexing service.
func New(source Source, embed BatchEmbedder, sink Sink, cfg Config, logger *zap.Logger) *Service {
	if cfg.EmbedBatchSize <= 0 {
		cfg.EmbedBatchSize = 64
	}
	return &Service{
		source:  source,
		embed:   embed,
		sink:    sink,
		chunker: NewChunker(cfg.ChunkMaxChars),
		cfg:     cfg,
		logger:  logger,
	}
}

// EnsureIndex creates the chunk FT index when it does not exist yet.
func (s *Service) EnsureIndex(ctx context.Context) error {
	exists, err := s.sink.IndexExists(ctx, s.cfg.IndexName)
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     s.cfg.IndexName,
		Prefixes: []string{s.cfg.KeyPrefix},
		Fields: []db.IndexField{
			{Name: chunks.FieldCompanyID, Type: db.IndexFieldTag},
			{Name: chunks.FieldContent, Type: db.IndexFieldText},
			{
				Name:              chunks.FieldVector,
				Type:              db.IndexFieldVector,
				VectorDim:         s.cfg.VectorDim,
				VectorM:           s.cfg.HNSWM,
				VectorEFConstruct: s.cfg.HNSWEFConstruct,
			},
		},
	}
	if err := s.sink.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", s.cfg.IndexName, err)
	}

	s.logger.Info("Created chunk index", zap.String("index", s.cfg.IndexName))
	return nil
}

// Run indexes all companies and returns the number of chunks written.
func (s *Service) Run(ctx context.Context) (int, error) {
	if err := s.EnsureIndex(ctx); err != nil {
		return 0, err
	}

	comps, err := s.source.AllForIndexing(ctx)
	if err != nil {
		return 0, fmt.Errorf("load companies: %w", err)
	}

	type pending struct {
		key    string
		fields map[string]string
		text   string
	}

	var batch []pending
	total := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.text
		}

		vectors, err := s.embed.EmbedBatch(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed batch: %w", err)
		}

		items := make([]db.HashSetItem, len(batch))
		for i, p := range batch {
			p.fields[chunks.FieldVector] = dbredis.VectorToBytes(vectors[i])
			items[i] = db.HashSetItem{Key: p.key, Fields: p.fields}
		}

		if err := s.sink.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("write chunks: %w", err)
		}

		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, comp := range comps {
		parts := s.chunker.Split(comp.Description.String)
		for n, part := range parts {
			batch = append(batch, pending{
				key: s.cfg.KeyPrefix + comp.ID + ":" + strconv.Itoa(n),
				fields: map[string]string{
					chunks.FieldCompanyID:   comp.ID,
					chunks.FieldCompanyName: comp.Name,
					chunks.FieldIndustry:    comp.Industry.String,
					chunks.FieldContent:     part,
				},
				text: part,
			})
			if len(batch) >= s.cfg.EmbedBatchSize {
				if err := flush(); err != nil {
					return total, err
				}
			}
		}
	}
	if err := flush(); err != nil {
		return total, err
	}

	s.logger.Info("Indexing complete",
		zap.Int("companies", len(comps)),
		zap.Int("chunks", total),
	)
	return total, nil
}
