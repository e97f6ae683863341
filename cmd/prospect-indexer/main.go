// prospect-indexer builds the chunk index: it reads company descriptions
// from Postgres, splits them into sentence chunks, embeds each chunk and
// writes the documents into Redis behind an FT index.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prospect/internal/config"
	dbRedis "github.com/kailas-cloud/prospect/internal/db/redis"
	logpkg "github.com/kailas-cloud/prospect/internal/logger"
	"github.com/kailas-cloud/prospect/internal/metrics"
	companiesrepo "github.com/kailas-cloud/prospect/internal/repository/companies"
	openaiEmb "github.com/kailas-cloud/prospect/internal/transport/openai"
	ingestuc "github.com/kailas-cloud/prospect/internal/usecase/ingest"
)

func main() {
	chunkChars := flag.Int("chunk-chars", 500, "max characters per chunk")
	batchSize := flag.Int("batch", 64, "embedding batch size")
	flag.Parse()

	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	if cfg.Embedding.APIKey == "" {
		logger.Fatal("Embedding API key is required for indexing")
	}
	if cfg.Embedding.Dimensions <= 0 {
		logger.Fatal("embedding.dimensions is required for index creation")
	}

	metrics.Register()

	chunkStore, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Password: cfg.Redis.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create chunk store", zap.Error(err))
	}
	defer chunkStore.Close()

	ctx := context.Background()
	if err := chunkStore.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Chunk store not ready", zap.Error(err))
	}

	recordStore, err := companiesrepo.New(companiesrepo.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	})
	if err != nil {
		logger.Fatal("Failed to create record store", zap.Error(err))
	}
	defer func() { _ = recordStore.Close() }()

	embedder := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})

	svc := ingestuc.New(recordStore, embedder, chunkStore, ingestuc.Config{
		IndexName:       cfg.Search.IndexName,
		KeyPrefix:       cfg.Search.KeyPrefix,
		VectorDim:       cfg.Embedding.Dimensions,
		HNSWM:           cfg.Search.HNSWM,
		HNSWEFConstruct: cfg.Search.HNSWEFConstruct,
		ChunkMaxChars:   *chunkChars,
		EmbedBatchSize:  *batchSize,
	}, logger)

	start := time.Now()
	total, err := svc.Run(ctx)
	if err != nil {
		logger.Fatal("Indexing failed", zap.Int("chunks_written", total), zap.Error(err))
	}

	logger.Info("Done",
		zap.Int("chunks_written", total),
		zap.Duration("elapsed", time.Since(start)),
	)
}
