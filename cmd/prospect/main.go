package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/prospect/internal/config"
	dbRedis "github.com/kailas-cloud/prospect/internal/db/redis"
	"github.com/kailas-cloud/prospect/internal/domain"
	logpkg "github.com/kailas-cloud/prospect/internal/logger"
	"github.com/kailas-cloud/prospect/internal/metrics"
	chunksrepo "github.com/kailas-cloud/prospect/internal/repository/chunks"
	companiesrepo "github.com/kailas-cloud/prospect/internal/repository/companies"
	"github.com/kailas-cloud/prospect/internal/repository/embcache"
	resultsrepo "github.com/kailas-cloud/prospect/internal/repository/results"
	chiTransport "github.com/kailas-cloud/prospect/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/prospect/internal/transport/openai"
	detailuc "github.com/kailas-cloud/prospect/internal/usecase/detail"
	healthuc "github.com/kailas-cloud/prospect/internal/usecase/health"
	queryuc "github.com/kailas-cloud/prospect/internal/usecase/query"
	searchuc "github.com/kailas-cloud/prospect/internal/usecase/search"
	"github.com/kailas-cloud/prospect/internal/version"
)

func main() {
	// .env is optional; real deployments use environment variables.
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

	logger.Info("Starting prospect API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	// Chunk store (Redis)
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
	logger.Info("Connected to chunk store")

	// Record store (Postgres)
	recordStore, err := companiesrepo.New(companiesrepo.Config{
		DSN:          cfg.Postgres.DSN,
		MaxOpenConns: cfg.Postgres.MaxOpenConns,
		MaxIdleConns: cfg.Postgres.MaxIdleConns,
	})
	if err != nil {
		logger.Fatal("Failed to create record store", zap.Error(err))
	}
	defer func() { _ = recordStore.Close() }()

	if err := recordStore.Ping(ctx); err != nil {
		logger.Fatal("Record store not ready", zap.Error(err))
	}
	logger.Info("Connected to record store")

	metrics.Register()

	// Embedder chain: OpenAI -> cache. Constructed once, injected everywhere.
	// A missing API key leaves search unconfigured instead of failing startup:
	// the SQL and detail endpoints still work without embeddings.
	var queryEmbedder domain.Embedder
	var embHealth healthuc.EmbeddingChecker
	if cfg.Embedding.APIKey != "" {
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Logger:     logger,
		})
		queryEmbedder = embcache.New(
			base, chunkStore,
			time.Duration(cfg.Embedding.CacheTTLSec)*time.Second,
			metrics.EmbeddingCacheTotal, logger,
		)
		embHealth = base
		logger.Info("Embedder created",
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	} else {
		logger.Warn("No embedding API key configured; semantic search is disabled")
	}

	// Repositories
	chunkRepo := chunksrepo.New(chunkStore, cfg.Search.IndexName)
	resultCache, err := resultsrepo.New(cfg.Search.SessionCacheSize)
	if err != nil {
		logger.Fatal("Failed to create result cache", zap.Error(err))
	}

	// Use case services
	searchSvc := searchuc.New(queryEmbedder, chunkRepo, resultCache, logger)
	detailSvc := detailuc.New(recordStore)
	querySvc := queryuc.New(recordStore, cfg.Query.DefaultLimit, cfg.Query.MaxLimit)
	healthSvc := healthuc.New(chunkStore, recordStore, embHealth)

	server := chiTransport.NewServer(searchSvc, detailSvc, querySvc, healthSvc, chiTransport.Defaults{
		TopK:          cfg.Search.DefaultTopK,
		Threshold:     cfg.Search.DefaultThreshold,
		DetailTimeout: time.Duration(cfg.Detail.TimeoutMs) * time.Millisecond,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Handle("/metrics", promhttp.Handler())

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
