package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gfinder/docchat/internal/config"
	"github.com/gfinder/docchat/internal/db"
	dbRedis "github.com/gfinder/docchat/internal/db/redis"
	"github.com/gfinder/docchat/internal/domain/query"
	logpkg "github.com/gfinder/docchat/internal/logger"
	"github.com/gfinder/docchat/internal/metrics"
	"github.com/gfinder/docchat/internal/repository/documents"
	"github.com/gfinder/docchat/internal/repository/embcache"
	"github.com/gfinder/docchat/internal/repository/refdata"
	chiTransport "github.com/gfinder/docchat/internal/transport/chi"
	openaiTransport "github.com/gfinder/docchat/internal/transport/openai"
	healthuc "github.com/gfinder/docchat/internal/usecase/health"
	pipelineuc "github.com/gfinder/docchat/internal/usecase/pipeline"
	rankuc "github.com/gfinder/docchat/internal/usecase/rank"
	"github.com/gfinder/docchat/internal/version"
)

func main() {
	// .env is optional; real deployments set the environment directly.
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

	logger.Info("Starting docchat API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	logger.Info("Connected to document store")

	if err := ensureIndex(ctx, store, cfg.Search); err != nil {
		logger.Fatal("Failed to ensure document index", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterPipelineMetrics()

	ref, err := refdata.Load(cfg.Refdata.RegionsPath, cfg.Refdata.CategoriesPath)
	if err != nil {
		logger.Fatal("Failed to load reference data", zap.Error(err))
	}
	logger.Info("Reference data loaded",
		zap.Int("regions", len(ref.Regions())),
		zap.Int("categories", len(ref.Categories())),
	)

	embedder := buildEmbedder(cfg.Embedding, store, logger)

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		Timeout:     time.Duration(cfg.Generation.TimeoutSec) * time.Second,
		Logger:      logger,
	})

	docRepo := documents.New(store, cfg.Search.IndexName, cfg.Search.KeyPrefix).
		WithTimeout(time.Duration(cfg.Search.TimeoutSec) * time.Second)

	rankSvc := rankuc.New(embedder, cfg.Pipeline.TopK, logger)
	pipeSvc := pipelineuc.New(docRepo, rankSvc, generator, cfg.Search.ResultCap, logger)
	healthSvc := healthuc.New(store, embeddingHealthChecker(embedder))

	server := chiTransport.NewServer(pipeSvc, healthSvc, ref, chiTransport.NewRegistry(), logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

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

// ensureIndex creates the document FT index unless it already exists.
// The fiscal_year_end field carries INDEXMISSING so open-ended fiscal
// records stay queryable via ismissing().
func ensureIndex(ctx context.Context, store db.Store, cfg config.SearchConfig) error {
	exists, err := store.IndexExists(ctx, cfg.IndexName)
	if err != nil {
		return fmt.Errorf("probe index: %w", err)
	}
	if exists {
		return nil
	}

	def := &db.IndexDefinition{
		Name:     cfg.IndexName,
		Prefixes: []string{cfg.KeyPrefix},
		Fields: []db.IndexField{
			{Name: query.FieldTitle, Type: db.IndexFieldText},
			{Name: query.FieldBodyText, Type: db.IndexFieldText},
			{Name: query.FieldRegionCode, Type: db.IndexFieldTag},
			{Name: query.FieldCategory, Type: db.IndexFieldTag},
			{Name: query.FieldFiscalYearStart, Type: db.IndexFieldNumeric},
			{Name: query.FieldFiscalYearEnd, Type: db.IndexFieldNumeric, IndexMissing: true},
		},
	}

	if err := store.CreateIndex(ctx, def); err != nil && !errors.Is(err, db.ErrIndexExists) {
		return fmt.Errorf("create index: %w", err)
	}
	return nil
}

// rankEmbedder is the contract the ranking service needs from the
// embedder chain.
type rankEmbedder interface {
	rankuc.BatchEmbedder
	HealthCheck(ctx context.Context) error
}

// buildEmbedder assembles the embedder chain: OpenAI provider, optionally
// wrapped by the KV-backed cache.
func buildEmbedder(cfg config.EmbeddingConfig, store db.Store, logger *zap.Logger) rankEmbedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Timeout:    time.Duration(cfg.TimeoutSec) * time.Second,
		Provider:   cfg.Provider,
		Logger:     logger,
	})

	logger.Info("Embedder created",
		zap.String("provider", cfg.Provider),
		zap.String("model", cfg.Model),
		zap.Int("dimensions", cfg.Dimensions),
		zap.Bool("cache", cfg.Cache),
	)

	if !cfg.Cache {
		return base
	}
	return &cachedRankEmbedder{
		CachedEmbedder: embcache.New(base, store, metrics.EmbeddingCacheTotal, logger),
		inner:          base,
	}
}

// cachedRankEmbedder keeps the provider's health check reachable behind
// the cache decorator.
type cachedRankEmbedder struct {
	*embcache.CachedEmbedder
	inner *openaiTransport.Embedder
}

func (c *cachedRankEmbedder) HealthCheck(ctx context.Context) error {
	return c.inner.HealthCheck(ctx)
}

// embeddingHealthChecker adapts the embedder chain to health.EmbeddingChecker.
func embeddingHealthChecker(e rankEmbedder) healthuc.EmbeddingChecker {
	return healthCheckFunc(e.HealthCheck)
}

type healthCheckFunc func(ctx context.Context) error

func (f healthCheckFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

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

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
