package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"

	"verigate/internal/audit"
	jwttoken "verigate/internal/jwt_token"
	"verigate/internal/platform/config"
	"verigate/internal/platform/httpserver"
	"verigate/internal/platform/logger"
	"verigate/internal/platform/redis"
	httptransport "verigate/internal/transport/http"
	"verigate/internal/verification/credentials"
	"verigate/internal/verification/extraction"
	"verigate/internal/verification/facematch"
	"verigate/internal/verification/handler"
	"verigate/internal/verification/metrics"
	"verigate/internal/verification/pipeline"
	"verigate/internal/verification/risk"
	"verigate/internal/verification/service"
	"verigate/internal/verification/store"
	"verigate/internal/verification/verdict"
)

// main wires high-level dependencies and keeps the server lifecycle small.
// Business logic lives in the internal packages.
func main() {
	cfg := config.FromEnv()
	log := logger.New()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := redis.New(cfg.Redis())
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	requests, closeDB, err := buildRequestStore(ctx, cfg)
	if err != nil {
		log.Error("failed to initialize request store", "error", err)
		os.Exit(1)
	}
	defer closeDB()

	var verdicts store.VerdictCache
	if redisClient != nil {
		verdicts = store.NewRedisVerdictCache(redisClient, config.VerdictCacheTTL)
	} else {
		verdicts = store.NewInMemoryVerdictCache()
	}

	auditStore := audit.NewInMemoryStore()
	publisher := audit.NewPublisher(auditStore, 256, log)
	go func() {
		if err := audit.NewWorker(publisher, log).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("audit worker stopped", "error", err)
		}
	}()

	orch := pipeline.NewOrchestrator(
		buildExtractor(cfg, log),
		facematch.NewAdapter(&facematch.MockDetectionClient{}, facematch.Thresholds{
			Match:   cfg.Scoring.FaceMatchThreshold,
			NoMatch: cfg.Scoring.FaceNoMatchThreshold,
		}, log),
		credentials.NewAdapter(&credentials.MockPlausibilityClient{}, log),
		risk.NewScorer(cfg.Scoring, &risk.MockMLClient{}, log),
		verdict.NewIssuer(cfg.Scoring),
		log,
		metrics.New())

	svc := service.New(requests, verdicts, orch, publisher, log)

	jwtService := jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer)
	verifications := handler.New(svc, log, jwttoken.NewMiddlewareAdapter(jwtService))
	router := httptransport.NewRouter(verifications, redisClient)

	srv := httpserver.New(cfg.Addr, router)
	log.Info("starting verigate", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			stop()
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}

// buildRequestStore selects Postgres when a DSN is configured and falls back
// to the in-memory store otherwise.
func buildRequestStore(ctx context.Context, cfg config.Server) (store.RequestStore, func(), error) {
	if cfg.PostgresDSN == "" {
		return store.NewInMemoryRequestStore(), func() {}, nil
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	pg := store.NewPostgresRequestStore(db)
	if err := pg.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}
	return pg, func() { db.Close() }, nil
}

// buildExtractor assembles the primary/fallback strategy chain. The LLM text
// structurer is only wired when an API key is configured; the heuristic
// structurer remains as its fallback either way.
func buildExtractor(cfg config.Server, log *slog.Logger) *extraction.Adapter {
	heuristic := extraction.NewHeuristicStructurer()

	var structurer extraction.TextStructurer = heuristic
	if cfg.AnthropicAPIKey != "" {
		structurer = extraction.NewLLMStructurer(cfg.AnthropicAPIKey, cfg.AnthropicModel, heuristic)
	}

	return extraction.NewAdapter(log,
		extraction.NewDocumentAIStrategy(&extraction.MockDocumentAIClient{}),
		extraction.NewVisionStrategy(&extraction.MockVisionClient{}, structurer),
	)
}
