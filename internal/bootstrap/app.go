package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-insights/internal/analyses"
	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
	"resume-insights/internal/services/health"
	"resume-insights/internal/shared/config"
	"resume-insights/internal/shared/server"
	"resume-insights/internal/shared/storage/db"
	"resume-insights/internal/shared/telemetry"
	"resume-insights/internal/trends"
)

// App holds shared dependencies for the API process.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Redis    *redis.Client
	Relay    *trends.RedisRelay
	Analyses *analyses.Service
	Trends   *trends.Service
	Health   *health.Service
}

// Build connects storage, constructs providers and services, and wires the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	redisClient, err := buildRedis(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{Config: cfg, DB: sqlDB, Redis: redisClient, Health: health.NewService()}
	if err := app.buildServices(ctx); err != nil {
		app.Close()
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Analyses: analyses.NewHandler(app.Analyses, cfg.UploadMaxBytes),
		Trends:   trends.NewHandler(app.Trends),
		Health:   app.Health,
	})
	return app, nil
}

// Start runs background workers until ctx is done.
func (a *App) Start(ctx context.Context) {
	if a.Relay == nil {
		return
	}
	go func() {
		if err := a.Relay.Run(ctx); err != nil {
			telemetry.Error("trends.relay.stopped", map[string]any{"error": err.Error()})
		}
	}()
}

// Close releases connections.
func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	closeDB(a.DB)
}

func (a *App) buildServices(ctx context.Context) error {
	providers, err := BuildProviders(ctx, a.Config)
	if err != nil {
		return err
	}

	var (
		repo  analyses.Repo
		store trends.Store
	)
	if a.DB != nil {
		repo = &analyses.PGRepo{DB: a.DB}
		store = &trends.PGStore{DB: a.DB}
		database := a.DB
		a.Health.Register("postgres", func(ctx context.Context) error {
			return db.Ping(ctx, database, 0)
		})
	} else {
		repo = analyses.NewMemoryRepo()
		store = trends.NewMemoryStore(0)
	}

	registry := trends.NewRegistry()
	a.Trends = &trends.Service{Store: store, Registry: registry}
	if a.Redis != nil {
		a.Relay = trends.NewRedisRelay(a.Redis, trends.DefaultChannel, registry)
		a.Trends.Relay = a.Relay
		client := a.Redis
		a.Health.Register("redis", func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		})
	}

	svc, err := NewAnalysisService(ctx, a.Config, providers, repo)
	if err != nil {
		return err
	}
	svc.Trends = a.Trends
	a.Analyses = svc
	return nil
}

// NewAnalysisService wires the extraction runtime and the provider orchestrator.
func NewAnalysisService(ctx context.Context, cfg config.Config, providers []llm.Provider, repo analyses.Repo) (*analyses.Service, error) {
	opts := extract.DefaultRuntimeOptions()
	if cfg.ExtractMaxConcurrent > 0 {
		opts.MaxConcurrent = int64(cfg.ExtractMaxConcurrent)
	}
	rt, err := extract.SharedRuntime(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("extract runtime: %w", err)
	}

	policy := analyses.DefaultRetryPolicy()
	if cfg.LLMMaxAttempts > 0 {
		policy.MaxAttempts = cfg.LLMMaxAttempts
	}
	if cfg.LLMBaseDelay > 0 {
		policy.BaseDelay = cfg.LLMBaseDelay
	}
	if cfg.LLMTimeout > 0 {
		policy.Timeout = cfg.LLMTimeout
	}
	if cfg.LLMMinTimeout > 0 {
		policy.MinTimeout = cfg.LLMMinTimeout
	}

	return &analyses.Service{
		Extractor:    extract.New(rt),
		Orchestrator: analyses.NewOrchestrator(providers, policy),
		Repo:         repo,
		MaxCourses:   cfg.CourseMaxResults,
	}, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, db.ErrNoDatabaseURL
	}

	sqlDB, err := db.Shared(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.memory_storage", map[string]any{"reason": "database unavailable", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	if cfg.RedisURL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.local_trends", map[string]any{"reason": "redis unavailable", "error": err.Error()})
			return nil, nil
		}
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB == nil {
		return
	}
	if err := sqlDB.Close(); err != nil && !errors.Is(err, sql.ErrConnDone) {
		telemetry.Warn("bootstrap.db_close_failed", map[string]any{"error": err.Error()})
	}
}
