package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/verifidia/verifidia-engine/pkg/agents"
	"github.com/verifidia/verifidia-engine/pkg/config"
	"github.com/verifidia/verifidia-engine/pkg/database"
	"github.com/verifidia/verifidia-engine/pkg/handlers"
	"github.com/verifidia/verifidia-engine/pkg/llm"
	"github.com/verifidia/verifidia-engine/pkg/lock"
	"github.com/verifidia/verifidia-engine/pkg/middleware"
	"github.com/verifidia/verifidia-engine/pkg/repositories"
	"github.com/verifidia/verifidia-engine/pkg/services"
)

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cfg, err := config.Load(Version)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var logger *zap.Logger
	if cfg.Env == "local" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	logger.Info("Configuration loaded",
		zap.String("env", cfg.Env),
		zap.String("version", cfg.Version),
		zap.String("database", cfg.Database.Host),
		zap.String("ai_provider", cfg.AI.Provider))

	ctx := context.Background()

	// Migrations run over database/sql; the application itself uses pgx pools.
	migrationDB, err := sql.Open("pgx", cfg.Database.ConnectionString())
	if err != nil {
		logger.Fatal("Failed to open migration connection", zap.Error(err))
	}
	if err := database.RunMigrations(migrationDB, cfg.Database.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}
	if err := migrationDB.Close(); err != nil {
		logger.Warn("Failed to close migration connection", zap.Error(err))
	}

	db, err := database.NewConnection(ctx, &database.Config{
		URL:            cfg.Database.ConnectionString(),
		MaxConnections: cfg.Database.MaxConnections,
	})
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	redisClient, err := database.NewRedisClient(&database.RedisConfig{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	if redisClient == nil {
		logger.Info("Redis not configured, recent-articles cache disabled")
	}

	newClient := func(role config.ModelConfig) llm.Client {
		provider, endpoint, model := cfg.AI.Resolve(role)
		client, err := llm.NewFromConfig(llm.Config{
			Provider: llm.Provider(provider),
			Endpoint: endpoint,
			Model:    model,
			APIKey:   cfg.AI.APIKey,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create LLM client",
				zap.String("provider", provider),
				zap.Error(err))
		}
		return client
	}

	researcher := agents.NewResearcher(newClient(cfg.AI.Researcher), logger)
	writer := agents.NewWriter(newClient(cfg.AI.Writer), logger)
	citations := agents.NewCitationFormatter(newClient(cfg.AI.Citations), logger)
	reviewer := agents.NewReviewer(newClient(cfg.AI.Reviewer), logger)

	articleRepo := repositories.NewArticleRepository(db)
	feedbackRepo := repositories.NewFeedbackRepository(db)
	prefsRepo := repositories.NewUserPreferencesRepository(db)

	lockManager := lock.NewManager(db.Pool,
		time.Duration(cfg.Generation.PollIntervalSeconds)*time.Second, logger)

	pipeline := services.NewGenerationPipeline(researcher, writer, citations, articleRepo, logger)
	coordinator := services.NewRequestCoordinator(articleRepo, lockManager, pipeline,
		time.Duration(cfg.Generation.WaitTimeoutSeconds)*time.Second, logger)
	feedbackService := services.NewFeedbackService(feedbackRepo, reviewer, cfg.Generation.FeedbackBatchSize, logger)
	relatedService := services.NewRelatedTopicsService(articleRepo, logger)
	recentService := services.NewRecentService(articleRepo, redisClient, logger)

	mux := http.NewServeMux()

	handlers.NewHealthHandler(db, cfg.Version, logger).RegisterRoutes(mux)
	handlers.NewGenerateHandler(coordinator, logger).RegisterRoutes(mux)
	handlers.NewArticlesHandler(articleRepo, relatedService, recentService, logger).RegisterRoutes(mux)
	handlers.NewFeedbackHandler(feedbackService, feedbackRepo, logger).RegisterRoutes(mux)
	handlers.NewPreferencesHandler(prefsRepo, logger).RegisterRoutes(mux)

	handler := middleware.RequestLogger(logger)(mux)

	addr := cfg.BindAddr + ":" + cfg.Port
	logger.Info("Starting verifidia-engine", zap.String("addr", addr), zap.String("version", cfg.Version))
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Fatal("Server failed", zap.Error(err))
	}
}
