package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/api/handlers"
	"github.com/gabrielfortuny/neuroclinaical/internal/cache/redis"
	"github.com/gabrielfortuny/neuroclinaical/internal/chat"
	"github.com/gabrielfortuny/neuroclinaical/internal/embedding"
	"github.com/gabrielfortuny/neuroclinaical/internal/extraction"
	"github.com/gabrielfortuny/neuroclinaical/internal/ingestion"
	"github.com/gabrielfortuny/neuroclinaical/internal/llm"
	"github.com/gabrielfortuny/neuroclinaical/internal/metrics"
	"github.com/gabrielfortuny/neuroclinaical/internal/middleware/ratelimit"
	"github.com/gabrielfortuny/neuroclinaical/internal/middleware/security"
	"github.com/gabrielfortuny/neuroclinaical/internal/middleware/validation"
	"github.com/gabrielfortuny/neuroclinaical/internal/retrieval"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/sqlite"
	"github.com/gabrielfortuny/neuroclinaical/internal/vector/milvus"
	"github.com/gabrielfortuny/neuroclinaical/pkg/config"
	appLogger "github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting LTM report analysis API server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Fatal("Failed to create Redis client", zap.Error(err))
		}
		defer redisClient.Close()
	}

	var milvusClient *milvus.Client
	if cfg.Milvus.Enabled {
		milvusClient, err = milvus.NewClient(cfg.Milvus.Endpoint, cfg.Milvus.CollectionName, cfg.Milvus.VectorDim)
		if err != nil {
			appLogger.Fatal("Failed to create Milvus client", zap.Error(err))
		}
		defer milvusClient.Close()

		err = milvusClient.CreateCollection(context.Background())
		if err != nil {
			appLogger.Fatal("Failed to create collection", zap.Error(err))
		}
	}

	llmClient := llm.NewClient(llm.Config{
		BaseURL:    cfg.Ollama.BaseURL,
		Model:      cfg.Ollama.Model,
		TimeoutSec: cfg.Ollama.TimeoutSec,
	})

	var embeddingCache embedding.VectorCache
	if redisClient != nil {
		embeddingCache = redisClient
	}
	embedder := embedding.Shared(embedding.Config{
		BaseURL:    cfg.Embedding.BaseURL,
		APIKey:     cfg.Embedding.APIKey,
		Model:      cfg.Embedding.Model,
		TimeoutSec: cfg.Embedding.TimeoutSec,
	}, embeddingCache)

	var passageIndex retrieval.PassageIndex
	if milvusClient != nil {
		passageIndex = milvusClient
	}
	retriever := retrieval.NewRetriever(embedder, passageIndex, cfg.Pipeline.ChunkWordLimit, cfg.Pipeline.ChunkOverlap)
	orchestrator := extraction.NewOrchestrator(llmClient, cfg.Pipeline.MaxRetries, cfg.Pipeline.ImplicitDayOne)
	chatEngine := chat.NewEngine(llmClient, retriever, cfg.Pipeline.TopK)

	var answerInvalidator ingestion.CacheInvalidator
	if redisClient != nil {
		answerInvalidator = redisClient
	}
	processor := ingestion.NewProcessor(
		sqliteClient,
		orchestrator,
		chatEngine,
		embedder,
		milvusClient,
		answerInvalidator,
		cfg.Pipeline.ChunkWordLimit,
		cfg.Pipeline.ChunkOverlap,
	)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{})
	defer limiter.Stop()
	app.Use(limiter.Middleware())
	app.Use(validation.Middleware(validation.Config{
		MaxReportSize: cfg.Server.BodyLimit,
	}))

	var answerCache handlers.AnswerCache
	if redisClient != nil {
		answerCache = redisClient
	}

	reportHandler := handlers.NewReportHandler(processor, sqliteClient)
	chatHandler := handlers.NewChatHandler(chatEngine, sqliteClient, answerCache)
	graphHandler := handlers.NewGraphHandler(sqliteClient)
	wsHandler := handlers.NewWebSocketHandler(chatEngine, sqliteClient)

	api := app.Group("/api/v1")

	api.Post("/patients", reportHandler.CreatePatient)
	api.Post("/reports", reportHandler.UploadReport)
	api.Get("/reports/:id", reportHandler.GetReport)
	api.Get("/reports/:id/seizures", reportHandler.GetSeizures)
	api.Get("/reports/:id/drugs", reportHandler.GetDrugAdministrations)

	api.Post("/reports/:id/chat", chatHandler.HandleQuestion)
	api.Get("/reports/:id/chat", chatHandler.GetHistory)
	api.Post("/reports/:id/summary", chatHandler.Summarize)

	api.Get("/reports/:id/graphs/seizures", graphHandler.GetSeizureCounts)
	api.Get("/reports/:id/graphs/timeline", graphHandler.GetTimeline)
	api.Get("/reports/:id/graphs/electrodes", graphHandler.GetElectrodeCounts)

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/chat", websocket.New(wsHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
