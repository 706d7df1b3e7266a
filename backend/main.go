package main

import (
	"context"
	"log"

	"courseplatform/backend/config"
	"courseplatform/backend/middleware"
	"courseplatform/backend/models"
	"courseplatform/backend/repository"
	"courseplatform/backend/routes"
	"courseplatform/backend/storage"
	"courseplatform/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(cfg.LogMode)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		logger.Fatal("Error initializing database", "error", err)
	}
	if err := utils.Migrate(db, models.All()...); err != nil {
		logger.Fatal("Error migrating database", "error", err)
	}

	ctx := context.Background()
	svc := routes.Services{Log: logger}

	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, catalog cache disabled", "addr", cfg.RedisAddr, "error", err)
		} else {
			defer rdb.Close()
			svc.Cache = repository.NewRedisSnapshotCache(rdb, cfg.CatalogCacheTTL)
		}
	}

	if cfg.AssetBucket != "" {
		resolver, err := storage.NewGCSResolver(ctx, cfg.AssetBucket, cfg.AssetPublicBaseURL, cfg.AssetCredentials, logger)
		if err != nil {
			logger.Fatal("Error initializing asset store", "error", err)
		}
		defer resolver.Close()
		svc.Assets = resolver
	}

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.CORSOrigins,
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, db, cfg, svc)

	// Start server
	logger.Info("server starting", "port", cfg.ServerPort)
	if err := app.Listen(":" + cfg.ServerPort); err != nil {
		logger.Fatal("server stopped", "error", err)
	}
}
