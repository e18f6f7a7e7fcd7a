package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	"inspections-server/internal/auth"
	"inspections-server/internal/auth/providers"
	"inspections-server/internal/inspection"
	"inspections-server/internal/inspection/localblob"
	inspectionpg "inspections-server/internal/inspection/postgres"
	"inspections-server/internal/middleware"
	"inspections-server/internal/server"
	"inspections-server/internal/shared/blob"
	"inspections-server/internal/shared/config"
	"inspections-server/internal/shared/database"
	"inspections-server/internal/shared/logger"
	"inspections-server/internal/shared/redis"
	"inspections-server/internal/user"
)

func main() {
	if err := config.Init(); err != nil {
		log.Fatal("Failed to initialize configuration:", err)
	}

	logger.Init()

	cfg := config.GlobalConfig
	mainLogger := slog.With("component", "main")
	mainLogger.Info("Starting inspections server",
		"backend", cfg.Storage.Backend,
		"environment", cfg.Server.Environment,
	)

	ctx := context.Background()

	// Photo object store.
	photoStore, err := blob.Open(ctx, cfg.Blob)
	if err != nil {
		mainLogger.Error("Failed to open photo store", "error", err)
		log.Fatal("Failed to open photo store:", err)
	}
	mainLogger.Info("Photo store ready", "driver", photoStore.Driver())

	// Export cache. A nil client just disables caching.
	redisClient, err := redis.Connect()
	if err != nil {
		mainLogger.Error("Failed to connect to Redis", "error", err)
		log.Fatal("Failed to connect to Redis:", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			mainLogger.Error("Failed to close Redis connection", "error", err)
		}
	}()

	// Inspection store, selected by backend.
	var (
		db              *database.DB
		inspectionStore inspection.Store
		userService     *user.Service
		authService     *auth.Service
		oauthConfig     *auth.OAuthConfig
	)

	switch cfg.Storage.Backend {
	case config.StorageBackendPostgres:
		db, err = database.Connect()
		if err != nil {
			mainLogger.Error("Failed to connect to database", "error", err)
			log.Fatal("Failed to connect to database:", err)
		}
		defer func() {
			if err := db.Close(); err != nil {
				mainLogger.Error("Failed to close database connection", "error", err)
			}
		}()

		if err := db.RunMigrations(); err != nil {
			mainLogger.Error("Failed to run migrations", "error", err)
			log.Fatal("Failed to run migrations:", err)
		}

		inspectionStore = inspectionpg.NewStore(db, slog.Default())

		userRepo := user.NewRepository(db, slog.Default())
		userService = user.NewService(userRepo, slog.Default())
		authRepo := auth.NewRepository(db)
		authService = auth.NewService(authRepo, slog.Default())
		oauthConfig = auth.InitOAuth()

	case config.StorageBackendLocalBlob:
		kv, err := localblob.NewFileKV(cfg.Storage.LocalBlobPath, slog.Default())
		if err != nil {
			mainLogger.Error("Failed to open local storage", "error", err)
			log.Fatal("Failed to open local storage:", err)
		}
		inspectionStore = localblob.NewStore(kv, slog.Default())

	default:
		log.Fatal("Unknown storage backend: ", cfg.Storage.Backend)
	}

	inspectionService := inspection.NewService(
		inspectionStore,
		photoStore,
		redisClient,
		inspection.ServiceConfig{
			UploadPolicy: cfg.Photos.UploadPolicy,
			PhotoBaseURL: photoStore.PublicURL(""),
		},
		slog.Default(),
	)

	var googleProvider providers.OAuthProvider
	if oauthConfig != nil {
		googleProvider = oauthConfig.GoogleProvider
	}

	routes := server.NewRoutes(
		db,
		inspectionService,
		photoStore,
		userService,
		authService,
		googleProvider,
		slog.Default(),
	)
	mux := routes.Setup()

	rateLimiter := middleware.NewRateLimiter(middleware.RateLimitConfig{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstSize:         cfg.RateLimit.BurstSize,
	})
	corsMiddleware := middleware.NewCORS()

	handler := corsMiddleware.Middleware(rateLimiter.Middleware(mux))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	mainLogger.Info("Server listening", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil {
		mainLogger.Error("Server stopped", "error", err)
		log.Fatal("Server stopped:", err)
	}
}
