package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"wikidesk/internal/config"
	"wikidesk/internal/handler"
	"wikidesk/internal/middleware"
	"wikidesk/internal/repository/postgres"
	"wikidesk/internal/service/directory"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}

	var logOut io.Writer = os.Stdout
	if cfg.LogDir != "" {
		logFile, err := config.SetupLogFile(cfg.LogDir, cfg.LogMaxFiles)
		if err != nil {
			log.Fatalf("Failed to setup log file: %v", err)
		}
		defer logFile.Close()
		logOut = io.MultiWriter(os.Stdout, logFile)
	}

	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to create connection pool: %v", err)
	}
	defer pool.Close()

	logger.Info("database connected",
		"max_conns", 25,
		"min_conns", 5,
	)

	// Create table names and ensure the schema exists
	tables := postgres.NewTableNames(cfg.TablePrefix)
	if err := postgres.EnsureSchema(ctx, pool, tables); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	dirRepo := postgres.NewDirectoryRepository(repoConfig)
	docRepo := postgres.NewDocumentRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Create services
	dirService := directory.NewDirectoryService(dirRepo, docRepo, txManager, logger)
	treeService := directory.NewTreeService(dirRepo, docRepo, logger)

	// Create handlers
	dirHandler := handler.NewDirectoryHandler(dirService, logger)
	treeHandler := handler.NewTreeHandler(treeService, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("GET /health", handler.HealthCheck)

	// Directory routes
	mux.HandleFunc("GET /api/directories", dirHandler.List)
	mux.HandleFunc("POST /api/directories", dirHandler.Create)
	mux.HandleFunc("GET /api/directories/stats", dirHandler.Stats) // Must come before {id} route
	mux.HandleFunc("POST /api/directories/batch-move", dirHandler.BatchMove)
	mux.HandleFunc("POST /api/directories/validate", dirHandler.Validate)
	mux.HandleFunc("POST /api/directories/reorder", dirHandler.Reorder)
	mux.HandleFunc("GET /api/directories/{id}", dirHandler.Get)
	mux.HandleFunc("PATCH /api/directories/{id}", dirHandler.Update)
	mux.HandleFunc("DELETE /api/directories/{id}", dirHandler.Delete)
	mux.HandleFunc("GET /api/directories/{id}/delete-status", dirHandler.DeleteStatus)
	mux.HandleFunc("DELETE /api/directories/{id}/force", dirHandler.ForceDelete)
	mux.HandleFunc("POST /api/directories/{id}/move", dirHandler.Move)
	mux.HandleFunc("POST /api/directories/{id}/copy", dirHandler.Copy)
	mux.HandleFunc("GET /api/directories/{id}/path-info", dirHandler.PathInfo)

	// Tree endpoint
	mux.HandleFunc("GET /api/tree", treeHandler.GetTree)

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → RequestID → Recovery → Routes
	root = middleware.Recovery(logger)(root)
	root = middleware.RequestID()(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
