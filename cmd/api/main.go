package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gatherly/api/internal/config"
	"github.com/gatherly/api/internal/connect"
	"github.com/gatherly/api/internal/container"
	"github.com/gatherly/api/internal/models"
	"github.com/gatherly/api/internal/routes"
	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"google.golang.org/genai"
)

func main() {
	// Load environment variables
	_ = godotenv.Load(".env.local")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup logger
	logger := setupLogger(cfg)
	logger.Info("Starting Gatherly API server", "environment", cfg.Environment)

	// Initialize the backing store
	var mongoClient *mongo.Client
	if cfg.MongoDBURI != "" {
		mongoClient, err = connect.MongoDBConnect(cfg.MongoDBURI)
		if err != nil {
			logger.Error("Failed to connect to MongoDB", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to MongoDB successfully")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := models.MongodbNewRepo(mongoClient).EnsureIndexes(ctx); err != nil {
			logger.Error("Failed to create indexes", "error", err)
			cancel()
			os.Exit(1)
		}
		cancel()
	} else {
		logger.Warn("MONGODB_URI not set, using in-memory store; data will not survive restarts")
	}

	// Optional collaborators
	cld := connect.Cld
	if cfg.HasCloudinary() {
		cld, err = connect.CloudinaryCredentials(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
		if err != nil {
			logger.Error("Failed to connect to Cloudinary", "error", err)
			os.Exit(1)
		}
		connect.Cld = cld
		logger.Info("Connected to Cloudinary successfully")
	} else {
		logger.Warn("Cloudinary credentials not set, image upload disabled")
	}

	var geminiClient *genai.Client
	if cfg.GeminiAPIKey != "" {
		geminiClient, err = connect.GeminiClient(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logger.Error("Failed to initialize Gemini client", "error", err)
			os.Exit(1)
		}
		logger.Info("Gemini description drafting enabled")
	} else {
		logger.Warn("GEMINI_API_KEY not set, description drafting disabled")
	}

	// Initialize dependency container
	appContainer := container.NewContainer(logger, cld, mongoClient, geminiClient, []byte(cfg.JWTSecret))

	// Setup routes
	router := routes.SetupRoutes(appContainer)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Server is shutting down...")

	// Give outstanding requests 30 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	if err := connect.MongoDBDisconnect(); err != nil {
		logger.Error("Error disconnecting from MongoDB", "error", err)
	}

	logger.Info("Server exited")
}

func setupLogger(cfg *config.Config) *slog.Logger {
	var handler slog.Handler

	if cfg.IsProduction() {
		// JSON logging for production
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	} else {
		// Human-readable logging for development
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	}

	return slog.New(handler)
}
