package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/playmeeple/meeplehub/config"
	"github.com/playmeeple/meeplehub/db"
	"github.com/playmeeple/meeplehub/handlers"
	"github.com/playmeeple/meeplehub/realtime"
	"github.com/playmeeple/meeplehub/repositories"
	api "github.com/playmeeple/meeplehub/routes"
	"github.com/playmeeple/meeplehub/services"
	"github.com/playmeeple/meeplehub/storage"
)

func main() {
	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	// Подключение к документному хранилищу
	mongoClient, err := db.ConnectMongo(cfg.MongoURI, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to mongo", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			logger.Error("failed to disconnect mongo client", slog.Any("error", err))
		} else {
			logger.Info("mongo connection closed")
		}
	}()
	mongoDB := mongoClient.Database(cfg.MongoDatabase)
	logger.Info("mongo connection established", slog.String("database", cfg.MongoDatabase))

	// Подключение к графовому хранилищу
	neo4jDriver, err := db.ConnectNeo4j(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to neo4j", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := neo4jDriver.Close(context.Background()); err != nil {
			logger.Error("failed to close neo4j driver", slog.Any("error", err))
		} else {
			logger.Info("neo4j connection closed")
		}
	}()
	logger.Info("neo4j connection established")

	// Инициализация загрузчика файлов (Cloudflare R2)
	cloudflareUploader, err := storage.NewCloudflareR2Uploader(storage.CloudflareR2UploaderConfig{
		AccountID:       cfg.R2AccountID,
		AccessKeyID:     cfg.R2AccessKeyID,
		SecretAccessKey: cfg.R2SecretAccessKey,
		BucketName:      cfg.R2BucketName,
		PublicBaseURL:   cfg.R2PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("Cloudflare R2 uploader initialized")

	// Инициализация WebSocket Hub
	wsHub := realtime.NewHub(logger)
	go wsHub.Run()
	logger.Info("WebSocket Hub started")

	// Инициализация репозиториев
	userRepo := repositories.NewMongoUserRepository(mongoDB)
	gameRepo := repositories.NewMongoGameRepository(mongoDB)
	reviewRepo := repositories.NewMongoReviewRepository(mongoDB)
	tournamentRepo := repositories.NewMongoTournamentRepository(mongoDB)
	queueRepo := repositories.NewMongoReconcileQueueRepository(mongoDB)
	graphRepo := repositories.NewNeo4jGraphRepository(neo4jDriver)
	logger.Info("repositories initialized")

	// Инициализация сервисов
	authService := services.NewAuthService(userRepo, cfg.JWTSecretKey)
	userService := services.NewUserService(userRepo, gameRepo, graphRepo, cloudflareUploader, logger)
	gameService := services.NewGameService(gameRepo, reviewRepo, graphRepo, cloudflareUploader, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, gameRepo, userRepo, graphRepo, queueRepo, wsHub, logger)
	participantService := services.NewParticipantService(tournamentRepo, userRepo, graphRepo, queueRepo, wsHub, logger)
	suggestionService := services.NewSuggestionService(graphRepo)
	analyticsService := services.NewAnalyticsService(tournamentRepo, reviewRepo, graphRepo)
	reconcileService := services.NewReconcileService(tournamentRepo, graphRepo, queueRepo, logger)
	logger.Info("services initialized")

	// Запуск планировщика сверки рассинхронизированных турниров
	go func() {
		ticker := time.NewTicker(cfg.ReconcileInterval)
		defer ticker.Stop()
		logger.Info("reconcile scheduler started", slog.Duration("interval", cfg.ReconcileInterval))

		for range ticker.C {
			if err := reconcileService.RunPending(context.Background()); err != nil {
				logger.Error("reconcile scheduler pass failed", slog.Any("error", err))
			}
		}
	}()

	// Инициализация обработчиков HTTP
	authHandler := handlers.NewAuthHandler(authService, userService)
	userHandler := handlers.NewUserHandler(userService)
	gameHandler := handlers.NewGameHandler(gameService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService, participantService, reconcileService)
	suggestionHandler := handlers.NewSuggestionHandler(suggestionService)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, tournamentService, logger)
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		cfg.JWTSecretKey,
		authHandler,
		userHandler,
		gameHandler,
		tournamentHandler,
		suggestionHandler,
		analyticsHandler,
		webSocketHandler,
	)
	logger.Info("routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
