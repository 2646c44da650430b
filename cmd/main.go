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

	"github.com/LarisaDinulescu/quadball-live/brackets"
	"github.com/LarisaDinulescu/quadball-live/config"
	"github.com/LarisaDinulescu/quadball-live/handlers"
	"github.com/LarisaDinulescu/quadball-live/middleware"
	"github.com/LarisaDinulescu/quadball-live/realtime"
	"github.com/LarisaDinulescu/quadball-live/repositories"
	api "github.com/LarisaDinulescu/quadball-live/routes"
	"github.com/LarisaDinulescu/quadball-live/services"
	"github.com/LarisaDinulescu/quadball-live/storage"
	"github.com/LarisaDinulescu/quadball-live/stream"
	"github.com/LarisaDinulescu/quadball-live/utils"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("backend", cfg.BackendURL),
		slog.String("push", cfg.PushURL),
		slog.String("timezone", cfg.Location.String()))

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Bracket publishing is optional.
	var publisher storage.Publisher
	if cfg.R2.Enabled() {
		publisher, err = storage.NewCloudflareR2Publisher(ctx, cfg.R2)
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 publisher", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 publisher initialized", slog.String("bucket", cfg.R2.BucketName))
	}

	pushChannel, err := stream.NewWebSocketChannel(cfg.PushURL, logger)
	if err != nil {
		logger.Error("invalid push channel URL", slog.Any("error", err))
		os.Exit(1)
	}

	wsHub := realtime.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	client := repositories.NewClient(cfg.BackendURL, cfg.HTTPTimeout, logger)
	if cfg.BackendToken != "" {
		client.SetAuthToken(cfg.BackendToken)
		pushChannel.SetHeader("Authorization", "Bearer "+cfg.BackendToken)
	}
	matchRepo := repositories.NewHTTPMatchRepository(client)
	teamRepo := repositories.NewHTTPTeamRepository(client)
	playerRepo := repositories.NewHTTPPlayerRepository(client)
	eventRepo := repositories.NewHTTPEventRepository(client)
	tournamentRepo := repositories.NewHTTPTournamentRepository(client)

	liveService := services.NewLiveService(
		matchRepo,
		teamRepo,
		playerRepo,
		eventRepo,
		pushChannel,
		wsHub,
		services.LiveConfig{GlobalTopic: cfg.GlobalTopic, MatchTopicPrefix: cfg.MatchTopicPrefix},
		logger,
	)
	matchService := services.NewMatchService(liveService)
	bracketService := services.NewBracketService(tournamentRepo, brackets.NewOrganizer(cfg.BracketNaming), publisher, logger)

	// A failed first load leaves an empty board; reloads may recover it.
	if err := liveService.Load(ctx); err != nil {
		logger.Warn("initial snapshot load failed", slog.Any("error", err))
	}

	go func() {
		if err := liveService.RunGlobal(ctx); err != nil {
			logger.Error("global event consumer stopped", slog.Any("error", err))
		}
	}()

	if cfg.ReloadInterval > 0 {
		go func() {
			ticker := time.NewTicker(cfg.ReloadInterval)
			defer ticker.Stop()
			logger.Info("snapshot reload scheduler started", slog.Duration("interval", cfg.ReloadInterval))

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := liveService.Load(ctx); err != nil {
						logger.Error("scheduler: snapshot reload failed", slog.Any("error", err))
					}
				}
			}
		}()
	}

	today := utils.TodayFunc(cfg.Location)
	matchHandler := handlers.NewMatchHandler(matchService, today)
	bracketHandler := handlers.NewBracketHandler(bracketService)
	webSocketHandler := handlers.NewWebSocketHandler(wsHub, liveService, matchService, today, logger)
	viewerAuth := middleware.NewViewerAuth(cfg.JWTSecretKey, cfg.ManagerRoles, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		api.Options{AllowedOrigins: cfg.CORSAllowedOrigins, RequestTimeout: cfg.HTTPTimeout + 5*time.Second},
		viewerAuth,
		matchHandler,
		bracketHandler,
		webSocketHandler,
	)
	logger.Info("Routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.HTTPTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			stop()
			os.Exit(1)
		}
		logger.Info("server stopped gracefully")
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancelShutdown()

		// Stopping the consumers and the hub closes every websocket client.
		stop()
		logger.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		}
		logger.Info("server shutdown complete")
	}
	logger.Info("application exited")
}
