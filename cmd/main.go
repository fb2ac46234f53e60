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
	_ "github.com/lib/pq"

	"github.com/leaguehq/league-system/config"
	"github.com/leaguehq/league-system/db"
	"github.com/leaguehq/league-system/handlers"
	"github.com/leaguehq/league-system/live"
	"github.com/leaguehq/league-system/middleware"
	"github.com/leaguehq/league-system/repositories"
	api "github.com/leaguehq/league-system/routes"
	"github.com/leaguehq/league-system/services"
	"github.com/leaguehq/league-system/storage"
)

// Периодичность фоновых задач: автостатусы турниров и страховочный пересчёт
// таблиц лиг.
const schedulerInterval = 1 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	uploader, err := storage.NewS3Uploader(storage.S3UploaderConfig{
		Endpoint:        cfg.S3Endpoint,
		AccessKeyID:     cfg.S3AccessKeyID,
		SecretAccessKey: cfg.S3SecretAccessKey,
		BucketName:      cfg.S3BucketName,
		PublicBaseURL:   cfg.S3PublicBaseURL,
	})
	if err != nil {
		logger.Error("failed to initialize object storage uploader", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("object storage uploader initialized")

	hub := live.NewHub(logger)
	go hub.Run()
	logger.Info("websocket hub started")

	// Репозитории
	txManager := repositories.NewSQLTxManager(dbConn)
	userRepo := repositories.NewPostgresUserRepository(dbConn)
	leagueRepo := repositories.NewPostgresLeagueRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	coachRepo := repositories.NewPostgresCoachRepository(dbConn)
	refereeRepo := repositories.NewPostgresRefereeRepository(dbConn)
	venueRepo := repositories.NewPostgresVenueRepository(dbConn)
	teamLeagueRepo := repositories.NewPostgresTeamLeagueRepository(dbConn)
	rosterRepo := repositories.NewPostgresRosterRepository(dbConn)
	transferRepo := repositories.NewPostgresTransferRepository(dbConn)
	matchRepo := repositories.NewPostgresMatchRepository(dbConn)
	matchStatsRepo := repositories.NewPostgresMatchStatsRepository(dbConn)
	playerStatsRepo := repositories.NewPostgresPlayerStatsRepository(dbConn)
	teamStatsRepo := repositories.NewPostgresTeamStatsRepository(dbConn)

	// Сервисы
	authService := services.NewAuthService(userRepo)
	eligibilityService := services.NewEligibilityService(
		teamRepo, teamLeagueRepo, rosterRepo, leagueRepo, tournamentRepo, matchRepo, venueRepo,
	)
	standingsService := services.NewStandingsService(
		txManager, leagueRepo, teamLeagueRepo, matchRepo, teamStatsRepo, logger,
	)
	statsService := services.NewStatsService(
		txManager, matchRepo, teamRepo, rosterRepo, matchStatsRepo, playerStatsRepo, standingsService, logger,
	)
	matchService := services.NewMatchService(
		txManager, matchRepo, eligibilityService, statsService, standingsService, hub, logger,
	)
	transferService := services.NewTransferService(
		txManager, playerRepo, teamRepo, rosterRepo, teamLeagueRepo, transferRepo, logger,
	)
	fixtureService := services.NewFixtureService(
		txManager, leagueRepo, teamLeagueRepo, matchRepo, logger,
	)
	leagueService := services.NewLeagueService(leagueRepo, teamLeagueRepo, uploader, logger)
	tournamentService := services.NewTournamentService(tournamentRepo, logger)
	teamService := services.NewTeamService(
		txManager, teamRepo, leagueRepo, coachRepo, teamLeagueRepo, rosterRepo, uploader, logger,
	)
	playerService := services.NewPlayerService(playerRepo, rosterRepo, teamRepo)
	coachService := services.NewCoachService(coachRepo)
	refereeService := services.NewRefereeService(refereeRepo)
	venueService := services.NewVenueService(venueRepo, uploader, logger)
	logger.Info("services initialized")

	// Фоновый планировщик: автостатусы турниров и пересчёт таблиц.
	go func() {
		ticker := time.NewTicker(schedulerInterval)
		defer ticker.Stop()

		run := func() {
			ctx, cancel := context.WithTimeout(context.Background(), schedulerInterval)
			defer cancel()
			if err := tournamentService.AutoUpdateStatusesByDates(ctx); err != nil {
				logger.Error("scheduler: tournament status update failed", slog.Any("error", err))
			}
			if err := standingsService.RecomputeAll(ctx); err != nil {
				logger.Error("scheduler: standings recompute failed", slog.Any("error", err))
			}
		}

		run()
		for range ticker.C {
			run()
		}
	}()
	logger.Info("background scheduler started", slog.Duration("interval", schedulerInterval))

	routeHandlers := api.Handlers{
		Auth:       handlers.NewAuthHandler(authService, cfg.JWTSecretKey),
		League:     handlers.NewLeagueHandler(leagueService, standingsService, fixtureService),
		Tournament: handlers.NewTournamentHandler(tournamentService),
		Team:       handlers.NewTeamHandler(teamService),
		Player:     handlers.NewPlayerHandler(playerService, transferService, statsService),
		Coach:      handlers.NewCoachHandler(coachService),
		Referee:    handlers.NewRefereeHandler(refereeService),
		Venue:      handlers.NewVenueHandler(venueService),
		Match:      handlers.NewMatchHandler(matchService, statsService),
		WebSocket:  handlers.NewWebSocketHandler(hub, matchService, logger),
	}

	router := chi.NewRouter()
	api.SetupRoutes(router, routeHandlers, middleware.NewAuthenticator(cfg.JWTSecretKey))
	logger.Info("routes configured")

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if err := server.Close(); err != nil {
				logger.Error("forced server close failed", slog.Any("error", err))
			}
		}
	}

	logger.Info("server stopped")
}
