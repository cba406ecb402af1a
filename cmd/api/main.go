package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/questlyapp/questly-backend/api/routes"
	"github.com/questlyapp/questly-backend/internal/achievements"
	"github.com/questlyapp/questly-backend/internal/auth"
	"github.com/questlyapp/questly-backend/internal/bookings"
	"github.com/questlyapp/questly-backend/internal/friendships"
	"github.com/questlyapp/questly-backend/internal/users"
	"github.com/questlyapp/questly-backend/pkg/auth/session"
	"github.com/questlyapp/questly-backend/pkg/config"
	"github.com/questlyapp/questly-backend/pkg/db"
	"github.com/questlyapp/questly-backend/pkg/logger"
	"github.com/questlyapp/questly-backend/pkg/metrics"
	"github.com/questlyapp/questly-backend/pkg/migrate"
	"github.com/questlyapp/questly-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	usersRepo := users.NewRepository(dbClient.DB())
	friendshipsRepo := friendships.NewRepository(dbClient.DB())
	achievementsRepo := achievements.NewRepository(dbClient.DB())
	bookingsRepo := bookings.NewRepository(dbClient.DB())

	usersService, err := users.NewService(usersRepo, friendshipsRepo, cfg.Password, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create users service", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       usersRepo,
		UsersService:   usersService,
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	friendshipsService, err := friendships.NewService(friendshipsRepo, usersRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create friendships service", err)
		os.Exit(1)
	}

	achievementsService, err := achievements.NewService(achievementsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create achievements service", err)
		os.Exit(1)
	}

	bookingsService, err := bookings.NewService(bookingsRepo, achievementsRepo, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create bookings service", err)
		os.Exit(1)
	}

	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Params{
			Config:             cfg,
			Logger:             logg,
			DB:                 dbClient,
			Redis:              redisClient,
			SessionManager:     sessionManager,
			HTTPMetrics:        httpMetrics,
			AuthService:        authService,
			UsersService:       usersService,
			FriendshipsService: friendshipsService,
			AchievementsSvc:    achievementsService,
			BookingsService:    bookingsService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
