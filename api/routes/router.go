package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/questlyapp/questly-backend/api/controllers"
	"github.com/questlyapp/questly-backend/api/middleware"
	"github.com/questlyapp/questly-backend/internal/achievements"
	"github.com/questlyapp/questly-backend/internal/auth"
	"github.com/questlyapp/questly-backend/internal/bookings"
	"github.com/questlyapp/questly-backend/internal/friendships"
	"github.com/questlyapp/questly-backend/internal/users"
	"github.com/questlyapp/questly-backend/pkg/auth/session"
	"github.com/questlyapp/questly-backend/pkg/config"
	"github.com/questlyapp/questly-backend/pkg/enums"
	"github.com/questlyapp/questly-backend/pkg/logger"
	"github.com/questlyapp/questly-backend/pkg/metrics"
	"github.com/questlyapp/questly-backend/pkg/redis"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
	Revoke(context.Context, string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

// Params bundles everything the router needs.
type Params struct {
	Config         *config.Config
	Logger         *logger.Logger
	DB             pinger
	Redis          *redis.Client
	SessionManager sessionManager
	HTTPMetrics    *metrics.HTTPMetrics

	AuthService        auth.Service
	UsersService       users.Service
	FriendshipsService friendships.Service
	AchievementsSvc    achievements.Service
	BookingsService    bookings.Service
}

func NewRouter(p Params) http.Handler {
	cfg := p.Config
	logg := p.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginUsernameLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterUsernameLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, p.DB, p.Redis, logg))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, p.Redis, logg)).Post("/login", controllers.AuthLogin(p.AuthService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, p.Redis, logg)).Post("/register", controllers.AuthRegister(p.AuthService, logg))
		r.Post("/logout", controllers.AuthLogout(p.SessionManager, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(p.SessionManager, cfg.JWT, logg))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, p.SessionManager, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/users", func(r chi.Router) {
			r.Get("/", controllers.UsersList(p.UsersService, logg))
			r.Get("/{id}", controllers.UserGetByID(p.UsersService, logg))
			r.Put("/me", controllers.UserUpdateMe(p.UsersService, logg))
			r.Delete("/{id}", controllers.UserDelete(p.UsersService, logg))

			r.With(middleware.RequireRole(enums.RoleAdmin.String(), logg)).
				Post("/", controllers.UsersCreate(p.UsersService, logg))
		})

		r.Route("/v1/friendships", func(r chi.Router) {
			r.Get("/", controllers.FriendshipsList(p.FriendshipsService, logg))
			r.Post("/", controllers.FriendshipSend(p.FriendshipsService, logg))
			r.Post("/{id}/respond", controllers.FriendshipRespond(p.FriendshipsService, logg))
		})

		r.Route("/v1/achievements", func(r chi.Router) {
			r.Get("/", controllers.AchievementsList(p.AchievementsSvc, logg))
			r.Post("/", controllers.AchievementCreate(p.AchievementsSvc, logg))
			r.Get("/{id}", controllers.AchievementGet(p.AchievementsSvc, logg))
			r.Put("/{id}", controllers.AchievementUpdate(p.AchievementsSvc, logg))
			r.Delete("/{id}", controllers.AchievementDelete(p.AchievementsSvc, logg))
		})

		r.Route("/v1/bookings", func(r chi.Router) {
			r.Get("/", controllers.BookingsList(p.BookingsService, logg))
			r.Post("/", controllers.BookingCreate(p.BookingsService, logg))
			r.Post("/{id}/complete", controllers.BookingComplete(p.BookingsService, logg))
		})
	})

	return r
}
