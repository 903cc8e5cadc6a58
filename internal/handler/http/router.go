package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nrehal/gatepass/pkg/health"
	"github.com/nrehal/gatepass/pkg/middleware"
)

// RouterConfig bundles the dependencies of the HTTP surface.
type RouterConfig struct {
	AuthService    AuthService
	UserService    UserService
	EventService   EventService
	BookingService BookingService
	HealthHandler  *health.Handler
	Cookies        CookieConfig
	CORS           CORSConfig
	Logger         *slog.Logger
}

// NewRouter creates a chi router with all routes registered.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(CORS(cfg.CORS))
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.RequestLogging(cfg.Logger))
	r.Use(middleware.PrometheusMetrics("gatepass"))

	// Health check endpoints
	r.Get("/health/live", cfg.HealthHandler.LivenessHandler())
	r.Get("/health/ready", cfg.HealthHandler.ReadinessHandler())
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		promhttp.Handler().ServeHTTP(w, r)
	})

	authenticate := Authenticate(cfg.AuthService, cfg.Cookies, cfg.Logger)
	optionalAuth := OptionalAuthenticate(cfg.AuthService, cfg.Cookies, cfg.Logger)
	requireAdmin := RequireAdmin(cfg.AuthService, cfg.Logger)

	authHandler := NewAuthHandler(cfg.AuthService, cfg.Cookies, cfg.Logger)
	userHandler := NewUserHandler(cfg.UserService, cfg.Logger)
	eventHandler := NewEventHandler(cfg.EventService, cfg.Logger)
	bookingHandler := NewBookingHandler(cfg.BookingService, cfg.Logger)

	r.Route("/api/auth", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/refresh", authHandler.Refresh)

		r.With(authenticate).Post("/logout", authHandler.Logout)
	})

	r.Route("/api/users", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)

		r.Put("/profile", userHandler.UpdateProfile)
		r.Put("/password", userHandler.ChangePassword)
	})

	r.Route("/api/events", func(r chi.Router) {
		// Public catalog, cacheable for a short window.
		r.Group(func(r chi.Router) {
			r.Use(middleware.CacheControl(30))

			r.With(optionalAuth).Get("/upcoming", eventHandler.ListUpcoming)
			r.Get("/", eventHandler.List)
			r.Get("/categories/all", eventHandler.Categories)
		})

		// Administration
		r.Group(func(r chi.Router) {
			r.Use(ContentTypeJSON)
			r.Use(authenticate)
			r.Use(requireAdmin)

			r.Get("/{id}", eventHandler.Get)
			r.Post("/", eventHandler.Create)
			r.Put("/{id}", eventHandler.Update)
			r.Delete("/{id}", eventHandler.Delete)
			r.Put("/{id}/toggle-status", eventHandler.ToggleStatus)
		})
	})

	r.Route("/api/bookings", func(r chi.Router) {
		r.Use(ContentTypeJSON)
		r.Use(authenticate)

		r.Post("/", bookingHandler.Create)
		r.Get("/my-bookings", bookingHandler.MyBookings)
		r.Delete("/{id}", bookingHandler.Cancel)
	})

	return r
}
