package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kodecocodes/iTDD-DogPatchServer/internal/service"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/health"
	"github.com/kodecocodes/iTDD-DogPatchServer/pkg/middleware"
)

const serviceName = "dogpatch"

// Deps collects what the router needs.
type Deps struct {
	Users   *service.UserService
	Reviews *service.ReviewService
	Dogs    *service.DogService
	Auth    *service.AuthService
	Health  *health.Handler
	Logger  *slog.Logger
	CORS    middleware.CORSConfig

	// LoginLimiter and ReviewLimiter throttle credential checks and review
	// writes per client IP. Nil disables the limit.
	LoginLimiter  *middleware.RateLimiter
	ReviewLimiter *middleware.RateLimiter

	// TrustProxy takes the client address from X-Forwarded-For/X-Real-IP.
	// Only enable it behind a proxy that overwrites those headers.
	TrustProxy bool

	// PublicDir, when set, is served under /users/* for locally stored
	// images.
	PublicDir string
}

// NewRouter creates a chi router with all DogPatch routes registered.
func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	if d.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(middleware.Recovery(d.Logger))
	r.Use(middleware.RequestLogging(d.Logger))
	r.Use(middleware.Tracing(serviceName))
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(middleware.PrometheusMetrics(serviceName))
	r.Use(middleware.CORS(d.CORS))

	r.Get("/health/live", d.Health.LivenessHandler())
	r.Get("/health/ready", d.Health.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	if d.PublicDir != "" {
		r.Handle("/users/*", publicFiles(d.PublicDir))
	}

	requireAuth := middleware.Authenticate(tokenValidator(d.Auth))
	loginLimit := limit(d.LoginLimiter)
	reviewLimit := limit(d.ReviewLimiter)

	users := NewUserHandler(d.Users, d.Reviews, d.Logger)
	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Post("/", users.Register)
		r.Get("/search", users.Search)
		r.Get("/{id}", users.GetUser)
		r.Get("/{id}/reviews", users.ListReviews)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Put("/", users.Update)
			r.With(reviewLimit).Post("/{id}/reviews", users.CreateReview)
		})
	})

	dogs := NewDogHandler(d.Dogs, d.Logger)
	r.Route("/api/v1/dogs", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.Get("/", dogs.List)
		r.Get("/{id}", dogs.Get)
		r.Get("/{id}/seller", dogs.Seller)

		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/", dogs.Create)
			r.Put("/{id}/image", dogs.UploadImage)
		})
	})

	authHandler := NewAuthHandler(d.Auth, d.Logger)
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(middleware.ContentTypeJSON)

		r.With(loginLimit).Post("/login", authHandler.Login)
		r.With(requireAuth).Post("/logout", authHandler.Logout)
	})

	return r
}

func limit(l *middleware.RateLimiter) func(http.Handler) http.Handler {
	if l == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return l.Middleware
}

// publicFiles serves stored images from dir without directory listings.
func publicFiles(dir string) http.Handler {
	fs := http.FileServer(http.Dir(dir))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("X-Content-Type-Options", "nosniff")
		fs.ServeHTTP(w, r)
	})
}
