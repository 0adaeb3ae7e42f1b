package web

import (
	"net/http"
	"time"

	"ngo-donation-platform/internal/config"
	"ngo-donation-platform/internal/infra/logging"
	"ngo-donation-platform/internal/infra/redis"
	"ngo-donation-platform/internal/usecase"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Server wires the HTTP boundary onto the use cases. The three gateway
// channels (return/cancel/notify) and the internal API share one router.
type Server struct {
	users     usecase.UserUseCase
	donations usecase.DonationUseCase
	reconcile usecase.ReconcileUseCase
	stats     usecase.StatsUseCase
	auth      *AuthManager
	limiter   *redis.RateLimiter // optional; nil disables login throttling
	replay    *redis.ReplayGuard // optional; nil disables duplicate counting
	client    config.ClientConfig
	log       *zerolog.Logger
}

func NewServer(
	users usecase.UserUseCase,
	donations usecase.DonationUseCase,
	reconcile usecase.ReconcileUseCase,
	stats usecase.StatsUseCase,
	auth *AuthManager,
	limiter *redis.RateLimiter,
	replay *redis.ReplayGuard,
	client config.ClientConfig,
	logger *zerolog.Logger,
) *Server {
	return &Server{
		users:     users,
		donations: donations,
		reconcile: reconcile,
		stats:     stats,
		auth:      auth,
		limiter:   limiter,
		replay:    replay,
		client:    client,
		log:       logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.handleRegister)
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/registration/me", s.handleMyRegistration)
			r.Post("/donation/initiate", s.handleInitiateDonation)
			r.Get("/donation/me", s.handleMyDonations)
		})

		// Gateway-facing endpoints; the gateway cannot authenticate.
		r.Post("/donation/callback", s.handleStatusCallback)
		r.Get("/payment/return", s.handleReturn)
		r.Get("/payment/cancel", s.handleCancel)
		r.Post("/payment/notify", s.handleNotify)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth, s.requireAdmin)
			r.Get("/admin/stats", s.handleAdminStats)
			r.Get("/admin/registrations", s.handleAdminRegistrations)
			r.Get("/admin/donations", s.handleAdminDonations)
		})
	})

	return r
}

// requestLogger logs each request and seeds the context with the request id so
// downstream log lines carry it as trace_id.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		reqID := middleware.GetReqID(r.Context())
		if reqID != "" {
			r = r.WithContext(logging.WithTraceID(r.Context(), reqID))
		}
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Str("request_id", reqID).
			Msg("http request")
	})
}
