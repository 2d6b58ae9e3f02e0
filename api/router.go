package api

import (
	"context"
	"net/http"

	"dreamchain/metrics"
	"dreamchain/service"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Services bundles the application services served over HTTP
type Services struct {
	Donations service.DonationService
	Users     service.UserService
	Dreams    service.DreamService
	Auth      service.AuthService
	Chain     service.ChainService
}

// Handler serves the JSON HTTP API
type Handler struct {
	services Services
	ping     func(ctx context.Context) error
}

// Option customizes the router
type Option func(*routerOptions)

type routerOptions struct {
	metrics *metrics.Collector
	ping    func(ctx context.Context) error
}

// WithMetrics instruments every route and exposes /metrics
func WithMetrics(collector *metrics.Collector) Option {
	return func(o *routerOptions) {
		o.metrics = collector
	}
}

// WithHealthCheck makes /health report the result of ping
func WithHealthCheck(ping func(ctx context.Context) error) Option {
	return func(o *routerOptions) {
		o.ping = ping
	}
}

// NewRouter builds the chi router for every API route
func NewRouter(services Services, opts ...Option) http.Handler {
	var o routerOptions
	for _, opt := range opts {
		opt(&o)
	}

	h := &Handler{services: services, ping: o.ping}

	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		requestLogger,
		middleware.Recoverer,
	)
	if o.metrics != nil {
		r.Use(o.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", o.metrics.Handler())
	}

	r.Get("/health", h.Health)

	auth := h.authenticate

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/verify", h.Verify)
	})

	r.Route("/users", func(r chi.Router) {
		r.With(auth).Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Get("/wallet/{address}", h.GetUserByWallet)
		r.With(auth).Put("/wallet/{address}", h.UpdateUsername)
		r.Get("/wallet/{address}/dreams/created", h.CreatedDreams)
		r.Get("/wallet/{address}/dreams/donated", h.DonatedDonations)
		r.Get("/wallet/{address}/dreams/completed", h.CompletedDreamsByWallet)
		r.With(auth).Post("/{id}/update-rating", h.UpdateRating)
		r.Get("/{id}", h.GetUser)
	})

	r.Route("/dreams", func(r chi.Router) {
		r.With(auth).Post("/", h.CreateDream)
		r.Get("/", h.ListDreams)
		r.Get("/top", h.TopDreams)
		r.Get("/stats", h.Stats)
		r.Get("/next-id", h.NextDreamID)
		r.Get("/new", h.NewDreams)
		r.Get("/random", h.RandomDream)
		r.Get("/completed", h.CompletedDreams)
		r.Get("/user/{userId}", h.DreamsByUser)
		r.With(auth).Post("/{id}/withdraw", h.WithdrawFunds)
		r.Get("/{id}", h.GetDream)
	})

	r.Route("/donations", func(r chi.Router) {
		r.With(auth).Post("/", h.RecordDonation)
		r.Get("/", h.ListDonations)
		r.Get("/dream/{dreamId}", h.DonationsByDream)
		r.Get("/wallet/{address}", h.DonationsByWallet)
		r.Get("/tx/{txHash}", h.DonationByTxHash)
		r.Get("/{id}", h.GetDonation)
	})

	r.Route("/blockchain", func(r chi.Router) {
		r.Get("/verify/{txHash}", h.VerifyTransaction)
		r.Get("/balance/{address}", h.Balance)
		r.Get("/can-create-dream/{address}", h.CanCreateDream)
	})

	return r
}
