package httpserver

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/yndnr/tracklog-go/internal/core/service"
	"github.com/yndnr/tracklog-go/internal/server/config"
	"github.com/yndnr/tracklog-go/internal/server/httpserver/handler"
	"github.com/yndnr/tracklog-go/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	// Tracking handles the tracker endpoints.
	Tracking *service.TrackingService

	// Logger for request logging.
	Logger *slog.Logger

	// Metrics records request counts and serves /metrics. Optional.
	Metrics *metric.Registry

	// RateLimit is applied per client IP to the tracker endpoints.
	RateLimit config.RateLimitConfig

	// TrustedProxies may set the client address through forwarding headers.
	TrustedProxies []netip.Prefix

	// Ready backs /ready. Nil means always ready.
	Ready func() error
}

// NewRouter creates the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	h := handler.New(&handler.Config{
		Tracking: cfg.Tracking,
		Logger:   log,
		Ready:    cfg.Ready,
	})

	// Order: Recover -> RequestID -> ClientIP -> RateLimit -> Audit -> Metrics -> Handler
	tracker := Chain(h,
		Recover(log),
		RequestID(),
		ClientIP(cfg.TrustedProxies),
		RateLimit(cfg.RateLimit.Rate, cfg.RateLimit.Burst),
		Audit(log),
		Metrics(cfg.Metrics),
	)
	probe := Chain(h, Recover(log), RequestID())

	mux := http.NewServeMux()

	mux.Handle(handler.RouteLocationUpdate, tracker)
	mux.Handle(handler.RouteDataUpdate, tracker)
	mux.Handle(handler.RouteLatestLocations, tracker)
	mux.Handle(handler.RouteLatestData, tracker)

	mux.Handle(handler.RouteHealth, probe)
	mux.Handle(handler.RouteReady, probe)

	if cfg.Metrics != nil {
		mux.Handle("GET /metrics", Chain(cfg.Metrics.Handler(), Recover(log)))
	}

	return mux
}
