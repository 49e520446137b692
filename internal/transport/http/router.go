package httptransport

import (
	"log/slog"
	"net/http"
	"net/netip"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"votegate/internal/platform/health"
	dErrors "votegate/pkg/domain-errors"
	"votegate/pkg/platform/httputil"
	"votegate/pkg/platform/middleware/metadata"
	"votegate/pkg/platform/middleware/request"
	"votegate/pkg/platform/middleware/requesttime"
)

// RouteRegistrar is implemented by every module handler.
type RouteRegistrar interface {
	Register(r chi.Router)
}

// Config holds the router-level middleware settings.
type Config struct {
	MaxBodyBytes   int64
	RequestTimeout time.Duration
	TrustedProxies []netip.Prefix
}

// DefaultRequestTimeout leaves room for a fingerprint scan behind the
// biometric client timeout.
const DefaultRequestTimeout = 30 * time.Second

// NewRouter wires the middleware stack, health and metrics endpoints, and
// every module's routes. Handlers delegate to services and hold no business
// logic.
func NewRouter(cfg Config, logger *slog.Logger, metrics *request.Metrics, healthHandler *health.Handler, modules ...RouteRegistrar) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	r := chi.NewRouter()
	r.Use(request.Recovery(logger))
	r.Use(request.RequestID)
	r.Use(requesttime.Middleware)
	r.Use(metadata.Middleware(cfg.TrustedProxies))
	r.Use(request.Logger(logger))
	r.Use(request.Latency(metrics))
	if cfg.MaxBodyBytes > 0 {
		r.Use(request.BodyLimit(cfg.MaxBodyBytes))
	}

	healthHandler.Register(r)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(request.Timeout(cfg.RequestTimeout))
		for _, m := range modules {
			m.Register(r)
		}
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "route not found"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httputil.WriteJSON(w, http.StatusMethodNotAllowed, httputil.ErrorResponse{
			Error:            "method_not_allowed",
			ErrorDescription: "method not allowed",
		})
	})
	return r
}
