// Package health serves the liveness, readiness and status probes. A kiosk
// cannot vote without the ledger or the biometric service, so those checks
// gate readiness; the roster cache and the audit stream only degrade it.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"votegate/pkg/platform/httputil"
)

// Version is set at build time via ldflags.
var Version = "dev"

// CheckFunc returns nil when the dependency is usable.
type CheckFunc func(ctx context.Context) error

// DefaultCheckTimeout bounds each readiness check.
const DefaultCheckTimeout = 2 * time.Second

// Probe statuses.
const (
	StatusReady    = "ready"
	StatusDegraded = "degraded"
	StatusNotReady = "not_ready"
)

type check struct {
	name     string
	fn       CheckFunc
	critical bool
}

// Handler serves /health, /health/live and /health/ready.
type Handler struct {
	startTime    time.Time
	environment  string
	checkTimeout time.Duration
	now          func() time.Time

	mu     sync.RWMutex
	checks []check
}

func New(environment string) *Handler {
	return &Handler{
		startTime:    time.Now(),
		environment:  environment,
		checkTimeout: DefaultCheckTimeout,
		now:          time.Now,
	}
}

// RegisterCheck adds a dependency the service cannot run without.
func (h *Handler) RegisterCheck(name string, fn CheckFunc) {
	h.register(check{name: name, fn: fn, critical: true})
}

// RegisterOptional adds a dependency whose failure only degrades the service.
func (h *Handler) RegisterOptional(name string, fn CheckFunc) {
	h.register(check{name: name, fn: fn})
}

func (h *Handler) register(c check) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks = append(h.checks, c)
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.HandleStatus)
	r.Get("/health/live", h.HandleLiveness)
	r.Get("/health/ready", h.HandleReadiness)
}

type LivenessResponse struct {
	Status string `json:"status"`
}

// HandleLiveness answers 200 while the process serves HTTP.
func (h *Handler) HandleLiveness(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, LivenessResponse{Status: "alive"})
}

// CheckResult is one dependency's outcome.
type CheckResult struct {
	Status    string `json:"status"`
	Critical  bool   `json:"critical"`
	Error     string `json:"error,omitempty"`
	LatencyMS int64  `json:"latency_ms"`
}

type ReadinessResponse struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// HandleReadiness runs every check concurrently. A failed critical check
// answers 503; a failed optional one answers 200 with status "degraded".
func (h *Handler) HandleReadiness(w http.ResponseWriter, r *http.Request) {
	resp := h.Ready(r.Context())
	code := http.StatusOK
	if resp.Status == StatusNotReady {
		code = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, code, resp)
}

// Ready evaluates the registered checks.
func (h *Handler) Ready(ctx context.Context) ReadinessResponse {
	h.mu.RLock()
	checks := append([]check(nil), h.checks...)
	h.mu.RUnlock()

	results := make([]CheckResult, len(checks))
	var g errgroup.Group
	for i, c := range checks {
		g.Go(func() error {
			results[i] = h.run(ctx, c)
			return nil
		})
	}
	_ = g.Wait()

	resp := ReadinessResponse{Status: StatusReady}
	if len(checks) > 0 {
		resp.Checks = make(map[string]CheckResult, len(checks))
	}
	for i, c := range checks {
		res := results[i]
		resp.Checks[c.name] = res
		if res.Status == "up" {
			continue
		}
		if c.critical {
			resp.Status = StatusNotReady
		} else if resp.Status == StatusReady {
			resp.Status = StatusDegraded
		}
	}
	return resp
}

func (h *Handler) run(ctx context.Context, c check) CheckResult {
	ctx, cancel := context.WithTimeout(ctx, h.checkTimeout)
	defer cancel()

	start := h.now()
	err := c.fn(ctx)
	res := CheckResult{
		Status:    "up",
		Critical:  c.critical,
		LatencyMS: h.now().Sub(start).Milliseconds(),
	}
	if err != nil {
		res.Status = "down"
		res.Error = err.Error()
	}
	return res
}

type StatusResponse struct {
	Status        string   `json:"status"`
	Version       string   `json:"version"`
	Environment   string   `json:"environment"`
	UptimeSeconds int64    `json:"uptime_seconds"`
	Timestamp     string   `json:"timestamp"`
	Dependencies  []string `json:"dependencies,omitempty"`
}

// HandleStatus reports version, uptime and the registered dependency names.
func (h *Handler) HandleStatus(w http.ResponseWriter, _ *http.Request) {
	h.mu.RLock()
	deps := make([]string, 0, len(h.checks))
	for _, c := range h.checks {
		deps = append(deps, c.name)
	}
	h.mu.RUnlock()
	sort.Strings(deps)

	now := h.now()
	httputil.WriteJSON(w, http.StatusOK, StatusResponse{
		Status:        "healthy",
		Version:       Version,
		Environment:   h.environment,
		UptimeSeconds: int64(now.Sub(h.startTime).Seconds()),
		Timestamp:     now.UTC().Format(time.RFC3339),
		Dependencies:  deps,
	})
}
