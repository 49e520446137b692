package biometric

import (
	"context"
	"log/slog"
	"time"

	models "votegate/contracts/biometric"
	"votegate/internal/platform/tracer"
	"votegate/pkg/platform/circuit"
)

// Resilient decorates a Client with a circuit breaker, tracing and metrics.
// Only transport failures count against the breaker; a rejection proves the
// service is up.
type Resilient struct {
	next    Client
	breaker *circuit.Breaker
	logger  *slog.Logger
	tracer  tracer.Tracer
	metrics *Metrics
}

var _ Client = (*Resilient)(nil)

// ResilientOption configures a Resilient client.
type ResilientOption func(*Resilient)

func WithLogger(logger *slog.Logger) ResilientOption {
	return func(r *Resilient) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithTracer(t tracer.Tracer) ResilientOption {
	return func(r *Resilient) {
		if t != nil {
			r.tracer = t
		}
	}
}

func WithMetrics(m *Metrics) ResilientOption {
	return func(r *Resilient) {
		r.metrics = m
	}
}

// WithBreaker replaces the default breaker (5 failures, 30s cooldown).
func WithBreaker(failures int, cooldown time.Duration, opts ...circuit.Option) ResilientOption {
	return func(r *Resilient) {
		opts = append([]circuit.Option{
			circuit.WithFailureThreshold(failures),
			circuit.WithCooldown(cooldown),
		}, opts...)
		r.breaker = r.newBreaker(opts...)
	}
}

// NewResilient wraps next.
func NewResilient(next Client, opts ...ResilientOption) *Resilient {
	r := &Resilient{
		next:   next,
		logger: slog.Default(),
		tracer: tracer.NewNoop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.breaker == nil {
		r.breaker = r.newBreaker()
	}
	return r
}

func (r *Resilient) newBreaker(opts ...circuit.Option) *circuit.Breaker {
	opts = append(opts, circuit.WithStateChange(func(name string, from, to circuit.State) {
		r.logger.Warn("circuit breaker state changed",
			"breaker", name,
			"from", from.String(),
			"to", to.String(),
		)
		r.metrics.setCircuitState(to)
	}))
	return circuit.New("biometric", opts...)
}

// Breaker exposes the breaker for health reporting.
func (r *Resilient) Breaker() *circuit.Breaker {
	return r.breaker
}

func (r *Resilient) call(ctx context.Context, endpoint string, fn func(ctx context.Context) error) (err error) {
	if !r.breaker.Allow() {
		r.metrics.observe(endpoint, "circuit_open", 0)
		return newError(CategoryOutage, endpoint, "circuit open", nil)
	}

	ctx, span := r.tracer.Start(ctx, tracer.SpanBiometricCall, tracer.String(tracer.AttrEndpoint, endpoint))
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = string(CategoryOf(err))
		}
		span.SetAttributes(tracer.String(tracer.AttrOutcome, outcome))
		span.End(err)
		r.metrics.observe(endpoint, outcome, time.Since(start).Seconds())
	}()

	err = fn(ctx)
	if err != nil && IsUnreachable(err) {
		r.breaker.RecordFailure()
		return err
	}
	r.breaker.RecordSuccess()
	return err
}

func (r *Resilient) EncodeFace(ctx context.Context, image []byte) (models.Descriptor, error) {
	var out models.Descriptor
	err := r.call(ctx, endpointEncodeFace, func(ctx context.Context) error {
		var err error
		out, err = r.next.EncodeFace(ctx, image)
		return err
	})
	return out, err
}

func (r *Resilient) CompareFaces(ctx context.Context, stored, captured models.Descriptor, threshold float64) (bool, error) {
	var out bool
	err := r.call(ctx, endpointCompareFaces, func(ctx context.Context) error {
		var err error
		out, err = r.next.CompareFaces(ctx, stored, captured, threshold)
		return err
	})
	return out, err
}

func (r *Resilient) InitFingerprintScanner(ctx context.Context, port string) error {
	return r.call(ctx, endpointFingerprintInit, func(ctx context.Context) error {
		return r.next.InitFingerprintScanner(ctx, port)
	})
}

func (r *Resilient) VerifyFingerprint(ctx context.Context) (models.FingerprintMatch, error) {
	var out models.FingerprintMatch
	err := r.call(ctx, endpointFingerprintVerify, func(ctx context.Context) error {
		var err error
		out, err = r.next.VerifyFingerprint(ctx)
		return err
	})
	return out, err
}

func (r *Resilient) RegisterFingerprint(ctx context.Context, voterID uint64, name string) (string, error) {
	var out string
	err := r.call(ctx, endpointFingerprintRegister, func(ctx context.Context) error {
		var err error
		out, err = r.next.RegisterFingerprint(ctx, voterID, name)
		return err
	})
	return out, err
}

func (r *Resilient) DeleteFingerprint(ctx context.Context, voterID uint64) error {
	return r.call(ctx, endpointFingerprintDelete, func(ctx context.Context) error {
		return r.next.DeleteFingerprint(ctx, voterID)
	})
}
