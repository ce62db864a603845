package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anggasct/tjunction"
	"github.com/anggasct/tjunction/pkg/config"
	"github.com/anggasct/tjunction/pkg/host"
	"github.com/anggasct/tjunction/pkg/observers"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
)

// Option configures a Runner
type Option func(*Runner)

// WithLogger sets the logger shared by the host and the logging observer
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithRegisterer exports junction metrics on reg when metrics are enabled
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(r *Runner) {
		r.registerer = reg
	}
}

// WithTracerProvider records one span per cycle on tp
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(r *Runner) {
		r.tracerProvider = tp
	}
}

// WithObserver adds an observer to every junction the runner builds
func WithObserver(observer tjunction.Observer) Option {
	return func(r *Runner) {
		if observer != nil {
			r.observers = append(r.observers, observer)
		}
	}
}

// Runner replays scenarios. Every Run builds a fresh host and junction.
type Runner struct {
	cfg            config.Config
	logger         *slog.Logger
	registerer     prometheus.Registerer
	tracerProvider trace.TracerProvider
	observers      []tjunction.Observer
}

// NewRunner creates a runner for cfg
func NewRunner(cfg config.Config, opts ...Option) *Runner {
	r := &Runner{
		cfg:       cfg,
		logger:    slog.Default(),
		observers: make([]tjunction.Observer, 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run replays sc and returns what happened. Rejected arrivals and failed
// sends are part of the report; only setup failures and context
// cancellation return an error.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (*Report, error) {
	if err := sc.Validate(); err != nil {
		return nil, err
	}

	h := host.NewLocal(host.WithLogger(r.logger))
	validation := observers.NewValidationObserver()

	b := r.cfg.Builder().
		WithHost(h).
		WithObserver(observers.NewLoggingObserver(r.logger)).
		WithObserver(validation)
	if r.cfg.Metrics.Enabled && r.registerer != nil {
		b = b.WithObserver(observers.NewMetricsObserver(r.registerer, r.cfg.Metrics.Namespace))
	}
	if r.tracerProvider != nil {
		b = b.WithObserver(observers.NewTracingObserver(r.tracerProvider))
	}
	for _, o := range r.observers {
		b = b.WithObserver(o)
	}

	j, err := b.Build()
	if err != nil {
		return nil, fmt.Errorf("build junction: %w", err)
	}

	report := newReport(sc.Name, j.Name())
	for i, step := range sc.Steps {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		stepReport, err := r.runStep(ctx, j, h, i, step)
		report.Steps = append(report.Steps, stepReport)
		if err != nil {
			return report, err
		}
	}

	report.finish(j, h, validation)
	r.logger.InfoContext(ctx, "scenario finished",
		"scenario", sc.Name,
		"steps", len(report.Steps),
		"released", report.Released,
		"waiting", report.WaitingCount())
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, j *tjunction.Junction, h *host.Local, index int, step Step) (StepReport, error) {
	sr := StepReport{
		Index:    index,
		Rejected: make([]Rejection, 0),
		Cycles:   make([]CycleReport, 0),
	}

	arrivals := make([]host.Arrival, 0, len(step.Arrivals))
	for _, arrival := range step.Arrivals {
		approach, v, err := arrival.Vehicle()
		if err != nil {
			return sr, err
		}
		arrivals = append(arrivals, host.ArrivalOn(approach, v))
	}

	result, deliverErr := h.DeliverBatch(ctx, j, arrivals...)
	sr.Rejected = append(sr.Rejected, rejections(deliverErr)...)
	sr.Cycles = append(sr.Cycles, newCycleReport(result))

	if step.Settle && result.ReleasedCount() > 0 {
		results, err := j.Settle(ctx, r.cfg.MaxSettleCycles)
		for _, res := range results {
			sr.Cycles = append(sr.Cycles, newCycleReport(res))
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return sr, err
		}
	}
	return sr, nil
}

// rejections splits a joined delivery error back into one entry per arrival
func rejections(err error) []Rejection {
	if err == nil {
		return nil
	}
	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}

	result := make([]Rejection, 0, len(errs))
	for _, e := range errs {
		rej := Rejection{Error: e.Error()}
		var intentErr *tjunction.IntentError
		var queueErr *tjunction.QueueError
		switch {
		case errors.As(e, &intentErr):
			rej.VehicleID = intentErr.VehicleID
		case errors.As(e, &queueErr):
			rej.VehicleID = queueErr.VehicleID
		}
		result = append(result, rej)
	}
	return result
}
