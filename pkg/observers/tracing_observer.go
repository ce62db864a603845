package observers

import (
	"context"
	"sync"

	"github.com/anggasct/tjunction"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/anggasct/tjunction"

// TracingObserver opens one span per cycle and records each decision as a
// span event. A cycle that carries errors ends with an error status.
type TracingObserver struct {
	tjunction.BaseObserver
	tracer trace.Tracer
	spans  map[uint64]trace.Span
	mutex  sync.Mutex
}

// NewTracingObserver creates a tracing observer on tp
func NewTracingObserver(tp trace.TracerProvider) *TracingObserver {
	return &TracingObserver{
		tracer: tp.Tracer(tracerName),
		spans:  make(map[uint64]trace.Span),
	}
}

// OnArrivalRejected adds an event to the caller's span, if there is one
func (o *TracingObserver) OnArrivalRejected(ctx context.Context, approach tjunction.Approach, v tjunction.Vehicle, err error) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent("arrival rejected", trace.WithAttributes(
		attribute.String("junction.approach", approach.String()),
		attribute.String("vehicle.id", v.ID()),
		attribute.String("error", err.Error()),
	))
}

// OnCycleStarted starts the cycle span
func (o *TracingObserver) OnCycleStarted(ctx context.Context, cycle uint64, snap tjunction.Snapshot) {
	_, span := o.tracer.Start(ctx, "tjunction.cycle", trace.WithAttributes(
		attribute.Int64("junction.cycle", int64(cycle)),
		attribute.Int("junction.queue.west", snap.Len(tjunction.West)),
		attribute.Int("junction.queue.east", snap.Len(tjunction.East)),
		attribute.Int("junction.queue.south", snap.Len(tjunction.South)),
	))

	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.spans[cycle] = span
}

// OnDecision records the decision on the cycle span
func (o *TracingObserver) OnDecision(ctx context.Context, cycle uint64, d tjunction.Decision) {
	if d.Outcome == tjunction.OutcomeIdle {
		return
	}

	o.mutex.Lock()
	span, ok := o.spans[cycle]
	o.mutex.Unlock()
	if !ok {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("junction.approach", d.Approach.String()),
		attribute.String("vehicle.id", d.Vehicle.ID()),
		attribute.String("vehicle.intent", d.Vehicle.Intent().String()),
	}
	switch {
	case d.Err != nil:
		attrs = append(attrs, attribute.String("error", d.Err.Error()))
	case d.Outcome == tjunction.OutcomeRelease:
		attrs = append(attrs, attribute.String("junction.exit", d.Exit.String()))
	default:
		attrs = append(attrs, attribute.String("junction.blocked_by", d.BlockedBy.String()))
	}
	span.AddEvent(d.Outcome.String(), trace.WithAttributes(attrs...))
}

// OnCycleCompleted ends the cycle span
func (o *TracingObserver) OnCycleCompleted(ctx context.Context, result *tjunction.CycleResult) {
	o.mutex.Lock()
	span, ok := o.spans[result.Cycle]
	delete(o.spans, result.Cycle)
	o.mutex.Unlock()
	if !ok {
		return
	}

	span.SetAttributes(
		attribute.Int("junction.released", result.ReleasedCount()),
		attribute.Int("junction.deferred", result.DeferredCount()),
	)
	if result.Error != nil {
		span.RecordError(result.Error)
		span.SetStatus(codes.Error, result.Error.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
