// Package observers provides observers for monitoring junction activity
package observers

import (
	"context"
	"log/slog"

	"github.com/anggasct/tjunction"
)

// LoggingObserver writes junction activity to a structured logger.
// Arrivals and deferrals are logged at debug, releases at info, rejected
// arrivals at warn and errors at error.
type LoggingObserver struct {
	tjunction.BaseObserver
	logger *slog.Logger
}

// NewLoggingObserver creates a logging observer on logger
func NewLoggingObserver(logger *slog.Logger) *LoggingObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &LoggingObserver{logger: logger}
}

// OnArrival logs an accepted arrival
func (o *LoggingObserver) OnArrival(ctx context.Context, approach tjunction.Approach, v tjunction.Vehicle) {
	o.logger.DebugContext(ctx, "vehicle arrived",
		"approach", approach.String(),
		"vehicle_id", v.ID(),
		"intent", v.Intent().String())
}

// OnArrivalRejected logs a vehicle that failed validation
func (o *LoggingObserver) OnArrivalRejected(ctx context.Context, approach tjunction.Approach, v tjunction.Vehicle, err error) {
	o.logger.WarnContext(ctx, "arrival rejected",
		"approach", approach.String(),
		"vehicle_id", v.ID(),
		"intent", int(v.Intent()),
		"error", err)
}

// OnCycleStarted logs the queue lengths a cycle decides on
func (o *LoggingObserver) OnCycleStarted(ctx context.Context, cycle uint64, snap tjunction.Snapshot) {
	o.logger.DebugContext(ctx, "cycle started",
		"cycle", cycle,
		"west", snap.Len(tjunction.West),
		"east", snap.Len(tjunction.East),
		"south", snap.Len(tjunction.South))
}

// OnDecision logs releases and deferrals
func (o *LoggingObserver) OnDecision(ctx context.Context, cycle uint64, d tjunction.Decision) {
	switch {
	case d.Released():
		o.logger.InfoContext(ctx, "vehicle released",
			"cycle", cycle,
			"approach", d.Approach.String(),
			"exit", d.Exit.String(),
			"vehicle_id", d.Vehicle.ID(),
			"intent", d.Vehicle.Intent().String())
	case d.Deferred() && d.Err == nil:
		o.logger.DebugContext(ctx, "vehicle deferred",
			"cycle", cycle,
			"approach", d.Approach.String(),
			"blocked_by", d.BlockedBy.String(),
			"vehicle_id", d.Vehicle.ID())
	}
}

// OnCycleCompleted logs a summary of the cycle
func (o *LoggingObserver) OnCycleCompleted(ctx context.Context, result *tjunction.CycleResult) {
	o.logger.DebugContext(ctx, "cycle completed",
		"cycle", result.Cycle,
		"released", result.ReleasedCount(),
		"deferred", result.DeferredCount())
}

// OnError logs errors
func (o *LoggingObserver) OnError(ctx context.Context, err error) {
	o.logger.ErrorContext(ctx, "junction error",
		"error", err,
		"code", int(tjunction.GetErrorCode(err)))
}
