// Package tjunction arbitrates right of way at a T-shaped road junction with
// three approaches: WEST and EAST at the ends of the through road and SOUTH
// on the stub.
//
// Vehicles arrive through a port-based reactive host and wait in one FIFO
// queue per approach. On every reaction cycle the junction snapshots the
// three queues, applies a fixed rule table to each approach's oldest vehicle
// in WEST, EAST, SOUTH order, and either releases it to an exit port or
// defers it in place for the next cycle.
//
//	h := host.NewLocal()
//	j, err := tjunction.NewJunction("main-street").
//		WithHost(h).
//		WithObserver(observers.NewLoggingObserver(slog.Default())).
//		Build()
//	...
//	result, err := h.DeliverBatch(ctx, j,
//		host.ArrivalOn(tjunction.West, tjunction.NewVehicle(tjunction.Straight)))
package tjunction
