package tjunction

import "context"

// ArrivalHandler is invoked by the host, synchronously, once per vehicle
// delivered on an input port
type ArrivalHandler func(ctx context.Context, v Vehicle) error

// Host is the port-based reactive runtime the junction runs inside.
// The junction only registers arrival handlers and sends vehicles; the host
// owns port declaration, delivery, process lifecycle and when cycles run.
type Host interface {
	// RegisterArrivalHandler binds handler to an input port
	RegisterArrivalHandler(port Port, handler ArrivalHandler) error

	// Send forwards v out of port. Exactly one call per release decision.
	Send(ctx context.Context, port Port, v Vehicle) error
}

// HandlerRemover is implemented by hosts that can unbind an arrival handler.
// Build uses it to undo a partial registration so the host can be reused.
type HandlerRemover interface {
	UnregisterArrivalHandler(port Port) error
}

// Reactor is implemented by components the host triggers after delivering
// an arrival batch
type Reactor interface {
	React(ctx context.Context) *CycleResult
}
