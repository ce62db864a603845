// Package host provides an in-process implementation of the reactive host
// a junction runs inside: named ports, synchronous delivery to registered
// arrival handlers, and captured sends.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/anggasct/tjunction"
)

var (
	// ErrUnknownPort is returned for ports that were never declared
	ErrUnknownPort = errors.New("port not declared")
	// ErrNoHandler is returned when delivering to an input nobody listens on
	ErrNoHandler = errors.New("no arrival handler registered")
	// ErrHandlerExists is returned when an input already has a handler
	ErrHandlerExists = errors.New("arrival handler already registered")
)

// Sink receives every vehicle sent out of the port it is connected to
type Sink func(ctx context.Context, port tjunction.Port, v tjunction.Vehicle) error

// Arrival is one vehicle delivered on an input port
type Arrival struct {
	Port    tjunction.Port
	Vehicle tjunction.Vehicle
}

// Message is one vehicle sent out of an output port
type Message struct {
	Port    tjunction.Port
	Vehicle tjunction.Vehicle
}

// ArrivalOn builds an arrival on the input port of approach
func ArrivalOn(approach tjunction.Approach, v tjunction.Vehicle) Arrival {
	return Arrival{Port: approach.InputPort(), Vehicle: v}
}

// Option configures a Local host
type Option func(*Local)

// WithLogger sets the logger used for delivery and send traces
func WithLogger(logger *slog.Logger) Option {
	return func(h *Local) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// Local is a single-process host. It declares the junction's input, exit
// and wait ports up front.
type Local struct {
	inputs   map[tjunction.Port]bool
	outputs  map[tjunction.Port]bool
	handlers map[tjunction.Port]tjunction.ArrivalHandler
	sent     map[tjunction.Port][]tjunction.Vehicle
	log      []Message
	sinks    map[tjunction.Port][]Sink
	failures map[tjunction.Port]error
	logger   *slog.Logger
	mutex    sync.RWMutex
}

// NewLocal creates a host with the standard junction ports declared
func NewLocal(opts ...Option) *Local {
	h := &Local{
		inputs:   make(map[tjunction.Port]bool),
		outputs:  make(map[tjunction.Port]bool),
		handlers: make(map[tjunction.Port]tjunction.ArrivalHandler),
		sent:     make(map[tjunction.Port][]tjunction.Vehicle),
		log:      make([]Message, 0),
		sinks:    make(map[tjunction.Port][]Sink),
		failures: make(map[tjunction.Port]error),
		logger:   slog.Default(),
	}
	for _, a := range tjunction.Approaches {
		h.inputs[a.InputPort()] = true
		h.outputs[a.ExitPort()] = true
		h.outputs[a.WaitPort()] = true
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Input declares an additional input port
func (h *Local) Input(port tjunction.Port) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.inputs[port] = true
}

// Output declares an additional output port
func (h *Local) Output(port tjunction.Port) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.outputs[port] = true
}

// RegisterArrivalHandler implements tjunction.Host
func (h *Local) RegisterArrivalHandler(port tjunction.Port, handler tjunction.ArrivalHandler) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.inputs[port] {
		return fmt.Errorf("%w: input '%s'", ErrUnknownPort, port)
	}
	if _, exists := h.handlers[port]; exists {
		return fmt.Errorf("%w: input '%s'", ErrHandlerExists, port)
	}
	h.handlers[port] = handler
	return nil
}

// UnregisterArrivalHandler implements tjunction.HandlerRemover
func (h *Local) UnregisterArrivalHandler(port tjunction.Port) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if !h.inputs[port] {
		return fmt.Errorf("%w: input '%s'", ErrUnknownPort, port)
	}
	if _, exists := h.handlers[port]; !exists {
		return fmt.Errorf("%w: input '%s'", ErrNoHandler, port)
	}
	delete(h.handlers, port)
	return nil
}

// Send implements tjunction.Host. The vehicle is passed to every sink
// connected to port and recorded only once all of them accepted it.
func (h *Local) Send(ctx context.Context, port tjunction.Port, v tjunction.Vehicle) error {
	h.mutex.RLock()
	declared := h.outputs[port]
	failure := h.failures[port]
	sinks := append([]Sink(nil), h.sinks[port]...)
	h.mutex.RUnlock()

	if !declared {
		return fmt.Errorf("%w: output '%s'", ErrUnknownPort, port)
	}
	if failure != nil {
		return failure
	}

	for _, sink := range sinks {
		if err := sink(ctx, port, v); err != nil {
			return fmt.Errorf("sink on '%s': %w", port, err)
		}
	}

	h.mutex.Lock()
	h.sent[port] = append(h.sent[port], v)
	h.log = append(h.log, Message{Port: port, Vehicle: v})
	h.mutex.Unlock()

	h.logger.DebugContext(ctx, "vehicle sent",
		"port", string(port),
		"vehicle_id", v.ID(),
		"intent", v.Intent().String())
	return nil
}

// Deliver hands v to the handler registered on port and waits for it
func (h *Local) Deliver(ctx context.Context, port tjunction.Port, v tjunction.Vehicle) error {
	h.mutex.RLock()
	declared := h.inputs[port]
	handler, ok := h.handlers[port]
	h.mutex.RUnlock()

	if !declared {
		return fmt.Errorf("%w: input '%s'", ErrUnknownPort, port)
	}
	if !ok {
		return fmt.Errorf("%w: input '%s'", ErrNoHandler, port)
	}

	h.logger.DebugContext(ctx, "vehicle delivered",
		"port", string(port),
		"vehicle_id", v.ID(),
		"intent", v.Intent().String())
	return handler(ctx, v)
}

// DeliverBatch delivers every arrival in order and then triggers exactly one
// reaction. Delivery errors do not stop the batch; they are joined and
// returned alongside the cycle result.
func (h *Local) DeliverBatch(ctx context.Context, reactor tjunction.Reactor, arrivals ...Arrival) (*tjunction.CycleResult, error) {
	errs := make([]error, 0)
	for _, arrival := range arrivals {
		if err := h.Deliver(ctx, arrival.Port, arrival.Vehicle); err != nil {
			errs = append(errs, err)
		}
	}
	result := reactor.React(ctx)
	return result, errors.Join(errs...)
}

// Connect attaches sink to an output port
func (h *Local) Connect(port tjunction.Port, sink Sink) error {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if !h.outputs[port] {
		return fmt.Errorf("%w: output '%s'", ErrUnknownPort, port)
	}
	h.sinks[port] = append(h.sinks[port], sink)
	return nil
}

// FailSends makes every send on port fail with err until cleared with a nil err
func (h *Local) FailSends(port tjunction.Port, err error) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if err == nil {
		delete(h.failures, port)
		return
	}
	h.failures[port] = err
}

// Sent returns the vehicles sent out of port, in send order
func (h *Local) Sent(port tjunction.Port) []tjunction.Vehicle {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	result := make([]tjunction.Vehicle, len(h.sent[port]))
	copy(result, h.sent[port])
	return result
}

// SendLog returns every send across all ports, in send order
func (h *Local) SendLog() []Message {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	result := make([]Message, len(h.log))
	copy(result, h.log)
	return result
}

// Reset forgets all recorded sends; handlers, sinks and failures are kept
func (h *Local) Reset() {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	h.sent = make(map[tjunction.Port][]tjunction.Vehicle)
	h.log = make([]Message, 0)
}
