package tjunction

import "strings"

// DefaultName is used when a junction is built without a name
const DefaultName = "junction"

// JunctionBuilder configures and wires a Junction into its host
type JunctionBuilder struct {
	name        string
	host        Host
	observers   []Observer
	parallel    bool
	waitNotices bool
}

// NewJunction starts building a junction with the given name
func NewJunction(name string) *JunctionBuilder {
	return &JunctionBuilder{
		name:      name,
		observers: make([]Observer, 0),
	}
}

// WithHost sets the reactive host the junction registers its handlers with
func (b *JunctionBuilder) WithHost(host Host) *JunctionBuilder {
	b.host = host
	return b
}

// WithObserver adds an observer; observers are notified in the order added
func (b *JunctionBuilder) WithObserver(observer Observer) *JunctionBuilder {
	if observer != nil {
		b.observers = append(b.observers, observer)
	}
	return b
}

// WithParallelDispatch makes each cycle carry out its releases concurrently
func (b *JunctionBuilder) WithParallelDispatch(enabled bool) *JunctionBuilder {
	b.parallel = enabled
	return b
}

// WithWaitNotices makes every deferral send the held candidate to the
// approach's wait port
func (b *JunctionBuilder) WithWaitNotices(enabled bool) *JunctionBuilder {
	b.waitNotices = enabled
	return b
}

// Build creates the junction and registers its arrival handlers with the host
func (b *JunctionBuilder) Build() (*Junction, error) {
	if b.host == nil {
		return nil, NewConfigurationError("JunctionBuilder", "no host configured")
	}

	name := strings.TrimSpace(b.name)
	if name == "" {
		name = DefaultName
	}

	j := newJunction(name)
	j.parallel = b.parallel
	j.waitNotices = b.waitNotices
	for _, observer := range b.observers {
		j.AddObserver(observer)
	}

	if err := j.attach(b.host); err != nil {
		return nil, err
	}
	return j, nil
}

// New builds a junction with default settings on host
func New(host Host) (*Junction, error) {
	return NewJunction(DefaultName).WithHost(host).Build()
}
