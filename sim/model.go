package sim

// A Named object is an object that has a name.
type Named interface {
	Name() string
}

// A Signal describes one exposed wire or register of a model. Recorders
// bind to signals; the driver itself never inspects values.
type Signal struct {
	// Name is the hierarchical name, with levels separated by dots.
	Name string

	// Width is the number of bits.
	Width int

	// Get returns the current value, truncated to Width bits.
	Get func() uint64
}

// A Model is a compiled device under test. The model owns all of its
// circuit state. The driver holds exactly one model and only sequences
// its evaluation and tracing.
type Model interface {
	Named

	// Eval recomputes all outputs and next state for the current
	// simulated time.
	Eval()

	// Signals returns the exposed signals in a stable order.
	Signals() []Signal
}

// A ClockedModel is a Model with no self-clocking construct. The driver
// pumps its clock input, one toggle per loop iteration.
type ClockedModel interface {
	Model

	// SetClock drives the externally exposed clock input.
	SetClock(v bool)

	// Clock returns the current value of the clock input.
	Clock() bool
}
