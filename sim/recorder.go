package sim

// A Recorder accepts time-stamped snapshots of a model's signal values
// and serializes them for offline inspection.
//
// The lifecycle is Bind, Open, repeated Dump, Close. No Dump call is
// valid before Open or after Close.
type Recorder interface {
	// Bind associates the recorder with the model's signal hierarchy,
	// down to depth levels. Must be called once, before Open.
	Bind(m Model, depth int)

	// Open creates the output resource.
	Open() error

	// Dump appends a snapshot of all bound signal values at time t.
	// Successive calls must use strictly increasing times.
	Dump(t VTime)

	// Close flushes and finalizes the output. The first call wins;
	// later calls are no-ops.
	Close() error
}
