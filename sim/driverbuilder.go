package sim

// Builder can be used to build a Driver.
type Builder struct {
	ctx        *Context
	model      Model
	recorder   Recorder
	clockMode  ClockMode
	stepLimit  VTime
	traceDepth int
}

// MakeBuilder creates a Builder with the default parameters: internal
// clocking, no step bound, trace depth 99.
func MakeBuilder() Builder {
	return Builder{
		clockMode:  ClockInternal,
		traceDepth: 99,
	}
}

// WithContext sets the simulation context of the run. Without one, a
// fresh context with no forwarded arguments is created.
func (b Builder) WithContext(ctx *Context) Builder {
	b.ctx = ctx
	return b
}

// WithModel sets the device under test.
func (b Builder) WithModel(m Model) Builder {
	b.model = m
	return b
}

// WithRecorder sets the waveform recorder. Without one, the run leaves
// no trace, matching a harness that never enables tracing.
func (b Builder) WithRecorder(r Recorder) Builder {
	b.recorder = r
	return b
}

// WithClockMode selects who produces clock edges.
func (b Builder) WithClockMode(m ClockMode) Builder {
	b.clockMode = m
	return b
}

// WithStepLimit sets a safety ceiling on the number of loop iterations.
// Zero means unbounded.
func (b Builder) WithStepLimit(n VTime) Builder {
	b.stepLimit = n
	return b
}

// WithTraceDepth sets how many hierarchy levels of the model's signals
// the recorder binds to.
func (b Builder) WithTraceDepth(depth int) Builder {
	b.traceDepth = depth
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.model == nil {
		panic("a driver requires a model")
	}

	if b.clockMode == ClockExternal {
		if _, ok := b.model.(ClockedModel); !ok {
			panic("external clocking requires a ClockedModel")
		}

		if b.stepLimit == 0 {
			panic("external clocking requires a step limit: " +
				"nothing else guarantees the run terminates")
		}
	}

	if b.traceDepth <= 0 {
		panic("trace depth must be positive")
	}
}

// Build builds the driver and binds the recorder to the model's signal
// hierarchy.
func (b Builder) Build() *Driver {
	b.parametersMustBeValid()

	ctx := b.ctx
	if ctx == nil {
		ctx = NewContext(nil)
	}

	d := &Driver{
		ctx:       ctx,
		model:     b.model,
		recorder:  b.recorder,
		clockMode: b.clockMode,
		stepLimit: b.stepLimit,
	}

	if b.recorder != nil {
		b.recorder.Bind(b.model, b.traceDepth)
	}

	return d
}
