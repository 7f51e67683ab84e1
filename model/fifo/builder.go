package fifo

import (
	"github.com/hwbench/hwbench/sim"
)

// Builder can be used to build a FIFO testbench model.
type Builder struct {
	ctx        *sim.Context
	name       string
	depth      int
	width      int
	halfPeriod sim.VTime
}

// MakeBuilder creates a Builder with the default parameters: depth 8,
// width 8, clock half period 5 ticks.
func MakeBuilder() Builder {
	return Builder{
		name:       "tb_fifo",
		depth:      8,
		width:      8,
		halfPeriod: 5,
	}
}

// WithContext sets the simulation context the model finishes through.
func (b Builder) WithContext(ctx *sim.Context) Builder {
	b.ctx = ctx
	return b
}

// WithName sets the name of the model.
func (b Builder) WithName(name string) Builder {
	b.name = name
	return b
}

// WithDepth sets the number of queue entries.
func (b Builder) WithDepth(depth int) Builder {
	b.depth = depth
	return b
}

// WithWidth sets the data width in bits.
func (b Builder) WithWidth(width int) Builder {
	b.width = width
	return b
}

// WithHalfPeriod sets how many ticks the internal clock divider waits
// between toggles.
func (b Builder) WithHalfPeriod(n sim.VTime) Builder {
	b.halfPeriod = n
	return b
}

func (b Builder) parametersMustBeValid() {
	if b.ctx == nil {
		panic("a FIFO model requires a context")
	}

	if b.depth <= 0 {
		panic("FIFO depth must be positive")
	}

	if b.width <= 0 || b.width > 64 {
		panic("FIFO width must be between 1 and 64 bits")
	}

	if b.halfPeriod == 0 {
		panic("the clock half period must be positive")
	}
}

// Build builds the model.
func (b Builder) Build() *Model {
	b.parametersMustBeValid()

	m := &Model{
		ctx:        b.ctx,
		name:       b.name,
		depth:      b.depth,
		width:      b.width,
		halfPeriod: b.halfPeriod,
		mask:       uint64(1)<<uint(b.width) - 1,
		buf:        make([]uint64, b.depth),
	}

	return m
}
