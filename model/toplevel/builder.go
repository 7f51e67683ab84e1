package toplevel

import (
	"github.com/hwbench/hwbench/sim"
)

// Builder can be used to build a counter testbench model.
type Builder struct {
	ctx      *sim.Context
	name     string
	finishAt uint64
}

// MakeBuilder creates a Builder with the default parameters: no terminal
// cycle, so the model never finishes on its own.
func MakeBuilder() Builder {
	return Builder{
		name: "tb_top",
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

// WithFinishAtCycle makes the model finish the run after n rising clock
// edges. Zero disables the terminal cycle.
func (b Builder) WithFinishAtCycle(n uint64) Builder {
	b.finishAt = n
	return b
}

// Build builds the model.
func (b Builder) Build() *Model {
	if b.ctx == nil {
		panic("a counter model requires a context")
	}

	return &Model{
		ctx:      b.ctx,
		name:     b.name,
		finishAt: b.finishAt,
	}
}
