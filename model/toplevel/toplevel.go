// Package toplevel provides the counter testbench model driven by an
// external clock.
package toplevel

import (
	"github.com/hwbench/hwbench/sim"
)

// A Model is an 8-bit counter block with no self-clocking construct. The
// driver pumps the clk input; the counter advances on every rising edge.
// With a terminal cycle configured, the model finishes the run once that
// many rising edges have been seen. Otherwise it runs until the driver's
// step bound cuts it off.
type Model struct {
	ctx *sim.Context

	name     string
	finishAt uint64

	clk     bool
	prevClk bool
	count   uint64
	cycles  uint64
	done    bool
}

// Name returns the name of the model.
func (m *Model) Name() string {
	return m.name
}

// SetClock drives the clk input.
func (m *Model) SetClock(v bool) {
	m.clk = v
}

// Clock returns the current value of the clk input.
func (m *Model) Clock() bool {
	return m.clk
}

// Eval recomputes the model state. Sequential logic runs only on a
// rising clock edge.
func (m *Model) Eval() {
	rising := m.clk && !m.prevClk
	m.prevClk = m.clk

	if !rising {
		return
	}

	m.cycles++
	m.count = (m.count + 1) & 0xFF

	if m.finishAt > 0 && m.cycles >= m.finishAt {
		m.done = true
		m.ctx.Finish()
	}
}

// Cycles returns the number of rising edges seen so far.
func (m *Model) Cycles() uint64 {
	return m.cycles
}

// Signals returns the exposed signals of the testbench.
func (m *Model) Signals() []sim.Signal {
	return []sim.Signal{
		{Name: "clk", Width: 1, Get: func() uint64 {
			if m.clk {
				return 1
			}
			return 0
		}},
		{Name: "count", Width: 8, Get: func() uint64 { return m.count }},
		{Name: "done", Width: 1, Get: func() uint64 {
			if m.done {
				return 1
			}
			return 0
		}},
	}
}
