// Package fifo provides the FIFO testbench model: a synchronous queue
// wrapped in a stimulus program that fills it and drains it again.
package fifo

import (
	"math/bits"

	"github.com/hwbench/hwbench/sim"
)

type phase int

const (
	phaseWrite phase = iota
	phaseRead
	phaseDone
)

const resetCycles = 2

// A Model is a self-clocking FIFO testbench. An internal clock divider
// derives the clock from the advancing tick counter, so the driver never
// toggles anything. On each rising edge the stimulus program writes the
// queue until it is full, reads it until it is empty, and then finishes
// the run.
type Model struct {
	ctx *sim.Context

	name       string
	depth      int
	width      int
	halfPeriod sim.VTime
	mask       uint64

	clk   bool
	cycle uint64
	phase phase

	rstN    bool
	wrEn    bool
	rdEn    bool
	dataIn  uint64
	dataOut uint64

	buf     []uint64
	head    int
	count   int
	written uint64
}

// Name returns the name of the model.
func (m *Model) Name() string {
	return m.name
}

// Eval recomputes the model state for the current tick. The clock
// divider toggles the clock every half period; all sequential logic
// runs on the rising edge.
func (m *Model) Eval() {
	t := m.ctx.CurrentTime()

	newClk := (t/m.halfPeriod)%2 == 1
	rising := newClk && !m.clk
	m.clk = newClk

	if rising {
		m.onRisingEdge()
	}
}

func (m *Model) onRisingEdge() {
	m.cycle++

	if m.cycle <= resetCycles {
		m.reset()
		return
	}

	m.rstN = true
	m.driveStimulus()
	m.updateQueue()
	m.advancePhase()
}

func (m *Model) reset() {
	m.rstN = false
	m.wrEn = false
	m.rdEn = false
	m.dataIn = 0
	m.dataOut = 0
	m.head = 0
	m.count = 0
}

func (m *Model) driveStimulus() {
	switch m.phase {
	case phaseWrite:
		m.wrEn = true
		m.rdEn = false
		m.dataIn = (0xA5 + m.written) & m.mask
	case phaseRead:
		m.wrEn = false
		m.rdEn = true
	case phaseDone:
		m.wrEn = false
		m.rdEn = false
	}
}

func (m *Model) updateQueue() {
	if m.wrEn && !m.full() {
		m.buf[(m.head+m.count)%m.depth] = m.dataIn
		m.count++
		m.written++
	}

	if m.rdEn && !m.empty() {
		m.dataOut = m.buf[m.head]
		m.head = (m.head + 1) % m.depth
		m.count--
	}
}

func (m *Model) advancePhase() {
	switch m.phase {
	case phaseWrite:
		if m.full() {
			m.phase = phaseRead
		}
	case phaseRead:
		if m.empty() {
			m.phase = phaseDone
			m.ctx.Finish()
		}
	case phaseDone:
	}
}

func (m *Model) full() bool {
	return m.count == m.depth
}

func (m *Model) empty() bool {
	return m.count == 0
}

// Signals returns the exposed signals of the testbench.
func (m *Model) Signals() []sim.Signal {
	countWidth := bits.Len(uint(m.depth))

	return []sim.Signal{
		{Name: "clk", Width: 1, Get: func() uint64 { return b2u(m.clk) }},
		{Name: "rst_n", Width: 1, Get: func() uint64 { return b2u(m.rstN) }},
		{Name: "wr_en", Width: 1, Get: func() uint64 { return b2u(m.wrEn) }},
		{Name: "rd_en", Width: 1, Get: func() uint64 { return b2u(m.rdEn) }},
		{Name: "data_in", Width: m.width,
			Get: func() uint64 { return m.dataIn }},
		{Name: "data_out", Width: m.width,
			Get: func() uint64 { return m.dataOut }},
		{Name: "full", Width: 1, Get: func() uint64 { return b2u(m.full()) }},
		{Name: "empty", Width: 1, Get: func() uint64 { return b2u(m.empty()) }},
		{Name: "count", Width: countWidth,
			Get: func() uint64 { return uint64(m.count) }},
	}
}

func b2u(v bool) uint64 {
	if v {
		return 1
	}

	return 0
}
