package sim

import (
	"log"
	"sync"

	"github.com/tebeka/atexit"
)

// ClockMode selects who produces clock edges during a run.
type ClockMode int

const (
	// ClockInternal lets the model derive its own clock from the
	// advancing tick counter. The driver toggles nothing.
	ClockInternal ClockMode = iota

	// ClockExternal makes the driver the clock source. The model's
	// clock input is inverted once per loop iteration, so one full
	// clock period spans two iterations.
	ClockExternal
)

// TerminateReason tells why the driver loop exited.
type TerminateReason int

const (
	// TerminatedByModel means the model latched the finished flag.
	TerminatedByModel TerminateReason = iota

	// TerminatedByStepLimit means the safety step bound was reached
	// before the model signaled completion.
	TerminatedByStepLimit
)

// StepInfo describes one driver loop iteration. It is passed as the Item
// of step hooks.
type StepInfo struct {
	Time  VTime
	Model Model

	// Clock is the clock value driven this iteration. Only meaningful
	// with ClockExternal.
	Clock bool
}

// A RunEndHandler is a handler that is called after the driver loop
// exits.
type RunEndHandler interface {
	Handle(now VTime)
}

// A Driver sequences time advancement, model evaluation, and waveform
// capture into a deterministic, repeatable cycle. One Driver drives
// exactly one model and runs at most once.
type Driver struct {
	HookableBase

	ctx      *Context
	model    Model
	recorder Recorder

	clockMode ClockMode
	stepLimit VTime

	ran            bool
	recorderClosed bool

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex

	runEndHandlers []RunEndHandler
}

// Context returns the simulation context the driver advances.
func (d *Driver) Context() *Context {
	return d.ctx
}

// Model returns the device under test.
func (d *Driver) Model() Model {
	return d.model
}

// CurrentTime returns the current tick count of the run.
func (d *Driver) CurrentTime() VTime {
	return d.ctx.CurrentTime()
}

// RegisterRunEndHandler registers a handler that performs some actions
// after the driver loop exits.
func (d *Driver) RegisterRunEndHandler(handler RunEndHandler) {
	d.runEndHandlers = append(d.runEndHandlers, handler)
}

// Run executes the driver loop until the model signals completion or
// the step bound is reached. It returns the final simulated time.
//
// The recorder, if any, is opened before the first step and closed
// exactly once after the last dump. The close is additionally latched
// behind an atexit handler, so the waveform file is finalized even when
// a collaborator failure aborts the process through atexit.
func (d *Driver) Run() (finalTime VTime, err error) {
	d.mustRunOnlyOnce()

	if d.recorder != nil {
		if openErr := d.recorder.Open(); openErr != nil {
			return d.ctx.CurrentTime(), openErr
		}

		atexit.Register(func() { d.closeRecorder() })
	}

	defer func() {
		if cerr := d.closeRecorder(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for !d.done() {
		d.pauseLock.Lock()
		d.step()
		d.pauseLock.Unlock()
	}

	finalTime = d.ctx.CurrentTime()

	d.InvokeHook(HookCtx{
		Domain: d,
		Pos:    HookPosTerminate,
		Item:   StepInfo{Time: finalTime, Model: d.model},
		Detail: d.terminateReason(),
	})

	for _, h := range d.runEndHandlers {
		h.Handle(finalTime)
	}

	return finalTime, nil
}

func (d *Driver) mustRunOnlyOnce() {
	if d.ran {
		log.Panic("a driver can only run once")
	}

	d.ran = true
}

func (d *Driver) done() bool {
	if d.ctx.Finished() {
		return true
	}

	return d.stepLimit > 0 && d.ctx.CurrentTime() >= d.stepLimit
}

func (d *Driver) terminateReason() TerminateReason {
	if d.ctx.Finished() {
		return TerminatedByModel
	}

	return TerminatedByStepLimit
}

// step runs one loop iteration. With ClockInternal, time advances before
// evaluation and the first dump lands on tick 1. With ClockExternal, the
// clock is inverted and the dump lands on the pre-increment tick, so the
// first dump is at tick 0. Both cadences match what the compiled models
// expect from their original harnesses.
func (d *Driver) step() {
	info := StepInfo{Time: d.ctx.CurrentTime(), Model: d.model}

	if d.clockMode == ClockExternal {
		clocked := d.model.(ClockedModel)
		clocked.SetClock(!clocked.Clock())
		info.Clock = clocked.Clock()
	}

	hookCtx := HookCtx{Domain: d, Pos: HookPosBeforeStep, Item: info}
	d.InvokeHook(hookCtx)

	switch d.clockMode {
	case ClockInternal:
		d.ctx.AdvanceTime(1)
		d.model.Eval()
		d.dump()
	case ClockExternal:
		d.model.Eval()
		d.dump()
		d.ctx.AdvanceTime(1)
	}

	info.Time = d.ctx.CurrentTime()
	hookCtx.Pos = HookPosAfterStep
	hookCtx.Item = info
	d.InvokeHook(hookCtx)
}

func (d *Driver) dump() {
	if d.recorder == nil {
		return
	}

	d.recorder.Dump(d.ctx.CurrentTime())
}

func (d *Driver) closeRecorder() (err error) {
	if d.recorder == nil || d.recorderClosed {
		return nil
	}

	d.recorderClosed = true

	return d.recorder.Close()
}

// Pause prevents the driver from running more steps until Continue is
// called.
func (d *Driver) Pause() {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if d.isPaused {
		return
	}

	d.pauseLock.Lock()
	d.isPaused = true
}

// Continue allows a paused driver to run more steps.
func (d *Driver) Continue() {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if !d.isPaused {
		return
	}

	d.pauseLock.Unlock()
	d.isPaused = false
}
