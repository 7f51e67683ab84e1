package sim

import (
	"log"
)

// StepLogger is a hook that prints one line per driver step.
type StepLogger struct {
	LogHookBase
}

// NewStepLogger returns a StepLogger that writes into the given logger.
func NewStepLogger(logger *log.Logger) *StepLogger {
	h := new(StepLogger)
	h.Logger = logger
	return h
}

// Func writes the step information into the logger
func (h *StepLogger) Func(ctx HookCtx) {
	if ctx.Pos != HookPosAfterStep {
		return
	}

	step, ok := ctx.Item.(StepInfo)
	if !ok {
		return
	}

	h.Logger.Printf("#%d %s", step.Time, step.Model.Name())
}
