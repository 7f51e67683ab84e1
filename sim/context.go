package sim

import (
	"log"
	"sync"

	"github.com/rs/xid"
)

// A Context owns the state that is global to one simulation run: the
// forwarded command-line arguments, the tick counter, and the finished
// flag that the model latches when it completes.
//
// A Context is explicitly constructed and explicitly passed, so multiple
// independent runs can coexist in one process. The tick counter and the
// finished flag can be read concurrently with the driver loop, so a
// monitoring goroutine can poll a live run.
type Context struct {
	id   string
	args []string

	timeLock sync.RWMutex
	time     VTime

	finishedLock sync.RWMutex
	finished     bool
}

// NewContext creates a Context for one run. The args are forwarded
// verbatim from the command line. The driver does not interpret them.
func NewContext(args []string) *Context {
	return &Context{
		id:   xid.New().String(),
		args: args,
	}
}

// ID returns the unique ID of the run.
func (c *Context) ID() string {
	return c.id
}

// Args returns the forwarded command-line arguments.
func (c *Context) Args() []string {
	return c.args
}

// CurrentTime returns the current tick count.
func (c *Context) CurrentTime() VTime {
	c.timeLock.RLock()
	defer c.timeLock.RUnlock()

	return c.time
}

// AdvanceTime moves the tick counter forward by delta. Time never moves
// backward and never stands still.
func (c *Context) AdvanceTime(delta VTime) {
	if delta == 0 {
		log.Panic("cannot advance time by zero")
	}

	c.timeLock.Lock()
	defer c.timeLock.Unlock()

	c.time += delta
}

// Finish latches the finished flag. Once set, it stays set for the rest
// of the run.
func (c *Context) Finish() {
	c.finishedLock.Lock()
	defer c.finishedLock.Unlock()

	c.finished = true
}

// Finished tells if the model has signaled completion.
func (c *Context) Finished() bool {
	c.finishedLock.RLock()
	defer c.finishedLock.RUnlock()

	return c.finished
}
