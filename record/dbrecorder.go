package record

import (
	"log"
	"strings"

	"github.com/hwbench/hwbench/sim"
)

// changeEntry is one recorded signal value change.
type changeEntry struct {
	Time   uint64
	Signal string
	Value  uint64
}

// runEntry describes one simulation run.
type runEntry struct {
	RunID       string
	Model       string
	SignalCount int
}

// A DBRecorder writes waveform snapshots into a SQLite database instead
// of a VCD file. It records one row per signal value change, plus a run
// metadata row, so traces from many runs can be queried offline.
type DBRecorder struct {
	ctx  *sim.Context
	path string

	writer TableWriter
	model  sim.Model
	sigs   []sim.Signal
	last   []uint64

	opened bool
	closed bool

	dumped   bool
	lastTime sim.VTime
}

// NewDBRecorder creates a DBRecorder for the run described by ctx. The
// database file is created at Open time, at path + ".sqlite3".
func NewDBRecorder(ctx *sim.Context, path string) *DBRecorder {
	return &DBRecorder{
		ctx:  ctx,
		path: path,
	}
}

// Bind associates the recorder with the model's signals, down to depth
// hierarchy levels.
func (r *DBRecorder) Bind(m sim.Model, depth int) {
	if r.model != nil {
		log.Panic("recorder is already bound")
	}

	r.model = m
	for _, s := range m.Signals() {
		if strings.Count(s.Name, ".") < depth {
			r.sigs = append(r.sigs, s)
		}
	}

	r.last = make([]uint64, len(r.sigs))
}

// Open creates the database, its tables, and the run metadata row.
func (r *DBRecorder) Open() error {
	if r.model == nil {
		log.Panic("recorder must be bound before open")
	}

	if r.opened {
		log.Panic("recorder is already open")
	}

	r.writer = NewSQLiteWriter(r.path)
	r.writer.CreateTable("runs", runEntry{})
	r.writer.CreateTable("changes", changeEntry{})

	r.writer.InsertData("runs", runEntry{
		RunID:       r.ctx.ID(),
		Model:       r.model.Name(),
		SignalCount: len(r.sigs),
	})

	r.opened = true

	return nil
}

// Dump records the value of every signal that changed since the last
// dump. The first dump records all bound signals.
func (r *DBRecorder) Dump(t sim.VTime) {
	if !r.opened || r.closed {
		log.Panic("dump is only valid between open and close")
	}

	if r.dumped && t <= r.lastTime {
		log.Panicf("dump time must strictly increase: #%d after #%d",
			t, r.lastTime)
	}

	for i, s := range r.sigs {
		val := s.Get()
		if r.dumped && val == r.last[i] {
			continue
		}

		r.last[i] = val
		r.writer.InsertData("changes", changeEntry{
			Time:   uint64(t),
			Signal: s.Name,
			Value:  val,
		})
	}

	r.dumped = true
	r.lastTime = t
}

// Close flushes the buffered rows and closes the database. The first
// call wins; later calls are no-ops.
func (r *DBRecorder) Close() error {
	if r.closed {
		return nil
	}

	if !r.opened {
		log.Panic("cannot close a recorder that was never opened")
	}

	r.closed = true

	return r.writer.Close()
}
