// Package wave records waveform traces of a model's exposed signals.
package wave

import (
	"bufio"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/hwbench/hwbench/sim"
)

// A VCD serializes signal snapshots into a value-change-dump file that
// standard waveform viewers can open.
type VCD struct {
	path string
	file *os.File
	w    *bufio.Writer

	model sim.Model
	sigs  []boundSignal

	opened bool
	closed bool

	dumped   bool
	lastTime sim.VTime
}

type boundSignal struct {
	sig  sim.Signal
	code string
	mask uint64
	last uint64
}

func (b boundSignal) value() uint64 {
	return b.sig.Get() & b.mask
}

// NewVCD creates a VCD recorder that writes into the file at path. The
// file itself is created at Open time.
func NewVCD(path string) *VCD {
	return &VCD{path: path}
}

// Bind associates the recorder with the model's signals, down to depth
// hierarchy levels.
func (v *VCD) Bind(m sim.Model, depth int) {
	if v.model != nil {
		log.Panic("recorder is already bound")
	}

	v.model = m
	for i, s := range signalsWithinDepth(m, depth) {
		v.sigs = append(v.sigs, boundSignal{
			sig:  s,
			code: identifierCode(i),
			mask: uint64(1)<<uint(s.Width) - 1,
		})
	}
}

func signalsWithinDepth(m sim.Model, depth int) []sim.Signal {
	all := m.Signals()

	sigs := make([]sim.Signal, 0, len(all))
	for _, s := range all {
		if strings.Count(s.Name, ".") < depth {
			sigs = append(sigs, s)
		}
	}

	return sigs
}

// identifierCode maps a signal index to the short printable id code used
// in the value-change section.
func identifierCode(i int) string {
	const first, count = 33, 94

	code := ""
	for {
		code = string(rune(first+i%count)) + code
		i = i/count - 1
		if i < 0 {
			break
		}
	}

	return code
}

// Open creates or truncates the target file and writes the declaration
// section.
func (v *VCD) Open() error {
	if v.model == nil {
		log.Panic("recorder must be bound before open")
	}

	if v.opened {
		log.Panic("recorder is already open")
	}

	file, err := os.Create(v.path)
	if err != nil {
		return errors.Wrap(err, "create waveform file "+v.path)
	}

	v.file = file
	v.w = bufio.NewWriter(file)
	v.opened = true
	v.writeHeader()

	return nil
}

// writeHeader emits the declaration section. No creation date is
// recorded: identical runs must produce byte-identical traces.
func (v *VCD) writeHeader() {
	fmt.Fprintf(v.w, "$version hwbench $end\n")
	fmt.Fprintf(v.w, "$timescale 1ns $end\n")
	fmt.Fprintf(v.w, "$scope module %s $end\n", v.model.Name())

	for _, b := range v.sigs {
		fmt.Fprintf(v.w, "$var wire %d %s %s $end\n",
			b.sig.Width, b.code, b.sig.Name)
	}

	fmt.Fprintf(v.w, "$upscope $end\n")
	fmt.Fprintf(v.w, "$enddefinitions $end\n")
}

// Dump appends a snapshot at time t. The first dump records every bound
// signal; later dumps record only the signals whose value changed.
func (v *VCD) Dump(t sim.VTime) {
	if !v.opened || v.closed {
		log.Panic("dump is only valid between open and close")
	}

	if v.dumped && t <= v.lastTime {
		log.Panicf("dump time must strictly increase: #%d after #%d",
			t, v.lastTime)
	}

	fmt.Fprintf(v.w, "#%d\n", t)

	if !v.dumped {
		fmt.Fprintf(v.w, "$dumpvars\n")
		for i := range v.sigs {
			v.sigs[i].last = v.sigs[i].value()
			v.writeValue(v.sigs[i])
		}
		fmt.Fprintf(v.w, "$end\n")
	} else {
		for i := range v.sigs {
			val := v.sigs[i].value()
			if val == v.sigs[i].last {
				continue
			}

			v.sigs[i].last = val
			v.writeValue(v.sigs[i])
		}
	}

	v.dumped = true
	v.lastTime = t
}

func (v *VCD) writeValue(b boundSignal) {
	if b.sig.Width == 1 {
		fmt.Fprintf(v.w, "%d%s\n", b.last&1, b.code)
		return
	}

	fmt.Fprintf(v.w, "b%b %s\n", b.last, b.code)
}

// Close flushes and finalizes the file. The first call wins; later calls
// are no-ops.
func (v *VCD) Close() error {
	if v.closed {
		return nil
	}

	if !v.opened {
		log.Panic("cannot close a recorder that was never opened")
	}

	v.closed = true

	if err := v.w.Flush(); err != nil {
		return errors.Wrap(err, "flush waveform file "+v.path)
	}

	if err := v.file.Close(); err != nil {
		return errors.Wrap(err, "close waveform file "+v.path)
	}

	return nil
}
