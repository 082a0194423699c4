package hw

import (
	"io"
	"sync"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"

	"port51/hw/timing"
)

// A TraceEvent records one write to a port latch.
type TraceEvent struct {
	Cycles int64
	Port   PortID
	Old    uint8
	Val    uint8
}

// Encode writes ev as a JSON object.
func (ev TraceEvent) Encode(e *jx.Encoder) {
	e.ObjStart()
	e.FieldStart("cycles")
	e.Int64(ev.Cycles)
	e.FieldStart("port")
	e.Str(ev.Port.String())
	e.FieldStart("old")
	e.Int(int(ev.Old))
	e.FieldStart("val")
	e.Int(int(ev.Val))
	e.ObjEnd()
}

// Decode reads ev from a JSON object. Unknown fields are skipped.
func (ev *TraceEvent) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "cycles":
			v, err := d.Int64()
			ev.Cycles = v
			return err
		case "port":
			s, err := d.Str()
			if err != nil {
				return err
			}
			ev.Port, err = ParsePortID(s)
			return err
		case "old", "val":
			v, err := d.Int()
			if err != nil {
				return err
			}
			if v < 0 || v > 0xFF {
				return errors.Errorf("%s: %d out of byte range", key, v)
			}
			if key == "old" {
				ev.Old = uint8(v)
			} else {
				ev.Val = uint8(v)
			}
			return nil
		default:
			return d.Skip()
		}
	})
}

// Tracer writes port writes as JSON lines.
type Tracer struct {
	mu  sync.Mutex
	w   io.Writer
	cc  timing.CycleCounter
	enc jx.Encoder
	err error
}

// NewTracer returns a tracer writing to w. cc timestamps the events, it may
// be nil.
func NewTracer(w io.Writer, cc timing.CycleCounter) *Tracer {
	return &Tracer{w: w, cc: cc}
}

// Attach traces all ports of m.
func (t *Tracer) Attach(m *MCU) {
	for _, p := range m.Ports {
		p.OnWrite(t.portWrite)
	}
}

func (t *Tracer) portWrite(id PortID, old, val uint8) {
	ev := TraceEvent{Port: id, Old: old, Val: val}
	if t.cc != nil {
		ev.Cycles = t.cc.Cycles()
	}
	t.Write(ev)
}

// Write writes ev. After the first error, subsequent writes are dropped.
func (t *Tracer) Write(ev TraceEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.err != nil {
		return
	}
	t.enc.Reset()
	ev.Encode(&t.enc)
	buf := append(t.enc.Bytes(), '\n')
	if _, err := t.w.Write(buf); err != nil {
		t.err = errors.Wrap(err, "write trace")
	}
}

// Err returns the first write error.
func (t *Tracer) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.err
}

// ReadTrace decodes a stream of trace events.
func ReadTrace(r io.Reader) ([]TraceEvent, error) {
	d := jx.Decode(r, 4096)

	var evs []TraceEvent
	for d.Next() != jx.Invalid {
		var ev TraceEvent
		if err := ev.Decode(d); err != nil {
			return evs, errors.Wrapf(err, "event %d", len(evs))
		}
		evs = append(evs, ev)
	}
	return evs, nil
}
