package hw

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/arl/blip"
	"github.com/go-faster/errors"

	"port51/emu/log"
	"port51/hw/hwio"
	"port51/hw/timing"
)

const (
	DefaultSampleRate = 44100
	probeAmplitude    = 8000

	probeBufSamples   = 4096
	probeFrameSamples = 1024
)

// Probe turns the level of one output pin into band-limited audio, the way
// a speaker wired to the pin would sound. Samples are written to w as
// signed 16-bit little-endian mono PCM.
type Probe struct {
	mu sync.Mutex

	w   io.Writer
	pin uint
	cc  timing.CycleCounter
	buf *blip.Buffer
	out [probeBufSamples]int16

	level    uint8
	frame    int64 // cycle at which the current blip frame starts
	chunk    int64 // cycles per blip frame
	nsamples int
	err      error
}

// NewProbe returns a probe on pin, timed by the cycle counter cc of a
// microcontroller running at osc.
func NewProbe(w io.Writer, pin uint, cc timing.CycleCounter, osc timing.Oscillator, sampleRate int) (*Probe, error) {
	if err := hwio.CheckBit(pin); err != nil {
		return nil, err
	}
	if sampleRate <= 0 {
		return nil, errors.Errorf("invalid sample rate %d", sampleRate)
	}

	cps := osc.CyclesPerSecond()
	pr := &Probe{
		w:     w,
		pin:   pin,
		cc:    cc,
		buf:   blip.NewBuffer(probeBufSamples),
		chunk: int64(cps * probeFrameSamples / float64(sampleRate)),
		frame: cc.Cycles(),
	}
	pr.buf.SetRates(cps, float64(sampleRate))
	return pr, nil
}

// Attach starts listening to the latch writes of p.
func (pr *Probe) Attach(p *Port) {
	pr.mu.Lock()
	pr.level = hwio.GetBiti8(p.ReadLatch(), pr.pin)
	pr.mu.Unlock()

	p.OnWrite(func(_ PortID, _, val uint8) {
		pr.set(hwio.GetBiti8(val, pr.pin))
	})
}

func (pr *Probe) set(level uint8) {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	now := pr.cc.Cycles()
	pr.advance(now)
	if level == pr.level {
		return
	}
	delta := (int32(level) - int32(pr.level)) * probeAmplitude
	pr.buf.AddDelta(uint64(now-pr.frame), delta)
	pr.level = level
}

// advance ends blip frames until now falls in the current one.
func (pr *Probe) advance(now int64) {
	for now-pr.frame >= pr.chunk {
		pr.buf.EndFrame(int(pr.chunk))
		pr.frame += pr.chunk
		pr.drain()
	}
}

func (pr *Probe) drain() {
	n := pr.buf.ReadSamples(pr.out[:], len(pr.out), blip.Mono)
	pr.nsamples += n
	if n == 0 || pr.err != nil {
		return
	}
	if err := binary.Write(pr.w, binary.LittleEndian, pr.out[:n]); err != nil {
		pr.err = errors.Wrap(err, "write probe samples")
		log.ModPort.ErrorZ("probe").Error("err", pr.err).End()
	}
}

// Flush makes all samples up to the current cycle available and writes
// them.
func (pr *Probe) Flush() error {
	pr.mu.Lock()
	defer pr.mu.Unlock()

	now := pr.cc.Cycles()
	pr.advance(now)
	if now > pr.frame {
		pr.buf.EndFrame(int(now - pr.frame))
		pr.frame = now
		pr.drain()
	}
	return pr.err
}

// Samples returns the number of samples produced so far.
func (pr *Probe) Samples() int {
	pr.mu.Lock()
	defer pr.mu.Unlock()
	return pr.nsamples
}
