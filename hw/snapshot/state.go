// Package snapshot defines the serialized state of the emulated I/O.
package snapshot

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

const Version = 1

type MCU struct {
	Version int
	Cycles  int64
	Ports   []Port
}

type Port struct {
	Name      string
	Latch     uint8
	External  uint8
	Pins      uint8
	Direction uint8
}

func (s *MCU) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("version", func(e *jx.Encoder) { e.Int(s.Version) })
		e.Field("cycles", func(e *jx.Encoder) { e.Int64(s.Cycles) })
		e.Field("ports", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, p := range s.Ports {
					p.Encode(e)
				}
			})
		})
	})
}

func (s *MCU) Decode(d *jx.Decoder) error {
	*s = MCU{}
	return d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "version":
			s.Version, err = d.Int()
			if err == nil && s.Version != Version {
				err = errors.Errorf("unsupported snapshot version %d", s.Version)
			}
		case "cycles":
			s.Cycles, err = d.Int64()
		case "ports":
			err = d.Arr(func(d *jx.Decoder) error {
				var p Port
				if err := p.Decode(d); err != nil {
					return err
				}
				s.Ports = append(s.Ports, p)
				return nil
			})
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrap(err, key)
		}
		return nil
	})
}

func (s *MCU) MarshalJSON() ([]byte, error) {
	var e jx.Encoder
	s.Encode(&e)
	return e.Bytes(), nil
}

func (s *MCU) UnmarshalJSON(data []byte) error {
	return s.Decode(jx.DecodeBytes(data))
}

func (p Port) Encode(e *jx.Encoder) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(p.Name) })
		e.Field("latch", func(e *jx.Encoder) { e.Int(int(p.Latch)) })
		e.Field("external", func(e *jx.Encoder) { e.Int(int(p.External)) })
		e.Field("pins", func(e *jx.Encoder) { e.Int(int(p.Pins)) })
		e.Field("direction", func(e *jx.Encoder) { e.Int(int(p.Direction)) })
	})
}

func (p *Port) Decode(d *jx.Decoder) error {
	return d.Obj(func(d *jx.Decoder, key string) error {
		var dst *uint8
		switch key {
		case "name":
			s, err := d.Str()
			p.Name = s
			return err
		case "latch":
			dst = &p.Latch
		case "external":
			dst = &p.External
		case "pins":
			dst = &p.Pins
		case "direction":
			dst = &p.Direction
		default:
			return d.Skip()
		}
		v, err := d.Int()
		if err != nil {
			return errors.Wrap(err, key)
		}
		if v < 0 || v > 0xFF {
			return errors.Errorf("%s: %d out of byte range", key, v)
		}
		*dst = uint8(v)
		return nil
	})
}
