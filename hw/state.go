package hw

import (
	"github.com/go-faster/errors"

	"port51/hw/snapshot"
)

// State returns a snapshot of the ports.
func (m *MCU) State() *snapshot.MCU {
	s := &snapshot.MCU{
		Version: snapshot.Version,
		Cycles:  m.Cycles(),
	}
	for id, p := range m.Ports {
		s.Ports = append(s.Ports, snapshot.Port{
			Name:      p.String(),
			Latch:     p.ReadLatch(),
			External:  p.External(),
			Pins:      p.Read(),
			Direction: m.dirs[id],
		})
	}
	return s
}

// SetState restores port latches, external levels and directions from s.
// Write callbacks are not called.
func (m *MCU) SetState(s *snapshot.MCU) error {
	if s.Version != snapshot.Version {
		return errors.Errorf("unsupported snapshot version %d", s.Version)
	}
	for _, ps := range s.Ports {
		p, err := m.PortByName(ps.Name)
		if err != nil {
			return err
		}
		p.mu.Lock()
		p.Latch.Value = ps.Latch
		p.ext = ps.External
		p.mu.Unlock()
		m.dirs[p.ID()] = ps.Direction
	}
	return nil
}
