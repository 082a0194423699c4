package snapshot

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestMCUJSON(t *testing.T) {
	want := MCU{
		Version: Version,
		Cycles:  9220,
		Ports: []Port{
			{Name: "P0", Latch: 0xFF, External: 0xFE, Pins: 0xFE, Direction: 0xFF},
			{Name: "P1", Latch: 0x3C, External: 0xFF, Pins: 0x3C, Direction: 0x00},
		},
	}

	buf, err := want.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}

	var got MCU
	if err := got.UnmarshalJSON(buf); err != nil {
		t.Fatalf("UnmarshalJSON(%s): %v", buf, err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestMCUDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		json string
		want string
	}{
		{"version", `{"version":2}`, "unsupported snapshot version"},
		{"range", `{"version":1,"ports":[{"latch":256}]}`, "out of byte range"},
		{"type", `{"version":1,"cycles":"x"}`, "cycles"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s MCU
			err := s.UnmarshalJSON([]byte(tt.json))
			if err == nil {
				t.Fatalf("UnmarshalJSON(%s) should fail", tt.json)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestMCUDecodeSkipsUnknownFields(t *testing.T) {
	var s MCU
	err := s.UnmarshalJSON([]byte(`{"version":1,"extra":{"a":[1,2]},"ports":[{"name":"P2","pins":15,"more":true}]}`))
	if err != nil {
		t.Fatal(err)
	}
	want := MCU{Version: 1, Ports: []Port{{Name: "P2", Pins: 15}}}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
