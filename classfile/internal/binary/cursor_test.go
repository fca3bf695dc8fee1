package binary

import (
	"bytes"
	"testing"

	"github.com/wippyai/jclass/errors"
)

func TestCursorReads(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09, 0x0A, 0x0B, 0x0C, 0x0D, 0x0E, 0x0F}
	c := NewCursor(data, errors.PhaseHeader)

	b, err := c.U8()
	if err != nil {
		t.Fatalf("U8: %v", err)
	}
	if b != 0x01 {
		t.Errorf("U8: got 0x%02x, want 0x01", b)
	}

	v16, err := c.U16()
	if err != nil {
		t.Fatalf("U16: %v", err)
	}
	if v16 != 0x0203 {
		t.Errorf("U16: got 0x%04x, want 0x0203", v16)
	}

	v32, err := c.U32()
	if err != nil {
		t.Fatalf("U32: %v", err)
	}
	if v32 != 0x04050607 {
		t.Errorf("U32: got 0x%08x, want 0x04050607", v32)
	}

	v64, err := c.U64()
	if err != nil {
		t.Fatalf("U64: %v", err)
	}
	if v64 != 0x08090A0B0C0D0E0F {
		t.Errorf("U64: got 0x%016x", v64)
	}

	if c.Pos() != 15 {
		t.Errorf("Pos: got %d, want 15", c.Pos())
	}
	if c.Remaining() != 0 {
		t.Errorf("Remaining: got %d, want 0", c.Remaining())
	}
}

func TestCursorTakeNoCopy(t *testing.T) {
	data := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	c := NewCursor(data, errors.PhaseAttribute)

	got, err := c.Take(3)
	if err != nil {
		t.Fatalf("Take: %v", err)
	}
	if !bytes.Equal(got, []byte{0xAA, 0xBB, 0xCC}) {
		t.Errorf("Take: got %v", got)
	}
	if c.Pos() != 3 {
		t.Errorf("Pos after Take: got %d, want 3", c.Pos())
	}

	// The taken range aliases the input buffer.
	data[0] = 0x11
	if got[0] != 0x11 {
		t.Error("Take copied the buffer; expected a borrowed sub-slice")
	}
}

func TestCursorInsufficientData(t *testing.T) {
	tests := []struct {
		name string
		read func(*Cursor) error
		want int // requested width
	}{
		{"U8", func(c *Cursor) error { _, err := c.U8(); return err }, 1},
		{"U16", func(c *Cursor) error { _, err := c.U16(); return err }, 2},
		{"U32", func(c *Cursor) error { _, err := c.U32(); return err }, 4},
		{"U64", func(c *Cursor) error { _, err := c.U64(); return err }, 8},
		{"Take", func(c *Cursor) error { _, err := c.Take(5); return err }, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCursor([]byte{0x00}, errors.PhaseConstPool)
			if tt.want == 1 {
				// Exhaust the single byte so every width fails.
				if _, err := c.U8(); err != nil {
					t.Fatalf("setup read: %v", err)
				}
			}
			err := tt.read(c)
			if err == nil {
				t.Fatal("expected error reading past end")
			}
			if !errors.IsKind(err, errors.KindInsufficientData) {
				t.Errorf("expected insufficient_data, got %v", err)
			}
			e, ok := err.(*errors.Error)
			if !ok {
				t.Fatalf("expected *errors.Error, got %T", err)
			}
			if e.Offset != c.Pos() {
				t.Errorf("error offset %d, cursor pos %d", e.Offset, c.Pos())
			}
			if e.Value != tt.want {
				t.Errorf("error value %v, want requested width %d", e.Value, tt.want)
			}
		})
	}
}

func TestCursorPositionNeverMovesBack(t *testing.T) {
	c := NewCursor([]byte{0x01, 0x02}, errors.PhaseHeader)
	if _, err := c.U16(); err != nil {
		t.Fatalf("U16: %v", err)
	}
	before := c.Pos()
	if _, err := c.U32(); err == nil {
		t.Fatal("expected failure")
	}
	if c.Pos() != before {
		t.Errorf("failed read moved position: %d -> %d", before, c.Pos())
	}
}
