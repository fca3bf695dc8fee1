package binary

import (
	"encoding/binary"

	"github.com/wippyai/jclass/errors"
)

// Cursor is a sequential big-endian reader over a borrowed byte buffer.
// It tracks the current position, never copies, and never moves backward.
// A Cursor is owned by one in-progress decode and must not be shared
// across goroutines.
type Cursor struct {
	buf   []byte
	pos   int
	phase errors.Phase
}

// NewCursor creates a Cursor over buf. The buffer is borrowed: it must
// stay alive and unmodified for as long as any byte range taken from the
// cursor is in use.
func NewCursor(buf []byte, phase errors.Phase) *Cursor {
	return &Cursor{buf: buf, phase: phase}
}

// SetPhase changes the phase reported by subsequent read failures.
func (c *Cursor) SetPhase(phase errors.Phase) {
	c.phase = phase
}

// Pos returns the current byte offset from the start of the buffer.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

func (c *Cursor) need(n int) error {
	if c.Remaining() < n {
		return errors.InsufficientData(c.phase, c.pos, n, c.Remaining())
	}
	return nil
}

// U8 reads one unsigned byte.
func (c *Cursor) U8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

// U16 reads a big-endian uint16.
func (c *Cursor) U16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

// U32 reads a big-endian uint32.
func (c *Cursor) U32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

// U64 reads a big-endian uint64.
func (c *Cursor) U64() (uint64, error) {
	if err := c.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(c.buf[c.pos:])
	c.pos += 8
	return v, nil
}

// Take returns the next n bytes as a sub-slice of the underlying buffer,
// without copying, and advances past them.
func (c *Cursor) Take(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.buf[c.pos : c.pos+n : c.pos+n]
	c.pos += n
	return v, nil
}
