package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"fortio.org/safecast"
)

// ErrOverflow is returned when a LEB128 value exceeds the maximum size.
var ErrOverflow = errors.New("uleb128: overflow")

// Reader wraps a byte stream with position tracking and read methods
// for the compiled-module binary format.
type Reader struct {
	r   io.ByteReader
	pos int
}

// NewReader creates a Reader over the given byte stream.
func NewReader(r io.ByteReader) *Reader {
	return &Reader{r: r}
}

// Position returns the current byte position.
func (r *Reader) Position() int {
	return r.pos
}

// ReadByte reads a single byte and advances the position.
func (r *Reader) ReadByte() (byte, error) {
	b, err := r.r.ReadByte()
	if err != nil {
		return 0, err
	}
	r.pos++
	return b, nil
}

// ReadBytes reads exactly n bytes. The length is checked against the
// bytes still available before the buffer is allocated, so a length
// field claiming more data than exists cannot force a huge allocation.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if rem := r.Remaining(); rem >= 0 && n > rem {
		return nil, r.wrapError(fmt.Errorf("need %d bytes, %d available: %w", n, rem, io.ErrUnexpectedEOF))
	}
	buf := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		buf[i] = b
	}
	return buf, nil
}

// ReadU32 reads an unsigned LEB128 encoded uint32.
func (r *Reader) ReadU32() (uint32, error) {
	var result uint32
	var shift uint
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}
		// The fifth byte holds bits 28..34; anything above bit 31
		// cannot fit in a uint32.
		if shift == 28 && b&0x70 != 0 {
			return 0, r.wrapError(ErrOverflow)
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return result, nil
		}
		shift += 7
		if shift >= 35 {
			return 0, r.wrapError(ErrOverflow)
		}
	}
}

// ReadU16 reads an unsigned LEB128 value and narrows it to 16 bits.
// Table indices are 16-bit; a wider value is a format error.
func (r *Reader) ReadU16() (uint16, error) {
	v, err := r.ReadU32()
	if err != nil {
		return 0, err
	}
	n, err := safecast.Conv[uint16](v)
	if err != nil {
		return 0, r.wrapError(fmt.Errorf("index %d: %w", v, err))
	}
	return n, nil
}

// ReadName reads a UTF-8 encoded name (length-prefixed byte sequence).
func (r *Reader) ReadName() (string, error) {
	length, err := r.ReadU32()
	if err != nil {
		return "", err
	}
	data, err := r.ReadBytes(int(length))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(data) {
		return "", r.wrapError(errors.New("invalid UTF-8 in name"))
	}
	return string(data), nil
}

// ReadU32LE reads a little-endian uint32 (fixed 4 bytes).
func (r *Reader) ReadU32LE() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf), nil
}

// Remaining reports how many bytes are left. Only supported over a
// bytes.Reader, which is what the decoder always uses.
func (r *Reader) Remaining() int {
	if br, ok := r.r.(*bytes.Reader); ok {
		return br.Len()
	}
	return -1
}

func (r *Reader) wrapError(err error) error {
	return fmt.Errorf("at position %d: %w", r.pos, err)
}

// ParseError is a format-level decode failure with position information.
type ParseError struct {
	Err      error
	Table    string
	Position int
}

func (e *ParseError) Error() string {
	if e.Table != "" {
		return fmt.Sprintf("binfmt: %s at position %d: %v", e.Table, e.Position, e.Err)
	}
	return fmt.Sprintf("binfmt: at position %d: %v", e.Position, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// WrapError creates a ParseError at the current position.
func (r *Reader) WrapError(table string, err error) error {
	return &ParseError{
		Position: r.pos,
		Table:    table,
		Err:      err,
	}
}
