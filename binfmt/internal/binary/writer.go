package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer provides buffered writing utilities for the compiled-module
// binary encoding.
type Writer struct {
	buf *bytes.Buffer
}

// NewWriter creates a new Writer.
func NewWriter() *Writer {
	return &Writer{buf: &bytes.Buffer{}}
}

// Bytes returns the written bytes.
func (w *Writer) Bytes() []byte {
	return w.buf.Bytes()
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return w.buf.Len()
}

// Byte writes a single byte.
func (w *Writer) Byte(b byte) {
	w.buf.WriteByte(b)
}

// WriteBytes writes a byte slice.
func (w *Writer) WriteBytes(data []byte) {
	w.buf.Write(data)
}

// WriteU32 writes an unsigned LEB128 encoded uint32.
func (w *Writer) WriteU32(v uint32) {
	for {
		b := byte(v & 0x7f)
		v >>= 7
		if v != 0 {
			b |= 0x80
		}
		w.buf.WriteByte(b)
		if v == 0 {
			break
		}
	}
}

// WriteU16 writes a 16-bit index as unsigned LEB128.
func (w *Writer) WriteU16(v uint16) {
	w.WriteU32(uint32(v))
}

// WriteName writes a UTF-8 encoded name (length-prefixed).
func (w *Writer) WriteName(s string) {
	w.WriteU32(uint32(len(s)))
	w.buf.WriteString(s)
}

// WriteU32LE writes a little-endian uint32 (fixed 4 bytes).
func (w *Writer) WriteU32LE(v uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], v)
	w.buf.Write(buf[:])
}
