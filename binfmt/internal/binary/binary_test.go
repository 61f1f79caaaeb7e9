package binary

import (
	"bytes"
	"errors"
	"io"
	"testing"
)

func TestReaderReadByte(t *testing.T) {
	data := []byte{0x01, 0x02, 0x03}
	r := NewReader(bytes.NewReader(data))

	for i, want := range data {
		if r.Position() != i {
			t.Errorf("position before read %d: got %d, want %d", i, r.Position(), i)
		}
		b, err := r.ReadByte()
		if err != nil {
			t.Fatalf("ReadByte %d: %v", i, err)
		}
		if b != want {
			t.Errorf("ReadByte %d: got 0x%02x, want 0x%02x", i, b, want)
		}
	}

	_, err := r.ReadByte()
	if !errors.Is(err, io.EOF) {
		t.Errorf("expected EOF, got %v", err)
	}
}

func TestReaderReadU32(t *testing.T) {
	tests := []struct {
		encoded []byte
		want    uint32
	}{
		{[]byte{0x00}, 0},
		{[]byte{0x7f}, 127},
		{[]byte{0x80, 0x01}, 128},
		{[]byte{0xe5, 0x8e, 0x26}, 624485},
		{[]byte{0xff, 0xff, 0xff, 0xff, 0x0f}, 0xFFFFFFFF},
	}

	for _, tt := range tests {
		r := NewReader(bytes.NewReader(tt.encoded))
		got, err := r.ReadU32()
		if err != nil {
			t.Errorf("ReadU32(%v): %v", tt.encoded, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadU32(%v): got %d, want %d", tt.encoded, got, tt.want)
		}
	}
}

func TestReaderReadU32Overflow(t *testing.T) {
	tests := [][]byte{
		{0x80, 0x80, 0x80, 0x80, 0x80, 0x01},
		// Fifth byte carries bits above 32.
		{0xff, 0xff, 0xff, 0xff, 0x1f},
		{0x80, 0x80, 0x80, 0x80, 0x10},
	}
	for _, data := range tests {
		r := NewReader(bytes.NewReader(data))
		if _, err := r.ReadU32(); !errors.Is(err, ErrOverflow) {
			t.Errorf("ReadU32(%v): expected ErrOverflow, got %v", data, err)
		}
	}
}

func TestReaderReadBytesBeyondInput(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01, 0x02}))
	if _, err := r.ReadBytes(1 << 30); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected ErrUnexpectedEOF, got %v", err)
	}
	// The reader must not have consumed anything.
	if r.Remaining() != 2 {
		t.Errorf("remaining: got %d, want 2", r.Remaining())
	}
}

func TestReaderReadU16Narrowing(t *testing.T) {
	w := NewWriter()
	w.WriteU32(0x10000) // one past uint16 range
	r := NewReader(bytes.NewReader(w.Bytes()))
	if _, err := r.ReadU16(); err == nil {
		t.Error("expected narrowing error for value above uint16 range")
	}

	w = NewWriter()
	w.WriteU32(0xFFFF)
	r = NewReader(bytes.NewReader(w.Bytes()))
	got, err := r.ReadU16()
	if err != nil {
		t.Fatalf("ReadU16: %v", err)
	}
	if got != 0xFFFF {
		t.Errorf("ReadU16: got %d, want %d", got, 0xFFFF)
	}
}

func TestReaderReadName(t *testing.T) {
	w := NewWriter()
	w.WriteName("deposit")
	r := NewReader(bytes.NewReader(w.Bytes()))
	got, err := r.ReadName()
	if err != nil {
		t.Fatalf("ReadName: %v", err)
	}
	if got != "deposit" {
		t.Errorf("ReadName: got %q", got)
	}
}

func TestReaderReadNameInvalidUTF8(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x02, 0xff, 0xfe}))
	if _, err := r.ReadName(); err == nil {
		t.Error("expected error for invalid UTF-8 name")
	}
}

func TestWriterRoundTrip(t *testing.T) {
	values := []uint32{0, 1, 127, 128, 255, 624485, 0xFFFF, 0xFFFFFFFF}
	w := NewWriter()
	for _, v := range values {
		w.WriteU32(v)
	}
	r := NewReader(bytes.NewReader(w.Bytes()))
	for _, want := range values {
		got, err := r.ReadU32()
		if err != nil {
			t.Fatalf("ReadU32: %v", err)
		}
		if got != want {
			t.Errorf("round trip: got %d, want %d", got, want)
		}
	}
	if r.Remaining() != 0 {
		t.Errorf("remaining: got %d, want 0", r.Remaining())
	}
}

func TestParseError(t *testing.T) {
	r := NewReader(bytes.NewReader([]byte{0x01}))
	_, _ = r.ReadByte()
	err := r.WrapError("identifiers", io.ErrUnexpectedEOF)
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if pe.Position != 1 || pe.Table != "identifiers" {
		t.Errorf("unexpected fields: %+v", pe)
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("ParseError does not unwrap to its cause")
	}
}
