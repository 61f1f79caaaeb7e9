package binfmt_test

import (
	"testing"

	"github.com/coralvm/coral/binfmt"
	"github.com/coralvm/coral/verifier"
)

func FuzzDecode(f *testing.F) {
	// Valid module as seed
	f.Add(testModule().Encode())

	// Bare header
	f.Add([]byte{0x43, 0x52, 0x4C, 0x4D, 0x01, 0x00, 0x00, 0x00, 0x00})

	// Truncated data
	f.Add([]byte{0x43, 0x52, 0x4C})

	// Random bytes
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF})

	f.Fuzz(func(t *testing.T, data []byte) {
		// Decoding and verifying adversarial input must not panic.
		m, err := binfmt.Decode(data)
		if err != nil {
			return
		}
		_ = verifier.VerifyModule(m)
	})
}
