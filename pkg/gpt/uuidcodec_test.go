package gpt

import (
	"testing"

	"github.com/google/uuid"
)

func TestMixedEndianGUIDRoundTrip(t *testing.T) {
	cases := []uuid.UUID{
		uuid.Nil,
		uuid.MustParse("C12A7328-F81F-11D2-BA4B-00A0C93EC93B"),
		uuid.New(),
	}
	for _, u := range cases {
		buf := make([]byte, 16)
		encodeMixedEndianGUID(u, buf)
		got, err := decodeMixedEndianGUID(buf)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got != u {
			t.Errorf("round trip = %s, want %s", got, u)
		}
	}
}

func TestMixedEndianGUIDShuffle(t *testing.T) {
	// C12A7328-F81F-11D2-BA4B-00A0C93EC93B is the well-known EFI System
	// Partition type GUID. Its on-disk mixed-endian form reverses the
	// first three fields byte-by-byte and leaves the last 8 bytes alone.
	u := uuid.MustParse("C12A7328-F81F-11D2-BA4B-00A0C93EC93B")
	buf := make([]byte, 16)
	encodeMixedEndianGUID(u, buf)

	want := []byte{0x28, 0x73, 0x2A, 0xC1, 0x1F, 0xF8, 0xD2, 0x11, 0xBA, 0x4B, 0x00, 0xA0, 0xC9, 0x3E, 0xC9, 0x3B}
	for i := range want {
		if buf[i] != want[i] {
			t.Fatalf("byte %d = %#x, want %#x", i, buf[i], want[i])
		}
	}
}

func TestDecodeMixedEndianGUIDShortBuffer(t *testing.T) {
	_, err := decodeMixedEndianGUID(make([]byte, 10))
	if err == nil {
		t.Fatal("expected error decoding a 10-byte buffer")
	}
}
