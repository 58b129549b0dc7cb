package gpt

import (
	"testing"
)

func TestReaderRoundTrip(t *testing.T) {
	buf := make([]byte, 14)
	w := newWriter(buf)
	w.putU16(0xBEEF)
	w.putU32(0xDEADBEEF)
	w.putU64(0x0102030405060708)

	r := newReader(buf)
	u16, err := r.u16()
	if err != nil {
		t.Fatalf("u16: %v", err)
	}
	if u16 != 0xBEEF {
		t.Errorf("u16 = %x, want BEEF", u16)
	}
	u32, err := r.u32()
	if err != nil {
		t.Fatalf("u32: %v", err)
	}
	if u32 != 0xDEADBEEF {
		t.Errorf("u32 = %x, want DEADBEEF", u32)
	}
	u64, err := r.u64()
	if err != nil {
		t.Fatalf("u64: %v", err)
	}
	if u64 != 0x0102030405060708 {
		t.Errorf("u64 = %x, want 0102030405060708", u64)
	}
}

func TestReaderShortBuffer(t *testing.T) {
	r := newReader([]byte{0x01, 0x02})
	_, err := r.u32()
	if err == nil {
		t.Fatal("expected error reading u32 from a 2-byte buffer")
	}
	gerr, ok := err.(*Error)
	if !ok {
		t.Fatalf("err is %T, want *gpt.Error", err)
	}
	if gerr.Kind != KindIO {
		t.Errorf("Kind = %v, want KindIO", gerr.Kind)
	}
}

func TestReaderBytesAdvancesOffset(t *testing.T) {
	r := newReader([]byte{1, 2, 3, 4, 5})
	b, err := r.bytes(3)
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	if len(b) != 3 || b[0] != 1 || b[2] != 3 {
		t.Errorf("bytes = %v, want [1 2 3]", b)
	}
	if r.remaining() != 2 {
		t.Errorf("remaining = %d, want 2", r.remaining())
	}
}
