package gpt

import (
	"math"
	"testing"
)

func TestLogicalBlockSizeValid(t *testing.T) {
	if !Sector512.Valid() {
		t.Error("Sector512 should be valid")
	}
	if !Sector4096.Valid() {
		t.Error("Sector4096 should be valid")
	}
	if LogicalBlockSize(1024).Valid() {
		t.Error("1024 should not be a recognized logical block size")
	}
}

func TestLBAOffset(t *testing.T) {
	off, err := lbaOffset(34, Sector512, "test")
	if err != nil {
		t.Fatalf("lbaOffset: %v", err)
	}
	if off != 34*512 {
		t.Errorf("offset = %d, want %d", off, 34*512)
	}
}

func TestLBAOffsetOverflow(t *testing.T) {
	_, err := lbaOffset(math.MaxUint64, Sector4096, "test")
	if err == nil {
		t.Fatal("expected overflow error")
	}
	gerr, ok := err.(*Error)
	if !ok || gerr.Kind != KindOverflow {
		t.Errorf("err = %v, want KindOverflow", err)
	}
}

func TestLBAOffsetZeroBlockSize(t *testing.T) {
	off, err := lbaOffset(100, LogicalBlockSize(0), "test")
	if err != nil {
		t.Fatalf("lbaOffset: %v", err)
	}
	if off != 0 {
		t.Errorf("offset = %d, want 0", off)
	}
}
