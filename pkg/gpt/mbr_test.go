package gpt

import "testing"

func TestNewProtectiveMBRCoversWholeDisk(t *testing.T) {
	m := NewProtectiveMBR(72)
	p := m.Partitions[0]
	if p.OSType != mbrProtectiveType {
		t.Errorf("OSType = %#x, want %#x", p.OSType, mbrProtectiveType)
	}
	if p.StartLBA != 1 {
		t.Errorf("StartLBA = %d, want 1", p.StartLBA)
	}
	if p.SizeLBA != 71 {
		t.Errorf("SizeLBA = %d, want 71", p.SizeLBA)
	}
	for i := 1; i < 4; i++ {
		if m.Partitions[i].OSType != 0 {
			t.Errorf("Partitions[%d].OSType = %#x, want 0", i, m.Partitions[i].OSType)
		}
	}
}

func TestNewProtectiveMBRClampsHugeDisk(t *testing.T) {
	m := NewProtectiveMBR(uint64(0xFFFFFFFF) + 10)
	if m.Partitions[0].SizeLBA != 0xFFFFFFFF {
		t.Errorf("SizeLBA = %#x, want 0xFFFFFFFF", m.Partitions[0].SizeLBA)
	}
}

func TestMBRRoundTrip(t *testing.T) {
	m := NewProtectiveMBR(1000)
	m.DiskSignature = 0xCAFEBABE
	buf := m.ToBytes()
	if len(buf) != mbrSize {
		t.Fatalf("ToBytes length = %d, want %d", len(buf), mbrSize)
	}

	got, err := MBRFromBytes(buf, Sector512)
	if err != nil {
		t.Fatalf("MBRFromBytes: %v", err)
	}
	if got.DiskSignature != m.DiskSignature {
		t.Errorf("DiskSignature = %#x, want %#x", got.DiskSignature, m.DiskSignature)
	}
	if got.Partitions[0] != m.Partitions[0] {
		t.Errorf("Partitions[0] = %+v, want %+v", got.Partitions[0], m.Partitions[0])
	}
}

func TestMBRFromBytesRejectsWrongLength(t *testing.T) {
	_, err := MBRFromBytes(make([]byte, 100), Sector512)
	if err == nil {
		t.Fatal("expected error for wrong-length buffer")
	}
	gerr, ok := err.(*Error)
	if !ok || gerr.Kind != KindInvalidMBRLength {
		t.Errorf("err = %v, want KindInvalidMBRLength", err)
	}
}

func TestMBRFromBytesRejectsBadSignature(t *testing.T) {
	buf := make([]byte, mbrSize)
	_, err := MBRFromBytes(buf, Sector512)
	if err == nil {
		t.Fatal("expected error for missing 0x55 0xAA signature")
	}
	gerr, ok := err.(*Error)
	if !ok || gerr.Kind != KindInvalidMBRSignature {
		t.Errorf("err = %v, want KindInvalidMBRSignature", err)
	}
}

func TestMBROverwriteLBA0PreservesCursor(t *testing.T) {
	dev := NewMemoryDevice(4096)
	if _, err := dev.Seek(2048, 0); err != nil {
		t.Fatalf("seek: %v", err)
	}
	m := NewProtectiveMBR(8)
	if err := m.OverwriteLBA0(dev, Sector512); err != nil {
		t.Fatalf("OverwriteLBA0: %v", err)
	}
	pos, err := dev.Seek(0, 1)
	if err != nil {
		t.Fatalf("seek: %v", err)
	}
	if pos != 2048 {
		t.Errorf("cursor after OverwriteLBA0 = %d, want 2048 (preserved)", pos)
	}
	if dev.Bytes()[mbrSignatureOffset] != mbrMagic[0] {
		t.Error("expected MBR signature to be written at LBA 0")
	}
}
