package gpt

import (
	"encoding/binary"
	"io"
)

// Layout constants for the protective MBR.
const (
	mbrSize            = 512
	mbrBootCodeSize    = 440
	mbrRecordSize      = 16
	mbrRecordsOffset   = 446
	mbrSignatureOffset = 510
	mbrProtectiveType  = 0xEE
)

var mbrMagic = [2]byte{0x55, 0xAA}

// invalidCHS is the CHS triple UEFI firmware writes when only the LBA
// fields matter -- the same convention gokrazy's packer uses
// (cmd/gokr-packer/parttable.go) for its non-GPT partition table writer.
var invalidCHS = [3]byte{0xFE, 0xFF, 0xFF}

// MBRPartitionRecord is one of the four legacy 16-byte partition records
// embedded in the protective MBR.
type MBRPartitionRecord struct {
	BootIndicator byte
	StartCHS      [3]byte
	OSType        byte
	EndCHS        [3]byte
	StartLBA      uint32
	SizeLBA       uint32
}

func (r MBRPartitionRecord) encode(dst []byte) {
	dst[0] = r.BootIndicator
	copy(dst[1:4], r.StartCHS[:])
	dst[4] = r.OSType
	copy(dst[5:8], r.EndCHS[:])
	binary.LittleEndian.PutUint32(dst[8:12], r.StartLBA)
	binary.LittleEndian.PutUint32(dst[12:16], r.SizeLBA)
}

func decodeMBRPartitionRecord(src []byte) MBRPartitionRecord {
	var r MBRPartitionRecord
	r.BootIndicator = src[0]
	copy(r.StartCHS[:], src[1:4])
	r.OSType = src[4]
	copy(r.EndCHS[:], src[5:8])
	r.StartLBA = binary.LittleEndian.Uint32(src[8:12])
	r.SizeLBA = binary.LittleEndian.Uint32(src[12:16])
	return r
}

// ProtectiveMBR is the legacy MBR written to LBA 0 of a GPT disk. Its first
// partition record, type 0xEE, spans the whole addressable disk so that
// MBR-only tools refuse to treat the disk as unpartitioned.
type ProtectiveMBR struct {
	BootCode      [mbrBootCodeSize]byte
	DiskSignature uint32
	Partitions    [4]MBRPartitionRecord
}

// NewProtectiveMBR builds a fresh protective MBR for a disk of lbaCount
// logical blocks. The protective record covers LBA 1 through
// min(lbaCount-1, 0xFFFFFFFF).
func NewProtectiveMBR(lbaCount uint64) *ProtectiveMBR {
	size := lbaCount - 1
	if size > 0xFFFFFFFF {
		size = 0xFFFFFFFF
	}
	m := &ProtectiveMBR{}
	m.Partitions[0] = MBRPartitionRecord{
		BootIndicator: 0x00,
		StartCHS:      invalidCHS,
		OSType:        mbrProtectiveType,
		EndCHS:        invalidCHS,
		StartLBA:      1,
		SizeLBA:       uint32(size),
	}
	return m
}

// MBRFromBytes decodes a protective MBR from a full logical-block-sized
// buffer. buf must be exactly blockSize bytes -- a 4096-byte sector holds
// the 512-byte MBR encoding followed by zero padding, as OverwriteLBA0
// writes it.
func MBRFromBytes(buf []byte, blockSize LogicalBlockSize) (*ProtectiveMBR, error) {
	if len(buf) != int(blockSize) {
		return nil, newErr(KindInvalidMBRLength, "mbr.from_bytes", nil)
	}
	if buf[mbrSignatureOffset] != mbrMagic[0] || buf[mbrSignatureOffset+1] != mbrMagic[1] {
		return nil, newErr(KindInvalidMBRSignature, "mbr.from_bytes", nil)
	}
	m := &ProtectiveMBR{}
	copy(m.BootCode[:], buf[:mbrBootCodeSize])
	m.DiskSignature = binary.LittleEndian.Uint32(buf[440:444])
	for i := 0; i < 4; i++ {
		off := mbrRecordsOffset + i*mbrRecordSize
		m.Partitions[i] = decodeMBRPartitionRecord(buf[off : off+mbrRecordSize])
	}
	return m, nil
}

// ToBytes serializes m as a 512-byte protective MBR, regardless of the
// device's logical block size -- the trailing padding to a 4096-byte
// sector is the caller's responsibility (OverwriteLBA0 handles it).
func (m *ProtectiveMBR) ToBytes() []byte {
	buf := make([]byte, mbrSize)
	copy(buf[:mbrBootCodeSize], m.BootCode[:])
	binary.LittleEndian.PutUint32(buf[440:444], m.DiskSignature)
	for i, p := range m.Partitions {
		off := mbrRecordsOffset + i*mbrRecordSize
		p.encode(buf[off : off+mbrRecordSize])
	}
	buf[mbrSignatureOffset] = mbrMagic[0]
	buf[mbrSignatureOffset+1] = mbrMagic[1]
	return buf
}

// blockPadded pads m's 512-byte encoding with zeros up to blockSize.
func (m *ProtectiveMBR) blockPadded(blockSize LogicalBlockSize) []byte {
	enc := m.ToBytes()
	if int(blockSize) <= len(enc) {
		return enc
	}
	out := make([]byte, blockSize)
	copy(out, enc)
	return out
}

// OverwriteLBA0 writes m's full encoding at device offset 0, preserving the
// device's cursor position across the call.
func (m *ProtectiveMBR) OverwriteLBA0(dev BlockDevice, blockSize LogicalBlockSize) error {
	cur, err := dev.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if _, err := dev.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if _, err := dev.Write(m.blockPadded(blockSize)); err != nil {
		return err
	}
	if err := flushDevice(dev); err != nil {
		return err
	}
	_, err = dev.Seek(cur, io.SeekStart)
	return err
}

// UpdateConservative rewrites only the four partition records and the
// trailing 0x55 0xAA signature, leaving boot code and disk signature
// untouched on disk.
func (m *ProtectiveMBR) UpdateConservative(dev BlockDevice) error {
	if _, err := dev.Seek(mbrRecordsOffset, io.SeekStart); err != nil {
		return err
	}
	tail := mbrSize - mbrRecordsOffset
	buf := make([]byte, tail)
	for i, p := range m.Partitions {
		off := i * mbrRecordSize
		p.encode(buf[off : off+mbrRecordSize])
	}
	buf[tail-2] = mbrMagic[0]
	buf[tail-1] = mbrMagic[1]
	_, err := dev.Write(buf)
	return err
}
