package gpt

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/google/uuid"
)

// EntrySize is the fixed size of a single partition-entry record this
// library writes and expects to read. UEFI allows other entry sizes via the
// header's PartSize field; readPartitionArray steps through the array at the
// header's PartSize stride (rejecting strides below 128) and decodes only
// the first EntrySize bytes of each slot.
const EntrySize = 128

const maxNameCodeUnits = 36

// Partition attribute flag bits, per the UEFI specification's GPT
// partition entry attributes.
const (
	AttrPlatformRequired   uint64 = 1 << 0
	AttrEFIIgnore          uint64 = 1 << 1
	AttrLegacyBIOSBootable uint64 = 1 << 2
)

// Partition is one entry in the GPT partition array.
type Partition struct {
	TypeGUID    uuid.UUID
	UniqueGUID  uuid.UUID
	StartingLBA uint64
	EndingLBA   uint64
	Attributes  uint64
	Name        string
}

// IsUnused reports whether p's type GUID is all zero, the marker UEFI uses
// for an empty slot in the partition array. The other fields are not
// examined.
func (p *Partition) IsUnused() bool {
	return p.TypeGUID == uuid.Nil
}

// sizeLBA returns the partition's length in logical blocks. EndingLBA is
// inclusive, so an entry spanning a single LBA has StartingLBA ==
// EndingLBA.
func (p *Partition) sizeLBA() uint64 {
	if p.EndingLBA < p.StartingLBA {
		return 0
	}
	return p.EndingLBA - p.StartingLBA + 1
}

// encodePartitionEntry serializes p into a zero-padded EntrySize buffer. An
// unused slot (TypeGUID == uuid.Nil) encodes as all zero bytes regardless of
// its other fields.
func encodePartitionEntry(p *Partition) []byte {
	buf := make([]byte, EntrySize)
	if p == nil || p.IsUnused() {
		return buf
	}
	encodeMixedEndianGUID(p.TypeGUID, buf[0:16])
	encodeMixedEndianGUID(p.UniqueGUID, buf[16:32])
	binary.LittleEndian.PutUint64(buf[32:40], p.StartingLBA)
	binary.LittleEndian.PutUint64(buf[40:48], p.EndingLBA)
	binary.LittleEndian.PutUint64(buf[48:56], p.Attributes)
	encodePartitionName(p.Name, buf[56:56+maxNameCodeUnits*2])
	return buf
}

// decodePartitionEntry parses an EntrySize buffer into a Partition. A slot
// that's all zero decodes to an unused Partition with a nil TypeGUID,
// matching encodePartitionEntry's own convention round-trip.
func decodePartitionEntry(buf []byte) (*Partition, error) {
	if len(buf) != EntrySize {
		return nil, newErr(KindInvalidPartitionLength, "entry.decode", nil)
	}
	typeGUID, err := decodeMixedEndianGUID(buf[0:16])
	if err != nil {
		return nil, err
	}
	if typeGUID == uuid.Nil {
		return &Partition{}, nil
	}
	uniqueGUID, err := decodeMixedEndianGUID(buf[16:32])
	if err != nil {
		return nil, err
	}
	return &Partition{
		TypeGUID:    typeGUID,
		UniqueGUID:  uniqueGUID,
		StartingLBA: binary.LittleEndian.Uint64(buf[32:40]),
		EndingLBA:   binary.LittleEndian.Uint64(buf[40:48]),
		Attributes:  binary.LittleEndian.Uint64(buf[48:56]),
		Name:        decodePartitionName(buf[56:56+maxNameCodeUnits*2]),
	}, nil
}

// encodePartitionName writes name into dst as UTF-16LE, truncated to fit,
// and NUL-terminated if room remains.
func encodePartitionName(name string, dst []byte) {
	units := utf16.Encode([]rune(name))
	if len(units) > maxNameCodeUnits {
		units = units[:maxNameCodeUnits]
	} else if len(units) < maxNameCodeUnits {
		units = units[:len(units):len(units)] // leave trailing dst bytes zero (NUL)
	}
	for i, u := range units {
		binary.LittleEndian.PutUint16(dst[i*2:i*2+2], u)
	}
}

// decodePartitionName reads a UTF-16LE partition name, stopping at the
// first NUL code unit (or the end of src, whichever comes first).
func decodePartitionName(src []byte) string {
	units := make([]uint16, 0, maxNameCodeUnits)
	for i := 0; i+1 < len(src); i += 2 {
		u := binary.LittleEndian.Uint16(src[i : i+2])
		if u == 0 {
			break
		}
		units = append(units, u)
	}
	return string(utf16.Decode(units))
}
