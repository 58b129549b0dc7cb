package gpt

import (
	"io"
	"sort"
)

// PartitionTable is the in-memory partition map: keys are 1-based logical
// partition indices (never 0), values are the occupied entries. This index
// is independent of the physical slot a partition occupies in the on-disk
// array -- readPartitionArray recovers it from physical slot i as i+1, and
// buildPartitionArrayBytes reassigns physical slots 0,1,2,... by walking
// used partitions in ascending index order at write time.
type PartitionTable map[int]*Partition

// partitionArrayLBAs returns how many logical blocks the partition array
// occupies, rounding up -- e.g. ceil(128*128/512) = 32 for a 128-entry,
// 128-byte-stride array on 512-byte blocks.
func partitionArrayLBAs(numParts uint32, partSize uint32, blockSize LogicalBlockSize) uint64 {
	total := uint64(numParts) * uint64(partSize)
	bs := blockSize.Bytes()
	if bs == 0 {
		return 0
	}
	return (total + bs - 1) / bs
}

// readPartitionArray reads and decodes the partition array h describes,
// verifying it against h.CRC32Parts before returning any entries.
func readPartitionArray(dev BlockDevice, h *Header, blockSize LogicalBlockSize) (PartitionTable, error) {
	off, err := lbaOffset(h.PartStart, blockSize, "table.read")
	if err != nil {
		return nil, err
	}
	if _, err := dev.Seek(off, io.SeekStart); err != nil {
		return nil, newErr(KindIO, "table.read", err)
	}

	size := uint64(h.NumParts) * uint64(h.PartSize)
	buf := make([]byte, size)
	if _, err := io.ReadFull(dev, buf); err != nil {
		return nil, newErr(KindIO, "table.read", err)
	}
	if crc32ISOHDLC(buf) != h.CRC32Parts {
		return nil, newErr(KindInvalidTableCRC, "table.read", nil)
	}

	table := make(PartitionTable)
	entryLen := int(h.PartSize)
	if entryLen < EntrySize {
		return nil, newErr(KindInvalidPartitionLength, "table.read", nil)
	}
	for i := 0; i < int(h.NumParts); i++ {
		start := i * entryLen
		p, err := decodePartitionEntry(buf[start : start+EntrySize])
		if err != nil {
			return nil, err
		}
		if !p.IsUnused() {
			table[i+1] = p
		}
	}
	return table, nil
}

// buildPartitionArrayBytes re-serializes table into a full numParts-entry
// array, each slot partSize bytes wide, unused slots zero-filled. Used
// partitions are walked in ascending logical-index order and assigned
// contiguous physical slots starting at 0, compacting any gaps left by
// removed partitions -- independent of the logical index a caller addresses
// a partition by.
func buildPartitionArrayBytes(table PartitionTable, numParts uint32, partSize uint32) []byte {
	buf := make([]byte, uint64(numParts)*uint64(partSize))
	stride := int(partSize)

	indices := make([]int, 0, len(table))
	for idx, p := range table {
		if p.IsUnused() {
			continue
		}
		indices = append(indices, idx)
	}
	sort.Ints(indices)

	for slot, idx := range indices {
		if slot >= int(numParts) {
			break
		}
		off := slot * stride
		copy(buf[off:off+EntrySize], encodePartitionEntry(table[idx]))
	}
	return buf
}

// writeArrayAt writes the already-encoded partition array bytes at lba.
func writeArrayAt(dev BlockDevice, arrayBytes []byte, lba uint64, blockSize LogicalBlockSize, op string) error {
	off, err := lbaOffset(lba, blockSize, op)
	if err != nil {
		return err
	}
	if _, err := dev.Seek(off, io.SeekStart); err != nil {
		return newErr(KindIO, op, err)
	}
	if _, err := dev.Write(arrayBytes); err != nil {
		return newErr(KindIO, op, err)
	}
	return nil
}

// clone returns a copy of table in which each Partition is copied as well,
// safe for a caller to mutate without affecting the original map.
func (t PartitionTable) clone() PartitionTable {
	out := make(PartitionTable, len(t))
	for k, v := range t {
		cp := *v
		out[k] = &cp
	}
	return out
}
