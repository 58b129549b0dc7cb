package gpt

import "github.com/google/uuid"

const minNumParts = 128

// HeaderBuilder fluently assembles a matched primary/backup header pair,
// configured by the caller instead of hardcoded to a single disk layout.
// It takes the backup LBA as an input rather than a disk size: a fresh
// disk's caller derives it once
// from the device length, and a resize derives it from the header already
// on disk, so the builder itself stays agnostic to where that number came
// from.
type HeaderBuilder struct {
	blockSize   LogicalBlockSize
	backupLBA   uint64
	diskGUID    uuid.UUID
	numParts    uint32
	partSize    uint32
	firstUsable *uint64
	lastUsable  *uint64
}

// NewHeaderBuilder returns a builder defaulted to 512-byte sectors and the
// standard 128-entry, 128-byte-per-entry partition array.
func NewHeaderBuilder() *HeaderBuilder {
	return &HeaderBuilder{
		blockSize: Sector512,
		numParts:  minNumParts,
		partSize:  128,
		diskGUID:  uuid.New(),
	}
}

// WithBlockSize sets the logical block size used to size the partition
// array's footprint.
func (b *HeaderBuilder) WithBlockSize(s LogicalBlockSize) *HeaderBuilder {
	b.blockSize = s
	return b
}

// WithBackupLBA sets the LBA the backup header will occupy (and the
// primary header will point at).
func (b *HeaderBuilder) WithBackupLBA(lba uint64) *HeaderBuilder {
	b.backupLBA = lba
	return b
}

// WithDiskGUID overrides the random disk GUID NewHeaderBuilder generates.
func (b *HeaderBuilder) WithDiskGUID(u uuid.UUID) *HeaderBuilder {
	b.diskGUID = u
	return b
}

// WithNumParts sets the partition array's entry count. Values below 128
// are clamped up to it, per UEFI's minimum.
func (b *HeaderBuilder) WithNumParts(n uint32) *HeaderBuilder {
	b.numParts = n
	return b
}

// WithPartSize sets the size, in bytes, of each partition array entry.
func (b *HeaderBuilder) WithPartSize(n uint32) *HeaderBuilder {
	b.partSize = n
	return b
}

// WithFirstUsableLBA requests a first usable LBA. The larger of this value
// and the structural minimum (room for the MBR, primary header, and
// primary array) wins.
func (b *HeaderBuilder) WithFirstUsableLBA(lba uint64) *HeaderBuilder {
	b.firstUsable = &lba
	return b
}

// WithLastUsableLBA requests a last usable LBA. The larger of this value
// and the structural default (room for the backup header and backup
// array before the end of the disk) wins -- a value past the structural
// default widens the usable range toward the backup array, and a smaller
// value is ignored. The builder does not check a widened range against the
// backup array's position.
func (b *HeaderBuilder) WithLastUsableLBA(lba uint64) *HeaderBuilder {
	b.lastUsable = &lba
	return b
}

// Build computes a consistent primary/backup header pair. Order: resolve
// the partition array's footprint, then the structural first/last usable
// bounds it implies, then fold in the caller's requested usable-range
// overrides (each taking the larger of its own value and the structural
// one), then validate.
func (b *HeaderBuilder) Build() (primary *Header, backup *Header, err error) {
	const op = "headerbuilder.build"

	numParts := b.numParts
	if numParts < minNumParts {
		numParts = minNumParts
	}
	partSize := b.partSize
	if partSize == 0 {
		partSize = 128
	}

	const primaryLBA = uint64(1)
	if b.backupLBA < primaryLBA {
		return nil, nil, newErr(KindMissingBackupLba, op, nil)
	}

	arrayLBAs := partitionArrayLBAs(numParts, partSize, b.blockSize)

	structuralFirst := 2 + arrayLBAs
	firstUsable := structuralFirst
	if b.firstUsable != nil && *b.firstUsable > firstUsable {
		firstUsable = *b.firstUsable
	}

	var structuralLast uint64
	if b.backupLBA >= arrayLBAs+1 {
		structuralLast = b.backupLBA - arrayLBAs - 1
	}
	lastUsable := structuralLast
	if b.lastUsable != nil && *b.lastUsable > lastUsable {
		lastUsable = *b.lastUsable
	}

	if firstUsable > lastUsable {
		return nil, nil, newErr(KindBackupLbaTooEarly, op, nil)
	}

	primary = &Header{
		CurrentLBA:     primaryLBA,
		BackupLBA:      b.backupLBA,
		FirstUsableLBA: firstUsable,
		LastUsableLBA:  lastUsable,
		DiskGUID:       b.diskGUID,
		PartStart:      2,
		NumParts:       numParts,
		PartSize:       partSize,
	}
	backup = &Header{
		CurrentLBA:     b.backupLBA,
		BackupLBA:      primaryLBA,
		FirstUsableLBA: firstUsable,
		LastUsableLBA:  lastUsable,
		DiskGUID:       b.diskGUID,
		PartStart:      lastUsable + 1,
		NumParts:       numParts,
		PartSize:       partSize,
	}
	return primary, backup, nil
}
