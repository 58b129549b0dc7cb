package gpt

import (
	"io"
	"sort"

	"github.com/google/uuid"

	"github.com/vorteil/gpt/pkg/gptlog"
)

// Config configures how a Disk is opened or created: the device's logical
// block size, where it logs, and whether mutating operations are allowed.
type Config struct {
	BlockSize LogicalBlockSize
	Logger    gptlog.Logger
	ReadOnly  bool

	// OnlyValidHeaders requires both the primary and backup headers to
	// parse successfully when opening; the default tolerates either one
	// parsing and falls back to whichever survives.
	OnlyValidHeaders bool

	// ReadonlyBackup skips rewriting the backup header and its partition
	// array on every write, leaving the backup region byte-identical
	// across writes that don't explicitly touch it.
	ReadonlyBackup bool
}

func (c Config) blockSize() LogicalBlockSize {
	if c.BlockSize == 0 {
		return Sector512
	}
	return c.BlockSize
}

func (c Config) logger() gptlog.Logger {
	if c.Logger == nil {
		return gptlog.Nop()
	}
	return c.Logger
}

// HeaderResult pairs a decoded header with the partition array it
// describes. OpenFromDevice does not use it; it tracks each header and
// table separately.
type HeaderResult struct {
	Header *Header
	Table  PartitionTable
}

// Disk is an opened GPT-partitioned device. It holds the protective MBR,
// the primary/backup header pair, and the authoritative partition table in
// memory; nothing reaches the device until WriteInplace or Write is
// called.
type Disk struct {
	dev            BlockDevice
	blockSize      LogicalBlockSize
	log            gptlog.Logger
	readOnly       bool
	readonlyBackup bool

	mbr     *ProtectiveMBR
	primary *Header
	backup  *Header
	table   PartitionTable
}

// readSignatureAt reports whether lba on dev begins with the GPT header
// signature, tolerating any I/O failure as "no".
func readSignatureAt(dev BlockDevice, lba uint64, blockSize LogicalBlockSize) bool {
	off, err := lbaOffset(lba, blockSize, "disk.probe")
	if err != nil {
		return false
	}
	if _, err := dev.Seek(off, io.SeekStart); err != nil {
		return false
	}
	buf := make([]byte, 8)
	if _, err := io.ReadFull(dev, buf); err != nil {
		return false
	}
	return string(buf) == gptSignature
}

// OpenFromDevice reads the protective MBR and both GPT headers from dev. By
// default, if the primary header or its partition array fails validation,
// it falls back to the backup copy and reconstructs the primary header's
// position -- the redundancy the dual-header protocol exists for. With
// cfg.OnlyValidHeaders, both headers must parse -- the primary-side error
// is reported first when one or both fail -- and a primary array failure is
// never silently covered by the backup's array.
func OpenFromDevice(dev BlockDevice, cfg Config) (*Disk, error) {
	const op = "disk.open"
	bs := cfg.blockSize()
	log := cfg.logger()

	mbrBuf := make([]byte, bs)
	if _, err := dev.Seek(0, io.SeekStart); err != nil {
		return nil, newErr(KindIO, op, err)
	}
	if _, err := io.ReadFull(dev, mbrBuf); err != nil {
		return nil, newErr(KindIO, op, err)
	}
	mbr, err := MBRFromBytes(mbrBuf, bs)
	if err != nil {
		return nil, err
	}

	backupLBA, err := findBackupLBA(dev, bs)
	if err != nil {
		return nil, err
	}

	primary, primaryErr := HeaderFromBytes(dev, 1, bs)
	backup, backupErr := HeaderFromBytes(dev, backupLBA, bs)

	if cfg.OnlyValidHeaders {
		if primaryErr != nil {
			return nil, primaryErr
		}
		if backupErr != nil {
			return nil, backupErr
		}
	}

	if primaryErr == nil {
		table, tableErr := readPartitionArray(dev, primary, bs)
		if tableErr == nil {
			return &Disk{dev: dev, blockSize: bs, log: log, readOnly: cfg.ReadOnly, readonlyBackup: cfg.ReadonlyBackup,
				mbr: mbr, primary: primary, backup: backup, table: table}, nil
		}
		if backupErr != nil || cfg.OnlyValidHeaders {
			return nil, tableErr
		}
		log.Warnf("%s: primary partition array invalid (%v), recovering from backup", op, tableErr)
		table, err = readPartitionArray(dev, backup, bs)
		if err != nil {
			return nil, err
		}
		return &Disk{dev: dev, blockSize: bs, log: log, readOnly: cfg.ReadOnly, readonlyBackup: cfg.ReadonlyBackup,
			mbr: mbr, primary: primary, backup: backup, table: table}, nil
	}

	if backupErr != nil {
		return nil, primaryErr
	}

	log.Warnf("%s: primary header invalid (%v), recovering from backup", op, primaryErr)
	table, err := readPartitionArray(dev, backup, bs)
	if err != nil {
		return nil, err
	}
	reconstructed := *backup
	reconstructed.CurrentLBA = 1
	reconstructed.BackupLBA = backup.CurrentLBA
	reconstructed.PartStart = 2
	return &Disk{dev: dev, blockSize: bs, log: log, readOnly: cfg.ReadOnly, readonlyBackup: cfg.ReadonlyBackup,
		mbr: mbr, primary: &reconstructed, backup: backup, table: table}, nil
}

// CreateFromDevice initializes a fresh GPT layout sized to fill dev, in
// memory only: nothing is written until WriteInplace or Write is called.
// It refuses a device that already carries a GPT
// signature at LBA 1, so a caller can't silently clobber an existing
// partition table by calling the wrong constructor.
func CreateFromDevice(dev BlockDevice, cfg Config, diskGUID uuid.UUID) (*Disk, error) {
	const op = "disk.create"
	bs := cfg.blockSize()
	log := cfg.logger()
	if !bs.Valid() {
		return nil, newErr(KindOverflow, op, nil)
	}

	size, err := deviceSize(dev)
	if err != nil {
		return nil, newErr(KindIO, op, err)
	}
	lbaCount := uint64(size) / bs.Bytes()
	if lbaCount < 3 {
		return nil, newErr(KindDiskTooSmall, op, nil)
	}

	if readSignatureAt(dev, 1, bs) {
		return nil, newErr(KindCreatingInitializedDisk, op, nil)
	}

	primary, backup, err := NewHeaderBuilder().
		WithBlockSize(bs).
		WithBackupLBA(lbaCount - 1).
		WithDiskGUID(diskGUID).
		Build()
	if err != nil {
		return nil, err
	}

	d := &Disk{
		dev:            dev,
		blockSize:      bs,
		log:            log,
		readOnly:       cfg.ReadOnly,
		readonlyBackup: cfg.ReadonlyBackup,
		mbr:            NewProtectiveMBR(lbaCount),
		primary:        primary,
		backup:         backup,
		table:          make(PartitionTable),
	}
	if d.readOnly {
		return nil, newErr(KindReadOnly, op, nil)
	}
	return d, nil
}

// BlockSize returns the logical block size the disk was opened/created
// with.
func (d *Disk) BlockSize() LogicalBlockSize { return d.blockSize }

// DiskGUID returns the disk's unique identifier.
func (d *Disk) DiskGUID() uuid.UUID { return d.primary.DiskGUID }

// FirstUsableLBA returns the first LBA a partition may occupy.
func (d *Disk) FirstUsableLBA() uint64 { return d.primary.FirstUsableLBA }

// LastUsableLBA returns the last LBA (inclusive) a partition may occupy.
func (d *Disk) LastUsableLBA() uint64 { return d.primary.LastUsableLBA }

// NumParts returns the partition array's entry count.
func (d *Disk) NumParts() uint32 { return d.primary.NumParts }

// Partitions returns a snapshot of the occupied partitions, keyed by
// 1-based partition index (index 0 never appears). Mutating the returned
// map has no effect on d.
func (d *Disk) Partitions() PartitionTable { return d.table.clone() }

// Partition returns the partition at the given 1-based index, if any.
func (d *Disk) Partition(index int) (*Partition, bool) {
	p, ok := d.table[index]
	return p, ok
}

// PartitionByGUID finds the 1-based index holding the partition with
// unique identifier id.
func (d *Disk) PartitionByGUID(id uuid.UUID) (int, *Partition, bool) {
	for index, p := range d.table {
		if p.UniqueGUID == id {
			return index, p, true
		}
	}
	return 0, nil, false
}

// FreeSection is a contiguous run of unallocated LBAs within the usable
// range, StartLBA and EndLBA both inclusive.
type FreeSection struct {
	StartLBA uint64
	EndLBA   uint64
}

// Len returns the section's length in logical blocks.
func (fs FreeSection) Len() uint64 { return fs.EndLBA - fs.StartLBA + 1 }

// FindFreeSectors returns every contiguous unallocated run within the
// disk's usable LBA range, in ascending order.
func (d *Disk) FindFreeSectors() []FreeSection {
	return computeFreeSections(d.table, d.primary.FirstUsableLBA, d.primary.LastUsableLBA)
}

// computeFreeSections walks the occupied ranges in ascending order and
// reports the gaps between them (and before/after them) within
// [first, last]. Overlapping or out-of-range entries are clipped to the
// usable window rather than rejected -- this is a read-only report, not a
// validator.
func computeFreeSections(table PartitionTable, first, last uint64) []FreeSection {
	if first > last {
		return nil
	}

	occupied := make([][2]uint64, 0, len(table))
	for _, p := range table {
		if p.IsUnused() || p.EndingLBA < p.StartingLBA {
			continue
		}
		s, e := p.StartingLBA, p.EndingLBA
		if s > last || e < first {
			continue
		}
		if s < first {
			s = first
		}
		if e > last {
			e = last
		}
		occupied = append(occupied, [2]uint64{s, e})
	}
	sort.Slice(occupied, func(i, j int) bool { return occupied[i][0] < occupied[j][0] })

	var free []FreeSection
	cursor := first
	for _, seg := range occupied {
		if seg[0] > cursor {
			free = append(free, FreeSection{StartLBA: cursor, EndLBA: seg[0] - 1})
		}
		if seg[1]+1 > cursor {
			cursor = seg[1] + 1
		}
	}
	if cursor <= last {
		free = append(free, FreeSection{StartLBA: cursor, EndLBA: last})
	}
	return free
}

// firstFreeIndex returns the lowest unused 1-based partition index, up to
// and including NumParts. Index 0 is never a candidate: the partition map
// never contains it.
func (d *Disk) firstFreeIndex() (int, bool) {
	for i := 1; i <= int(d.primary.NumParts); i++ {
		if _, ok := d.table[i]; !ok {
			return i, true
		}
	}
	return 0, false
}

// NewPartitionArgs describes a partition to add via AddPartition. Placement
// is chosen by AddPartition itself via first-fit free-space search;
// SizeBytes is rounded up to whole logical blocks.
type NewPartitionArgs struct {
	Name                 string
	SizeBytes            uint64
	TypeGUID             uuid.UUID
	UniqueGUID           uuid.UUID // zero value: a fresh one is generated
	Attributes           uint64
	Alignment            uint64 // 0 or 1: unaligned
	ChangePartitionCount bool
}

// findPlacement first-fits sizeLBA logical blocks into the free sections
// computed from the disk's current table, rounding each candidate
// section's start up to the next multiple of alignment when alignment > 1.
// Sections are already in ascending order, so the first one that fits
// wins.
func (d *Disk) findPlacement(sizeLBA uint64, alignment uint64) (uint64, bool) {
	for _, sec := range d.FindFreeSectors() {
		start := sec.StartLBA
		if alignment > 1 {
			if rem := start % alignment; rem != 0 {
				start += alignment - rem
			}
		}
		if start > sec.EndLBA {
			continue
		}
		if sec.EndLBA-start+1 >= sizeLBA {
			return start, true
		}
	}
	return 0, false
}

// AddPartition places a new partition in the first free-space section it
// fits, growing the partition array only if ChangePartitionCount is set
// and no free index exists. It returns the 1-based partition index the
// partition was recorded under -- physical on-disk slot assignment happens
// separately, at write time.
func (d *Disk) AddPartition(args NewPartitionArgs) (int, error) {
	const op = "disk.add_partition"
	if d.readOnly {
		return 0, newErr(KindReadOnly, op, nil)
	}
	if args.SizeBytes == 0 {
		return 0, newErr(KindInvalidPartitionLength, op, nil)
	}
	bs := d.blockSize.Bytes()
	sizeLBA := (args.SizeBytes + bs - 1) / bs

	startLBA, ok := d.findPlacement(sizeLBA, args.Alignment)
	if !ok {
		return 0, newErr(KindNotEnoughSpace, op, nil)
	}
	endLBA := startLBA + sizeLBA - 1

	index, ok := d.firstFreeIndex()
	if !ok {
		if !args.ChangePartitionCount {
			return 0, newErr(KindPartitionCountWouldChange, op, nil)
		}
		grown := d.primary.NumParts * 2
		if grown <= d.primary.NumParts {
			return 0, newErr(KindOverflowPartitionCount, op, nil)
		}
		if err := d.resizePartitionArray(grown); err != nil {
			return 0, newErr(KindOverflowPartitionCount, op, err)
		}
		index, ok = d.firstFreeIndex()
		if !ok {
			return 0, newErr(KindOverflowPartitionCount, op, nil)
		}
	}

	uid := args.UniqueGUID
	if uid == uuid.Nil {
		uid = uuid.New()
	}
	d.table[index] = &Partition{
		TypeGUID:    args.TypeGUID,
		UniqueGUID:  uid,
		StartingLBA: startLBA,
		EndingLBA:   endLBA,
		Attributes:  args.Attributes,
		Name:        args.Name,
	}
	d.log.Infof("%s: index %d, lba %d-%d", op, index, startLBA, endLBA)
	return index, nil
}

// resizePartitionArray rebuilds the header pair for a larger partition
// array, then verifies every existing partition still falls inside the
// narrower usable range that implies. It either fully succeeds or leaves d
// untouched.
func (d *Disk) resizePartitionArray(newNumParts uint32) error {
	const op = "disk.resize_partition_array"
	primary, backup, err := NewHeaderBuilder().
		WithBlockSize(d.blockSize).
		WithBackupLBA(d.primary.BackupLBA).
		WithDiskGUID(d.primary.DiskGUID).
		WithNumParts(newNumParts).
		WithPartSize(d.primary.PartSize).
		Build()
	if err != nil {
		return err
	}
	for _, p := range d.table {
		if p.IsUnused() {
			continue
		}
		if p.StartingLBA < primary.FirstUsableLBA || p.EndingLBA > primary.LastUsableLBA {
			return newErr(KindNotEnoughSpace, op, nil)
		}
	}
	d.primary = primary
	d.backup = backup
	return nil
}

// RemovePartition clears the given 1-based partition index, freeing the
// LBAs it occupied. Header geometry is not recomputed until the next
// write, since removal never increases space pressure.
func (d *Disk) RemovePartition(index int) error {
	const op = "disk.remove_partition"
	if d.readOnly {
		return newErr(KindReadOnly, op, nil)
	}
	if _, ok := d.table[index]; !ok {
		return newErr(KindPartitionNotFound, op, nil)
	}
	delete(d.table, index)
	return nil
}

// RemovePartitionByGUID clears whichever index holds the partition with
// unique identifier id.
func (d *Disk) RemovePartitionByGUID(id uuid.UUID) error {
	const op = "disk.remove_partition_by_guid"
	if d.readOnly {
		return newErr(KindReadOnly, op, nil)
	}
	index, _, ok := d.PartitionByGUID(id)
	if !ok {
		return newErr(KindPartitionNotFound, op, nil)
	}
	delete(d.table, index)
	return nil
}

// writeAll flushes the disk's in-memory state to dev: protective MBR, then
// (unless readonlyBackup is set) the backup array and the backup header,
// then the primary array and the primary header. Backup-before-primary matches the
// write-ordering recovery contract -- a crash mid-write always leaves at
// least one complete, self-consistent copy. With readonlyBackup set, the
// backup region is left byte-identical across the write.
func (d *Disk) writeAll(dev BlockDevice) error {
	const op = "disk.write"
	if err := d.mbr.OverwriteLBA0(dev, d.blockSize); err != nil {
		return newErr(KindIO, op, err)
	}

	arrayBytes := buildPartitionArrayBytes(d.table, d.primary.NumParts, d.primary.PartSize)

	if !d.readonlyBackup {
		if err := writeArrayAt(dev, arrayBytes, d.backup.PartStart, d.blockSize, op); err != nil {
			return err
		}
		if err := writeBackup(dev, d.backup, arrayBytes, d.blockSize); err != nil {
			return err
		}
	}
	if err := writeArrayAt(dev, arrayBytes, d.primary.PartStart, d.blockSize, op); err != nil {
		return err
	}
	if err := writePrimary(dev, d.primary, arrayBytes, d.blockSize); err != nil {
		return err
	}
	return flushDevice(dev)
}

// WriteInplace flushes the disk's current in-memory state back to the
// device it was opened or created from.
func (d *Disk) WriteInplace() error {
	if d.readOnly {
		return newErr(KindReadOnly, "disk.write_inplace", nil)
	}
	return d.writeAll(d.dev)
}

// Write flushes the disk's current in-memory state to an arbitrary
// device -- for exporting the same layout to a different image, for
// instance.
func (d *Disk) Write(dev BlockDevice) error {
	return d.writeAll(dev)
}
