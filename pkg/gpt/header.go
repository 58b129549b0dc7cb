package gpt

import (
	"encoding/binary"
	"io"

	"github.com/google/uuid"
)

// HeaderSize is the fixed on-disk size of a GPT header, per UEFI.
const HeaderSize = 92

const (
	gptSignature = "EFI PART"
	gptRevision  = 0x00010000
)

// Header is the in-memory mirror of a 92-byte GPT header (primary or
// backup).
type Header struct {
	CurrentLBA     uint64
	BackupLBA      uint64
	FirstUsableLBA uint64
	LastUsableLBA  uint64
	DiskGUID       uuid.UUID
	PartStart      uint64
	NumParts       uint32
	PartSize       uint32
	CRC32          uint32
	CRC32Parts     uint32
}

// IsPrimary reports whether h sits before its counterpart, i.e. it's the
// header at LBA 1 rather than the one at the last LBA.
func (h *Header) IsPrimary() bool {
	return h.CurrentLBA < h.BackupLBA
}

// encode serializes h into a 92-byte buffer with the header CRC field left
// zero -- the first phase of the two-phase CRC build the design notes
// describe. crc32Parts is written as given (the array CRC must already be
// fresh at this point).
func (h *Header) encode() []byte {
	buf := make([]byte, HeaderSize)
	w := newWriter(buf)
	w.putBytes([]byte(gptSignature))
	w.putU32(gptRevision)
	w.putU32(HeaderSize)
	w.putU32(0) // crc32, patched in later
	w.putU32(0) // reserved
	w.putU64(h.CurrentLBA)
	w.putU64(h.BackupLBA)
	w.putU64(h.FirstUsableLBA)
	w.putU64(h.LastUsableLBA)
	encodeMixedEndianGUID(h.DiskGUID, buf[w.off:w.off+16])
	w.off += 16
	w.putU64(h.PartStart)
	w.putU32(h.NumParts)
	w.putU32(h.PartSize)
	w.putU32(h.CRC32Parts)
	return buf
}

// decodeHeader parses a 92-byte buffer into a Header, validating the
// signature and recomputing the header CRC32 over a copy with bytes 16..20
// zeroed. A successful parse keeps the *stored* crc32 value, not the
// recomputed one (they're required to be equal, but the stored value is
// what a caller inspecting h.CRC32 should see).
func decodeHeader(buf []byte) (*Header, error) {
	if len(buf) < HeaderSize {
		return nil, newErr(KindIO, "header.decode", errShortBuffer)
	}
	if string(buf[0:8]) != gptSignature {
		return nil, newErr(KindInvalidGptSignature, "header.decode", nil)
	}

	h := &Header{}
	r := newReader(buf[8:HeaderSize])
	if _, err := r.u32(); err != nil { // revision, unchecked beyond presence
		return nil, err
	}
	if _, err := r.u32(); err != nil { // header size, unchecked beyond presence
		return nil, err
	}
	h.CRC32 = binary.LittleEndian.Uint32(buf[16:20])
	// reserved at buf[20:24] intentionally skipped
	r.off += 8 // skip the crc32 (read above) and reserved in our local cursor too

	var err error
	if h.CurrentLBA, err = r.u64(); err != nil {
		return nil, err
	}
	if h.BackupLBA, err = r.u64(); err != nil {
		return nil, err
	}
	if h.FirstUsableLBA, err = r.u64(); err != nil {
		return nil, err
	}
	if h.LastUsableLBA, err = r.u64(); err != nil {
		return nil, err
	}
	guidBytes, err := r.bytes(16)
	if err != nil {
		return nil, err
	}
	h.DiskGUID, err = decodeMixedEndianGUID(guidBytes)
	if err != nil {
		return nil, err
	}
	if h.PartStart, err = r.u64(); err != nil {
		return nil, err
	}
	if h.NumParts, err = r.u32(); err != nil {
		return nil, err
	}
	if h.PartSize, err = r.u32(); err != nil {
		return nil, err
	}
	if h.CRC32Parts, err = r.u32(); err != nil {
		return nil, err
	}

	check := make([]byte, HeaderSize)
	copy(check, buf[:HeaderSize])
	binary.LittleEndian.PutUint32(check[16:20], 0)
	if crc32ISOHDLC(check) != h.CRC32 {
		return nil, newErr(KindInvalidCRC32, "header.decode", nil)
	}

	return h, nil
}

// HeaderFromBytes reads and decodes the 92-byte header at lba on dev.
func HeaderFromBytes(dev BlockDevice, lba uint64, blockSize LogicalBlockSize) (*Header, error) {
	off, err := lbaOffset(lba, blockSize, "header.from_bytes")
	if err != nil {
		return nil, err
	}
	if _, err := dev.Seek(off, io.SeekStart); err != nil {
		return nil, newErr(KindIO, "header.from_bytes", err)
	}
	buf := make([]byte, HeaderSize)
	if _, err := io.ReadFull(dev, buf); err != nil {
		return nil, newErr(KindIO, "header.from_bytes", err)
	}
	return decodeHeader(buf)
}

// writeHeaderAt performs the two-phase CRC build and writes h, padded to a
// full logical block, at lba. arrayBytes is the already-encoded partition
// array this header points at; its CRC32 is computed fresh and embedded in
// h before h's own CRC32 is computed -- the ordering the design notes call
// out as essential.
func writeHeaderAt(dev BlockDevice, h *Header, arrayBytes []byte, lba uint64, blockSize LogicalBlockSize, op string) error {
	h.CRC32Parts = crc32ISOHDLC(arrayBytes)

	buf := h.encode()
	crc := crc32ISOHDLC(buf)
	binary.LittleEndian.PutUint32(buf[16:20], crc)
	h.CRC32 = crc

	block := buf
	if int(blockSize) > len(buf) {
		block = make([]byte, blockSize)
		copy(block, buf)
	}

	off, err := lbaOffset(lba, blockSize, op)
	if err != nil {
		return err
	}
	if _, err := dev.Seek(off, io.SeekStart); err != nil {
		return newErr(KindIO, op, err)
	}
	if _, err := dev.Write(block); err != nil {
		return newErr(KindIO, op, err)
	}
	return nil
}

// writePrimary writes h (which must be the primary header) to LBA h.CurrentLBA.
func writePrimary(dev BlockDevice, h *Header, arrayBytes []byte, blockSize LogicalBlockSize) error {
	if h.CurrentLBA >= h.BackupLBA {
		return newErr(KindMissingBackupLba, "header.write_primary", nil)
	}
	return writeHeaderAt(dev, h, arrayBytes, h.CurrentLBA, blockSize, "header.write_primary")
}

// writeBackup writes h (which must be the backup header) to LBA h.CurrentLBA.
func writeBackup(dev BlockDevice, h *Header, arrayBytes []byte, blockSize LogicalBlockSize) error {
	if h.CurrentLBA <= h.BackupLBA {
		return newErr(KindMissingBackupLba, "header.write_backup", nil)
	}
	return writeHeaderAt(dev, h, arrayBytes, h.CurrentLBA, blockSize, "header.write_backup")
}

// findBackupLBA locates the backup header's LBA from the device's length:
// the last LBA on the device. Requires room for at least the MBR, primary
// header, and backup header (3 logical blocks).
func findBackupLBA(dev BlockDevice, blockSize LogicalBlockSize) (uint64, error) {
	size, err := deviceSize(dev)
	if err != nil {
		return 0, newErr(KindIO, "header.find_backup_lba", err)
	}
	bs := int64(blockSize)
	if size < 3*bs {
		return 0, newErr(KindDiskTooSmall, "header.find_backup_lba", nil)
	}
	return uint64(size/bs) - 1, nil
}
