package gpt

import (
	"errors"
	"io"
)

// BlockDevice is the abstract byte-addressable stream a Disk operates on --
// an open file, a raw block device, or an in-memory buffer. The core never
// opens a device from a path itself (that's left to the caller); it only
// ever consumes one of these.
type BlockDevice interface {
	io.Reader
	io.Writer
	io.Seeker
}

// flusher is satisfied by devices that buffer writes (e.g. *os.File);
// write_inplace calls Flush when available, matching the "device flush"
// step of the write protocol.
type flusher interface {
	Flush() error
}

func flushDevice(dev BlockDevice) error {
	if f, ok := dev.(flusher); ok {
		return f.Flush()
	}
	return nil
}

// deviceSize returns dev's current length in bytes by seeking to the end
// and back, leaving the device's cursor position unchanged. It works for
// any seekable stream, including an in-memory MemoryDevice, rather than
// relying on *os.File.Stat().
func deviceSize(dev BlockDevice) (int64, error) {
	cur, err := dev.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, err
	}
	end, err := dev.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if _, err := dev.Seek(cur, io.SeekStart); err != nil {
		return 0, err
	}
	return end, nil
}

// MemoryDevice is a BlockDevice backed by a byte slice, growing on demand.
// It supports reads, writes, and seeks so a Disk can be opened, mutated, and
// re-opened entirely in memory -- the pattern every round-trip test in this
// package relies on.
type MemoryDevice struct {
	buf []byte
	pos int64
}

// NewMemoryDevice returns a zero-filled in-memory device of the given size.
func NewMemoryDevice(size int64) *MemoryDevice {
	return &MemoryDevice{buf: make([]byte, size)}
}

// NewMemoryDeviceFromBytes wraps an existing byte slice as a device,
// without copying it.
func NewMemoryDeviceFromBytes(b []byte) *MemoryDevice {
	return &MemoryDevice{buf: b}
}

// Bytes returns the device's current backing slice.
func (d *MemoryDevice) Bytes() []byte { return d.buf }

func (d *MemoryDevice) Read(p []byte) (int, error) {
	if d.pos >= int64(len(d.buf)) {
		return 0, io.EOF
	}
	n := copy(p, d.buf[d.pos:])
	d.pos += int64(n)
	return n, nil
}

func (d *MemoryDevice) Write(p []byte) (int, error) {
	end := d.pos + int64(len(p))
	if end > int64(len(d.buf)) {
		grown := make([]byte, end)
		copy(grown, d.buf)
		d.buf = grown
	}
	n := copy(d.buf[d.pos:end], p)
	d.pos += int64(n)
	return n, nil
}

func (d *MemoryDevice) Seek(offset int64, whence int) (int64, error) {
	var aim int64
	switch whence {
	case io.SeekStart:
		aim = offset
	case io.SeekCurrent:
		aim = d.pos + offset
	case io.SeekEnd:
		aim = int64(len(d.buf)) + offset
	default:
		return 0, errors.New("gpt: invalid whence")
	}
	if aim < 0 {
		return 0, errors.New("gpt: negative seek position")
	}
	d.pos = aim
	return aim, nil
}

// Flush is a no-op: a MemoryDevice has nothing buffered beneath it.
func (d *MemoryDevice) Flush() error { return nil }
