package gpt

import "encoding/binary"

// reader is a positioned cursor over a fixed byte buffer that decodes
// little-endian fields in sequence; decodeHeader walks the GPT header with
// it. The partition-entry, MBR and GUID codecs index their fixed offsets
// directly instead.
type reader struct {
	buf []byte
	off int
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) bytes(n int) ([]byte, error) {
	if r.remaining() < n {
		return nil, newErr(KindIO, "byteio.read", errShortBuffer)
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

func (r *reader) u16() (uint16, error) {
	b, err := r.bytes(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (r *reader) u32() (uint32, error) {
	b, err := r.bytes(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (r *reader) u64() (uint64, error) {
	b, err := r.bytes(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// writer appends fixed-width little-endian values into a pre-sized buffer.
// Writes never fail: callers size the buffer up front.
type writer struct {
	buf []byte
	off int
}

func newWriter(buf []byte) *writer {
	return &writer{buf: buf}
}

func (w *writer) putBytes(p []byte) {
	copy(w.buf[w.off:], p)
	w.off += len(p)
}

func (w *writer) putU16(v uint16) {
	binary.LittleEndian.PutUint16(w.buf[w.off:], v)
	w.off += 2
}

func (w *writer) putU32(v uint32) {
	binary.LittleEndian.PutUint32(w.buf[w.off:], v)
	w.off += 4
}

func (w *writer) putU64(v uint64) {
	binary.LittleEndian.PutUint64(w.buf[w.off:], v)
	w.off += 8
}

// shortBufferError is the wrapped cause for reads beyond the end of a
// fixed-size buffer -- distinct from io.ErrUnexpectedEOF so that a reader
// backed by a []byte (never a stream) doesn't conflate the two.
type shortBufferError struct{}

func (shortBufferError) Error() string { return "gpt: short buffer" }

var errShortBuffer error = shortBufferError{}
