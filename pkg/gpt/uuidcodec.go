package gpt

import "github.com/google/uuid"

// UEFI stores GUIDs "mixed-endian": the first three fields (a 32-bit value
// and two 16-bit values) little-endian, and the final 8 bytes in their
// natural (big-endian, RFC 4122) order. github.com/google/uuid stores a
// UUID in plain RFC 4122 byte order, so we never hand it raw on-disk bytes
// to parse -- we shuffle the bytes ourselves on the way in and out, per the
// "do not delegate to a UUID library's default parser" design note.

// decodeMixedEndianGUID reads the UEFI mixed-endian layout from b (which
// must be at least 16 bytes) into a standard uuid.UUID.
func decodeMixedEndianGUID(b []byte) (uuid.UUID, error) {
	if len(b) < 16 {
		return uuid.Nil, newErr(KindIO, "uuid.decode_mixed_endian", errShortBuffer)
	}
	var u uuid.UUID
	u[0], u[1], u[2], u[3] = b[3], b[2], b[1], b[0]
	u[4], u[5] = b[5], b[4]
	u[6], u[7] = b[7], b[6]
	copy(u[8:16], b[8:16])
	return u, nil
}

// encodeMixedEndianGUID writes u into dst (which must be at least 16
// bytes) using the UEFI mixed-endian layout.
func encodeMixedEndianGUID(u uuid.UUID, dst []byte) {
	dst[0], dst[1], dst[2], dst[3] = u[3], u[2], u[1], u[0]
	dst[4], dst[5] = u[5], u[4]
	dst[6], dst[7] = u[7], u[6]
	copy(dst[8:16], u[8:16])
}
