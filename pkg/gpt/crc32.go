package gpt

import "hash/crc32"

// crc32ISOHDLC computes the ISO-HDLC / IEEE 802.3 CRC32 (the reflected
// 0xEDB88320 polynomial) UEFI specifies for both the GPT header and the
// partition-entry array checksums. The IEEE table stdlib ships with is
// exactly this polynomial, so there's no ecosystem package that improves
// on it here.
func crc32ISOHDLC(b []byte) uint32 {
	return crc32.ChecksumIEEE(b)
}
