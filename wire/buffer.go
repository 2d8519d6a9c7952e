// Package wire provides the octet-level primitives shared by the mbim and
// qmi codecs: bounds-checked little-endian readers/writers over a growable
// byte buffer, UTF-16LE <-> UTF-8 conversion, 4-byte padding, and hex
// pretty-printing.
//
// Every multi-byte integer on both wires is little-endian, unlike the
// big-endian, 4-byte-aligned XDR format used by NFS. This package has no
// dependency on either dialect package; mbim and qmi both import it.
package wire

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// ReadU32LE reads a little-endian uint32 at offset off in buf.
//
// Per 4.1, a short buffer is reported as an InvalidMessage-flavored error
// rather than a panic; callers translate it into protoerr.InvalidMessage.
func ReadU32LE(buf []byte, off int) (uint32, error) {
	if err := checkBounds(buf, off, 4); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[off : off+4]), nil
}

// ReadU64LE reads a little-endian uint64 at offset off in buf.
func ReadU64LE(buf []byte, off int) (uint64, error) {
	if err := checkBounds(buf, off, 8); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(buf[off : off+8]), nil
}

// ReadU16LE reads a little-endian uint16 at offset off in buf.
func ReadU16LE(buf []byte, off int) (uint16, error) {
	if err := checkBounds(buf, off, 2); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(buf[off : off+2]), nil
}

// ReadUUID reads a 16-byte UUID at offset off in buf.
func ReadUUID(buf []byte, off int) (uuid.UUID, error) {
	if err := checkBounds(buf, off, 16); err != nil {
		return uuid.Nil, err
	}
	var u uuid.UUID
	copy(u[:], buf[off:off+16])
	return u, nil
}

// ReadBytes reads n raw bytes at offset off in buf.
func ReadBytes(buf []byte, off, n int) ([]byte, error) {
	if err := checkBounds(buf, off, n); err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf[off:off+n])
	return out, nil
}

func checkBounds(buf []byte, off, n int) error {
	if off < 0 || n < 0 || off+n > len(buf) {
		return fmt.Errorf("cannot read %d bytes (buf=%d < req=%d)", n, len(buf), off+n)
	}
	return nil
}

// WriteU32LE appends a little-endian uint32 to buf.
func WriteU32LE(buf []byte, v uint32) []byte {
	var tmp [4]byte
	binary.LittleEndian.PutUint32(tmp[:], v)
	return append(buf, tmp[:]...)
}

// WriteU64LE appends a little-endian uint64 to buf.
func WriteU64LE(buf []byte, v uint64) []byte {
	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], v)
	return append(buf, tmp[:]...)
}

// WriteU16LE appends a little-endian uint16 to buf.
func WriteU16LE(buf []byte, v uint16) []byte {
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], v)
	return append(buf, tmp[:]...)
}

// WriteUUID appends a 16-byte UUID to buf.
func WriteUUID(buf []byte, u uuid.UUID) []byte {
	return append(buf, u[:]...)
}

// PutU32LE overwrites 4 bytes at offset off in buf with v, for patching a
// placeholder offset/size field after the variable region has been laid
// out. Panics if off+4 exceeds len(buf); callers only patch offsets they
// themselves reserved.
func PutU32LE(buf []byte, off int, v uint32) {
	binary.LittleEndian.PutUint32(buf[off:off+4], v)
}

// PadTo4 appends zero bytes until len(buf) is a multiple of four.
//
// Per 4.1, padding applies to strings and TLV data in both dialects, but
// never to the QMI information-element stream itself, which is a
// contiguous sequence of TLVs with no inter-element alignment.
func PadTo4(buf []byte) []byte {
	n := (4 - (len(buf) % 4)) % 4
	if n == 0 {
		return buf
	}
	return append(buf, make([]byte, n)...)
}

// PadLen4 returns the number of padding bytes needed to align n to a
// 4-byte boundary.
func PadLen4(n int) int {
	return (4 - (n % 4)) % 4
}
