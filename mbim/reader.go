package mbim

import (
	"github.com/go-modem/wwanproto/protoerr"
	"github.com/go-modem/wwanproto/wire"
)

// Reader performs bounds-checked retrieval against a buffer laid out by
// Builder. structBase lets nested structs interpret their (offset, size)
// descriptors relative to themselves rather than the top-level
// information buffer.
type Reader struct {
	buf       []byte
	structBase int
}

// NewReader wraps buf for field-by-field retrieval. structBase is added to
// offsets read from the fixed region before indexing into buf; pass 0 for
// the top-level information buffer.
func NewReader(buf []byte, structBase int) *Reader {
	return &Reader{buf: buf, structBase: structBase}
}

// U32 reads a uint32 at off in the fixed region.
func (r *Reader) U32(off int) (uint32, error) {
	v, err := wire.ReadU32LE(r.buf, off)
	if err != nil {
		return 0, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	return v, nil
}

// U64 reads a uint64 at off in the fixed region.
func (r *Reader) U64(off int) (uint64, error) {
	v, err := wire.ReadU64LE(r.buf, off)
	if err != nil {
		return 0, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	return v, nil
}

// UUID reads a UUID at off in the fixed region.
func (r *Reader) UUID(off int) (UUID, error) {
	v, err := wire.ReadUUID(r.buf, off)
	if err != nil {
		return UUID{}, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	return v, nil
}

// String reads the (offset, size) pair at off and decodes the referenced
// UTF-16LE bytes. An (0,0) pair yields an empty string; an offset of 0
// with a non-zero size is rejected.
func (r *Reader) String(off int) (string, error) {
	rel, err := r.U32(off)
	if err != nil {
		return "", err
	}
	size, err := r.U32(off + 4)
	if err != nil {
		return "", err
	}
	if rel == 0 && size == 0 {
		return "", nil
	}
	if rel == 0 && size != 0 {
		return "", protoerr.New(protoerr.InvalidMessage, "string offset 0 with non-zero size %d", size)
	}
	data, err := r.bytesAt(rel, size)
	if err != nil {
		return "", err
	}
	s, err := wire.UTF16LEToUTF8(data)
	if err != nil {
		return "", protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	return s, nil
}

// ByteArray reads the (offset, size) pair at off and returns the
// referenced raw bytes.
func (r *Reader) ByteArray(off int) ([]byte, error) {
	rel, err := r.U32(off)
	if err != nil {
		return nil, err
	}
	size, err := r.U32(off + 4)
	if err != nil {
		return nil, err
	}
	return r.bytesAt(rel, size)
}

// bytesAt resolves a struct-relative offset/size pair against the
// enclosing buffer, rejecting reads that would run past the declared
// buffer length.
func (r *Reader) bytesAt(rel, size uint32) ([]byte, error) {
	abs := r.structBase + int(rel)
	data, err := wire.ReadBytes(r.buf, abs, int(size))
	if err != nil {
		return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	return data, nil
}

// IPv4 reads a single 4-byte IPv4 address inline at off.
func (r *Reader) IPv4(off int) ([4]byte, error) {
	b, err := wire.ReadBytes(r.buf, off, 4)
	if err != nil {
		return [4]byte{}, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	var a [4]byte
	copy(a[:], b)
	return a, nil
}

// IPv6 reads a single 16-byte IPv6 address inline at off.
func (r *Reader) IPv6(off int) ([16]byte, error) {
	b, err := wire.ReadBytes(r.buf, off, 16)
	if err != nil {
		return [16]byte{}, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	var a [16]byte
	copy(a[:], b)
	return a, nil
}

// IPv4Array reads count 4-byte elements starting at the offset stored at
// off.
func (r *Reader) IPv4Array(off int, count int) ([][4]byte, error) {
	rel, err := r.U32(off)
	if err != nil {
		return nil, err
	}
	out := make([][4]byte, count)
	base := r.structBase + int(rel)
	for i := 0; i < count; i++ {
		b, err := wire.ReadBytes(r.buf, base+i*4, 4)
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "ipv4[%d]: %v", i, err)
		}
		copy(out[i][:], b)
	}
	return out, nil
}

// IPv6Array reads count 16-byte elements starting at the offset stored at
// off.
func (r *Reader) IPv6Array(off int, count int) ([][16]byte, error) {
	rel, err := r.U32(off)
	if err != nil {
		return nil, err
	}
	out := make([][16]byte, count)
	base := r.structBase + int(rel)
	for i := 0; i < count; i++ {
		b, err := wire.ReadBytes(r.buf, base+i*16, 16)
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "ipv6[%d]: %v", i, err)
		}
		copy(out[i][:], b)
	}
	return out, nil
}

// StructArray reads n (offset, size) descriptors starting at off, each
// pointing to one struct in the variable region, and returns a Reader for
// each with structBase set to that struct's absolute start.
func (r *Reader) StructArray(off int, n int) ([]*Reader, error) {
	out := make([]*Reader, n)
	for i := 0; i < n; i++ {
		entryOff := off + i*8
		rel, err := r.U32(entryOff)
		if err != nil {
			return nil, err
		}
		size, err := r.U32(entryOff + 4)
		if err != nil {
			return nil, err
		}
		abs := r.structBase + int(rel)
		if _, err := wire.ReadBytes(r.buf, abs, int(size)); err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "struct[%d]: %v", i, err)
		}
		out[i] = NewReader(r.buf, abs)
	}
	return out, nil
}
