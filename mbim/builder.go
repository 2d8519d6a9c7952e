package mbim

import "github.com/go-modem/wwanproto/wire"

// Builder materialises any "fixed prefix + offset-referenced variable
// tail" layout, not only the top-level information buffer: nested structs
// (e.g. an array-of-structs element) use their own Builder and are
// embedded into the parent's variable region by the caller.
//
// Builder maintains two append-only buffers and a list of deferred
// offset placeholders. Each call that emits a variable item records the
// current offset into the variable buffer, writes a placeholder into the
// fixed buffer, and registers a patch. Complete rewrites every
// placeholder as placeholder + len(fixed) so offsets end up relative to
// the start of the combined buffer, then concatenates the two.
type Builder struct {
	fixed    []byte
	variable []byte
	patches  []patch
}

type patch struct {
	fixedOffset int // where in fixed to write the patched value
	value       uint32
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AppendU32 appends a plain uint32 to the fixed region.
func (b *Builder) AppendU32(v uint32) {
	b.fixed = wire.WriteU32LE(b.fixed, v)
}

// AppendU64 appends a plain uint64 to the fixed region.
func (b *Builder) AppendU64(v uint64) {
	b.fixed = wire.WriteU64LE(b.fixed, v)
}

// AppendUUID appends a UUID inline to the fixed region.
func (b *Builder) AppendUUID(u UUID) {
	b.fixed = wire.WriteUUID(b.fixed, u)
}

// AppendIPv4Inline appends a 4-byte IPv4 address inline to the fixed
// region (used when an IPv4 value, rather than an offset to one, is the
// field's wire representation).
func (b *Builder) AppendIPv4Inline(addr [4]byte) {
	b.fixed = append(b.fixed, addr[:]...)
}

// AppendIPv6Inline appends a 16-byte IPv6 address inline to the fixed
// region.
func (b *Builder) AppendIPv6Inline(addr [16]byte) {
	b.fixed = append(b.fixed, addr[:]...)
}

// AppendString appends two 4-byte fields (offset, size) to the fixed
// region. An empty string writes (0,0); otherwise the UTF-16LE bytes are
// appended to the variable region (padded to a 4-byte boundary there) and
// the offset field is registered for patching at Complete. The recorded
// size is always the unpadded UTF-16LE length, per 4.1's "unterminated,
// always padded" invariant: padding must never be counted in the size
// descriptor.
func (b *Builder) AppendString(s string) error {
	if s == "" {
		b.AppendU32(0)
		b.AppendU32(0)
		return nil
	}
	encoded, err := wire.UTF8ToUTF16LE(s)
	if err != nil {
		return err
	}
	b.reserveOffset(uint32(len(b.variable)))
	b.AppendU32(uint32(len(encoded)))
	b.appendVariable(encoded, true)
	return nil
}

// ByteArrayLayout selects one of the five canonical (offset, length, data)
// shapes a byte array field can take on the wire.
type ByteArrayLayout int

const (
	// LayoutOffsetLength: offset and length both in the fixed region,
	// data in the variable region (the common case for strings/blobs).
	LayoutOffsetLength ByteArrayLayout = iota
	// LayoutLengthInline: length in the fixed region, data immediately
	// follows in the fixed region itself (no indirection).
	LayoutLengthInline
	// LayoutOffsetOnly: offset in the fixed region; length is carried in
	// a sibling field the caller writes separately. Data in variable.
	LayoutOffsetOnly
	// LayoutFixedInline: a fixed-size array embedded directly in the
	// fixed region.
	LayoutFixedInline
	// LayoutUnsizedTail: an unsized array in the variable region,
	// consumed "to end of message" by the reader.
	LayoutUnsizedTail
)

// AppendByteArray appends bytes using the given layout. swapped selects
// "length-then-offset" field ordering instead of the default
// "offset-then-length" ordering (one MBIM extension uses the swapped
// order). pad pads the variable-region copy to a 4-byte boundary.
func (b *Builder) AppendByteArray(layout ByteArrayLayout, data []byte, swapped, pad bool) {
	switch layout {
	case LayoutLengthInline:
		b.AppendU32(uint32(len(data)))
		b.fixed = append(b.fixed, data...)

	case LayoutFixedInline:
		b.fixed = append(b.fixed, data...)

	case LayoutUnsizedTail:
		b.variable = append(b.variable, data...)

	case LayoutOffsetOnly:
		b.reserveOffset(uint32(len(b.variable)))
		b.appendVariable(data, pad)

	default: // LayoutOffsetLength
		if swapped {
			b.AppendU32(uint32(len(data)))
			b.reserveOffset(uint32(len(b.variable)))
		} else {
			b.reserveOffset(uint32(len(b.variable)))
			b.AppendU32(uint32(len(data)))
		}
		b.appendVariable(data, pad)
	}
}

func (b *Builder) appendVariable(data []byte, pad bool) {
	b.variable = append(b.variable, data...)
	if pad {
		b.variable = wire.PadTo4(b.variable)
	}
}

// AppendIPv4Array appends an offset-only reference to an array of 4-byte
// IPv4 elements. The element count must be emitted by the caller into a
// sibling field.
func (b *Builder) AppendIPv4Array(addrs [][4]byte) {
	b.reserveOffset(uint32(len(b.variable)))
	for _, a := range addrs {
		b.variable = append(b.variable, a[:]...)
	}
}

// AppendIPv6Array appends an offset-only reference to an array of
// 16-byte IPv6 elements.
func (b *Builder) AppendIPv6Array(addrs [][16]byte) {
	b.reserveOffset(uint32(len(b.variable)))
	for _, a := range addrs {
		b.variable = append(b.variable, a[:]...)
	}
}

// reserveOffset writes a placeholder uint32 into the fixed region and
// registers it to be patched at Complete with value + len(fixed).
func (b *Builder) reserveOffset(value uint32) {
	b.patches = append(b.patches, patch{fixedOffset: len(b.fixed), value: value})
	b.AppendU32(0) // placeholder
}

// Complete patches every registered offset, concatenates fixed and
// variable, and returns the assembled buffer.
func (b *Builder) Complete() []byte {
	out := make([]byte, len(b.fixed)+len(b.variable))
	copy(out, b.fixed)
	copy(out[len(b.fixed):], b.variable)

	fixedLen := uint32(len(b.fixed))
	for _, p := range b.patches {
		wire.PutU32LE(out, p.fixedOffset, p.value+fixedLen)
	}
	return out
}
