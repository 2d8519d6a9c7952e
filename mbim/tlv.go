package mbim

import (
	"github.com/go-modem/wwanproto/protoerr"
	"github.com/go-modem/wwanproto/wire"
)

// ExtendedTLVType identifies the kind of data an MBIM v3 extended TLV
// record carries, after the main information buffer.
type ExtendedTLVType uint16

const (
	TLVWCharString ExtendedTLVType = 0
	TLVPCO         ExtendedTLVType = 1
	TLVWakeCommand ExtendedTLVType = 2
	TLVWakePacket  ExtendedTLVType = 3
)

// ExtendedTLV is one record of the MBIM v3 extended TLV stream, a scheme
// distinct from QMI's TLVs: type carries a 2-bit padding count in its
// high bits, followed by a reserved field, a length, the data itself, and
// 0-3 padding bytes.
type ExtendedTLV struct {
	Type PaddingCount
	Data []byte
}

// PaddingCount splits an extended TLV's wire type field into the 14-bit
// type value and the 2-bit padding count packed into its high bits.
type PaddingCount struct {
	Type    ExtendedTLVType
	Padding uint8 // 0-3
}

const extendedTLVHeaderLen = 8 // type(2) + reserved(2) + length(4)

// IterateExtendedTLVs parses the sequence of extended TLV records
// starting at buf, returning them in order. Per 4.3.1, each record is
// type:u16(with 2-bit pad count)/reserved:u16/length:u32/data/pad(0..3).
func IterateExtendedTLVs(buf []byte) ([]ExtendedTLV, error) {
	var out []ExtendedTLV
	off := 0
	for off < len(buf) {
		if off+extendedTLVHeaderLen > len(buf) {
			return nil, protoerr.New(protoerr.InvalidMessage, "extended tlv header truncated at offset %d", off)
		}
		rawType, err := wire.ReadU16LE(buf, off)
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
		}
		length, err := wire.ReadU32LE(buf, off+4)
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
		}
		off += extendedTLVHeaderLen

		data, err := wire.ReadBytes(buf, off, int(length))
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "extended tlv data: %v", err)
		}
		off += int(length)

		padding := uint8(rawType >> 14)
		off += int(padding)
		if off > len(buf) {
			return nil, protoerr.New(protoerr.InvalidMessage, "extended tlv padding overruns buffer")
		}

		out = append(out, ExtendedTLV{
			Type: PaddingCount{Type: ExtendedTLVType(rawType & 0x3fff), Padding: padding},
			Data: data,
		})
	}
	return out, nil
}

// FindExtendedTLV returns the first record of the given type, or
// protoerr.TlvNotFound.
func FindExtendedTLV(tlvs []ExtendedTLV, typ ExtendedTLVType) (ExtendedTLV, error) {
	for _, t := range tlvs {
		if t.Type.Type == typ {
			return t, nil
		}
	}
	return ExtendedTLV{}, protoerr.New(protoerr.TlvNotFound, "extended tlv type %d not found", typ)
}

// EncodeExtendedTLV appends one extended TLV record to buf, padding the
// data to a 4-byte boundary and recording the resulting padding count in
// the type field's high bits.
func EncodeExtendedTLV(buf []byte, typ ExtendedTLVType, data []byte) []byte {
	padding := wire.PadLen4(len(data))
	rawType := uint16(typ) | uint16(padding)<<14

	buf = wire.WriteU16LE(buf, rawType)
	buf = wire.WriteU16LE(buf, 0) // reserved
	buf = wire.WriteU32LE(buf, uint32(len(data)))
	buf = append(buf, data...)
	buf = append(buf, make([]byte, padding)...)
	return buf
}
