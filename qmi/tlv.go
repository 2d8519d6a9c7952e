package qmi

import (
	"github.com/go-modem/wwanproto/protoerr"
	"github.com/go-modem/wwanproto/wire"
)

// ResultTLVType is the universal "result" TLV every response carries:
// status:u16, error:u16 (4.2.2).
const ResultTLVType uint8 = 0x02

// TLV is one type-length-value record of a QMI message's TLV region.
// Unlike the MBIM v3 extended TLV stream, QMI TLVs carry no padding and
// are packed back-to-back (4.2.2).
type TLV struct {
	Type  uint8
	Value []byte
}

const tlvHeaderLen = 3 // type:u8, length:u16

// EncodeTLVs concatenates tlvs into a single back-to-back byte stream.
func EncodeTLVs(tlvs []TLV) ([]byte, error) {
	var buf []byte
	for _, t := range tlvs {
		if len(t.Value) > 0xffff {
			return nil, protoerr.New(protoerr.TlvTooLong, "tlv 0x%02x value length %d exceeds u16", t.Type, len(t.Value))
		}
		buf = append(buf, t.Type)
		buf = wire.WriteU16LE(buf, uint16(len(t.Value)))
		buf = append(buf, t.Value...)
	}
	return buf, nil
}

// DecodeTLVs scans a TLV region into an ordered sequence of records. A
// truncated trailing record is an InvalidMessage error; a well-formed
// stream with no matching type for later lookups is not an error here,
// only at lookup time (4.2.2).
func DecodeTLVs(buf []byte) ([]TLV, error) {
	var out []TLV
	off := 0
	for off < len(buf) {
		if off+tlvHeaderLen > len(buf) {
			return nil, protoerr.New(protoerr.InvalidMessage, "truncated tlv header at offset %d", off)
		}
		typ := buf[off]
		length, err := wire.ReadU16LE(buf, off+1)
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
		}
		off += tlvHeaderLen
		if off+int(length) > len(buf) {
			return nil, protoerr.New(protoerr.InvalidMessage, "tlv 0x%02x declares length %d past end of region", typ, length)
		}
		value := make([]byte, length)
		copy(value, buf[off:off+int(length)])
		out = append(out, TLV{Type: typ, Value: value})
		off += int(length)
	}
	return out, nil
}

// FindTLV scans tlvs for the first record matching typ.
func FindTLV(tlvs []TLV, typ uint8) (TLV, bool) {
	for _, t := range tlvs {
		if t.Type == typ {
			return t, true
		}
	}
	return TLV{}, false
}

// GetExact retrieves the TLV of type typ, rejecting it if its stored
// length differs from wantLen (4.2.2 "exact length" variant).
func GetExact(tlvs []TLV, typ uint8, wantLen int) ([]byte, error) {
	t, ok := FindTLV(tlvs, typ)
	if !ok {
		return nil, protoerr.New(protoerr.TlvNotFound, "tlv 0x%02x not present", typ)
	}
	if len(t.Value) != wantLen {
		return nil, protoerr.New(protoerr.InvalidMessage, "tlv 0x%02x has length %d, want %d", typ, len(t.Value), wantLen)
	}
	return t.Value, nil
}

// GetBounded retrieves the TLV of type typ, rejecting it if its stored
// length exceeds maxLen (4.2.2 "bounded" variant).
func GetBounded(tlvs []TLV, typ uint8, maxLen int) ([]byte, error) {
	t, ok := FindTLV(tlvs, typ)
	if !ok {
		return nil, protoerr.New(protoerr.TlvNotFound, "tlv 0x%02x not present", typ)
	}
	if len(t.Value) > maxLen {
		return nil, protoerr.New(protoerr.TlvTooLong, "tlv 0x%02x has length %d, exceeds max %d", typ, len(t.Value), maxLen)
	}
	return t.Value, nil
}

// GetVariable retrieves the TLV of type typ with no length constraint
// (4.2.2 "variable" variant).
func GetVariable(tlvs []TLV, typ uint8) ([]byte, error) {
	t, ok := FindTLV(tlvs, typ)
	if !ok {
		return nil, protoerr.New(protoerr.TlvNotFound, "tlv 0x%02x not present", typ)
	}
	return t.Value, nil
}

// DecodeResult decodes a result TLV's status:u16, error:u16 payload.
func DecodeResult(t TLV) (status ResultStatus, errCode uint16, err error) {
	if len(t.Value) != 4 {
		return 0, 0, protoerr.New(protoerr.InvalidMessage, "result tlv has length %d, want 4", len(t.Value))
	}
	s, err := wire.ReadU16LE(t.Value, 0)
	if err != nil {
		return 0, 0, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	e, err := wire.ReadU16LE(t.Value, 2)
	if err != nil {
		return 0, 0, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	return ResultStatus(s), e, nil
}

// EncodeResult builds a result TLV for status/errCode.
func EncodeResult(status ResultStatus, errCode uint16) TLV {
	v := wire.WriteU16LE(nil, uint16(status))
	v = wire.WriteU16LE(v, errCode)
	return TLV{Type: ResultTLVType, Value: v}
}
