package qmi

import (
	"fmt"
	"strings"

	"github.com/go-modem/wwanproto/protoerr"
	"github.com/go-modem/wwanproto/wire"
)

// Marker is the fixed first byte of every QMUX frame.
const Marker byte = 0x01

// Kind distinguishes a QMI frame's role, carried in the per-service
// sub-header's flags byte.
type Kind uint8

const (
	KindRequest Kind = iota
	KindResponse
	KindIndication
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "Request"
	case KindResponse:
		return "Response"
	case KindIndication:
		return "Indication"
	default:
		return "Unknown"
	}
}

// flagsForKind maps Kind to the single-bit flags value the control and
// non-control sub-headers both use (bit 0 set means response, bit 1 set
// means indication; 0 means request).
func flagsForKind(k Kind) uint8 {
	switch k {
	case KindResponse:
		return 0x01
	case KindIndication:
		return 0x02
	default:
		return 0x00
	}
}

func kindFromFlags(flags uint8) Kind {
	switch {
	case flags&0x02 != 0:
		return KindIndication
	case flags&0x01 != 0:
		return KindResponse
	default:
		return KindRequest
	}
}

// Message is one decoded QMUX frame: qmux sub-header plus a service
// sub-header plus a sequence of TLVs.
type Message struct {
	Service     Service
	ClientID    uint8
	Kind        Kind
	Transaction uint32 // 8-bit for CTL, 16-bit otherwise
	MessageID   uint16
	TLVs        []TLV
}

const (
	qmuxHeaderLen       = 5 // length(2), flags, service, client (marker excluded)
	ctlSubHeaderLen     = 4 // flags, transaction(1), message(2)
	otherSubHeaderLen   = 5 // flags, transaction(2), message(2)
	tlvLengthFieldLen   = 2
)

// Encode serialises m into a QMUX frame. The qmux length field counts
// every byte after the marker (4.2.2); the tlv_length field counts only
// the TLV region.
func (m *Message) Encode() ([]byte, error) {
	tlvBuf, err := EncodeTLVs(m.TLVs)
	if err != nil {
		return nil, err
	}

	subHeaderLen := otherSubHeaderLen
	if m.Service.IsControl() {
		subHeaderLen = ctlSubHeaderLen
	}

	qmuxLen := qmuxHeaderLen + subHeaderLen + tlvLengthFieldLen + len(tlvBuf)

	buf := make([]byte, 0, 1+qmuxLen)
	buf = append(buf, Marker)
	buf = wire.WriteU16LE(buf, uint16(qmuxLen))
	buf = append(buf, 0x00) // qmux flags, always 0 on the host side
	buf = append(buf, uint8(m.Service))
	buf = append(buf, m.ClientID)

	flags := flagsForKind(m.Kind)
	buf = append(buf, flags)
	if m.Service.IsControl() {
		buf = append(buf, uint8(m.Transaction))
	} else {
		buf = wire.WriteU16LE(buf, uint16(m.Transaction))
	}
	buf = wire.WriteU16LE(buf, m.MessageID)
	buf = wire.WriteU16LE(buf, uint16(len(tlvBuf)))
	buf = append(buf, tlvBuf...)

	return buf, nil
}

// Parse decodes one QMUX frame from buf. buf must contain exactly one
// frame; callers with a streaming transport determine frame boundaries
// from the qmux length field before calling Parse (6).
func Parse(buf []byte) (*Message, error) {
	if len(buf) < 1+qmuxHeaderLen {
		return nil, protoerr.New(protoerr.InvalidMessage, "qmi frame too short: %d bytes", len(buf))
	}
	if buf[0] != Marker {
		return nil, protoerr.New(protoerr.InvalidMessage, "bad qmux marker 0x%02x, want 0x%02x", buf[0], Marker)
	}

	qmuxLen, err := wire.ReadU16LE(buf, 1)
	if err != nil {
		return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	if int(qmuxLen)+1 != len(buf) {
		return nil, protoerr.New(protoerr.InvalidMessage, "qmux length %d implies frame size %d, got %d", qmuxLen, qmuxLen+1, len(buf))
	}

	service := Service(buf[4])
	clientID := buf[5]

	off := 6
	flags := buf[off]
	off++

	m := &Message{Service: service, ClientID: clientID, Kind: kindFromFlags(flags)}

	if service.IsControl() {
		m.Transaction = uint32(buf[off])
		off++
	} else {
		txid, err := wire.ReadU16LE(buf, off)
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
		}
		m.Transaction = uint32(txid)
		off += 2
	}

	msgID, err := wire.ReadU16LE(buf, off)
	if err != nil {
		return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	m.MessageID = msgID
	off += 2

	tlvLen, err := wire.ReadU16LE(buf, off)
	if err != nil {
		return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	off += 2

	wantSubHeader := otherSubHeaderLen
	if service.IsControl() {
		wantSubHeader = ctlSubHeaderLen
	}
	if int(qmuxLen) != qmuxHeaderLen+wantSubHeader+tlvLengthFieldLen+int(tlvLen) {
		return nil, protoerr.New(protoerr.InvalidMessage, "tlv_length %d inconsistent with qmux length %d", tlvLen, qmuxLen)
	}

	if off+int(tlvLen) > len(buf) {
		return nil, protoerr.New(protoerr.InvalidMessage, "tlv region overflows frame: need %d, have %d", off+int(tlvLen), len(buf))
	}
	tlvs, err := DecodeTLVs(buf[off : off+int(tlvLen)])
	if err != nil {
		return nil, err
	}
	m.TLVs = tlvs

	return m, nil
}

// NewRequest builds a request Message for the given service/client/txid.
func NewRequest(service Service, clientID uint8, transaction uint32, messageID uint16, tlvs []TLV) *Message {
	return &Message{Service: service, ClientID: clientID, Kind: KindRequest, Transaction: transaction, MessageID: messageID, TLVs: tlvs}
}

// NewResponse builds a response Message.
func NewResponse(service Service, clientID uint8, transaction uint32, messageID uint16, tlvs []TLV) *Message {
	return &Message{Service: service, ClientID: clientID, Kind: KindResponse, Transaction: transaction, MessageID: messageID, TLVs: tlvs}
}

// NewIndication builds an indication Message. Indications carry no
// transaction semantics (4.5) but reuse the field for wire symmetry.
func NewIndication(service Service, clientID uint8, messageID uint16, tlvs []TLV) *Message {
	return &Message{Service: service, ClientID: clientID, Kind: KindIndication, MessageID: messageID, TLVs: tlvs}
}

// Result inspects m's result TLV (0x02), if present, returning nil for
// success, a ProtocolError for a failure status, and ok=false if no
// result TLV is present at all (4.8).
func (m *Message) Result() (err error, ok bool) {
	tlv, found := FindTLV(m.TLVs, ResultTLVType)
	if !found {
		return nil, false
	}
	status, errCode, decodeErr := DecodeResult(tlv)
	if decodeErr != nil {
		return decodeErr, true
	}
	if status == ResultSuccess {
		return nil, true
	}
	return ProtocolError(errCode), true
}

// Dump renders m as a deterministic, line-prefixable, multi-line
// human-readable form: a header line per TLV followed by a hex dump of its
// value (4.2.3).
func (m *Message) Dump() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Service:     %s\n", m.Service)
	fmt.Fprintf(&sb, "ClientID:    %d\n", m.ClientID)
	fmt.Fprintf(&sb, "Kind:        %s\n", m.Kind)
	fmt.Fprintf(&sb, "Transaction: %d\n", m.Transaction)
	fmt.Fprintf(&sb, "MessageID:   %#04x\n", m.MessageID)
	if err, ok := m.Result(); ok {
		fmt.Fprintf(&sb, "Result:      success=%v err=%v\n", err == nil, err)
	}
	for _, tlv := range m.TLVs {
		fmt.Fprintf(&sb, "TLV %#04x (%d bytes):\n", tlv.Type, len(tlv.Value))
		sb.WriteString(wire.HexDump(tlv.Value))
	}
	return sb.String()
}
