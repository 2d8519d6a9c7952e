package mbim

import (
	"fmt"
	"strings"

	"github.com/go-modem/wwanproto/protoerr"
	"github.com/go-modem/wwanproto/wire"
)

// Message is an immutable, owned representation of one logical MBIM wire
// frame. Which fields are meaningful depends on Header.Type; see the
// constructors (NewOpen, NewCommand, ...) and the accessors below.
type Message struct {
	Header Header

	// Open
	MaxControlTransfer uint32

	// OpenDone, CloseDone, CommandDone
	StatusCode uint32

	// HostError, FunctionError
	ErrorStatusCode uint32

	// Command, CommandDone, Indication
	Fragment    FragmentHeader
	ServiceUUID UUID
	CID         uint32
	CommandType CommandType // Command only

	// InformationBuffer is the raw payload of Command/CommandDone/
	// Indication: a fixed-prefix-plus-variable-region blob interpreted
	// by the Builder/Reader (4.3).
	InformationBuffer []byte
}

// NewOpen builds an Open request with the given transaction id.
func NewOpen(transaction, maxControlTransfer uint32) *Message {
	return &Message{
		Header:             Header{Type: TypeOpen, Transaction: transaction},
		MaxControlTransfer: maxControlTransfer,
	}
}

// NewClose builds a Close request.
func NewClose(transaction uint32) *Message {
	return &Message{Header: Header{Type: TypeClose, Transaction: transaction}}
}

// NewCommand builds a Command request. Single-fragment by construction;
// the fragmentation engine (fragment.go) splits it further if it exceeds
// the peer's max transfer size.
func NewCommand(transaction uint32, serviceUUID UUID, cid uint32, cmdType CommandType, infoBuffer []byte) *Message {
	return &Message{
		Header:            Header{Type: TypeCommand, Transaction: transaction},
		Fragment:          FragmentHeader{Total: 1, Current: 0},
		ServiceUUID:       serviceUUID,
		CID:               cid,
		CommandType:       cmdType,
		InformationBuffer: infoBuffer,
	}
}

// NewCommandDone builds a CommandDone reply.
func NewCommandDone(transaction uint32, serviceUUID UUID, cid uint32, status uint32, infoBuffer []byte) *Message {
	return &Message{
		Header:            Header{Type: TypeCommandDone, Transaction: transaction},
		Fragment:          FragmentHeader{Total: 1, Current: 0},
		ServiceUUID:       serviceUUID,
		CID:               cid,
		StatusCode:        status,
		InformationBuffer: infoBuffer,
	}
}

// NewIndication builds an unsolicited Indication. Indications never
// participate in transaction matching (3, Invariants); the transaction id
// is always 0.
func NewIndication(serviceUUID UUID, cid uint32, infoBuffer []byte) *Message {
	return &Message{
		Header:            Header{Type: TypeIndicateStatus},
		Fragment:          FragmentHeader{Total: 1, Current: 0},
		ServiceUUID:       serviceUUID,
		CID:               cid,
		InformationBuffer: infoBuffer,
	}
}

// Encode serializes m to its wire representation, filling in Header.Length.
func (m *Message) Encode() ([]byte, error) {
	var body []byte

	switch m.Header.Type {
	case TypeOpen:
		body = wire.WriteU32LE(body, m.MaxControlTransfer)
	case TypeClose:
		// no subheader
	case TypeOpenDone, TypeCloseDone:
		body = wire.WriteU32LE(body, m.StatusCode)
	case TypeHostError, TypeFunctionError:
		body = wire.WriteU32LE(body, m.ErrorStatusCode)
	case TypeCommand:
		body = m.Fragment.encode(body)
		body = wire.WriteUUID(body, m.ServiceUUID)
		body = wire.WriteU32LE(body, m.CID)
		body = wire.WriteU32LE(body, uint32(m.CommandType))
		body = wire.WriteU32LE(body, uint32(len(m.InformationBuffer)))
		body = append(body, m.InformationBuffer...)
	case TypeCommandDone:
		body = m.Fragment.encode(body)
		body = wire.WriteUUID(body, m.ServiceUUID)
		body = wire.WriteU32LE(body, m.CID)
		body = wire.WriteU32LE(body, m.StatusCode)
		body = wire.WriteU32LE(body, uint32(len(m.InformationBuffer)))
		body = append(body, m.InformationBuffer...)
	case TypeIndicateStatus:
		body = m.Fragment.encode(body)
		body = wire.WriteUUID(body, m.ServiceUUID)
		body = wire.WriteU32LE(body, m.CID)
		body = wire.WriteU32LE(body, uint32(len(m.InformationBuffer)))
		body = append(body, m.InformationBuffer...)
	default:
		return nil, protoerr.New(protoerr.InvalidArgs, "unknown message type %#x", uint32(m.Header.Type))
	}

	m.Header.Length = uint32(HeaderLen + len(body))

	out := m.Header.encode(make([]byte, 0, m.Header.Length))
	out = append(out, body...)
	return out, nil
}

// Parse decodes a single, already-reassembled MBIM frame from buf.
// Rejection is always a *protoerr.Error of kind InvalidMessage; parsing
// a malformed message never panics.
func Parse(buf []byte) (*Message, error) {
	hdr, err := decodeHeader(buf)
	if err != nil {
		return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	if int(hdr.Length) != len(buf) {
		return nil, protoerr.New(protoerr.InvalidMessage, "header length %d does not match frame size %d", hdr.Length, len(buf))
	}

	m := &Message{Header: hdr}
	const off = HeaderLen

	switch hdr.Type {
	case TypeOpen:
		v, err := wire.ReadU32LE(buf, off)
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
		}
		m.MaxControlTransfer = v

	case TypeClose:
		// no subheader

	case TypeOpenDone, TypeCloseDone:
		v, err := wire.ReadU32LE(buf, off)
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
		}
		m.StatusCode = v

	case TypeHostError, TypeFunctionError:
		v, err := wire.ReadU32LE(buf, off)
		if err != nil {
			return nil, protoerr.New(protoerr.InvalidMessage, "%v", err)
		}
		m.ErrorStatusCode = v

	case TypeCommand:
		if err := parseCommandLike(m, buf, off, true); err != nil {
			return nil, err
		}

	case TypeCommandDone:
		if err := parseCommandDone(m, buf, off); err != nil {
			return nil, err
		}

	case TypeIndicateStatus:
		if err := parseCommandLike(m, buf, off, false); err != nil {
			return nil, err
		}

	default:
		return nil, protoerr.New(protoerr.InvalidMessage, "unknown message type %#x", uint32(hdr.Type))
	}

	return m, nil
}

func parseCommandLike(m *Message, buf []byte, off int, withCommandType bool) error {
	frag, err := decodeFragmentHeader(buf, off)
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	m.Fragment = frag
	off += FragmentHeaderLen

	svc, err := wire.ReadUUID(buf, off)
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	m.ServiceUUID = svc
	off += 16

	cid, err := wire.ReadU32LE(buf, off)
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	m.CID = cid
	off += 4

	if withCommandType {
		ct, err := wire.ReadU32LE(buf, off)
		if err != nil {
			return protoerr.New(protoerr.InvalidMessage, "%v", err)
		}
		m.CommandType = CommandType(ct)
		off += 4
	}

	bufLen, err := wire.ReadU32LE(buf, off)
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	off += 4

	ib, err := wire.ReadBytes(buf, off, int(bufLen))
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "information buffer: %v", err)
	}
	m.InformationBuffer = ib
	return nil
}

func parseCommandDone(m *Message, buf []byte, off int) error {
	frag, err := decodeFragmentHeader(buf, off)
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	m.Fragment = frag
	off += FragmentHeaderLen

	svc, err := wire.ReadUUID(buf, off)
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	m.ServiceUUID = svc
	off += 16

	cid, err := wire.ReadU32LE(buf, off)
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	m.CID = cid
	off += 4

	status, err := wire.ReadU32LE(buf, off)
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	m.StatusCode = status
	off += 4

	bufLen, err := wire.ReadU32LE(buf, off)
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "%v", err)
	}
	off += 4

	ib, err := wire.ReadBytes(buf, off, int(bufLen))
	if err != nil {
		return protoerr.New(protoerr.InvalidMessage, "information buffer: %v", err)
	}
	m.InformationBuffer = ib
	return nil
}

// Dump renders a deterministic, line-prefixable, multi-line human-readable
// form of m. Formatting a malformed message never fails: the best-effort
// header dump is always emitted, with a trailing "Fields: <error>" line
// if the information buffer could not be decoded by the caller-supplied
// fieldsFn.
func (m *Message) Dump(fieldsFn func(*Message) (string, error)) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Type:        %s (%#08x)\n", m.Header.Type, uint32(m.Header.Type))
	fmt.Fprintf(&sb, "Length:      %d\n", m.Header.Length)
	fmt.Fprintf(&sb, "Transaction: %d\n", m.Header.Transaction)

	switch m.Header.Type {
	case TypeOpen:
		fmt.Fprintf(&sb, "MaxControlTransfer: %d\n", m.MaxControlTransfer)
	case TypeOpenDone, TypeCloseDone:
		fmt.Fprintf(&sb, "StatusCode: %d (success=%v)\n", m.StatusCode, IsSuccess(m.StatusCode))
	case TypeHostError, TypeFunctionError:
		fmt.Fprintf(&sb, "ErrorStatusCode: %d (%s)\n", m.ErrorStatusCode, protocolErrorName(m.ErrorStatusCode))
	case TypeCommand, TypeCommandDone, TypeIndicateStatus:
		fmt.Fprintf(&sb, "Fragment:    %d/%d\n", m.Fragment.Current, m.Fragment.Total)
		fmt.Fprintf(&sb, "Service:     %s (%s)\n", ServiceName(m.ServiceUUID), m.ServiceUUID)
		fmt.Fprintf(&sb, "CID:         %d\n", m.CID)
		if m.Header.Type == TypeCommand {
			fmt.Fprintf(&sb, "CommandType: %v\n", m.CommandType)
		}
		if m.Header.Type == TypeCommandDone {
			fmt.Fprintf(&sb, "StatusCode:  %d (success=%v)\n", m.StatusCode, IsSuccess(m.StatusCode))
		}
		if fieldsFn != nil {
			fields, err := fieldsFn(m)
			if err != nil {
				fmt.Fprintf(&sb, "Fields: %v\n", err)
			} else {
				sb.WriteString(fields)
			}
		} else {
			sb.WriteString(wire.HexDump(m.InformationBuffer))
		}
	}

	return sb.String()
}
