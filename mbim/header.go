package mbim

import "github.com/go-modem/wwanproto/wire"

// MessageType discriminates the kind of frame an MBIM message carries, per
// the common 12-byte header's type field. Values are the wire constants
// from the published MBIM message type table.
type MessageType uint32

const (
	TypeOpen           MessageType = 0x00000001
	TypeClose          MessageType = 0x00000002
	TypeCommand        MessageType = 0x00000003
	TypeHostError      MessageType = 0x00000004
	TypeOpenDone       MessageType = 0x80000001
	TypeCloseDone      MessageType = 0x80000002
	TypeCommandDone    MessageType = 0x80000003
	TypeFunctionError  MessageType = 0x80000004
	TypeIndicateStatus MessageType = 0x80000007
)

func (t MessageType) String() string {
	switch t {
	case TypeOpen:
		return "Open"
	case TypeClose:
		return "Close"
	case TypeCommand:
		return "Command"
	case TypeHostError:
		return "HostError"
	case TypeOpenDone:
		return "OpenDone"
	case TypeCloseDone:
		return "CloseDone"
	case TypeCommandDone:
		return "CommandDone"
	case TypeFunctionError:
		return "FunctionError"
	case TypeIndicateStatus:
		return "Indication"
	default:
		return "Unknown"
	}
}

// Fragmentable reports whether frames of this type may be split across
// multiple wire fragments. Per 4.4, only Command, CommandDone and
// Indication are fragmentable.
func (t MessageType) Fragmentable() bool {
	switch t {
	case TypeCommand, TypeCommandDone, TypeIndicateStatus:
		return true
	default:
		return false
	}
}

// CommandType distinguishes a query from a set operation in a Command
// frame's command_type field.
type CommandType uint32

const (
	CommandTypeQuery CommandType = 0
	CommandTypeSet   CommandType = 1
)

// HeaderLen is the size in bytes of the common 12-byte header:
// type, length, transaction.
const HeaderLen = 12

// FragmentHeaderLen is the size in bytes of the fragment header that
// follows the common header in Command, CommandDone and Indication
// frames: fragment_total, fragment_current.
const FragmentHeaderLen = 8

// Header is the common 12-byte MBIM frame header, present on every
// message regardless of type.
type Header struct {
	Type        MessageType
	Length      uint32
	Transaction uint32
}

// encode appends the 12-byte header to buf.
func (h Header) encode(buf []byte) []byte {
	buf = wire.WriteU32LE(buf, uint32(h.Type))
	buf = wire.WriteU32LE(buf, h.Length)
	buf = wire.WriteU32LE(buf, h.Transaction)
	return buf
}

// decodeHeader parses the common 12-byte header from the start of buf.
func decodeHeader(buf []byte) (Header, error) {
	typ, err := wire.ReadU32LE(buf, 0)
	if err != nil {
		return Header{}, err
	}
	length, err := wire.ReadU32LE(buf, 4)
	if err != nil {
		return Header{}, err
	}
	txn, err := wire.ReadU32LE(buf, 8)
	if err != nil {
		return Header{}, err
	}
	return Header{Type: MessageType(typ), Length: length, Transaction: txn}, nil
}

// FragmentHeader is the (total, current) pair following the common header
// in fragmentable frame kinds.
type FragmentHeader struct {
	Total   uint32
	Current uint32
}

func (f FragmentHeader) encode(buf []byte) []byte {
	buf = wire.WriteU32LE(buf, f.Total)
	buf = wire.WriteU32LE(buf, f.Current)
	return buf
}

func decodeFragmentHeader(buf []byte, off int) (FragmentHeader, error) {
	total, err := wire.ReadU32LE(buf, off)
	if err != nil {
		return FragmentHeader{}, err
	}
	current, err := wire.ReadU32LE(buf, off+4)
	if err != nil {
		return FragmentHeader{}, err
	}
	return FragmentHeader{Total: total, Current: current}, nil
}
