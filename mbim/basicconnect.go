package mbim

import "github.com/go-modem/wwanproto/protoerr"

// Basic Connect command ids, reproduced from the published MBIM_CID_BASIC_CONNECT
// table (mbim-cid.h) for the handful of operations this package implements
// concretely; the remaining ~20 Basic Connect CIDs are mechanical
// reapplications of the same Builder/Reader primitives and are out of
// scope (1).
const (
	CIDBasicConnectDeviceCaps            uint32 = 1
	CIDBasicConnectSubscriberReadyStatus uint32 = 2
	CIDBasicConnectRadioState            uint32 = 3
	CIDBasicConnectRegisterState         uint32 = 9
	CIDBasicConnectSignalState           uint32 = 11
	CIDBasicConnectConnect               uint32 = 12
)

// ActivationCommand selects whether a Connect operation activates or
// deactivates a context.
type ActivationCommand uint32

const (
	ActivationDeactivate ActivationCommand = 0
	ActivationActivate   ActivationCommand = 1
)

// AuthProtocol selects the authentication protocol used by a Connect
// operation.
type AuthProtocol uint32

const (
	AuthNone AuthProtocol = 0
	AuthPAP  AuthProtocol = 1
	AuthCHAP AuthProtocol = 2
	AuthMSCHAPV2 AuthProtocol = 3
)

// ContextIPType selects the IP family a Connect operation requests.
type ContextIPType uint32

const (
	IPTypeDefault  ContextIPType = 0
	IPTypeIPv4     ContextIPType = 1
	IPTypeIPv6     ContextIPType = 2
	IPTypeIPv4v6   ContextIPType = 3
	IPTypeIPv4AndIPv6 ContextIPType = 4
)

// Compression selects data compression for a Connect operation.
type Compression uint32

const (
	CompressionNone Compression = 0
	CompressionEnable Compression = 1
)

// ConnectSet holds the fields of a Basic-Connect/CONNECT set command
// (MBIM_SET_CONNECT). Field order mirrors the published wire struct:
// session_id, activation_command, access_string, user_name, password,
// compression, auth_protocol, ip_type, context_type.
type ConnectSet struct {
	SessionID    uint32
	Activation   ActivationCommand
	AccessString string
	UserName     string
	Password     string
	Compression  Compression
	Auth         AuthProtocol
	IPType       ContextIPType
	ContextType  UUID
}

// BuildConnectSet builds the Command for a Basic-Connect/CONNECT set
// operation. Per the worked example (8.2), access_string="internet" with
// empty username/password yields a 0x3C-byte fixed region, a 0x10-byte
// access-string variable region, and a 0x7C-byte total message.
func BuildConnectSet(transaction uint32, c ConnectSet) (*Message, error) {
	b := NewBuilder()
	b.AppendU32(c.SessionID)
	b.AppendU32(uint32(c.Activation))
	if err := b.AppendString(c.AccessString); err != nil {
		return nil, err
	}
	if err := b.AppendString(c.UserName); err != nil {
		return nil, err
	}
	if err := b.AppendString(c.Password); err != nil {
		return nil, err
	}
	b.AppendU32(uint32(c.Compression))
	b.AppendU32(uint32(c.Auth))
	b.AppendU32(uint32(c.IPType))
	b.AppendUUID(c.ContextType)

	return NewCommand(transaction, UUIDBasicConnect, CIDBasicConnectConnect, CommandTypeSet, b.Complete()), nil
}

// ParseConnectSet reads a Basic-Connect/CONNECT set command's information
// buffer back into a ConnectSet, mirroring BuildConnectSet's field order.
func ParseConnectSet(infoBuffer []byte) (*ConnectSet, error) {
	r := NewReader(infoBuffer, 0)
	c := &ConnectSet{}

	sessionID, err := r.U32(0)
	if err != nil {
		return nil, err
	}
	c.SessionID = sessionID

	activation, err := r.U32(4)
	if err != nil {
		return nil, err
	}
	c.Activation = ActivationCommand(activation)

	accessString, err := r.String(8)
	if err != nil {
		return nil, err
	}
	c.AccessString = accessString

	userName, err := r.String(16)
	if err != nil {
		return nil, err
	}
	c.UserName = userName

	password, err := r.String(24)
	if err != nil {
		return nil, err
	}
	c.Password = password

	compression, err := r.U32(32)
	if err != nil {
		return nil, err
	}
	c.Compression = Compression(compression)

	auth, err := r.U32(36)
	if err != nil {
		return nil, err
	}
	c.Auth = AuthProtocol(auth)

	ipType, err := r.U32(40)
	if err != nil {
		return nil, err
	}
	c.IPType = ContextIPType(ipType)

	contextType, err := r.UUID(44)
	if err != nil {
		return nil, err
	}
	c.ContextType = contextType

	return c, nil
}

// SubscriberReadyState mirrors MBIM_SUBSCRIBER_READY_STATE.
type SubscriberReadyState uint32

const (
	SubscriberNotInitialized SubscriberReadyState = 0
	SubscriberInitialized    SubscriberReadyState = 1
	SubscriberSimNotInserted SubscriberReadyState = 2
	SubscriberBadSim         SubscriberReadyState = 3
)

// SubscriberReadyStatus is the Basic-Connect/SUBSCRIBER_READY_STATUS
// query response (MBIM_SUBSCRIBER_READY_STATUS).
type SubscriberReadyStatus struct {
	ReadyState        SubscriberReadyState
	SubscriberID      string
	SimICCID          string
	TelephoneNumbers  []string
}

// NewSubscriberReadyStatusQuery builds a Basic-Connect/SUBSCRIBER_READY_STATUS
// query command; it carries no information buffer.
func NewSubscriberReadyStatusQuery(transaction uint32) *Message {
	return NewCommand(transaction, UUIDBasicConnect, CIDBasicConnectSubscriberReadyStatus, CommandTypeQuery, nil)
}

// BuildSubscriberReadyStatus builds the CommandDone information buffer
// for a SUBSCRIBER_READY_STATUS response: ready_state, subscriber_id,
// sim_iccid, a count-prefixed array of telephone number (offset,size)
// descriptors.
func BuildSubscriberReadyStatus(s SubscriberReadyStatus) ([]byte, error) {
	b := NewBuilder()
	b.AppendU32(uint32(s.ReadyState))
	if err := b.AppendString(s.SubscriberID); err != nil {
		return nil, err
	}
	if err := b.AppendString(s.SimICCID); err != nil {
		return nil, err
	}
	b.AppendU32(0) // ready_info flags, unused by this implementation
	b.AppendU32(uint32(len(s.TelephoneNumbers)))

	// telephone_numbers_offset points at an array of n (offset, size)
	// descriptors, each relative to the start of that array.
	descriptors := NewBuilder()
	for _, num := range s.TelephoneNumbers {
		if err := descriptors.AppendString(num); err != nil {
			return nil, err
		}
	}
	b.AppendByteArray(LayoutOffsetOnly, descriptors.Complete(), false, false)

	return b.Complete(), nil
}

// ParseSubscriberReadyStatus decodes a SUBSCRIBER_READY_STATUS response
// information buffer (8.6).
func ParseSubscriberReadyStatus(infoBuffer []byte) (*SubscriberReadyStatus, error) {
	r := NewReader(infoBuffer, 0)

	readyState, err := r.U32(0)
	if err != nil {
		return nil, err
	}

	subscriberID, err := r.String(4)
	if err != nil {
		return nil, err
	}

	simICCID, err := r.String(12)
	if err != nil {
		return nil, err
	}

	count, err := r.U32(24)
	if err != nil {
		return nil, err
	}

	arrayRel, err := r.U32(28)
	if err != nil {
		return nil, err
	}
	if count > 0 && arrayRel == 0 {
		return nil, protoerr.New(protoerr.InvalidMessage, "telephone_numbers_offset is 0 with non-zero count %d", count)
	}

	arrayBase := int(arrayRel)
	arrayReader := NewReader(infoBuffer, arrayBase)
	numbers := make([]string, count)
	for i := uint32(0); i < count; i++ {
		s, err := arrayReader.String(arrayBase + int(i)*8)
		if err != nil {
			return nil, err
		}
		numbers[i] = s
	}

	return &SubscriberReadyStatus{
		ReadyState:       SubscriberReadyState(readyState),
		SubscriberID:     subscriberID,
		SimICCID:         simICCID,
		TelephoneNumbers: numbers,
	}, nil
}
