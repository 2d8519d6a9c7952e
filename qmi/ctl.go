package qmi

import "github.com/go-modem/wwanproto/protoerr"

// Control-service message ids, reproduced from the published QMI_CTL_MESSAGE
// table for the two bootstrapping operations this package implements
// concretely (4.6); the remainder are out of scope (1).
const (
	MessageCTLAllocateClientID uint16 = 0x0022
	MessageCTLReleaseClientID  uint16 = 0x0023
)

const (
	tlvAllocateRequestService uint8 = 0x01
	tlvAllocateReplyAllocInfo uint8 = 0x01
	tlvReleaseRequestInfo     uint8 = 0x01
	tlvReleaseReplyInfo       uint8 = 0x01
)

// NewAllocateClientID builds a CTL AllocateClientId request for service,
// per the worked example in 8.3: a one-byte TLV type=0x01 carrying the
// requested service code.
func NewAllocateClientID(transaction uint32, service Service) *Message {
	return NewRequest(ServiceCTL, 0, transaction, MessageCTLAllocateClientID, []TLV{
		{Type: tlvAllocateRequestService, Value: []byte{uint8(service)}},
	})
}

// ParseAllocateClientIDReply decodes an AllocateClientId response's
// allocation-info TLV: two bytes, service then client id.
func ParseAllocateClientIDReply(m *Message) (service Service, clientID uint8, err error) {
	v, err := GetExact(m.TLVs, tlvAllocateReplyAllocInfo, 2)
	if err != nil {
		return 0, 0, err
	}
	return Service(v[0]), v[1], nil
}

// NewReleaseClientID builds a CTL ReleaseClientId request for
// (service, clientID), mirroring NewAllocateClientID's TLV shape with the
// client id appended.
func NewReleaseClientID(transaction uint32, service Service, clientID uint8) *Message {
	return NewRequest(ServiceCTL, 0, transaction, MessageCTLReleaseClientID, []TLV{
		{Type: tlvReleaseRequestInfo, Value: []byte{uint8(service), clientID}},
	})
}

// ParseReleaseClientIDReply decodes a ReleaseClientId response's
// release-info TLV.
func ParseReleaseClientIDReply(m *Message) (service Service, clientID uint8, err error) {
	v, err := GetExact(m.TLVs, tlvReleaseReplyInfo, 2)
	if err != nil {
		return 0, 0, err
	}
	return Service(v[0]), v[1], nil
}

// CheckAllocationEchoesService validates that an AllocateClientId reply
// names the same service that was requested (4.6).
func CheckAllocationEchoesService(requested, replied Service) error {
	if requested != replied {
		return protoerr.New(protoerr.Failed, "allocate client id reply names service %s, requested %s", replied, requested)
	}
	return nil
}
