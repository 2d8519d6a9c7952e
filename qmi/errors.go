package qmi

import "fmt"

// ProtocolError is the numeric error code carried in a QMI result TLV
// (type 0x02) when status is non-zero, reproduced from the published QMI
// protocol error table for the values this package exercises concretely;
// the remaining published codes are a mechanical extension of this table
// and are out of scope (1).
type ProtocolError uint16

const (
	ErrNone                   ProtocolError = 0
	ErrMalformedMessage       ProtocolError = 1
	ErrNoMemory               ProtocolError = 2
	ErrInternal               ProtocolError = 3
	ErrAborted                ProtocolError = 4
	ErrClientIDsExhausted     ProtocolError = 5
	ErrUnabortableTransaction ProtocolError = 6
	ErrInvalidClientID        ProtocolError = 7
	ErrInvalidHandle          ProtocolError = 9
	ErrMissingArgument        ProtocolError = 17
	ErrArgumentTooLong        ProtocolError = 19
	ErrInvalidTransactionID   ProtocolError = 22
	ErrDeviceInUse            ProtocolError = 23
	ErrInvalidArgument        ProtocolError = 48
	ErrCallFailed             ProtocolError = 14
	ErrNotProvisioned         ProtocolError = 16
	ErrDeviceNotReady         ProtocolError = 52
	ErrNoEffect               ProtocolError = 26
)

var protocolErrorNames = map[ProtocolError]string{
	ErrNone:                   "none",
	ErrMalformedMessage:       "malformed message",
	ErrNoMemory:               "no memory",
	ErrInternal:               "internal",
	ErrAborted:                "aborted",
	ErrClientIDsExhausted:     "client ids exhausted",
	ErrUnabortableTransaction: "unabortable transaction",
	ErrInvalidClientID:        "invalid client id",
	ErrInvalidHandle:          "invalid handle",
	ErrMissingArgument:        "missing argument",
	ErrArgumentTooLong:        "argument too long",
	ErrInvalidTransactionID:   "invalid transaction id",
	ErrDeviceInUse:            "device in use",
	ErrInvalidArgument:        "invalid argument",
	ErrCallFailed:             "call failed",
	ErrNotProvisioned:         "not provisioned",
	ErrDeviceNotReady:         "device not ready",
	ErrNoEffect:               "no effect",
}

// Error implements the error interface, reporting the symbolic name
// when known and the bare numeric code otherwise.
func (e ProtocolError) Error() string {
	if name, ok := protocolErrorNames[e]; ok {
		return fmt.Sprintf("qmi protocol error: %s (%d)", name, uint16(e))
	}
	return fmt.Sprintf("qmi protocol error: unknown (%d)", uint16(e))
}

// ResultStatus is the first field of a result TLV (0x02).
type ResultStatus uint16

const (
	ResultSuccess ResultStatus = 0
	ResultFailure ResultStatus = 1
)
