package mbim

import "fmt"

// ProtocolError represents a MBIM_MESSAGE_TYPE_HOST_ERROR or
// MBIM_MESSAGE_TYPE_FUNCTION_ERROR payload: a transport/envelope-level
// failure reported by the peer, distinct from a command's own status
// code. The numeric code is preserved for round-trip fidelity.
type ProtocolError struct {
	Code uint32
}

// Published MBIM protocol error codes (host/function error payload).
const (
	ProtocolErrorInvalid                = 0
	ProtocolErrorTimeoutFragment         = 1
	ProtocolErrorFragmentOutOfSequence   = 2
	ProtocolErrorLengthMismatch          = 3
	ProtocolErrorDuplicatedTid           = 4
	ProtocolErrorNotOpened               = 5
	ProtocolErrorUnknown                 = 6
	ProtocolErrorCancel                  = 7
	ProtocolErrorMaxTransfer             = 8
)

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("mbim protocol error %d: %s", e.Code, protocolErrorName(e.Code))
}

func protocolErrorName(code uint32) string {
	switch code {
	case ProtocolErrorInvalid:
		return "Invalid"
	case ProtocolErrorTimeoutFragment:
		return "TimeoutFragment"
	case ProtocolErrorFragmentOutOfSequence:
		return "FragmentOutOfSequence"
	case ProtocolErrorLengthMismatch:
		return "LengthMismatch"
	case ProtocolErrorDuplicatedTid:
		return "DuplicatedTid"
	case ProtocolErrorNotOpened:
		return "NotOpened"
	case ProtocolErrorCancel:
		return "Cancel"
	case ProtocolErrorMaxTransfer:
		return "MaxTransfer"
	default:
		return "Unknown"
	}
}

// StatusError represents a non-zero status_code carried by an
// OpenDone/CloseDone/CommandDone frame: the command reached the modem and
// was refused or failed for an operation-specific reason.
type StatusError struct {
	Code uint32
}

// A representative subset of the published MBIM_STATUS_ERROR table.
// Callers that need the full modem-error vocabulary can compare Code
// directly; this set covers the errors the worked examples reference.
const (
	StatusSuccess                  = 0
	StatusBusy                     = 1
	StatusFailure                  = 2
	StatusSimNotInserted           = 3
	StatusBadSim                   = 4
	StatusNotInitialized           = 14
	StatusContextNotActivated      = 16
	StatusServiceNotActivated      = 17
	StatusInvalidAccessString      = 18
	StatusInvalidUserNamePwd       = 19
	StatusRadioPowerOff            = 20
	StatusInvalidParameters        = 21
)

func (e *StatusError) Error() string {
	return fmt.Sprintf("mbim status error %d", e.Code)
}

// IsSuccess reports whether code represents MBIM_STATUS_ERROR_NONE.
func IsSuccess(code uint32) bool {
	return code == StatusSuccess
}
