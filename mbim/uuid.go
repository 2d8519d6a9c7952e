package mbim

import "github.com/google/uuid"

// UUID identifies an MBIM service or a context type. It is a thin alias
// over github.com/google/uuid.UUID: MBIM UUIDs are laid out on the wire
// exactly like RFC 4122 UUIDs (4+2+2+2+6 bytes), so canonical-form
// rendering and parsing come for free.
type UUID = uuid.UUID

// Standard MBIM service UUIDs, reproduced byte-for-byte from the published
// MBIM service UUID table (see mbim-uuid.c in the reference libmbim
// sources) since the codec only describes the UUID's role structurally.
var (
	UUIDBasicConnect = uuid.UUID{0xa2, 0x89, 0xcc, 0x33, 0xbc, 0xbb, 0x8b, 0x4f, 0xb6, 0xb0, 0x13, 0x3e, 0xc2, 0xaa, 0xe6, 0xdf}
	UUIDSMS          = uuid.UUID{0x53, 0x3f, 0xbe, 0xeb, 0x14, 0xfe, 0x44, 0x67, 0x9f, 0x90, 0x33, 0xa2, 0x23, 0xe5, 0x6c, 0x3f}
	UUIDUSSD         = uuid.UUID{0xe5, 0x50, 0xa0, 0xc8, 0x5e, 0x82, 0x47, 0x9e, 0x82, 0xf7, 0x10, 0xab, 0xf4, 0xc3, 0x35, 0x1f}
	UUIDPhonebook    = uuid.UUID{0x4b, 0xf3, 0x84, 0x76, 0x1e, 0x6a, 0x41, 0xdb, 0xb1, 0xd8, 0xbe, 0xd2, 0x89, 0xc2, 0x5b, 0xdb}
	UUIDSTK          = uuid.UUID{0xd8, 0xf2, 0x01, 0x31, 0xfc, 0xb5, 0x4e, 0x17, 0x86, 0x02, 0xd6, 0xed, 0x38, 0x16, 0x16, 0x4c}
	UUIDAuth         = uuid.UUID{0x1d, 0x2b, 0x5f, 0xf7, 0x0a, 0xa1, 0x48, 0xb2, 0xaa, 0x52, 0x50, 0xf1, 0x57, 0x67, 0x17, 0x4e}
	UUIDDSS          = uuid.UUID{0xc0, 0x8a, 0x26, 0xdd, 0x77, 0x18, 0x43, 0x82, 0x84, 0x82, 0x6e, 0x0d, 0x58, 0x3c, 0x4d, 0x0e}
)

// serviceNames maps the standard service UUIDs to their published names,
// for logging and printable-form rendering (4.2.3).
var serviceNames = map[uuid.UUID]string{
	UUIDBasicConnect: "basic-connect",
	UUIDSMS:          "sms",
	UUIDUSSD:         "ussd",
	UUIDPhonebook:    "phonebook",
	UUIDSTK:          "stk",
	UUIDAuth:         "auth",
	UUIDDSS:          "dss",
}

// ServiceName returns the published name of a standard service UUID, or
// the UUID's canonical string form if it is not one of the standard
// services (vendor-specific services are identified by UUID alone).
func ServiceName(u uuid.UUID) string {
	if name, ok := serviceNames[u]; ok {
		return name
	}
	return u.String()
}

// Context-type UUIDs, selecting which kind of packet-data context a
// Connect operation targets. Reproduced byte-for-byte from the published
// context-type UUID table.
var (
	ContextTypeNone             = uuid.UUID{0xB4, 0x3F, 0x75, 0x8C, 0xA5, 0x60, 0x4B, 0x46, 0xB3, 0x5E, 0xC5, 0x86, 0x96, 0x41, 0xFB, 0x54}
	ContextTypeInternet         = uuid.UUID{0x7E, 0x5E, 0x2A, 0x7E, 0x4E, 0x6F, 0x72, 0x72, 0x73, 0x6B, 0x65, 0x6E, 0x7E, 0x5E, 0x2A, 0x7E}
	ContextTypeVPN              = uuid.UUID{0x9B, 0x9F, 0x7B, 0xBE, 0x89, 0x52, 0x44, 0xB7, 0x83, 0xAC, 0xCA, 0x41, 0x31, 0x8D, 0xF7, 0xA0}
	ContextTypeVoice            = uuid.UUID{0x88, 0x91, 0x82, 0x94, 0x0E, 0xF4, 0x43, 0x96, 0x8C, 0xCA, 0xA8, 0x58, 0x8F, 0xBC, 0x02, 0xB2}
	ContextTypeVideoShare       = uuid.UUID{0x05, 0xA2, 0xA7, 0x16, 0x7C, 0x34, 0x4B, 0x4D, 0x9A, 0x91, 0xC5, 0xEF, 0x0C, 0x7A, 0xAA, 0xCC}
	ContextTypePurchase         = uuid.UUID{0xB3, 0x27, 0x24, 0x96, 0xAC, 0x6C, 0x42, 0x2B, 0xA8, 0xC0, 0xAC, 0xF6, 0x87, 0xA2, 0x72, 0x17}
	ContextTypeIMS              = uuid.UUID{0x21, 0x61, 0x0D, 0x01, 0x30, 0x74, 0x4B, 0xCE, 0x94, 0x25, 0xB5, 0x3A, 0x07, 0xD6, 0x97, 0xD6}
	ContextTypeMMS              = uuid.UUID{0x46, 0x72, 0x66, 0x64, 0x72, 0x69, 0x6B, 0xC6, 0x96, 0x24, 0xD1, 0xD3, 0x53, 0x89, 0xAC, 0xA9}
	ContextTypeLocal            = uuid.UUID{0xA5, 0x7A, 0x9A, 0xFC, 0xB0, 0x9F, 0x45, 0xD7, 0xBB, 0x40, 0x03, 0x3C, 0x39, 0xF6, 0x0D, 0xB9}
	ContextTypeAdmin            = uuid.UUID{0x5F, 0x7E, 0x4C, 0x2E, 0xE8, 0x0B, 0x40, 0xA9, 0xA2, 0x39, 0xF0, 0xAB, 0xCF, 0xD1, 0x1F, 0x4B}
	ContextTypeApp              = uuid.UUID{0x74, 0xD8, 0x8A, 0x3D, 0xDF, 0xBD, 0x47, 0x99, 0x9A, 0x8C, 0x73, 0x10, 0xA3, 0x7B, 0xB2, 0xEE}
	ContextTypeXCAP             = uuid.UUID{0x50, 0xD3, 0x78, 0xA7, 0xBA, 0xA5, 0x4A, 0x50, 0xB8, 0x72, 0x3F, 0xE5, 0xBB, 0x46, 0x34, 0x11}
	ContextTypeTethering        = uuid.UUID{0x5E, 0x4E, 0x06, 0x01, 0x48, 0xDC, 0x4E, 0x2B, 0xAC, 0xB8, 0x08, 0xB4, 0x01, 0x6B, 0xBA, 0xAC}
	ContextTypeEmergencyCalling = uuid.UUID{0x5F, 0x41, 0xAD, 0xB8, 0x20, 0x4E, 0x4D, 0x31, 0x9D, 0xA8, 0xB3, 0xC9, 0x70, 0xE3, 0x60, 0xF2}
)
