package wire

import (
	"fmt"
	"unicode/utf16"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// utf16LEStrict always transcodes as UTF-16LE regardless of host
// endianness or any byte-order mark in the input. Its decoder substitutes
// U+FFFD for invalid surrogates, so UTF16LEToUTF8 checks surrogate pairing
// itself before decoding.
var utf16LEStrict = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// UTF16LEToUTF8 decodes a raw UTF-16LE byte slice (no BOM, no terminator)
// into a UTF-8 string.
//
// Per 4.1, decoding rejects invalid surrogate pairs rather than silently
// replacing them.
func UTF16LEToUTF8(b []byte) (string, error) {
	if len(b)%2 != 0 {
		return "", fmt.Errorf("utf16le: odd byte length %d", len(b))
	}
	for i := 0; i < len(b); i += 2 {
		r := rune(b[i]) | rune(b[i+1])<<8
		if !utf16.IsSurrogate(r) {
			continue
		}
		if i+3 >= len(b) || utf16.DecodeRune(r, rune(b[i+2])|rune(b[i+3])<<8) == utf8.RuneError {
			return "", fmt.Errorf("utf16le: invalid surrogate sequence at byte %d", i)
		}
		i += 2
	}
	decoder := utf16LEStrict.NewDecoder()
	out, err := decoder.Bytes(b)
	if err != nil {
		return "", fmt.Errorf("utf16le: invalid surrogate sequence: %w", err)
	}
	return string(out), nil
}

// UTF8ToUTF16LE encodes s as raw UTF-16LE bytes (no BOM), unpadded.
//
// Per 4.1, this is the single helper both dialects use for string fields;
// callers never build a host-endian UTF-16 buffer themselves. Padding to a
// 4-byte boundary, when required, is the caller's job and must never be
// folded into a size descriptor: the size field always counts the
// unpadded, unterminated string.
func UTF8ToUTF16LE(s string) ([]byte, error) {
	encoder := utf16LEStrict.NewEncoder()
	out, err := encoder.Bytes([]byte(s))
	if err != nil {
		return nil, fmt.Errorf("utf16le: encode %q: %w", s, err)
	}
	return out, nil
}
