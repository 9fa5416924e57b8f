package format

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"unicode/utf16"

	"golang.org/x/text/encoding/unicode"
)

var (
	ErrOddHexLength = errors.New("hex string must have even length")
	ErrInvalidHex   = errors.New("invalid hex digit")
	ErrOddByteCount = errors.New("invalid UTF-16: odd number of bytes")
	ErrInvalidUTF16 = errors.New("invalid UTF-16: unpaired surrogate")
)

// DecodeUTF16Hex turns hex pairs of big-endian UTF-16 code units back into
// text. It is strict: an unpaired surrogate is an error, not U+FFFD.
func DecodeUTF16Hex(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s)%2 != 0 {
		return "", ErrOddHexLength
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidHex, err)
	}
	if len(raw)%2 != 0 {
		return "", ErrOddByteCount
	}

	units := make([]uint16, len(raw)/2)
	for i := range units {
		units[i] = uint16(raw[2*i])<<8 | uint16(raw[2*i+1])
	}

	for i := 0; i < len(units); i++ {
		u := rune(units[i])
		switch {
		case 0xD800 <= u && u < 0xDC00:
			if i+1 >= len(units) || !isLowSurrogate(rune(units[i+1])) {
				return "", fmt.Errorf("%w at unit %d", ErrInvalidUTF16, i)
			}
			i++
		case isLowSurrogate(u):
			return "", fmt.Errorf("%w at unit %d", ErrInvalidUTF16, i)
		}
	}

	return string(utf16.Decode(units)), nil
}

func isLowSurrogate(r rune) bool {
	return 0xDC00 <= r && r < 0xE000
}

// EncodeUTF16Hex writes s as upper-case hex of its big-endian UTF-16 code
// units, the way the SMS gateway modem reports UCS2 messages.
func EncodeUTF16Hex(s string) (string, error) {
	enc := unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM).NewEncoder()
	b, err := enc.Bytes([]byte(s))
	if err != nil {
		return "", fmt.Errorf("encode UTF-16: %w", err)
	}
	return strings.ToUpper(hex.EncodeToString(b)), nil
}
