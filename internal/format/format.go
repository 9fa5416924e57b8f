// Package format guesses how a stored or incoming message body is encoded.
//
// Rows carry no type tag, so the guess is a heuristic with a fixed priority:
// an encrypted envelope wins over legacy hex UTF-16, which wins over plain text.
// The two checks overlap (a long run of hex digits passes both), which is why
// the order matters.
package format

import "unicode"

const (
	// EnvelopeMinLength is the length a string must exceed before it is taken
	// for an encrypted envelope. Shorter alphanumeric text is too often a real
	// message.
	EnvelopeMinLength = 20
	// HexMinLength is the shortest string taken for hex UTF-16 (one code unit).
	HexMinLength = 4
)

// Format is the detected representation of a body.
type Format string

const (
	Envelope Format = "envelope"
	HexUTF16 Format = "hex_utf16"
	Plain    Format = "plain"
)

// String returns the string representation
func (f Format) String() string {
	return string(f)
}

// IsValid checks if the format is one Classify can return
func (f Format) IsValid() bool {
	return f == Envelope || f == HexUTF16 || f == Plain
}

// Classify returns the first format whose shape s matches.
func Classify(s string) Format {
	switch {
	case LooksEncrypted(s):
		return Envelope
	case LooksHexUTF16(s):
		return HexUTF16
	default:
		return Plain
	}
}

// LooksEncrypted reports whether s is longer than EnvelopeMinLength bytes and
// made only of letters, digits and the base64 symbols + / =.
func LooksEncrypted(s string) bool {
	if len(s) <= EnvelopeMinLength {
		return false
	}
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsNumber(r) || r == '+' || r == '/' || r == '=' {
			continue
		}
		return false
	}
	return true
}

// LooksHexUTF16 reports whether s is an even-length run of at least
// HexMinLength ASCII hex digits.
func LooksHexUTF16(s string) bool {
	return len(s) >= HexMinLength && len(s)%2 == 0 && IsHex(s)
}

// IsHex reports whether s is non-empty and only ASCII hex digits. Unlike
// LooksHexUTF16 it puts no constraint on the length.
func IsHex(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isHexDigit(s[i]) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}
