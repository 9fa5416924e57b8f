package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormat_String(t *testing.T) {
	assert.Equal(t, "envelope", Envelope.String())
	assert.Equal(t, "hex_utf16", HexUTF16.String())
	assert.Equal(t, "plain", Plain.String())
}

func TestFormat_IsValid(t *testing.T) {
	assert.True(t, Envelope.IsValid())
	assert.True(t, HexUTF16.IsValid())
	assert.True(t, Plain.IsValid())
	assert.False(t, Format("base32").IsValid())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Format
	}{
		{"envelope", "q83vEjRWeJASNFZ4kBI0VniQEjRWeJASNFZ4kA==", Envelope},
		{"25 hex digits prefer envelope", strings.Repeat("a", 25), Envelope},
		{"24 hex digits prefer envelope", "00480065006C006C006F0021", Envelope},
		{"hex utf16", "00480069", HexUTF16},
		{"hex exactly 20", "00480065006C006C006F", HexUTF16},
		{"short alnum plain", "Code1234", Plain},
		{"plain with spaces", "Your code is 1234", Plain},
		{"long sentence plain", "This message has spaces so it is plain", Plain},
		{"odd hex plain", "abc", Plain},
		{"short hex plain", "ab", Plain},
		{"empty plain", "", Plain},
		{"unicode letters envelope", "مرحبامرحبامرحبامرحبا", Envelope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.input), "input: %q", tt.input)
		})
	}
}

func TestLooksEncrypted_Boundary(t *testing.T) {
	atLimit := strings.Repeat("A", EnvelopeMinLength)
	assert.False(t, LooksEncrypted(atLimit))
	assert.True(t, LooksEncrypted(atLimit+"="))
	assert.False(t, LooksEncrypted(atLimit+"-"))
	assert.True(t, LooksEncrypted(strings.Repeat("+/", 11)))
}

func TestLooksHexUTF16_Boundary(t *testing.T) {
	assert.False(t, LooksHexUTF16("004"))
	assert.True(t, LooksHexUTF16("0041"))
	assert.False(t, LooksHexUTF16("00410"))
	assert.False(t, LooksHexUTF16("004G"))
	assert.True(t, LooksHexUTF16("00aF"))
}

func TestIsHex(t *testing.T) {
	assert.False(t, IsHex(""))
	assert.True(t, IsHex("a"))
	assert.True(t, IsHex("DEADbeef0"))
	assert.False(t, IsHex("12 34"))
	assert.False(t, IsHex("٣")) // non-ASCII digit
}

func TestDecodeUTF16Hex(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr error
	}{
		{"ascii", "00480069", "Hi", nil},
		{"lower case", "00680069", "hi", nil},
		{"arabic", "0645063106470628062700200628064300200631064506320643", "مرهبا بك رمزك", nil},
		{"surrogate pair", "D83DDE42", "🙂", nil},
		{"trims whitespace", "  00410042\n", "AB", nil},
		{"empty", "", "", nil},
		{"odd length", "004", "", ErrOddHexLength},
		{"odd bytes", "0041ab", "", ErrOddByteCount},
		{"bad digit", "00zz", "", ErrInvalidHex},
		{"lone high surrogate", "D83D0041", "", ErrInvalidUTF16},
		{"trailing high surrogate", "0041D83D", "", ErrInvalidUTF16},
		{"lone low surrogate", "DE420041", "", ErrInvalidUTF16},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeUTF16Hex(tt.input)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUTF16HexRoundTrip(t *testing.T) {
	texts := []string{
		"Your code is 1234",
		"مرحبا بك، رمزك هو 5521",
		"emoji 🙂 and CJK 你好",
		" ",
		"",
	}

	for _, text := range texts {
		encoded, err := EncodeUTF16Hex(text)
		require.NoError(t, err)
		assert.Equal(t, strings.ToUpper(encoded), encoded)
		assert.Equal(t, 0, len(encoded)%4)

		decoded, err := DecodeUTF16Hex(encoded)
		require.NoError(t, err)
		assert.Equal(t, strings.TrimSpace(text), strings.TrimSpace(decoded))
	}
}

func TestEncodeUTF16Hex_Known(t *testing.T) {
	got, err := EncodeUTF16Hex("Hi🙂")
	require.NoError(t, err)
	assert.Equal(t, "00480069D83DDE42", got)
}
