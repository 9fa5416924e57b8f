// Package sms turns forwarded messages into stored envelopes and back.
package sms

import (
	"smsvault/internal/codec"
	"smsvault/internal/format"
	"smsvault/internal/logger"
)

// NormalizeStored recovers readable text from a stored body. Each step only
// replaces the text when it succeeds, so a row that fails to decode is
// returned exactly as stored and the read never fails.
func NormalizeStored(body string, key []byte, log logger.Logger) string {
	text := body

	if format.LooksEncrypted(text) {
		plain, err := codec.Decrypt(text, key)
		if err != nil {
			log.Debugf("stored body kept as is, decrypt failed: %v", err)
		} else {
			text = plain
		}
	}

	// not else-if: legacy rows were hex before they were encrypted
	if format.LooksHexUTF16(text) {
		text = decodeHexOrKeep(text, log)
	}

	return text
}

func decodeHexOrKeep(s string, log logger.Logger) string {
	decoded, err := format.DecodeUTF16Hex(s)
	if err != nil {
		log.Debugf("hex decode skipped: %v", err)
		return s
	}
	return decoded
}
