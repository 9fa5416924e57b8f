// Package codec protects message bodies at rest with AES-256-CBC.
//
// An envelope is the standard base64 encoding (with padding) of IV ‖ ciphertext.
// Envelopes carry no integrity tag: they give confidentiality only.
package codec

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

const (
	// IVSize is the length of the random initialization vector prepended to
	// every ciphertext.
	IVSize = aes.BlockSize
	// KeySize is the length of the shared secret expected by callers (AES-256).
	KeySize = 32
)

var (
	ErrRandomSource            = errors.New("secure random source unavailable")
	ErrEncryption              = errors.New("encryption failed")
	ErrDecryption              = errors.New("decryption failed")
	ErrInvalidCiphertextLength = errors.New("invalid ciphertext length")
	ErrBase64Decode            = errors.New("invalid base64 envelope")
	ErrPadding                 = errors.New("invalid padding")
	ErrUTF8Decode              = errors.New("decrypted bytes are not valid UTF-8")
)

// Encrypt seals plaintext with secret and returns the base64 envelope.
// secret is used as the raw AES key.
func Encrypt(plaintext string, secret []byte) (string, error) {
	return encrypt(rand.Reader, plaintext, secret)
}

func encrypt(random io.Reader, plaintext string, secret []byte) (string, error) {
	block, err := aes.NewCipher(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrEncryption, err)
	}

	iv := make([]byte, IVSize)
	if _, err := io.ReadFull(random, iv); err != nil {
		return "", fmt.Errorf("%w: %v", ErrRandomSource, err)
	}

	padded := pad([]byte(plaintext), block.BlockSize())
	if len(padded)%block.BlockSize() != 0 {
		return "", fmt.Errorf("%w: padded length %d not a block multiple", ErrEncryption, len(padded))
	}

	out := make([]byte, IVSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[IVSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

// Decrypt opens an envelope produced by Encrypt. Every error it returns is
// expected when the input is not really an envelope, so callers should treat
// them as recoverable.
func Decrypt(envelope string, secret []byte) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(envelope)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrBase64Decode, err)
	}

	if len(raw) < IVSize+1 {
		return "", fmt.Errorf("%w: %d bytes", ErrInvalidCiphertextLength, len(raw))
	}

	iv, ciphertext := raw[:IVSize], raw[IVSize:]
	if len(ciphertext)%aes.BlockSize != 0 {
		return "", fmt.Errorf("%w: %d ciphertext bytes", ErrInvalidCiphertextLength, len(ciphertext))
	}

	block, err := aes.NewCipher(secret)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDecryption, err)
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(plain, ciphertext)

	plain, err = unpad(plain, block.BlockSize())
	if err != nil {
		return "", err
	}

	if !utf8.Valid(plain) {
		return "", ErrUTF8Decode
	}
	return string(plain), nil
}

// pad applies PKCS#7. A full block of padding is added when data is already
// block aligned.
func pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data)+n)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(n)
	}
	return out
}

func unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrPadding
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, ErrPadding
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, ErrPadding
		}
	}
	return data[:len(data)-n], nil
}
