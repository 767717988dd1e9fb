package credentials

import (
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

var errEmptyKey = errors.New("empty key material")

// Encrypt wraps a plaintext key into the at-rest format understood by Unlock.
func Encrypt(plaintext, hexKey string) (string, error) {
	key, err := decodeHexKey(hexKey)
	if err != nil {
		return "", err
	}

	iv := make([]byte, aes.BlockSize)
	if _, err := rand.Read(iv); err != nil {
		return "", &ConfigurationError{Reason: "generate IV", Err: err}
	}

	return encryptWithIV([]byte(strings.Trim(plaintext, trimSet)), key, iv)
}

func decodeHexKey(hexKey string) ([]byte, error) {
	hexKey = strings.TrimSpace(hexKey)
	if len(hexKey) != 64 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("AES key must be 64 hex characters, got %d", len(hexKey))}
	}
	key, err := hex.DecodeString(hexKey)
	if err != nil {
		return nil, &ConfigurationError{Reason: "AES key is not valid hex", Err: err}
	}
	return key, nil
}

func encryptWithIV(plaintext, key, iv []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", &ConfigurationError{Reason: "create cipher", Err: err}
	}
	if len(iv) != aes.BlockSize {
		return "", &ConfigurationError{Reason: fmt.Sprintf("IV must be %d bytes", aes.BlockSize)}
	}

	padded := pkcs7Pad(plaintext, aes.BlockSize)
	defer wipe(padded)

	out := make([]byte, aes.BlockSize+len(padded))
	copy(out, iv)
	cipher.NewCBCEncrypter(block, iv).CryptBlocks(out[aes.BlockSize:], padded)

	return base64.StdEncoding.EncodeToString(out), nil
}

func decryptSecret(secret string, key []byte) ([]byte, error) {
	raw, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return nil, &ConfigurationError{Reason: "encrypted secret is not base64", Err: err}
	}

	ciphertext := raw[min(len(raw), aes.BlockSize):]
	if len(raw) < aes.BlockSize || len(ciphertext) == 0 || len(ciphertext)%aes.BlockSize != 0 {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("encrypted secret has invalid length %d", len(raw))}
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &ConfigurationError{Reason: "create cipher", Err: err}
	}

	plain := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, raw[:aes.BlockSize]).CryptBlocks(plain, ciphertext)

	unpadded, err := pkcs7Unpad(plain, aes.BlockSize)
	if err != nil {
		wipe(plain)
		return nil, &ConfigurationError{Reason: "decrypt secret (wrong AES key?)", Err: err}
	}
	return unpadded, nil
}

func pkcs7Pad(data []byte, blockSize int) []byte {
	n := blockSize - len(data)%blockSize
	out := make([]byte, len(data), len(data)+n)
	copy(out, data)
	return append(out, bytes.Repeat([]byte{byte(n)}, n)...)
}

func pkcs7Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, errors.New("padded data is not block aligned")
	}
	n := int(data[len(data)-1])
	if n == 0 || n > blockSize {
		return nil, errors.New("invalid padding size")
	}
	for _, b := range data[len(data)-n:] {
		if int(b) != n {
			return nil, errors.New("invalid padding bytes")
		}
	}
	return data[:len(data)-n], nil
}
