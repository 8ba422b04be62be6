package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/skilltree/pkg/ports"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

// ErrDecrypt is returned by Get when no configured key opens a stored value.
var ErrDecrypt = errors.New("value could not be decrypted with any configured key")

type encryptionMiddleware struct {
	next ports.KVStore
	// sealer encrypts new values; openers are tried in order on read,
	// active key first.
	sealer  cipher.AEAD
	openers []cipher.AEAD
}

// NewEncryptionMiddleware creates a middleware that encrypts every value using
// AES-256-GCM. Values are stored base64 encoded with the nonce prepended, and
// the store key is bound as additional data, so a value copied under another
// key fails to decrypt.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	sealer := mustAEAD(config.ActiveKey)
	openers := []cipher.AEAD{sealer}
	for _, k := range config.FallbackKeys {
		openers = append(openers, mustAEAD(k))
	}
	return func(next ports.KVStore) ports.KVStore {
		return &encryptionMiddleware{
			next:    next,
			sealer:  sealer,
			openers: openers,
		}
	}
}

func mustAEAD(key []byte) cipher.AEAD {
	block, err := aes.NewCipher(key)
	if err != nil {
		panic(fmt.Sprintf("invalid encryption key: %v", err))
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		panic(fmt.Sprintf("invalid encryption key: %v", err))
	}
	return aead
}

func (m *encryptionMiddleware) Set(ctx context.Context, key, value string) error {
	nonce := make([]byte, m.sealer.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("failed to generate nonce for %s: %w", key, err)
	}
	sealed := m.sealer.Seal(nonce, nonce, []byte(value), []byte(key))
	return m.next.Set(ctx, key, base64.StdEncoding.EncodeToString(sealed))
}

func (m *encryptionMiddleware) Get(ctx context.Context, key string) (string, error) {
	encoded, err := m.next.Get(ctx, key)
	if err != nil {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%s: stored value is not base64: %w", key, err)
	}

	for _, aead := range m.openers {
		n := aead.NonceSize()
		if len(sealed) < n+aead.Overhead() {
			break
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], []byte(key)); err == nil {
			return string(plain), nil
		}
	}
	return "", fmt.Errorf("%s: %w", key, ErrDecrypt)
}
