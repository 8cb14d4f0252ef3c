package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/weave/pkg/domain"
	"github.com/aretw0/weave/pkg/ports"
)

// envelopePrefix marks an encrypted value.
const envelopePrefix = "enc:v1:"

// ErrNotEncrypted is returned by Load when a stored value lacks the envelope.
var ErrNotEncrypted = errors.New("variable value is not encrypted")

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt a
	// value, so keys can be rotated without rewriting the store first.
	FallbackKeys [][]byte
}

// ParseKey decodes a 32-byte key given as 64 hex digits or standard base64.
func ParseKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if k, err := hex.DecodeString(s); err == nil && len(k) == 32 {
		return k, nil
	}
	if k, err := base64.StdEncoding.DecodeString(s); err == nil && len(k) == 32 {
		return k, nil
	}
	return nil, errors.New("encryption key must be 32 bytes, hex or base64 encoded")
}

type encryptionMiddleware struct {
	next   ports.VariableStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts every non-empty
// variable value with AES-GCM. Names, descriptions and types stay readable.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.VariableStore) ports.VariableStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, vars []domain.Variable) error {
	sealed := make([]domain.Variable, len(vars))
	for i, v := range vars {
		if v.Value != "" {
			ciphertext, err := encrypt([]byte(v.Value), m.config.ActiveKey)
			if err != nil {
				return fmt.Errorf("failed to encrypt %s: %w", v.Name, err)
			}
			v.Value = envelopePrefix + base64.StdEncoding.EncodeToString(ciphertext)
		}
		sealed[i] = v
	}
	return m.next.Save(ctx, sealed)
}

func (m *encryptionMiddleware) Load(ctx context.Context) ([]domain.Variable, error) {
	vars, err := m.next.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.Variable, len(vars))
	for i, v := range vars {
		if v.Value != "" {
			encoded, ok := strings.CutPrefix(v.Value, envelopePrefix)
			if !ok {
				return nil, fmt.Errorf("%s: %w", v.Name, ErrNotEncrypted)
			}
			ciphertext, err := base64.StdEncoding.DecodeString(encoded)
			if err != nil {
				return nil, fmt.Errorf("failed to decode %s: %w", v.Name, err)
			}
			plain, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
			if err != nil {
				return nil, fmt.Errorf("failed to decrypt %s: %w", v.Name, err)
			}
			v.Value = string(plain)
		}
		out[i] = v
	}
	return out, nil
}

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}
	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}
	nonce, body := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, body, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
