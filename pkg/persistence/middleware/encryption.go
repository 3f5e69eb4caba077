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

	"github.com/aretw0/dialoguetree/pkg/domain"
	"github.com/aretw0/dialoguetree/pkg/ports"
	"github.com/aretw0/dialoguetree/pkg/serialization"
)

// envelopeKey marks the single record an encrypted slot is stored as.
const envelopeKey = "__encrypted__"

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt a slot.
	// This enables key rotation without rewriting old saves first.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next       ports.HistoryStore
	config     EncryptionConfig
	serializer *serialization.Serializer
}

// NewEncryptionMiddleware creates a middleware that encrypts records using AES-GCM.
// The wrapped store only ever sees an opaque envelope. It panics unless the active key is 32 bytes.
func NewEncryptionMiddleware(config EncryptionConfig) Middleware {
	if len(config.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &encryptionMiddleware{
			next:       next,
			config:     config,
			serializer: serialization.Default(),
		}
	}
}

func (m *encryptionMiddleware) Save(ctx context.Context, slotID string, h domain.Histories) error {
	plainText, err := m.serializer.Serialize(h)
	if err != nil {
		return fmt.Errorf("failed to marshal records: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt records: %w", err)
	}

	envelope := domain.Histories{
		envelopeKey: {Speakers: map[string]*domain.SpeakerHistory{
			envelopeKey: {
				Visited:      domain.NodeSet{},
				ResumeNodeID: domain.NodeID(base64.StdEncoding.EncodeToString(ciphertext)),
			},
		}},
	}
	return m.next.Save(ctx, slotID, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, slotID string) (domain.Histories, error) {
	envelope, err := m.next.Load(ctx, slotID)
	if err != nil {
		return nil, err
	}

	// Plain saves are rejected rather than passed through.
	record, ok := envelope[envelopeKey]
	if !ok || record.Speakers[envelopeKey] == nil {
		return nil, errors.New("save slot is missing encrypted data envelope")
	}

	ciphertext, err := base64.StdEncoding.DecodeString(string(record.Speakers[envelopeKey].ResumeNodeID))
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt records: %w", err)
	}

	var h domain.Histories
	if err := m.serializer.Deserialize(plainText, &h); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted records: %w", err)
	}
	if h == nil {
		h = domain.Histories{}
	}
	return h, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, slotID string) error {
	return m.next.Delete(ctx, slotID)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
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
