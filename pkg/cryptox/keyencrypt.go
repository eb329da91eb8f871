package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"os"
)

// KeyEncryptor seals signing key material at rest with AES-256-GCM. The
// 32-byte key is the SHA-256 of the configured master key material.
type KeyEncryptor struct {
	aead cipher.AEAD
}

// NewKeyEncryptor derives an AES-256 key from material.
func NewKeyEncryptor(material []byte) (*KeyEncryptor, error) {
	if len(material) == 0 {
		return nil, errors.New("cryptox: empty master key")
	}
	key := sha256.Sum256(material)

	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return &KeyEncryptor{aead: gcm}, nil
}

// LoadKeyEncryptor reads master key material from path, falling back to the
// AUTH_MASTER_KEY environment variable. With neither set an ephemeral key is
// generated and ephemeral reports true: stored keys will not survive restart.
func LoadKeyEncryptor(path string) (enc *KeyEncryptor, ephemeral bool, err error) {
	var material []byte
	switch {
	case path != "":
		material, err = os.ReadFile(path)
		if err != nil {
			return nil, false, fmt.Errorf("failed to read master key file: %w", err)
		}
	case os.Getenv("AUTH_MASTER_KEY") != "":
		material = []byte(os.Getenv("AUTH_MASTER_KEY"))
	default:
		material = make([]byte, 32)
		if _, err := rand.Read(material); err != nil {
			return nil, false, fmt.Errorf("failed to generate ephemeral master key: %w", err)
		}
		ephemeral = true
	}

	enc, err = NewKeyEncryptor(material)
	return enc, ephemeral, err
}

// Encrypt returns [12-byte nonce][ciphertext][16-byte tag].
func (e *KeyEncryptor) Encrypt(plaintext []byte) ([]byte, error) {
	nonce := make([]byte, e.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return e.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt reverses Encrypt and fails if the data was tampered with.
func (e *KeyEncryptor) Decrypt(data []byte) ([]byte, error) {
	nonceSize := e.aead.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := e.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decryption failed: %w", err)
	}
	return plaintext, nil
}
