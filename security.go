package assetcache

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	// scryptN is the CPU/memory cost parameter for scrypt key derivation.
	scryptN = 32768
	// scryptR is the block size parameter for scrypt.
	scryptR = 8
	// scryptP is the parallelization parameter for scrypt.
	scryptP = 1
	// keyLength is the desired key length for AES-256.
	keyLength = 32
	// nonceSize is the size of the GCM nonce.
	nonceSize = 12
)

// securityConfig adds SHA-256 key hashing (always applied once configured)
// and optional AES-256-GCM at-rest encryption to a Store.
type securityConfig struct {
	gcm cipher.AEAD
}

// NewSecurity builds a securityConfig. An empty passphrase still hashes
// keys with SHA-256 but leaves stored bytes unencrypted.
func NewSecurity(passphrase string) (*securityConfig, error) {
	sec := &securityConfig{}
	if passphrase == "" {
		return sec, nil
	}

	// Fixed salt: the passphrase itself is the only secret; a random salt
	// would need its own durable storage alongside the cache, which this
	// package does not provide.
	salt := sha256.Sum256([]byte("assetcache-encryption-salt-v1"))
	key, err := scrypt.Key([]byte(passphrase), salt[:], scryptN, scryptR, scryptP, keyLength)
	if err != nil {
		return nil, fmt.Errorf("assetcache: derive encryption key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("assetcache: create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("assetcache: create GCM: %w", err)
	}
	sec.gcm = gcm
	return sec, nil
}

// hashKey converts a CacheKey to its SHA-256 hex digest before it reaches
// the Backend.
func (sec *securityConfig) hashKey(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:])
}

// Encrypted reports whether stored bytes are AES-256-GCM encrypted.
func (sec *securityConfig) Encrypted() bool { return sec.gcm != nil }

func (sec *securityConfig) encrypt(data []byte) ([]byte, error) {
	if sec.gcm == nil {
		return data, nil
	}
	nonce := make([]byte, sec.gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("assetcache: generate nonce: %w", err)
	}
	return sec.gcm.Seal(nonce, nonce, data, nil), nil
}

func (sec *securityConfig) decrypt(data []byte) ([]byte, error) {
	if sec.gcm == nil {
		return data, nil
	}
	if len(data) < nonceSize {
		return nil, fmt.Errorf("assetcache: ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	plaintext, err := sec.gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("assetcache: decrypt: %w", err)
	}
	return plaintext, nil
}
