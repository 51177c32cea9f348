package util

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"errors"

	"golang.org/x/crypto/argon2"
)

const (
	apiKeySaltLength = 16
	apiKeyHashLength = 32
	argonTime        = 1
	argonMemory      = 64 * 1024
	argonThreads     = 4
)

// APIKey holds the argon2id hash of an operator key. The plain key is never
// stored.
type APIKey struct {
	hash []byte
	salt []byte
}

// ParseAPIKey decodes a hex hash and salt as printed by cmd/apikey.
func ParseAPIKey(hashHex, saltHex string) (*APIKey, error) {
	hash, err := hex.DecodeString(hashHex)
	if err != nil {
		return nil, errors.New("api key hash must be hex")
	}
	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return nil, errors.New("api key salt must be hex")
	}
	if len(hash) != apiKeyHashLength || len(salt) == 0 {
		return nil, errors.New("api key hash or salt has wrong length")
	}
	return &APIKey{hash: hash, salt: salt}, nil
}

// DeriveAPIKey hashes key with a fresh salt.
func DeriveAPIKey(key string) (*APIKey, error) {
	if len(key) < 16 {
		return nil, errors.New("api key must be at least 16 characters long")
	}
	salt := make([]byte, apiKeySaltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, err
	}
	return &APIKey{hash: hashAPIKey(key, salt), salt: salt}, nil
}

func (k *APIKey) HashHex() string { return hex.EncodeToString(k.hash) }

func (k *APIKey) SaltHex() string { return hex.EncodeToString(k.salt) }

func (k *APIKey) Verify(candidate string) bool {
	if k == nil || candidate == "" {
		return false
	}
	return subtle.ConstantTimeCompare(hashAPIKey(candidate, k.salt), k.hash) == 1
}

func hashAPIKey(key string, salt []byte) []byte {
	return argon2.IDKey([]byte(key), salt, argonTime, argonMemory, argonThreads, apiKeyHashLength)
}
