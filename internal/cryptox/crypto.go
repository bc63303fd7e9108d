// Package cryptox hashes account passwords.
//
// New hashes use Argon2id with a random per-account salt and are encoded as
//
//	argon2id$<salt hex>$<key hex>
//
// Registries written by earlier versions store a bare hex SHA-256 digest of
// the password; VerifyPassword still accepts those.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/dmitrijs2005/spendkeeper/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	schemeArgon2id = "argon2id"
	saltSize       = 16
)

var ErrMalformedHash = errors.New("malformed password hash")

// DeriveKey stretches password with salt using Argon2id.
func DeriveKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// LegacyDigest is the unsalted hex SHA-256 digest older registries stored.
func LegacyDigest(password []byte) string {
	sum := sha256.Sum256(password)
	return hex.EncodeToString(sum[:])
}

// HashPassword returns the encoded Argon2id hash of password.
func HashPassword(password []byte) string {
	salt := common.GenerateRandByteArray(saltSize)
	key := DeriveKey(password, salt)
	return schemeArgon2id + "$" + hex.EncodeToString(salt) + "$" + hex.EncodeToString(key)
}

// VerifyPassword reports whether password matches the stored hash.
func VerifyPassword(hash string, password []byte) bool {
	if !strings.HasPrefix(hash, schemeArgon2id+"$") {
		candidate := LegacyDigest(password)
		return subtle.ConstantTimeCompare([]byte(strings.ToLower(hash)), []byte(candidate)) == 1
	}

	salt, key, err := decodeArgon2(hash)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare(key, DeriveKey(password, salt)) == 1
}

// IsLegacy reports whether hash uses the unsalted SHA-256 format.
func IsLegacy(hash string) bool {
	return !strings.HasPrefix(hash, schemeArgon2id+"$")
}

func decodeArgon2(hash string) (salt, key []byte, err error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 3 {
		return nil, nil, ErrMalformedHash
	}
	if salt, err = hex.DecodeString(parts[1]); err != nil {
		return nil, nil, ErrMalformedHash
	}
	if key, err = hex.DecodeString(parts[2]); err != nil {
		return nil, nil, ErrMalformedHash
	}
	return salt, key, nil
}
