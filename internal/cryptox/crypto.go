// Package cryptox holds the password hashing primitives used for user accounts.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/fitmacro/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of a freshly generated password salt.
const SaltSize = 16

// NewSalt returns a random salt of SaltSize bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives an argon2id hash (t=1, 64 MiB, 4 lanes, 32 bytes).
func HashPassword(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, 1, 64*1024, 4, 32)
}

// VerifyPassword recomputes the hash for candidate and compares it in constant time.
func VerifyPassword(hash, salt, candidate []byte) bool {
	got := HashPassword(candidate, salt)
	defer common.WipeByteArray(got)
	return subtle.ConstantTimeCompare(hash, got) == 1
}
