// Package cryptox hashes and verifies account passwords.
//
// Passwords are never stored. An account keeps a random salt and the
// argon2id digest of the password under that salt; verification recomputes
// the digest and compares in constant time.
package cryptox

import (
	"crypto/subtle"

	"github.com/dmitrijs2005/patrimonio/internal/common"
	"golang.org/x/crypto/argon2"
)

// SaltSize is the length of generated salts in bytes.
const SaltSize = 32

const (
	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
	argonKeyLen  = 32
)

// NewSalt returns SaltSize random bytes.
func NewSalt() []byte {
	return common.GenerateRandByteArray(SaltSize)
}

// HashPassword derives the argon2id digest of password under salt.
func HashPassword(password, salt []byte) []byte {
	return argon2.IDKey(password, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyPassword reports whether password hashes to hash under salt.
// An empty hash never verifies.
func VerifyPassword(password, salt, hash []byte) bool {
	if len(hash) == 0 {
		return false
	}
	candidate := HashPassword(password, salt)
	defer common.WipeByteArray(candidate)
	return subtle.ConstantTimeCompare(hash, candidate) == 1
}
