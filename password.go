package auth

import (
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"
)

// PlaceholderPassword and PlaceholderSalt produce the password hash stored
// for OAuth2 users. The resulting hash is not a credential and must never
// be accepted to authenticate anyone.
const (
	PlaceholderPassword = "oldcamel"
	PlaceholderSalt     = "fixed_salt_for_oauth2_users"
)

// Argon2i parameters, encoded into every hash
const (
	argonTime    uint32 = 3
	argonMemory  uint32 = 4096
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// HashPassword derives a PHC encoded Argon2i hash. The same password
// and salt always produce the same string.
func HashPassword(password, salt string) string {
	key := argon2.Key([]byte(password), []byte(salt), argonTime, argonMemory, argonThreads, argonKeyLen)

	return fmt.Sprintf(
		"$argon2i$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		argonMemory,
		argonTime,
		argonThreads,
		base64.RawStdEncoding.EncodeToString([]byte(salt)),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

// PlaceholderPasswordHash is the hash every OAuth2 user is stored with
func PlaceholderPasswordHash() string {
	return HashPassword(PlaceholderPassword, PlaceholderSalt)
}
