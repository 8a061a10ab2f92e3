package service

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters used by HashPassword.
const (
	argon2Time    = 2
	argon2Memory  = 16384 // KiB
	argon2Threads = 2
	argon2KeyLen  = 32
	argon2SaltLen = 16
)

// ErrInvalidHash is returned for a password hash that cannot be parsed.
var ErrInvalidHash = errors.New("service: invalid argon2id hash")

// PasswordVerifier checks the shared tracker password.
//
// When a hash is configured it takes precedence over the plain password.
// A verifier with neither rejects every password.
type PasswordVerifier struct {
	plain []byte
	hash  *argon2Hash
}

// NewPasswordVerifier creates a verifier from the configured plain password
// and/or argon2id hash.
func NewPasswordVerifier(plain, hash string) (*PasswordVerifier, error) {
	v := &PasswordVerifier{}
	if hash != "" {
		h, err := parseArgon2Hash(hash)
		if err != nil {
			return nil, err
		}
		v.hash = h
		return v, nil
	}
	if plain != "" {
		v.plain = []byte(plain)
	}
	return v, nil
}

// Verify reports whether password matches.
func (v *PasswordVerifier) Verify(password string) bool {
	if v == nil {
		return false
	}
	if v.hash != nil {
		return v.hash.verify(password)
	}
	if len(v.plain) == 0 {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), v.plain) == 1
}

// HashPassword returns an argon2id hash of password in the form
// $argon2id$v=19$m=16384,t=2,p=2$<salt>$<hash>.
func HashPassword(password string) (string, error) {
	salt := make([]byte, argon2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}
	key := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)
	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

type argon2Hash struct {
	memory  uint32
	time    uint32
	threads uint8
	salt    []byte
	key     []byte
}

// parseArgon2Hash parses $argon2id$v=19$m=<m>,t=<t>,p=<p>$<salt>$<hash>.
func parseArgon2Hash(s string) (*argon2Hash, error) {
	parts := strings.Split(s, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return nil, ErrInvalidHash
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidHash, parts[2])
	}

	h := &argon2Hash{}
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &h.memory, &h.time, &h.threads); err != nil {
		return nil, fmt.Errorf("%w: params: %v", ErrInvalidHash, err)
	}
	if h.memory == 0 || h.time == 0 || h.threads == 0 {
		return nil, fmt.Errorf("%w: zero parameter", ErrInvalidHash)
	}

	var err error
	if h.salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return nil, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	if h.key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return nil, fmt.Errorf("%w: key: %v", ErrInvalidHash, err)
	}
	if len(h.key) == 0 {
		return nil, fmt.Errorf("%w: empty key", ErrInvalidHash)
	}
	return h, nil
}

func (h *argon2Hash) verify(password string) bool {
	computed := argon2.IDKey([]byte(password), h.salt, h.time, h.memory, h.threads, uint32(len(h.key)))
	return subtle.ConstantTimeCompare(computed, h.key) == 1
}
