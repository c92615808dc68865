package cryptox

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"golang.org/x/crypto/argon2"
)

// ErrEmptyPassword is returned by Hash when asked to hash an empty password.
var ErrEmptyPassword = errors.New("cryptox: empty password")

// HasherParams are the Argon2id cost parameters used for new hashes.
// Stored hashes carry their own parameters, so changing these only affects
// hashes created afterwards.
type HasherParams struct {
	Memory      uint32 // KiB
	Iterations  uint32
	Parallelism uint8
	KeyLength   uint32
	SaltLength  uint32
}

// DefaultHasherParams follows the OWASP minimum for Argon2id (19 MiB, t=2, p=1).
var DefaultHasherParams = HasherParams{
	Memory:      19 * 1024,
	Iterations:  2,
	Parallelism: 1,
	KeyLength:   32,
	SaltLength:  16,
}

// Upper bounds accepted when parsing a stored hash. A corrupted or hostile
// row must not be able to make us allocate gigabytes or spin for minutes.
const (
	maxMemory     = 256 * 1024
	maxIterations = 16
	maxKeyLength  = 128
)

// Hasher hashes and verifies passwords with Argon2id. It is immutable once
// built and safe for concurrent use.
type Hasher struct {
	params HasherParams
	pepper string
	dummy  string
}

// NewHasher returns a Hasher using params for new hashes. The pepper is
// appended to every password before hashing; pass "" to disable it.
func NewHasher(params HasherParams, pepper string) *Hasher {
	h := &Hasher{params: params, pepper: pepper}

	// Fixed-salt hash used to burn the same amount of work when the account
	// being verified does not exist.
	salt := make([]byte, params.SaltLength)
	h.dummy = h.encode(salt, argon2.IDKey(
		[]byte("dummy-password"+pepper),
		salt,
		params.Iterations,
		params.Memory,
		params.Parallelism,
		params.KeyLength,
	))

	return h
}

// Hash generates a PHC-format Argon2id hash string including salt and parameters.
func (h *Hasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}

	salt := make([]byte, h.params.SaltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("cryptox: generate salt: %w", err)
	}

	key := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		h.params.Iterations,
		h.params.Memory,
		h.params.Parallelism,
		h.params.KeyLength,
	)
	return h.encode(salt, key), nil
}

// Verify reports whether password matches the PHC-style Argon2id hash. A
// malformed hash never matches.
func (h *Hasher) Verify(password, encodedHash string) bool {
	p, salt, expected, err := decodePHC(encodedHash)
	if err != nil {
		return false
	}

	computed := argon2.IDKey(
		[]byte(password+h.pepper),
		salt,
		p.Iterations,
		p.Memory,
		p.Parallelism,
		uint32(len(expected)), // #nosec G115 - bounded by maxKeyLength
	)

	return subtle.ConstantTimeCompare(computed, expected) == 1
}

// VerifyDummy performs a verification against an internal hash and always
// returns false. Call it when the principal is unknown so the response time
// matches a real password check.
func (h *Hasher) VerifyDummy(password string) bool {
	_ = h.Verify(password, h.dummy)
	return false
}

func (h *Hasher) encode(salt, key []byte) string {
	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.params.Memory,
		h.params.Iterations,
		h.params.Parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	)
}

// decodePHC parses $argon2id$v=19$m=X,t=Y,p=Z$salt$hash.
func decodePHC(encoded string) (HasherParams, []byte, []byte, error) {
	var p HasherParams

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, errors.New("invalid hash format: expected 6 parts")
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, errors.New("invalid hash format: not argon2id")
	}
	if parts[2] != fmt.Sprintf("v=%d", argon2.Version) {
		return p, nil, nil, errors.New("invalid hash format: wrong version")
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.Memory, &p.Iterations, &p.Parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("invalid hash format: failed to parse parameters: %w", err)
	}
	if p.Memory == 0 || p.Memory > maxMemory ||
		p.Iterations == 0 || p.Iterations > maxIterations ||
		p.Parallelism == 0 {
		return p, nil, nil, errors.New("invalid hash format: parameters out of range")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return p, nil, nil, errors.New("invalid hash format: failed to decode salt")
	}
	hash, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(hash) == 0 || len(hash) > maxKeyLength {
		return p, nil, nil, errors.New("invalid hash format: failed to decode hash")
	}

	return p, salt, hash, nil
}

// GeneratePassword returns a random 16 character alphanumeric password.
func GeneratePassword() (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const length = 16
	password := make([]byte, length)
	for i := range password {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", fmt.Errorf("failed to generate random password: %w", err)
		}
		password[i] = charset[n.Int64()]
	}
	return string(password), nil
}
