package jwtx

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// MinHMACSecretLength is the shortest accepted HS256 secret, in bytes.
const MinHMACSecretLength = 32

// parseKeys turns the configured secret into a signing key and its
// verification counterpart for alg.
func parseKeys(alg, secret string) (sign, verify any, err error) {
	switch alg {
	case AlgHS256:
		if len(secret) < MinHMACSecretLength {
			return nil, nil, fmt.Errorf("%w: HS256 secret must be at least %d bytes", ErrInvalidKey, MinHMACSecretLength)
		}
		key := []byte(secret)
		return key, key, nil

	case AlgRS256:
		key, err := parseRSAPrivateKey([]byte(secret))
		if err != nil {
			return nil, nil, err
		}
		return key, &key.PublicKey, nil

	case AlgES256:
		key, err := parseECPrivateKey([]byte(secret))
		if err != nil {
			return nil, nil, err
		}
		return key, &key.PublicKey, nil

	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnsupportedAlg, alg)
	}
}

// parseRSAPrivateKey handles both PKCS1 and PKCS8 because both show up in
// the wild depending on which openssl invocation produced the key.
func parseRSAPrivateKey(pemKey []byte) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, fmt.Errorf("%w: invalid PEM for RSA key", ErrInvalidKey)
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKCS1: %w", ErrInvalidKey, err)
		}
		return key, nil

	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKCS8: %w", ErrInvalidKey, err)
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: PKCS8 key is not RSA", ErrInvalidKey)
		}
		return key, nil

	default:
		return nil, fmt.Errorf("%w: unsupported PEM type %q for RSA", ErrInvalidKey, block.Type)
	}
}

// parseECPrivateKey accepts PKCS8 and SEC1 P-256 keys.
func parseECPrivateKey(pemKey []byte) (*ecdsa.PrivateKey, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, fmt.Errorf("%w: invalid PEM for EC key", ErrInvalidKey)
	}

	var key *ecdsa.PrivateKey
	switch block.Type {
	case "EC PRIVATE KEY":
		k, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse SEC1: %w", ErrInvalidKey, err)
		}
		key = k

	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: parse PKCS8: %w", ErrInvalidKey, err)
		}
		k, ok := parsed.(*ecdsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: PKCS8 key is not ECDSA", ErrInvalidKey)
		}
		key = k

	default:
		return nil, fmt.Errorf("%w: unsupported PEM type %q for EC", ErrInvalidKey, block.Type)
	}

	if key.Curve != elliptic.P256() {
		return nil, fmt.Errorf("%w: ES256 requires a P-256 key", ErrInvalidKey)
	}
	return key, nil
}
