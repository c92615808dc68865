package cryptox

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

// GenerateRSAKeyPEM creates an RSA private key and returns it PKCS#8 PEM
// encoded. "auth genkey RS256" prints one for JWT_SECRET_FILE.
func GenerateRSAKeyPEM(bits int) (string, error) {
	if bits < 2048 {
		return "", fmt.Errorf("cryptox: rsa key size %d too small", bits)
	}
	key, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return "", fmt.Errorf("cryptox: generate rsa key: %w", err)
	}
	return encodePKCS8(key)
}

// GenerateECKeyPEM creates a P-256 private key and returns it PKCS#8 PEM encoded.
func GenerateECKeyPEM() (string, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return "", fmt.Errorf("cryptox: generate ec key: %w", err)
	}
	return encodePKCS8(key)
}

func encodePKCS8(key any) (string, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return "", fmt.Errorf("cryptox: marshal private key: %w", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})), nil
}
