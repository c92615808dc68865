package cryptox

import (
	"crypto/ecdsa"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateRSAKeyPEM(t *testing.T) {
	pemStr, err := GenerateRSAKeyPEM(2048)
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(pemStr))
	require.NotNil(t, block)
	require.Equal(t, "PRIVATE KEY", block.Type)

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	rsaKey, ok := key.(*rsa.PrivateKey)
	require.True(t, ok)
	require.Equal(t, 2048, rsaKey.N.BitLen())

	_, err = GenerateRSAKeyPEM(1024)
	require.Error(t, err)
}

func TestGenerateECKeyPEM(t *testing.T) {
	pemStr, err := GenerateECKeyPEM()
	require.NoError(t, err)

	block, _ := pem.Decode([]byte(pemStr))
	require.NotNil(t, block)

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	require.NoError(t, err)
	ecKey, ok := key.(*ecdsa.PrivateKey)
	require.True(t, ok)
	require.Equal(t, "P-256", ecKey.Curve.Params().Name)
}
