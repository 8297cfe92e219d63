package keyfetcher

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrom_FetchPublicKey(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pubKeyBytes, err := x509.MarshalPKIXPublicKey(&privateKey.PublicKey)
	require.NoError(t, err)

	pubKeyPem := pem.EncodeToMemory(&pem.Block{
		Type:  "PUBLIC KEY",
		Bytes: pubKeyBytes,
	})

	cases := map[string]struct {
		envKey     string
		envValue   string
		expectedPk *rsa.PublicKey
		expectedEr string
	}{
		"should parse a key from the environment": {
			envKey:     "TEST_PUBLIC_KEY",
			envValue:   base64.StdEncoding.EncodeToString(pubKeyPem),
			expectedPk: &privateKey.PublicKey,
		},
		"should fail when the variable is unset": {
			envKey:     "NON_EXISTANT_KEY",
			expectedEr: "key is not found",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.envKey, tc.envValue)
			}

			fetcher := FromBase64Env(tc.envKey)
			pk, err := fetcher.FetchPublicKey()

			if tc.expectedEr != "" {
				assert.EqualError(t, err, tc.expectedEr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedPk, pk)
		})
	}
}

func TestFrom_FetchPrivateKey(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privKeyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	require.NoError(t, err)

	privKeyPem := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: privKeyBytes,
	})

	cases := map[string]struct {
		envKey     string
		envValue   string
		expectedPk *rsa.PrivateKey
		expectedEr string
	}{
		"should parse a key from the environment": {
			envKey:     "TEST_PRIVATE_KEY",
			envValue:   base64.StdEncoding.EncodeToString(privKeyPem),
			expectedPk: privateKey,
		},
		"should fail when the variable is unset": {
			envKey:     "NON_EXISTANT_KEY",
			expectedEr: "key is not found",
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			if tc.envValue != "" {
				t.Setenv(tc.envKey, tc.envValue)
			}

			fetcher := FromBase64Env(tc.envKey)
			pk, err := fetcher.FetchPrivateKey()

			if tc.expectedEr != "" {
				assert.EqualError(t, err, tc.expectedEr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expectedPk, pk)
		})
	}
}

func TestFromBytes(t *testing.T) {
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	privKeyBytes, err := x509.MarshalPKCS8PrivateKey(privateKey)
	require.NoError(t, err)

	privKeyPem := pem.EncodeToMemory(&pem.Block{
		Type:  "PRIVATE KEY",
		Bytes: privKeyBytes,
	})

	pk, err := FromBytes(privKeyPem).FetchPrivateKey()
	assert.NoError(t, err)
	assert.Equal(t, privateKey, pk)
}
