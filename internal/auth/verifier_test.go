package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zhaoeryu/eu-authd/internal/models"
)

func newTestKeyPair(t *testing.T) (*rsa.PrivateKey, []byte) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	pemKey := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})

	return key, pemKey
}

func encryptPassword(t *testing.T, pub *rsa.PublicKey, password string) string {
	t.Helper()

	ciphertext, err := rsa.EncryptPKCS1v15(rand.Reader, pub, []byte(password))
	require.NoError(t, err)

	return base64.StdEncoding.EncodeToString(ciphertext)
}

func TestRSADecryptor_RoundTrip(t *testing.T) {
	key, pemKey := newTestKeyPair(t)

	decryptor, err := NewRSADecryptor(pemKey)
	require.NoError(t, err)

	plain, err := decryptor.Decrypt(encryptPassword(t, &key.PublicKey, "s3cret!"))
	require.NoError(t, err)
	assert.Equal(t, "s3cret!", plain)
}

func TestRSADecryptor_PKCS8Key(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	pemKey := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	decryptor, err := NewRSADecryptor(pemKey)
	require.NoError(t, err)

	plain, err := decryptor.Decrypt(encryptPassword(t, &key.PublicKey, "admin123"))
	require.NoError(t, err)
	assert.Equal(t, "admin123", plain)
}

func TestRSADecryptor_RejectsGarbage(t *testing.T) {
	_, pemKey := newTestKeyPair(t)

	decryptor, err := NewRSADecryptor(pemKey)
	require.NoError(t, err)

	_, err = decryptor.Decrypt("not base64 at all!!!")
	assert.Error(t, err)

	_, err = decryptor.Decrypt(base64.StdEncoding.EncodeToString([]byte("junk")))
	assert.Error(t, err)
}

func TestNewRSADecryptor_InvalidPEM(t *testing.T) {
	_, err := NewRSADecryptor([]byte("not a pem"))
	assert.Error(t, err)
}

func TestCredentialVerifier_Match(t *testing.T) {
	key, pemKey := newTestKeyPair(t)

	decryptor, err := NewRSADecryptor(pemKey)
	require.NoError(t, err)

	hash, err := HashPassword("correct horse")
	require.NoError(t, err)

	verifier := NewCredentialVerifier(decryptor, BcryptComparator{})

	ok, err := verifier.Verify(encryptPassword(t, &key.PublicKey, "correct horse"), hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = verifier.Verify(encryptPassword(t, &key.PublicKey, "wrong"), hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCredentialVerifier_FormatErrorIsNotMismatch(t *testing.T) {
	_, pemKey := newTestKeyPair(t)

	decryptor, err := NewRSADecryptor(pemKey)
	require.NoError(t, err)

	hash, err := HashPassword("whatever")
	require.NoError(t, err)

	verifier := NewCredentialVerifier(decryptor, BcryptComparator{})

	_, err = verifier.Verify("%%%not-ciphertext%%%", hash)
	require.Error(t, err)
	assert.True(t, errors.Is(err, models.ErrCredentialFormat))
}
