package auth

import (
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"fmt"
)

// Decryptor recovers the plaintext password from the ciphertext submitted by
// the login form.
type Decryptor interface {
	Decrypt(ciphertext string) (string, error)
}

// RSADecryptor decrypts base64-encoded PKCS#1 v1.5 ciphertext with a
// server-held private key. The browser encrypts the password with the paired
// public key before submitting it.
type RSADecryptor struct {
	key *rsa.PrivateKey
}

// NewRSADecryptor parses a PEM-encoded private key in either PKCS#1 or PKCS#8
// form.
func NewRSADecryptor(pemKey []byte) (*RSADecryptor, error) {
	block, _ := pem.Decode(pemKey)
	if block == nil {
		return nil, fmt.Errorf("no PEM block found in private key")
	}

	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return &RSADecryptor{key: key}, nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("private key is not an RSA key")
	}

	return &RSADecryptor{key: key}, nil
}

func (d *RSADecryptor) Decrypt(ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", fmt.Errorf("ciphertext is not valid base64: %w", err)
	}

	plain, err := rsa.DecryptPKCS1v15(nil, d.key, raw)
	if err != nil {
		return "", fmt.Errorf("rsa decryption failed: %w", err)
	}

	return string(plain), nil
}
