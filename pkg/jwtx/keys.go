package jwtx

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
)

// GenerateEd25519PEM creates a fresh Ed25519 keypair and returns the private
// key encoded as PKCS8 PEM, ready for NewSignerEdDSA.
func GenerateEd25519PEM() ([]byte, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("jwtx: generate ed25519: %w", err)
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("jwtx: marshal PKCS8: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}), nil
}

// LoadOrGenerateKeyFile reads an Ed25519 PKCS8 PEM from path, generating and
// persisting one on first run. Tokens survive restarts as long as the key
// file does.
func LoadOrGenerateKeyFile(path string) ([]byte, error) {
	if data, err := os.ReadFile(path); err == nil {
		return data, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("jwtx: read key file: %w", err)
	}

	pemKey, err := GenerateEd25519PEM()
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, pemKey, 0600); err != nil {
		return nil, fmt.Errorf("jwtx: write key file: %w", err)
	}

	return pemKey, nil
}
