package identity

import (
	"crypto/ecdsa"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"errors"
	"fmt"
	"math/big"
	"os"
	"path/filepath"
)

// errNotAPrivateKey is returned when the key file holds no usable ECDSA key.
var errNotAPrivateKey = errors.New("key file contains no ECDSA private key")

// ECDSASigner signs proposal bytes with an ECDSA enrollment key the way peers
// expect: SHA-256 digest, ASN.1 signature with the S value normalized to the
// lower half of the curve order.
type ECDSASigner struct {
	key *ecdsa.PrivateKey
}

// NewECDSASigner wraps an existing private key.
func NewECDSASigner(key *ecdsa.PrivateKey) *ECDSASigner {
	return &ECDSASigner{key: key}
}

// NewECDSASignerFromFile reads a PEM-encoded ECDSA private key
// (PKCS#8 or SEC 1) from disk.
func NewECDSASignerFromFile(path string) (*ECDSASigner, error) {
	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read private key: %w", err)
	}

	block, _ := pem.Decode(contents)
	if block == nil {
		return nil, errNotAPrivateKey
	}

	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return NewECDSASigner(key), nil
	}

	parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	key, ok := parsed.(*ecdsa.PrivateKey)
	if !ok {
		return nil, errNotAPrivateKey
	}

	return NewECDSASigner(key), nil
}

// ecdsaSignature is the ASN.1 layout of an ECDSA signature.
type ecdsaSignature struct {
	R, S *big.Int
}

// Sign produces a signature over the message.
func (s *ECDSASigner) Sign(message []byte) ([]byte, error) {
	digest := sha256.Sum256(message)

	r, sv, err := ecdsa.Sign(rand.Reader, s.key, digest[:])
	if err != nil {
		return nil, fmt.Errorf("sign: %w", err)
	}

	// Peers reject signatures whose S value lies in the upper half of the
	// curve order (signature malleability), so fold it down.
	order := s.key.Curve.Params().N

	halfOrder := new(big.Int).Rsh(order, 1)
	if sv.Cmp(halfOrder) > 0 {
		sv = new(big.Int).Sub(order, sv)
	}

	signature, err := asn1.Marshal(ecdsaSignature{R: r, S: sv})
	if err != nil {
		return nil, fmt.Errorf("marshal signature: %w", err)
	}

	return signature, nil
}
