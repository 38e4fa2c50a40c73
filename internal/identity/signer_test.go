package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/asn1"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestECDSASigner_SignVerify signs a message and verifies the signature,
// checking the S value is in the lower half of the curve order.
func TestECDSASigner_SignVerify(t *testing.T) {
	t.Parallel()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	message := []byte("install proposal bytes")

	signature, err := NewECDSASigner(key).Sign(message)
	require.NoError(t, err)

	var sig ecdsaSignature
	_, err = asn1.Unmarshal(signature, &sig)
	require.NoError(t, err)

	digest := sha256.Sum256(message)
	require.True(t, ecdsa.Verify(&key.PublicKey, digest[:], sig.R, sig.S))

	halfOrder := new(big.Int).Rsh(key.Curve.Params().N, 1)
	require.LessOrEqual(t, sig.S.Cmp(halfOrder), 0)
}

// TestNewECDSASignerFromFile loads PKCS#8 and SEC 1 keys from disk and
// rejects non-key contents.
func TestNewECDSASignerFromFile(t *testing.T) {
	t.Parallel()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	dir := t.TempDir()

	pkcs8, err := x509.MarshalPKCS8PrivateKey(key)
	require.NoError(t, err)

	pkcs8Path := filepath.Join(dir, "pkcs8.pem")
	require.NoError(t, os.WriteFile(pkcs8Path,
		pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: pkcs8}), 0o600))

	_, err = NewECDSASignerFromFile(pkcs8Path)
	require.NoError(t, err)

	sec1, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	sec1Path := filepath.Join(dir, "sec1.pem")
	require.NoError(t, os.WriteFile(sec1Path,
		pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: sec1}), 0o600))

	_, err = NewECDSASignerFromFile(sec1Path)
	require.NoError(t, err)

	badPath := filepath.Join(dir, "bad.pem")
	require.NoError(t, os.WriteFile(badPath, []byte("not a key"), 0o600))

	_, err = NewECDSASignerFromFile(badPath)
	require.Error(t, err)
}
