package identity

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/msp"
	"github.com/stretchr/testify/require"
)

// selfSignedCertPEM generates a throwaway self-signed certificate for tests.
func selfSignedCertPEM(t *testing.T) []byte {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "test-identity"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	require.NoError(t, err)

	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

// TestCreator_Roundtrip ensures the creator bytes decode back to the identity provided.
func TestCreator_Roundtrip(t *testing.T) {
	t.Parallel()

	certPEM := selfSignedCertPEM(t)

	creator, err := Creator("Org1MSP", certPEM)
	require.NoError(t, err)

	var sid msp.SerializedIdentity
	require.NoError(t, proto.Unmarshal(creator, &sid))
	require.Equal(t, "Org1MSP", sid.GetMspid())
	require.Equal(t, certPEM, sid.GetIdBytes())
}

// TestCreator_Validation rejects missing MSP ids and non-certificate contents.
func TestCreator_Validation(t *testing.T) {
	t.Parallel()

	certPEM := selfSignedCertPEM(t)

	_, err := Creator("", certPEM)
	require.Error(t, err)

	_, err = Creator("Org1MSP", []byte("not a certificate"))
	require.Error(t, err)
}

// TestCreatorFromFile loads the certificate from disk.
func TestCreatorFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cert.pem")
	require.NoError(t, os.WriteFile(path, selfSignedCertPEM(t), 0o600))

	creator, err := CreatorFromFile("Org1MSP", path)
	require.NoError(t, err)
	require.NotEmpty(t, creator)

	_, err = CreatorFromFile("Org1MSP", filepath.Join(t.TempDir(), "missing.pem"))
	require.Error(t, err)
}
