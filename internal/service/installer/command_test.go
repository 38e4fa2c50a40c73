package installer

import (
	"context"
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
	"github.com/hyperledger/fabric-protos-go/peer"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/chaincode-installer/internal/config"
)

// writeTestIdentity writes a throwaway self-signed certificate and returns its path.
func writeTestIdentity(t *testing.T, dir string) string {
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

	certPath := filepath.Join(dir, "cert.pem")
	require.NoError(t, os.WriteFile(certPath,
		pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))

	return certPath
}

// TestRun_DevMode_WritesProposal runs the workflow in development mode with an
// output file and verifies the persisted proposal targets the lifecycle chaincode.
func TestRun_DevMode_WritesProposal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	certPath := writeTestIdentity(t, dir)

	configPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(configPath, &config.Config{
		PeerAddress: "127.0.0.1:7051",
		MSPID:       "Org1MSP",
		CertFile:    certPath,
	}))

	outputPath := filepath.Join(dir, "mycc-install.pb")

	err := Run(context.Background(), &Options{
		ConfigPath: configPath,
		Name:       "mycc",
		DevMode:    true,
		OutputFile: outputPath,
	})
	require.NoError(t, err)

	contents, err := os.ReadFile(outputPath)
	require.NoError(t, err)

	var prop peer.Proposal
	require.NoError(t, proto.Unmarshal(contents, &prop))

	var payload peer.ChaincodeProposalPayload
	require.NoError(t, proto.Unmarshal(prop.GetPayload(), &payload))

	var invocation peer.ChaincodeInvocationSpec
	require.NoError(t, proto.Unmarshal(payload.GetInput(), &invocation))
	require.Equal(t, "lccc", invocation.GetChaincodeSpec().GetChaincodeId().GetName())
}

// TestRun_UnknownLanguage rejects unsupported language tags before building.
func TestRun_UnknownLanguage(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	certPath := writeTestIdentity(t, dir)

	configPath := filepath.Join(dir, "settings.yaml")
	require.NoError(t, config.Save(configPath, &config.Config{
		PeerAddress: "127.0.0.1:7051",
		MSPID:       "Org1MSP",
		CertFile:    certPath,
	}))

	err := Run(context.Background(), &Options{
		ConfigPath: configPath,
		Name:       "mycc",
		Path:       "mycc",
		Language:   "node",
	})
	require.Error(t, err)
	require.ErrorContains(t, err, "node")
}

// TestRun_MissingConfig fails fast when the settings file is absent.
func TestRun_MissingConfig(t *testing.T) {
	t.Parallel()

	err := Run(context.Background(), &Options{
		ConfigPath: filepath.Join(t.TempDir(), "missing.yaml"),
		Name:       "mycc",
	})
	require.Error(t, err)
	require.ErrorContains(t, err, "load settings")
}
