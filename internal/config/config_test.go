package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestValidate checks required fields and format validations for the settings.
func TestValidate(t *testing.T) {
	t.Parallel()

	// Missing peer address.
	err := Validate(new(Config))
	require.Error(t, err)

	// Bad peer address.
	err = Validate(&Config{PeerAddress: "bad:address", MSPID: "Org1MSP"})
	require.Error(t, err)

	// Missing MSP id.
	err = Validate(&Config{PeerAddress: "127.0.0.1:7051"})
	require.Error(t, err)

	// Okay; defaults applied.
	cfg := &Config{
		PeerAddress: "127.0.0.1:7051",
		MSPID:       "Org1MSP",
	}

	err = Validate(cfg)
	require.NoError(t, err)
	require.Equal(t, DefaultTimeout, cfg.Timeout)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")

	cfg := &Config{
		PeerAddress: "127.0.0.1:7051",
		MSPID:       "Org1MSP",
		CertFile:    "msp/signcerts/cert.pem",
		SourceRoot:  "/opt/gopath",
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.PeerAddress, loaded.PeerAddress)
	require.Equal(t, cfg.MSPID, loaded.MSPID)
	require.Equal(t, cfg.CertFile, loaded.CertFile)
	require.Equal(t, cfg.SourceRoot, loaded.SourceRoot)
}
