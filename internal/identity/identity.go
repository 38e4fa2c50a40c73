package identity

import (
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/msp"
)

var (
	// errMSPIDRequired is returned when the MSP identifier is missing.
	errMSPIDRequired = errors.New("MSP identifier must be provided")
	// errNotACertificate is returned when the identity file holds no certificate block.
	errNotACertificate = errors.New("identity file contains no PEM certificate")
)

// Creator builds the serialized creator identity placed into proposal
// signature headers: the MSP identifier plus the PEM-encoded enrollment
// certificate, wrapped in a SerializedIdentity message.
func Creator(mspID string, certPEM []byte) ([]byte, error) {
	if mspID == "" {
		return nil, errMSPIDRequired
	}

	block, _ := pem.Decode(certPEM)
	if block == nil || block.Type != "CERTIFICATE" {
		return nil, errNotACertificate
	}

	creator, err := proto.Marshal(&msp.SerializedIdentity{
		Mspid:   mspID,
		IdBytes: certPEM,
	})
	if err != nil {
		return nil, fmt.Errorf("serialize identity: %w", err)
	}

	return creator, nil
}

// CreatorFromFile reads a PEM certificate from disk and builds the creator identity.
func CreatorFromFile(mspID, certFile string) ([]byte, error) {
	certPEM, err := os.ReadFile(filepath.Clean(certFile))
	if err != nil {
		return nil, fmt.Errorf("read certificate: %w", err)
	}

	return Creator(mspID, certPEM)
}
