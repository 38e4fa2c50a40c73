package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds connection and identity parameters shared by the installer binaries.
type Config struct {
	// PeerAddress is the gRPC endorser address of the peer receiving install proposals.
	PeerAddress string `yaml:"peer_addr"`
	// MSPID is the membership service provider identifier of the submitting identity.
	MSPID string `yaml:"msp_id"`
	// CertFile is the path to the PEM-encoded enrollment certificate of the submitter.
	CertFile string `yaml:"cert_file"`
	// KeyFile is the path to the PEM-encoded ECDSA private key used to sign proposals.
	KeyFile string `yaml:"key_file"`
	// SourceRoot optionally overrides the chaincode source root directory.
	// When empty, language defaults apply (GOPATH for Go, the working directory for Java).
	SourceRoot string `yaml:"source_root"`
	// Timeout is the duration for network operations and RPC calls.
	Timeout time.Duration `yaml:"timeout"`
	// DevMode, when true, builds proposals for peers running chaincode out-of-process.
	DevMode bool `yaml:"dev_mode"`
}

const (
	// DefaultConfigFilename is the default filename for installer settings.
	DefaultConfigFilename = "chaincode-installer-settings.yaml"

	// DefaultTimeout is the default duration for network operations.
	DefaultTimeout = 30 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errPeerAddressRequired is returned when the peer address is missing.
	errPeerAddressRequired = errors.New("peer address must be provided")
	// errMSPIDRequired is returned when the MSP identifier is missing.
	errMSPIDRequired = errors.New("MSP identifier must be provided")
)

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions: the file may name a private enrollment certificate.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings for required fields and formatting.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.PeerAddress == "" {
		return errPeerAddressRequired
	}

	if _, err := net.ResolveTCPAddr("tcp", cfg.PeerAddress); err != nil {
		return fmt.Errorf("invalid peer address: %w", err)
	}

	if cfg.MSPID == "" {
		return errMSPIDRequired
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return nil
}
