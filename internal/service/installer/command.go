package installer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/protobuf/proto"
	"github.com/hyperledger/fabric-protos-go/peer"

	"github.com/oshokin/chaincode-installer/internal/api/grpc/endorser"
	"github.com/oshokin/chaincode-installer/internal/config"
	"github.com/oshokin/chaincode-installer/internal/domain/chaincode"
	"github.com/oshokin/chaincode-installer/internal/identity"
	"github.com/oshokin/chaincode-installer/internal/logger"
	"github.com/oshokin/chaincode-installer/internal/service/proposal"
)

// Options contains inputs for the installer entry point.
type Options struct {
	// ConfigPath is an optional path to the connection settings file.
	ConfigPath string
	// Name is the chaincode name to install.
	Name string
	// Path is the logical chaincode path within the source root.
	Path string
	// Version is the chaincode version string.
	Version string
	// Language is the chaincode implementation language tag ("golang", "java").
	Language string
	// SourceRoot optionally overrides the source root from the settings file.
	SourceRoot string
	// DevMode builds a development-mode proposal regardless of the settings file.
	DevMode bool
	// OutputFile, when set, writes the serialized unsigned proposal to disk
	// instead of signing and sending it to the peer.
	OutputFile string
}

// proposalFilePermissions restricts written proposal files to the owner.
const proposalFilePermissions = 0o600

// installer carries the resolved configuration for a single install run.
// It is unexported—callers should use Run, which encapsulates setup and validation.
type installer struct {
	// cfg holds peer connection and identity settings.
	cfg *config.Config
	// opts holds the per-invocation install request.
	opts *Options
}

// Run executes the install workflow: build the proposal, then either persist
// it for an external signer or sign it and submit it to the peer.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "chaincode-installer")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	inst := &installer{
		cfg:  cfg,
		opts: opts,
	}

	if err = inst.Run(ctx); err != nil {
		return fmt.Errorf("installer failed: %w", err)
	}

	logger.Info(ctx, "Installer completed successfully")

	return nil
}

// Run builds the install proposal and dispatches it.
func (i *installer) Run(ctx context.Context) error {
	lang, ok := chaincode.ParseLanguage(i.opts.Language)
	if !ok && i.opts.Language != "" {
		return fmt.Errorf("%w: %s", chaincode.ErrUnsupportedLanguage, i.opts.Language)
	}

	creator, err := identity.CreatorFromFile(i.cfg.MSPID, i.cfg.CertFile)
	if err != nil {
		return err
	}

	sourceRoot := i.opts.SourceRoot
	if sourceRoot == "" {
		sourceRoot = i.cfg.SourceRoot
	}

	devMode := i.opts.DevMode || i.cfg.DevMode

	logger.InfoKV(ctx, "Building install proposal",
		"name", i.opts.Name,
		"language", lang.Name(),
		"dev_mode", devMode)

	prop, txID, err := proposal.NewInstallBuilder().
		Name(i.opts.Name).
		Path(i.opts.Path).
		Version(i.opts.Version).
		Language(lang).
		SourceRoot(sourceRoot).
		DevMode(devMode).
		Creator(creator).
		Build(ctx)
	if err != nil {
		return err
	}

	if i.opts.OutputFile != "" {
		return i.writeProposal(ctx, prop, txID)
	}

	return i.sendProposal(ctx, prop, txID)
}

// writeProposal persists the serialized unsigned proposal for offline signing.
func (i *installer) writeProposal(ctx context.Context, prop *peer.Proposal, txID string) error {
	contents, err := proto.Marshal(prop)
	if err != nil {
		return fmt.Errorf("marshal proposal: %w", err)
	}

	path := filepath.Clean(i.opts.OutputFile)
	if err := os.WriteFile(path, contents, proposalFilePermissions); err != nil {
		return fmt.Errorf("write proposal: %w", err)
	}

	logger.InfoKV(ctx, "Wrote unsigned install proposal",
		"path", path,
		"tx_id", txID)

	return nil
}

// sendProposal signs the proposal and submits it to the configured peer.
func (i *installer) sendProposal(ctx context.Context, prop *peer.Proposal, txID string) error {
	signer, err := identity.NewECDSASignerFromFile(i.cfg.KeyFile)
	if err != nil {
		return err
	}

	client, err := endorser.Dial(ctx, i.cfg.PeerAddress, endorser.WithCallTimeout(i.cfg.Timeout))
	if err != nil {
		return err
	}

	// Best-effort cleanup.
	defer func() {
		_ = client.Close()
	}()

	response, err := client.ProcessProposal(ctx, prop, signer)
	if err != nil {
		return err
	}

	logger.InfoKV(ctx, "Peer accepted install proposal",
		"peer", i.cfg.PeerAddress,
		"tx_id", txID,
		"status", response.GetResponse().GetStatus())

	return nil
}
