package proposal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hyperledger/fabric-protos-go/peer"

	"github.com/oshokin/chaincode-installer/internal/archive"
	"github.com/oshokin/chaincode-installer/internal/domain/chaincode"
	"github.com/oshokin/chaincode-installer/internal/logger"
	"github.com/oshokin/chaincode-installer/internal/resource"
)

const (
	// lifecycleChaincodeName is the system chaincode handling install requests.
	lifecycleChaincodeName = "lccc"

	// installCommand is the literal command token of an install invocation.
	installCommand = "install"

	// buildDescriptorFilename is the name of the generated build descriptor
	// written into the source tree for languages that need one.
	buildDescriptorFilename = "Dockerfile"

	// buildDescriptorPermissions restricts the generated descriptor to the owner.
	buildDescriptorPermissions = 0o600
)

var (
	// ErrNameRequired is returned when the chaincode name is missing.
	ErrNameRequired = errors.New("chaincode name must be provided")
	// ErrPathRequired is returned when the chaincode path is missing in networked mode.
	ErrPathRequired = errors.New("chaincode path must be provided")
	// errBuilderReused is returned when Build is called more than once on a builder.
	errBuilderReused = errors.New("install builder is single-use")
)

// Packager produces a compressed archive of the source tree rooted at dir,
// storing entries under prefix.
type Packager func(dir, prefix string) ([]byte, error)

// TemplateLoader returns the contents of a named build-descriptor template.
type TemplateLoader func(id string) ([]byte, error)

// InstallBuilder accumulates an install request and turns it into a
// transport-ready install proposal on Build. Configure it via the fluent
// setters, then call Build exactly once; the builder is single-use and not
// safe for concurrent mutation.
type InstallBuilder struct {
	name       string
	path       string
	version    string
	sourceRoot string
	lang       chaincode.Language
	devMode    bool
	creator    []byte

	env          chaincode.EnvFunc
	pack         Packager
	loadTemplate TemplateLoader

	built bool
}

// NewInstallBuilder returns a builder wired to the real environment,
// archive packager and embedded templates.
func NewInstallBuilder() *InstallBuilder {
	return &InstallBuilder{
		lang:         chaincode.Golang,
		env:          os.LookupEnv,
		pack:         archive.TarGz,
		loadTemplate: resource.Load,
	}
}

// Name sets the chaincode name.
func (b *InstallBuilder) Name(name string) *InstallBuilder {
	b.name = name

	return b
}

// Path sets the logical chaincode path within the source root.
func (b *InstallBuilder) Path(path string) *InstallBuilder {
	b.path = path

	return b
}

// Version sets the chaincode version string.
func (b *InstallBuilder) Version(version string) *InstallBuilder {
	b.version = version

	return b
}

// Language sets the chaincode implementation language.
func (b *InstallBuilder) Language(lang chaincode.Language) *InstallBuilder {
	b.lang = lang

	return b
}

// SourceRoot sets an explicit source root directory, overriding language defaults.
func (b *InstallBuilder) SourceRoot(root string) *InstallBuilder {
	b.sourceRoot = root

	return b
}

// DevMode switches the builder to development mode, where the peer already
// runs the chaincode out-of-process and only its name is registered.
func (b *InstallBuilder) DevMode(enabled bool) *InstallBuilder {
	b.devMode = enabled

	return b
}

// Creator sets the serialized identity of the submitter.
func (b *InstallBuilder) Creator(creator []byte) *InstallBuilder {
	b.creator = creator

	return b
}

// Env overrides the environment lookup used during source resolution.
func (b *InstallBuilder) Env(env chaincode.EnvFunc) *InstallBuilder {
	b.env = env

	return b
}

// Packager overrides the archive packager.
func (b *InstallBuilder) Packager(pack Packager) *InstallBuilder {
	b.pack = pack

	return b
}

// TemplateLoader overrides the build-descriptor template loader.
func (b *InstallBuilder) TemplateLoader(load TemplateLoader) *InstallBuilder {
	b.loadTemplate = load

	return b
}

// Build assembles the install proposal and its transaction id.
// Every failure is reported as a single wrapped error; no partial result is returned.
func (b *InstallBuilder) Build(ctx context.Context) (*peer.Proposal, string, error) {
	if b.built {
		return nil, "", errBuilderReused
	}

	b.built = true

	descriptor, specType, err := b.assembleDescriptor(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("construct install proposal: %w", err)
	}

	prop, txID, err := b.finalize(descriptor, specType)
	if err != nil {
		return nil, "", fmt.Errorf("construct install proposal: %w", err)
	}

	return prop, txID, nil
}

// assembleDescriptor dispatches on the execution mode and produces the
// serialized deployment descriptor plus the proposal's chaincode type.
func (b *InstallBuilder) assembleDescriptor(ctx context.Context) ([]byte, peer.ChaincodeSpec_Type, error) {
	if b.name == "" {
		return nil, 0, ErrNameRequired
	}

	if b.devMode {
		logger.DebugKV(ctx, "Building development-mode descriptor", "name", b.name)

		// Out-of-process chaincode registers by name only: no path, no
		// version, no code package.
		descriptor, err := EncodeDeploymentSpec(peer.ChaincodeSpec_GOLANG, b.name, "", "", nil)
		if err != nil {
			return nil, 0, err
		}

		return descriptor, peer.ChaincodeSpec_GOLANG, nil
	}

	if b.path == "" {
		return nil, 0, ErrPathRequired
	}

	if !b.lang.Supported() {
		return nil, 0, chaincode.ErrUnsupportedLanguage
	}

	src, err := b.lang.ResolveSource(b.sourceRoot, b.path, b.env)
	if err != nil {
		return nil, 0, err
	}

	logger.DebugKV(ctx, "Resolved chaincode source",
		"language", b.lang.Name(),
		"dir", src.Dir,
		"prefix", src.Prefix)

	codePackage, err := b.packageSource(ctx, src)
	if err != nil {
		return nil, 0, err
	}

	descriptor, err := EncodeDeploymentSpec(b.lang.SpecType(), b.name, b.path, b.version, codePackage)
	if err != nil {
		return nil, 0, err
	}

	return descriptor, b.lang.SpecType(), nil
}

// packageSource writes the build descriptor when the language needs one,
// packages the source tree, and removes the descriptor on every exit path.
func (b *InstallBuilder) packageSource(ctx context.Context, src chaincode.Source) ([]byte, error) {
	cleanup, err := b.writeBuildDescriptor(ctx, src.Dir)
	if err != nil {
		return nil, err
	}

	defer cleanup()

	codePackage, err := b.pack(src.Dir, src.Prefix)
	if err != nil {
		return nil, fmt.Errorf("package chaincode source: %w", err)
	}

	return codePackage, nil
}

// writeBuildDescriptor renders the language's build-descriptor template with
// the chaincode name into the source directory. The returned cleanup function
// removes the generated file; it is a no-op when the language needs none.
func (b *InstallBuilder) writeBuildDescriptor(ctx context.Context, dir string) (func(), error) {
	templateID := b.lang.BuildDescriptorTemplate()
	if templateID == "" {
		return func() {}, nil
	}

	template, err := b.loadTemplate(templateID)
	if err != nil {
		return nil, err
	}

	descriptorPath := filepath.Join(dir, buildDescriptorFilename)
	contents := fmt.Sprintf(string(template), b.name)

	if err := os.WriteFile(descriptorPath, []byte(contents), buildDescriptorPermissions); err != nil {
		return nil, fmt.Errorf("write build descriptor: %w", err)
	}

	logger.DebugKV(ctx, "Created build descriptor", "path", descriptorPath)

	cleanup := func() {
		// Removal failure must not mask the failure being reported, so it is
		// only logged.
		if err := os.Remove(descriptorPath); err != nil {
			logger.ErrorKV(ctx, "Failed to remove generated build descriptor",
				"path", descriptorPath,
				"error", err)
		}
	}

	return cleanup, nil
}

// finalize wraps the deployment descriptor into an install invocation of the
// lifecycle system chaincode and assembles the proposal. Install proposals
// are not scoped to a channel, so the channel id stays empty.
func (b *InstallBuilder) finalize(descriptor []byte, specType peer.ChaincodeSpec_Type) (*peer.Proposal, string, error) {
	invocation := &peer.ChaincodeInvocationSpec{
		ChaincodeSpec: &peer.ChaincodeSpec{
			Type: specType,
			ChaincodeId: &peer.ChaincodeID{
				Name: lifecycleChaincodeName,
			},
			Input: &peer.ChaincodeInput{
				Args: [][]byte{[]byte(installCommand), descriptor},
			},
		},
	}

	return assemble(invocation, "", b.creator)
}
