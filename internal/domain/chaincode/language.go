package chaincode

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hyperledger/fabric-protos-go/peer"
)

// EnvFunc looks up a named environment variable.
// The second return value reports whether the variable is present;
// absence is a valid outcome, not an error.
type EnvFunc func(name string) (string, bool)

// Source is the resolved location of a chaincode source tree:
// the directory to package and the path prefix entries carry inside the artifact.
type Source struct {
	// Dir is the absolute source directory on disk.
	Dir string
	// Prefix is the forward-slash path prefix embedded in the packaged artifact.
	Prefix string
}

var (
	// ErrUnsupportedLanguage is returned for language tags outside the supported set.
	ErrUnsupportedLanguage = errors.New("unsupported chaincode language")
	// ErrMissingSourceRoot is returned when no source root is given and none
	// can be read from the environment.
	ErrMissingSourceRoot = errors.New("chaincode source root is not set")
	// ErrInvalidSourceLayout is returned when the resolved source directory
	// does not exist or is not a directory.
	ErrInvalidSourceLayout = errors.New("invalid chaincode source layout")
)

// gopathEnvVar is the variable consulted for the Go source root when no
// explicit root is provided.
const gopathEnvVar = "GOPATH"

// Language identifies a chaincode implementation language. Each supported
// language carries its own source-layout resolver and build-descriptor policy,
// so the two never share branching logic.
type Language struct {
	// name is the human-readable tag, e.g. "golang".
	name string
	// specType is the wire-level chaincode type for deployment descriptors.
	specType peer.ChaincodeSpec_Type
	// buildDescriptorTemplate names the embedded template rendered into the
	// source tree before packaging; empty when the language needs none.
	buildDescriptorTemplate string
	// resolve computes the source location for this language.
	resolve func(root, ccPath string, env EnvFunc) (Source, error)
}

// Supported languages.
var (
	// Golang chaincode lives under <root>/src/<path>, with the root taken
	// from GOPATH when not given explicitly.
	Golang = Language{
		name:     "golang",
		specType: peer.ChaincodeSpec_GOLANG,
		resolve: func(root, ccPath string, env EnvFunc) (Source, error) {
			if root == "" {
				root, _ = env(gopathEnvVar)
			}

			if root == "" {
				return Source{}, ErrMissingSourceRoot
			}

			return Source{
				Dir:    filepath.Join(root, "src", ccPath),
				Prefix: path.Join("src", ccPath),
			}, nil
		},
	}

	// Java chaincode lives under <root>/<path>, defaulting the root to the
	// current working directory, and is packaged under a plain "src" prefix.
	Java = Language{
		name:                    "java",
		specType:                peer.ChaincodeSpec_JAVA,
		buildDescriptorTemplate: "java.docker",
		resolve: func(root, ccPath string, _ EnvFunc) (Source, error) {
			if root == "" {
				wd, err := os.Getwd()
				if err != nil {
					return Source{}, fmt.Errorf("resolve working directory: %w", err)
				}

				root = wd
			}

			return Source{
				Dir:    filepath.Join(root, ccPath),
				Prefix: "src",
			}, nil
		},
	}
)

// ParseLanguage maps a string tag to a supported language.
func ParseLanguage(s string) (Language, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "go", "golang":
		return Golang, true
	case "java":
		return Java, true
	default:
		return Language{}, false
	}
}

// Supported reports whether the language is one of the supported set.
// The zero Language is not supported.
func (l Language) Supported() bool {
	return l.resolve != nil
}

// Name returns the language tag.
func (l Language) Name() string {
	return l.name
}

// SpecType returns the wire-level chaincode type.
func (l Language) SpecType() peer.ChaincodeSpec_Type {
	return l.specType
}

// BuildDescriptorTemplate returns the name of the build-descriptor template
// this language needs before packaging, or empty when it needs none.
func (l Language) BuildDescriptorTemplate() string {
	return l.buildDescriptorTemplate
}

// ResolveSource computes the source directory and artifact path prefix for
// this language, then verifies the directory exists and is a directory.
func (l Language) ResolveSource(root, ccPath string, env EnvFunc) (Source, error) {
	if !l.Supported() {
		return Source{}, ErrUnsupportedLanguage
	}

	if env == nil {
		env = os.LookupEnv
	}

	src, err := l.resolve(root, ccPath, env)
	if err != nil {
		return Source{}, err
	}

	abs, err := filepath.Abs(src.Dir)
	if err != nil {
		return Source{}, fmt.Errorf("resolve source directory: %w", err)
	}

	src.Dir = abs

	info, err := os.Stat(src.Dir)
	if err != nil || !info.IsDir() {
		return Source{}, fmt.Errorf("%w: %s", ErrInvalidSourceLayout, src.Dir)
	}

	return src, nil
}
