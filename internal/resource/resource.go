package resource

import (
	"embed"
	"fmt"
	"path"
)

//go:embed templates
var templates embed.FS

// Load returns the contents of the named build-descriptor template.
// It fails when no template with that id is embedded.
func Load(id string) ([]byte, error) {
	contents, err := templates.ReadFile(path.Join("templates", id))
	if err != nil {
		return nil, fmt.Errorf("load template %q: %w", id, err)
	}

	return contents, nil
}
