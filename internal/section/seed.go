package section

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/section/entity"
)

//go:embed defaults.yaml
var defaultsYAML []byte

var keyPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

type seedFile struct {
	Sections []entity.Section `yaml:"sections"`
}

// ParseSeed decodes a sections seed document and checks every key.
func ParseSeed(data []byte) ([]entity.Section, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse sections seed: %w", err)
	}
	seen := map[string]bool{}
	for i, s := range f.Sections {
		if !keyPattern.MatchString(s.Section) {
			return nil, fmt.Errorf("sections seed: entry %d has invalid key %q", i, s.Section)
		}
		if seen[s.Section] {
			return nil, fmt.Errorf("sections seed: duplicate key %q", s.Section)
		}
		seen[s.Section] = true
	}
	return f.Sections, nil
}

// DefaultSections returns the embedded defaults.
func DefaultSections() []entity.Section {
	out, err := ParseSeed(defaultsYAML)
	if err != nil {
		panic(err)
	}
	return out
}

// LoadSeedFile reads a seed document from path, or the embedded defaults when
// path is empty.
func LoadSeedFile(path string) ([]entity.Section, error) {
	if path == "" {
		return DefaultSections(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeed(data)
}
