// Package config loads the source registry: the static YAML description
// of every remote source the pipeline ingests from.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/archivelab/papertrail/internal/core/domain"
)

// Registry is the parsed source registry. Sources are immutable after
// load.
type Registry struct {
	Sources []domain.Source `yaml:"sources"`
}

// LoadRegistry reads and validates the registry at path.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry parses and validates registry YAML.
func ParseRegistry(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse registry: %w", err)
	}

	seen := make(map[string]bool, len(reg.Sources))
	for i := range reg.Sources {
		src := &reg.Sources[i]
		if err := validateSource(src); err != nil {
			return nil, fmt.Errorf("source %q: %w", src.ID, err)
		}
		if seen[src.ID] {
			return nil, fmt.Errorf("source %q: %w: duplicate id", src.ID, domain.ErrInvalidInput)
		}
		seen[src.ID] = true
	}
	return &reg, nil
}

// Get returns the source with the given ID.
func (r *Registry) Get(id string) (*domain.Source, error) {
	for i := range r.Sources {
		if r.Sources[i].ID == id {
			return &r.Sources[i], nil
		}
	}
	return nil, fmt.Errorf("source %q: %w", id, domain.ErrNotFound)
}

// Select returns the sources matching ids, or all sources when ids is
// empty. Order follows the registry.
func (r *Registry) Select(ids []string) ([]domain.Source, error) {
	if len(ids) == 0 {
		return r.Sources, nil
	}
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var out []domain.Source
	for _, src := range r.Sources {
		if want[src.ID] {
			out = append(out, src)
			delete(want, src.ID)
		}
	}
	for id := range want {
		return nil, fmt.Errorf("source %q: %w", id, domain.ErrNotFound)
	}
	return out, nil
}

func validateSource(src *domain.Source) error {
	if src.ID == "" {
		return fmt.Errorf("%w: missing id", domain.ErrInvalidInput)
	}
	if src.Name == "" {
		return fmt.Errorf("%w: missing name", domain.ErrInvalidInput)
	}
	switch src.Kind {
	case domain.KindListing, domain.KindPaginated, domain.KindDropFolder:
	case domain.KindEnumerate:
		if src.Pattern == "" {
			return fmt.Errorf("%w: enumerate source needs a pattern", domain.ErrInvalidInput)
		}
		if src.EnumerateTo < src.EnumerateFrom {
			return fmt.Errorf("%w: empty enumerate range", domain.ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedKind, src.Kind)
	}
	if src.BaseURL == "" {
		return fmt.Errorf("%w: missing base_url", domain.ErrInvalidInput)
	}
	switch src.AuthMode {
	case "", domain.AuthNone, domain.AuthCookie:
	default:
		return fmt.Errorf("%w: unknown auth_mode %q", domain.ErrInvalidInput, src.AuthMode)
	}
	return nil
}
