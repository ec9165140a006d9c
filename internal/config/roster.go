package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shreya0626/secret-santa/internal/domain"
)

// rosterFile is the on-disk roster layout:
//
//	participants:
//	  - Shreya
//	  - Govind
type rosterFile struct {
	Participants []string `yaml:"participants"`
}

// LoadRoster reads the roster from path, or returns the built-in roster when
// path is empty.
func LoadRoster(path string) (*domain.Roster, error) {
	if path == "" {
		return domain.NewRoster(domain.DefaultRoster)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read roster: %w", err)
	}
	var f rosterFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse roster %s: %w", path, err)
	}
	r, err := domain.NewRoster(f.Participants)
	if err != nil {
		return nil, fmt.Errorf("roster %s: %w", path, err)
	}
	return r, nil
}
