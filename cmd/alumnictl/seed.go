package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/jagritiyatra/alumnidex/internal/domain/profile"
)

// readProfiles decodes a list of profiles and assigns ids to those without one.
func readProfiles(path string) ([]*profile.Profile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}

	var ps []*profile.Profile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &ps)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &ps)
	default:
		return nil, fmt.Errorf("unsupported seed file extension %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse seed file: %w", err)
	}

	for i, p := range ps {
		if p == nil {
			return nil, fmt.Errorf("profile %d is empty", i)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("profile %d: %w", i, err)
		}
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
	}
	return ps, nil
}
