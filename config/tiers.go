package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"TierlistBackend/internal/model"
)

// DefaultTiers is the tier set used when no TIERS_FILE is configured.
func DefaultTiers() []model.Tier {
	return []model.Tier{
		{ID: "S", Name: "S", Color: "#FF7F7F"},
		{ID: "A", Name: "A", Color: "#FFBF7F"},
		{ID: "B", Name: "B", Color: "#FFDF7F"},
		{ID: "C", Name: "C", Color: "#FFFF7F"},
		{ID: "D", Name: "D", Color: "#BFFF7F"},
	}
}

type tiersFile struct {
	Tiers []model.Tier `yaml:"tiers"`
}

// LoadTiers reads the tier set from a YAML file:
//
//	tiers:
//	  - id: S
//	    name: Superb
//	    color: "#FF7F7F"
//
// An empty path returns DefaultTiers. A missing name defaults to the id.
func LoadTiers(path string) ([]model.Tier, error) {
	if path == "" {
		return DefaultTiers(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tiers file: %w", err)
	}

	var f tiersFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tiers file %s: %w", path, err)
	}
	if len(f.Tiers) == 0 {
		return nil, errors.New("tiers file defines no tiers")
	}

	seen := make(map[model.TierID]bool, len(f.Tiers))
	for i := range f.Tiers {
		t := &f.Tiers[i]
		t.ID = model.TierID(strings.TrimSpace(string(t.ID)))
		if t.ID == model.Unranked {
			return nil, fmt.Errorf("tier %d: id is required", i)
		}
		if seen[t.ID] {
			return nil, fmt.Errorf("tier %d: duplicate id %q", i, t.ID)
		}
		seen[t.ID] = true
		if strings.TrimSpace(t.Name) == "" {
			t.Name = string(t.ID)
		}
	}
	return f.Tiers, nil
}
