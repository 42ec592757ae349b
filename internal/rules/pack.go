package rules

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// packEntry is one rule definition in a YAML rule pack. Parameters are typed
// only once the rule type is known, so they stay generic here and go through
// the same decoder as the JSON wire form.
type packEntry struct {
	Type        string                 `yaml:"type"`
	Name        string                 `yaml:"name"`
	Description string                 `yaml:"description"`
	Priority    int                    `yaml:"priority"`
	Active      *bool                  `yaml:"active"`
	Parameters  map[string]interface{} `yaml:"parameters"`
}

type packDocument struct {
	Rules []packEntry `yaml:"rules"`
}

// LoadPack reads a YAML rule pack and creates every rule in it. The first
// invalid entry aborts the load so a half-applied pack never goes unnoticed.
func (s *Store) LoadPack(r io.Reader) (int, error) {
	var doc packDocument
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return 0, fmt.Errorf("failed to parse rule pack: %w", err)
	}

	created := 0
	for i, entry := range doc.Rules {
		ruleType, err := ParseType(entry.Type)
		if err != nil {
			return created, fmt.Errorf("rule pack entry %d: %w", i+1, err)
		}

		rawParams, err := json.Marshal(entry.Parameters)
		if err != nil {
			return created, fmt.Errorf("rule pack entry %d: %w", i+1, err)
		}
		params, err := DecodeParameters(ruleType, rawParams)
		if err != nil {
			return created, fmt.Errorf("rule pack entry %d: %w", i+1, err)
		}

		active := true
		if entry.Active != nil {
			active = *entry.Active
		}

		if _, err := s.Create(Rule{
			Type:        ruleType,
			Name:        entry.Name,
			Description: entry.Description,
			Priority:    entry.Priority,
			IsActive:    active,
			Parameters:  params,
		}); err != nil {
			return created, fmt.Errorf("rule pack entry %d: %w", i+1, err)
		}
		created++
	}
	return created, nil
}
