package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PersonaPreset is a character definition loaded from a personas file and
// assigned to a participant at session start.
type PersonaPreset struct {
	Name        string `yaml:"name"`
	Participant string `yaml:"participant"`
	Background  string `yaml:"background"`
}

type personasFile struct {
	Personas []PersonaPreset `yaml:"personas"`
}

// LoadPersonas reads persona presets from a YAML file. A missing file is not
// an error; it returns an empty list.
func LoadPersonas(path string) ([]PersonaPreset, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading personas file: %w", err)
	}

	var f personasFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing personas file: %w", err)
	}

	for i, p := range f.Personas {
		if p.Name == "" || p.Participant == "" {
			return nil, fmt.Errorf("personas file entry %d: name and participant are required", i)
		}
	}

	return f.Personas, nil
}
