package nrsc5

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StationPreset is one entry of a YAML-loaded list of known HD Radio
// station tunings, the receiver-side analogue of the teacher's
// YAML-loaded device-alias table.
type StationPreset struct {
	Name      string `yaml:"name"`
	FrequencyHz float64 `yaml:"frequency_hz"`
	Band      string  `yaml:"band"` // "FM" or "AM"
	Program   int     `yaml:"program"`
}

// LoadStationPresets reads a YAML file of StationPreset entries. The CLI
// tools do not call it; no command-line flag loads a preset file.
func LoadStationPresets(path string) ([]StationPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("nrsc5: reading station presets: %w", err)
	}
	var presets []StationPreset
	if err := yaml.Unmarshal(data, &presets); err != nil {
		return nil, fmt.Errorf("nrsc5: parsing station presets: %w", err)
	}
	return presets, nil
}

// FindStationPreset returns the preset matching name, case-sensitive, or false.
func FindStationPreset(presets []StationPreset, name string) (StationPreset, bool) {
	for _, p := range presets {
		if p.Name == name {
			return p, true
		}
	}
	return StationPreset{}, false
}

// ParseBand maps a preset's "FM"/"AM" string onto a Band value.
func ParseBand(s string) (Band, error) {
	switch s {
	case "FM", "fm", "":
		return BandFM, nil
	case "AM", "am":
		return BandAM, nil
	default:
		return BandFM, fmt.Errorf("nrsc5: unknown band %q", s)
	}
}
