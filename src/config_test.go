package nrsc5

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStationPresetsParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: KQED
  frequency_hz: 88500000
  band: FM
  program: 0
- name: KCBS
  frequency_hz: 740000
  band: AM
  program: 0
`), 0o644))

	presets, err := LoadStationPresets(path)
	require.NoError(t, err)
	require.Len(t, presets, 2)
	assert.Equal(t, "KQED", presets[0].Name)
	assert.Equal(t, 88500000.0, presets[0].FrequencyHz)
	assert.Equal(t, "AM", presets[1].Band)
}

func TestLoadStationPresetsMissingFile(t *testing.T) {
	_, err := LoadStationPresets(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestFindStationPreset(t *testing.T) {
	presets := []StationPreset{{Name: "KQED"}, {Name: "KCBS"}}

	got, ok := FindStationPreset(presets, "KCBS")
	require.True(t, ok)
	assert.Equal(t, "KCBS", got.Name)

	_, ok = FindStationPreset(presets, "WXYZ")
	assert.False(t, ok)
}

func TestParseBand(t *testing.T) {
	cases := []struct {
		in      string
		want    Band
		wantErr bool
	}{
		{"FM", BandFM, false},
		{"fm", BandFM, false},
		{"", BandFM, false},
		{"AM", BandAM, false},
		{"am", BandAM, false},
		{"shortwave", BandFM, true},
	}
	for _, c := range cases {
		got, err := ParseBand(c.in)
		assert.Equal(t, c.want, got)
		if c.wantErr {
			assert.Error(t, err)
		} else {
			assert.NoError(t, err)
		}
	}
}
