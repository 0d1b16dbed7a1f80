package nrsc5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSIGTableProjectsAudioAndDataServices(t *testing.T) {
	st := newPIDSState()
	st.audioServices[0] = audioServiceDesc{access: 1, typ: 2, soundExp: 3}
	st.audioServices[2] = audioServiceDesc{access: 0, typ: 5, soundExp: 1}
	st.dataServices[0] = dataServiceDesc{access: 1, typ: 7, mimeType: 0xBEEF}

	table := buildSIGTable(st)
	assert.Len(t, table, 3)

	var mps, sps2, sis0 *SIGService
	for i := range table {
		switch {
		case table[i].Name == "MPS":
			mps = &table[i]
		case table[i].Name == "SPS2":
			sps2 = &table[i]
		case table[i].Name == "SIS0":
			sis0 = &table[i]
		}
	}

	require.NotNil(t, mps)
	assert.False(t, mps.IsData)
	assert.Equal(t, 0, mps.Number)
	require.Len(t, mps.Components, 1)
	assert.Equal(t, 3, mps.Components[0].SoundExp)

	require.NotNil(t, sps2)
	assert.Equal(t, 2, sps2.Number)

	require.NotNil(t, sis0)
	assert.True(t, sis0.IsData)
	assert.Equal(t, uint32(0xBEEF), sis0.Components[0].MIMEType)
}

func TestBuildSIGTableOmitsUnsetServices(t *testing.T) {
	st := newPIDSState()
	table := buildSIGTable(st)
	assert.Empty(t, table)
}
