package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSeizuresBasic(t *testing.T) {
	raw := `Here are the events:
[
  {"start_time": "14:32:00", "duration": "1 min 30 sec", "electrodes_involved": "RMH1-4"}
]`

	records := NormalizeSeizures(2, raw)
	require.Len(t, records, 1)

	assert.Equal(t, 2, records[0].Day)
	require.NotNil(t, records[0].StartTime)
	assert.Equal(t, "14:32:00", *records[0].StartTime)
	assert.Equal(t, 90, records[0].DurationSeconds)
	assert.Equal(t, []string{"RMH1", "RMH2", "RMH3", "RMH4"}, records[0].Electrodes)
}

func TestNormalizeSeizuresFieldAliases(t *testing.T) {
	raw := `[{"seizure_time": "8pm", "duration": "45 seconds", "seizure_onset_electrodes": "LAH1, LAH2"}]`

	records := NormalizeSeizures(1, raw)
	require.Len(t, records, 1)

	require.NotNil(t, records[0].StartTime)
	assert.Equal(t, "20:00:00", *records[0].StartTime)
	assert.Equal(t, 45, records[0].DurationSeconds)
	assert.Equal(t, []string{"LAH1", "LAH2"}, records[0].Electrodes)
}

func TestNormalizeSeizuresCanonicalFieldWins(t *testing.T) {
	raw := `[{"start_time": "10:00", "seizure_time": "22:00", "duration": 30, "electrodes_involved": "RMH1"}]`

	records := NormalizeSeizures(1, raw)
	require.Len(t, records, 1)
	require.NotNil(t, records[0].StartTime)
	assert.Equal(t, "10:00:00", *records[0].StartTime)
}

func TestNormalizeSeizuresSkipsIncompleteEntries(t *testing.T) {
	raw := `[
  {"start_time": "09:00:00", "duration": "30 sec"},
  {"start_time": "10:00:00", "duration": "1 min", "electrodes_involved": "RAI4-6"}
]`

	records := NormalizeSeizures(1, raw)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"RAI4", "RAI5", "RAI6"}, records[0].Electrodes)
}

func TestNormalizeSeizuresElectrodeList(t *testing.T) {
	raw := `[{"start_time": "12:00", "duration": 10, "electrodes_involved": ["RMH1-2", "LPI5"]}]`

	records := NormalizeSeizures(1, raw)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"RMH1", "RMH2", "LPI5"}, records[0].Electrodes)
}

func TestNormalizeSeizuresNumericDuration(t *testing.T) {
	raw := `[{"start_time": "12:00", "duration": 75, "electrodes_involved": "RMH1"}]`

	records := NormalizeSeizures(1, raw)
	require.Len(t, records, 1)
	assert.Equal(t, 75, records[0].DurationSeconds)
}

func TestNormalizeSeizuresUnparsableStartTime(t *testing.T) {
	raw := `[{"start_time": "unknown", "duration": "30 sec", "electrodes_involved": "RMH1"}]`

	records := NormalizeSeizures(1, raw)
	require.Len(t, records, 1)
	assert.Nil(t, records[0].StartTime)
}

func TestNormalizeSeizuresNoArray(t *testing.T) {
	assert.Nil(t, NormalizeSeizures(1, "no events were found for this day"))
	assert.Nil(t, NormalizeSeizures(1, ""))
}

func TestNormalizeSeizuresMalformedJSON(t *testing.T) {
	assert.Nil(t, NormalizeSeizures(1, `[{"start_time": }]`))
}
