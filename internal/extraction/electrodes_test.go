package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitElectrodesSingle(t *testing.T) {
	assert.Equal(t, []string{"RMH1"}, SplitElectrodes("RMH1"))
}

func TestSplitElectrodesCompactRange(t *testing.T) {
	assert.Equal(t, []string{"RMH1", "RMH2", "RMH3", "RMH4"}, SplitElectrodes("RMH1-4"))
}

func TestSplitElectrodesSlashRange(t *testing.T) {
	assert.Equal(t, []string{"LAH2", "LAH3", "LAH4"}, SplitElectrodes("LAH2/4"))
}

func TestSplitElectrodesMultipleRanges(t *testing.T) {
	got := SplitElectrodes("RAI4-6, LSMA2-4")
	assert.Equal(t, []string{"RAI4", "RAI5", "RAI6", "LSMA2", "LSMA3", "LSMA4"}, got)
}

func TestSplitElectrodesScatteredTokens(t *testing.T) {
	// Dash and upper bound split off as their own tokens.
	assert.Equal(t, []string{"RMH1", "RMH2", "RMH3", "RMH4"}, SplitElectrodes("RMH1,-,4"))
}

func TestSplitElectrodesPrefixThenRange(t *testing.T) {
	assert.Equal(t, []string{"RMH1", "RMH2", "RMH3", "RMH4"}, SplitElectrodes("RMH,1-4"))
}

func TestSplitElectrodesLowercaseAndSpaces(t *testing.T) {
	assert.Equal(t, []string{"RMH1", "RMH2"}, SplitElectrodes(" rmh1 , rmh2 "))
}

func TestSplitElectrodesMixedRangeAndSingles(t *testing.T) {
	got := SplitElectrodes("LAH1, RMH2-4, LPI7")
	assert.Equal(t, []string{"LAH1", "RMH2", "RMH3", "RMH4", "LPI7"}, got)
}

func TestSplitElectrodesEmpty(t *testing.T) {
	assert.Empty(t, SplitElectrodes(""))
	assert.Empty(t, SplitElectrodes("  ,  "))
}
