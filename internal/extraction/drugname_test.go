package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanDrugNameStripsDoseAndForm(t *testing.T) {
	assert.Equal(t, "Lamotrigine", CleanDrugName("Lamotrigine 100mg tablet"))
}

func TestCleanDrugNameStripsReleaseType(t *testing.T) {
	assert.Equal(t, "Depakote", CleanDrugName("Depakote ER 250 mg oral tablet"))
	assert.Equal(t, "Keppra", CleanDrugName("Keppra extended release"))
}

func TestCleanDrugNameTitleCases(t *testing.T) {
	assert.Equal(t, "Levetiracetam", CleanDrugName("LEVETIRACETAM"))
	assert.Equal(t, "Valproic Acid", CleanDrugName("valproic acid"))
}

func TestCleanDrugNameStripsPunctuation(t *testing.T) {
	assert.Equal(t, "Lacosamide", CleanDrugName("lacosamide (oral)"))
}

func TestCleanDrugNameIdempotent(t *testing.T) {
	inputs := []string{
		"Lamotrigine 100mg extended release tablet",
		"Depakote ER 250 mg",
		"valproic acid",
		"Oxcarbazepine 300 mg oral suspension",
	}

	for _, input := range inputs {
		once := CleanDrugName(input)
		assert.Equal(t, once, CleanDrugName(once), "input %q", input)
	}
}

func TestCleanDrugNameAllNoise(t *testing.T) {
	assert.Equal(t, "", CleanDrugName("100mg tablet"))
}
