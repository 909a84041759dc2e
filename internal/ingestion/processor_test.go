package ingestion

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfortuny/neuroclinaical/internal/chat"
	"github.com/gabrielfortuny/neuroclinaical/internal/extraction"
	"github.com/gabrielfortuny/neuroclinaical/internal/retrieval"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/models"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/sqlite"
)

// routingCompleter answers extraction and summary prompts with canned
// completions, keyed on the prompt's instruction text.
type routingCompleter struct{}

func (routingCompleter) Complete(_ context.Context, prompt string) string {
	switch {
	case strings.Contains(prompt, "seizure events"):
		return `[{"start_time": "14:32:00", "duration": "1 min 30 sec", "electrodes_involved": "RMH1-2"}]`
	case strings.Contains(prompt, "drug administration"):
		return `[{"name": "Keppra 500mg", "dose_mg": 500, "frequency_code": "BID"}]`
	default:
		return "Patient had one seizure on day 1 and received Keppra twice daily."
	}
}

type constantEmbedder struct{}

func (constantEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i := range texts {
		vectors[i] = []float32{1, float32(len(texts[i]))}
	}
	return vectors, nil
}

func newTestProcessor(t *testing.T, cache CacheInvalidator) (*Processor, *sqlite.Client) {
	t.Helper()

	store, err := sqlite.NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.InitSchema())
	t.Cleanup(func() { store.Close() })

	completer := routingCompleter{}
	orchestrator := extraction.NewOrchestrator(completer, 2, true)
	retriever := retrieval.NewRetriever(constantEmbedder{}, nil, 150, 0)
	engine := chat.NewEngine(completer, retriever, 5)

	return NewProcessor(store, orchestrator, engine, constantEmbedder{}, nil, cache, 150, 0), store
}

func insertTestPatient(t *testing.T, store *sqlite.Client) string {
	t.Helper()

	patient := &models.Patient{ID: "patient-1", Name: "Test Patient"}
	require.NoError(t, store.InsertPatient(patient))
	return patient.ID
}

func TestProcessReportPersistsRecords(t *testing.T) {
	processor, store := newTestProcessor(t, nil)
	patientID := insertTestPatient(t, store)

	doc := "Day 1\nSeizure at 14:32 involving RMH contacts. Keppra given.\nDay 2\nQuiet day, medication continued.\n"

	report, err := processor.ProcessReport(context.Background(), patientID, "report.txt", "txt", doc)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Days)
	assert.NotEmpty(t, report.Summary)

	seizures, err := store.GetSeizures(report.ID)
	require.NoError(t, err)
	require.Len(t, seizures, 2) // one canned seizure per day
	assert.Equal(t, []string{"RMH1", "RMH2"}, seizures[0].Electrodes)
	assert.Equal(t, 90, seizures[0].DurationSeconds)

	drugs, err := store.GetDrugAdministrations(report.ID)
	require.NoError(t, err)
	require.Len(t, drugs, 4) // BID expands to two administrations per day
	assert.Equal(t, "Keppra", drugs[0].Name)
	require.NotNil(t, drugs[0].DoseMG)
	assert.Equal(t, 500.0, *drugs[0].DoseMG)
}

func TestProcessReportNoDayHeaders(t *testing.T) {
	processor, store := newTestProcessor(t, nil)
	patientID := insertTestPatient(t, store)

	report, err := processor.ProcessReport(context.Background(), patientID, "note.txt", "txt", "A short note with no day structure but a seizure mention.")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Days)

	// Implicit day-one fallback still extracts records.
	seizures, err := store.GetSeizures(report.ID)
	require.NoError(t, err)
	require.Len(t, seizures, 1)
	assert.Equal(t, 1, seizures[0].Day)
}

type countingInvalidator struct {
	calls int
}

func (c *countingInvalidator) InvalidateReportCache(_ context.Context) error {
	c.calls++
	return nil
}

func TestProcessReportInvalidatesAnswerCache(t *testing.T) {
	cache := &countingInvalidator{}
	processor, store := newTestProcessor(t, cache)
	patientID := insertTestPatient(t, store)

	_, err := processor.ProcessReport(context.Background(), patientID, "report.txt", "txt", "Day 1\nSeizure at 14:32 involving RMH contacts.\n")
	require.NoError(t, err)

	// stale cached answers may cite replaced text
	assert.Equal(t, 1, cache.calls)
}
