package sqlite

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfortuny/neuroclinaical/internal/storage/models"
)

func newTestClient(t *testing.T) *Client {
	t.Helper()

	client, err := NewClient(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, client.InitSchema())
	t.Cleanup(func() { client.Close() })

	return client
}

func insertTestReport(t *testing.T, client *Client) *models.Report {
	t.Helper()

	now := time.Now()
	patient := &models.Patient{ID: uuid.NewString(), Name: "Test Patient", CreatedAt: now, UpdatedAt: now}
	require.NoError(t, client.InsertPatient(patient))

	report := &models.Report{
		ID:         uuid.NewString(),
		PatientID:  patient.ID,
		RawContent: "Day 1\nSeizure at 14:32.\n",
		Filetype:   "txt",
		Days:       1,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	require.NoError(t, client.InsertReport(report))

	return report
}

func TestReportRoundTrip(t *testing.T) {
	client := newTestClient(t)
	report := insertTestReport(t, client)

	got, err := client.GetReport(report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.PatientID, got.PatientID)
	assert.Equal(t, report.RawContent, got.RawContent)
	assert.Equal(t, 1, got.Days)
}

func TestUpdateReportSummary(t *testing.T) {
	client := newTestClient(t)
	report := insertTestReport(t, client)

	require.NoError(t, client.UpdateReportSummary(report.ID, "One seizure on day 1."))

	got, err := client.GetReport(report.ID)
	require.NoError(t, err)
	assert.Equal(t, "One seizure on day 1.", got.Summary)
}

func TestSeizureElectrodeDedup(t *testing.T) {
	client := newTestClient(t)
	report := insertTestReport(t, client)

	start := "14:32:00"
	first := &models.Seizure{
		ID:              uuid.NewString(),
		ReportID:        report.ID,
		Day:             1,
		StartTime:       &start,
		DurationSeconds: 90,
		Electrodes:      []string{"RMH1", "RMH2"},
		CreatedAt:       time.Now(),
	}
	require.NoError(t, client.InsertSeizure(first))

	// Shares RMH2: the electrode row must be reused, not duplicated.
	second := &models.Seizure{
		ID:              uuid.NewString(),
		ReportID:        report.ID,
		Day:             2,
		DurationSeconds: 30,
		Electrodes:      []string{"RMH2", "LAH1"},
		CreatedAt:       time.Now(),
	}
	require.NoError(t, client.InsertSeizure(second))

	seizures, err := client.GetSeizures(report.ID)
	require.NoError(t, err)
	require.Len(t, seizures, 2)

	assert.Equal(t, []string{"RMH1", "RMH2"}, seizures[0].Electrodes)
	require.NotNil(t, seizures[0].StartTime)
	assert.Equal(t, "14:32:00", *seizures[0].StartTime)

	assert.Equal(t, []string{"LAH1", "RMH2"}, seizures[1].Electrodes)
	assert.Nil(t, seizures[1].StartTime)

	var count int
	require.NoError(t, client.db.QueryRow(`SELECT COUNT(*) FROM electrodes`).Scan(&count))
	assert.Equal(t, 3, count)
}

func TestDrugAdministrationRoundTrip(t *testing.T) {
	client := newTestClient(t)
	report := insertTestReport(t, client)

	dose := 500.0
	timeOfDay := "08:00:00"
	admin := &models.DrugAdministration{
		ID:        uuid.NewString(),
		ReportID:  report.ID,
		Name:      "Keppra",
		Day:       1,
		DoseMG:    &dose,
		TimeOfDay: &timeOfDay,
		CreatedAt: time.Now(),
	}
	require.NoError(t, client.InsertDrugAdministration(admin))

	nilDose := &models.DrugAdministration{
		ID:        uuid.NewString(),
		ReportID:  report.ID,
		Name:      "Ativan",
		Day:       2,
		CreatedAt: time.Now(),
	}
	require.NoError(t, client.InsertDrugAdministration(nilDose))

	drugs, err := client.GetDrugAdministrations(report.ID)
	require.NoError(t, err)
	require.Len(t, drugs, 2)

	assert.Equal(t, "Keppra", drugs[0].Name)
	require.NotNil(t, drugs[0].DoseMG)
	assert.Equal(t, 500.0, *drugs[0].DoseMG)

	assert.Equal(t, "Ativan", drugs[1].Name)
	assert.Nil(t, drugs[1].DoseMG)
	assert.Nil(t, drugs[1].TimeOfDay)
}

func TestChatHistoryNewestFirst(t *testing.T) {
	client := newTestClient(t)
	report := insertTestReport(t, client)

	base := time.Now().Add(-time.Hour)
	for i, q := range []string{"first", "second", "third"} {
		msg := &models.ChatMessage{
			ID:        uuid.NewString(),
			ReportID:  report.ID,
			Query:     q,
			Response:  "answer to " + q,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, client.InsertChatMessage(msg))
	}

	messages, err := client.GetChatHistory(report.ID, 2)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, "third", messages[0].Query)
	assert.Equal(t, "second", messages[1].Query)
}

func TestGetReportMissing(t *testing.T) {
	client := newTestClient(t)

	_, err := client.GetReport("no-such-id")
	assert.Error(t, err)
}
