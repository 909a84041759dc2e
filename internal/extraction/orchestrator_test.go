package extraction

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfortuny/neuroclinaical/internal/metrics"
)

// scriptedCompleter returns canned completions in order, repeating the last
// one once the script runs out.
type scriptedCompleter struct {
	responses []string
	calls     int
	prompts   []string
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) string {
	s.prompts = append(s.prompts, prompt)
	idx := s.calls
	s.calls++
	if idx >= len(s.responses) {
		idx = len(s.responses) - 1
	}
	if idx < 0 {
		return ""
	}
	return s.responses[idx]
}

const seizureCompletion = `[{"start_time": "14:00", "duration": "30 sec", "electrodes_involved": "RMH1-2"}]`

func TestExtractSeizuresPerDay(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{seizureCompletion}}
	o := NewOrchestrator(completer, 2, true)

	doc := "Day 1\nEvent at 14:00.\nDay 2\nAnother event.\n"
	records := o.ExtractSeizures(context.Background(), doc)

	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].Day)
	assert.Equal(t, 2, records[1].Day)
	assert.Equal(t, 2, completer.calls)
}

func TestExtractSeizuresPromptCarriesDayText(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{seizureCompletion}}
	o := NewOrchestrator(completer, 0, true)

	o.ExtractSeizures(context.Background(), "Day 1\nEvent at 14:00 on RMH.\n")

	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "Event at 14:00 on RMH.")
}

func TestExtractSeizuresRetryBound(t *testing.T) {
	// A completer that never yields records burns exactly maxRetries+1
	// attempts per day, and later days still run.
	completer := &scriptedCompleter{responses: []string{"no events"}}
	o := NewOrchestrator(completer, 2, true)

	records := o.ExtractSeizures(context.Background(), "Day 1\nfoo\nDay 2\nbar\n")

	assert.Empty(t, records)
	assert.Equal(t, 6, completer.calls)
}

func TestExtractSeizuresSecondAttemptSucceeds(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{"garbage", seizureCompletion}}
	o := NewOrchestrator(completer, 2, true)

	records := o.ExtractSeizures(context.Background(), "Day 1\nfoo\n")

	require.Len(t, records, 1)
	assert.Equal(t, 2, completer.calls)
}

func TestExtractSeizuresImplicitDayOne(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{seizureCompletion}}
	o := NewOrchestrator(completer, 0, true)

	records := o.ExtractSeizures(context.Background(), "A report with no day headers at all.")

	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].Day)
}

func TestExtractSeizuresNoHeadersWithoutFallback(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{seizureCompletion}}
	o := NewOrchestrator(completer, 0, false)

	records := o.ExtractSeizures(context.Background(), "A report with no day headers at all.")

	assert.Empty(t, records)
	assert.Zero(t, completer.calls)
}

func TestExtractDrugs(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{
		`[{"name": "Keppra 500mg", "dose_mg": 500, "frequency_code": "BID"}]`,
	}}
	o := NewOrchestrator(completer, 2, true)

	records := o.ExtractDrugs(context.Background(), "Day 1\nKeppra administered.\n")

	require.Len(t, records, 2)
	assert.Equal(t, "Keppra", records[0].Name)
	assert.Equal(t, "08:00:00", *records[0].TimeOfDay)
	assert.Equal(t, "20:00:00", *records[1].TimeOfDay)
}

func TestExtractDispatch(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{seizureCompletion}}
	o := NewOrchestrator(completer, 0, true)

	seizures, drugs, err := o.Extract(context.Background(), "Day 1\nfoo\n", KindSeizure)
	require.NoError(t, err)
	assert.Len(t, seizures, 1)
	assert.Empty(t, drugs)
}

func TestExtractUnsupportedKind(t *testing.T) {
	o := NewOrchestrator(&scriptedCompleter{}, 0, true)

	_, _, err := o.Extract(context.Background(), "Day 1\nfoo\n", Kind("note"))
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "note"))
}

func TestExtractSeizuresCancelledContext(t *testing.T) {
	completer := &scriptedCompleter{responses: []string{seizureCompletion}}
	o := NewOrchestrator(completer, 2, true)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	records := o.ExtractSeizures(ctx, "Day 1\nfoo\n")
	assert.Empty(t, records)
	assert.Zero(t, completer.calls)
}

func TestExtractSeizuresObservesAttempts(t *testing.T) {
	observer := metrics.ExtractionAttempts.WithLabelValues("seizure")
	before := histogramSampleCount(t, observer)

	// one observation per day regardless of outcome
	completer := &scriptedCompleter{responses: []string{"no events"}}
	o := NewOrchestrator(completer, 1, true)
	o.ExtractSeizures(context.Background(), "Day 1\nfoo\nDay 2\nbar\n")

	assert.Equal(t, before+2, histogramSampleCount(t, observer))
}

func histogramSampleCount(t *testing.T, o prometheus.Observer) uint64 {
	t.Helper()

	m, ok := o.(prometheus.Metric)
	require.True(t, ok)

	var pb dto.Metric
	require.NoError(t, m.Write(&pb))
	return pb.GetHistogram().GetSampleCount()
}
