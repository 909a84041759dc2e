package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gabrielfortuny/neuroclinaical/internal/retrieval"
)

// fakeCompleter echoes its prompt back so tests can inspect what the engine
// assembled.
type fakeCompleter struct {
	calls  int
	reply  string
	prompt string
}

func (f *fakeCompleter) Complete(_ context.Context, prompt string) string {
	f.calls++
	f.prompt = prompt
	if f.reply != "" {
		return f.reply
	}
	return prompt
}

// fakeEmbedder scores passages by crude token overlap with the query so
// retrieval ranking is deterministic without a real embedding service.
type fakeEmbedder struct{}

func (fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	query := strings.ToLower(texts[len(texts)-1])
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		var overlap float32
		for _, word := range strings.Fields(strings.ToLower(text)) {
			if strings.Contains(query, word) {
				overlap++
			}
		}
		vectors[i] = []float32{1, overlap}
	}
	return vectors, nil
}

const reportText = `The patient had a seizure at 14:32 involving electrodes RMH1 through RMH4 lasting ninety seconds.

Lamotrigine was administered twice daily at a dose of one hundred milligrams.

The hospital cafeteria menu rotates weekly and is posted near the elevators on each floor.`

func newTestEngine(completer Completer) *Engine {
	retriever := retrieval.NewRetriever(fakeEmbedder{}, nil, 150, 0)
	return NewEngine(completer, retriever, 2)
}

func TestAnswerGroundsPromptOnRelevantPassages(t *testing.T) {
	completer := &fakeCompleter{reply: "The seizure started at 14:32."}
	engine := newTestEngine(completer)

	answer := engine.Answer(context.Background(), "report-1", reportText, "When did the seizure happen and which electrodes were involved?")

	assert.Equal(t, "The seizure started at 14:32.", answer)
	assert.Equal(t, 1, completer.calls)
	assert.Contains(t, completer.prompt, "When did the seizure happen")
	assert.Contains(t, completer.prompt, "Extract 1 (similarity")
	assert.Contains(t, completer.prompt, "electrodes RMH1 through RMH4")
}

func TestAnswerSingleAttempt(t *testing.T) {
	// Empty completions pass through unchanged with no retry.
	completer := &fakeCompleter{reply: " "}
	engine := newTestEngine(completer)

	_ = engine.Answer(context.Background(), "report-1", reportText, "anything")
	assert.Equal(t, 1, completer.calls)
}

// fakeIndex serves prebuilt passages the way the vector store would.
type fakeIndex struct {
	hits  []retrieval.IndexedPassage
	calls int
}

func (f *fakeIndex) SearchPassages(_ context.Context, _ []float32, _ int, _ string) ([]retrieval.IndexedPassage, error) {
	f.calls++
	return f.hits, nil
}

func TestAnswerGroundsPromptOnIndexedPassages(t *testing.T) {
	index := &fakeIndex{hits: []retrieval.IndexedPassage{
		{Text: "The seizure at 14:32 involved electrodes RMH1 through RMH4.", Score: 0.2},
	}}
	completer := &fakeCompleter{reply: "ok"}
	retriever := retrieval.NewRetriever(fakeEmbedder{}, index, 150, 0)
	engine := NewEngine(completer, retriever, 2)

	_ = engine.Answer(context.Background(), "report-1", reportText, "When did the seizure happen?")

	assert.Equal(t, 1, index.calls)
	assert.Contains(t, completer.prompt, "The seizure at 14:32 involved electrodes RMH1 through RMH4.")
}

func TestAnswerEmptyReport(t *testing.T) {
	completer := &fakeCompleter{}
	engine := newTestEngine(completer)

	_ = engine.Answer(context.Background(), "report-1", "", "What happened?")

	require.Equal(t, 1, completer.calls)
	assert.Contains(t, completer.prompt, "No relevant extracts were found")
}

func TestAnswerRespectsTopK(t *testing.T) {
	completer := &fakeCompleter{reply: "ok"}
	engine := newTestEngine(completer)

	_ = engine.Answer(context.Background(), "report-1", reportText, "seizure electrodes lamotrigine cafeteria menu")

	assert.Contains(t, completer.prompt, "Extract 2")
	assert.NotContains(t, completer.prompt, "Extract 3")
}

func TestSummarizeUsesRetrievedPassages(t *testing.T) {
	completer := &fakeCompleter{reply: "Summary."}
	engine := newTestEngine(completer)

	got := engine.Summarize(context.Background(), "report-1", reportText)

	assert.Equal(t, "Summary.", got)
	assert.True(t, strings.HasPrefix(completer.prompt, "Give a summary of the report:"))
}

func TestSummarizeFallsBackToFullText(t *testing.T) {
	completer := &fakeCompleter{reply: "Summary."}
	engine := newTestEngine(completer)

	// Too short to survive chunk filtering, so retrieval yields nothing.
	_ = engine.Summarize(context.Background(), "report-1", "short note")

	assert.Contains(t, completer.prompt, "short note")
}
