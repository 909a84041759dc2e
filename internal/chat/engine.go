// Package chat answers free-text questions about a report by grounding the
// model on the passages most relevant to the question.
package chat

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/retrieval"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

// summaryQuery drives passage selection for report summaries.
const summaryQuery = "What are the key clinical findings, seizure events, and medication changes in this report?"

// Completer is the completion-service dependency; internal/llm satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

// Engine composes retrieval and completion for the question/answer and
// summary flows.
type Engine struct {
	completer Completer
	retriever *retrieval.Retriever
	topK      int
}

func NewEngine(completer Completer, retriever *retrieval.Retriever, topK int) *Engine {
	if topK <= 0 {
		topK = 5
	}
	return &Engine{completer: completer, retriever: retriever, topK: topK}
}

// Answer retrieves the passages of reportText most relevant to question,
// assembles a grounded prompt, and makes a single completion attempt. No
// retries: an empty or failed completion comes back as "" and the caller
// decides what to show the user. Retrieval prefers the report's prebuilt
// passage index so repeat questions do not re-embed the document.
func (e *Engine) Answer(ctx context.Context, reportID, reportText, question string) string {
	results, err := e.retriever.TopKForReport(ctx, reportID, reportText, question, e.topK)
	if err != nil {
		logger.Warn("Passage retrieval failed, answering without grounding",
			zap.Error(err),
		)
	}

	return e.completer.Complete(ctx, answerPrompt(question, results))
}

// Summarize generates a free-text summary of the report, same single-attempt
// no-retry contract as Answer. Passage selection is driven by a fixed
// clinical query; when retrieval yields nothing the full report text is
// summarized instead.
func (e *Engine) Summarize(ctx context.Context, reportID, reportText string) string {
	results, err := e.retriever.TopKForReport(ctx, reportID, reportText, summaryQuery, e.topK)
	if err != nil {
		logger.Warn("Passage retrieval failed, summarizing full report",
			zap.Error(err),
		)
	}

	body := reportText
	if len(results) > 0 {
		passages := make([]string, len(results))
		for i, r := range results {
			passages[i] = r.Paragraph
		}
		body = strings.Join(passages, "\n\n")
	}

	return e.completer.Complete(ctx, fmt.Sprintf("Give a summary of the report: %s", body))
}

// answerPrompt formats the question followed by each retrieved passage
// labeled with its rank and similarity score.
func answerPrompt(question string, results []retrieval.Result) string {
	var b strings.Builder

	b.WriteString("Answer the following question using only the report extracts below.\n")
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\n")

	if len(results) == 0 {
		b.WriteString("No relevant extracts were found in the report.\n")
		return b.String()
	}

	for i, r := range results {
		fmt.Fprintf(&b, "Extract %d (similarity %.4f):\n%s\n\n", i+1, r.Similarity, r.Paragraph)
	}

	return b.String()
}
