package extraction

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/metrics"
	"github.com/gabrielfortuny/neuroclinaical/internal/report"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

// Completer is the completion-service dependency; internal/llm satisfies it.
type Completer interface {
	Complete(ctx context.Context, prompt string) string
}

// Orchestrator runs the per-day extract/validate/retry loop over a report.
type Orchestrator struct {
	completer      Completer
	maxRetries     int
	implicitDayOne bool
}

func NewOrchestrator(completer Completer, maxRetries int, implicitDayOne bool) *Orchestrator {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &Orchestrator{
		completer:      completer,
		maxRetries:     maxRetries,
		implicitDayOne: implicitDayOne,
	}
}

// Extract dispatches on kind. An unsupported kind is a caller contract
// violation and the only error this pipeline surfaces.
func (o *Orchestrator) Extract(ctx context.Context, documentText string, kind Kind) ([]SeizureRecord, []DrugRecord, error) {
	switch kind {
	case KindSeizure:
		return o.ExtractSeizures(ctx, documentText), nil, nil
	case KindDrug:
		return nil, o.ExtractDrugs(ctx, documentText), nil
	default:
		return nil, nil, fmt.Errorf("unsupported extraction kind %q", kind)
	}
}

// ExtractSeizures segments the report into days and extracts seizure events
// from each. Days are processed strictly in order; a day whose retries are
// exhausted contributes zero records and never aborts the batch.
func (o *Orchestrator) ExtractSeizures(ctx context.Context, documentText string) []SeizureRecord {
	var all []SeizureRecord

	for _, span := range report.SegmentWithFallback(documentText, o.implicitDayOne) {
		records, result := runDay(ctx, o, span, seizurePrompt, NormalizeSeizures)
		logOutcome("seizure", span.Label, result)
		all = append(all, records...)
	}

	logger.Info("Seizure extraction finished", zap.Int("records", len(all)))
	return all
}

// ExtractDrugs is the drug-administration counterpart of ExtractSeizures.
func (o *Orchestrator) ExtractDrugs(ctx context.Context, documentText string) []DrugRecord {
	var all []DrugRecord

	for _, span := range report.SegmentWithFallback(documentText, o.implicitDayOne) {
		records, result := runDay(ctx, o, span, drugPrompt, NormalizeDrugs)
		logOutcome("drug", span.Label, result)
		all = append(all, records...)
	}

	logger.Info("Drug extraction finished", zap.Int("records", len(all)))
	return all
}

// runDay is the per-day state machine: prompt, complete, normalize, and
// re-query (the model is non-deterministic) until records validate or
// maxRetries+1 attempts are spent. An empty result after the final attempt
// is accepted as the day's outcome.
func runDay[T any](
	ctx context.Context,
	o *Orchestrator,
	span report.DaySpan,
	buildPrompt func(string) string,
	normalize func(int, string) []T,
) ([]T, outcome) {
	prompt := buildPrompt(span.Text)
	result := outcome{day: span.Day}

	var records []T
	for attempt := 0; attempt <= o.maxRetries; attempt++ {
		if ctx.Err() != nil {
			break
		}

		result.attempts++
		raw := o.completer.Complete(ctx, prompt)
		records = normalize(span.Day, raw)
		if len(records) > 0 {
			result.succeeded = true
			break
		}
	}

	return records, result
}

func logOutcome(kind, label string, result outcome) {
	metrics.ExtractionAttempts.WithLabelValues(kind).Observe(float64(result.attempts))

	if result.succeeded {
		logger.Debug("Day extracted",
			zap.String("kind", kind),
			zap.String("day", label),
			zap.Int("attempts", result.attempts),
		)
		return
	}

	logger.Warn("Day yielded no records",
		zap.String("kind", kind),
		zap.String("day", label),
		zap.Int("attempts", result.attempts),
	)
}
