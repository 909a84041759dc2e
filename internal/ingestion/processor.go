// Package ingestion runs the upload pipeline: sanitize the raw document,
// persist the report, extract seizure and drug records, and index passages
// for later search.
package ingestion

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/chat"
	"github.com/gabrielfortuny/neuroclinaical/internal/embedding"
	"github.com/gabrielfortuny/neuroclinaical/internal/extraction"
	"github.com/gabrielfortuny/neuroclinaical/internal/metrics"
	"github.com/gabrielfortuny/neuroclinaical/internal/report"
	"github.com/gabrielfortuny/neuroclinaical/internal/retrieval"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/models"
	"github.com/gabrielfortuny/neuroclinaical/internal/storage/sqlite"
	"github.com/gabrielfortuny/neuroclinaical/internal/vector/milvus"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

// CacheInvalidator drops cached chat answers once new report content lands;
// the redis cache client satisfies it. Nil disables invalidation.
type CacheInvalidator interface {
	InvalidateReportCache(ctx context.Context) error
}

type Processor struct {
	store          *sqlite.Client
	orchestrator   *extraction.Orchestrator
	chatEngine     *chat.Engine
	embedder       embedding.Embedder
	vector         *milvus.Client // nil disables passage indexing
	cache          CacheInvalidator
	chunkWordLimit int
	chunkOverlap   int
}

func NewProcessor(
	store *sqlite.Client,
	orchestrator *extraction.Orchestrator,
	chatEngine *chat.Engine,
	embedder embedding.Embedder,
	vector *milvus.Client,
	cache CacheInvalidator,
	chunkWordLimit, chunkOverlap int,
) *Processor {
	return &Processor{
		store:          store,
		orchestrator:   orchestrator,
		chatEngine:     chatEngine,
		embedder:       embedder,
		vector:         vector,
		cache:          cache,
		chunkWordLimit: chunkWordLimit,
		chunkOverlap:   chunkOverlap,
	}
}

// ProcessReport runs the full pipeline for one uploaded document and returns
// the persisted report. Extraction failures on individual days never fail
// the upload; a report with zero extracted records is still stored.
func (p *Processor) ProcessReport(ctx context.Context, patientID, filepath, filetype, rawContent string) (*models.Report, error) {
	text := report.SanitizeUpload(rawContent)
	spans := report.Segment(text)

	now := time.Now()
	rec := &models.Report{
		ID:         uuid.NewString(),
		PatientID:  patientID,
		Filepath:   filepath,
		Filetype:   filetype,
		RawContent: text,
		Days:       len(spans),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := p.store.InsertReport(rec); err != nil {
		return nil, fmt.Errorf("failed to store report: %w", err)
	}

	seizures := p.extractSeizures(ctx, rec)
	drugs := p.extractDrugs(ctx, rec)

	// index before summarizing so the summary flow can search the index
	if err := p.indexPassages(ctx, rec); err != nil {
		logger.Warn("Failed to index report passages", zap.Error(err))
	}

	summary := p.chatEngine.Summarize(ctx, rec.ID, text)
	if summary != "" {
		if err := p.store.UpdateReportSummary(rec.ID, summary); err != nil {
			logger.Warn("Failed to store report summary", zap.Error(err))
		}
		rec.Summary = summary
	}

	if p.cache != nil {
		if err := p.cache.InvalidateReportCache(ctx); err != nil {
			logger.Warn("Failed to invalidate answer cache", zap.Error(err))
		}
	}

	metrics.ReportsProcessed.Inc()

	logger.Info("Report processed",
		zap.String("report_id", rec.ID),
		zap.Int("days", rec.Days),
		zap.Int("seizures", seizures),
		zap.Int("drug_administrations", drugs),
	)

	return rec, nil
}

func (p *Processor) extractSeizures(ctx context.Context, rec *models.Report) int {
	start := time.Now()
	records := p.orchestrator.ExtractSeizures(ctx, rec.RawContent)
	metrics.ExtractionDuration.WithLabelValues(string(extraction.KindSeizure)).Observe(time.Since(start).Seconds())
	metrics.RecordsExtracted.WithLabelValues(string(extraction.KindSeizure)).Add(float64(len(records)))

	stored := 0
	for _, r := range records {
		seizure := &models.Seizure{
			ID:              uuid.NewString(),
			ReportID:        rec.ID,
			Day:             r.Day,
			StartTime:       r.StartTime,
			DurationSeconds: r.DurationSeconds,
			Electrodes:      r.Electrodes,
			CreatedAt:       time.Now(),
		}
		if err := p.store.InsertSeizure(seizure); err != nil {
			logger.Error("Failed to store seizure", zap.Error(err), zap.Int("day", r.Day))
			continue
		}
		stored++
	}

	return stored
}

func (p *Processor) extractDrugs(ctx context.Context, rec *models.Report) int {
	start := time.Now()
	records := p.orchestrator.ExtractDrugs(ctx, rec.RawContent)
	metrics.ExtractionDuration.WithLabelValues(string(extraction.KindDrug)).Observe(time.Since(start).Seconds())
	metrics.RecordsExtracted.WithLabelValues(string(extraction.KindDrug)).Add(float64(len(records)))

	stored := 0
	for _, r := range records {
		admin := &models.DrugAdministration{
			ID:        uuid.NewString(),
			ReportID:  rec.ID,
			Name:      r.Name,
			Day:       r.Day,
			DoseMG:    r.DoseMG,
			TimeOfDay: r.TimeOfDay,
			CreatedAt: time.Now(),
		}
		if err := p.store.InsertDrugAdministration(admin); err != nil {
			logger.Error("Failed to store drug administration", zap.Error(err), zap.Int("day", r.Day))
			continue
		}
		stored++
	}

	return stored
}

// indexPassages embeds the report's retrieval chunks into the vector store
// so future cross-report search does not re-embed the document.
func (p *Processor) indexPassages(ctx context.Context, rec *models.Report) error {
	if p.vector == nil {
		return nil
	}

	paragraphs := retrieval.Chunk(rec.RawContent, p.chunkWordLimit, p.chunkOverlap)
	if len(paragraphs) == 0 {
		return nil
	}

	vectors, err := p.embedder.Embed(ctx, paragraphs)
	if err != nil {
		return fmt.Errorf("failed to embed passages: %w", err)
	}

	chunks := make([]milvus.ReportChunk, len(paragraphs))
	for i, text := range paragraphs {
		chunks[i] = milvus.ReportChunk{
			ID:        uuid.NewString(),
			ReportID:  rec.ID,
			Embedding: vectors[i],
			Text:      text,
			Timestamp: time.Now(),
		}
	}

	return p.vector.Insert(ctx, chunks)
}
