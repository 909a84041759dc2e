package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/retrieval"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

// Client indexes report passages so cross-report semantic search does not
// have to re-embed every document on each question.
type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

type ReportChunk struct {
	ID        string
	ReportID  string
	Embedding []float32
	Text      string
	Day       int
	Timestamp time.Time
}

type SearchResult struct {
	ChunkID  string
	ReportID string
	Text     string
	Day      int
	Score    float32
}

func NewClient(endpoint, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(context.Background(), endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) CreateCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "LTM report passage embeddings",
		Fields: []*entity.Field{
			{
				Name:       "chunk_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "report_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "text",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "4096",
				},
			},
			{
				Name:     "day",
				DataType: entity.FieldTypeInt64,
			},
			{
				Name:     "timestamp",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.L2, 1024)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

func (m *Client) Insert(ctx context.Context, chunks []ReportChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	chunkIDs := make([]string, len(chunks))
	reportIDs := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	texts := make([]string, len(chunks))
	days := make([]int64, len(chunks))
	timestamps := make([]int64, len(chunks))

	for i, chunk := range chunks {
		chunkIDs[i] = chunk.ID
		reportIDs[i] = chunk.ReportID
		embeddings[i] = chunk.Embedding
		texts[i] = chunk.Text
		days[i] = int64(chunk.Day)
		timestamps[i] = chunk.Timestamp.Unix()
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("chunk_id", chunkIDs),
		entity.NewColumnVarChar("report_id", reportIDs),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("text", texts),
		entity.NewColumnInt64("day", days),
		entity.NewColumnInt64("timestamp", timestamps),
	)

	if err != nil {
		return fmt.Errorf("failed to insert chunks: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Report chunks indexed", zap.Int("count", len(chunks)))

	return nil
}

// Search returns the topK passages closest to queryEmbedding. A non-empty
// reportID restricts results to that report.
func (m *Client) Search(ctx context.Context, queryEmbedding []float32, topK int, reportID string) ([]SearchResult, error) {
	expr := ""
	if reportID != "" {
		expr = fmt.Sprintf(`report_id == "%s"`, reportID)
	}

	sp, _ := entity.NewIndexIvfFlatSearchParam(16)

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		expr,
		[]string{"chunk_id", "report_id", "text", "day"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"embedding",
		entity.L2,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			chunkIDCol := sr.Fields.GetColumn("chunk_id")
			reportIDCol := sr.Fields.GetColumn("report_id")
			textCol := sr.Fields.GetColumn("text")
			dayCol := sr.Fields.GetColumn("day")

			chunkID, _ := chunkIDCol.Get(i)
			chunkReportID, _ := reportIDCol.Get(i)
			text, _ := textCol.Get(i)
			day, _ := dayCol.Get(i)

			results = append(results, SearchResult{
				ChunkID:  chunkID.(string),
				ReportID: chunkReportID.(string),
				Text:     text.(string),
				Day:      int(day.(int64)),
				Score:    sr.Scores[i],
			})
		}
	}

	logger.Info("Vector search completed",
		zap.Int("topK", topK),
		zap.Int("results", len(results)),
		zap.String("filter", expr),
	)

	return results, nil
}

// SearchPassages satisfies retrieval.PassageIndex.
func (m *Client) SearchPassages(ctx context.Context, queryEmbedding []float32, topK int, reportID string) ([]retrieval.IndexedPassage, error) {
	hits, err := m.Search(ctx, queryEmbedding, topK, reportID)
	if err != nil {
		return nil, err
	}

	passages := make([]retrieval.IndexedPassage, len(hits))
	for i, hit := range hits {
		passages[i] = retrieval.IndexedPassage{Text: hit.Text, Score: hit.Score}
	}

	return passages, nil
}
