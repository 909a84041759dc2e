// Package retrieval selects the report passages most relevant to a question
// by embedding paragraphs and ranking them with cosine similarity.
package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/gabrielfortuny/neuroclinaical/internal/embedding"
	"github.com/gabrielfortuny/neuroclinaical/internal/metrics"
	"github.com/gabrielfortuny/neuroclinaical/pkg/logger"
)

// Result is one ranked passage. Ephemeral: ranked, consumed for prompt
// assembly, never persisted.
type Result struct {
	Paragraph  string
	Similarity float64
}

// PassageIndex is a prebuilt vector index over report passages; the milvus
// client satisfies it. A nil index means every question re-chunks and
// re-embeds the document.
type PassageIndex interface {
	SearchPassages(ctx context.Context, queryEmbedding []float32, topK int, reportID string) ([]IndexedPassage, error)
}

// IndexedPassage is one hit from the passage index. Score is an L2 distance,
// lower is closer.
type IndexedPassage struct {
	Text  string
	Score float32
}

type Retriever struct {
	embedder  embedding.Embedder
	index     PassageIndex
	wordLimit int
	overlap   int
}

func NewRetriever(embedder embedding.Embedder, index PassageIndex, wordLimit, overlap int) *Retriever {
	if wordLimit <= 0 {
		wordLimit = 150
	}
	return &Retriever{embedder: embedder, index: index, wordLimit: wordLimit, overlap: overlap}
}

// TopK returns the k passages of documentText most similar to query, ranked
// by descending cosine similarity, ties broken by chunk order. Fewer than k
// survivors means all of them are returned.
func (r *Retriever) TopK(ctx context.Context, documentText, query string, k int) ([]Result, error) {
	paragraphs := Chunk(documentText, r.wordLimit, r.overlap)
	if len(paragraphs) == 0 {
		return nil, nil
	}

	// one batch: all paragraphs plus the query in final position
	vectors, err := r.embedder.Embed(ctx, append(append([]string{}, paragraphs...), query))
	if err != nil {
		return nil, fmt.Errorf("failed to embed passages: %w", err)
	}
	if len(vectors) != len(paragraphs)+1 {
		return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d", len(vectors), len(paragraphs)+1)
	}

	queryVec := vectors[len(vectors)-1]

	results := make([]Result, len(paragraphs))
	for i, para := range paragraphs {
		results[i] = Result{
			Paragraph:  para,
			Similarity: CosineSimilarity(queryVec, vectors[i]),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Similarity > results[j].Similarity
	})

	if k > 0 && len(results) > k {
		results = results[:k]
	}

	metrics.RetrievedPassages.Observe(float64(len(results)))
	logger.Debug("Passages retrieved",
		zap.Int("candidates", len(paragraphs)),
		zap.Int("returned", len(results)),
	)

	return results, nil
}

// TopKForReport is TopK backed by the passage index: when an index is
// configured only the query is embedded and the report's pre-indexed chunks
// are searched, keyed by report ID. An index miss or failure falls back to
// in-memory ranking over documentText.
func (r *Retriever) TopKForReport(ctx context.Context, reportID, documentText, query string, k int) ([]Result, error) {
	if r.index != nil && reportID != "" {
		results, err := r.searchIndex(ctx, reportID, query, k)
		if err != nil {
			logger.Warn("Passage index search failed, ranking in memory",
				zap.String("report_id", reportID),
				zap.Error(err),
			)
		} else if len(results) > 0 {
			metrics.RetrievedPassages.Observe(float64(len(results)))
			return results, nil
		}
	}

	return r.TopK(ctx, documentText, query, k)
}

func (r *Retriever) searchIndex(ctx context.Context, reportID, query string, k int) ([]Result, error) {
	vectors, err := r.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding count mismatch: got %d, expected 1", len(vectors))
	}

	hits, err := r.index.SearchPassages(ctx, vectors[0], k, reportID)
	if err != nil {
		return nil, err
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		// distance to a bounded similarity, preserving hit order
		results[i] = Result{
			Paragraph:  hit.Text,
			Similarity: 1 / (1 + float64(hit.Score)),
		}
	}

	logger.Debug("Passages retrieved from index",
		zap.String("report_id", reportID),
		zap.Int("returned", len(results)),
	)

	return results, nil
}

func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
