package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ExtractionDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ltm_extraction_duration_seconds",
			Help:    "Per-report extraction duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
		[]string{"kind"},
	)

	ExtractionAttempts = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ltm_extraction_attempts",
			Help:    "Completion attempts spent per report day",
			Buckets: []float64{1, 2, 3, 4, 5},
		},
		[]string{"kind"},
	)

	RecordsExtracted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ltm_records_extracted_total",
			Help: "Total validated records extracted",
		},
		[]string{"kind"},
	)

	ReportsProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ltm_reports_processed_total",
			Help: "Total reports uploaded and processed",
		},
	)

	ChatDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ltm_chat_duration_seconds",
			Help:    "Chat answer latency in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"flow"},
	)

	RetrievedPassages = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ltm_retrieved_passages_count",
			Help:    "Passages surviving retrieval filtering per question",
			Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
		},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ltm_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ltm_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)
)

func Init() {
	prometheus.MustRegister(ExtractionDuration)
	prometheus.MustRegister(ExtractionAttempts)
	prometheus.MustRegister(RecordsExtracted)
	prometheus.MustRegister(ReportsProcessed)
	prometheus.MustRegister(ChatDuration)
	prometheus.MustRegister(RetrievedPassages)
	prometheus.MustRegister(CacheHits)
	prometheus.MustRegister(CacheMisses)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
