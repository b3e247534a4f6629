package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/markdave123-py/docqa/internal/models"
)

var (
	SummaryFallbacks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "docqa", Name: "summary_fallbacks_total", Help: "Uploads stored with the fallback summary."},
	)
	ChunkJobs = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docqa", Name: "chunk_jobs_total", Help: "Chunk jobs by outcome (enqueued, dropped, processed, failed)."},
		[]string{"outcome"},
	)
	ChunksPerJob = prometheus.NewHistogram(
		prometheus.HistogramOpts{Namespace: "docqa", Name: "chunks_per_job", Help: "Number of chunks produced per document.", Buckets: prometheus.ExponentialBuckets(1, 2, 12)},
	)
	LLMRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docqa", Name: "llm_requests_total", Help: "Completion backend calls by provider and outcome."},
		[]string{"provider", "outcome"},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docqa", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "docqa", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(SummaryFallbacks)
	reg.MustRegister(ChunkJobs)
	reg.MustRegister(ChunksPerJob)
	reg.MustRegister(LLMRequests)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}

// Handler exposes the collectors registered on reg.
func Handler(reg prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}

// ChunkRecorder records finished chunk jobs.
type ChunkRecorder struct{}

func (ChunkRecorder) RecordChunks(_ models.ChunkJob, count int) {
	ChunkJobs.WithLabelValues("processed").Inc()
	ChunksPerJob.Observe(float64(count))
}
