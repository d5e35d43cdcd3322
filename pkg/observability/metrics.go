package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ClassificationCount tracks classified messages by level and category.
	ClassificationCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_classification_total",
			Help: "The total number of classified messages",
		},
		[]string{"level", "category"},
	)

	// GuardrailMatchCount tracks guardrail pattern matches by rule id.
	GuardrailMatchCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_guardrail_match_total",
			Help: "The total number of guardrail pattern matches",
		},
		[]string{"rule_id"},
	)

	// RetrievalLatency tracks the latency of context retrieval per message.
	RetrievalLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "triage_retrieval_latency_seconds",
			Help:    "The duration of context retrieval operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
	)

	// ForcedDocCount tracks deterministic document injections during retrieval.
	ForcedDocCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_retrieval_forced_doc_total",
			Help: "The total number of forced document injections",
		},
		[]string{"kind"}, // "level" or "category"
	)

	// GenerationLatency tracks end-to-end draft generation latency per message.
	GenerationLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "triage_generation_latency_seconds",
			Help:    "The duration of draft generation per message in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 90},
		},
		[]string{"status"}, // "ok", "fallback"
	)

	// GenerationRetryCount tracks generation retries.
	GenerationRetryCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "triage_generation_retry_total",
			Help: "The total number of generation retries",
		},
	)

	// GenerationFallbackCount tracks deterministic fallback responses.
	GenerationFallbackCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "triage_generation_fallback_total",
			Help: "The total number of deterministic fallback responses",
		},
		[]string{"level"},
	)
)
