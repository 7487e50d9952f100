// Package metrics holds the prometheus instruments for the assistant.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "parts_agent"

var (
	// llmRequestsTotal counts chat-completions calls by outcome.
	// Labels: outcome (ok, timeout, network, unauthorized, rate_limited, bad_request, upstream, unexpected)
	llmRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "requests_total",
		Help:      "Chat-completions requests by outcome",
	}, []string{"outcome"})

	llmRequestSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "llm",
		Name:      "request_seconds",
		Help:      "Chat-completions round-trip latency",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
	})

	// toolArgsParsedTotal counts argument payloads by the parser stage that produced them.
	toolArgsParsedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tools",
		Name:      "args_parsed_total",
		Help:      "Tool-call argument payloads by parser stage",
	}, []string{"stage"})

	functionCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "tools",
		Name:      "calls_total",
		Help:      "Function executions by name and success",
	}, []string{"function", "success"})

	fallbackRepliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "agent",
		Name:      "fallback_replies_total",
		Help:      "Replies produced from templates because the follow-up LLM call failed",
	}, []string{"function"})

	turnsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "agent",
		Name:      "turns_total",
		Help:      "Processed conversation turns by outcome",
	}, []string{"outcome"})

	sessionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "active",
		Help:      "Sessions currently held by the store",
	})

	sessionsEvictedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "session",
		Name:      "evicted_total",
		Help:      "Sessions removed by the idle sweep",
	})
)

// RecordLLMRequest records one chat-completions call
func RecordLLMRequest(outcome string, durationSec float64) {
	llmRequestsTotal.WithLabelValues(outcome).Inc()
	llmRequestSeconds.Observe(durationSec)
}

// RecordToolArgsParse records which parser stage produced a payload
func RecordToolArgsParse(stage string) {
	toolArgsParsedTotal.WithLabelValues(stage).Inc()
}

// RecordFunctionCall records one function execution
func RecordFunctionCall(function string, success bool) {
	functionCallsTotal.WithLabelValues(function, strconv.FormatBool(success)).Inc()
}

// RecordFallbackReply records a templated reply for function
func RecordFallbackReply(function string) {
	fallbackRepliesTotal.WithLabelValues(function).Inc()
}

// RecordTurn records a finished turn; outcome is "ok" or "error"
func RecordTurn(outcome string) {
	turnsTotal.WithLabelValues(outcome).Inc()
}

// SetActiveSessions sets the active session gauge
func SetActiveSessions(n int) {
	sessionsActive.Set(float64(n))
}

// RecordEvictions adds n evicted sessions
func RecordEvictions(n int) {
	if n > 0 {
		sessionsEvictedTotal.Add(float64(n))
	}
}

// Handler exposes the default registry in the prometheus text format
func Handler() http.Handler {
	return promhttp.Handler()
}
