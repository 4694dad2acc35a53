// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package llm

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// llmTracerName is the shared OTel tracer name for all provider clients.
const llmTracerName = "pitchside.llm"

// Package-level Prometheus metrics for model-invocation calls.
// Auto-registered via promauto so no explicit registry wiring is needed.
var (
	// callDuration measures the duration of generation API calls.
	//
	// Labels:
	//   - provider: "hf" or "google"
	//   - status: "success" or "error"
	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pitchside",
			Subsystem: "llm",
			Name:      "call_duration_seconds",
			Help:      "Duration of generation API calls in seconds.",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"provider", "status"},
	)

	// callsTotal counts the total number of generation API calls.
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchside",
			Subsystem: "llm",
			Name:      "calls_total",
			Help:      "Total number of generation API calls.",
		},
		[]string{"provider", "status"},
	)

	// callErrorsTotal counts generation errors by type.
	//
	// Labels:
	//   - provider: "hf" or "google"
	//   - error_type: "timeout", "auth", "rate_limit", "server", "nil_client", "unknown"
	callErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchside",
			Subsystem: "llm",
			Name:      "errors_total",
			Help:      "Total generation errors by type.",
		},
		[]string{"provider", "error_type"},
	)
)

// classifyCallError maps an error to a label-safe error type string.
//
// Description:
//
//	Inspects the error message to categorize it into one of the predefined
//	error types. Used for Prometheus labels to avoid high cardinality.
//
// Thread Safety: Safe for concurrent use.
func classifyCallError(err error) string {
	if err == nil {
		return ""
	}

	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "client is nil"):
		return "nil_client"
	case strings.Contains(msg, "context deadline exceeded") ||
		strings.Contains(msg, "context canceled") ||
		strings.Contains(msg, "timeout"):
		return "timeout"
	case strings.Contains(msg, "returned 401") ||
		strings.Contains(msg, "returned 403") ||
		strings.Contains(msg, "unauthorized") ||
		strings.Contains(msg, "api key") ||
		strings.Contains(msg, "api_token"):
		return "auth"
	case strings.Contains(msg, "returned 429") ||
		strings.Contains(msg, "rate limit") ||
		strings.Contains(msg, "too many requests"):
		return "rate_limit"
	case strings.Contains(msg, "returned 500") ||
		strings.Contains(msg, "returned 502") ||
		strings.Contains(msg, "returned 503") ||
		strings.Contains(msg, "server error"):
		return "server"
	default:
		return "unknown"
	}
}

// recordCallMetrics records Prometheus metrics for a completed generation call.
//
// Thread Safety: Safe for concurrent use.
func recordCallMetrics(provider string, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
		callErrorsTotal.WithLabelValues(provider, classifyCallError(err)).Inc()
	}

	callDuration.WithLabelValues(provider, status).Observe(duration.Seconds())
	callsTotal.WithLabelValues(provider, status).Inc()
}
