// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package assistant

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// assistantTracerName is the OTel tracer name for the pipeline orchestrator.
const assistantTracerName = "pitchside.assistant"

var (
	// questionsTotal counts processed questions by outcome.
	//
	// Labels:
	//   - status: "success", "config_error", "generation_error"
	questionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchside",
			Subsystem: "assistant",
			Name:      "questions_total",
			Help:      "Total questions processed, by outcome.",
		},
		[]string{"status"},
	)

	// questionDuration measures end-to-end pipeline latency.
	questionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pitchside",
			Subsystem: "assistant",
			Name:      "question_duration_seconds",
			Help:      "End-to-end question-answering latency in seconds.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
	)
)
