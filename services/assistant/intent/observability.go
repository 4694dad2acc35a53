// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package intent

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// assistantTracerName is the OTel tracer name for the assistant pipeline.
const assistantTracerName = "pitchside.assistant"

var (
	// classificationFailures counts degraded classifications by cause.
	//
	// Labels:
	//   - cause: "nil_model", "generation", "parse", "off_registry"
	classificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pitchside",
			Subsystem: "intent",
			Name:      "classification_failures_total",
			Help:      "Total classifications degraded to the error intent, by cause.",
		},
		[]string{"cause"},
	)

	// classifyDuration measures the routing model round-trip.
	classifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "pitchside",
			Subsystem: "intent",
			Name:      "classify_duration_seconds",
			Help:      "Duration of the intent-routing model call in seconds.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)
)
