// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package retrieval

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// retrievalTracerName is the OTel tracer name for both retrieval channels.
const retrievalTracerName = "pitchside.assistant"

// retrievalFailures counts degraded retrievals by channel and cause.
//
// Labels:
//   - channel: "structured" or "semantic"
//   - cause: "unknown_intent", "no_store", "query", "no_searcher",
//     "handle", "embed", "search"
var retrievalFailures = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "pitchside",
		Subsystem: "retrieval",
		Name:      "failures_total",
		Help:      "Total retrievals degraded to empty results, by channel and cause.",
	},
	[]string{"channel", "cause"},
)
