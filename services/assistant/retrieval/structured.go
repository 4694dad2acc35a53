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
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/intent"
	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/templates"
)

// StructuredRetriever executes registry templates against the graph store.
//
// Thread Safety: StructuredRetriever is safe for concurrent use after
// construction.
type StructuredRetriever struct {
	store  GraphStore
	logger *slog.Logger
}

// NewStructuredRetriever creates a retriever over the given store.
func NewStructuredRetriever(store GraphStore, logger *slog.Logger) *StructuredRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &StructuredRetriever{store: store, logger: logger}
}

// Fetch runs the template for an intent with normalized parameters.
//
// Description:
//
//	Looks the intent up in the registry, binds the parameter set, runs
//	the query, and caps the result at params.Limit. Every failure mode
//	(off-registry intent, missing store, query error) degrades to an
//	empty slice with a warning log; the structured channel never aborts
//	the pipeline.
//
// Inputs:
//   - ctx: Request context.
//   - intentName: A registry intent name (the error sentinel yields empty).
//   - params: The normalized parameter set.
//
// Outputs:
//   - []StructuredRecord: At most params.Limit rows; never nil on the
//     degraded paths, possibly nil when the query matched nothing.
//
// Thread Safety: Safe for concurrent use.
func (r *StructuredRetriever) Fetch(ctx context.Context, intentName string, params intent.ParameterSet) []StructuredRecord {
	ctx, span := otel.Tracer(retrievalTracerName).Start(ctx, "retrieval.StructuredRetriever.Fetch")
	defer span.End()
	span.SetAttributes(attribute.String("intent", intentName))

	tmpl, ok := templates.Lookup(intentName)
	if !ok {
		r.logger.Warn("no template for intent; structured channel empty", "intent", intentName)
		retrievalFailures.WithLabelValues("structured", "unknown_intent").Inc()
		return []StructuredRecord{}
	}

	if r.store == nil {
		r.logger.Warn("graph store unavailable; structured channel empty", "intent", intentName)
		retrievalFailures.WithLabelValues("structured", "no_store").Inc()
		return []StructuredRecord{}
	}

	records, err := r.store.Run(ctx, tmpl.Query, params.BindMap())
	if err != nil {
		span.RecordError(err)
		r.logger.Warn("structured retrieval failed", "intent", intentName, "error", err)
		retrievalFailures.WithLabelValues("structured", "query").Inc()
		return []StructuredRecord{}
	}

	if len(records) > params.Limit {
		records = records[:params.Limit]
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	r.logger.Debug("structured retrieval complete", "intent", intentName, "records", len(records))
	return records
}
