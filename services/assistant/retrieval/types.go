// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package retrieval implements the two evidence channels of the assistant:
// structured graph records fetched through the template registry, and
// semantic profile chunks fetched through vector search. Both channels
// degrade to empty results on failure instead of aborting the pipeline.
package retrieval

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
)

// StructuredRecord is one row of a graph query result. Keys preserves the
// query's column order; Fields maps column name to value.
type StructuredRecord struct {
	Keys   []string
	Fields map[string]any
}

// MarshalJSON renders the record as a JSON object in column order, so
// diagnostic payloads show rows the way the query projected them.
func (r StructuredRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyJSON, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshaling record key %q: %w", k, err)
		}
		valJSON, err := json.Marshal(r.Fields[k])
		if err != nil {
			return nil, fmt.Errorf("marshaling record value for %q: %w", k, err)
		}
		buf.Write(keyJSON)
		buf.WriteByte(':')
		buf.Write(valJSON)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// SemanticChunk is one vector-search hit: free text plus its metadata
// (player_name and similarity score).
type SemanticChunk struct {
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata"`
}

// GraphStore executes parameterized Cypher and returns materialized rows.
type GraphStore interface {
	Run(ctx context.Context, query string, params map[string]any) ([]StructuredRecord, error)
}

// VectorSearcher executes a kNN query against a named vector index.
type VectorSearcher interface {
	QueryIndex(ctx context.Context, indexName string, vector []float32, k int) ([]SemanticChunk, error)
}

// Embedder turns text into an embedding vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
