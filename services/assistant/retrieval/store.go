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
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// vectorQuery is the kNN entry point. The index name selects which
// embedding family's vectors are searched; the query vector must have the
// same dimensionality as the index.
const vectorQuery = `
	CALL db.index.vector.queryNodes($index, $k, $vector)
	YIELD node, score
	RETURN node.text AS text, node.player_name AS player_name, score
`

// Neo4jStore implements GraphStore and VectorSearcher on a shared Neo4j
// driver. Sessions are opened per call and closed before returning, which
// keeps the store safe for concurrent use from both retrieval channels.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
}

// NewNeo4jStore connects to Neo4j and verifies connectivity.
//
// Inputs:
//   - ctx: Context for the connectivity check.
//   - uri: Bolt URI, e.g. "neo4j://localhost:7687".
//   - user, password: Basic-auth credentials.
//
// Outputs:
//   - *Neo4jStore: The connected store.
//   - error: Non-nil if the driver cannot be created or the server is
//     unreachable.
func NewNeo4jStore(ctx context.Context, uri, user, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("creating Neo4j driver: %w", err)
	}

	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("verifying Neo4j connectivity: %w", err)
	}

	return &Neo4jStore{driver: driver}, nil
}

// Run executes a parameterized Cypher query and materializes all rows.
//
// Description:
//
//	Opens a read session, runs the query, and copies every record into a
//	StructuredRecord before the session closes. Column order from the
//	query is preserved in Keys.
//
// Thread Safety: Safe for concurrent use.
func (s *Neo4jStore) Run(ctx context.Context, query string, params map[string]any) ([]StructuredRecord, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, query, params)
	if err != nil {
		return nil, fmt.Errorf("running graph query: %w", err)
	}

	var records []StructuredRecord
	for result.Next(ctx) {
		rec := result.Record()
		records = append(records, StructuredRecord{
			Keys:   rec.Keys,
			Fields: rec.AsMap(),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("consuming graph result: %w", err)
	}

	return records, nil
}

// QueryIndex runs a kNN search against a named vector index.
//
// Inputs:
//   - indexName: The vector index to search.
//   - vector: The query embedding; dimensionality must match the index.
//   - k: Number of nearest neighbours to return.
//
// Thread Safety: Safe for concurrent use.
func (s *Neo4jStore) QueryIndex(ctx context.Context, indexName string, vector []float32, k int) ([]SemanticChunk, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx, vectorQuery, map[string]any{
		"index":  indexName,
		"k":      k,
		"vector": vector,
	})
	if err != nil {
		return nil, fmt.Errorf("running vector query on %q: %w", indexName, err)
	}

	var chunks []SemanticChunk
	for result.Next(ctx) {
		rec := result.Record()
		text, _ := rec.Get("text")
		playerName, _ := rec.Get("player_name")
		score, _ := rec.Get("score")

		textStr, _ := text.(string)
		chunks = append(chunks, SemanticChunk{
			Text: textStr,
			Metadata: map[string]any{
				"player_name": playerName,
				"score":       score,
			},
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("consuming vector result from %q: %w", indexName, err)
	}

	return chunks, nil
}

// Close releases the underlying driver.
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}
