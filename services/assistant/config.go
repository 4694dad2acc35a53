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
	"os"
	"strconv"
)

// Config carries the environment-derived settings of the assistant service.
type Config struct {
	// Neo4jURI is the bolt URI of the graph store.
	Neo4jURI string

	// Neo4jUser and Neo4jPassword are the basic-auth credentials.
	Neo4jUser     string
	Neo4jPassword string

	// DefaultSeason is the season bound into templates when the question
	// does not name one.
	DefaultSeason string

	// SemanticK is the number of nearest neighbours fetched per question.
	SemanticK int

	// ClassifierKey is the generation-model key used for intent routing.
	ClassifierKey string
}

// LoadConfig reads the service configuration from the environment.
//
// Description:
//
//	Every setting has a development-friendly default; only credentials
//	for external providers are genuinely required, and those are checked
//	lazily by the provider constructors.
//
// Environment:
//   - NEO4J_URI (default "neo4j://localhost:7687")
//   - NEO4J_USER (default "neo4j")
//   - NEO4J_PASSWORD (default "")
//   - PITCHSIDE_DEFAULT_SEASON (default "2022-23")
//   - PITCHSIDE_SEMANTIC_K (default 5)
//   - PITCHSIDE_CLASSIFIER_KEY (default "gemini_flash")
func LoadConfig() Config {
	return Config{
		Neo4jURI:      envOr("NEO4J_URI", "neo4j://localhost:7687"),
		Neo4jUser:     envOr("NEO4J_USER", "neo4j"),
		Neo4jPassword: os.Getenv("NEO4J_PASSWORD"),
		DefaultSeason: envOr("PITCHSIDE_DEFAULT_SEASON", "2022-23"),
		SemanticK:     envIntOr("PITCHSIDE_SEMANTIC_K", 5),
		ClassifierKey: envOr("PITCHSIDE_CLASSIFIER_KEY", "gemini_flash"),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
