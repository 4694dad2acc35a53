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

import "os"

// Provider constants for supported generation backends.
const (
	ProviderHuggingFace = "hf"
	ProviderGoogle      = "google"
)

// ModelConfig describes one entry of the closed generation-model key set.
//
// Description:
//
//	Each key the UI (or CLI) can select resolves to a (provider, model)
//	pair through this table. The table is immutable process-wide state,
//	safe for unsynchronized concurrent reads.
type ModelConfig struct {
	// Provider is the backend: "hf" or "google".
	Provider string

	// RepoID is the provider-specific model identifier.
	RepoID string

	// Description is a short human-readable label for banners and logs.
	Description string
}

// ModelConfigs maps generation-model keys to their provider configuration.
//
// The key set is closed: two Hugging Face hosted-inference models and two
// Google Gemini models. Any other key is a configuration failure.
var ModelConfigs = map[string]ModelConfig{
	"gemma": {
		Provider:    ProviderHuggingFace,
		RepoID:      "google/gemma-2-2b-it",
		Description: "Gemma 2B (Fast)",
	},
	"llama": {
		Provider:    ProviderHuggingFace,
		RepoID:      "meta-llama/Llama-3.1-8B-Instruct",
		Description: "Llama 3 8B (Smart)",
	},
	"gemini": {
		Provider:    ProviderGoogle,
		RepoID:      "gemini-2.5-pro",
		Description: "Gemini 2.5 Pro",
	},
	"gemini_flash": {
		Provider:    ProviderGoogle,
		RepoID:      "gemini-2.5-flash",
		Description: "Gemini 2.5 Flash",
	},
}

// ValidModelKeys lists the generation keys in stable order for error messages.
var ValidModelKeys = []string{"gemma", "llama", "gemini", "gemini_flash"}

// EmbeddingConfig describes one entry of the closed embedding-model key set.
//
// Description:
//
//	Each embedding key addresses an independently built vector index
//	(created by the external provisioning job) plus the text/embedding
//	property names that index was built with.
type EmbeddingConfig struct {
	// Model is the Hugging Face model used to embed the query text. It must
	// match the model the index was built with, or similarity is meaningless.
	Model string

	// IndexName is the Neo4j vector index to search.
	IndexName string

	// TextProperty is the node property holding the chunk text.
	TextProperty string

	// EmbeddingProperty is the node property holding the stored vector.
	EmbeddingProperty string
}

// EmbeddingConfigs maps embedding-model keys to their index configuration.
var EmbeddingConfigs = map[string]EmbeddingConfig{
	"minilm": {
		Model:             "sentence-transformers/all-MiniLM-L6-v2",
		IndexName:         "player_profile_index_minilm",
		TextProperty:      "text",
		EmbeddingProperty: "embedding_minilm",
	},
	"bge": {
		Model:             "BAAI/bge-small-en-v1.5",
		IndexName:         "player_profile_index_bge",
		TextProperty:      "text",
		EmbeddingProperty: "embedding_bge",
	},
}

// ValidEmbeddingKeys lists the embedding keys in stable order for error messages.
var ValidEmbeddingKeys = []string{"minilm", "bge"}

// ModelIdentifier returns the provider model identifier for a generation key.
//
// Outputs:
//   - string: The model identifier (e.g. "google/gemma-2-2b-it").
//   - bool: False if the key is not in the closed set.
func ModelIdentifier(key string) (string, bool) {
	cfg, ok := ModelConfigs[key]
	if !ok {
		return "", false
	}
	return cfg.RepoID, true
}

// ResolveHFToken returns the Hugging Face API token from the environment.
func ResolveHFToken() string {
	return os.Getenv("HUGGINGFACEHUB_API_TOKEN")
}

// ResolveGoogleAPIKey returns the Google API key from the environment.
//
// Description:
//
//	Checks GOOGLE_API_KEY first, then GEMINI_API_KEY, so either of the
//	two conventional variable names works.
func ResolveGoogleAPIKey() string {
	if key := os.Getenv("GOOGLE_API_KEY"); key != "" {
		return key
	}
	return os.Getenv("GEMINI_API_KEY")
}
