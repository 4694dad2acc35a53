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
	"context"
	"fmt"
)

// NewGenerator resolves a generation-model key to a ready Generator.
//
// Description:
//
//	NewGenerator is the central creation point for generation backends.
//	It looks the key up in the closed ModelConfigs table and constructs
//	the matching provider client. Resolution failures (unknown key,
//	missing credentials) are returned as errors; the orchestrator turns
//	them into explicit error answers so the caller always receives a
//	well-formed trace.
//
// Inputs:
//   - ctx: Context for client construction (used by the Google provider).
//   - key: A key from the closed set: "gemma", "llama", "gemini", "gemini_flash".
//
// Outputs:
//   - Generator: The provider client for the key.
//   - error: Non-nil if the key is unknown or the provider cannot be built.
//
// Example:
//
//	gen, err := llm.NewGenerator(ctx, "gemini_flash")
func NewGenerator(ctx context.Context, key string) (Generator, error) {
	cfg, ok := ModelConfigs[key]
	if !ok {
		return nil, fmt.Errorf("unknown LLM key: %q (valid: %v)", key, ValidModelKeys)
	}

	switch cfg.Provider {
	case ProviderHuggingFace:
		return NewHFClient(cfg.RepoID)
	case ProviderGoogle:
		return NewGeminiClient(ctx, cfg.RepoID)
	default:
		return nil, fmt.Errorf("unsupported provider: %q for key %q", cfg.Provider, key)
	}
}

// NewEmbedderForKey resolves an embedding-model key to a ready embedder
// plus the index configuration its vectors belong to.
//
// Inputs:
//   - key: A key from the closed set: "minilm", "bge".
//
// Outputs:
//   - *HFEmbedder: The embedding client for the key's model.
//   - EmbeddingConfig: The index configuration for the key.
//   - error: Non-nil if the key is unknown or the token is missing.
func NewEmbedderForKey(key string) (*HFEmbedder, EmbeddingConfig, error) {
	cfg, ok := EmbeddingConfigs[key]
	if !ok {
		return nil, EmbeddingConfig{}, fmt.Errorf("unknown embedding key: %q (valid: %v)", key, ValidEmbeddingKeys)
	}

	embedder, err := NewHFEmbedder(cfg.Model)
	if err != nil {
		return nil, EmbeddingConfig{}, err
	}
	return embedder, cfg, nil
}
