// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package llm is the model-invocation boundary of the Pitchside assistant.
// It defines the provider-agnostic Generator contract, the closed set of
// generation and embedding model keys, and one client per provider
// (Hugging Face hosted inference, Google Gemini).
//
// Thread Safety:
//
//	All interfaces in this package must be implemented as safe for concurrent use.
package llm

import "context"

// Generator is the single capability every generation backend exposes.
//
// Description:
//
//	The assistant only ever needs prompt-in, text-out. Keeping the contract
//	this small makes adapters trivial for any provider and keeps provider
//	shapes out of the pipeline.
//
// Thread Safety: Implementations must be safe for concurrent use.
type Generator interface {
	// Generate sends a single prompt and returns the model's response text.
	//
	// Inputs:
	//   - ctx: Context for cancellation and timeout.
	//   - prompt: The fully rendered prompt string.
	//
	// Outputs:
	//   - string: The model's response text.
	//   - error: Non-nil on failure. Callers decide whether a failure
	//     degrades (classification) or becomes the answer text (synthesis).
	Generate(ctx context.Context, prompt string) (string, error)
}

// GenerationParams holds provider-agnostic generation options.
//
// The assistant runs every model deterministically: temperature 0 and a
// bounded completion length, matching the grounding contract.
type GenerationParams struct {
	// Temperature controls randomness. 0.0 is the most deterministic setting
	// and is what every pipeline call uses.
	Temperature float64

	// MaxTokens limits the response length.
	MaxTokens int
}

// DefaultGenerationParams returns the parameters used for all pipeline calls.
func DefaultGenerationParams() GenerationParams {
	return GenerationParams{
		Temperature: 0.0,
		MaxTokens:   500,
	}
}
