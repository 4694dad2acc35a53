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
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// GeminiClient implements Generator for Google Gemini models via langchaingo.
//
// Thread Safety: GeminiClient is safe for concurrent use.
type GeminiClient struct {
	model   llms.Model
	modelID string
}

// NewGeminiClient creates a Gemini client for the given model identifier.
//
// Description:
//
//	Reads GOOGLE_API_KEY (or GEMINI_API_KEY) from the environment. A
//	missing key is a configuration failure the orchestrator turns into an
//	explicit error answer, never a panic.
//
// Inputs:
//   - ctx: Context for client construction.
//   - modelID: The Gemini model identifier (e.g. "gemini-2.5-flash").
//
// Outputs:
//   - *GeminiClient: The configured client.
//   - error: Non-nil if the API key is missing or construction fails.
func NewGeminiClient(ctx context.Context, modelID string) (*GeminiClient, error) {
	key := ResolveGoogleAPIKey()
	if key == "" {
		return nil, fmt.Errorf("GOOGLE_API_KEY required for Google provider")
	}

	model, err := googleai.New(ctx,
		googleai.WithAPIKey(key),
		googleai.WithDefaultModel(modelID),
	)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}

	return &GeminiClient{model: model, modelID: modelID}, nil
}

// Generate implements Generator by delegating to the langchaingo model.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.model == nil {
		return "", fmt.Errorf("Gemini client is nil")
	}

	ctx, span := otel.Tracer(llmTracerName).Start(ctx, "llm.GeminiClient.Generate",
		oteltrace.WithAttributes(
			attribute.String("provider", ProviderGoogle),
			attribute.String("model", c.modelID),
		),
	)
	defer span.End()

	params := DefaultGenerationParams()

	startTime := time.Now()
	result, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt,
		llms.WithTemperature(params.Temperature),
		llms.WithMaxTokens(params.MaxTokens),
	)
	duration := time.Since(startTime)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		recordCallMetrics(ProviderGoogle, duration, err)
		return "", fmt.Errorf("Gemini generation: %w", err)
	}

	recordCallMetrics(ProviderGoogle, duration, nil)
	return result, nil
}
