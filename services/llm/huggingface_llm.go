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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// =============================================================================
// Hugging Face Wire Types
// =============================================================================

const (
	defaultHFChatURL  = "https://router.huggingface.co/v1/chat/completions"
	defaultHFEmbedURL = "https://router.huggingface.co/hf-inference/models/%s/pipeline/feature-extraction"

	// hfEmbedTimeout bounds a single query-embedding call. Embedding is on
	// the question hot path; the semantic channel degrades to empty results
	// if the call cannot finish in time.
	hfEmbedTimeout = 10 * time.Second
)

type hfChatRequest struct {
	Model       string          `json:"model"`
	Messages    []hfChatMessage `json:"messages"`
	Temperature *float64        `json:"temperature,omitempty"`
	MaxTokens   *int            `json:"max_tokens,omitempty"`
}

type hfChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type hfChatResponse struct {
	Choices []hfChatChoice `json:"choices"`
	Error   *hfError       `json:"error,omitempty"`
}

type hfChatChoice struct {
	Index        int           `json:"index"`
	Message      hfChatMessage `json:"message"`
	FinishReason string        `json:"finish_reason"`
}

type hfError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

type hfEmbedRequest struct {
	Inputs string `json:"inputs"`
}

// =============================================================================
// Chat Client
// =============================================================================

// HFClient implements Generator for Hugging Face hosted-inference models
// using raw net/http.
//
// Description:
//
//	Uses the Hugging Face router's OpenAI-compatible chat-completions REST
//	API directly without third-party SDKs. Every call is deterministic
//	(temperature 0) and bounded (max_tokens), matching the grounding
//	contract of the assistant.
//
// Thread Safety: HFClient is safe for concurrent use.
type HFClient struct {
	httpClient *http.Client
	apiToken   string
	model      string
	baseURL    string
}

// NewHFClient creates a Hugging Face chat client for the given model.
//
// Description:
//
//	Reads HUGGINGFACEHUB_API_TOKEN from the environment. The token is
//	required: hosted inference rejects anonymous chat calls.
//
// Inputs:
//   - model: The hosted model identifier (e.g. "google/gemma-2-2b-it").
//
// Outputs:
//   - *HFClient: The configured client.
//   - error: Non-nil if the token is missing.
func NewHFClient(model string) (*HFClient, error) {
	token := ResolveHFToken()
	if token == "" {
		return nil, fmt.Errorf("HUGGINGFACEHUB_API_TOKEN required for Hugging Face provider")
	}
	return &HFClient{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		apiToken:   token,
		model:      model,
		baseURL:    defaultHFChatURL,
	}, nil
}

// Generate implements Generator via the chat-completions endpoint.
func (c *HFClient) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer(llmTracerName).Start(ctx, "llm.HFClient.Generate",
		oteltrace.WithAttributes(
			attribute.String("provider", ProviderHuggingFace),
			attribute.String("model", c.model),
		),
	)
	defer span.End()

	params := DefaultGenerationParams()
	reqBody, err := json.Marshal(hfChatRequest{
		Model: c.model,
		Messages: []hfChatMessage{
			{Role: "user", Content: prompt},
		},
		Temperature: &params.Temperature,
		MaxTokens:   &params.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(reqBody))
	if err != nil {
		return "", fmt.Errorf("create chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiToken)

	startTime := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		recordCallMetrics(ProviderHuggingFace, time.Since(startTime), err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "chat HTTP call failed")
		return "", fmt.Errorf("chat HTTP call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		recordCallMetrics(ProviderHuggingFace, time.Since(startTime), err)
		return "", fmt.Errorf("read chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("inference API returned %d: %s", resp.StatusCode, string(body))
		recordCallMetrics(ProviderHuggingFace, time.Since(startTime), err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}

	var parsed hfChatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		recordCallMetrics(ProviderHuggingFace, time.Since(startTime), err)
		return "", fmt.Errorf("parse chat response: %w", err)
	}
	if parsed.Error != nil {
		err := fmt.Errorf("inference API error: %s", parsed.Error.Message)
		recordCallMetrics(ProviderHuggingFace, time.Since(startTime), err)
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	if len(parsed.Choices) == 0 {
		err := fmt.Errorf("inference API returned no choices")
		recordCallMetrics(ProviderHuggingFace, time.Since(startTime), err)
		return "", err
	}

	recordCallMetrics(ProviderHuggingFace, time.Since(startTime), nil)
	return parsed.Choices[0].Message.Content, nil
}

// =============================================================================
// Embedding Client
// =============================================================================

// HFEmbedder embeds query text through the Hugging Face feature-extraction
// pipeline, for similarity search against a precomputed index.
//
// Description:
//
//	The vector index is built offline by the provisioning job; at question
//	time only the query string needs embedding, with the same model the
//	index was built with. The endpoint returns either a bare vector or a
//	batch of one vector depending on the model pipeline; both shapes are
//	accepted.
//
// Thread Safety: HFEmbedder is safe for concurrent use.
type HFEmbedder struct {
	httpClient *http.Client
	apiToken   string
	model      string
	url        string
}

// NewHFEmbedder creates an embedding client for the given model.
//
// Inputs:
//   - model: The embedding model identifier the target index was built with.
//
// Outputs:
//   - *HFEmbedder: The configured embedder.
//   - error: Non-nil if HUGGINGFACEHUB_API_TOKEN is missing.
func NewHFEmbedder(model string) (*HFEmbedder, error) {
	token := ResolveHFToken()
	if token == "" {
		return nil, fmt.Errorf("HUGGINGFACEHUB_API_TOKEN required for query embedding")
	}
	return &HFEmbedder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiToken:   token,
		model:      model,
		url:        fmt.Sprintf(defaultHFEmbedURL, model),
	}, nil
}

// Embed returns the embedding vector for a single text.
//
// Inputs:
//   - ctx: Context for cancellation. A per-call timeout is applied internally.
//   - text: The text to embed.
//
// Outputs:
//   - []float32: The embedding vector.
//   - error: Non-nil on any transport, status, or decode failure.
func (e *HFEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, hfEmbedTimeout)
	defer cancel()

	reqBody, err := json.Marshal(hfEmbedRequest{Inputs: text})
	if err != nil {
		return nil, fmt.Errorf("marshal embed request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create embed request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiToken)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("embed HTTP call: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read embed response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("embed service returned %d: %s", resp.StatusCode, string(body))
	}

	return parseEmbedVector(body)
}

// parseEmbedVector decodes a feature-extraction response into one vector.
// Accepts both [d1, d2, ...] and [[d1, d2, ...]] response shapes.
func parseEmbedVector(body []byte) ([]float32, error) {
	var flat []float32
	if err := json.Unmarshal(body, &flat); err == nil && len(flat) > 0 {
		return flat, nil
	}

	var batch [][]float32
	if err := json.Unmarshal(body, &batch); err == nil && len(batch) > 0 && len(batch[0]) > 0 {
		return batch[0], nil
	}

	return nil, fmt.Errorf("embed service returned empty or unrecognized vector")
}
