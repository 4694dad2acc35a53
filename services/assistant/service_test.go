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
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/intent"
	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/retrieval"
	"github.com/PitchsideAI/PitchsideFOSS/services/llm"
)

// scriptedGenerator answers routing prompts with a canned classification
// and any other prompt with a canned answer.
type scriptedGenerator struct {
	classification string
	answer         string
	answerErr      error

	lastAnswerPrompt string
}

func (s *scriptedGenerator) Generate(_ context.Context, prompt string) (string, error) {
	if strings.Contains(prompt, "Available intents:") {
		return s.classification, nil
	}
	s.lastAnswerPrompt = prompt
	if s.answerErr != nil {
		return "", s.answerErr
	}
	return s.answer, nil
}

// memoryStore is an in-memory GraphStore/VectorSearcher pair.
type memoryStore struct {
	records []retrieval.StructuredRecord
	chunks  []retrieval.SemanticChunk

	runCalls   int
	indexCalls int
}

func (m *memoryStore) Run(_ context.Context, _ string, _ map[string]any) ([]retrieval.StructuredRecord, error) {
	m.runCalls++
	return m.records, nil
}

func (m *memoryStore) QueryIndex(_ context.Context, _ string, _ []float32, _ int) ([]retrieval.SemanticChunk, error) {
	m.indexCalls++
	return m.chunks, nil
}

type staticEmbedder struct{}

func (staticEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return []float32{0.1, 0.2, 0.3}, nil
}

func testConfig() Config {
	return Config{DefaultSeason: "2022-23", SemanticK: 5, ClassifierKey: "gemini_flash"}
}

// newTestService wires the pipeline with in-memory fakes.
func newTestService(gen *scriptedGenerator, store *memoryStore) *Service {
	semantic := retrieval.NewSemanticRetriever(store, nil).
		WithHandleFactory(func(key string) (retrieval.Embedder, llm.EmbeddingConfig, error) {
			cfg, ok := llm.EmbeddingConfigs[key]
			if !ok {
				return nil, llm.EmbeddingConfig{}, fmt.Errorf("unknown embedding key: %q", key)
			}
			return staticEmbedder{}, cfg, nil
		})

	svc := NewService(
		intent.NewClassifier(gen, nil),
		retrieval.NewStructuredRetriever(store, nil),
		semantic,
		testConfig(),
		nil,
	)
	return svc.WithGeneratorFactory(func(_ context.Context, key string) (llm.Generator, error) {
		if _, ok := llm.ModelConfigs[key]; !ok {
			return nil, fmt.Errorf("unknown LLM key: %q", key)
		}
		return gen, nil
	})
}

func defaultOptions() QueryOptions {
	return QueryOptions{
		LLMKey:        "gemma",
		EmbeddingKey:  "minilm",
		UseStructured: true,
		UseSemantic:   true,
	}
}

func TestProcessQueryEndToEnd(t *testing.T) {
	gen := &scriptedGenerator{
		classification: `{"intent": "compare_players", "parameters": {"player_names": ["Salah", "Saka"]}}`,
		answer:         "Salah outscored Saka this season.",
	}
	store := &memoryStore{
		records: []retrieval.StructuredRecord{
			{Keys: []string{"Player", "TotalPoints"}, Fields: map[string]any{"Player": "Salah", "TotalPoints": 240}},
			{Keys: []string{"Player", "TotalPoints"}, Fields: map[string]any{"Player": "Saka", "TotalPoints": 210}},
		},
		chunks: []retrieval.SemanticChunk{
			{Text: "Salah is a talismanic winger.", Metadata: map[string]any{"player_name": "Salah"}},
		},
	}

	trace := newTestService(gen, store).ProcessQuery(context.Background(), "Compare Salah and Saka", defaultOptions())

	if trace.Logs.Intent != "compare_players" {
		t.Fatalf("expected compare_players intent, got %q", trace.Logs.Intent)
	}
	if !reflect.DeepEqual(trace.Logs.Parameters.PlayerNames, []string{"Salah", "Saka"}) {
		t.Errorf("expected normalized player_names, got %#v", trace.Logs.Parameters.PlayerNames)
	}
	if trace.Answer != "Salah outscored Saka this season." {
		t.Errorf("unexpected answer %q", trace.Answer)
	}
	if len(trace.Logs.StructuredRecords) != 2 || len(trace.Logs.SemanticChunks) != 1 {
		t.Errorf("expected full diagnostics, got %d records and %d chunks",
			len(trace.Logs.StructuredRecords), len(trace.Logs.SemanticChunks))
	}
	if trace.ModelUsed != "google/gemma-2-2b-it" {
		t.Errorf("expected provider model identifier, got %q", trace.ModelUsed)
	}
	if trace.Duration < 0 {
		t.Errorf("expected non-negative duration, got %f", trace.Duration)
	}
	if !strings.Contains(gen.lastAnswerPrompt, "TotalPoints: 240") {
		t.Errorf("expected structured evidence in grounding prompt:\n%s", gen.lastAnswerPrompt)
	}
}

func TestProcessQueryErrorIntentStillAnswers(t *testing.T) {
	gen := &scriptedGenerator{
		classification: "not json at all",
		answer:         "I could not find data for that question.",
	}
	store := &memoryStore{}

	trace := newTestService(gen, store).ProcessQuery(context.Background(), "what is the meaning of life", defaultOptions())

	if trace.Logs.Intent != intent.IntentError {
		t.Fatalf("expected error sentinel, got %q", trace.Logs.Intent)
	}
	if store.runCalls != 0 {
		t.Errorf("expected structured channel skipped for error intent, got %d calls", store.runCalls)
	}
	if store.indexCalls != 1 {
		t.Errorf("expected semantic channel still queried, got %d calls", store.indexCalls)
	}
	if trace.Answer == "" {
		t.Error("expected an answer even with the error intent")
	}
	if trace.Logs.StructuredRecords == nil || trace.Logs.SemanticChunks == nil {
		t.Error("expected non-nil diagnostic slices")
	}
}

func TestProcessQueryUnknownLLMKeyIsConfigError(t *testing.T) {
	gen := &scriptedGenerator{
		classification: `{"intent": "player_summary", "parameters": {"player_name": "Haaland"}}`,
	}
	opts := defaultOptions()
	opts.LLMKey = "gpt99"

	trace := newTestService(gen, &memoryStore{}).ProcessQuery(context.Background(), "How did Haaland do?", opts)

	if !strings.HasPrefix(trace.Answer, "Configuration error:") {
		t.Fatalf("expected configuration-error answer, got %q", trace.Answer)
	}
	if trace.Logs.Intent != "player_summary" {
		t.Errorf("expected retrieval diagnostics preserved, got intent %q", trace.Logs.Intent)
	}
}

func TestProcessQueryGenerationFailureBecomesAnswer(t *testing.T) {
	gen := &scriptedGenerator{
		classification: `{"intent": "player_summary", "parameters": {"player_name": "Haaland"}}`,
		answerErr:      errors.New("model returned 503"),
	}

	trace := newTestService(gen, &memoryStore{}).ProcessQuery(context.Background(), "How did Haaland do?", defaultOptions())

	if !strings.Contains(trace.Answer, "Answer generation failed") {
		t.Fatalf("expected generation failure surfaced in answer, got %q", trace.Answer)
	}
	if trace.Logs.Intent != "player_summary" {
		t.Errorf("expected diagnostics intact, got %q", trace.Logs.Intent)
	}
}

func TestProcessQueryChannelGating(t *testing.T) {
	gen := &scriptedGenerator{
		classification: `{"intent": "player_summary", "parameters": {"player_name": "Haaland"}}`,
		answer:         "ok",
	}
	store := &memoryStore{
		records: []retrieval.StructuredRecord{
			{Keys: []string{"Player"}, Fields: map[string]any{"Player": "Haaland"}},
		},
		chunks: []retrieval.SemanticChunk{
			{Text: "x", Metadata: map[string]any{"player_name": "Haaland"}},
		},
	}

	opts := defaultOptions()
	opts.UseStructured = false
	trace := newTestService(gen, store).ProcessQuery(context.Background(), "How did Haaland do?", opts)

	if store.runCalls != 0 {
		t.Errorf("expected structured channel disabled, got %d calls", store.runCalls)
	}
	if len(trace.Logs.StructuredRecords) != 0 {
		t.Errorf("expected no structured records, got %d", len(trace.Logs.StructuredRecords))
	}

	store2 := &memoryStore{records: store.records, chunks: store.chunks}
	opts = defaultOptions()
	opts.UseSemantic = false
	trace = newTestService(gen, store2).ProcessQuery(context.Background(), "How did Haaland do?", opts)

	if store2.indexCalls != 0 {
		t.Errorf("expected semantic channel disabled, got %d calls", store2.indexCalls)
	}
	if len(trace.Logs.SemanticChunks) != 0 {
		t.Errorf("expected no semantic chunks, got %d", len(trace.Logs.SemanticChunks))
	}
}

func TestProcessQueryNoDataContext(t *testing.T) {
	gen := &scriptedGenerator{
		classification: `{"intent": "player_summary", "parameters": {"player_name": "Nobody"}}`,
		answer:         "No data available for that player.",
	}

	opts := defaultOptions()
	opts.UseStructured = false
	opts.UseSemantic = false
	newTestService(gen, &memoryStore{}).ProcessQuery(context.Background(), "How did Nobody do?", opts)

	if !strings.Contains(gen.lastAnswerPrompt, "No data was retrieved for this question.") {
		t.Errorf("expected explicit no-data marker in prompt:\n%s", gen.lastAnswerPrompt)
	}
}
