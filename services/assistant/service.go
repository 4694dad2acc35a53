// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package assistant orchestrates the question-answering pipeline: intent
// classification, parameter normalization, parallel dual retrieval,
// evidence merging, and grounded answer generation. Every question yields
// a complete trace; retrieval and generation failures surface as explicit
// text in the trace, never as aborted requests.
package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"

	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/intent"
	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/merge"
	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/retrieval"
	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/templates"
	"github.com/PitchsideAI/PitchsideFOSS/services/llm"
)

// QueryOptions selects the models and channels for one question.
type QueryOptions struct {
	// LLMKey selects the answer-generation model.
	LLMKey string

	// EmbeddingKey selects the embedding model and its vector index.
	EmbeddingKey string

	// UseStructured and UseSemantic gate the two retrieval channels.
	// Disabling both is allowed; the answer model then sees explicit
	// no-data markers.
	UseStructured bool
	UseSemantic   bool
}

// RetrievalLogs is the diagnostic section of a trace: what the pipeline
// understood and what evidence each channel returned.
type RetrievalLogs struct {
	Intent            string                       `json:"intent"`
	Parameters        intent.ParameterSet          `json:"parameters"`
	StructuredRecords []retrieval.StructuredRecord `json:"structured_records"`
	SemanticChunks    []retrieval.SemanticChunk    `json:"semantic_chunks"`
}

// QueryTrace is the complete result of one question: the answer plus the
// full diagnostic trail.
type QueryTrace struct {
	Answer    string        `json:"answer"`
	Logs      RetrievalLogs `json:"logs"`
	Duration  float64       `json:"duration"`
	ModelUsed string        `json:"model_used"`
}

// GeneratorFactory resolves a generation-model key to a client. Injectable
// for tests; production wiring uses llm.NewGenerator.
type GeneratorFactory func(ctx context.Context, key string) (llm.Generator, error)

// Service is the pipeline orchestrator.
//
// Thread Safety: Service is safe for concurrent use after construction.
type Service struct {
	classifier *intent.Classifier
	structured *retrieval.StructuredRetriever
	semantic   *retrieval.SemanticRetriever
	generators GeneratorFactory
	cfg        Config
	logger     *slog.Logger
}

// NewService wires the pipeline stages into an orchestrator.
//
// Inputs:
//   - classifier: The intent router. Required.
//   - structured, semantic: The retrieval channels. Required.
//   - cfg: Service configuration.
//   - logger: Structured logger. Nil falls back to slog.Default().
func NewService(
	classifier *intent.Classifier,
	structured *retrieval.StructuredRetriever,
	semantic *retrieval.SemanticRetriever,
	cfg Config,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		classifier: classifier,
		structured: structured,
		semantic:   semantic,
		generators: llm.NewGenerator,
		cfg:        cfg,
		logger:     logger,
	}
}

// WithGeneratorFactory overrides generation-client resolution. Used by
// tests to substitute fakes.
func (s *Service) WithGeneratorFactory(f GeneratorFactory) *Service {
	s.generators = f
	return s
}

// ProcessQuery runs the full pipeline for one question.
//
// Description:
//
//	Stages: classify, normalize, retrieve both channels in parallel
//	(each gated by its option and, for the structured channel, by the
//	intent being registered), merge into a grounding context, generate.
//	ProcessQuery always returns a complete trace. A generation-model
//	resolution failure becomes a "Configuration error: ..." answer; a
//	generation call failure becomes the failure text as the answer. Both
//	leave the retrieval diagnostics intact.
//
// Inputs:
//   - ctx: Request context; cancellation propagates to all stages.
//   - question: The user's natural-language question.
//   - opts: Model and channel selection.
//
// Outputs:
//   - QueryTrace: Always well-formed; never nil slices in Logs.
//
// Thread Safety: Safe for concurrent use.
func (s *Service) ProcessQuery(ctx context.Context, question string, opts QueryOptions) QueryTrace {
	ctx, span := otel.Tracer(assistantTracerName).Start(ctx, "assistant.Service.ProcessQuery")
	defer span.End()
	span.SetAttributes(
		attribute.String("llm_key", opts.LLMKey),
		attribute.String("embedding_key", opts.EmbeddingKey),
	)

	startTime := time.Now()

	// === Stage 1: Classification and normalization ===
	classification := s.classifier.Classify(ctx, question)
	params := intent.Normalize(classification.Parameters, s.cfg.DefaultSeason)
	span.SetAttributes(attribute.String("intent", classification.Intent))

	// === Stage 2: Parallel dual retrieval ===
	records := []retrieval.StructuredRecord{}
	chunks := []retrieval.SemanticChunk{}

	g, gctx := errgroup.WithContext(ctx)
	if opts.UseStructured && templates.IsValid(classification.Intent) {
		g.Go(func() error {
			records = s.structured.Fetch(gctx, classification.Intent, params)
			return nil
		})
	}
	if opts.UseSemantic {
		g.Go(func() error {
			chunks = s.semantic.Search(gctx, question, opts.EmbeddingKey, s.cfg.SemanticK)
			return nil
		})
	}
	// Retrievers degrade internally; the group never carries an error.
	_ = g.Wait()

	if records == nil {
		records = []retrieval.StructuredRecord{}
	}
	if chunks == nil {
		chunks = []retrieval.SemanticChunk{}
	}

	logs := RetrievalLogs{
		Intent:            classification.Intent,
		Parameters:        params,
		StructuredRecords: records,
		SemanticChunks:    chunks,
	}

	// === Stage 3: Merge and grounded generation ===
	contextBlock := merge.BuildContext(records, chunks)
	if len(records) == 0 && len(chunks) == 0 {
		contextBlock = "No data was retrieved for this question."
	}

	prompt := buildGroundingPrompt(question, contextBlock)

	modelUsed := opts.LLMKey
	if id, ok := llm.ModelIdentifier(opts.LLMKey); ok {
		modelUsed = id
	}

	generator, err := s.generators(ctx, opts.LLMKey)
	if err != nil {
		s.logger.Error("generation model unavailable", "llm_key", opts.LLMKey, "error", err)
		questionsTotal.WithLabelValues("config_error").Inc()
		return s.finish(QueryTrace{
			Answer:    fmt.Sprintf("Configuration error: %v", err),
			Logs:      logs,
			ModelUsed: modelUsed,
		}, startTime)
	}

	answer, err := generator.Generate(ctx, prompt)
	if err != nil {
		s.logger.Error("answer generation failed", "llm_key", opts.LLMKey, "error", err)
		questionsTotal.WithLabelValues("generation_error").Inc()
		return s.finish(QueryTrace{
			Answer:    fmt.Sprintf("Answer generation failed: %v", err),
			Logs:      logs,
			ModelUsed: modelUsed,
		}, startTime)
	}

	questionsTotal.WithLabelValues("success").Inc()
	s.logger.Info("question answered",
		"intent", classification.Intent,
		"records", len(records),
		"chunks", len(chunks),
		"model", modelUsed,
	)
	return s.finish(QueryTrace{
		Answer:    answer,
		Logs:      logs,
		ModelUsed: modelUsed,
	}, startTime)
}

// finish stamps the duration and records the pipeline histogram.
func (s *Service) finish(trace QueryTrace, startTime time.Time) QueryTrace {
	elapsed := time.Since(startTime)
	trace.Duration = elapsed.Seconds()
	questionDuration.Observe(elapsed.Seconds())
	return trace
}
