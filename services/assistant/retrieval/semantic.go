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
	"log/slog"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PitchsideAI/PitchsideFOSS/services/llm"
)

// indexHandle pairs an embedder with the vector index its vectors live in.
type indexHandle struct {
	embedder Embedder
	config   llm.EmbeddingConfig
}

// HandleFactory builds an index handle for an embedding key. Injectable so
// tests can count constructions and substitute fakes.
type HandleFactory func(key string) (Embedder, llm.EmbeddingConfig, error)

// defaultHandleFactory resolves keys through the model configuration table.
func defaultHandleFactory(key string) (Embedder, llm.EmbeddingConfig, error) {
	return llm.NewEmbedderForKey(key)
}

// SemanticRetriever embeds questions and searches the matching vector
// index, caching one handle per embedding key.
//
// Thread Safety: SemanticRetriever is safe for concurrent use. The handle
// cache is guarded by an RWMutex; reads take the fast path, construction
// double-checks under the write lock.
type SemanticRetriever struct {
	searcher VectorSearcher
	factory  HandleFactory
	logger   *slog.Logger

	mu      sync.RWMutex
	handles map[string]indexHandle
}

// NewSemanticRetriever creates a retriever over the given vector searcher.
func NewSemanticRetriever(searcher VectorSearcher, logger *slog.Logger) *SemanticRetriever {
	if logger == nil {
		logger = slog.Default()
	}
	return &SemanticRetriever{
		searcher: searcher,
		factory:  defaultHandleFactory,
		logger:   logger,
		handles:  make(map[string]indexHandle),
	}
}

// WithHandleFactory overrides handle construction. Used by tests to
// substitute fake embedders.
func (r *SemanticRetriever) WithHandleFactory(f HandleFactory) *SemanticRetriever {
	r.factory = f
	return r
}

// handleFor returns the cached handle for an embedding key, building it on
// first use.
func (r *SemanticRetriever) handleFor(key string) (indexHandle, error) {
	r.mu.RLock()
	h, ok := r.handles[key]
	r.mu.RUnlock()
	if ok {
		return h, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handles[key]; ok {
		return h, nil
	}

	embedder, cfg, err := r.factory(key)
	if err != nil {
		return indexHandle{}, err
	}
	h = indexHandle{embedder: embedder, config: cfg}
	r.handles[key] = h
	return h, nil
}

// Search retrieves the k nearest profile chunks for a question.
//
// Description:
//
//	Resolves the embedding key to a cached handle, embeds the question,
//	runs the kNN query against the key's index, and reranks the hits so
//	chunks naming a player mentioned in the question come first. Every
//	failure mode (unknown key, embedding error, search error, missing
//	searcher) degrades to an empty slice with a warning log.
//
// Inputs:
//   - ctx: Request context.
//   - question: The user's question, embedded verbatim.
//   - embeddingKey: A key from the closed set: "minilm", "bge".
//   - k: Number of chunks to retrieve.
//
// Thread Safety: Safe for concurrent use.
func (r *SemanticRetriever) Search(ctx context.Context, question, embeddingKey string, k int) []SemanticChunk {
	ctx, span := otel.Tracer(retrievalTracerName).Start(ctx, "retrieval.SemanticRetriever.Search")
	defer span.End()
	span.SetAttributes(attribute.String("embedding_key", embeddingKey), attribute.Int("k", k))

	if r.searcher == nil {
		r.logger.Warn("vector searcher unavailable; semantic channel empty")
		retrievalFailures.WithLabelValues("semantic", "no_searcher").Inc()
		return []SemanticChunk{}
	}

	h, err := r.handleFor(embeddingKey)
	if err != nil {
		r.logger.Warn("embedding handle unavailable; semantic channel empty",
			"embedding_key", embeddingKey, "error", err)
		retrievalFailures.WithLabelValues("semantic", "handle").Inc()
		return []SemanticChunk{}
	}

	vector, err := h.embedder.Embed(ctx, question)
	if err != nil {
		span.RecordError(err)
		r.logger.Warn("question embedding failed; semantic channel empty",
			"embedding_key", embeddingKey, "error", err)
		retrievalFailures.WithLabelValues("semantic", "embed").Inc()
		return []SemanticChunk{}
	}

	chunks, err := r.searcher.QueryIndex(ctx, h.config.IndexName, vector, k)
	if err != nil {
		span.RecordError(err)
		r.logger.Warn("vector search failed; semantic channel empty",
			"index", h.config.IndexName, "error", err)
		retrievalFailures.WithLabelValues("semantic", "search").Inc()
		return []SemanticChunk{}
	}

	chunks = Rerank(question, chunks)

	span.SetAttributes(attribute.Int("chunks", len(chunks)))
	r.logger.Debug("semantic retrieval complete", "index", h.config.IndexName, "chunks", len(chunks))
	return chunks
}

// Rerank moves chunks whose player is mentioned in the question to the
// front, preserving similarity order within both partitions.
//
// Description:
//
//	A chunk matches when its metadata player_name, as a full lower-cased
//	string or by surname (last whitespace token), appears as a substring
//	of the lower-cased question. The sort is stable: matched chunks keep
//	their relative similarity order, as do unmatched ones.
//
// Thread Safety: Safe for concurrent use (pure function).
func Rerank(question string, chunks []SemanticChunk) []SemanticChunk {
	loweredQ := strings.ToLower(question)

	matched := make([]SemanticChunk, 0, len(chunks))
	rest := make([]SemanticChunk, 0, len(chunks))

	for _, chunk := range chunks {
		if chunkMentioned(loweredQ, chunk) {
			matched = append(matched, chunk)
		} else {
			rest = append(rest, chunk)
		}
	}

	return append(matched, rest...)
}

// chunkMentioned reports whether the chunk's player name appears in the
// lower-cased question, by full name or surname.
func chunkMentioned(loweredQuestion string, chunk SemanticChunk) bool {
	name, _ := chunk.Metadata["player_name"].(string)
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}

	if strings.Contains(loweredQuestion, name) {
		return true
	}

	tokens := strings.Fields(name)
	if len(tokens) > 1 {
		surname := tokens[len(tokens)-1]
		if strings.Contains(loweredQuestion, surname) {
			return true
		}
	}
	return false
}
