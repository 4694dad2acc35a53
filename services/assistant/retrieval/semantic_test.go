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
	"errors"
	"testing"

	"github.com/PitchsideAI/PitchsideFOSS/services/llm"
)

// fakeEmbedder returns a fixed vector or error.
type fakeEmbedder struct {
	vector []float32
	err    error
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	return f.vector, f.err
}

// fakeSearcher records the index queried and returns canned chunks.
type fakeSearcher struct {
	chunks []SemanticChunk
	err    error

	lastIndex string
	lastK     int
}

func (f *fakeSearcher) QueryIndex(_ context.Context, indexName string, _ []float32, k int) ([]SemanticChunk, error) {
	f.lastIndex = indexName
	f.lastK = k
	return f.chunks, f.err
}

func chunkFor(name, text string) SemanticChunk {
	return SemanticChunk{Text: text, Metadata: map[string]any{"player_name": name, "score": 0.9}}
}

func newTestRetriever(searcher VectorSearcher, embedder Embedder, constructions *int) *SemanticRetriever {
	r := NewSemanticRetriever(searcher, nil)
	r.factory = func(key string) (Embedder, llm.EmbeddingConfig, error) {
		if constructions != nil {
			*constructions++
		}
		if key != "minilm" && key != "bge" {
			return nil, llm.EmbeddingConfig{}, errors.New("unknown embedding key")
		}
		return embedder, llm.EmbeddingConfigs[key], nil
	}
	return r
}

func TestSearchQueriesKeyIndex(t *testing.T) {
	searcher := &fakeSearcher{chunks: []SemanticChunk{chunkFor("Erling Haaland", "profile")}}
	r := newTestRetriever(searcher, &fakeEmbedder{vector: []float32{0.1, 0.2}}, nil)

	got := r.Search(context.Background(), "how did haaland do", "minilm", 5)
	if len(got) != 1 {
		t.Fatalf("expected one chunk, got %d", len(got))
	}
	if searcher.lastIndex != llm.EmbeddingConfigs["minilm"].IndexName {
		t.Errorf("expected minilm index queried, got %q", searcher.lastIndex)
	}
	if searcher.lastK != 5 {
		t.Errorf("expected k=5, got %d", searcher.lastK)
	}
}

func TestSearchHandleCachedPerKey(t *testing.T) {
	constructions := 0
	r := newTestRetriever(&fakeSearcher{}, &fakeEmbedder{vector: []float32{0.1}}, &constructions)

	r.Search(context.Background(), "q1", "minilm", 3)
	r.Search(context.Background(), "q2", "minilm", 3)
	r.Search(context.Background(), "q3", "bge", 3)

	if constructions != 2 {
		t.Fatalf("expected one handle construction per key, got %d", constructions)
	}
}

func TestSearchUnknownKeyDegrades(t *testing.T) {
	r := newTestRetriever(&fakeSearcher{}, &fakeEmbedder{vector: []float32{0.1}}, nil)

	got := r.Search(context.Background(), "question", "word2vec", 5)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result for unknown key, got %#v", got)
	}
}

func TestSearchEmbedErrorDegrades(t *testing.T) {
	r := newTestRetriever(&fakeSearcher{}, &fakeEmbedder{err: errors.New("model loading")}, nil)

	got := r.Search(context.Background(), "question", "minilm", 5)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result on embed error, got %#v", got)
	}
}

func TestSearchSearcherErrorDegrades(t *testing.T) {
	r := newTestRetriever(&fakeSearcher{err: errors.New("index not found")}, &fakeEmbedder{vector: []float32{0.1}}, nil)

	got := r.Search(context.Background(), "question", "minilm", 5)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result on search error, got %#v", got)
	}
}

func TestSearchNilSearcherDegrades(t *testing.T) {
	r := newTestRetriever(nil, &fakeEmbedder{vector: []float32{0.1}}, nil)

	got := r.Search(context.Background(), "question", "minilm", 5)
	if got == nil || len(got) != 0 {
		t.Fatalf("expected empty non-nil result without a searcher, got %#v", got)
	}
}

func TestRerankMentionedPlayerFirst(t *testing.T) {
	chunks := []SemanticChunk{
		chunkFor("Bukayo Saka", "saka profile"),
		chunkFor("Erling Haaland", "haaland profile"),
	}

	got := Rerank("how did haaland do this season", chunks)
	if got[0].Metadata["player_name"] != "Erling Haaland" {
		t.Fatalf("expected mentioned player first, got %v", got[0].Metadata["player_name"])
	}
	if got[1].Metadata["player_name"] != "Bukayo Saka" {
		t.Errorf("expected unmatched chunk second, got %v", got[1].Metadata["player_name"])
	}
}

func TestRerankMatchesBySurname(t *testing.T) {
	chunks := []SemanticChunk{
		chunkFor("Mohamed Salah", "salah profile"),
		chunkFor("Son Heung-min", "son profile"),
	}

	got := Rerank("is heung-min getting minutes", chunks)
	if got[0].Metadata["player_name"] != "Son Heung-min" {
		t.Fatalf("expected surname match promoted, got %v", got[0].Metadata["player_name"])
	}
}

func TestRerankStableWithinPartitions(t *testing.T) {
	chunks := []SemanticChunk{
		chunkFor("A One", "a"),
		chunkFor("B Two", "b"),
		chunkFor("C Three", "c"),
	}

	got := Rerank("no players mentioned", chunks)
	for i, want := range []string{"A One", "B Two", "C Three"} {
		if got[i].Metadata["player_name"] != want {
			t.Errorf("position %d: got %v, want %q", i, got[i].Metadata["player_name"], want)
		}
	}
}

func TestRerankMissingMetadataUnmatched(t *testing.T) {
	chunks := []SemanticChunk{
		{Text: "orphan chunk", Metadata: map[string]any{}},
		chunkFor("Erling Haaland", "haaland profile"),
	}

	got := Rerank("tell me about haaland", chunks)
	if got[0].Metadata["player_name"] != "Erling Haaland" {
		t.Fatalf("expected chunk without metadata demoted, got %#v", got[0])
	}
}
