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
	"strings"
	"testing"
)

func TestNewGeneratorUnknownKey(t *testing.T) {
	_, err := NewGenerator(context.Background(), "gpt99")
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown LLM key") {
		t.Errorf("expected key named in error, got %v", err)
	}
}

func TestNewGeneratorHFMissingToken(t *testing.T) {
	t.Setenv("HUGGINGFACEHUB_API_TOKEN", "")

	if _, err := NewGenerator(context.Background(), "gemma"); err == nil {
		t.Fatal("expected error without HF token")
	}
}

func TestNewGeneratorHFWithToken(t *testing.T) {
	t.Setenv("HUGGINGFACEHUB_API_TOKEN", "test-token")

	gen, err := NewGenerator(context.Background(), "llama")
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	if _, ok := gen.(*HFClient); !ok {
		t.Errorf("expected HFClient for llama, got %T", gen)
	}
}

func TestNewGeneratorGoogleMissingKey(t *testing.T) {
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := NewGenerator(context.Background(), "gemini_flash"); err == nil {
		t.Fatal("expected error without Google API key")
	}
}

func TestModelConfigsCoverValidKeys(t *testing.T) {
	for _, key := range ValidModelKeys {
		cfg, ok := ModelConfigs[key]
		if !ok {
			t.Errorf("key %q listed valid but missing from ModelConfigs", key)
			continue
		}
		if cfg.Provider != ProviderHuggingFace && cfg.Provider != ProviderGoogle {
			t.Errorf("key %q has unknown provider %q", key, cfg.Provider)
		}
		if cfg.RepoID == "" {
			t.Errorf("key %q has empty model identifier", key)
		}
	}
}

func TestModelIdentifier(t *testing.T) {
	id, ok := ModelIdentifier("gemma")
	if !ok || id != "google/gemma-2-2b-it" {
		t.Errorf("gemma: got (%q, %v)", id, ok)
	}
	if _, ok := ModelIdentifier("gpt99"); ok {
		t.Error("expected unknown key to miss")
	}
}

func TestNewEmbedderForKey(t *testing.T) {
	t.Setenv("HUGGINGFACEHUB_API_TOKEN", "test-token")

	_, cfg, err := NewEmbedderForKey("minilm")
	if err != nil {
		t.Fatalf("NewEmbedderForKey: %v", err)
	}
	if cfg.IndexName != "player_profile_index_minilm" {
		t.Errorf("unexpected index %q", cfg.IndexName)
	}
	if cfg.Model != "sentence-transformers/all-MiniLM-L6-v2" {
		t.Errorf("unexpected model %q", cfg.Model)
	}

	if _, _, err := NewEmbedderForKey("word2vec"); err == nil {
		t.Error("expected error for unknown embedding key")
	}
}
