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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newTestHFClient(serverURL string) *HFClient {
	return &HFClient{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		apiToken:   "test-token",
		model:      "google/gemma-2-2b-it",
		baseURL:    serverURL,
	}
}

func TestHFClientGenerate(t *testing.T) {
	var gotAuth string
	var gotReq hfChatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		_ = json.NewEncoder(w).Encode(hfChatResponse{
			Choices: []hfChatChoice{
				{Message: hfChatMessage{Role: "assistant", Content: "Haaland scored 36 goals."}},
			},
		})
	}))
	defer server.Close()

	client := newTestHFClient(server.URL)
	answer, err := client.Generate(context.Background(), "How did Haaland do?")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if answer != "Haaland scored 36 goals." {
		t.Errorf("unexpected answer %q", answer)
	}
	if gotAuth != "Bearer test-token" {
		t.Errorf("expected bearer token, got %q", gotAuth)
	}
	if gotReq.Model != "google/gemma-2-2b-it" {
		t.Errorf("expected model in request, got %q", gotReq.Model)
	}
	if gotReq.Temperature == nil || *gotReq.Temperature != 0 {
		t.Errorf("expected deterministic temperature 0, got %v", gotReq.Temperature)
	}
	if len(gotReq.Messages) != 1 || gotReq.Messages[0].Role != "user" {
		t.Errorf("expected single user message, got %#v", gotReq.Messages)
	}
}

func TestHFClientGenerateNon200(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestHFClient(server.URL)
	_, err := client.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatal("expected error on 503")
	}
	if !strings.Contains(err.Error(), "returned 503") {
		t.Errorf("expected status in error, got %v", err)
	}
}

func TestHFClientGenerateAPIErrorBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(hfChatResponse{
			Error: &hfError{Message: "model not found", Type: "invalid_request"},
		})
	}))
	defer server.Close()

	client := newTestHFClient(server.URL)
	if _, err := client.Generate(context.Background(), "prompt"); err == nil || !strings.Contains(err.Error(), "model not found") {
		t.Fatalf("expected API error surfaced, got %v", err)
	}
}

func TestHFClientGenerateNoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(hfChatResponse{})
	}))
	defer server.Close()

	client := newTestHFClient(server.URL)
	if _, err := client.Generate(context.Background(), "prompt"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestHFEmbedderEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req hfEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if req.Inputs != "question text" {
			t.Errorf("expected inputs forwarded, got %q", req.Inputs)
		}
		_, _ = w.Write([]byte(`[0.1, 0.2, 0.3]`))
	}))
	defer server.Close()

	embedder := &HFEmbedder{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		apiToken:   "test-token",
		model:      "sentence-transformers/all-MiniLM-L6-v2",
		url:        server.URL,
	}

	vec, err := embedder.Embed(context.Background(), "question text")
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(vec) != 3 || vec[0] != 0.1 {
		t.Errorf("unexpected vector %v", vec)
	}
}

func TestParseEmbedVectorShapes(t *testing.T) {
	flat, err := parseEmbedVector([]byte(`[0.5, 0.25]`))
	if err != nil || len(flat) != 2 {
		t.Fatalf("flat shape: got %v, %v", flat, err)
	}

	batch, err := parseEmbedVector([]byte(`[[0.5, 0.25, 0.125]]`))
	if err != nil || len(batch) != 3 {
		t.Fatalf("batch shape: got %v, %v", batch, err)
	}

	if _, err := parseEmbedVector([]byte(`[]`)); err == nil {
		t.Error("expected error for empty vector")
	}
	if _, err := parseEmbedVector([]byte(`{"error": "nope"}`)); err == nil {
		t.Error("expected error for unrecognized shape")
	}
}
