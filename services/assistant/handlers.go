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
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// QueryRequest is the POST body for an assistant question.
type QueryRequest struct {
	// Question is the natural-language question. Required.
	Question string `json:"question" binding:"required"`

	// LLMKey selects the answer model. Defaults to "gemma".
	LLMKey string `json:"llm_key"`

	// EmbeddingKey selects the embedding model. Defaults to "minilm".
	EmbeddingKey string `json:"embedding_key"`

	// UseStructured and UseSemantic gate the retrieval channels. Absent
	// means enabled; pointer distinguishes "absent" from "false".
	UseStructured *bool `json:"use_structured"`
	UseSemantic   *bool `json:"use_semantic"`
}

// ErrorResponse is the JSON error shape for rejected requests.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// toOptions applies request defaults and produces pipeline options.
func (r QueryRequest) toOptions() QueryOptions {
	opts := QueryOptions{
		LLMKey:        r.LLMKey,
		EmbeddingKey:  r.EmbeddingKey,
		UseStructured: true,
		UseSemantic:   true,
	}
	if opts.LLMKey == "" {
		opts.LLMKey = "gemma"
	}
	if opts.EmbeddingKey == "" {
		opts.EmbeddingKey = "minilm"
	}
	if r.UseStructured != nil {
		opts.UseStructured = *r.UseStructured
	}
	if r.UseSemantic != nil {
		opts.UseSemantic = *r.UseSemantic
	}
	return opts
}

// HandleQuery answers a question and returns the full trace.
//
// Description:
//
//	Binds and validates the request body, then runs the pipeline. Only
//	malformed requests produce a non-200: pipeline-level failures are
//	reported inside the 200 trace so callers always get diagnostics.
//
// Route: POST /assistant/query
func (s *Service) HandleQuery(c *gin.Context) {
	requestID := getOrCreateRequestID(c)

	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Warn("rejecting malformed query request", "request_id", requestID, "error", err)
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:     "invalid request body: 'question' is required",
			RequestID: requestID,
		})
		return
	}

	trace := s.ProcessQuery(c.Request.Context(), req.Question, req.toOptions())
	c.JSON(http.StatusOK, trace)
}

// HandleHealth reports process liveness.
//
// Route: GET /assistant/health
func (s *Service) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleReady reports readiness. The pipeline degrades rather than fails
// when backends are down, so readiness mirrors liveness.
//
// Route: GET /assistant/ready
func (s *Service) HandleReady(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// getOrCreateRequestID returns the inbound X-Request-ID or mints one, and
// echoes it on the response.
func getOrCreateRequestID(c *gin.Context) string {
	requestID := c.GetHeader("X-Request-ID")
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Header("X-Request-ID", requestID)
	return requestID
}
