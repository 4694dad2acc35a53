// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command pitchside runs the Fantasy Premier League assistant: an HTTP
// service (serve) and a one-shot CLI question runner (ask).
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/PitchsideAI/PitchsideFOSS/services/assistant"
	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/intent"
	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/retrieval"
	"github.com/PitchsideAI/PitchsideFOSS/services/llm"
)

// Flag values for the ask command.
var (
	askLLMKey       string
	askEmbeddingKey string
	askNoStructured bool
	askNoSemantic   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "pitchside",
		Short: "Fantasy Premier League statistics assistant",
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the assistant HTTP service",
		Run:   runServe,
	}

	askCmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Answer a single question and print the trace",
		Args:  cobra.MinimumNArgs(1),
		Run:   runAsk,
	}
	askCmd.Flags().StringVar(&askLLMKey, "llm", "gemma", "generation model key (gemma, llama, gemini, gemini_flash)")
	askCmd.Flags().StringVar(&askEmbeddingKey, "embedding", "minilm", "embedding model key (minilm, bge)")
	askCmd.Flags().BoolVar(&askNoStructured, "no-structured", false, "disable the structured graph channel")
	askCmd.Flags().BoolVar(&askNoSemantic, "no-semantic", false, "disable the semantic vector channel")

	rootCmd.AddCommand(serveCmd, askCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// buildService wires the full pipeline from environment configuration.
//
// The graph store is optional: when Neo4j is unreachable the service still
// starts and both retrieval channels degrade to empty results.
func buildService(ctx context.Context, logger *slog.Logger) (*assistant.Service, *retrieval.Neo4jStore) {
	cfg := assistant.LoadConfig()

	var graph retrieval.GraphStore
	var vectors retrieval.VectorSearcher

	store, err := retrieval.NewNeo4jStore(ctx, cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	if err != nil {
		logger.Warn("Neo4j unavailable; retrieval channels degraded", "uri", cfg.Neo4jURI, "error", err)
		store = nil
	} else {
		graph = store
		vectors = store
	}

	// The routing model prefers the configured key, then falls back to the
	// lightest Hugging Face model so classification still works when only
	// one provider is credentialed.
	chat, err := llm.NewGenerator(ctx, cfg.ClassifierKey)
	if err != nil {
		logger.Warn("classifier model unavailable; trying fallback",
			"key", cfg.ClassifierKey, "error", err)
		chat, err = llm.NewGenerator(ctx, "gemma")
		if err != nil {
			logger.Warn("fallback classifier unavailable; routing degraded", "error", err)
			chat = nil
		}
	}

	svc := assistant.NewService(
		intent.NewClassifier(chat, logger),
		retrieval.NewStructuredRetriever(graph, logger),
		retrieval.NewSemanticRetriever(vectors, logger),
		cfg,
		logger,
	)
	return svc, store
}

func runServe(_ *cobra.Command, _ []string) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc, store := buildService(ctx, logger)
	if store != nil {
		defer store.Close(context.Background())
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware("pitchside-assistant"))

	v1 := router.Group("/v1")
	svc.RegisterRoutes(v1)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("assistant service listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
}

func runAsk(_ *cobra.Command, args []string) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx := context.Background()
	svc, store := buildService(ctx, logger)
	if store != nil {
		defer store.Close(context.Background())
	}

	question := ""
	for i, a := range args {
		if i > 0 {
			question += " "
		}
		question += a
	}

	trace := svc.ProcessQuery(ctx, question, assistant.QueryOptions{
		LLMKey:        askLLMKey,
		EmbeddingKey:  askEmbeddingKey,
		UseStructured: !askNoStructured,
		UseSemantic:   !askNoSemantic,
	})

	fmt.Printf("Answer:\n%s\n\n", trace.Answer)
	fmt.Printf("Intent: %s | Model: %s | Duration: %.2fs\n",
		trace.Logs.Intent, trace.ModelUsed, trace.Duration)

	diagnostics, err := json.MarshalIndent(trace.Logs, "", "  ")
	if err == nil {
		fmt.Printf("\nDiagnostics:\n%s\n", diagnostics)
	}
}
