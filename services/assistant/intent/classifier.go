// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package intent classifies a natural-language question into one of the
// registered query intents and normalizes the extracted parameters into a
// canonical, total set.
package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/templates"
	"github.com/PitchsideAI/PitchsideFOSS/services/llm"
)

// IntentError is the sentinel intent emitted when classification cannot
// produce a registered intent. It is a valid pipeline state, not a failure:
// downstream stages skip structured retrieval and continue.
const IntentError = "error"

// Classification is the classifier's output: an intent name plus the raw
// (not yet normalized) parameters the model extracted.
type Classification struct {
	Intent     string         `json:"intent"`
	Parameters map[string]any `json:"parameters"`
}

// Classifier routes questions to registry intents using a chat model.
//
// Thread Safety: Classifier is safe for concurrent use after construction.
type Classifier struct {
	chat   llm.Generator
	logger *slog.Logger
}

// NewClassifier creates a Classifier backed by the given chat model.
//
// Inputs:
//   - chat: The generation client used for routing. May be nil, in which
//     case every classification degrades to the error sentinel.
//   - logger: Structured logger. Nil falls back to slog.Default().
func NewClassifier(chat llm.Generator, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{chat: chat, logger: logger}
}

// errClassification is the degraded result for any classification failure.
func errClassification() Classification {
	return Classification{Intent: IntentError, Parameters: map[string]any{}}
}

// Classify maps a question to a registry intent and extracted parameters.
//
// Description:
//
//	Builds a routing prompt enumerating every registered intent with its
//	trigger examples and parameter names, invokes the chat model, and
//	parses the reply with the output-recovery steps small models need
//	(fence stripping, brace extraction, trailing-comma repair). Classify
//	never returns an error: every failure mode (nil model, generation
//	error, unparseable output, off-registry intent) degrades to the
//	{"error", {}} sentinel and is logged with the request context.
//
// Inputs:
//   - ctx: Request context; cancellation aborts the model call.
//   - question: The user's natural-language question.
//
// Outputs:
//   - Classification: A registry intent with raw parameters, or the
//     error sentinel.
//
// Thread Safety: Safe for concurrent use.
func (c *Classifier) Classify(ctx context.Context, question string) Classification {
	ctx, span := otel.Tracer(assistantTracerName).Start(ctx, "intent.Classifier.Classify")
	defer span.End()

	if c.chat == nil {
		c.logger.Warn("classifier has no chat model; routing degraded", "question", question)
		classificationFailures.WithLabelValues("nil_model").Inc()
		return errClassification()
	}

	prompt := buildClassifierPrompt(question)

	startTime := time.Now()
	reply, err := c.chat.Generate(ctx, prompt)
	classifyDuration.Observe(time.Since(startTime).Seconds())

	if err != nil {
		c.logger.Warn("intent classification call failed", "error", err, "question", question)
		classificationFailures.WithLabelValues("generation").Inc()
		return errClassification()
	}

	parsed, err := parseClassification(reply)
	if err != nil {
		c.logger.Warn("intent classification unparseable",
			"error", err,
			"reply_prefix", truncateForLog(reply, 200),
		)
		classificationFailures.WithLabelValues("parse").Inc()
		return errClassification()
	}

	if !templates.IsValid(parsed.Intent) {
		c.logger.Warn("classifier produced off-registry intent", "intent", parsed.Intent)
		classificationFailures.WithLabelValues("off_registry").Inc()
		return errClassification()
	}

	span.SetAttributes(attribute.String("intent", parsed.Intent))
	c.logger.Debug("question classified", "intent", parsed.Intent)
	return parsed
}

// buildClassifierPrompt renders the routing prompt. The intent list is
// generated from the registry so the prompt can never drift from the
// templates actually available.
func buildClassifierPrompt(question string) string {
	var b strings.Builder

	b.WriteString("You are an expert system that analyzes user questions about Fantasy Premier League statistics and maps them to a known query intent.\n\n")
	b.WriteString("Available intents:\n")

	for i, t := range templates.All() {
		fmt.Fprintf(&b, "%d. %s (parameters: %s)\n", i+1, t.Name, strings.Join(t.Params, ", "))
		for _, trigger := range t.Triggers {
			fmt.Fprintf(&b, "   - e.g. %q\n", trigger)
		}
	}

	b.WriteString("\nRespond with ONLY a single JSON object, no prose and no code fences, of the form:\n")
	b.WriteString(`{"intent": "<intent_name>", "parameters": {"<param>": "<value>"}}`)
	b.WriteString("\n\nExtract only parameters present in the question. If no intent fits, use \"error\" with empty parameters.\n\n")
	fmt.Fprintf(&b, "Question: %s\n", question)

	return b.String()
}

// trailingCommaPattern matches a comma immediately before a closing brace
// or bracket, a frequent defect in small-model JSON output.
var trailingCommaPattern = regexp.MustCompile(`,\s*([}\]])`)

// parseClassification recovers a Classification from raw model output.
//
// Description:
//
//	Recovery steps, in order: strip markdown code fences, cut to the
//	substring from the first '{' to the last '}', remove trailing commas
//	before closing braces/brackets, then unmarshal. Anything that still
//	fails to parse is an error for the caller to degrade.
func parseClassification(raw string) (Classification, error) {
	text := strings.TrimSpace(raw)

	// Strip ``` fences, with or without a language tag.
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return Classification{}, fmt.Errorf("no JSON object in model output")
	}
	text = text[start : end+1]

	text = trailingCommaPattern.ReplaceAllString(text, "$1")

	var parsed Classification
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return Classification{}, fmt.Errorf("unmarshaling classification: %w", err)
	}

	if parsed.Parameters == nil {
		parsed.Parameters = map[string]any{}
	}
	return parsed, nil
}

// truncateForLog bounds a string for log fields.
func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
