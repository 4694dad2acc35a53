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
	"fmt"
	"strings"
)

// buildGroundingPrompt renders the answer-generation prompt.
//
// The evidence contract is explicit: structured stats outrank profile
// snippets when they conflict, and the model must say what is missing
// rather than invent numbers.
func buildGroundingPrompt(question, contextBlock string) string {
	var b strings.Builder

	b.WriteString("You are a knowledgeable Fantasy Premier League analyst. ")
	b.WriteString("Answer the user's question using ONLY the evidence below.\n\n")

	b.WriteString("Evidence:\n")
	b.WriteString(contextBlock)
	b.WriteString("\n\n")

	b.WriteString("Rules:\n")
	b.WriteString("- 'Stats' lines are authoritative database records. Prefer them over 'Profile' text when they disagree.\n")
	b.WriteString("- Never invent statistics, fixtures, or players not present in the evidence.\n")
	b.WriteString("- If the evidence does not answer the question, say so plainly and name what is missing.\n")
	b.WriteString("- Be concise and direct.\n\n")

	fmt.Fprintf(&b, "Question: %s\nAnswer:", question)

	return b.String()
}
