// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package merge groups evidence from both retrieval channels by entity and
// renders a deterministic grounding context for answer generation.
package merge

import (
	"fmt"
	"strings"

	"github.com/PitchsideAI/PitchsideFOSS/services/assistant/retrieval"
)

// Group is the merged evidence for one entity: structured rows and profile
// snippets that share a grouping key.
type Group struct {
	// Key is the lower-cased entity key. Empty is a valid key for evidence
	// with no recognizable entity; it is grouped and rendered, not dropped.
	Key string

	Records []retrieval.StructuredRecord
	Chunks  []retrieval.SemanticChunk
}

// recordKeyFields are probed in order on a structured row to find its
// entity. The first field present with a non-empty string value wins.
var recordKeyFields = []string{"Player", "player_name", "player"}

// recordKey extracts the lower-cased entity key from a structured row.
func recordKey(r retrieval.StructuredRecord) string {
	for _, field := range recordKeyFields {
		if v, ok := r.Fields[field]; ok {
			if s, ok := v.(string); ok && s != "" {
				return strings.ToLower(s)
			}
		}
	}
	return ""
}

// chunkKey extracts the lower-cased entity key from a semantic chunk.
func chunkKey(c retrieval.SemanticChunk) string {
	if s, ok := c.Metadata["player_name"].(string); ok {
		return strings.ToLower(s)
	}
	return ""
}

// GroupEvidence merges both channels into entity groups.
//
// Description:
//
//	Groups appear in first-seen order: all structured records are keyed
//	first, then all chunks, so an entity seen in both channels gets a
//	single group positioned where its record first appeared. Within a
//	group, records and chunks keep their channel order.
//
// Thread Safety: Safe for concurrent use (pure function).
func GroupEvidence(records []retrieval.StructuredRecord, chunks []retrieval.SemanticChunk) []Group {
	var groups []Group
	index := make(map[string]int)

	groupIdx := func(key string) int {
		if i, ok := index[key]; ok {
			return i
		}
		groups = append(groups, Group{Key: key})
		index[key] = len(groups) - 1
		return len(groups) - 1
	}

	for _, r := range records {
		i := groupIdx(recordKey(r))
		groups[i].Records = append(groups[i].Records, r)
	}
	for _, c := range chunks {
		i := groupIdx(chunkKey(c))
		groups[i].Chunks = append(groups[i].Chunks, c)
	}

	return groups
}

// Render turns entity groups into the grounding context block.
//
// Description:
//
//	Each group renders as three lines (Player, Stats, Profile) with
//	explicit no-data markers so the answer model can tell "no evidence"
//	from "evidence omitted". Record fields render in column order; the
//	output is fully deterministic for a given input.
func Render(groups []Group) string {
	blocks := make([]string, 0, len(groups))

	for _, g := range groups {
		var b strings.Builder

		name := g.Key
		if name == "" {
			name = "unknown"
		}
		fmt.Fprintf(&b, "Player: %s\n", name)

		if len(g.Records) == 0 {
			b.WriteString("Stats: No structured stats\n")
		} else {
			rows := make([]string, 0, len(g.Records))
			for _, r := range g.Records {
				pairs := make([]string, 0, len(r.Keys))
				for _, k := range r.Keys {
					pairs = append(pairs, fmt.Sprintf("%s: %v", k, r.Fields[k]))
				}
				rows = append(rows, strings.Join(pairs, "; "))
			}
			fmt.Fprintf(&b, "Stats: %s\n", strings.Join(rows, " | "))
		}

		if len(g.Chunks) == 0 {
			b.WriteString("Profile: No profile snippets")
		} else {
			snippets := make([]string, 0, len(g.Chunks))
			for _, c := range g.Chunks {
				snippets = append(snippets, c.Text)
			}
			fmt.Fprintf(&b, "Profile: %s", strings.Join(snippets, " | "))
		}

		blocks = append(blocks, b.String())
	}

	return strings.Join(blocks, "\n\n")
}

// BuildContext groups and renders in one step.
func BuildContext(records []retrieval.StructuredRecord, chunks []retrieval.SemanticChunk) string {
	return Render(GroupEvidence(records, chunks))
}
