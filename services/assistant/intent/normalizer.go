// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package intent

import (
	"strconv"
	"strings"
)

// DefaultLimit is the result cap applied when the classifier extracts no
// usable limit.
const DefaultLimit = 5

// ParameterSet is the total, canonical parameter mapping produced by
// Normalize. Every canonical key has a value after normalization; `gw` is
// the only optional key (nil when absent or unparseable).
//
// The JSON shape matches the diagnostic payload the UI renders.
type ParameterSet struct {
	PlayerName     string   `json:"player_name"`
	PlayerNames    []string `json:"player_names"`
	Team           string   `json:"team"`
	Opponent       string   `json:"opponent"`
	Position       string   `json:"position"`
	PositionMapped string   `json:"position_mapped"`
	Season         string   `json:"season"`
	GW             *int     `json:"gw,omitempty"`
	Limit          int      `json:"limit"`
}

// BindMap renders the set as named arguments for template execution.
//
// Description:
//
//	All canonical keys are always bound. `gw` is bound only when present;
//	a template that references $gw without a bound value fails at the
//	store, which the retriever degrades to an empty result.
func (p ParameterSet) BindMap() map[string]any {
	m := map[string]any{
		"player_name":     p.PlayerName,
		"player_names":    p.PlayerNames,
		"team":            p.Team,
		"opponent":        p.Opponent,
		"position":        p.Position,
		"position_mapped": p.PositionMapped,
		"season":          p.Season,
		"limit":           p.Limit,
	}
	if p.GW != nil {
		m["gw"] = *p.GW
	}
	return m
}

// keyAliases maps classifier output keys to canonical parameter names.
var keyAliases = map[string]string{
	"player":    "player_name",
	"name":      "player_name",
	"home_team": "team",
	"away_team": "opponent",
}

// positionSynonyms maps lower-cased free text to the store's position codes.
// Canonical codes map to themselves, which makes normalization idempotent.
var positionSynonyms = map[string]string{
	"gkp": "GKP", "goalie": "GKP", "goalkeeper": "GKP", "gk": "GKP",
	"def": "DEF", "defender": "DEF", "defence": "DEF",
	"mid": "MID", "midfielder": "MID", "midfield": "MID",
	"fwd": "FWD", "forward": "FWD", "striker": "FWD", "attack": "FWD",
}

// teamAlias rewrites a long-form team mention to the store's short name.
type teamAlias struct {
	substring string
	canonical string
}

// teamAliases is matched in declaration order; the first alias whose
// substring appears in the value wins. "manchester city" must come before
// the looser "man utd" family.
var teamAliases = []teamAlias{
	{"manchester city", "Man City"},
	{"manchester united", "Man Utd"},
	{"man utd", "Man Utd"},
	{"nottingham", "Nott'm Forest"},
	{"tottenham", "Spurs"},
	{"wolves", "Wolves"},
	{"sheffield", "Sheffield Utd"},
	{"luton", "Luton"},
	{"newcastle", "Newcastle"},
}

// Normalize canonicalizes raw classifier parameters into a total
// ParameterSet.
//
// Description:
//
//	Applies, in order: key aliasing, default fill, type coercion, position
//	canonicalization, team-name canonicalization, and list derivation.
//	The order matters: later steps assume earlier canonicalization.
//	Normalize never fails; every malformed input degrades to a default.
//	The function is pure: no I/O, no shared state.
//
// Inputs:
//   - raw: The classifier's parameter mapping. May be nil or partial.
//   - defaultSeason: The season identifier used when none was extracted.
//
// Outputs:
//   - ParameterSet: Total over the canonical key set.
//
// Thread Safety: Safe for concurrent use (pure function).
func Normalize(raw map[string]any, defaultSeason string) ParameterSet {
	// Step 1: key aliasing.
	cleaned := make(map[string]any, len(raw))
	for k, v := range raw {
		if canonical, ok := keyAliases[k]; ok {
			cleaned[canonical] = v
			continue
		}
		cleaned[k] = v
	}

	// Step 2: default fill. Every canonical key exists from here on.
	p := ParameterSet{
		PlayerName:  asString(cleaned["player_name"]),
		PlayerNames: asStringList(cleaned["player_names"]),
		Team:        asString(cleaned["team"]),
		Opponent:    asString(cleaned["opponent"]),
		Position:    asString(cleaned["position"]),
		Season:      asString(cleaned["season"]),
		Limit:       DefaultLimit,
	}
	if p.Season == "" {
		p.Season = defaultSeason
	}

	// Step 3: type coercion. A bad limit falls back to the default; a bad
	// gameweek is dropped rather than raising.
	if v, ok := cleaned["limit"]; ok {
		if n, ok := asInt(v); ok && n > 0 {
			p.Limit = n
		}
	}
	if v, ok := cleaned["gw"]; ok {
		if n, ok := asInt(v); ok {
			p.GW = &n
		}
	}

	// Step 4: position canonicalization. Both keys get the same value so
	// templates referencing either behave identically; unmapped input is
	// preserved in position_mapped rather than dropped.
	rawPos := strings.ToLower(p.Position)
	if code, ok := positionSynonyms[rawPos]; ok {
		p.Position = code
		p.PositionMapped = code
	} else {
		p.PositionMapped = rawPos
	}

	// Step 5: team-name canonicalization for both team and opponent.
	p.Team = canonicalTeam(p.Team)
	p.Opponent = canonicalTeam(p.Opponent)

	// Step 6: list derivation, so single- and multi-subject templates can
	// share one parameter.
	if len(p.PlayerNames) == 0 && p.PlayerName != "" {
		p.PlayerNames = []string{p.PlayerName}
	}
	if p.PlayerNames == nil {
		p.PlayerNames = []string{}
	}

	return p
}

// canonicalTeam rewrites a team mention through the alias table. The match
// is a substring test against the lower-cased value; declaration order of
// the table is the tie-break.
func canonicalTeam(value string) string {
	lowered := strings.ToLower(value)
	if lowered == "" {
		return value
	}
	for _, alias := range teamAliases {
		if strings.Contains(lowered, alias.substring) {
			return alias.canonical
		}
	}
	return value
}

// asString extracts a string value, tolerating nil and non-string JSON types.
func asString(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	default:
		return ""
	}
}

// asStringList extracts an ordered string list from classifier JSON output.
func asStringList(v any) []string {
	switch list := v.(type) {
	case nil:
		return nil
	case []string:
		out := make([]string, 0, len(list))
		for _, s := range list {
			if trimmed := strings.TrimSpace(s); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s := asString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// asInt coerces JSON numbers and numeric strings to int.
func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}
