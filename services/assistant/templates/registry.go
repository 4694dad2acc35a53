// Copyright (C) 2025 Pitchside AI (dev@pitchside.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package templates holds the closed registry of parameterized Cypher
// query templates. The registry is immutable process-wide state loaded at
// init and is safe for unsynchronized concurrent reads. An intent not in
// the registry is invalid and is never executed.
package templates

// Template is one entry of the intent registry.
type Template struct {
	// Name is the intent identifier the classifier must emit.
	Name string

	// Query is the parameterized Cypher, bound with named arguments from a
	// normalized ParameterSet. Templates own their ordering; the retriever's
	// limit cap is only a safety bound on top of it.
	Query string

	// Triggers are example phrasings shown to the classifier model.
	Triggers []string

	// Params are the canonical parameter names the template reads, listed
	// in the classifier prompt so the model knows what to extract.
	Params []string
}

// registry lists every intent in declaration order. The order is also the
// numbering the classifier prompt shows the model.
var registry = []Template{
	{
		Name: "player_summary",
		Query: `
        MATCH (p:Player)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        WHERE toLower(p.player_name) CONTAINS toLower($player_name)
        RETURN p.player_name AS Player,
               sum(r.total_points) AS TotalPoints,
               sum(r.goals_scored) AS Goals,
               sum(r.assists) AS Assists,
               sum(r.minutes) AS Minutes,
               sum(r.bonus) AS BonusPoints,
               sum(r.bps) AS BPS,
               sum(r.ict_index) AS TotalICT
    `,
		Triggers: []string{"How did Haaland do?", "Stats for Salah"},
		Params:   []string{"player_name", "season"},
	},
	{
		Name: "top_players_by_position",
		Query: `
        MATCH (p:Player)-[:PLAYS_AS]->(pos:Position)
        WHERE toLower(pos.name) = toLower($position) OR toLower(pos.name) = toLower($position_mapped)
        MATCH (p)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        WITH p, pos, sum(coalesce(r.total_points, 0)) AS TotalPoints
        ORDER BY TotalPoints DESC
        LIMIT toInteger($limit)
        RETURN p.player_name AS Player, pos.name AS Position, TotalPoints
    `,
		Triggers: []string{"Best defenders", "Top scoring forwards"},
		Params:   []string{"position", "season", "limit"},
	},
	{
		Name: "player_vs_team",
		Query: `
        MATCH (p:Player)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        WHERE toLower(p.player_name) CONTAINS toLower($player_name)
        MATCH (f)-[:HAS_HOME_TEAM|HAS_AWAY_TEAM]->(t:Team)
        WHERE toLower(t.name) CONTAINS toLower($opponent)
        RETURN p.player_name AS Player,
               f.fixture_number AS GW,
               t.name AS Opponent,
               r.total_points AS Points,
               r.goals_scored AS Goals,
               r.ict_index AS ICT_Index
    `,
		Triggers: []string{"How does Kane perform against Arsenal?"},
		Params:   []string{"player_name", "opponent", "season"},
	},
	{
		Name: "team_squad_by_position",
		Query: `
        MATCH (t:Team) WHERE toLower(t.name) CONTAINS toLower($team)
        MATCH (p:Player)-[:PLAYS_AS]->(pos:Position)
        WHERE toLower(pos.name) = toLower($position) OR toLower(pos.name) = toLower($position_mapped)
        MATCH (p)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        MATCH (f)-[:HAS_HOME_TEAM|HAS_AWAY_TEAM]->(t)
        WITH p, pos, t, sum(r.total_points) as TotalPoints
        ORDER BY TotalPoints DESC
        RETURN t.name AS Team, p.player_name AS Player, pos.name AS Position, TotalPoints
        LIMIT toInteger($limit)
    `,
		Triggers: []string{"List Arsenal midfielders", "Defenders from Man City"},
		Params:   []string{"team", "position", "season", "limit"},
	},
	{
		Name: "compare_players",
		Query: `
        MATCH (p:Player)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        WHERE any(name IN $player_names WHERE toLower(p.player_name) CONTAINS toLower(name))
        RETURN p.player_name AS Player,
               sum(r.total_points) AS TotalPoints,
               sum(r.goals_scored) AS Goals,
               sum(r.assists) AS Assists,
               sum(r.minutes) AS Minutes,
               sum(r.ict_index) AS Total_ICT,
               sum(r.threat) AS Total_Threat,
               sum(r.creativity) AS Total_Creativity
    `,
		Triggers: []string{"Compare Saka and Foden"},
		Params:   []string{"player_names", "season"},
	},
	{
		Name: "compare_players_last_5",
		Query: `
        MATCH (p:Player)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        WHERE any(name IN $player_names WHERE toLower(p.player_name) CONTAINS toLower(name))
        WITH p, f, r ORDER BY f.fixture_number DESC
        WITH p, collect(r)[0..5] as recent_games
        RETURN p.player_name AS Player,
               reduce(s=0, x in recent_games | s + x.total_points) as Points_Last_5,
               reduce(s=0, x in recent_games | s + x.goals_scored) as Goals_Last_5,
               reduce(s=0, x in recent_games | s + x.ict_index) as ICT_Last_5
    `,
		Triggers: []string{"Who is in better form?", "Compare recent stats of Watkins and Isak"},
		Params:   []string{"player_names", "season"},
	},
	{
		Name: "team_performance_in_gw",
		Query: `
        MATCH (s:Season {season_name: $season})-[:HAS_GW]->(g:Gameweek {GW_number: toInteger($gw)})
        MATCH (g)-[:HAS_FIXTURE]->(f:Fixture)
        MATCH (t:Team)<-[:HAS_HOME_TEAM|HAS_AWAY_TEAM]-(f)
        WHERE toLower(t.name) CONTAINS toLower($team)
        MATCH (f)-[:HAS_HOME_TEAM|HAS_AWAY_TEAM]->(opponent:Team)
        WHERE opponent.name <> t.name
        MATCH (p:Player)-[r:PLAYED_IN]->(f)
        MATCH (p)-[:PLAYED_IN]->(f_all:Fixture {season: $season})
        MATCH (f_all)-[:HAS_HOME_TEAM|HAS_AWAY_TEAM]->(t)
        WITH g, t, opponent, p, r, count(f_all) as squad_games
        WHERE squad_games > 2
        WITH g, t, opponent, sum(r.goals_scored) as TeamGoals, sum(r.total_points) as TeamPoints, collect(p.player_name)[0..3] as KeyPlayers
        RETURN t.name AS Team, g.GW_number AS GW, opponent.name AS Opponent, TeamGoals, TeamPoints, KeyPlayers
    `,
		Triggers: []string{"How did Spurs do in gameweek 12?"},
		Params:   []string{"team", "gw", "season"},
	},
	{
		Name: "recommend_differentials",
		Query: `
        MATCH (p:Player)-[:PLAYS_AS]->(pos:Position)
        WHERE toLower(pos.name) = toLower($position) OR toLower(pos.name) = toLower($position_mapped)
        MATCH (p)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        WITH p, pos, r ORDER BY f.fixture_number DESC
        WITH p, pos, collect(r)[0..3] as last_3
        WITH p, pos,
             reduce(s=0, x in last_3 | s + x.total_points) as form_points,
             reduce(s=0, x in last_3 | s + x.ict_index) as form_ict
        RETURN p.player_name AS Player,
               pos.name AS Position,
               form_points AS Points_Last_3,
               form_ict AS ICT_Last_3
        ORDER BY form_ict DESC
        LIMIT toInteger($limit)
    `,
		Triggers: []string{"Who has good underlying stats?", "Suggest a differential", "Hidden gems"},
		Params:   []string{"position", "season", "limit"},
	},
	{
		Name: "best_captain_options",
		Query: `
        MATCH (p:Player)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        WITH p, r ORDER BY f.fixture_number DESC
        WITH p, collect(r)[0..3] as last_3_games
        WITH p,
             reduce(s = 0, x IN last_3_games | s + x.total_points) as form_points,
             reduce(s = 0, x IN last_3_games | s + x.ict_index) as form_ict
        ORDER BY form_points + form_ict DESC
        LIMIT 5
        RETURN p.player_name AS Player, form_points AS PointsLast3, form_ict as ICTLast3
    `,
		Triggers: []string{"Who should I captain?", "Best captain"},
		Params:   []string{"season"},
	},
	{
		Name: "player_availability_check",
		Query: `
        MATCH (p:Player)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        WHERE toLower(p.player_name) CONTAINS toLower($player_name)
        WITH p, r, f ORDER BY f.fixture_number DESC LIMIT 3
        RETURN p.player_name AS Player, collect(r.minutes) as Last3Minutes
    `,
		Triggers: []string{"Is Son getting minutes?", "Has Grealish been playing?"},
		Params:   []string{"player_name", "season"},
	},
	{
		Name: "highest_scoring_gw",
		Query: `
        MATCH (p:Player)-[r:PLAYED_IN]->(f:Fixture {season: $season})
        WHERE toLower(p.player_name) CONTAINS toLower($player_name)
        MATCH (s:Season)-[:HAS_GW]->(g:Gameweek)-[:HAS_FIXTURE]->(f)
        RETURN p.player_name AS Player, g.GW_number AS GW, r.total_points AS Points
        ORDER BY Points DESC
        LIMIT 1
    `,
		Triggers: []string{"What was Haaland's best gameweek?"},
		Params:   []string{"player_name", "season"},
	},
}

// byName indexes the registry for O(1) lookup. Built once at init; never
// mutated afterwards.
var byName = func() map[string]Template {
	m := make(map[string]Template, len(registry))
	for _, t := range registry {
		m[t.Name] = t
	}
	return m
}()

// Lookup returns the template for an intent name.
//
// Outputs:
//   - Template: The registry entry.
//   - bool: False if the intent is not in the registry.
func Lookup(name string) (Template, bool) {
	t, ok := byName[name]
	return t, ok
}

// IsValid reports whether an intent name is in the registry.
func IsValid(name string) bool {
	_, ok := byName[name]
	return ok
}

// All returns the registry entries in declaration order.
//
// The returned slice is a copy; callers cannot mutate the registry.
func All() []Template {
	out := make([]Template, len(registry))
	copy(out, registry)
	return out
}

// Names returns the intent names in declaration order.
func Names() []string {
	names := make([]string, len(registry))
	for i, t := range registry {
		names[i] = t.Name
	}
	return names
}
