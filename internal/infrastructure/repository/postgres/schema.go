package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/akruglov/footsync/internal/domain/stadium"
)

// schemaTables is the per-competition DDL in foreign-key order. Each
// statement is formatted with the schema name.
var schemaTables = []struct {
	name string
	ddl  string
}{
	{name: "teams", ddl: `
		CREATE TABLE IF NOT EXISTS %[1]s.teams (
			id BIGINT PRIMARY KEY,
			title TEXT NOT NULL
		);`},
	{name: "stadiums", ddl: `
		CREATE TABLE IF NOT EXISTS %[1]s.stadiums (
			stadium TEXT PRIMARY KEY,
			city TEXT,
			capacity INT,
			built INT,
			surface TEXT,
			field_length NUMERIC,
			field_width NUMERIC
		);`},
	{name: "matches", ddl: `
		CREATE TABLE IF NOT EXISTS %[1]s.matches (
			match_id BIGINT PRIMARY KEY,
			season INT NOT NULL,
			home_id BIGINT NOT NULL REFERENCES %[1]s.teams (id),
			away_id BIGINT NOT NULL REFERENCES %[1]s.teams (id)
		);`},
	{name: "match_results", ddl: `
		CREATE TABLE IF NOT EXISTS %[1]s.match_results (
			match_id BIGINT PRIMARY KEY REFERENCES %[1]s.matches (match_id),
			score_ht INT NOT NULL,
			score_at INT NOT NULL
		);`},
	{name: "match_lineups", ddl: `
		CREATE TABLE IF NOT EXISTS %[1]s.match_lineups (
			match_id BIGINT PRIMARY KEY REFERENCES %[1]s.matches (match_id),
			lineup_ht VARCHAR(10),
			lineup_at VARCHAR(10)
		);`},
	{name: "match_details", ddl: `
		CREATE TABLE IF NOT EXISTS %[1]s.match_details (
			match_id BIGINT PRIMARY KEY REFERENCES %[1]s.matches (match_id),
			utc_time TIMESTAMP WITHOUT TIME ZONE NOT NULL,
			stadium TEXT NOT NULL DEFAULT 'Undefined' REFERENCES %[1]s.stadiums (stadium),
			attendance INT,
			reason VARCHAR(25)
		);`},
	{name: "standings", ddl: `
		CREATE TABLE IF NOT EXISTS %[1]s.standings (
			team_id BIGINT NOT NULL REFERENCES %[1]s.teams (id),
			season INT NOT NULL,
			position INT NOT NULL,
			played INT NOT NULL,
			won INT NOT NULL,
			drawn INT NOT NULL,
			lost INT NOT NULL,
			goals_for INT NOT NULL,
			goals_against INT NOT NULL,
			points INT NOT NULL,
			PRIMARY KEY (team_id, season)
		);`},
}

// EnsureSchema creates the competition schema, its tables and the fallback
// stadium row. Safe to call on every run.
func (r *BatchRepository) EnsureSchema(ctx context.Context, schema string) error {
	if !validIdentifier(schema) {
		return fmt.Errorf("invalid schema name %q", schema)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx ensure schema: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %s;", schema)); err != nil {
		return fmt.Errorf("create schema %s: %w", schema, err)
	}
	for _, table := range schemaTables {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(table.ddl, schema)); err != nil {
			return fmt.Errorf("create table %s: %w", qualified(schema, table.name), err)
		}
	}
	if err := seedFallbackStadium(ctx, tx, schema); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ensure schema: %w", err)
	}

	return nil
}

// seedFallbackStadium inserts the row match_details falls back to when a
// venue could not be resolved.
func seedFallbackStadium(ctx context.Context, tx *sqlx.Tx, schema string) error {
	query := fmt.Sprintf(
		"INSERT INTO %s.stadiums (stadium) VALUES ($1) ON CONFLICT (stadium) DO NOTHING;", schema)
	if _, err := tx.ExecContext(ctx, query, stadium.Undefined); err != nil {
		return fmt.Errorf("seed fallback stadium: %w", err)
	}
	return nil
}
