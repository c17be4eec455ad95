package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/akruglov/footsync/internal/platform/logging"
	qb "github.com/akruglov/footsync/internal/platform/querybuilder"
	"github.com/akruglov/footsync/internal/usecase"
)

const insertIgnoreSuffix = "ON CONFLICT DO NOTHING"

// Details are the one fact table that gets corrected after the fact:
// postponed kickoffs move, attendance and stadium arrive late.
const detailsUpsertSuffix = `ON CONFLICT (match_id) DO UPDATE SET
	utc_time = EXCLUDED.utc_time,
	stadium = EXCLUDED.stadium,
	attendance = EXCLUDED.attendance,
	reason = EXCLUDED.reason`

const standingsUpsertSuffix = `ON CONFLICT (team_id, season) DO UPDATE SET
	position = EXCLUDED.position,
	played = EXCLUDED.played,
	won = EXCLUDED.won,
	drawn = EXCLUDED.drawn,
	lost = EXCLUDED.lost,
	goals_for = EXCLUDED.goals_for,
	goals_against = EXCLUDED.goals_against,
	points = EXCLUDED.points`

// BatchRepository writes ingestion batches into a per-competition schema.
type BatchRepository struct {
	db     *sqlx.DB
	logger *logging.Logger
}

func NewBatchRepository(db *sqlx.DB, logger *logging.Logger) *BatchRepository {
	if logger == nil {
		logger = logging.Default()
	}
	return &BatchRepository{db: db, logger: logger}
}

// UpsertBatch commits the batch table by table in foreign-key order, each
// table in its own transaction. Match facts are insert-or-ignore; details
// and standings overwrite the stored row. A failed table never aborts the rest of the
// batch, but every table depending on it is skipped.
func (r *BatchRepository) UpsertBatch(ctx context.Context, schema string, b usecase.Batch) (usecase.BatchReport, error) {
	report := usecase.BatchReport{RowsByTable: make(map[string]int)}
	if !validIdentifier(schema) {
		return report, fmt.Errorf("invalid schema name %q", schema)
	}
	if b.IsEmpty() {
		return report, nil
	}

	steps := []struct {
		table  string
		deps   []string
		count  int
		insert func() (int, error)
	}{
		{
			table: "teams",
			count: len(b.Teams),
			insert: func() (int, error) {
				rows := make([]teamRow, 0, len(b.Teams))
				for _, item := range b.Teams {
					rows = append(rows, teamRow{ID: item.ID, Title: item.Name})
				}
				return insertRows(ctx, r.db, qualified(schema, "teams"), rows, insertIgnoreSuffix)
			},
		},
		{
			table: "stadiums",
			count: len(b.Stadiums),
			insert: func() (int, error) {
				rows := make([]stadiumRow, 0, len(b.Stadiums))
				for _, item := range b.Stadiums {
					rows = append(rows, stadiumRow{
						Stadium:     item.Name,
						City:        nullString(item.City),
						Capacity:    nullIntPtr(item.Capacity),
						Built:       nullIntPtr(item.Built),
						Surface:     nullString(item.Surface),
						FieldLength: nullFloatPtr(item.FieldLength),
						FieldWidth:  nullFloatPtr(item.FieldWidth),
					})
				}
				return insertRows(ctx, r.db, qualified(schema, "stadiums"), rows, insertIgnoreSuffix)
			},
		},
		{
			table: "matches",
			deps:  []string{"teams"},
			count: len(b.Matches),
			insert: func() (int, error) {
				rows := make([]matchRow, 0, len(b.Matches))
				for _, item := range b.Matches {
					rows = append(rows, matchRow{
						MatchID: item.ID,
						Season:  item.Season,
						HomeID:  item.HomeID,
						AwayID:  item.AwayID,
					})
				}
				return insertRows(ctx, r.db, qualified(schema, "matches"), rows, insertIgnoreSuffix)
			},
		},
		{
			table: "match_results",
			deps:  []string{"matches"},
			count: len(b.Results),
			insert: func() (int, error) {
				rows := make([]resultRow, 0, len(b.Results))
				for _, item := range b.Results {
					rows = append(rows, resultRow{
						MatchID: item.MatchID,
						ScoreHT: item.HomeScore,
						ScoreAT: item.AwayScore,
					})
				}
				return insertRows(ctx, r.db, qualified(schema, "match_results"), rows, insertIgnoreSuffix)
			},
		},
		{
			table: "match_lineups",
			deps:  []string{"matches"},
			count: len(b.Lineups),
			insert: func() (int, error) {
				rows := make([]lineupRow, 0, len(b.Lineups))
				for _, item := range b.Lineups {
					rows = append(rows, lineupRow{
						MatchID:  item.MatchID,
						LineupHT: nullString(item.HomeFormation),
						LineupAT: nullString(item.AwayFormation),
					})
				}
				return insertRows(ctx, r.db, qualified(schema, "match_lineups"), rows, insertIgnoreSuffix)
			},
		},
		{
			table: "match_details",
			deps:  []string{"matches", "stadiums"},
			count: len(b.Details),
			insert: func() (int, error) {
				rows := make([]detailRow, 0, len(b.Details))
				for _, item := range b.Details {
					rows = append(rows, detailRow{
						MatchID:    item.MatchID,
						UTCTime:    item.KickoffUTC,
						Stadium:    item.Stadium,
						Attendance: nullIntPtr(item.Attendance),
						Reason:     nullString(item.StatusReason),
					})
				}
				return insertRows(ctx, r.db, qualified(schema, "match_details"), rows, detailsUpsertSuffix)
			},
		},
		{
			table: "standings",
			deps:  []string{"teams"},
			count: len(b.Standings),
			insert: func() (int, error) {
				rows := make([]standingRow, 0, len(b.Standings))
				for _, item := range b.Standings {
					rows = append(rows, standingRow{
						TeamID:       item.TeamID,
						Season:       item.Season,
						Position:     item.Position,
						Played:       item.Played,
						Won:          item.Won,
						Drawn:        item.Drawn,
						Lost:         item.Lost,
						GoalsFor:     item.GoalsFor,
						GoalsAgainst: item.GoalsAgainst,
						Points:       item.Points,
					})
				}
				return insertRows(ctx, r.db, qualified(schema, "standings"), rows, standingsUpsertSuffix)
			},
		},
	}

	unhealthy := make(map[string]bool, len(steps))
	for _, step := range steps {
		if step.count == 0 {
			report.SkippedTables = append(report.SkippedTables, step.table)
			continue
		}

		blocked := false
		for _, dep := range step.deps {
			if unhealthy[dep] {
				blocked = true
				break
			}
		}
		if blocked {
			unhealthy[step.table] = true
			report.SkippedTables = append(report.SkippedTables, step.table)
			r.logger.WarnContext(ctx, "table skipped, dependency failed",
				"schema", schema, "table", step.table)
			continue
		}

		affected, err := step.insert()
		if err != nil {
			unhealthy[step.table] = true
			report.FailedTables = append(report.FailedTables, step.table)
			r.logger.ErrorContext(ctx, "table write failed",
				"schema", schema, "table", step.table, "error", err)
			continue
		}
		report.RowsByTable[step.table] = affected
	}

	return report, nil
}

// insertRows runs one multi-row insert in its own transaction and reports
// how many rows were actually written.
func insertRows[T any](ctx context.Context, db *sqlx.DB, table string, rows []T, suffix string) (int, error) {
	query, args, err := qb.InsertModels(table, rows, suffix)
	if err != nil {
		return 0, fmt.Errorf("build insert %s query: %w", table, err)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx insert %s: %w", table, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	result, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("insert %s: %w", table, err)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit insert %s: %w", table, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return len(rows), nil
	}
	return int(affected), nil
}
