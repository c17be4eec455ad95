package postgres

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type teamRow struct {
	ID    int64  `db:"id"`
	Title string `db:"title"`
}

type stadiumRow struct {
	Stadium     string          `db:"stadium"`
	City        sql.NullString  `db:"city"`
	Capacity    sql.NullInt64   `db:"capacity"`
	Built       sql.NullInt64   `db:"built"`
	Surface     sql.NullString  `db:"surface"`
	FieldLength sql.NullFloat64 `db:"field_length"`
	FieldWidth  sql.NullFloat64 `db:"field_width"`
}

type matchRow struct {
	MatchID int64 `db:"match_id"`
	Season  int   `db:"season"`
	HomeID  int64 `db:"home_id"`
	AwayID  int64 `db:"away_id"`
}

type resultRow struct {
	MatchID int64 `db:"match_id"`
	ScoreHT int   `db:"score_ht"`
	ScoreAT int   `db:"score_at"`
}

type lineupRow struct {
	MatchID  int64          `db:"match_id"`
	LineupHT sql.NullString `db:"lineup_ht"`
	LineupAT sql.NullString `db:"lineup_at"`
}

type detailRow struct {
	MatchID    int64          `db:"match_id"`
	UTCTime    time.Time      `db:"utc_time"`
	Stadium    string         `db:"stadium"`
	Attendance sql.NullInt64  `db:"attendance"`
	Reason     sql.NullString `db:"reason"`
}

type standingRow struct {
	TeamID       int64 `db:"team_id"`
	Season       int   `db:"season"`
	Position     int   `db:"position"`
	Played       int   `db:"played"`
	Won          int   `db:"won"`
	Drawn        int   `db:"drawn"`
	Lost         int   `db:"lost"`
	GoalsFor     int   `db:"goals_for"`
	GoalsAgainst int   `db:"goals_against"`
	Points       int   `db:"points"`
}

type watermarkTableModel struct {
	Competition   string    `db:"competition"`
	Season        int       `db:"season"`
	LastProcessed time.Time `db:"last_processed"`
	UpdatedAt     time.Time `db:"updated_at"`
}

type competitionTableModel struct {
	Key               string         `db:"key"`
	Name              string         `db:"name"`
	Season            int            `db:"season"`
	TeamCount         int            `db:"team_count"`
	MatchweekStarts   pq.StringArray `db:"matchweek_starts"`
	FotmobLeagueID    int64          `db:"fotmob_league_id"`
	TransfermarktSlug sql.NullString `db:"transfermarkt_slug"`
	TransfermarktCode sql.NullString `db:"transfermarkt_code"`
	ChampionatSlug    sql.NullString `db:"championat_slug"`
	UpdatedAt         time.Time      `db:"updated_at"`
}

func nullString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

func nullIntPtr(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloatPtr(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}

func nullFloat64ToPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	out := v.Float64
	return &out
}
