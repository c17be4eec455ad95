package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/akruglov/footsync/internal/domain/competition"
	qb "github.com/akruglov/footsync/internal/platform/querybuilder"
)

// CompetitionRepository stores the competition catalog in the public schema.
// Matchweek start dates are kept as a date-string array; the trailing element
// is the season's closing bound, not a real matchweek.
type CompetitionRepository struct {
	db *sqlx.DB
}

func NewCompetitionRepository(db *sqlx.DB) *CompetitionRepository {
	return &CompetitionRepository{db: db}
}

func (r *CompetitionRepository) List(ctx context.Context) ([]competition.Competition, error) {
	query, args, err := qb.Select("*").From("public.competitions").
		OrderBy("key").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list competitions query: %w", err)
	}

	var rows []competitionTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}

	out := make([]competition.Competition, 0, len(rows))
	for _, row := range rows {
		item, err := competitionFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}

	return out, nil
}

func (r *CompetitionRepository) GetByKey(ctx context.Context, key string) (competition.Competition, bool, error) {
	query, args, err := qb.Select("*").From("public.competitions").
		Where(qb.Eq("key", key)).
		ToSQL()
	if err != nil {
		return competition.Competition{}, false, fmt.Errorf("build select competition query: %w", err)
	}

	var row competitionTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return competition.Competition{}, false, nil
		}
		return competition.Competition{}, false, fmt.Errorf("select competition: %w", err)
	}

	item, err := competitionFromRow(row)
	if err != nil {
		return competition.Competition{}, false, err
	}
	return item, true, nil
}

func (r *CompetitionRepository) Upsert(ctx context.Context, item competition.Competition) error {
	starts := make(pq.StringArray, 0, len(item.MatchweekStarts))
	for _, start := range item.MatchweekStarts {
		starts = append(starts, formatDate(start))
	}

	model := competitionTableModel{
		Key:               item.Key,
		Name:              item.Name,
		Season:            item.Season,
		TeamCount:         item.TeamCount,
		MatchweekStarts:   starts,
		FotmobLeagueID:    item.Sources.FotmobLeagueID,
		TransfermarktSlug: nullString(item.Sources.TransfermarktSlug),
		TransfermarktCode: nullString(item.Sources.TransfermarktCode),
		ChampionatSlug:    nullString(item.Sources.ChampionatSlug),
		UpdatedAt:         item.UpdatedAt,
	}

	suffix := `ON CONFLICT (key) DO UPDATE SET
		name = EXCLUDED.name,
		season = EXCLUDED.season,
		team_count = EXCLUDED.team_count,
		matchweek_starts = EXCLUDED.matchweek_starts,
		fotmob_league_id = EXCLUDED.fotmob_league_id,
		transfermarkt_slug = EXCLUDED.transfermarkt_slug,
		transfermarkt_code = EXCLUDED.transfermarkt_code,
		championat_slug = EXCLUDED.championat_slug,
		updated_at = EXCLUDED.updated_at`

	query, args, err := qb.InsertModel("public.competitions", model, suffix)
	if err != nil {
		return fmt.Errorf("build upsert competition query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert competition: %w", err)
	}

	return nil
}

func competitionFromRow(row competitionTableModel) (competition.Competition, error) {
	item := competition.Competition{
		Key:       row.Key,
		Name:      row.Name,
		Season:    row.Season,
		TeamCount: row.TeamCount,
		Sources: competition.Sources{
			FotmobLeagueID:    row.FotmobLeagueID,
			TransfermarktSlug: row.TransfermarktSlug.String,
			TransfermarktCode: row.TransfermarktCode.String,
			ChampionatSlug:    row.ChampionatSlug.String,
		},
		UpdatedAt: row.UpdatedAt,
	}

	for _, raw := range row.MatchweekStarts {
		start, err := parseDate(raw)
		if err != nil {
			return competition.Competition{}, fmt.Errorf("competition %s: %w", row.Key, err)
		}
		item.MatchweekStarts = append(item.MatchweekStarts, start)
	}

	return item, nil
}
