package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/akruglov/footsync/internal/domain/watermark"
	qb "github.com/akruglov/footsync/internal/platform/querybuilder"
)

// WatermarkRepository stores per-competition ingestion cursors in the public
// schema, outside the per-competition data schemas.
type WatermarkRepository struct {
	db *sqlx.DB
}

func NewWatermarkRepository(db *sqlx.DB) *WatermarkRepository {
	return &WatermarkRepository{db: db}
}

func (r *WatermarkRepository) GetByCompetition(ctx context.Context, competitionKey string) (watermark.Watermark, bool, error) {
	query, args, err := qb.Select("*").From("public.watermarks").
		Where(qb.Eq("competition", competitionKey)).
		ToSQL()
	if err != nil {
		return watermark.Watermark{}, false, fmt.Errorf("build select watermark query: %w", err)
	}

	var row watermarkTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return watermark.Watermark{}, false, nil
		}
		return watermark.Watermark{}, false, fmt.Errorf("select watermark: %w", err)
	}

	return watermark.Watermark{
		Competition:   row.Competition,
		Season:        row.Season,
		LastProcessed: row.LastProcessed.UTC(),
		UpdatedAt:     row.UpdatedAt,
	}, true, nil
}

// Advance upserts the cursor. GREATEST keeps an already newer stored date,
// so concurrent or replayed runs can never move it backwards.
func (r *WatermarkRepository) Advance(ctx context.Context, item watermark.Watermark) error {
	if err := item.Validate(); err != nil {
		return fmt.Errorf("advance watermark: %w", err)
	}
	model := watermarkModel(item, time.Now())

	suffix := `ON CONFLICT (competition) DO UPDATE SET
		season = EXCLUDED.season,
		last_processed = GREATEST(watermarks.last_processed, EXCLUDED.last_processed),
		updated_at = EXCLUDED.updated_at`

	query, args, err := qb.InsertModel("public.watermarks", model, suffix)
	if err != nil {
		return fmt.Errorf("build advance watermark query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("advance watermark: %w", err)
	}

	return nil
}

// watermarkModel maps the cursor onto its table row. The insert writes
// updated_at explicitly, so a zero value is stamped with now here rather
// than wiping the audit column.
func watermarkModel(item watermark.Watermark, now time.Time) watermarkTableModel {
	updatedAt := item.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = now
	}
	return watermarkTableModel{
		Competition:   item.Competition,
		Season:        item.Season,
		LastProcessed: item.LastProcessed.UTC(),
		UpdatedAt:     updatedAt.UTC(),
	}
}
