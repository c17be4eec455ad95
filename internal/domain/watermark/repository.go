package watermark

import "context"

// Repository describes watermark persistence needs from use cases.
type Repository interface {
	GetByCompetition(ctx context.Context, competitionKey string) (Watermark, bool, error)
	// Advance moves the cursor forward. Implementations must never move it
	// backwards, even when handed an older date.
	Advance(ctx context.Context, item Watermark) error
}
