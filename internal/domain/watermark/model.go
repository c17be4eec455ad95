// Package watermark tracks the per-competition ingestion cursor.
package watermark

import (
	"fmt"
	"time"
)

// Watermark records the latest fixture date fully persisted for one
// competition. Runs only consider fixtures strictly after it, and it moves
// only when every row of a run committed.
type Watermark struct {
	Competition   string
	Season        int
	LastProcessed time.Time
	UpdatedAt     time.Time
}

func (w Watermark) Validate() error {
	if w.Competition == "" {
		return fmt.Errorf("watermark competition is required")
	}
	if w.LastProcessed.IsZero() {
		return fmt.Errorf("watermark last processed date is required")
	}
	return nil
}
