// Package match models a fixture and its dependent facts: final score,
// formations and venue details. Dependents reference Match by ID, so they
// must never be persisted before their match row.
package match

import (
	"fmt"
	"time"
)

// Match is the immutable identity of one fixture.
type Match struct {
	ID     int64
	Season int
	HomeID int64
	AwayID int64
}

func (m Match) Validate() error {
	if m.ID <= 0 {
		return fmt.Errorf("match id is required")
	}
	if m.HomeID <= 0 || m.AwayID <= 0 {
		return fmt.Errorf("match team ids are required")
	}
	if m.HomeID == m.AwayID {
		return fmt.Errorf("match cannot pair a team with itself")
	}
	return nil
}

// Result is the full-time score of a finished match.
type Result struct {
	MatchID   int64
	HomeScore int
	AwayScore int
}

// Lineup holds the starting formations, e.g. "4-3-3".
type Lineup struct {
	MatchID       int64
	HomeFormation string
	AwayFormation string
}

// Detail carries venue facts for one match. Stadium falls back to the
// placeholder row when no source reported it. StatusReason is non-empty only
// for abandoned or postponed fixtures.
type Detail struct {
	MatchID      int64
	KickoffUTC   time.Time
	Stadium      string
	Attendance   *int
	StatusReason string
}
