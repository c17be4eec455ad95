// Package standing models the league table snapshot for one season.
package standing

import "fmt"

// Row is one team's league-table line. Unlike match facts it is mutable:
// each ingestion run overwrites the previous snapshot for (team, season).
type Row struct {
	TeamID       int64
	Season       int
	Position     int
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

func (r Row) Validate() error {
	if r.TeamID <= 0 {
		return fmt.Errorf("standing team id is required")
	}
	if r.Season <= 0 {
		return fmt.Errorf("standing season is required")
	}
	if r.Position <= 0 {
		return fmt.Errorf("standing position is required")
	}
	return nil
}
