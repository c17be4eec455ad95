// Package competition holds the catalog entry for one tracked league
// season: canonical key, matchweek calendar and per-source identifiers.
package competition

import (
	"fmt"
	"time"
)

// FarFuture marks a matchweek whose start date was absent from the
// metadata source. It sorts after any real fixture date.
var FarFuture = time.Date(9999, time.December, 31, 0, 0, 0, 0, time.UTC)

// Sources carries the identifiers each upstream uses for this competition.
type Sources struct {
	FotmobLeagueID    int64
	TransfermarktSlug string
	TransfermarktCode string
	ChampionatSlug    string
}

// Competition is one league season tracked by the pipeline. Key doubles as
// the Postgres schema name, so it must already be a valid identifier.
type Competition struct {
	Key       string
	Name      string
	Season    int
	TeamCount int
	// MatchweekStarts[i] is the first fixture date of matchweek i+1. The
	// slice carries one trailing element bounding the final matchweek.
	MatchweekStarts []time.Time
	Sources         Sources
	UpdatedAt       time.Time
}

func (c Competition) Validate() error {
	if c.Key == "" {
		return fmt.Errorf("competition key is required")
	}
	if c.Season <= 0 {
		return fmt.Errorf("competition season is required")
	}
	if c.TeamCount < 2 {
		return fmt.Errorf("competition team count must be >= 2")
	}
	return nil
}

// Schema is the Postgres schema holding this competition's tables.
func (c Competition) Schema() string {
	return c.Key
}

// TotalMatchweeks is the round count of a double round-robin season.
func (c Competition) TotalMatchweeks() int {
	return (c.TeamCount - 1) * 2
}

// MatchweekFor places a fixture date inside the matchweek calendar.
// Returns 0 when the calendar is missing or the date falls outside it.
func (c Competition) MatchweekFor(date time.Time) int {
	total := c.TotalMatchweeks()
	if len(c.MatchweekStarts) < total+1 {
		return 0
	}
	day := date.UTC().Truncate(24 * time.Hour)
	for i := 0; i < total; i++ {
		start := c.MatchweekStarts[i]
		end := c.MatchweekStarts[i+1]
		// A matchweek the metadata source never dated cannot place or
		// bound a fixture; later weeks with real dates still resolve.
		if start.Equal(FarFuture) || end.Equal(FarFuture) {
			continue
		}
		if !day.Before(start) && day.Before(end) {
			return i + 1
		}
	}
	// The final matchweek's bound is an estimate; late reschedules of the
	// last round still belong to it.
	if !day.Before(c.MatchweekStarts[total]) {
		return total
	}
	return 0
}
