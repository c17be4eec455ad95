package usecase

import (
	"context"
	"time"

	"github.com/akruglov/footsync/internal/domain/competition"
)

// SourceMatch is one fixture as listed by the primary source's season feed.
type SourceMatch struct {
	ID       int64
	Kickoff  time.Time
	Finished bool
	HomeID   int64
	AwayID   int64
	HomeName string
	AwayName string
}

// SourceMatchDetail is the primary source's view of one played match.
type SourceMatchDetail struct {
	MatchID       int64
	KickoffUTC    time.Time
	HomeScore     int
	AwayScore     int
	HomeFormation string
	AwayFormation string
	Stadium       string
	Attendance    *int
	StatusReason  string
}

// SourceVenue is a team's home ground from the primary source's team page.
type SourceVenue struct {
	Name        string
	City        string
	Capacity    *int
	Built       *int
	Surface     string
	FieldLength *float64
	FieldWidth  *float64
}

// SourceStandingRow is one league-table line from the primary source.
type SourceStandingRow struct {
	TeamID       int64
	TeamName     string
	Position     int
	Played       int
	Won          int
	Drawn        int
	Lost         int
	GoalsFor     int
	GoalsAgainst int
	Points       int
}

// MatchProvider is the primary data source: season fixture list, per-match
// facts, venue catalog and the league table.
type MatchProvider interface {
	FetchSeasonMatches(ctx context.Context, comp competition.Competition) ([]SourceMatch, error)
	FetchMatchDetail(ctx context.Context, comp competition.Competition, matchID int64) (SourceMatchDetail, error)
	FetchTeamVenue(ctx context.Context, teamID int64) (SourceVenue, bool, error)
	FetchStandings(ctx context.Context, comp competition.Competition) ([]SourceStandingRow, error)
}

// LinkRow is one fixture row scraped from the secondary source's matchday
// page. Each side carries the anchor text plus the sibling-element fallback
// used when the anchor holds a navigation placeholder instead of a name.
type LinkRow struct {
	HomeTitle    string
	HomeFallback string
	AwayTitle    string
	AwayFallback string
	MatchURL     string
}

// MatchFacts is what the secondary source knows about one played match.
type MatchFacts struct {
	Stadium    string
	Attendance *int
}

// LinkProvider is the secondary source used to enrich matches the primary
// source left incomplete.
type LinkProvider interface {
	FetchMatchdayFixtures(ctx context.Context, comp competition.Competition, matchday int) ([]LinkRow, error)
	FetchMatchFacts(ctx context.Context, matchURL string) (MatchFacts, error)
}

// ScheduleRound is one (matchweek, fixture date) pair from the metadata
// source's calendar page. The same matchweek appears once per listed fixture.
type ScheduleRound struct {
	Matchweek int
	Date      time.Time
}

// SourceSchedule is the season skeleton scraped from the metadata source.
type SourceSchedule struct {
	Participants int
	Rounds       []ScheduleRound
}

// ScheduleProvider is the metadata source describing the season shape.
type ScheduleProvider interface {
	FetchSchedule(ctx context.Context, comp competition.Competition) (SourceSchedule, error)
}
