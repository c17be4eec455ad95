package usecase

import (
	"context"
	"sort"

	"github.com/akruglov/footsync/internal/domain/match"
	"github.com/akruglov/footsync/internal/domain/stadium"
	"github.com/akruglov/footsync/internal/domain/standing"
	"github.com/akruglov/footsync/internal/domain/team"
)

// Batch groups everything one ingestion run discovered for a competition.
// Slice order mirrors the foreign-key dependency order a writer must follow:
// stadiums and teams first, then matches, then match-scoped facts.
type Batch struct {
	Stadiums  []stadium.Stadium
	Teams     []team.Team
	Matches   []match.Match
	Results   []match.Result
	Lineups   []match.Lineup
	Details   []match.Detail
	Standings []standing.Row
}

// IsEmpty reports whether the batch carries no rows at all.
func (b Batch) IsEmpty() bool {
	return len(b.Stadiums) == 0 && len(b.Teams) == 0 && len(b.Matches) == 0 &&
		len(b.Results) == 0 && len(b.Lineups) == 0 && len(b.Details) == 0 &&
		len(b.Standings) == 0
}

// Sort orders every slice deterministically so identical runs produce
// identical statements regardless of worker completion order.
func (b *Batch) Sort() {
	sort.SliceStable(b.Stadiums, func(i, j int) bool { return b.Stadiums[i].Name < b.Stadiums[j].Name })
	sort.SliceStable(b.Teams, func(i, j int) bool { return b.Teams[i].ID < b.Teams[j].ID })
	sort.SliceStable(b.Matches, func(i, j int) bool { return b.Matches[i].ID < b.Matches[j].ID })
	sort.SliceStable(b.Results, func(i, j int) bool { return b.Results[i].MatchID < b.Results[j].MatchID })
	sort.SliceStable(b.Lineups, func(i, j int) bool { return b.Lineups[i].MatchID < b.Lineups[j].MatchID })
	sort.SliceStable(b.Details, func(i, j int) bool { return b.Details[i].MatchID < b.Details[j].MatchID })
	sort.SliceStable(b.Standings, func(i, j int) bool { return b.Standings[i].TeamID < b.Standings[j].TeamID })
}

// BatchReport summarizes one persistence pass. Tables commit independently,
// so some may land while others fail; the watermark only moves when all did.
type BatchReport struct {
	RowsByTable   map[string]int
	FailedTables  []string
	SkippedTables []string
}

// AllCommitted reports whether every attempted table transaction committed.
func (r BatchReport) AllCommitted() bool {
	return len(r.FailedTables) == 0
}

// BatchWriter persists one run's batch into the competition's schema.
type BatchWriter interface {
	EnsureSchema(ctx context.Context, schema string) error
	UpsertBatch(ctx context.Context, schema string, b Batch) (BatchReport, error)
}
