package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/akruglov/footsync/internal/domain/competition"
	"github.com/akruglov/footsync/internal/domain/match"
	"github.com/akruglov/footsync/internal/domain/stadium"
	"github.com/akruglov/footsync/internal/domain/standing"
	"github.com/akruglov/footsync/internal/domain/team"
	"github.com/akruglov/footsync/internal/domain/watermark"
	"github.com/akruglov/footsync/internal/platform/logging"
)

const defaultWorkerCount = 8

// IngestionConfig tunes one orchestrator instance.
type IngestionConfig struct {
	// WorkerCount bounds concurrent per-match detail fetches.
	WorkerCount int
}

// RunReport summarizes one ingestion run for a competition.
type RunReport struct {
	Competition    string         `json:"competition"`
	Season         int            `json:"season"`
	WindowFrom     time.Time      `json:"window_from"`
	WindowTo       time.Time      `json:"window_to"`
	MatchCount     int            `json:"match_count"`
	DetailFailures int            `json:"detail_failures"`
	RowsByTable    map[string]int `json:"rows_by_table,omitempty"`
	FailedTables   []string       `json:"failed_tables,omitempty"`
	Advanced       bool           `json:"advanced"`
	Skipped        bool           `json:"skipped"`
}

// IngestionService drives the incremental pipeline: select finished matches
// past the watermark, fan out detail fetches, enrich gaps from the secondary
// source and persist everything in dependency order. The watermark advances
// only when the whole run landed.
type IngestionService struct {
	cfg        IngestionConfig
	matches    MatchProvider
	linker     *LinkerService
	comps      competition.Repository
	watermarks watermark.Repository
	writer     BatchWriter
	logger     *logging.Logger
	now        func() time.Time

	runLocks sync.Map
}

func NewIngestionService(
	cfg IngestionConfig,
	matches MatchProvider,
	linker *LinkerService,
	comps competition.Repository,
	watermarks watermark.Repository,
	writer BatchWriter,
	logger *logging.Logger,
) *IngestionService {
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &IngestionService{
		cfg:        cfg,
		matches:    matches,
		linker:     linker,
		comps:      comps,
		watermarks: watermarks,
		writer:     writer,
		logger:     logger,
		now:        time.Now,
	}
}

// IngestAll runs every cataloged competition in sequence. One competition
// failing does not stop the others; the error reports the failure count.
func (s *IngestionService) IngestAll(ctx context.Context) ([]RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestAll")
	defer span.End()

	items, err := s.comps.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list competitions: %w", err)
	}

	reports := make([]RunReport, 0, len(items))
	var failed int
	for _, comp := range items {
		report, err := s.IngestCompetition(ctx, comp.Key)
		if err != nil {
			failed++
			s.logger.ErrorContext(ctx, "ingestion run failed", "competition", comp.Key, "error", err)
		}
		reports = append(reports, report)
	}
	if failed > 0 {
		return reports, fmt.Errorf("ingestion failed for %d of %d competitions", failed, len(items))
	}
	return reports, nil
}

// IngestCompetition runs one competition end to end. Concurrent runs for the
// same competition are skipped rather than queued; the next scheduled run
// picks up whatever this one leaves behind.
func (s *IngestionService) IngestCompetition(ctx context.Context, competitionKey string) (RunReport, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.IngestionService.IngestCompetition")
	defer span.End()

	report := RunReport{Competition: competitionKey}

	lockAny, _ := s.runLocks.LoadOrStore(competitionKey, &sync.Mutex{})
	lock := lockAny.(*sync.Mutex)
	if !lock.TryLock() {
		s.logger.WarnContext(ctx, "ingestion already running, skipping", "competition", competitionKey)
		report.Skipped = true
		return report, nil
	}
	defer lock.Unlock()

	comp, found, err := s.comps.GetByKey(ctx, competitionKey)
	if err != nil {
		return report, fmt.Errorf("load competition %q: %w", competitionKey, err)
	}
	if !found {
		return report, fmt.Errorf("%w: competition %q", ErrNotFound, competitionKey)
	}
	if err := comp.Validate(); err != nil {
		return report, fmt.Errorf("%w: %v", ErrMissingMetadata, err)
	}
	if len(comp.MatchweekStarts) == 0 {
		return report, fmt.Errorf("%w: matchweek calendar missing for %q, refresh metadata first", ErrMissingMetadata, competitionKey)
	}
	report.Season = comp.Season

	mark, hasMark, err := s.watermarks.GetByCompetition(ctx, competitionKey)
	if err != nil {
		return report, fmt.Errorf("load watermark for %q: %w", competitionKey, err)
	}
	from := time.Time{}
	if hasMark {
		from = mark.LastProcessed.UTC().Truncate(24 * time.Hour)
	}
	// Exclusive upper bound: only days that are fully over can be complete.
	to := s.now().UTC().Truncate(24 * time.Hour)
	report.WindowFrom = from
	report.WindowTo = to

	all, err := s.matches.FetchSeasonMatches(ctx, comp)
	if err != nil {
		return report, fmt.Errorf("fetch season matches for %q: %w", competitionKey, err)
	}

	selected := selectWindow(all, from, to)
	report.MatchCount = len(selected)
	if len(selected) == 0 {
		s.logger.InfoContext(ctx, "no new finished matches", "competition", competitionKey, "watermark", from)
		return report, nil
	}

	linkMap := s.buildLinkMap(ctx, comp, selected)
	outcomes, detailFailures := s.fetchDetails(ctx, comp, linkMap, selected)
	report.DetailFailures = detailFailures

	batch := s.assembleBatch(ctx, comp, selected, outcomes)
	if err := s.writer.EnsureSchema(ctx, comp.Schema()); err != nil {
		return report, fmt.Errorf("ensure schema %q: %w", comp.Schema(), err)
	}
	persisted, err := s.writer.UpsertBatch(ctx, comp.Schema(), batch)
	if err != nil {
		return report, fmt.Errorf("persist batch for %q: %w", competitionKey, err)
	}
	report.RowsByTable = persisted.RowsByTable
	report.FailedTables = persisted.FailedTables

	if detailFailures > 0 || !persisted.AllCommitted() {
		s.logger.WarnContext(ctx, "run incomplete, watermark not advanced",
			"competition", competitionKey,
			"detail_failures", detailFailures,
			"failed_tables", persisted.FailedTables,
		)
		return report, nil
	}

	latest := maxMatchDay(selected)
	if err := s.watermarks.Advance(ctx, watermark.Watermark{
		Competition:   competitionKey,
		Season:        comp.Season,
		LastProcessed: latest,
		UpdatedAt:     s.now().UTC(),
	}); err != nil {
		return report, fmt.Errorf("advance watermark for %q: %w", competitionKey, err)
	}
	report.Advanced = true

	s.logger.InfoContext(ctx, "ingestion run complete",
		"competition", competitionKey,
		"matches", len(selected),
		"watermark", latest,
	)
	return report, nil
}

// selectWindow keeps finished matches whose day falls inside (from, to).
func selectWindow(all []SourceMatch, from, to time.Time) []SourceMatch {
	out := make([]SourceMatch, 0, len(all))
	for _, item := range all {
		if !item.Finished || item.Kickoff.IsZero() {
			continue
		}
		day := item.Kickoff.UTC().Truncate(24 * time.Hour)
		if !day.After(from) || !day.Before(to) {
			continue
		}
		out = append(out, item)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Kickoff.Equal(out[j].Kickoff) {
			return out[i].Kickoff.Before(out[j].Kickoff)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// buildLinkMap collects the matchweeks the window touches and asks the
// linker for their fixture pages. Enrichment is best-effort: a failure
// degrades match details to primary-source data only.
func (s *IngestionService) buildLinkMap(ctx context.Context, comp competition.Competition, selected []SourceMatch) LinkMap {
	if s.linker == nil {
		return LinkMap{}
	}

	seen := make(map[int]struct{}, 4)
	matchdays := make([]int, 0, 4)
	for _, item := range selected {
		mw := comp.MatchweekFor(item.Kickoff)
		if mw <= 0 {
			continue
		}
		if _, ok := seen[mw]; ok {
			continue
		}
		seen[mw] = struct{}{}
		matchdays = append(matchdays, mw)
	}

	linkMap, err := s.linker.BuildLinkMap(ctx, comp, matchdays)
	if err != nil {
		s.logger.WarnContext(ctx, "link map unavailable, skipping enrichment",
			"competition", comp.Key,
			"error", err,
		)
		return LinkMap{}
	}
	return linkMap
}

type matchOutcome struct {
	detail SourceMatchDetail
	err    error
}

// fetchDetails fans the per-match detail fetches across a bounded worker
// pool and returns successful outcomes keyed by match ID.
func (s *IngestionService) fetchDetails(ctx context.Context, comp competition.Competition, linkMap LinkMap, selected []SourceMatch) (map[int64]SourceMatchDetail, int) {
	poolSize := s.cfg.WorkerCount
	if poolSize > len(selected) {
		poolSize = len(selected)
	}

	workers, err := ants.NewPool(poolSize)
	if err != nil {
		s.logger.ErrorContext(ctx, "worker pool unavailable, falling back to sequential fetch", "error", err)
		workers = nil
	} else {
		defer workers.Release()
	}

	var wg sync.WaitGroup
	var failures atomic.Int32
	results := make(chan matchOutcome, len(selected))

	for _, item := range selected {
		item := item
		wg.Add(1)
		task := func() {
			defer wg.Done()
			results <- s.processMatch(ctx, comp, linkMap, item)
		}
		if workers == nil {
			task()
			continue
		}
		if submitErr := workers.Submit(task); submitErr != nil {
			wg.Done()
			failures.Add(1)
			s.logger.ErrorContext(ctx, "failed to submit match task", "match_id", item.ID, "error", submitErr)
		}
	}

	wg.Wait()
	close(results)

	out := make(map[int64]SourceMatchDetail, len(selected))
	for outcome := range results {
		if outcome.err != nil {
			failures.Add(1)
			s.logger.WarnContext(ctx, "match detail fetch failed",
				"competition", comp.Key,
				"match_id", outcome.detail.MatchID,
				"error", outcome.err,
			)
			continue
		}
		out[outcome.detail.MatchID] = outcome.detail
	}
	return out, int(failures.Load())
}

// processMatch fetches one match's facts and backfills stadium and
// attendance from the secondary source when the primary omitted them.
func (s *IngestionService) processMatch(ctx context.Context, comp competition.Competition, linkMap LinkMap, item SourceMatch) matchOutcome {
	detail, err := s.matches.FetchMatchDetail(ctx, comp, item.ID)
	if err != nil {
		return matchOutcome{detail: SourceMatchDetail{MatchID: item.ID}, err: err}
	}
	detail.MatchID = item.ID

	if detail.Stadium != "" && detail.Attendance != nil {
		return matchOutcome{detail: detail}
	}
	if s.linker == nil {
		return matchOutcome{detail: detail}
	}

	link, ok := linkMap.Resolve(item.HomeName, item.AwayName)
	if !ok {
		s.logger.DebugContext(ctx, "no cross-source link for match",
			"competition", comp.Key,
			"match_id", item.ID,
			"home", item.HomeName,
			"away", item.AwayName,
			"error", ErrLinkResolution,
		)
		return matchOutcome{detail: detail}
	}

	facts, err := s.linker.FetchMatchFacts(ctx, link)
	if err != nil {
		s.logger.WarnContext(ctx, "match facts enrichment failed",
			"competition", comp.Key,
			"match_id", item.ID,
			"url", link.MatchURL,
			"error", err,
		)
		return matchOutcome{detail: detail}
	}

	if detail.Stadium == "" {
		detail.Stadium = facts.Stadium
	}
	if detail.Attendance == nil {
		detail.Attendance = facts.Attendance
	}
	return matchOutcome{detail: detail}
}

// assembleBatch collects everything the run discovered into dependency
// order: the venue catalog and teams first, then matches and their facts.
func (s *IngestionService) assembleBatch(ctx context.Context, comp competition.Competition, selected []SourceMatch, details map[int64]SourceMatchDetail) Batch {
	batch := Batch{}

	standings, err := s.matches.FetchStandings(ctx, comp)
	if err != nil {
		s.logger.WarnContext(ctx, "standings fetch failed, keeping previous snapshot",
			"competition", comp.Key,
			"error", err,
		)
	}

	teamsByID := make(map[int64]team.Team, len(selected)*2)
	for _, item := range selected {
		teamsByID[item.HomeID] = team.Team{ID: item.HomeID, Name: item.HomeName}
		teamsByID[item.AwayID] = team.Team{ID: item.AwayID, Name: item.AwayName}
	}
	// Table rows cover the whole league; register their teams too so the
	// standings foreign keys always resolve.
	for _, row := range standings {
		if _, ok := teamsByID[row.TeamID]; !ok {
			teamsByID[row.TeamID] = team.Team{ID: row.TeamID, Name: row.TeamName}
		}
	}

	stadiumsByName := map[string]stadium.Stadium{
		stadium.Undefined: stadium.Placeholder(),
	}
	for id := range teamsByID {
		venue, found, err := s.matches.FetchTeamVenue(ctx, id)
		if err != nil {
			s.logger.WarnContext(ctx, "venue fetch failed", "competition", comp.Key, "team_id", id, "error", err)
			continue
		}
		if !found || venue.Name == "" {
			continue
		}
		row := stadium.Stadium{
			Name:        venue.Name,
			City:        venue.City,
			Capacity:    venue.Capacity,
			Built:       venue.Built,
			Surface:     venue.Surface,
			FieldLength: venue.FieldLength,
			FieldWidth:  venue.FieldWidth,
		}
		if err := row.Validate(); err != nil {
			s.logger.WarnContext(ctx, "dropping implausible venue field", "stadium", venue.Name, "error", err)
			row.Built = nil
		}
		stadiumsByName[row.Name] = row
	}

	for _, item := range selected {
		row := match.Match{
			ID:     item.ID,
			Season: comp.Season,
			HomeID: item.HomeID,
			AwayID: item.AwayID,
		}
		if err := row.Validate(); err != nil {
			s.logger.WarnContext(ctx, "dropping invalid match row",
				"competition", comp.Key, "match_id", item.ID, "error", err)
			continue
		}
		batch.Matches = append(batch.Matches, row)

		detail, ok := details[item.ID]
		if !ok {
			continue
		}

		batch.Results = append(batch.Results, match.Result{
			MatchID:   item.ID,
			HomeScore: detail.HomeScore,
			AwayScore: detail.AwayScore,
		})
		if detail.HomeFormation != "" || detail.AwayFormation != "" {
			batch.Lineups = append(batch.Lineups, match.Lineup{
				MatchID:       item.ID,
				HomeFormation: detail.HomeFormation,
				AwayFormation: detail.AwayFormation,
			})
		}

		venueName := detail.Stadium
		if venueName == "" {
			venueName = stadium.Undefined
		}
		if _, known := stadiumsByName[venueName]; !known {
			// A name-only row keeps the foreign key satisfied; the venue
			// catalog fills the rest on a later run.
			stadiumsByName[venueName] = stadium.Stadium{Name: venueName}
		}

		kickoff := detail.KickoffUTC
		if kickoff.IsZero() {
			kickoff = item.Kickoff.UTC()
		}
		batch.Details = append(batch.Details, match.Detail{
			MatchID:      item.ID,
			KickoffUTC:   kickoff,
			Stadium:      venueName,
			Attendance:   detail.Attendance,
			StatusReason: truncateStatusReason(detail.StatusReason),
		})
	}

	for _, row := range teamsByID {
		if err := row.Validate(); err != nil {
			s.logger.WarnContext(ctx, "dropping invalid team row",
				"competition", comp.Key, "team_id", row.ID, "error", err)
			continue
		}
		batch.Teams = append(batch.Teams, row)
	}
	for _, row := range stadiumsByName {
		batch.Stadiums = append(batch.Stadiums, row)
	}

	for _, row := range standings {
		line := standing.Row{
			TeamID:       row.TeamID,
			Season:       comp.Season,
			Position:     row.Position,
			Played:       row.Played,
			Won:          row.Won,
			Drawn:        row.Drawn,
			Lost:         row.Lost,
			GoalsFor:     row.GoalsFor,
			GoalsAgainst: row.GoalsAgainst,
			Points:       row.Points,
		}
		if err := line.Validate(); err != nil {
			s.logger.WarnContext(ctx, "dropping invalid standings row",
				"competition", comp.Key, "team_id", row.TeamID, "error", err)
			continue
		}
		batch.Standings = append(batch.Standings, line)
	}

	batch.Sort()
	return batch
}

// maxStatusReasonLen mirrors the width of the reason column in
// match_details; a longer string would fail the whole table insert.
const maxStatusReasonLen = 25

func truncateStatusReason(reason string) string {
	runes := []rune(reason)
	if len(runes) <= maxStatusReasonLen {
		return reason
	}
	return string(runes[:maxStatusReasonLen])
}

func maxMatchDay(selected []SourceMatch) time.Time {
	var latest time.Time
	for _, item := range selected {
		day := item.Kickoff.UTC().Truncate(24 * time.Hour)
		if day.After(latest) {
			latest = day
		}
	}
	return latest
}
