package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/akruglov/footsync/internal/domain/competition"
	"github.com/akruglov/footsync/internal/platform/logging"
)

// finalMatchweekPadding bounds the last matchweek when the calendar gives no
// later date to close it against.
const finalMatchweekPadding = 7 * 24 * time.Hour

// MetadataService refreshes the competition catalog from the metadata
// source: participant count and the matchweek calendar.
type MetadataService struct {
	schedules ScheduleProvider
	comps     competition.Repository
	logger    *logging.Logger
}

func NewMetadataService(schedules ScheduleProvider, comps competition.Repository, logger *logging.Logger) *MetadataService {
	if logger == nil {
		logger = logging.Default()
	}
	return &MetadataService{
		schedules: schedules,
		comps:     comps,
		logger:    logger,
	}
}

// RefreshAll re-derives metadata for every cataloged competition. A failure
// in one competition does not stop the others.
func (s *MetadataService) RefreshAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetadataService.RefreshAll")
	defer span.End()

	items, err := s.comps.List(ctx)
	if err != nil {
		return fmt.Errorf("list competitions: %w", err)
	}

	var failed int
	for _, comp := range items {
		if err := s.Refresh(ctx, comp.Key); err != nil {
			failed++
			s.logger.ErrorContext(ctx, "metadata refresh failed", "competition", comp.Key, "error", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("metadata refresh failed for %d of %d competitions", failed, len(items))
	}
	return nil
}

// Refresh scrapes the season schedule and stores the derived matchweek
// calendar. The participant count is load-bearing: without it the matchweek
// count is unknown and the competition cannot be ingested.
func (s *MetadataService) Refresh(ctx context.Context, competitionKey string) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MetadataService.Refresh")
	defer span.End()

	comp, found, err := s.comps.GetByKey(ctx, competitionKey)
	if err != nil {
		return fmt.Errorf("load competition %q: %w", competitionKey, err)
	}
	if !found {
		return fmt.Errorf("%w: competition %q", ErrNotFound, competitionKey)
	}

	schedule, err := s.schedules.FetchSchedule(ctx, comp)
	if err != nil {
		return fmt.Errorf("fetch schedule for %q: %w", competitionKey, err)
	}
	if schedule.Participants < 2 {
		return fmt.Errorf("%w: participant count missing for %q", ErrMissingMetadata, competitionKey)
	}

	comp.TeamCount = schedule.Participants
	comp.Season = seasonFromRounds(schedule.Rounds, comp.Season)
	comp.MatchweekStarts = DeriveMatchweekStarts(schedule.Rounds, comp.TotalMatchweeks())
	comp.UpdatedAt = time.Now().UTC()

	if err := s.comps.Upsert(ctx, comp); err != nil {
		return fmt.Errorf("store competition %q: %w", competitionKey, err)
	}

	s.logger.InfoContext(ctx, "competition metadata refreshed",
		"competition", comp.Key,
		"season", comp.Season,
		"teams", comp.TeamCount,
		"matchweeks", comp.TotalMatchweeks(),
	)
	return nil
}

// DeriveMatchweekStarts reduces the scraped (matchweek, date) pairs to the
// earliest date per matchweek. Matchweeks absent from the page stay at the
// far-future marker. The result carries one extra element bounding the last
// matchweek, estimated a week after its start when nothing better is known.
func DeriveMatchweekStarts(rounds []ScheduleRound, totalMatchweeks int) []time.Time {
	if totalMatchweeks < 1 {
		return nil
	}
	starts := make([]time.Time, totalMatchweeks+1)
	for i := range starts {
		starts[i] = competition.FarFuture
	}

	for _, round := range rounds {
		idx := round.Matchweek - 1
		if idx < 0 || idx >= totalMatchweeks || round.Date.IsZero() {
			continue
		}
		day := round.Date.UTC().Truncate(24 * time.Hour)
		if day.Before(starts[idx]) {
			starts[idx] = day
		}
	}

	last := starts[totalMatchweeks-1]
	if !last.Equal(competition.FarFuture) {
		starts[totalMatchweeks] = last.Add(finalMatchweekPadding)
	}
	return starts
}

func seasonFromRounds(rounds []ScheduleRound, fallback int) int {
	earliest := competition.FarFuture
	for _, round := range rounds {
		if round.Date.IsZero() {
			continue
		}
		if round.Date.Before(earliest) {
			earliest = round.Date
		}
	}
	if earliest.Equal(competition.FarFuture) {
		return fallback
	}
	return earliest.Year()
}
