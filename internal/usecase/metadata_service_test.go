package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akruglov/footsync/internal/domain/competition"
	"github.com/akruglov/footsync/internal/platform/logging"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeriveMatchweekStarts_KeepsEarliestDatePerMatchweek(t *testing.T) {
	t.Parallel()

	rounds := []ScheduleRound{
		{Matchweek: 1, Date: day(2025, 8, 16)},
		{Matchweek: 1, Date: day(2025, 8, 15)},
		{Matchweek: 1, Date: day(2025, 8, 17)},
		{Matchweek: 2, Date: day(2025, 8, 23)},
		{Matchweek: 2, Date: day(2025, 8, 22)},
	}

	starts := DeriveMatchweekStarts(rounds, 2)
	require.Len(t, starts, 3)
	assert.Equal(t, day(2025, 8, 15), starts[0])
	assert.Equal(t, day(2025, 8, 22), starts[1])
	assert.Equal(t, day(2025, 8, 29), starts[2], "final bound is a week after the last start")
}

func TestDeriveMatchweekStarts_MissingMatchweekStaysFarFuture(t *testing.T) {
	t.Parallel()

	rounds := []ScheduleRound{
		{Matchweek: 1, Date: day(2025, 8, 15)},
		{Matchweek: 3, Date: day(2025, 8, 29)},
		{Matchweek: 4, Date: day(2025, 9, 5)},
	}

	starts := DeriveMatchweekStarts(rounds, 4)
	require.Len(t, starts, 5)
	assert.Equal(t, competition.FarFuture, starts[1])
	assert.Equal(t, day(2025, 9, 12), starts[4])
}

func TestDeriveMatchweekStarts_IgnoresOutOfRangeRounds(t *testing.T) {
	t.Parallel()

	rounds := []ScheduleRound{
		{Matchweek: 0, Date: day(2025, 8, 1)},
		{Matchweek: 5, Date: day(2025, 8, 1)},
		{Matchweek: 2, Date: day(2025, 8, 22)},
	}

	starts := DeriveMatchweekStarts(rounds, 2)
	require.Len(t, starts, 3)
	assert.Equal(t, competition.FarFuture, starts[0])
	assert.Equal(t, day(2025, 8, 22), starts[1])
}

func TestMetadataRefresh_StoresDerivedCalendar(t *testing.T) {
	t.Parallel()

	comps := newFakeCompetitionRepo(competition.Competition{
		Key:    "en_premier_league",
		Name:   "Premier League",
		Season: 2024,
	})
	schedules := &fakeScheduleProvider{
		schedule: SourceSchedule{
			Participants: 3,
			Rounds: []ScheduleRound{
				{Matchweek: 1, Date: day(2025, 8, 15)},
				{Matchweek: 2, Date: day(2025, 8, 22)},
				{Matchweek: 3, Date: day(2025, 8, 29)},
				{Matchweek: 4, Date: day(2025, 9, 5)},
			},
		},
	}

	svc := NewMetadataService(schedules, comps, logging.NewNop())
	require.NoError(t, svc.Refresh(context.Background(), "en_premier_league"))

	stored, found, err := comps.GetByKey(context.Background(), "en_premier_league")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, stored.TeamCount)
	assert.Equal(t, 2025, stored.Season, "season derived from earliest fixture date")
	require.Len(t, stored.MatchweekStarts, stored.TotalMatchweeks()+1)
	assert.Equal(t, day(2025, 8, 15), stored.MatchweekStarts[0])
}

func TestMetadataRefresh_MissingParticipantsIsFatal(t *testing.T) {
	t.Parallel()

	comps := newFakeCompetitionRepo(competition.Competition{Key: "it_serie_a", Season: 2025})
	schedules := &fakeScheduleProvider{
		schedule: SourceSchedule{
			Participants: 0,
			Rounds:       []ScheduleRound{{Matchweek: 1, Date: day(2025, 8, 15)}},
		},
	}

	svc := NewMetadataService(schedules, comps, logging.NewNop())
	err := svc.Refresh(context.Background(), "it_serie_a")
	assert.ErrorIs(t, err, ErrMissingMetadata)
}

func TestMetadataRefresh_UnknownCompetition(t *testing.T) {
	t.Parallel()

	svc := NewMetadataService(&fakeScheduleProvider{}, newFakeCompetitionRepo(), logging.NewNop())
	err := svc.Refresh(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMatchweekFor(t *testing.T) {
	t.Parallel()

	comp := competition.Competition{
		Key:       "de_bundesliga",
		Season:    2025,
		TeamCount: 3,
		MatchweekStarts: []time.Time{
			day(2025, 8, 15),
			day(2025, 8, 22),
			day(2025, 8, 29),
			day(2025, 9, 5),
			day(2025, 9, 12),
		},
	}

	assert.Equal(t, 1, comp.MatchweekFor(day(2025, 8, 15)))
	assert.Equal(t, 1, comp.MatchweekFor(day(2025, 8, 21)))
	assert.Equal(t, 2, comp.MatchweekFor(day(2025, 8, 22)))
	assert.Equal(t, 4, comp.MatchweekFor(day(2025, 9, 20)), "late reschedule lands in final matchweek")
	assert.Equal(t, 0, comp.MatchweekFor(day(2025, 8, 1)), "date before the season has no matchweek")
}

func TestMatchweekFor_UndatedWeekDoesNotBlockLaterWeeks(t *testing.T) {
	t.Parallel()

	comp := competition.Competition{
		Key:       "fr_ligue_1",
		Season:    2025,
		TeamCount: 3,
		MatchweekStarts: []time.Time{
			day(2025, 8, 15),
			competition.FarFuture,
			day(2025, 8, 29),
			day(2025, 9, 5),
			day(2025, 9, 12),
		},
	}

	assert.Equal(t, 3, comp.MatchweekFor(day(2025, 9, 1)), "weeks after the gap must still resolve")
	assert.Equal(t, 4, comp.MatchweekFor(day(2025, 9, 6)))
	assert.Equal(t, 0, comp.MatchweekFor(day(2025, 8, 16)), "a week with an unknown bound cannot place a date")
	assert.Equal(t, 0, comp.MatchweekFor(day(2025, 8, 25)))
}
