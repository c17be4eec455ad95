package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akruglov/footsync/internal/domain/competition"
	"github.com/akruglov/footsync/internal/platform/logging"
)

func TestBuildLinkMap_IndexesByFixtureKey(t *testing.T) {
	t.Parallel()

	links := &fakeLinkProvider{
		rows: map[int][]LinkRow{
			1: {
				{
					HomeTitle: "Manchester United FC",
					AwayTitle: "AFC Bournemouth",
					MatchURL:  "/spielbericht/101",
				},
			},
		},
	}

	svc := NewLinkerService(links, logging.NewNop())
	linkMap, err := svc.BuildLinkMap(context.Background(), competition.Competition{Key: "en_premier_league"}, []int{1})
	require.NoError(t, err)
	require.Len(t, linkMap, 1)

	link, ok := linkMap.Resolve("Manchester United FC", "AFC Bournemouth")
	require.True(t, ok)
	assert.Equal(t, "/spielbericht/101", link.MatchURL)
	assert.Equal(t, 1, link.Matchweek)

	_, ok = linkMap["manchester-united-vs-bournemouth"]
	assert.True(t, ok, "key must use the canonical slug form")
}

func TestBuildLinkMap_PlaceholderFallsBackToSibling(t *testing.T) {
	t.Parallel()

	links := &fakeLinkProvider{
		rows: map[int][]LinkRow{
			3: {
				{
					HomeTitle:    "Go to matchday thread",
					HomeFallback: "Borussia Mönchengladbach",
					AwayTitle:    "Go to matchday thread",
					AwayFallback: "1.FC Köln",
					MatchURL:     "/spielbericht/202",
				},
			},
		},
	}

	svc := NewLinkerService(links, logging.NewNop())
	linkMap, err := svc.BuildLinkMap(context.Background(), competition.Competition{Key: "de_bundesliga"}, []int{3})
	require.NoError(t, err)

	link, ok := linkMap["mgladbach-vs-cologne"]
	require.True(t, ok, "placeholder rows must resolve through the fallback text")
	assert.Equal(t, "/spielbericht/202", link.MatchURL)
}

func TestBuildLinkMap_LaterMatchdayWins(t *testing.T) {
	t.Parallel()

	links := &fakeLinkProvider{
		rows: map[int][]LinkRow{
			2: {{HomeTitle: "Everton", AwayTitle: "Fulham FC", MatchURL: "/spielbericht/old"}},
			9: {{HomeTitle: "Everton", AwayTitle: "Fulham FC", MatchURL: "/spielbericht/new"}},
		},
	}

	svc := NewLinkerService(links, logging.NewNop())
	linkMap, err := svc.BuildLinkMap(context.Background(), competition.Competition{Key: "en_premier_league"}, []int{9, 2})
	require.NoError(t, err)

	link, ok := linkMap.Resolve("Everton", "Fulham FC")
	require.True(t, ok)
	assert.Equal(t, "/spielbericht/new", link.MatchURL)
	assert.Equal(t, 9, link.Matchweek)
}

func TestBuildLinkMap_SkipsIncompleteRows(t *testing.T) {
	t.Parallel()

	links := &fakeLinkProvider{
		rows: map[int][]LinkRow{
			1: {
				{HomeTitle: "", AwayTitle: "Arsenal FC", MatchURL: "/spielbericht/303"},
				{HomeTitle: "Chelsea FC", AwayTitle: "Arsenal FC", MatchURL: ""},
			},
		},
	}

	svc := NewLinkerService(links, logging.NewNop())
	linkMap, err := svc.BuildLinkMap(context.Background(), competition.Competition{Key: "en_premier_league"}, []int{1})
	require.NoError(t, err)
	assert.Empty(t, linkMap)
}

func TestBuildLinkMap_ProviderErrorPropagates(t *testing.T) {
	t.Parallel()

	links := &fakeLinkProvider{fixturesErr: errors.New("boom")}
	svc := NewLinkerService(links, logging.NewNop())
	_, err := svc.BuildLinkMap(context.Background(), competition.Competition{Key: "fr_ligue_1"}, []int{1, 2})
	assert.Error(t, err)
}

func TestBuildLinkMap_NoMatchdays(t *testing.T) {
	t.Parallel()

	svc := NewLinkerService(&fakeLinkProvider{}, logging.NewNop())
	linkMap, err := svc.BuildLinkMap(context.Background(), competition.Competition{Key: "es_la_liga"}, nil)
	require.NoError(t, err)
	assert.Empty(t, linkMap)
}
