// Package fotmob adapts the primary JSON API: season fixture lists, match
// facts, team venues and the league table.
package fotmob

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/akruglov/footsync/external/fetch"
	"github.com/akruglov/footsync/internal/domain/competition"
	"github.com/akruglov/footsync/internal/platform/cache"
	"github.com/akruglov/footsync/internal/usecase"
)

const defaultBaseURL = "https://www.fotmob.com/api"

// Venues change once in a blue moon, so team pages are cached across runs.
const venueCacheTTL = 12 * time.Hour

type Client struct {
	fetcher *fetch.Client
	baseURL string
	venues  *cache.Store
}

func NewClient(fetcher *fetch.Client, baseURL string) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{
		fetcher: fetcher,
		baseURL: base,
		venues:  cache.NewStore(venueCacheTTL),
	}
}

func (c *Client) FetchSeasonMatches(ctx context.Context, comp competition.Competition) ([]usecase.SourceMatch, error) {
	if comp.Sources.FotmobLeagueID <= 0 {
		return nil, fmt.Errorf("%w: fotmob league id missing for %q", usecase.ErrInvalidInput, comp.Key)
	}

	query := url.Values{}
	query.Set("id", strconv.FormatInt(comp.Sources.FotmobLeagueID, 10))
	query.Set("season", seasonParam(comp.Season))

	var envelope leagueEnvelope
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/leagues?"+query.Encode(), &envelope); err != nil {
		return nil, fmt.Errorf("fetch league %d: %w", comp.Sources.FotmobLeagueID, err)
	}

	out := make([]usecase.SourceMatch, 0, len(envelope.Matches.AllMatches))
	for _, item := range envelope.Matches.AllMatches {
		if item.ID <= 0 || item.Home.ID <= 0 || item.Away.ID <= 0 {
			continue
		}
		kickoff, err := parseUTCTime(item.Status.UTCTime)
		if err != nil {
			continue
		}
		out = append(out, usecase.SourceMatch{
			ID:       item.ID,
			Kickoff:  kickoff,
			Finished: item.Status.Finished,
			HomeID:   item.Home.ID,
			AwayID:   item.Away.ID,
			HomeName: strings.TrimSpace(item.Home.Name),
			AwayName: strings.TrimSpace(item.Away.Name),
		})
	}
	return out, nil
}

func (c *Client) FetchMatchDetail(ctx context.Context, _ competition.Competition, matchID int64) (usecase.SourceMatchDetail, error) {
	if matchID <= 0 {
		return usecase.SourceMatchDetail{}, fmt.Errorf("%w: match id must be positive", usecase.ErrInvalidInput)
	}

	var envelope matchEnvelope
	fullURL := fmt.Sprintf("%s/matchDetails?matchId=%d", c.baseURL, matchID)
	if err := c.fetcher.GetJSON(ctx, fullURL, &envelope); err != nil {
		return usecase.SourceMatchDetail{}, fmt.Errorf("fetch match %d: %w", matchID, err)
	}

	home, away, err := parseScore(envelope.Header.Status.ScoreStr)
	if err != nil {
		return usecase.SourceMatchDetail{}, fmt.Errorf("match %d: %w", matchID, err)
	}

	detail := usecase.SourceMatchDetail{
		MatchID:       matchID,
		HomeScore:     home,
		AwayScore:     away,
		HomeFormation: strings.TrimSpace(envelope.Content.Lineup.HomeTeam.Formation),
		AwayFormation: strings.TrimSpace(envelope.Content.Lineup.AwayTeam.Formation),
		Stadium:       strings.TrimSpace(envelope.Content.MatchFacts.InfoBox.Stadium.Name),
		StatusReason:  normalizeStatusReason(envelope.Header.Status.Reason.Long),
	}
	if kickoff, err := parseUTCTime(envelope.General.MatchTimeUTC); err == nil {
		detail.KickoffUTC = kickoff
	}
	if attendance := envelope.Content.MatchFacts.InfoBox.Attendance; attendance > 0 {
		detail.Attendance = &attendance
	}
	return detail, nil
}

type venueLookup struct {
	venue usecase.SourceVenue
	found bool
}

func (c *Client) FetchTeamVenue(ctx context.Context, teamID int64) (usecase.SourceVenue, bool, error) {
	if teamID <= 0 {
		return usecase.SourceVenue{}, false, fmt.Errorf("%w: team id must be positive", usecase.ErrInvalidInput)
	}

	key := fmt.Sprintf("venue:%d", teamID)
	value, err := c.venues.GetOrLoad(ctx, key, func(ctx context.Context) (any, error) {
		return c.loadTeamVenue(ctx, teamID)
	})
	if err != nil {
		return usecase.SourceVenue{}, false, err
	}

	lookup, ok := value.(venueLookup)
	if !ok {
		return usecase.SourceVenue{}, false, nil
	}
	return lookup.venue, lookup.found, nil
}

func (c *Client) loadTeamVenue(ctx context.Context, teamID int64) (venueLookup, error) {
	var envelope teamEnvelope
	fullURL := fmt.Sprintf("%s/teams?id=%d", c.baseURL, teamID)
	if err := c.fetcher.GetJSON(ctx, fullURL, &envelope); err != nil {
		return venueLookup{}, fmt.Errorf("fetch team %d: %w", teamID, err)
	}

	widget := envelope.Overview.Venue.Widget
	if strings.TrimSpace(widget.Name) == "" {
		return venueLookup{}, nil
	}

	venue := usecase.SourceVenue{
		Name: strings.TrimSpace(widget.Name),
		City: strings.TrimSpace(widget.City),
	}
	applyVenueStats(&venue, envelope.Overview.Venue.StatPairs)
	return venueLookup{venue: venue, found: true}, nil
}

func (c *Client) FetchStandings(ctx context.Context, comp competition.Competition) ([]usecase.SourceStandingRow, error) {
	if comp.Sources.FotmobLeagueID <= 0 {
		return nil, fmt.Errorf("%w: fotmob league id missing for %q", usecase.ErrInvalidInput, comp.Key)
	}

	query := url.Values{}
	query.Set("id", strconv.FormatInt(comp.Sources.FotmobLeagueID, 10))
	query.Set("season", seasonParam(comp.Season))

	var envelope leagueEnvelope
	if err := c.fetcher.GetJSON(ctx, c.baseURL+"/leagues?"+query.Encode(), &envelope); err != nil {
		return nil, fmt.Errorf("fetch league table %d: %w", comp.Sources.FotmobLeagueID, err)
	}
	if len(envelope.Table) == 0 {
		return nil, nil
	}

	rows := envelope.Table[0].Data.Table.All
	out := make([]usecase.SourceStandingRow, 0, len(rows))
	for _, row := range rows {
		if row.ID <= 0 || row.Idx <= 0 {
			continue
		}
		goalsFor, goalsAgainst := parseScoresStr(row.ScoresStr)
		out = append(out, usecase.SourceStandingRow{
			TeamID:       row.ID,
			TeamName:     strings.TrimSpace(row.Name),
			Position:     row.Idx,
			Played:       row.Played,
			Won:          row.Wins,
			Drawn:        row.Draws,
			Lost:         row.Losses,
			GoalsFor:     goalsFor,
			GoalsAgainst: goalsAgainst,
			Points:       row.Pts,
		})
	}
	return out, nil
}

// seasonParam renders the season's URL form, e.g. 2025 -> "2025/2026".
func seasonParam(startYear int) string {
	return fmt.Sprintf("%d/%d", startYear, startYear+1)
}

func parseUTCTime(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.000Z"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// parseScore splits the header score, e.g. "2 - 1".
func parseScore(raw string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(raw), "-")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("unrecognized score %q", raw)
	}
	home, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized score %q", raw)
	}
	away, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return 0, 0, fmt.Errorf("unrecognized score %q", raw)
	}
	return home, away, nil
}

// parseScoresStr splits a table row's goal column, e.g. "50-27".
func parseScoresStr(raw string) (int, int) {
	goalsFor, goalsAgainst, err := parseScore(raw)
	if err != nil {
		return 0, 0
	}
	return goalsFor, goalsAgainst
}

func normalizeStatusReason(raw string) string {
	reason := strings.TrimSpace(raw)
	switch strings.ToLower(reason) {
	case "", "full-time", "full time", "ft":
		return ""
	default:
		return reason
	}
}

func applyVenueStats(venue *usecase.SourceVenue, pairs [][2]any) {
	for _, pair := range pairs {
		label, ok := pair[0].(string)
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(label)) {
		case "capacity":
			if v, ok := statInt(pair[1]); ok {
				venue.Capacity = &v
			}
		case "opened":
			if v, ok := statInt(pair[1]); ok {
				venue.Built = &v
			}
		case "surface":
			if v, ok := pair[1].(string); ok {
				venue.Surface = strings.TrimSpace(v)
			}
		case "pitch size", "pitch":
			length, width, ok := parsePitchSize(pair[1])
			if ok {
				venue.FieldLength = &length
				venue.FieldWidth = &width
			}
		}
	}
}

func statInt(raw any) (int, bool) {
	switch typed := raw.(type) {
	case float64:
		return int(typed), true
	case string:
		cleaned := strings.Map(func(r rune) rune {
			if r >= '0' && r <= '9' {
				return r
			}
			return -1
		}, typed)
		if cleaned == "" {
			return 0, false
		}
		v, err := strconv.Atoi(cleaned)
		if err != nil {
			return 0, false
		}
		return v, true
	default:
		return 0, false
	}
}

// parsePitchSize reads dimension strings like "105 x 68".
func parsePitchSize(raw any) (float64, float64, bool) {
	value, ok := raw.(string)
	if !ok {
		return 0, 0, false
	}
	parts := strings.Split(strings.ToLower(value), "x")
	if len(parts) != 2 {
		return 0, 0, false
	}
	length, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[0]), "m")), 64)
	if err != nil {
		return 0, 0, false
	}
	width, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(parts[1]), "m")), 64)
	if err != nil {
		return 0, 0, false
	}
	return length, width, true
}
