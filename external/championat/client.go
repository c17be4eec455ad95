// Package championat scrapes the metadata source's tournament calendar for
// the season skeleton: participant count and per-matchweek fixture dates.
package championat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/akruglov/footsync/external/fetch"
	"github.com/akruglov/footsync/internal/domain/competition"
	"github.com/akruglov/footsync/internal/usecase"
)

const defaultBaseURL = "https://www.championat.com"

// participantsLabel is the calendar page's header for the team count block.
const participantsLabel = "Участники"

const calendarDateLayout = "02.01.2006"

type Client struct {
	fetcher *fetch.Client
	baseURL string
}

func NewClient(fetcher *fetch.Client, baseURL string) *Client {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = defaultBaseURL
	}
	return &Client{fetcher: fetcher, baseURL: base}
}

// FetchSchedule loads the tournament calendar page and extracts the season
// shape. The configured slug is the tournament path on the source, e.g.
// "/football/_england/tournament/6116/".
func (c *Client) FetchSchedule(ctx context.Context, comp competition.Competition) (usecase.SourceSchedule, error) {
	slug := comp.Sources.ChampionatSlug
	if slug == "" {
		return usecase.SourceSchedule{}, fmt.Errorf("%w: championat slug missing for %q", usecase.ErrInvalidInput, comp.Key)
	}
	if !strings.HasPrefix(slug, "/") {
		slug = "/" + slug
	}
	if !strings.HasSuffix(slug, "/") {
		slug += "/"
	}

	doc, err := c.fetcher.GetHTML(ctx, c.baseURL+slug+"calendar/")
	if err != nil {
		return usecase.SourceSchedule{}, err
	}
	return parseSchedule(doc), nil
}

func parseSchedule(doc *goquery.Document) usecase.SourceSchedule {
	schedule := usecase.SourceSchedule{
		Participants: parseParticipants(doc),
	}

	doc.Find("tr.stat-results__row").Each(func(_ int, row *goquery.Selection) {
		tourText := row.Find("td.stat-results__tour-num").First().Text()
		dateText := row.Find("td.stat-results__date-time").First().Text()

		matchweek, ok := firstNumber(tourText)
		if !ok {
			return
		}
		date, ok := parseCalendarDate(dateText)
		if !ok {
			return
		}
		schedule.Rounds = append(schedule.Rounds, usecase.ScheduleRound{
			Matchweek: matchweek,
			Date:      date,
		})
	})

	return schedule
}

// parseParticipants finds the team count: a list item whose label span reads
// "Участники" and whose value lives in a sibling div.
func parseParticipants(doc *goquery.Document) int {
	participants := 0
	doc.Find("li span").EachWithBreak(func(_ int, span *goquery.Selection) bool {
		if strings.TrimSpace(span.Text()) != participantsLabel {
			return true
		}
		value := span.ParentsFiltered("li").First().Find("div").First().Text()
		if n, ok := firstNumber(value); ok {
			participants = n
			return false
		}
		return true
	})
	return participants
}

// parseCalendarDate reads the date part of cells like "11.08.2025 22:00".
func parseCalendarDate(raw string) (time.Time, bool) {
	fields := strings.Fields(strings.TrimSpace(raw))
	if len(fields) == 0 {
		return time.Time{}, false
	}
	date, err := time.ParseInLocation(calendarDateLayout, fields[0], time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

// firstNumber extracts the first run of digits, as in "Tour: 21" -> 21.
func firstNumber(raw string) (int, bool) {
	start := -1
	for i, r := range raw {
		if r >= '0' && r <= '9' {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			value, err := strconv.Atoi(raw[start:i])
			return value, err == nil
		}
	}
	if start < 0 {
		return 0, false
	}
	value, err := strconv.Atoi(raw[start:])
	return value, err == nil
}
