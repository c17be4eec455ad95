// Package transfermarkt scrapes the secondary source's matchday pages for
// cross-source fixture links and per-match venue facts.
package transfermarkt

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/akruglov/footsync/external/fetch"
	"github.com/akruglov/footsync/internal/domain/competition"
	"github.com/akruglov/footsync/internal/usecase"
)

const defaultBaseURL = "https://www.transfermarkt.com"

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

// FetchMatchdayFixtures scrapes one matchday page. Each row carries the
// anchor text of both sides plus the sibling anchor's text as a fallback:
// once a matchday has a discussion thread the first anchor points at it
// instead of the club page.
func (c *Client) FetchMatchdayFixtures(ctx context.Context, comp competition.Competition, matchday int) ([]usecase.LinkRow, error) {
	if comp.Sources.TransfermarktSlug == "" || comp.Sources.TransfermarktCode == "" {
		return nil, fmt.Errorf("%w: transfermarkt identifiers missing for %q", usecase.ErrInvalidInput, comp.Key)
	}
	if matchday < 1 {
		return nil, fmt.Errorf("%w: matchday must be positive", usecase.ErrInvalidInput)
	}

	fullURL := fmt.Sprintf("%s/%s/spieltag/wettbewerb/%s/saison_id/%d/spieltag/%d",
		c.baseURL, comp.Sources.TransfermarktSlug, comp.Sources.TransfermarktCode, comp.Season, matchday)
	doc, err := c.fetcher.GetHTML(ctx, fullURL)
	if err != nil {
		return nil, fmt.Errorf("fetch matchday %d: %w", matchday, err)
	}

	return parseMatchdayFixtures(doc, c.baseURL), nil
}

// FetchMatchFacts scrapes a match report page for stadium and attendance.
func (c *Client) FetchMatchFacts(ctx context.Context, matchURL string) (usecase.MatchFacts, error) {
	if strings.TrimSpace(matchURL) == "" {
		return usecase.MatchFacts{}, fmt.Errorf("%w: match url is required", usecase.ErrInvalidInput)
	}

	fullURL := matchURL
	if strings.HasPrefix(matchURL, "/") {
		fullURL = c.baseURL + matchURL
	}
	doc, err := c.fetcher.GetHTML(ctx, fullURL)
	if err != nil {
		return usecase.MatchFacts{}, fmt.Errorf("fetch match facts: %w", err)
	}

	return parseMatchFacts(doc), nil
}

func parseMatchdayFixtures(doc *goquery.Document, baseURL string) []usecase.LinkRow {
	rows := make([]usecase.LinkRow, 0, 10)
	doc.Find("table tr").Each(func(_ int, tr *goquery.Selection) {
		reportHref, ok := tr.Find("a.ergebnis-link, a.matchresult").First().Attr("href")
		if !ok {
			return
		}

		homeCell := tr.Find("td.rechts").First()
		awayCell := tr.Find("td.links").Last()
		if homeCell.Length() == 0 || awayCell.Length() == 0 {
			return
		}

		matchURL := reportHref
		if strings.HasPrefix(matchURL, baseURL) {
			matchURL = strings.TrimPrefix(matchURL, baseURL)
		}

		rows = append(rows, usecase.LinkRow{
			HomeTitle:    anchorText(homeCell, 0),
			HomeFallback: anchorText(homeCell, 1),
			AwayTitle:    anchorText(awayCell, 0),
			AwayFallback: anchorText(awayCell, 1),
			MatchURL:     matchURL,
		})
	})
	return rows
}

// anchorText returns the trimmed text of the idx-th anchor inside a cell,
// preferring the title attribute when the visible text is truncated.
func anchorText(cell *goquery.Selection, idx int) string {
	anchor := cell.Find("a").Eq(idx)
	if anchor.Length() == 0 {
		return ""
	}
	if title, ok := anchor.Attr("title"); ok && strings.TrimSpace(title) != "" {
		return strings.TrimSpace(title)
	}
	return strings.TrimSpace(anchor.Text())
}

func parseMatchFacts(doc *goquery.Document) usecase.MatchFacts {
	facts := usecase.MatchFacts{}

	doc.Find("p.sb-zusatzinfos, .sb-zusatzinfos").Each(func(_ int, block *goquery.Selection) {
		if facts.Stadium == "" {
			if name := strings.TrimSpace(block.Find("a[href*='stadion']").First().Text()); name != "" {
				facts.Stadium = name
			}
		}
		if facts.Attendance == nil {
			text := block.Text()
			if idx := strings.Index(strings.ToLower(text), "attendance:"); idx >= 0 {
				if value, ok := parseAttendance(text[idx+len("attendance:"):]); ok {
					facts.Attendance = &value
				}
			}
		}
	})

	return facts
}

// parseAttendance reads the leading number from strings like " 53.000  |".
func parseAttendance(raw string) (int, bool) {
	var digits strings.Builder
	started := false
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9':
			digits.WriteRune(r)
			started = true
		case (r == '.' || r == ',' || r == ' ') && started:
			// Thousands separators inside the number.
		default:
			if started {
				value, err := strconv.Atoi(digits.String())
				return value, err == nil
			}
			return 0, false
		}
	}
	if !started {
		return 0, false
	}
	value, err := strconv.Atoi(digits.String())
	return value, err == nil
}
