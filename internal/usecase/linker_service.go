package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/sourcegraph/conc/pool"

	"github.com/akruglov/footsync/internal/domain/competition"
	"github.com/akruglov/footsync/internal/normalize"
	"github.com/akruglov/footsync/internal/platform/logging"
)

// matchdayThreadPlaceholder is what the secondary source renders inside a
// fixture anchor once the matchday has a discussion thread; the real team
// name then lives in a sibling element.
const matchdayThreadPlaceholder = "Go to matchday thread"

// linkerMaxConcurrency bounds parallel matchday page fetches.
const linkerMaxConcurrency = 4

// Link is one resolved secondary-source fixture page.
type Link struct {
	MatchURL  string
	Matchweek int
}

// LinkMap joins fixtures across sources by their canonical fixture key.
type LinkMap map[string]Link

// Resolve looks up the secondary-source page for a fixture by raw team names.
func (m LinkMap) Resolve(homeName, awayName string) (Link, bool) {
	link, ok := m[normalize.FixtureKey(homeName, awayName)]
	return link, ok
}

// LinkerService builds the cross-source fixture index from the secondary
// source's matchday pages.
type LinkerService struct {
	links  LinkProvider
	logger *logging.Logger
}

func NewLinkerService(links LinkProvider, logger *logging.Logger) *LinkerService {
	if logger == nil {
		logger = logging.Default()
	}
	return &LinkerService{links: links, logger: logger}
}

// BuildLinkMap fetches the given matchdays concurrently and indexes every
// fixture row by its canonical key. When the same key appears on several
// pages, the highest matchday wins: reschedules show up on the later page.
func (s *LinkerService) BuildLinkMap(ctx context.Context, comp competition.Competition, matchdays []int) (LinkMap, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.LinkerService.BuildLinkMap")
	defer span.End()

	if s.links == nil {
		return nil, fmt.Errorf("%w: link source is not configured", ErrDependencyUnavailable)
	}
	if len(matchdays) == 0 {
		return LinkMap{}, nil
	}

	ordered := append([]int(nil), matchdays...)
	sort.Ints(ordered)

	type pageResult struct {
		matchday int
		rows     []LinkRow
	}

	var mu sync.Mutex
	pages := make([]pageResult, 0, len(ordered))

	workers := pool.New().WithContext(ctx).WithMaxGoroutines(linkerMaxConcurrency)
	for _, matchday := range ordered {
		matchday := matchday
		workers.Go(func(ctx context.Context) error {
			rows, err := s.links.FetchMatchdayFixtures(ctx, comp, matchday)
			if err != nil {
				return fmt.Errorf("fetch matchday %d: %w", matchday, err)
			}
			mu.Lock()
			pages = append(pages, pageResult{matchday: matchday, rows: rows})
			mu.Unlock()
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(pages, func(i, j int) bool { return pages[i].matchday < pages[j].matchday })

	out := make(LinkMap, len(pages)*10)
	for _, page := range pages {
		for _, row := range page.rows {
			home := resolveRowName(row.HomeTitle, row.HomeFallback)
			away := resolveRowName(row.AwayTitle, row.AwayFallback)
			if home == "" || away == "" || row.MatchURL == "" {
				s.logger.WarnContext(ctx, "skipping unresolvable fixture row",
					"competition", comp.Key,
					"matchday", page.matchday,
					"url", row.MatchURL,
				)
				continue
			}
			key := normalize.FixtureKey(home, away)
			out[key] = Link{MatchURL: row.MatchURL, Matchweek: page.matchday}
		}
	}

	s.logger.DebugContext(ctx, "link map built",
		"competition", comp.Key,
		"matchdays", len(ordered),
		"fixtures", len(out),
	)
	return out, nil
}

// FetchMatchFacts loads the secondary source's facts page behind a link.
func (s *LinkerService) FetchMatchFacts(ctx context.Context, link Link) (MatchFacts, error) {
	if s.links == nil {
		return MatchFacts{}, fmt.Errorf("%w: link source is not configured", ErrDependencyUnavailable)
	}
	return s.links.FetchMatchFacts(ctx, link.MatchURL)
}

// resolveRowName prefers the anchor text unless it carries the matchday
// thread placeholder, in which case the sibling fallback holds the name.
func resolveRowName(title, fallback string) string {
	title = strings.TrimSpace(title)
	if title != "" && !strings.EqualFold(title, matchdayThreadPlaceholder) {
		return title
	}
	return strings.TrimSpace(fallback)
}
