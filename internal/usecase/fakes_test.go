package usecase

import (
	"context"
	"sync"

	"github.com/akruglov/footsync/internal/domain/competition"
	"github.com/akruglov/footsync/internal/domain/watermark"
)

type fakeCompetitionRepo struct {
	mu    sync.Mutex
	items map[string]competition.Competition
}

func newFakeCompetitionRepo(items ...competition.Competition) *fakeCompetitionRepo {
	repo := &fakeCompetitionRepo{items: make(map[string]competition.Competition, len(items))}
	for _, item := range items {
		repo.items[item.Key] = item
	}
	return repo
}

func (r *fakeCompetitionRepo) List(context.Context) ([]competition.Competition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]competition.Competition, 0, len(r.items))
	for _, item := range r.items {
		out = append(out, item)
	}
	return out, nil
}

func (r *fakeCompetitionRepo) GetByKey(_ context.Context, key string) (competition.Competition, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	item, ok := r.items[key]
	return item, ok, nil
}

func (r *fakeCompetitionRepo) Upsert(_ context.Context, item competition.Competition) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[item.Key] = item
	return nil
}

type fakeWatermarkRepo struct {
	mu         sync.Mutex
	marks      map[string]watermark.Watermark
	advanceErr error
	advances   int
}

func newFakeWatermarkRepo() *fakeWatermarkRepo {
	return &fakeWatermarkRepo{marks: make(map[string]watermark.Watermark)}
}

func (r *fakeWatermarkRepo) GetByCompetition(_ context.Context, key string) (watermark.Watermark, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	mark, ok := r.marks[key]
	return mark, ok, nil
}

func (r *fakeWatermarkRepo) Advance(_ context.Context, item watermark.Watermark) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.advanceErr != nil {
		return r.advanceErr
	}
	current, ok := r.marks[item.Competition]
	if ok && item.LastProcessed.Before(current.LastProcessed) {
		return nil
	}
	r.marks[item.Competition] = item
	r.advances++
	return nil
}

type fakeMatchProvider struct {
	mu        sync.Mutex
	matches   []SourceMatch
	matchErr  error
	details   map[int64]SourceMatchDetail
	detailErr map[int64]error
	venues    map[int64]SourceVenue
	standings []SourceStandingRow
	tableErr  error

	detailCalls int
}

func (p *fakeMatchProvider) FetchSeasonMatches(context.Context, competition.Competition) ([]SourceMatch, error) {
	if p.matchErr != nil {
		return nil, p.matchErr
	}
	return p.matches, nil
}

func (p *fakeMatchProvider) FetchMatchDetail(_ context.Context, _ competition.Competition, matchID int64) (SourceMatchDetail, error) {
	p.mu.Lock()
	p.detailCalls++
	p.mu.Unlock()
	if err, ok := p.detailErr[matchID]; ok {
		return SourceMatchDetail{}, err
	}
	detail, ok := p.details[matchID]
	if !ok {
		return SourceMatchDetail{MatchID: matchID}, nil
	}
	return detail, nil
}

func (p *fakeMatchProvider) FetchTeamVenue(_ context.Context, teamID int64) (SourceVenue, bool, error) {
	venue, ok := p.venues[teamID]
	return venue, ok, nil
}

func (p *fakeMatchProvider) FetchStandings(context.Context, competition.Competition) ([]SourceStandingRow, error) {
	if p.tableErr != nil {
		return nil, p.tableErr
	}
	return p.standings, nil
}

type fakeLinkProvider struct {
	rows        map[int][]LinkRow
	fixturesErr error
	facts       map[string]MatchFacts
	factsErr    error
}

func (p *fakeLinkProvider) FetchMatchdayFixtures(_ context.Context, _ competition.Competition, matchday int) ([]LinkRow, error) {
	if p.fixturesErr != nil {
		return nil, p.fixturesErr
	}
	return p.rows[matchday], nil
}

func (p *fakeLinkProvider) FetchMatchFacts(_ context.Context, matchURL string) (MatchFacts, error) {
	if p.factsErr != nil {
		return MatchFacts{}, p.factsErr
	}
	return p.facts[matchURL], nil
}

type fakeScheduleProvider struct {
	schedule SourceSchedule
	err      error
}

func (p *fakeScheduleProvider) FetchSchedule(context.Context, competition.Competition) (SourceSchedule, error) {
	if p.err != nil {
		return SourceSchedule{}, p.err
	}
	return p.schedule, nil
}

type fakeBatchWriter struct {
	mu      sync.Mutex
	batches []Batch
	schemas []string
	report  BatchReport
	err     error
}

func (w *fakeBatchWriter) EnsureSchema(_ context.Context, schema string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.schemas = append(w.schemas, schema)
	return nil
}

func (w *fakeBatchWriter) UpsertBatch(_ context.Context, _ string, b Batch) (BatchReport, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return BatchReport{}, w.err
	}
	w.batches = append(w.batches, b)
	return w.report, nil
}
