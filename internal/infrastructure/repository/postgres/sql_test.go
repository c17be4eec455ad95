package postgres

import (
	"testing"
	"time"

	"github.com/lib/pq"

	"github.com/akruglov/footsync/internal/domain/watermark"
)

func TestValidIdentifier(t *testing.T) {
	valid := []string{"en_premier_league", "it_serie_a", "public", "_hidden"}
	for _, name := range valid {
		if !validIdentifier(name) {
			t.Fatalf("expected %q to be valid", name)
		}
	}

	invalid := []string{"", "1league", "en-premier", "EN_PREMIER", "drop table;", "a b"}
	for _, name := range invalid {
		if validIdentifier(name) {
			t.Fatalf("expected %q to be invalid", name)
		}
	}
}

func TestQualified(t *testing.T) {
	if got := qualified("en_premier_league", "matches"); got != "en_premier_league.matches" {
		t.Fatalf("unexpected qualified name: %q", got)
	}
}

func TestDateRoundTrip(t *testing.T) {
	day := time.Date(2025, time.August, 23, 19, 30, 0, 0, time.UTC)
	formatted := formatDate(day)
	if formatted != "2025-08-23" {
		t.Fatalf("unexpected formatted date: %q", formatted)
	}

	parsed, err := parseDate(formatted)
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if !parsed.Equal(time.Date(2025, time.August, 23, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected parsed date: %s", parsed)
	}

	if _, err := parseDate("23.08.2025"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestCompetitionFromRow(t *testing.T) {
	row := competitionTableModel{
		Key:             "en_premier_league",
		Name:            "Premier League",
		Season:          2025,
		TeamCount:       20,
		MatchweekStarts: pq.StringArray{"2025-08-15", "2025-08-22"},
		FotmobLeagueID:  47,
	}

	item, err := competitionFromRow(row)
	if err != nil {
		t.Fatalf("competition from row: %v", err)
	}
	if len(item.MatchweekStarts) != 2 {
		t.Fatalf("unexpected starts count: %d", len(item.MatchweekStarts))
	}
	if !item.MatchweekStarts[0].Equal(time.Date(2025, time.August, 15, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected first start: %s", item.MatchweekStarts[0])
	}

	row.MatchweekStarts = pq.StringArray{"not-a-date"}
	if _, err := competitionFromRow(row); err == nil {
		t.Fatalf("expected error for malformed date")
	}
}

func TestWatermarkModel_StampsZeroUpdatedAt(t *testing.T) {
	now := time.Date(2025, time.August, 25, 6, 0, 0, 0, time.UTC)

	model := watermarkModel(watermark.Watermark{
		Competition:   "en_premier_league",
		Season:        2025,
		LastProcessed: time.Date(2025, time.August, 23, 0, 0, 0, 0, time.UTC),
	}, now)
	if !model.UpdatedAt.Equal(now) {
		t.Fatalf("zero updated_at must be stamped with now, got %s", model.UpdatedAt)
	}

	explicit := time.Date(2025, time.August, 24, 12, 0, 0, 0, time.UTC)
	model = watermarkModel(watermark.Watermark{
		Competition:   "en_premier_league",
		Season:        2025,
		LastProcessed: time.Date(2025, time.August, 23, 0, 0, 0, 0, time.UTC),
		UpdatedAt:     explicit,
	}, now)
	if !model.UpdatedAt.Equal(explicit) {
		t.Fatalf("explicit updated_at must be kept, got %s", model.UpdatedAt)
	}
}
