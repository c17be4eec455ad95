package main

import (
	"strings"
	"testing"
)

func TestFormatQueryForTrace(t *testing.T) {
	t.Run("collapses whitespace", func(t *testing.T) {
		got := formatQueryForTrace("SELECT *\n\tFROM public.watermarks\n\tWHERE competition = $1")
		want := "SELECT * FROM public.watermarks WHERE competition = $1"
		if got != want {
			t.Fatalf("unexpected query: %q", got)
		}
	})

	t.Run("caps long statements", func(t *testing.T) {
		long := "INSERT INTO en_premier_league.teams (id, title) VALUES " + strings.Repeat("($1, $2), ", 100)
		got := formatQueryForTrace(long)
		if len(got) != maxTracedQueryLength+len("...") {
			t.Fatalf("unexpected length: %d", len(got))
		}
		if !strings.HasSuffix(got, "...") {
			t.Fatalf("expected ellipsis suffix, got %q", got)
		}
	})

	t.Run("empty stays empty", func(t *testing.T) {
		if got := formatQueryForTrace("   "); got != "" {
			t.Fatalf("expected empty, got %q", got)
		}
	})
}
