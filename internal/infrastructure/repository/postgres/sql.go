package postgres

import (
	"database/sql"
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

func isNotFound(err error) bool {
	return err == sql.ErrNoRows
}

// qualified prefixes a table with its schema, e.g. "en_premier_league.matches".
func qualified(schema, table string) string {
	return schema + "." + table
}

// validIdentifier reports whether a name is safe to interpolate into DDL.
// Schema names come from the competition catalog, not user input, but they
// still end up inside CREATE statements.
func validIdentifier(name string) bool {
	if name == "" || len(name) > 63 {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z':
		case r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func formatDate(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

func parseDate(raw string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t, nil
}
