// Package stadium models the venue catalog shared by match details.
package stadium

import (
	"fmt"
	"time"
)

// Undefined is the placeholder venue row every schema is seeded with.
// Match details reference it when no source reported a stadium, keeping the
// foreign key satisfiable.
const Undefined = "Undefined"

// Stadium is one venue, keyed by its display name.
type Stadium struct {
	Name        string
	City        string
	Capacity    *int
	Built       *int
	Surface     string
	FieldLength *float64
	FieldWidth  *float64
}

// Validate rejects rows with implausible construction years; sources
// occasionally serve renovation dates or typos in that field.
func (s Stadium) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("stadium name is required")
	}
	if s.Built != nil {
		year := *s.Built
		if year < 1700 || year > time.Now().Year() {
			return fmt.Errorf("stadium built year %d is out of range", year)
		}
	}
	return nil
}

// Placeholder returns the sentinel row seeded into every schema.
func Placeholder() Stadium {
	return Stadium{Name: Undefined}
}
