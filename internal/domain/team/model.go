// Package team models a club as identified by the primary data source.
package team

import "fmt"

// Team is one club inside a competition. ID is the primary source's native
// identifier and is stable across seasons.
type Team struct {
	ID   int64
	Name string
}

func (t Team) Validate() error {
	if t.ID <= 0 {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}
	return nil
}
