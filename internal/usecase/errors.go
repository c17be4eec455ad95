package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
	// ErrMissingMetadata means the metadata source omitted a fact the
	// pipeline cannot derive, such as the number of participating teams.
	ErrMissingMetadata = errors.New("competition metadata incomplete")
	// ErrLinkResolution means a fixture could not be joined across sources.
	ErrLinkResolution = errors.New("cross-source link unresolved")
)
