package types

import (
	"errors"
	"fmt"
)

// Recoverable per-request errors. Handlers translate these into HTTP
// statuses; the engine keeps serving after any of them.
var (
	ErrInvalidPage   = errors.New("page and page size must be positive")
	ErrEmptyQuery    = errors.New("query must not be empty")
	ErrQueryTooShort = errors.New("query must be at least 2 characters")
	ErrPlaceNotFound = errors.New("place not found")
)

// DataLoadError is fatal at startup: the process must not serve a partially
// loaded catalog. Row is 1-based and counts the header.
type DataLoadError struct {
	Row    int
	Field  string
	Reason string
}

func (e *DataLoadError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("catalog row %d: field %q: %s", e.Row, e.Field, e.Reason)
	}
	return fmt.Sprintf("catalog row %d: %s", e.Row, e.Reason)
}
