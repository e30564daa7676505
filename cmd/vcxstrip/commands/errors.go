package commands

import (
	"errors"
	"fmt"
)

// ErrNoFiles is returned when vcxstrip runs without any project file argument.
// The usage line has already been printed when it is returned.
var ErrNoFiles = errors.New("no project files specified")

// BatchError reports that some eligible files could not be read or written.
// The remaining files were still processed.
type BatchError struct {
	Failed int
	Total  int
}

// Error implements the error interface
func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d files could not be processed", e.Failed, e.Total)
}
