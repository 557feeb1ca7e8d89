package enhance

import (
	"errors"
	"fmt"
)

// ErrNotLoaded is returned when a query runs before any source is loaded.
var ErrNotLoaded = errors.New("no enhancement source loaded")

// UnavailableError is the soft failure reported by Enhance. Callers
// continue without passages.
type UnavailableError struct {
	Op     string
	Source string
	Err    error
}

func (e *UnavailableError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("enhancement %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("enhancement %s %q failed: %v", e.Op, e.Source, e.Err)
}

func (e *UnavailableError) Unwrap() error { return e.Err }
