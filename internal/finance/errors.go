package finance

import (
	"errors"
	"fmt"
)

// ErrMalformedInput marks finance data the aggregator refuses to total.
var ErrMalformedInput = errors.New("finance: malformed input")

// MalformedInputError pinpoints the offending record.
type MalformedInputError struct {
	BranchID int64
	Series   string
	Year     int
	Month    int
	Reason   string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("finance: branch %d %s %d month %d: %s", e.BranchID, e.Series, e.Year, e.Month, e.Reason)
}

// Is lets callers match with errors.Is(err, ErrMalformedInput).
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}
