// Package tile contains the pure business logic for per-stage tile status.
// This is part of the Functional Core - no I/O, only pure functions.
package tile

import (
	"fmt"
	"strings"
)

// Status is the processing status of a tile within one pipeline stage.
//
// DoesNotExist, Incomplete, Processing and Complete form the progress axis
// and are ordered. Failed and Canceled sit outside that order.
type Status int

const (
	StatusDoesNotExist Status = iota
	StatusIncomplete
	StatusProcessing
	StatusComplete
	StatusFailed
	StatusCanceled
)

var statusNames = map[Status]string{
	StatusDoesNotExist: "does_not_exist",
	StatusIncomplete:   "incomplete",
	StatusProcessing:   "processing",
	StatusComplete:     "complete",
	StatusFailed:       "failed",
	StatusCanceled:     "canceled",
}

// String returns the persisted name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus maps a persisted status name back to a Status.
// Matching is case-insensitive and accepts dashes in place of underscores.
func ParseStatus(name string) (Status, error) {
	normalized := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for s, n := range statusNames {
		if n == normalized {
			return s, nil
		}
	}
	return StatusDoesNotExist, fmt.Errorf("unknown tile status %q", name)
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	if _, ok := statusNames[s]; !ok {
		return nil, fmt.Errorf("unknown tile status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// IsProgress reports whether s lies on the progress axis.
func (s Status) IsProgress() bool {
	return s >= StatusDoesNotExist && s <= StatusComplete
}

// IsAbsorbing reports whether s is Failed or Canceled.
func (s Status) IsAbsorbing() bool {
	return s == StatusFailed || s == StatusCanceled
}

// Compare orders two progress statuses, returning -1, 0 or +1.
// Absorbing statuses compare by their numeric value after Complete; callers
// resolve them with CombineUpstream before comparing.
func (s Status) Compare(other Status) int {
	switch {
	case s < other:
		return -1
	case s > other:
		return 1
	default:
		return 0
	}
}

// MinProgress returns the lesser of two progress statuses.
func MinProgress(a, b Status) Status {
	if a.Compare(b) <= 0 {
		return a
	}
	return b
}

// CombineUpstream folds the statuses of the two tiles a stage depends on.
// Failed wins over Canceled, which wins over the progress axis; otherwise the
// lesser progress value is returned since both must reach it.
func CombineUpstream(a, b Status) Status {
	switch {
	case a == StatusFailed || b == StatusFailed:
		return StatusFailed
	case a == StatusCanceled || b == StatusCanceled:
		return StatusCanceled
	default:
		return MinProgress(a, b)
	}
}
