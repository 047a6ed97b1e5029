package utils

import (
	"time"

	"github.com/google/uuid"
)

// TimeNow returns the current time in UTC.
func TimeNow() time.Time {
	return time.Now().UTC()
}

// ToPointer returns a pointer to v.
func ToPointer[T any](v T) *T {
	return &v
}

// NewID returns a fresh random identifier for positions and trades.
func NewID() string {
	return uuid.NewString()
}

// PrettyDate formats t for human-facing messages, e.g. "Mon, 02 Jan 2006 15:04 UTC".
func PrettyDate(t time.Time) string {
	return t.UTC().Format("Mon, 02 Jan 2006 15:04 MST")
}
