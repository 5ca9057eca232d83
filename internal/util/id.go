package util

import (
	"time"

	"github.com/google/uuid"
)

// NewID generates a UUID v4 string.
func NewID() string {
	return uuid.NewString()
}

// Now returns the current UTC time.
func Now() time.Time {
	return time.Now().UTC()
}
