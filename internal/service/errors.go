package service

import (
	"fmt"
	"time"

	"credential-api/internal/constants"
)

// RateLimitError is returned when a generation ceiling denies a request. It
// carries what callers need for an accurate user-facing message. RetryAfter
// is zero when the ceiling never resets.
type RateLimitError struct {
	Reason         string
	RetryAfter     time.Duration
	RemainingOther int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("generation denied: %s", e.Reason)
}

// Unwrap ties the typed error to the ErrRateLimited sentinel
func (e *RateLimitError) Unwrap() error {
	return constants.ErrRateLimited
}

// CooldownError is returned when a repeat generation lands inside the
// cooldown window for the same identity.
type CooldownError struct {
	RetryAfter time.Duration
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("generation requested again too soon, retry in %s", e.RetryAfter)
}

// Unwrap ties the typed error to the ErrGenerationTooSoon sentinel
func (e *CooldownError) Unwrap() error {
	return constants.ErrGenerationTooSoon
}
