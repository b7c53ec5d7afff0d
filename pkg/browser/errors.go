package browser

import (
	"context"
	"errors"
	"fmt"

	"github.com/playwright-community/playwright-go"
)

var (
	// ErrChallengeDetected is returned when the target site shows an
	// anti-automation verification surface. It is never retried automatically.
	ErrChallengeDetected = errors.New("challenge page detected")

	// ErrTimeout matches every *TimeoutError.
	ErrTimeout = errors.New("timeout exceeded")
)

// TimeoutError reports a bounded wait that ran out.
type TimeoutError struct {
	// Step names the wait that ran out (navigate, consent, trigger, list, ...)
	Step string
	Err  error
}

func (e *TimeoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("timeout exceeded at step %q", e.Step)
	}
	return fmt.Sprintf("timeout exceeded at step %q: %v", e.Step, e.Err)
}

func (e *TimeoutError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrTimeout) match any step.
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// LaunchError reports that no browser session could be created.
type LaunchError struct {
	Err error
}

func (e *LaunchError) Error() string {
	return fmt.Sprintf("failed to launch browser session: %v", e.Err)
}

func (e *LaunchError) Unwrap() error { return e.Err }

// IsTimeout reports whether err is a Playwright or context timeout.
func IsTimeout(err error) bool {
	return errors.Is(err, playwright.ErrTimeout) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrTimeout)
}

// StepError classifies an error from a bounded wait. Timeouts become a
// *TimeoutError for step, anything else is wrapped with the step name.
func StepError(step string, err error) error {
	if err == nil {
		return nil
	}
	if IsTimeout(err) {
		return &TimeoutError{Step: step, Err: err}
	}
	return fmt.Errorf("%s: %w", step, err)
}
