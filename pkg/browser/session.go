package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Session is the browser process, its context and its single page.
// Sessions are created and destroyed only by the Registry.
type Session struct {
	// ID identifies the session in logs
	ID string

	// Browser is the Playwright browser instance
	Browser playwright.Browser

	// Context is the browsing context carrying the stealth init script
	Context playwright.BrowserContext

	// Page is the page the pipeline drives
	Page Page

	// CreatedAt is the timestamp when the session was created
	CreatedAt time.Time

	// LastUsedAt is the timestamp of the last borrow
	LastUsedAt time.Time
}

// UpdateLastUsed updates the LastUsedAt timestamp to the current time.
func (s *Session) UpdateLastUsed() {
	s.LastUsedAt = time.Now()
}

// alive reports whether the page is open and the browser still connected.
func (s *Session) alive() bool {
	if s.Page == nil || !s.Page.Alive() {
		return false
	}
	return s.Browser == nil || s.Browser.IsConnected()
}

// close releases page, context and browser in that order, continuing past
// failures so nothing is leaked.
func (s *Session) close() error {
	var errs []error
	if s.Page != nil {
		if err := s.Page.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close page: %w", err))
		}
	}
	if s.Context != nil {
		if err := s.Context.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close context: %w", err))
		}
	}
	if s.Browser != nil {
		if err := s.Browser.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close browser: %w", err))
		}
	}
	return errors.Join(errs...)
}
