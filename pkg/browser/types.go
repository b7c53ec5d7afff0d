package browser

import (
	"time"
)

// SessionOptions configures the browser session created by Launch.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window
	Headless bool

	// Viewport sets the window and viewport size
	Viewport *Viewport

	// Locale is the BCP 47 locale reported by the browser (e.g. en-US)
	Locale string

	// Timezone is the IANA timezone id reported by the browser
	Timezone string

	// UserAgent overrides the browser user agent when non-empty
	UserAgent string

	// Timeout is the default timeout for page operations
	Timeout time.Duration
}

// Viewport represents the browser viewport dimensions.
type Viewport struct {
	Width  int
	Height int
}

// Default values for session creation
const (
	DefaultTimeout        = 30 * time.Second
	DefaultViewportWidth  = 1366
	DefaultViewportHeight = 768
	DefaultLocale         = "en-US"
	DefaultTimezone       = "America/New_York"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"
)

// withDefaults returns a copy of o with zero fields filled in.
func (o SessionOptions) withDefaults() SessionOptions {
	if o.Viewport == nil {
		o.Viewport = &Viewport{
			Width:  DefaultViewportWidth,
			Height: DefaultViewportHeight,
		}
	}
	if o.Locale == "" {
		o.Locale = DefaultLocale
	}
	if o.Timezone == "" {
		o.Timezone = DefaultTimezone
	}
	if o.Timeout == 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// millis converts a duration to the float milliseconds Playwright expects.
func millis(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
