package catalog

import (
	"fmt"
	"time"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/browser"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
	"github.com/gobwas/glob"
)

// Step names reported in *browser.TimeoutError.
const (
	StepNavigate     = "navigate"
	StepConsent      = "consent"
	StepTrigger      = "trigger"
	StepClickTrigger = "click-trigger"
	StepList         = "list"
)

// Default bounds for the driver's waits.
const (
	DefaultNavigationTimeout = 30 * time.Second
	DefaultSettleDelay       = 2 * time.Second
	DefaultConsentTimeout    = 10 * time.Second
	DefaultTriggerTimeout    = 10 * time.Second
	DefaultListTimeout       = 10 * time.Second
)

// DriverOptions configures the Navigation Driver.
type DriverOptions struct {
	// TargetURL is the page that hosts the model switcher
	TargetURL string

	// TargetPattern is a glob matched against the current URL to decide
	// whether navigation can be skipped. Defaults to TargetURL followed by *.
	TargetPattern string

	NavigationTimeout time.Duration
	SettleDelay       time.Duration
	ConsentTimeout    time.Duration
	TriggerTimeout    time.Duration
	ListTimeout       time.Duration
}

func (o DriverOptions) withDefaults() DriverOptions {
	if o.NavigationTimeout == 0 {
		o.NavigationTimeout = DefaultNavigationTimeout
	}
	if o.SettleDelay == 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.ConsentTimeout == 0 {
		o.ConsentTimeout = DefaultConsentTimeout
	}
	if o.TriggerTimeout == 0 {
		o.TriggerTimeout = DefaultTriggerTimeout
	}
	if o.ListTimeout == 0 {
		o.ListTimeout = DefaultListTimeout
	}
	return o
}

// RevealedList is the open model list on a borrowed page.
type RevealedList struct {
	page browser.Page
}

// Page returns the page the list is open on.
func (l *RevealedList) Page() browser.Page {
	return l.page
}

// Driver walks the target page from wherever it is to an open model list.
// It never creates or closes the session and performs no compensating
// actions on failure; cleanup belongs to the registry.
type Driver struct {
	opts   DriverOptions
	sel    Selectors
	target glob.Glob
	logger *logging.Logger
}

// NewDriver creates a driver for the target in opts.
func NewDriver(opts DriverOptions, sel Selectors, logger *logging.Logger) (*Driver, error) {
	if opts.TargetURL == "" {
		return nil, fmt.Errorf("target URL is required")
	}
	if err := sel.Validate(); err != nil {
		return nil, err
	}
	opts = opts.withDefaults()

	pattern := opts.TargetPattern
	if pattern == "" {
		pattern = glob.QuoteMeta(opts.TargetURL) + "*"
	}
	target, err := glob.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid target pattern %q: %w", pattern, err)
	}

	if logger == nil {
		logger = logging.Nop()
	}
	return &Driver{
		opts:   opts,
		sel:    sel,
		target: target,
		logger: logger,
	}, nil
}

// OnTarget reports whether url already belongs to the target site.
func (d *Driver) OnTarget(url string) bool {
	return d.target.Match(url)
}

// Drive brings the page to the state where the model list is visible.
// It fails with browser.ErrChallengeDetected when a verification page is
// shown and with a *browser.TimeoutError naming the step whose wait ran out.
func (d *Driver) Drive(s *browser.Session) (*RevealedList, error) {
	page := s.Page

	if !d.OnTarget(page.URL()) {
		d.logger.Debugf("navigating to %s", d.opts.TargetURL)
		if err := page.Goto(d.opts.TargetURL, d.opts.NavigationTimeout); err != nil {
			return nil, browser.StepError(StepNavigate, err)
		}
		page.Settle(d.opts.SettleDelay)
	}

	if err := d.checkChallenge(page); err != nil {
		return nil, err
	}

	consent, err := page.IsVisible(d.sel.ConsentDialog)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", StepConsent, err)
	}
	if consent {
		d.logger.Debugf("dismissing consent dialog")
		if err := page.Click(d.sel.ConsentConfirm, d.opts.ConsentTimeout); err != nil {
			return nil, browser.StepError(StepConsent, err)
		}
		if err := page.WaitHidden(d.sel.ConsentDialog, d.opts.ConsentTimeout); err != nil {
			return nil, browser.StepError(StepConsent, err)
		}
	}

	if err := page.WaitVisible(d.sel.ListTrigger, d.opts.TriggerTimeout); err != nil {
		return nil, browser.StepError(StepTrigger, err)
	}

	// Verification pages can appear mid-flow
	if err := d.checkChallenge(page); err != nil {
		return nil, err
	}

	if err := page.Click(d.sel.ListTrigger, d.opts.TriggerTimeout); err != nil {
		return nil, browser.StepError(StepClickTrigger, err)
	}
	if err := page.WaitVisible(d.sel.ListContainer, d.opts.ListTimeout); err != nil {
		return nil, browser.StepError(StepList, err)
	}

	return &RevealedList{page: page}, nil
}

func (d *Driver) checkChallenge(page browser.Page) error {
	visible, err := page.IsVisible(d.sel.ChallengeIndicator)
	if err != nil {
		return fmt.Errorf("challenge check: %w", err)
	}
	if visible {
		d.logger.Warnf("challenge page detected at %s", page.URL())
		return browser.ErrChallengeDetected
	}
	return nil
}
