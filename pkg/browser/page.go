package browser

import (
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Page is the subset of page operations the catalog pipeline needs.
// Every wait is a single bounded Playwright wait; none of them retries.
type Page interface {
	// URL returns the current location.
	URL() string
	// Goto navigates and waits until network activity settles.
	Goto(url string, timeout time.Duration) error
	// Settle blocks for a fixed delay to let late content render.
	Settle(d time.Duration)
	// IsVisible reports whether the first element matching selector is
	// visible right now. It does not wait.
	IsVisible(selector string) (bool, error)
	// Click clicks the first element matching selector.
	Click(selector string, timeout time.Duration) error
	// WaitVisible waits for the first match to become visible.
	WaitVisible(selector string, timeout time.Duration) error
	// WaitHidden waits for the first match to become hidden or detached.
	WaitHidden(selector string, timeout time.Duration) error
	// InnerHTML returns the markup inside the first match.
	InnerHTML(selector string, timeout time.Duration) (string, error)
	// Press sends a keyboard key to the page (e.g. "Escape").
	Press(key string) error
	// Close closes the page.
	Close() error
	// Alive reports whether the page is still open.
	Alive() bool
}

// playwrightPage adapts playwright.Page to Page.
type playwrightPage struct {
	page playwright.Page
}

// NewPage wraps a Playwright page.
func NewPage(page playwright.Page) Page {
	return &playwrightPage{page: page}
}

func (p *playwrightPage) URL() string {
	return p.page.URL()
}

func (p *playwrightPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(millis(timeout)),
	})
	if err != nil {
		return fmt.Errorf("navigation failed: %w", err)
	}
	return nil
}

func (p *playwrightPage) Settle(d time.Duration) {
	p.page.WaitForTimeout(millis(d))
}

func (p *playwrightPage) IsVisible(selector string) (bool, error) {
	return p.page.Locator(selector).First().IsVisible()
}

func (p *playwrightPage) Click(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
}

func (p *playwrightPage) WaitVisible(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(millis(timeout)),
	})
}

func (p *playwrightPage) WaitHidden(selector string, timeout time.Duration) error {
	return p.page.Locator(selector).First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateHidden,
		Timeout: playwright.Float(millis(timeout)),
	})
}

func (p *playwrightPage) InnerHTML(selector string, timeout time.Duration) (string, error) {
	return p.page.Locator(selector).First().InnerHTML(playwright.LocatorInnerHTMLOptions{
		Timeout: playwright.Float(millis(timeout)),
	})
}

func (p *playwrightPage) Press(key string) error {
	return p.page.Keyboard().Press(key)
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

func (p *playwrightPage) Alive() bool {
	return !p.page.IsClosed()
}
