package catalog

import (
	"fmt"
	"sync"
	"time"

	"github.com/playwright-community/playwright-go"
)

// fakePage is a scriptable browser.Page. Selectors listed in visible are
// visible; waits on selectors listed in stuck time out; every call is
// recorded in order.
type fakePage struct {
	mu sync.Mutex

	url      string
	visible  map[string]bool
	stuck    map[string]bool
	clickErr map[string]error
	markup   map[string]string
	pressErr error

	// onClick lets a test change visibility when something is clicked
	onClick func(p *fakePage, selector string)

	calls []string
}

func newFakePage(url string) *fakePage {
	return &fakePage{
		url:      url,
		visible:  map[string]bool{},
		stuck:    map[string]bool{},
		clickErr: map[string]error{},
		markup:   map[string]string{},
	}
}

func (p *fakePage) record(format string, args ...interface{}) {
	p.calls = append(p.calls, fmt.Sprintf(format, args...))
}

func (p *fakePage) recorded() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *fakePage) Goto(url string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("goto %s", url)
	if p.stuck["goto"] {
		return fmt.Errorf("navigation failed: %w", playwright.ErrTimeout)
	}
	p.url = url
	return nil
}

func (p *fakePage) Settle(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("settle %s", d)
}

func (p *fakePage) IsVisible(selector string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.visible[selector], nil
}

func (p *fakePage) Click(selector string, timeout time.Duration) error {
	p.mu.Lock()
	p.record("click %s", selector)
	if err := p.clickErr[selector]; err != nil {
		p.mu.Unlock()
		return err
	}
	hook := p.onClick
	p.mu.Unlock()
	if hook != nil {
		hook(p, selector)
	}
	return nil
}

func (p *fakePage) setVisible(selector string, v bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visible[selector] = v
}

func (p *fakePage) WaitVisible(selector string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("wait-visible %s", selector)
	if p.stuck[selector] || !p.visible[selector] {
		return fmt.Errorf("locator.WaitFor: %w", playwright.ErrTimeout)
	}
	return nil
}

func (p *fakePage) WaitHidden(selector string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("wait-hidden %s", selector)
	if p.stuck[selector] || p.visible[selector] {
		return fmt.Errorf("locator.WaitFor: %w", playwright.ErrTimeout)
	}
	return nil
}

func (p *fakePage) InnerHTML(selector string, timeout time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("inner-html %s", selector)
	markup, ok := p.markup[selector]
	if !ok {
		return "", fmt.Errorf("locator.InnerHTML: %w", playwright.ErrTimeout)
	}
	return markup, nil
}

func (p *fakePage) Press(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("press %s", key)
	return p.pressErr
}

func (p *fakePage) Alive() bool { return true }

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record("close")
	return nil
}
