package browser

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/playwright-community/playwright-go"
)

// stealthTemplate patches the navigator fingerprint. %s receives the JSON
// encoded languages list.
const stealthTemplate = `(() => {
	Object.defineProperty(Navigator.prototype, 'webdriver', {
		get: () => false,
		configurable: true
	});

	const fakePlugins = [
		{ name: 'PDF Viewer', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
		{ name: 'Chrome PDF Viewer', filename: 'internal-pdf-viewer', description: 'Portable Document Format' },
		{ name: 'Chromium PDF Viewer', filename: 'internal-pdf-viewer', description: 'Portable Document Format' }
	];
	Object.defineProperty(navigator, 'plugins', {
		get: () => fakePlugins,
		configurable: true
	});

	const languages = %s;
	Object.defineProperty(navigator, 'languages', {
		get: () => languages,
		configurable: true
	});

	window.chrome = window.chrome || {};
	window.chrome.runtime = window.chrome.runtime || {};

	if (navigator.permissions && navigator.permissions.query) {
		const originalQuery = navigator.permissions.query.bind(navigator.permissions);
		navigator.permissions.query = (parameters) => (
			parameters && parameters.name === 'notifications'
				? Promise.resolve({ state: Notification.permission })
				: originalQuery(parameters)
		);
	}
})();`

// launchArgs are passed to Chromium to drop the automation banner and the
// AutomationControlled blink feature.
var launchArgs = []string{
	"--disable-blink-features=AutomationControlled",
	"--disable-infobars",
	"--disable-dev-shm-usage",
	"--no-sandbox",
}

// Languages derives a realistic navigator.languages list from a locale.
func Languages(locale string) []string {
	if locale == "" {
		locale = DefaultLocale
	}
	langs := []string{locale}
	base, _, found := strings.Cut(locale, "-")
	if found && base != "" {
		langs = append(langs, base)
	}
	if base != "en" {
		langs = append(langs, "en-US", "en")
	}
	return langs
}

// StealthScript returns the init script applied to every page of a context.
func StealthScript(locale string) string {
	encoded, err := json.Marshal(Languages(locale))
	if err != nil {
		encoded = []byte(`["en-US","en"]`)
	}
	return fmt.Sprintf(stealthTemplate, encoded)
}

// Launch starts Chromium and returns a session whose context carries the
// stealth patches. The init script is registered on the context before the
// page is created, so it applies to this page and to any page opened later.
// Launch does not retry; on failure it closes whatever it opened and
// returns a *LaunchError.
func Launch(pw *playwright.Playwright, opts SessionOptions) (*Session, error) {
	opts = opts.withDefaults()

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(opts.Headless),
		Args:     launchArgs,
	})
	if err != nil {
		return nil, &LaunchError{Err: fmt.Errorf("launch chromium: %w", err)}
	}

	contextOpts := playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.Viewport.Width,
			Height: opts.Viewport.Height,
		},
		Locale:     playwright.String(opts.Locale),
		TimezoneId: playwright.String(opts.Timezone),
	}
	if opts.UserAgent != "" {
		contextOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	bctx, err := browser.NewContext(contextOpts)
	if err != nil {
		_ = browser.Close()
		return nil, &LaunchError{Err: fmt.Errorf("create context: %w", err)}
	}

	script := StealthScript(opts.Locale)
	if err := bctx.AddInitScript(playwright.Script{Content: &script}); err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		return nil, &LaunchError{Err: fmt.Errorf("add stealth script: %w", err)}
	}

	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		_ = browser.Close()
		return nil, &LaunchError{Err: fmt.Errorf("create page: %w", err)}
	}
	page.SetDefaultTimeout(millis(opts.Timeout))

	now := time.Now()
	return &Session{
		ID:         uuid.New().String(),
		Browser:    browser,
		Context:    bctx,
		Page:       NewPage(page),
		CreatedAt:  now,
		LastUsedAt: now,
	}, nil
}
