// Package browser owns the single automated Chromium session modelbot drives.
//
// The package is built around three pieces:
//
//  1. Launch: the stealth session factory. It starts Chromium through
//     Playwright, creates one browsing context with a realistic fingerprint
//     and registers an init script on the context so every page opened in it
//     reports a non-automated navigator.
//  2. Registry: the only owner of the Session. It creates the session lazily
//     on first Acquire, hands out borrowed references and is the only place
//     that disposes it.
//  3. Page: a narrow view of a Playwright page. Callers that walk the target
//     site use it instead of playwright.Page so they can be tested without a
//     browser.
//
// # Errors
//
// Launch failures are reported as *LaunchError and are fatal to the process.
// Bounded waits that run out are reported as *TimeoutError carrying the step
// name; errors.Is(err, ErrTimeout) matches them. ErrChallengeDetected marks a
// bot-verification page that cannot be solved without a human.
//
// # Example Usage
//
//	reg := browser.NewRegistry(browser.SessionOptions{Headless: true}, logger)
//	defer reg.Shutdown()
//
//	err := reg.Run(ctx, func(s *browser.Session) error {
//	    return s.Page.Goto("https://example.com", 30*time.Second)
//	})
package browser
