package browser

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
	"github.com/playwright-community/playwright-go"
)

// Launcher creates a session. The default launcher starts the Playwright
// driver on first use and calls Launch.
type Launcher func(opts SessionOptions) (*Session, error)

// Registry owns the single long-lived browser session. It is the only
// component allowed to create or destroy it; everyone else borrows the
// session through Acquire or Run.
type Registry struct {
	mu         sync.Mutex
	opts       SessionOptions
	keepWarm   bool
	launcher   Launcher
	playwright *playwright.Playwright
	session    *Session
	logger     *logging.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithLauncher replaces the Playwright launcher, mainly for tests.
func WithLauncher(l Launcher) RegistryOption {
	return func(r *Registry) {
		r.launcher = l
	}
}

// WithKeepWarm keeps the session open after a failed Run so the next
// attempt reuses it. The page may be left in whatever state the failure
// produced.
func WithKeepWarm(keep bool) RegistryOption {
	return func(r *Registry) {
		r.keepWarm = keep
	}
}

// NewRegistry creates a registry. No browser is started until Acquire.
func NewRegistry(opts SessionOptions, logger *logging.Logger, options ...RegistryOption) *Registry {
	if logger == nil {
		logger = logging.Nop()
	}
	r := &Registry{
		opts:   opts,
		logger: logger,
	}
	r.launcher = r.launchPlaywright
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Acquire returns the existing session or creates one. Repeated calls
// return the same session until Dispose. A session whose page was closed
// or whose browser disconnected is disposed and replaced.
func (r *Registry) Acquire(ctx context.Context) (*Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.session != nil {
		if r.session.alive() {
			r.session.UpdateLastUsed()
			return r.session, nil
		}
		r.logger.Warnf("browser session %s is no longer alive, relaunching", r.session.ID)
		if err := r.disposeLocked(); err != nil {
			r.logger.Warnf("dispose dead session: %v", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	session, err := r.launcher(r.opts)
	if err != nil {
		r.logger.Errorf("browser launch failed: %v", err)
		return nil, err
	}
	r.logger.Infof("browser session %s started (headless=%v)", session.ID, r.opts.Headless)
	session.UpdateLastUsed()
	r.session = session
	return session, nil
}

// Run borrows the session for fn. When fn fails the session is disposed
// unless the registry keeps it warm.
func (r *Registry) Run(ctx context.Context, fn func(*Session) error) error {
	session, err := r.Acquire(ctx)
	if err != nil {
		return err
	}

	if err := fn(session); err != nil {
		if !r.keepWarm {
			if disposeErr := r.Dispose(); disposeErr != nil {
				r.logger.Warnf("dispose after failure: %v", disposeErr)
			}
		}
		return err
	}
	return nil
}

// Dispose closes the session and forgets it. Safe to call without one.
func (r *Registry) Dispose() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.disposeLocked()
}

func (r *Registry) disposeLocked() error {
	if r.session == nil {
		return nil
	}
	session := r.session
	r.session = nil
	r.logger.Infof("browser session %s disposed (idle %s)", session.ID, time.Since(session.LastUsedAt).Round(time.Millisecond))
	return session.close()
}

// Active reports whether a session currently exists.
func (r *Registry) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.session != nil
}

// KeepWarm reports whether failed runs leave the session open.
func (r *Registry) KeepWarm() bool {
	return r.keepWarm
}

// Shutdown disposes the session and stops the Playwright driver.
func (r *Registry) Shutdown() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.disposeLocked(); err != nil {
		r.logger.Warnf("dispose on shutdown: %v", err)
	}

	if r.playwright != nil {
		if err := r.playwright.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		r.playwright = nil
	}
	return nil
}

// launchPlaywright installs and starts the driver on first use, then
// launches the stealth session. Called with r.mu held.
func (r *Registry) launchPlaywright(opts SessionOptions) (*Session, error) {
	if r.playwright == nil {
		// Keep driver output off the bot's stdout
		runOpts := &playwright.RunOptions{
			Browsers: []string{"chromium"},
			Verbose:  false,
			Stdout:   io.Discard,
			Stderr:   io.Discard,
		}
		if err := playwright.Install(runOpts); err != nil {
			return nil, &LaunchError{Err: fmt.Errorf("failed to install playwright: %w", err)}
		}
		pw, err := playwright.Run(runOpts)
		if err != nil {
			return nil, &LaunchError{Err: fmt.Errorf("failed to start playwright: %w", err)}
		}
		r.playwright = pw
	}
	return Launch(r.playwright, opts)
}

