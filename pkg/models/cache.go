package models

import (
	"context"
	"errors"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/browser"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/catalog"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/chat"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/store"
	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

const (
	// DefaultFetchTimeout bounds how long a caller waits for a fetch.
	DefaultFetchTimeout = 90 * time.Second

	// DefaultProgressTTL is how long the final progress text stays visible.
	DefaultProgressTTL = 3 * time.Second
)

// Progress texts shown while fetching.
const (
	progressFetching = "⏳ Fetching the model list, this can take a minute..."
	progressLoaded   = "✅ Loaded %d models."
	progressFailed   = "❌ %s"
)

// Fetcher harvests a fresh catalog. *catalog.Pipeline implements it.
type Fetcher interface {
	Fetch(ctx context.Context) (catalog.Catalog, error)
}

// Status is the outcome of EnsureLoaded.
type Status int

const (
	// StatusAlreadyLoaded means a cached catalog was returned without any
	// browser work.
	StatusAlreadyLoaded Status = iota
	// StatusLoaded means a fetch ran and produced a catalog.
	StatusLoaded
	// StatusBusy means a fetch is already running, for this user or another.
	StatusBusy
	// StatusFailed means the fetch ran and failed. Reason says why.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusAlreadyLoaded:
		return "already-loaded"
	case StatusLoaded:
		return "loaded"
	case StatusBusy:
		return "busy"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is returned by EnsureLoaded.
type Result struct {
	Status  Status
	Catalog catalog.Catalog
	// Reason is a human-readable explanation for Busy and Failed.
	Reason string
	// Err is the underlying error for Failed.
	Err error
}

// OK reports whether Catalog can be rendered.
func (r Result) OK() bool {
	return (r.Status == StatusLoaded || r.Status == StatusAlreadyLoaded) && len(r.Catalog) > 0
}

// Options configures a Cache. Zero values take the defaults.
type Options struct {
	FetchTimeout time.Duration
	ProgressTTL  time.Duration
	// Messenger receives progress messages. Nil disables them.
	Messenger chat.Messenger
	Logger    *logging.Logger
	// Policy controls catalog eviction. Defaults to store.NeverEvict.
	Policy store.EvictionPolicy
}

// Cache is the per-user catalog cache.
type Cache struct {
	fetcher      Fetcher
	messenger    chat.Messenger
	logger       *logging.Logger
	fetchTimeout time.Duration
	progressTTL  time.Duration

	catalogs *store.Store[chat.UserID, catalog.Catalog]
	guard    *store.Store[chat.UserID, string]

	// token admits one browser fetch at a time across all users.
	token *semaphore.Weighted

	inflight sync.WaitGroup
	pending  sync.WaitGroup
}

// NewCache creates an empty cache in front of fetcher.
func NewCache(fetcher Fetcher, opts Options) *Cache {
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.ProgressTTL <= 0 {
		opts.ProgressTTL = DefaultProgressTTL
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.Policy == nil {
		opts.Policy = store.NeverEvict{}
	}
	return &Cache{
		fetcher:      fetcher,
		messenger:    opts.Messenger,
		logger:       opts.Logger,
		fetchTimeout: opts.FetchTimeout,
		progressTTL:  opts.ProgressTTL,
		catalogs:     store.New[chat.UserID, catalog.Catalog](store.WithPolicy(opts.Policy)),
		guard:        store.New[chat.UserID, string](),
		token:        semaphore.NewWeighted(1),
	}
}

// EnsureLoaded returns userID's catalog, fetching it when none is cached.
// It never blocks behind another fetch: a fetch already running for the
// same user, or for anyone else, yields StatusBusy.
func (c *Cache) EnsureLoaded(ctx context.Context, userID chat.UserID, chatID chat.ChatID) Result {
	if cat, ok := c.catalogs.Get(userID); ok && len(cat) > 0 {
		return Result{Status: StatusAlreadyLoaded, Catalog: cat}
	}

	runID := uuid.NewString()[:8]
	if !c.guard.SetIfAbsent(userID, runID) {
		c.logger.Debugf("fetch for user %d rejected: already fetching", userID)
		return Result{Status: StatusBusy, Reason: "Your model list is already being fetched. Please wait a moment."}
	}
	defer c.guard.Delete(userID)

	if !c.token.TryAcquire(1) {
		c.logger.Debugf("fetch for user %d rejected: browser busy", userID)
		return Result{Status: StatusBusy, Reason: "Another model list is being fetched right now. Please try again shortly."}
	}

	c.logger.Infof("fetch %s started for user %d", runID, userID)
	progress := chat.StartProgress(ctx, c.messenger, chatID, progressFetching, c.logger)

	res := c.fetch(ctx, userID, runID)

	text := fmt.Sprintf(progressLoaded, len(res.Catalog))
	if res.Status == StatusFailed {
		text = fmt.Sprintf(progressFailed, html.EscapeString(res.Reason))
	}
	progress.Finish(context.WithoutCancel(ctx), text, c.progressTTL, &c.pending)
	return res
}

type outcome struct {
	catalog catalog.Catalog
	err     error
}

// fetch runs the fetcher with the token held. The token is released when
// the fetcher returns, which may be after the caller stopped waiting.
func (c *Cache) fetch(ctx context.Context, userID chat.UserID, runID string) Result {
	waitCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	done := make(chan outcome, 1)
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()

		var out outcome
		func() {
			defer func() {
				if r := recover(); r != nil {
					out = outcome{err: fmt.Errorf("fetch panicked: %v", r)}
				}
			}()
			cat, err := c.fetcher.Fetch(waitCtx)
			out = outcome{catalog: cat, err: err}
		}()

		if out.err == nil && len(out.catalog) > 0 {
			c.catalogs.Set(userID, out.catalog)
		}
		// the recover above guarantees the token is returned
		c.token.Release(1)
		done <- out
	}()

	select {
	case out := <-done:
		if out.err != nil {
			c.logger.Warnf("fetch %s for user %d failed: %v", runID, userID, out.err)
			return Result{Status: StatusFailed, Reason: Reason(out.err), Err: out.err}
		}
		if len(out.catalog) == 0 {
			c.logger.Warnf("fetch %s for user %d found no entries", runID, userID)
			return Result{Status: StatusFailed, Reason: "No models were found on the page.", Err: ErrEmptyCatalog}
		}
		c.logger.Infof("fetch %s for user %d loaded %d entries", runID, userID, len(out.catalog))
		return Result{Status: StatusLoaded, Catalog: out.catalog}
	case <-waitCtx.Done():
		err := fmt.Errorf("waiting for catalog: %w", waitCtx.Err())
		c.logger.Warnf("fetch %s for user %d abandoned: %v", runID, userID, err)
		return Result{Status: StatusFailed, Reason: Reason(err), Err: err}
	}
}

// ErrEmptyCatalog is the Err of a fetch that found no entries.
var ErrEmptyCatalog = errors.New("catalog is empty")

// Reason turns a fetch error into the text shown to the user.
func Reason(err error) string {
	var timeout *browser.TimeoutError
	var launch *browser.LaunchError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, browser.ErrChallengeDetected):
		return "Challenge detected: the site asked for human verification. Please try again later."
	case errors.As(err, &timeout):
		return fmt.Sprintf("Timed out during the %q step. Please try again.", timeout.Step)
	case errors.As(err, &launch):
		return "The browser could not be started."
	case errors.Is(err, context.DeadlineExceeded):
		return "Timed out waiting for the model list. Please try again."
	case errors.Is(err, context.Canceled):
		return "The request was cancelled."
	case errors.Is(err, ErrEmptyCatalog):
		return "No models were found on the page."
	default:
		return fmt.Sprintf("Could not load the model list: %v", err)
	}
}

// Catalog returns userID's cached catalog.
func (c *Cache) Catalog(userID chat.UserID) (catalog.Catalog, bool) {
	cat, ok := c.catalogs.Get(userID)
	if !ok || len(cat) == 0 {
		return nil, false
	}
	return cat, true
}

// Lookup finds an entry by exact name in userID's cached catalog.
func (c *Cache) Lookup(userID chat.UserID, name string) (catalog.Entry, bool) {
	cat, ok := c.catalogs.Get(userID)
	if !ok {
		return catalog.Entry{}, false
	}
	return cat.Lookup(name)
}

// Invalidate drops userID's catalog so the next EnsureLoaded fetches again.
func (c *Cache) Invalidate(userID chat.UserID) {
	c.catalogs.Delete(userID)
}

// Fetching reports whether a fetch is running for userID.
func (c *Cache) Fetching(userID chat.UserID) bool {
	_, ok := c.guard.Get(userID)
	return ok
}

// Close waits for in-flight fetches and scheduled progress removals.
func (c *Cache) Close() {
	c.inflight.Wait()
	c.pending.Wait()
}
