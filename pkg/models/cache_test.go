package models

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/internal/testing/chattest"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/browser"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubFetcher returns a fixed result. When release is non-nil every call
// blocks until it is closed; started is signalled as each call begins.
type stubFetcher struct {
	calls   atomic.Int32
	catalog catalog.Catalog
	err     error
	panicV  any
	release chan struct{}
	started chan struct{}
}

func (f *stubFetcher) Fetch(ctx context.Context) (catalog.Catalog, error) {
	f.calls.Add(1)
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	if f.panicV != nil {
		panic(f.panicV)
	}
	return f.catalog, f.err
}

func sample() catalog.Catalog {
	return catalog.New([]catalog.Entry{
		{Name: "A"},
		{Name: "B", BetaLabel: "Beta", Features: []string{"x", "y"}},
	})
}

func newTestCache(f Fetcher, opts Options) *Cache {
	if opts.ProgressTTL == 0 {
		opts.ProgressTTL = time.Millisecond
	}
	return NewCache(f, opts)
}

func TestEnsureLoadedFetchesOnce(t *testing.T) {
	f := &stubFetcher{catalog: sample()}
	c := newTestCache(f, Options{})
	defer c.Close()

	first := c.EnsureLoaded(context.Background(), 1, 10)
	require.Equal(t, StatusLoaded, first.Status)
	assert.True(t, first.OK())
	assert.Equal(t, []string{"A", "B"}, first.Catalog.Names())

	second := c.EnsureLoaded(context.Background(), 1, 10)
	assert.Equal(t, StatusAlreadyLoaded, second.Status)
	assert.Equal(t, first.Catalog, second.Catalog)
	assert.Equal(t, int32(1), f.calls.Load(), "cached catalog must not touch the browser")
}

func TestEnsureLoadedPerUser(t *testing.T) {
	f := &stubFetcher{catalog: sample()}
	c := newTestCache(f, Options{})
	defer c.Close()

	c.EnsureLoaded(context.Background(), 1, 10)
	res := c.EnsureLoaded(context.Background(), 2, 20)

	assert.Equal(t, StatusLoaded, res.Status)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestEnsureLoadedSameUserConcurrent(t *testing.T) {
	f := &stubFetcher{
		catalog: sample(),
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c := newTestCache(f, Options{})
	defer c.Close()

	var first Result
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = c.EnsureLoaded(context.Background(), 1, 10)
	}()
	<-f.started

	assert.True(t, c.Fetching(1))
	second := c.EnsureLoaded(context.Background(), 1, 10)
	assert.Equal(t, StatusBusy, second.Status)
	assert.NotEmpty(t, second.Reason)

	close(f.release)
	wg.Wait()

	assert.Equal(t, StatusLoaded, first.Status)
	assert.Equal(t, int32(1), f.calls.Load(), "at most one fetch runs per user")
	assert.False(t, c.Fetching(1))
}

func TestEnsureLoadedOtherUserBusyWhileBrowserInUse(t *testing.T) {
	f := &stubFetcher{
		catalog: sample(),
		release: make(chan struct{}),
		started: make(chan struct{}, 1),
	}
	c := newTestCache(f, Options{})
	defer c.Close()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.EnsureLoaded(context.Background(), 1, 10)
	}()
	<-f.started

	res := c.EnsureLoaded(context.Background(), 2, 20)
	assert.Equal(t, StatusBusy, res.Status)
	assert.False(t, c.Fetching(2), "a rejected user is not left in the guard")

	close(f.release)
	wg.Wait()

	res = c.EnsureLoaded(context.Background(), 2, 20)
	assert.Equal(t, StatusLoaded, res.Status)
}

func TestEnsureLoadedFailures(t *testing.T) {
	tests := []struct {
		name       string
		fetcher    *stubFetcher
		wantPrefix string
		wantErr    error
	}{
		{
			name:       "challenge",
			fetcher:    &stubFetcher{err: browser.ErrChallengeDetected},
			wantPrefix: "Challenge",
			wantErr:    browser.ErrChallengeDetected,
		},
		{
			name:       "timeout",
			fetcher:    &stubFetcher{err: &browser.TimeoutError{Step: catalog.StepList}},
			wantPrefix: "Timed out during the \"list\" step",
			wantErr:    browser.ErrTimeout,
		},
		{
			name:       "empty",
			fetcher:    &stubFetcher{catalog: catalog.Catalog{}},
			wantPrefix: "No models",
			wantErr:    ErrEmptyCatalog,
		},
		{
			name:       "panic",
			fetcher:    &stubFetcher{panicV: "boom"},
			wantPrefix: "Could not load",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestCache(tt.fetcher, Options{})
			defer c.Close()

			res := c.EnsureLoaded(context.Background(), 1, 10)

			assert.Equal(t, StatusFailed, res.Status)
			assert.False(t, res.OK())
			assert.Contains(t, res.Reason, tt.wantPrefix)
			assert.True(t, len(res.Reason) >= len(tt.wantPrefix) && res.Reason[:len(tt.wantPrefix)] == tt.wantPrefix)
			if tt.wantErr != nil {
				assert.ErrorIs(t, res.Err, tt.wantErr)
			}
			assert.False(t, c.Fetching(1), "guard is cleared after failure")
			_, cached := c.Catalog(1)
			assert.False(t, cached)
		})
	}
}

func TestEnsureLoadedRetryAfterChallenge(t *testing.T) {
	f := &stubFetcher{err: browser.ErrChallengeDetected}
	c := newTestCache(f, Options{})
	defer c.Close()

	res := c.EnsureLoaded(context.Background(), 1, 10)
	require.Equal(t, StatusFailed, res.Status)

	f.err = nil
	f.catalog = sample()
	res = c.EnsureLoaded(context.Background(), 1, 10)
	assert.Equal(t, StatusLoaded, res.Status)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestEnsureLoadedCallerTimeoutKeepsTokenUntilDone(t *testing.T) {
	f := &stubFetcher{
		catalog: sample(),
		release: make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	c := newTestCache(f, Options{FetchTimeout: 20 * time.Millisecond})
	defer c.Close()

	res := c.EnsureLoaded(context.Background(), 1, 10)
	<-f.started
	assert.Equal(t, StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, context.DeadlineExceeded)
	assert.False(t, c.Fetching(1))

	busy := c.EnsureLoaded(context.Background(), 2, 20)
	assert.Equal(t, StatusBusy, busy.Status, "abandoned fetch still owns the browser")

	close(f.release)
	c.inflight.Wait()

	// the abandoned fetch completed and its catalog is kept
	res = c.EnsureLoaded(context.Background(), 1, 10)
	assert.Equal(t, StatusAlreadyLoaded, res.Status)
}

func TestEnsureLoadedProgressMessage(t *testing.T) {
	rec := chattest.NewRecorder()
	c := newTestCache(&stubFetcher{catalog: sample()}, Options{Messenger: rec})

	c.EnsureLoaded(context.Background(), 1, 10)
	c.Close()

	sent := rec.Sent()
	require.Len(t, sent, 1, "progress is edited in place, never re-sent")
	edits := rec.Edits()
	require.Len(t, edits, 1)
	assert.Equal(t, sent[0].ID, edits[0].ID)
	assert.Contains(t, edits[0].View.Text, "Loaded 2 models")
	assert.Equal(t, sent[0].ID, rec.Deleted()[0])
}

func TestEnsureLoadedProgressShowsReason(t *testing.T) {
	rec := chattest.NewRecorder()
	c := newTestCache(&stubFetcher{err: browser.ErrChallengeDetected}, Options{Messenger: rec})

	res := c.EnsureLoaded(context.Background(), 1, 10)
	c.Close()

	edits := rec.Edits()
	require.Len(t, edits, 1)
	assert.Contains(t, edits[0].View.Text, res.Reason)
}

func TestEnsureLoadedProgressEscapesReason(t *testing.T) {
	rec := chattest.NewRecorder()
	err := errors.New(`click-trigger: <div class="overlay"> intercepts pointer events & more`)
	c := newTestCache(&stubFetcher{err: err}, Options{Messenger: rec})

	res := c.EnsureLoaded(context.Background(), 1, 10)
	c.Close()
	require.Equal(t, StatusFailed, res.Status)

	edits := rec.Edits()
	require.Len(t, edits, 1)
	text := edits[0].View.Text
	assert.Contains(t, text, "&lt;div class=&#34;overlay&#34;&gt;")
	assert.Contains(t, text, "&amp; more")
	assert.NotContains(t, text, "<div")
}

func TestEnsureLoadedNoProgressWhenCached(t *testing.T) {
	rec := chattest.NewRecorder()
	c := newTestCache(&stubFetcher{catalog: sample()}, Options{Messenger: rec})

	c.EnsureLoaded(context.Background(), 1, 10)
	c.EnsureLoaded(context.Background(), 1, 10)
	c.Close()

	assert.Len(t, rec.Sent(), 1)
}

func TestLookupAndInvalidate(t *testing.T) {
	f := &stubFetcher{catalog: sample()}
	c := newTestCache(f, Options{})
	defer c.Close()

	_, ok := c.Lookup(1, "B")
	assert.False(t, ok, "nothing cached yet")

	c.EnsureLoaded(context.Background(), 1, 10)

	entry, ok := c.Lookup(1, "B")
	require.True(t, ok)
	assert.Equal(t, []string{"x", "y"}, entry.Features)

	_, ok = c.Lookup(1, "b")
	assert.False(t, ok, "lookup is exact")

	c.Invalidate(1)
	_, ok = c.Catalog(1)
	assert.False(t, ok)

	res := c.EnsureLoaded(context.Background(), 1, 10)
	assert.Equal(t, StatusLoaded, res.Status)
	assert.Equal(t, int32(2), f.calls.Load())
}

func TestReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{&browser.LaunchError{Err: errors.New("no chromium")}, "The browser could not be started."},
		{context.Canceled, "The request was cancelled."},
		{errors.New("net down"), "Could not load the model list: net down"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Reason(tt.err))
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "busy", StatusBusy.String())
	assert.Equal(t, "status(9)", Status(9).String())
}
