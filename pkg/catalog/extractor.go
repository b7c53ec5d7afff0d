package catalog

import (
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
	"golang.org/x/net/html"
)

// Default bounds for the extractor.
const (
	DefaultDismissTimeout = 5 * time.Second
	DefaultReadTimeout    = 5 * time.Second

	// defaultBetaLabel is used when the badge element exists but is empty
	defaultBetaLabel = "Beta"

	dismissKey = "Escape"
)

// Extractor turns the revealed list into entries. It never fails: missing
// fields degrade to empty values because partial data is preferred over
// aborting the user's flow.
type Extractor struct {
	sel            Selectors
	readTimeout    time.Duration
	dismissTimeout time.Duration
	logger         *logging.Logger
}

// NewExtractor creates an extractor. Zero timeouts use the defaults.
func NewExtractor(sel Selectors, readTimeout, dismissTimeout time.Duration, logger *logging.Logger) *Extractor {
	if readTimeout == 0 {
		readTimeout = DefaultReadTimeout
	}
	if dismissTimeout == 0 {
		dismissTimeout = DefaultDismissTimeout
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Extractor{
		sel:            sel,
		readTimeout:    readTimeout,
		dismissTimeout: dismissTimeout,
		logger:         logger,
	}
}

// Extract reads the entries of the revealed list and then dismisses it.
func (x *Extractor) Extract(l *RevealedList) []Entry {
	entries := []Entry{}

	markup, err := l.page.InnerHTML(x.sel.ListContainer, x.readTimeout)
	if err != nil {
		x.logger.Warnf("reading model list failed, returning no entries: %v", err)
	} else {
		entries = ParseList(markup, x.sel)
	}
	x.logger.Debugf("extracted %d entries", len(entries))

	x.dismiss(l)
	return entries
}

// dismiss closes the revealed surface. The entries are already captured, so
// a failure here is only logged.
func (x *Extractor) dismiss(l *RevealedList) {
	err := l.page.Click(x.sel.CloseControl, x.dismissTimeout)
	if err == nil {
		return
	}
	x.logger.Debugf("close control unavailable (%v), sending %s", err, dismissKey)
	if err := l.page.Press(dismissKey); err != nil {
		x.logger.Warnf("dismissing model list failed: %v", err)
	}
}

// ParseList parses the inner markup of the list container. Items are read
// from the first element matching the group selector, or from the whole
// fragment when no group matches.
func ParseList(markup string, sel Selectors) []Entry {
	entries := []Entry{}

	root, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return entries
	}
	doc := goquery.NewDocumentFromNode(root)

	scope := doc.Find(sel.ListGroup).First()
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	scope.Find(sel.ListItem).Each(func(_ int, item *goquery.Selection) {
		entries = append(entries, parseItem(item, sel))
	})
	return entries
}

func parseItem(item *goquery.Selection, sel Selectors) Entry {
	entry := Entry{
		Name:     cleanText(item.Find(sel.ItemName).First().Text()),
		Features: []string{},
	}

	if badge := item.Find(sel.ItemBeta).First(); badge.Length() > 0 {
		entry.BetaLabel = cleanText(badge.Text())
		if entry.BetaLabel == "" {
			entry.BetaLabel = defaultBetaLabel
		}
	}

	seen := make(map[string]bool)
	item.Find(sel.ItemFeature).Each(func(_ int, f *goquery.Selection) {
		label := cleanText(f.Text())
		if label == "" || seen[label] {
			return
		}
		seen[label] = true
		entry.Features = append(entry.Features, label)
	})
	return entry
}

// cleanText trims and collapses internal whitespace.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
