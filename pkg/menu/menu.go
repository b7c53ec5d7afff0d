// Package menu implements the catalog menu shown in a chat.
//
// A chat is either Closed, showing the list, or showing one entry's detail.
// The menu tracks the message pair of the live turn (the user's request and
// the bot's menu) so that Select and Close can remove both.
package menu

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/catalog"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/chat"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/store"
)

var (
	// ErrNoCatalog is returned when the user has no cached catalog.
	ErrNoCatalog = errors.New("no catalog loaded")

	// ErrNotFound is returned when a name is not in the cached catalog.
	ErrNotFound = errors.New("entry not found")
)

// Toast texts.
const (
	textNotFound = "Model not found. The list may be out of date, send /models again."
	textNoList   = "The model list is no longer loaded, send /models again."
	textSelected = "✅ Selected: %s"
)

// Catalogs gives read access to the cached catalogs. *models.Cache
// implements it.
type Catalogs interface {
	Catalog(userID chat.UserID) (catalog.Catalog, bool)
	Lookup(userID chat.UserID, name string) (catalog.Entry, bool)
}

// Pair is the live menu turn of a chat.
type Pair struct {
	Request  chat.MessageID
	Response chat.MessageID
}

// Menu drives the list/detail/select flow.
type Menu struct {
	catalogs   Catalogs
	messenger  chat.Messenger
	logger     *logging.Logger
	pairs      *store.Store[chat.ChatID, Pair]
	selections *store.Store[chat.UserID, string]
}

// New creates a menu over the cached catalogs.
func New(catalogs Catalogs, messenger chat.Messenger, logger *logging.Logger) *Menu {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Menu{
		catalogs:   catalogs,
		messenger:  messenger,
		logger:     logger,
		pairs:      store.New[chat.ChatID, Pair](),
		selections: store.New[chat.UserID, string](),
	}
}

// Open sends the list view and records it with requestMsg as the chat's
// pair. A pair already stored for the chat is replaced, not cleaned up.
func (m *Menu) Open(ctx context.Context, userID chat.UserID, chatID chat.ChatID, requestMsg chat.MessageID) error {
	cat, ok := m.catalogs.Catalog(userID)
	if !ok || len(cat) == 0 {
		return ErrNoCatalog
	}

	id, err := m.messenger.Send(ctx, chatID, ListView(cat))
	if err != nil {
		return fmt.Errorf("send menu: %w", err)
	}
	if old, ok := m.pairs.Get(chatID); ok {
		m.logger.Debugf("chat %d: menu %d replaces %d", chatID, id, old.Response)
	}
	m.pairs.Set(chatID, Pair{Request: requestMsg, Response: id})
	return nil
}

// ShowDetail turns the pressed menu message into the entry's detail view.
// An unknown name only answers the callback with a not-found toast.
func (m *Menu) ShowDetail(ctx context.Context, cb chat.Callback, name string) error {
	cat, _ := m.catalogs.Catalog(cb.UserID)
	entry, ok := m.catalogs.Lookup(cb.UserID, name)
	if !ok {
		chat.BestEffortAnswer(ctx, m.messenger, cb.ID, textNotFound, false, m.logger)
		return ErrNotFound
	}

	err := m.messenger.Edit(ctx, cb.ChatID, cb.MessageID, DetailView(entry, cat.Index(name)))
	chat.BestEffortAnswer(ctx, m.messenger, cb.ID, "", false, m.logger)
	if err != nil {
		return fmt.Errorf("show detail: %w", err)
	}
	return nil
}

// Back rebuilds the list view from the current cache contents.
func (m *Menu) Back(ctx context.Context, cb chat.Callback) error {
	cat, ok := m.catalogs.Catalog(cb.UserID)
	if !ok || len(cat) == 0 {
		chat.BestEffortAnswer(ctx, m.messenger, cb.ID, textNoList, false, m.logger)
		return ErrNoCatalog
	}

	err := m.messenger.Edit(ctx, cb.ChatID, cb.MessageID, ListView(cat))
	chat.BestEffortAnswer(ctx, m.messenger, cb.ID, "", false, m.logger)
	if err != nil {
		return fmt.Errorf("back to list: %w", err)
	}
	return nil
}

// Select records name as the user's selection, confirms it with an alert
// and closes the chat's menu.
func (m *Menu) Select(ctx context.Context, cb chat.Callback, name string) error {
	entry, ok := m.catalogs.Lookup(cb.UserID, name)
	if !ok {
		chat.BestEffortAnswer(ctx, m.messenger, cb.ID, textNotFound, false, m.logger)
		return ErrNotFound
	}

	m.selections.Set(cb.UserID, entry.Name)
	m.logger.Infof("user %d selected %q", cb.UserID, entry.Name)

	chat.BestEffortAnswer(ctx, m.messenger, cb.ID, fmt.Sprintf(textSelected, entry.Name), true, m.logger)
	m.Close(ctx, cb.ChatID)
	return nil
}

// Close deletes both messages of the chat's pair and forgets it. Without a
// stored pair it does nothing.
func (m *Menu) Close(ctx context.Context, chatID chat.ChatID) {
	pair, ok := m.pairs.Take(chatID)
	if !ok {
		return
	}
	chat.BestEffortDelete(ctx, m.messenger, chatID, pair.Response, m.logger)
	chat.BestEffortDelete(ctx, m.messenger, chatID, pair.Request, m.logger)
}

// Resolve returns the entry name an action refers to, looking index-based
// actions up in the user's catalog. An index whose entry changed since the
// button was rendered does not resolve.
func (m *Menu) Resolve(userID chat.UserID, a Action) (string, bool) {
	if !a.ByIndex() {
		return a.Name, a.Name != ""
	}
	cat, ok := m.catalogs.Catalog(userID)
	if !ok || a.Index >= len(cat) {
		return "", false
	}
	name := cat[a.Index].Name
	if !a.Matches(name) {
		m.logger.Warnf("index %d no longer points at the rendered entry", a.Index)
		return "", false
	}
	return name, true
}

// Pair returns the chat's live pair.
func (m *Menu) Pair(chatID chat.ChatID) (Pair, bool) {
	return m.pairs.Get(chatID)
}

// Selection returns the user's selected entry name.
func (m *Menu) Selection(userID chat.UserID) (string, bool) {
	return m.selections.Get(userID)
}

// SelectionView renders the user's current selection.
func (m *Menu) SelectionView(userID chat.UserID) chat.View {
	name, ok := m.Selection(userID)
	if !ok {
		return chat.Text("No model selected yet. Send /models to pick one.")
	}
	return chat.Text(fmt.Sprintf("Selected model: <b>%s</b>", html.EscapeString(name)))
}
