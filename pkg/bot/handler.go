// Package bot reacts to chat events: registration, the usage policy and the
// catalog menu.
package bot

import (
	"context"
	"errors"
	"fmt"
	"html"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/browser"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/chat"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/menu"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/models"
)

// Texts sent by the handler.
const (
	TextPolicy = "<b>Welcome!</b>\n\n" +
		"This bot opens a browser on your behalf to read the list of available AI models. " +
		"Only your Telegram id and your model selection are stored.\n\n" +
		"Press <b>Accept</b> to continue."
	TextWelcome     = "Send /models to browse the available models, /selected to see your choice."
	TextAccepted    = "✅ Policy accepted. Send /models to browse the available models."
	TextAcceptFirst = "Please accept the usage policy first: send /start."
	TextRetry       = "The model list could not be loaded.\n<i>%s</i>"
	TextUnknown     = "This button is no longer valid."

	LabelAccept = "Accept"
	LabelRetry  = "🔄 Retry"
)

// Cache is the catalog cache the handler loads through. *models.Cache
// implements it.
type Cache interface {
	EnsureLoaded(ctx context.Context, userID chat.UserID, chatID chat.ChatID) models.Result
	Invalidate(userID chat.UserID)
}

// Users tracks registration and policy acceptance. *users.FileStore
// implements it.
type Users interface {
	Register(id chat.UserID) (bool, error)
	AcceptPolicy(id chat.UserID) error
	HasAccepted(id chat.UserID) bool
}

// Options configures a Handler.
type Options struct {
	// OnFatal is called when the browser cannot be launched at all.
	OnFatal func(error)
	Logger  *logging.Logger
}

// Handler implements the inbound triggers.
type Handler struct {
	cache     Cache
	menu      *menu.Menu
	users     Users
	messenger chat.Messenger
	onFatal   func(error)
	logger    *logging.Logger
}

// New creates a handler.
func New(cache Cache, m *menu.Menu, users Users, messenger chat.Messenger, opts Options) *Handler {
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}
	if opts.OnFatal == nil {
		opts.OnFatal = func(error) {}
	}
	return &Handler{
		cache:     cache,
		menu:      m,
		users:     users,
		messenger: messenger,
		onFatal:   opts.OnFatal,
		logger:    opts.Logger,
	}
}

func (h *Handler) send(ctx context.Context, chatID chat.ChatID, view chat.View) {
	if _, err := h.messenger.Send(ctx, chatID, view); err != nil {
		h.logger.Warnf("send to chat %d failed: %v", chatID, err)
	}
}

func policyView() chat.View {
	return chat.View{
		Text: TextPolicy,
		Rows: [][]chat.Button{{{Label: LabelAccept, Data: menu.AcceptData()}}},
	}
}

// OnStart registers the user and shows the policy prompt, or the welcome
// text for users who already accepted it.
func (h *Handler) OnStart(ctx context.Context, userID chat.UserID, chatID chat.ChatID) {
	created, err := h.users.Register(userID)
	if err != nil {
		h.logger.Errorf("register user %d: %v", userID, err)
	} else if created {
		h.logger.Infof("user %d registered", userID)
	}

	if h.users.HasAccepted(userID) {
		h.send(ctx, chatID, chat.Text(TextWelcome))
		return
	}
	h.send(ctx, chatID, policyView())
}

// OnAcceptPolicy records the acceptance and turns the prompt into a
// confirmation.
func (h *Handler) OnAcceptPolicy(ctx context.Context, cb chat.Callback) {
	if err := h.users.AcceptPolicy(cb.UserID); err != nil {
		h.logger.Errorf("accept policy for user %d: %v", cb.UserID, err)
		chat.BestEffortAnswer(ctx, h.messenger, cb.ID, "Could not save your choice, please try again.", true, h.logger)
		return
	}
	h.logger.Infof("user %d accepted the policy", cb.UserID)
	chat.BestEffortAnswer(ctx, h.messenger, cb.ID, "", false, h.logger)
	if err := h.messenger.Edit(ctx, cb.ChatID, cb.MessageID, chat.Text(TextAccepted)); err != nil {
		h.logger.Debugf("policy prompt edit ignored: %v", err)
	}
}

// OnRequestCatalog loads the user's catalog and opens the menu. A failed
// load offers a retry button instead.
func (h *Handler) OnRequestCatalog(ctx context.Context, userID chat.UserID, chatID chat.ChatID, requestMsg chat.MessageID) {
	if !h.users.HasAccepted(userID) {
		h.send(ctx, chatID, chat.Text(TextAcceptFirst))
		return
	}

	res := h.cache.EnsureLoaded(ctx, userID, chatID)
	switch res.Status {
	case models.StatusAlreadyLoaded, models.StatusLoaded:
		if err := h.menu.Open(ctx, userID, chatID, requestMsg); err != nil {
			h.logger.Errorf("open menu for user %d: %v", userID, err)
		}
	case models.StatusBusy:
		h.send(ctx, chatID, chat.Text(html.EscapeString(res.Reason)))
	case models.StatusFailed:
		var launch *browser.LaunchError
		if errors.As(res.Err, &launch) {
			h.logger.Errorf("browser launch failed: %v", res.Err)
			h.onFatal(res.Err)
		}
		h.send(ctx, chatID, chat.View{
			Text: fmt.Sprintf(TextRetry, html.EscapeString(res.Reason)),
			Rows: [][]chat.Button{{{Label: LabelRetry, Data: menu.RetryData()}}},
		})
	}
}

// OnRetry removes the retry prompt and requests the catalog again.
func (h *Handler) OnRetry(ctx context.Context, cb chat.Callback) {
	chat.BestEffortAnswer(ctx, h.messenger, cb.ID, "", false, h.logger)
	chat.BestEffortDelete(ctx, h.messenger, cb.ChatID, cb.MessageID, h.logger)
	h.OnRequestCatalog(ctx, cb.UserID, cb.ChatID, 0)
}

// OnRefresh drops the cached catalog and requests it again.
func (h *Handler) OnRefresh(ctx context.Context, userID chat.UserID, chatID chat.ChatID, requestMsg chat.MessageID) {
	if h.users.HasAccepted(userID) {
		h.cache.Invalidate(userID)
	}
	h.OnRequestCatalog(ctx, userID, chatID, requestMsg)
}

// OnShowSelection reports the user's current selection.
func (h *Handler) OnShowSelection(ctx context.Context, userID chat.UserID, chatID chat.ChatID) {
	h.send(ctx, chatID, h.menu.SelectionView(userID))
}

// OnSelectRow shows the detail of the chosen row.
func (h *Handler) OnSelectRow(ctx context.Context, cb chat.Callback, name string) {
	if err := h.menu.ShowDetail(ctx, cb, name); err != nil {
		h.logger.Debugf("detail %q for user %d: %v", name, cb.UserID, err)
	}
}

// OnBack returns from the detail to the list.
func (h *Handler) OnBack(ctx context.Context, cb chat.Callback) {
	if err := h.menu.Back(ctx, cb); err != nil {
		h.logger.Debugf("back for user %d: %v", cb.UserID, err)
	}
}

// OnSelectEntry records the chosen entry and closes the menu.
func (h *Handler) OnSelectEntry(ctx context.Context, cb chat.Callback, name string) {
	if err := h.menu.Select(ctx, cb, name); err != nil {
		h.logger.Debugf("select %q for user %d: %v", name, cb.UserID, err)
	}
}

// OnClose closes the chat's menu.
func (h *Handler) OnClose(ctx context.Context, chatID chat.ChatID) {
	h.menu.Close(ctx, chatID)
}

// OnCallback decodes a button press and dispatches it.
func (h *Handler) OnCallback(ctx context.Context, cb chat.Callback) {
	action, err := menu.ParseAction(cb.Data)
	if err != nil {
		h.logger.Debugf("callback from user %d: %v", cb.UserID, err)
		chat.BestEffortAnswer(ctx, h.messenger, cb.ID, TextUnknown, false, h.logger)
		return
	}

	switch action.Kind {
	case menu.KindAccept:
		h.OnAcceptPolicy(ctx, cb)
	case menu.KindRetry:
		h.OnRetry(ctx, cb)
	case menu.KindBack:
		h.OnBack(ctx, cb)
	case menu.KindClose:
		chat.BestEffortAnswer(ctx, h.messenger, cb.ID, "", false, h.logger)
		h.OnClose(ctx, cb.ChatID)
	case menu.KindDetail, menu.KindSelect:
		name, ok := h.menu.Resolve(cb.UserID, action)
		if !ok {
			chat.BestEffortAnswer(ctx, h.messenger, cb.ID, TextUnknown, false, h.logger)
			return
		}
		if action.Kind == menu.KindDetail {
			h.OnSelectRow(ctx, cb, name)
		} else {
			h.OnSelectEntry(ctx, cb, name)
		}
	}
}
