package telegram

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/chat"
	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Commands understood by the bot.
const (
	CommandStart    = "start"
	CommandModels   = "models"
	CommandRefresh  = "refresh"
	CommandSelected = "selected"
)

// Commands is the command list published to the Bot API.
var Commands = []tgbotapi.BotCommand{
	{Command: CommandStart, Description: "Register and review the usage policy"},
	{Command: CommandModels, Description: "Browse the available models"},
	{Command: CommandRefresh, Description: "Fetch the model list again"},
	{Command: CommandSelected, Description: "Show your selected model"},
}

// Handler receives decoded updates. *bot.Handler implements it.
type Handler interface {
	OnStart(ctx context.Context, userID chat.UserID, chatID chat.ChatID)
	OnRequestCatalog(ctx context.Context, userID chat.UserID, chatID chat.ChatID, requestMsg chat.MessageID)
	OnRefresh(ctx context.Context, userID chat.UserID, chatID chat.ChatID, requestMsg chat.MessageID)
	OnShowSelection(ctx context.Context, userID chat.UserID, chatID chat.ChatID)
	OnCallback(ctx context.Context, cb chat.Callback)
}

// Route dispatches one update and reports whether it was handled.
func Route(ctx context.Context, h Handler, update tgbotapi.Update) bool {
	if q := update.CallbackQuery; q != nil {
		if q.From == nil || q.Message == nil || q.Message.Chat == nil {
			return false
		}
		h.OnCallback(ctx, chat.Callback{
			ID:        q.ID,
			UserID:    chat.UserID(q.From.ID),
			ChatID:    chat.ChatID(q.Message.Chat.ID),
			MessageID: chat.MessageID(q.Message.MessageID),
			Data:      q.Data,
		})
		return true
	}

	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil || !msg.IsCommand() {
		return false
	}
	userID := chat.UserID(msg.From.ID)
	chatID := chat.ChatID(msg.Chat.ID)
	msgID := chat.MessageID(msg.MessageID)

	switch strings.ToLower(msg.Command()) {
	case CommandStart:
		h.OnStart(ctx, userID, chatID)
	case CommandModels:
		h.OnRequestCatalog(ctx, userID, chatID, msgID)
	case CommandRefresh:
		h.OnRefresh(ctx, userID, chatID, msgID)
	case CommandSelected:
		h.OnShowSelection(ctx, userID, chatID)
	default:
		return false
	}
	return true
}

// Poller long-polls the Bot API and handles each update in its own
// goroutine.
type Poller struct {
	bot     *tgbotapi.BotAPI
	handler Handler
	logger  *logging.Logger
	timeout int
	wg      sync.WaitGroup
}

// NewPoller creates a poller. pollTimeout is the long-poll timeout in
// seconds.
func NewPoller(bot *tgbotapi.BotAPI, handler Handler, pollTimeout int, logger *logging.Logger) *Poller {
	if logger == nil {
		logger = logging.Nop()
	}
	if pollTimeout <= 0 {
		pollTimeout = 60
	}
	return &Poller{bot: bot, handler: handler, logger: logger, timeout: pollTimeout}
}

// Connect authenticates with token and returns the API client.
func Connect(token string, logger *logging.Logger) (*tgbotapi.BotAPI, error) {
	if logger != nil {
		if err := tgbotapi.SetLogger(apiLogger{logger}); err != nil {
			return nil, err
		}
	}
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect to telegram: %w", err)
	}
	return api, nil
}

// Run publishes the command list and handles updates until ctx is done.
// It returns after every in-flight update has been handled.
func (p *Poller) Run(ctx context.Context) error {
	if _, err := p.bot.Request(tgbotapi.NewSetMyCommands(Commands...)); err != nil {
		p.logger.Warnf("failed to publish commands: %v", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = p.timeout
	updates := p.bot.GetUpdatesChan(cfg)
	p.logger.Infof("polling updates as @%s", p.bot.Self.UserName)

	defer p.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			p.bot.StopReceivingUpdates()
			p.logger.Infof("stopped polling updates")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			p.wg.Add(1)
			go p.handle(ctx, update)
		}
	}
}

func (p *Poller) handle(ctx context.Context, update tgbotapi.Update) {
	defer p.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			p.logger.Errorf("update %d panicked: %v", update.UpdateID, r)
		}
	}()
	if !Route(ctx, p.handler, update) {
		p.logger.Debugf("update %d ignored", update.UpdateID)
	}
}

// apiLogger routes the Bot API library's log output to a component logger.
type apiLogger struct {
	logger *logging.Logger
}

func (l apiLogger) Println(v ...interface{}) {
	l.logger.Debugf("%s", strings.TrimSuffix(fmt.Sprintln(v...), "\n"))
}

func (l apiLogger) Printf(format string, v ...interface{}) {
	l.logger.Debugf(format, v...)
}
