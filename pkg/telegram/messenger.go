// Package telegram connects the bot to the Telegram Bot API.
package telegram

import (
	"context"
	"fmt"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/chat"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// API is the subset of *tgbotapi.BotAPI the messenger uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Messenger implements chat.Messenger on the Bot API. Every outbound call
// waits on a shared rate limiter.
type Messenger struct {
	api     API
	limiter *rate.Limiter
}

// NewMessenger wraps api. A nil limiter means no limit.
func NewMessenger(api API, limiter *rate.Limiter) *Messenger {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Messenger{api: api, limiter: limiter}
}

// Keyboard converts button rows to an inline keyboard. It returns nil when
// there are no buttons.
func Keyboard(rows [][]chat.Button) *tgbotapi.InlineKeyboardMarkup {
	if len(rows) == 0 {
		return nil
	}
	kb := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Data))
		}
		kb = append(kb, buttons)
	}
	if len(kb) == 0 {
		return nil
	}
	markup := tgbotapi.NewInlineKeyboardMarkup(kb...)
	return &markup
}

func (m *Messenger) Send(ctx context.Context, chatID chat.ChatID, view chat.View) (chat.MessageID, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	msg := tgbotapi.NewMessage(int64(chatID), view.Text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if kb := Keyboard(view.Rows); kb != nil {
		msg.ReplyMarkup = *kb
	}

	sent, err := m.api.Send(msg)
	if err != nil {
		return 0, fmt.Errorf("send message: %w", err)
	}
	return chat.MessageID(sent.MessageID), nil
}

func (m *Messenger) Edit(ctx context.Context, chatID chat.ChatID, messageID chat.MessageID, view chat.View) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	edit := tgbotapi.NewEditMessageText(int64(chatID), int(messageID), view.Text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	edit.ReplyMarkup = Keyboard(view.Rows)

	if _, err := m.api.Request(edit); err != nil {
		return fmt.Errorf("edit message %d: %w", messageID, err)
	}
	return nil
}

func (m *Messenger) Delete(ctx context.Context, chatID chat.ChatID, messageID chat.MessageID) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	if _, err := m.api.Request(tgbotapi.NewDeleteMessage(int64(chatID), int(messageID))); err != nil {
		return fmt.Errorf("delete message %d: %w", messageID, err)
	}
	return nil
}

func (m *Messenger) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return err
	}
	answer := tgbotapi.NewCallback(callbackID, text)
	if alert {
		answer = tgbotapi.NewCallbackWithAlert(callbackID, text)
	}
	if _, err := m.api.Request(answer); err != nil {
		return fmt.Errorf("answer callback: %w", err)
	}
	return nil
}
