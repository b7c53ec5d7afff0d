// Package chat defines the transport-neutral view of the chat platform that
// the catalog cache and the menu talk to.
package chat

import (
	"context"
)

// UserID identifies an end user.
type UserID int64

// ChatID identifies a conversation.
type ChatID int64

// MessageID identifies a message within a chat.
type MessageID int

// Button is one inline button. Data is the opaque payload sent back when the
// button is pressed.
type Button struct {
	Label string
	Data  string
}

// View is a rendered message: HTML text plus inline button rows.
type View struct {
	Text string
	Rows [][]Button
}

// Callback is a button press.
type Callback struct {
	ID        string
	UserID    UserID
	ChatID    ChatID
	MessageID MessageID
	Data      string
}

// Messenger is the outbound side of the chat transport. Send is the only
// call whose result callers depend on; the others are fire-and-forget from
// the core's point of view.
type Messenger interface {
	Send(ctx context.Context, chatID ChatID, view View) (MessageID, error)
	Edit(ctx context.Context, chatID ChatID, messageID MessageID, view View) error
	Delete(ctx context.Context, chatID ChatID, messageID MessageID) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// Text returns a view without buttons.
func Text(s string) View {
	return View{Text: s}
}
