// Package chattest provides chat.Messenger doubles for tests.
package chattest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/chat"
	"github.com/stretchr/testify/mock"
)

// ErrMessageNotFound mimics the platform's answer when deleting a message
// that no longer exists.
var ErrMessageNotFound = errors.New("message to delete not found")

// Sent is a message sent through the Recorder.
type Sent struct {
	ChatID chat.ChatID
	ID     chat.MessageID
	View   chat.View
}

// Answer is a recorded callback answer.
type Answer struct {
	CallbackID string
	Text       string
	Alert      bool
}

// Recorder is an in-memory Messenger. It numbers sent messages from 100,
// remembers the latest view of every live message and fails deletes of
// unknown messages with ErrMessageNotFound.
type Recorder struct {
	mu      sync.Mutex
	nextID  chat.MessageID
	live    map[chat.MessageID]chat.View
	sent    []Sent
	edits   []Sent
	deleted []chat.MessageID
	answers []Answer

	// SendErr, when set, fails every Send
	SendErr error
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		nextID: 100,
		live:   make(map[chat.MessageID]chat.View),
	}
}

// Seed registers a message that exists before the test starts, such as the
// user's own request message.
func (r *Recorder) Seed(id chat.MessageID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.live[id] = chat.View{}
}

func (r *Recorder) Send(_ context.Context, chatID chat.ChatID, view chat.View) (chat.MessageID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.SendErr != nil {
		return 0, r.SendErr
	}
	r.nextID++
	id := r.nextID
	r.live[id] = view
	r.sent = append(r.sent, Sent{ChatID: chatID, ID: id, View: view})
	return id, nil
}

func (r *Recorder) Edit(_ context.Context, chatID chat.ChatID, id chat.MessageID, view chat.View) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[id]; !ok {
		return fmt.Errorf("edit %d: %w", id, ErrMessageNotFound)
	}
	r.live[id] = view
	r.edits = append(r.edits, Sent{ChatID: chatID, ID: id, View: view})
	return nil
}

func (r *Recorder) Delete(_ context.Context, _ chat.ChatID, id chat.MessageID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.live[id]; !ok {
		return fmt.Errorf("delete %d: %w", id, ErrMessageNotFound)
	}
	delete(r.live, id)
	r.deleted = append(r.deleted, id)
	return nil
}

func (r *Recorder) AnswerCallback(_ context.Context, callbackID, text string, alert bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, Answer{CallbackID: callbackID, Text: text, Alert: alert})
	return nil
}

// View returns the current view of a live message.
func (r *Recorder) View(id chat.MessageID) (chat.View, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.live[id]
	return v, ok
}

// Live reports whether the message still exists.
func (r *Recorder) Live(id chat.MessageID) bool {
	_, ok := r.View(id)
	return ok
}

// Sent returns every message sent so far.
func (r *Recorder) Sent() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.sent...)
}

// Edits returns every edit so far.
func (r *Recorder) Edits() []Sent {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Sent(nil), r.edits...)
}

// Deleted returns the ids deleted so far.
func (r *Recorder) Deleted() []chat.MessageID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]chat.MessageID(nil), r.deleted...)
}

// Answers returns every callback answer so far.
func (r *Recorder) Answers() []Answer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Answer(nil), r.answers...)
}

// LastAnswer returns the most recent callback answer.
func (r *Recorder) LastAnswer() (Answer, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.answers) == 0 {
		return Answer{}, false
	}
	return r.answers[len(r.answers)-1], true
}

// MockMessenger is a testify mock for strict call expectations.
type MockMessenger struct {
	mock.Mock
}

func (m *MockMessenger) Send(ctx context.Context, chatID chat.ChatID, view chat.View) (chat.MessageID, error) {
	args := m.Called(ctx, chatID, view)
	return args.Get(0).(chat.MessageID), args.Error(1)
}

func (m *MockMessenger) Edit(ctx context.Context, chatID chat.ChatID, id chat.MessageID, view chat.View) error {
	return m.Called(ctx, chatID, id, view).Error(0)
}

func (m *MockMessenger) Delete(ctx context.Context, chatID chat.ChatID, id chat.MessageID) error {
	return m.Called(ctx, chatID, id).Error(0)
}

func (m *MockMessenger) AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error {
	return m.Called(ctx, callbackID, text, alert).Error(0)
}
