package chat

import (
	"context"
	"sync"
	"time"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
)

// cleanupTimeout bounds the delayed delete, which runs after the request
// that created the message has finished.
const cleanupTimeout = 10 * time.Second

// Progress is a status message that is edited in place when the work it
// reports finishes and then removed after a delay.
type Progress struct {
	messenger Messenger
	chatID    ChatID
	messageID MessageID
	logger    *logging.Logger
}

// StartProgress sends the initial status text. A nil messenger or a failed
// send yields a Progress whose methods do nothing.
func StartProgress(ctx context.Context, m Messenger, chatID ChatID, text string, logger *logging.Logger) *Progress {
	p := &Progress{messenger: m, chatID: chatID, logger: logger}
	if m == nil {
		return p
	}
	id, err := m.Send(ctx, chatID, Text(text))
	if err != nil {
		if logger != nil {
			logger.Warnf("progress message not sent to chat %d: %v", chatID, err)
		}
		return p
	}
	p.messageID = id
	return p
}

// MessageID returns the status message id, 0 when none was sent.
func (p *Progress) MessageID() MessageID {
	return p.messageID
}

// Finish replaces the status text and schedules the message's removal after
// ttl. pending, when non-nil, tracks the scheduled removal.
func (p *Progress) Finish(ctx context.Context, text string, ttl time.Duration, pending *sync.WaitGroup) {
	if p.messageID == 0 {
		return
	}
	if err := p.messenger.Edit(ctx, p.chatID, p.messageID, Text(text)); err != nil && p.logger != nil {
		p.logger.Debugf("progress edit in chat %d ignored: %v", p.chatID, err)
	}

	if pending != nil {
		pending.Add(1)
	}
	time.AfterFunc(ttl, func() {
		if pending != nil {
			defer pending.Done()
		}
		cctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
		defer cancel()
		BestEffortDelete(cctx, p.messenger, p.chatID, p.messageID, p.logger)
	})
}
