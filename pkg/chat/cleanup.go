package chat

import (
	"context"

	"github.com/SahandMSV/Playwright-AI-Telegram-Automation/pkg/logging"
)

// BestEffortDelete deletes a message and only logs a failure. The message
// may already be gone (deleted by the user, or orphaned by a newer menu), so
// a failure here never changes the caller's outcome.
func BestEffortDelete(ctx context.Context, m Messenger, chatID ChatID, messageID MessageID, logger *logging.Logger) {
	if m == nil || messageID == 0 {
		return
	}
	if err := m.Delete(ctx, chatID, messageID); err != nil && logger != nil {
		logger.Debugf("delete message %d in chat %d ignored: %v", messageID, chatID, err)
	}
}

// BestEffortAnswer answers a callback and only logs a failure.
func BestEffortAnswer(ctx context.Context, m Messenger, callbackID, text string, alert bool, logger *logging.Logger) {
	if m == nil || callbackID == "" {
		return
	}
	if err := m.AnswerCallback(ctx, callbackID, text, alert); err != nil && logger != nil {
		logger.Debugf("answer callback %s ignored: %v", callbackID, err)
	}
}
