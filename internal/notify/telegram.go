// internal/notify/telegram.go
package notify

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/user/draftgen/internal/tracker"
	"github.com/user/draftgen/pkg/render"
)

const maxTelegramMessage = 4096

// Telegram sends run-outcome messages through a bot. The notify key is
// "telegram:<chat_id>"; a missing chat id falls back to the configured
// default chat.
type Telegram struct {
	bot         *tgbotapi.BotAPI
	defaultChat int64
}

// NewTelegram creates a Telegram notifier.
func NewTelegram(token string, defaultChat int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot: %w", err)
	}
	return &Telegram{bot: bot, defaultChat: defaultChat}, nil
}

// Notify implements the registry Handler signature.
func (t *Telegram) Notify(notifyKey, message string) error {
	chatID := t.defaultChat
	if raw, ok := strings.CutPrefix(notifyKey, "telegram:"); ok && raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("bad telegram chat id %q: %w", raw, err)
		}
		chatID = id
	}
	if chatID == 0 {
		return fmt.Errorf("no telegram chat id for key %q", notifyKey)
	}

	if len(message) > maxTelegramMessage {
		message = message[:maxTelegramMessage]
	}
	msg := tgbotapi.NewMessage(chatID, message)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// FormatOutcome renders a final task snapshot as a human-readable message.
func FormatOutcome(groupTitle string, snap tracker.Snapshot) string {
	title := groupTitle
	if title == "" {
		title = "draft generation"
	}
	switch snap.State {
	case render.StateCompleted:
		return fmt.Sprintf("%s finished: %s", title, snap.DraftPath)
	case render.StateCancelled:
		return fmt.Sprintf("%s was cancelled", title)
	default:
		reason := snap.ErrorMessage
		if reason == "" {
			reason = snap.Message
		}
		return fmt.Sprintf("%s failed: %s", title, reason)
	}
}
