package delivery

import (
	"context"
	"fmt"

	"golang-news-briefer/internal/briefing"
	"golang-news-briefer/pkg/telegram"
	"golang-news-briefer/pkg/utils"
)

// Telegram messages cap out at 4096 characters.
const telegramMaxLen = 4000

// TelegramDeliverer pushes a condensed briefing to a Telegram chat.
type TelegramDeliverer struct {
	notifier telegram.Notifier
}

// NewTelegramDeliverer creates a Telegram deliverer.
func NewTelegramDeliverer(notifier telegram.Notifier) *TelegramDeliverer {
	return &TelegramDeliverer{notifier: notifier}
}

func (t *TelegramDeliverer) Name() string { return "telegram" }

func (t *TelegramDeliverer) Deliver(_ context.Context, b *briefing.Briefing) error {
	text := fmt.Sprintf("<b>%s</b>\n\n%s", b.Subject(), utils.TruncateString(b.PlainText, telegramMaxLen))
	if err := t.notifier.SendMessage(text); err != nil {
		return fmt.Errorf("failed to send telegram briefing: %w", err)
	}
	return nil
}
