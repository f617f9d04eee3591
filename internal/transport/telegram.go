package transport

import (
	"context"

	tele "gopkg.in/telebot.v3"
)

// TelegramSender pushes relay notifications through the same bot connection
// the conversational handlers use. Implements relay.Sender.
type TelegramSender struct {
	bot *tele.Bot
}

func NewTelegramSender(bot *tele.Bot) *TelegramSender {
	return &TelegramSender{bot: bot}
}

// Send delivers text to a chat. telebot calls are synchronous without context
// support, so the call runs on its own goroutine and the context bounds how
// long the pipeline waits for it; a timed-out send counts as a failure and
// the message is redelivered.
func (s *TelegramSender) Send(ctx context.Context, chatID int64, text string) error {
	done := make(chan error, 1)

	go func() {
		_, err := s.bot.Send(tele.ChatID(chatID), text)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
