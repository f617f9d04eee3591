package bot

import (
	"fmt"

	"github.com/strawberrylab/masterbot/internal/backend"
	"github.com/strawberrylab/masterbot/internal/domain"
	"github.com/strawberrylab/masterbot/internal/infrastructure/configs"
	"github.com/strawberrylab/masterbot/internal/infrastructure/logging"
	tele "gopkg.in/telebot.v3"
)

// Bot is the long-polling Telegram front end. The notification relay shares
// its underlying connection through Telebot().
type Bot struct {
	tb     *tele.Bot
	logger logging.Logger
}

func New(cfg configs.TelegramConfig, api *backend.Client, identities domain.IdentityStore, logger logging.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("telegram bot token is required (BOT_TOKEN)")
	}

	tb, err := tele.NewBot(tele.Settings{
		Token:  cfg.Token,
		Poller: &tele.LongPoller{Timeout: cfg.PollTimeout},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}

	NewHandlers(api, identities, logger).Register(tb)

	return &Bot{tb: tb, logger: logger}, nil
}

func (b *Bot) Telebot() *tele.Bot {
	return b.tb
}

// Start blocks polling for updates until Stop is called.
func (b *Bot) Start() {
	b.logger.Info(logging.Telegram, logging.Startup, "start polling for updates", nil)
	b.tb.Start()
}

func (b *Bot) Stop() {
	b.tb.Stop()
	b.logger.Info(logging.Telegram, logging.Shutdown, "telegram polling stopped", nil)
}
