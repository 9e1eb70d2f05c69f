package telegramimpl

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-story-capture/internal/telegram"
	"github.com/orgball2608/insta-story-capture/pkg/config"
	"github.com/orgball2608/insta-story-capture/pkg/logger"
	"go.uber.org/fx"
)

type Opts struct {
	fx.In

	Config *config.Config
	Logger logger.Logger
}

// sender is the part of *tgbotapi.BotAPI the client uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramImpl struct {
	bot     sender
	channel string
	Logger  logger.Logger
}

// New returns a disabled client when no bot token is configured.
func New(opts Opts) (*TelegramImpl, error) {
	log := opts.Logger.WithComponent("telegram")
	if opts.Config.Telegram.Token == "" {
		log.Info("Telegram token not set, notifications disabled")
		return &TelegramImpl{Logger: log}, nil
	}

	tgBot, err := tgbotapi.NewBotAPI(opts.Config.Telegram.Token)
	if err != nil {
		log.Error("Error creating bot", "Error", err)
		return nil, err
	}

	return newWithSender(tgBot, opts.Config.Telegram.Channel, log), nil
}

func newWithSender(bot sender, channel string, log logger.Logger) *TelegramImpl {
	return &TelegramImpl{
		bot:     bot,
		channel: channel,
		Logger:  log,
	}
}

func (tg *TelegramImpl) Enabled() bool {
	return tg.bot != nil && tg.channel != ""
}

var _ telegram.Client = (*TelegramImpl)(nil)
