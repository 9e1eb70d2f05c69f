package telegramimpl

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/orgball2608/insta-story-capture/internal/domain"
	"github.com/orgball2608/insta-story-capture/pkg/formatter"
)

// Telegram rejects photo captions longer than this.
const maxCaption = 1024

// SendStory posts the screenshot to the channel with the record as caption.
func (tg *TelegramImpl) SendStory(ctx context.Context, rec domain.StoryRecord, screenshot []byte) error {
	if !tg.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	channelName := tg.channelName()
	photo := tgbotapi.NewPhotoToChannel(channelName, tgbotapi.FileBytes{
		Name:  rec.ScreenshotFileName,
		Bytes: screenshot,
	})
	photo.Caption = Caption(rec)
	photo.ParseMode = tgbotapi.ModeMarkdownV2

	if _, err := tg.bot.Send(photo); err != nil {
		tg.Logger.Error("Error sending story to channel",
			"channel", channelName,
			"story_id", rec.StoryID,
			"error", err)
		return fmt.Errorf("failed to send story to channel: %w", err)
	}

	tg.Logger.Info("Story sent to channel",
		"channel", channelName,
		"story_id", rec.StoryID)
	return nil
}

// SendMessageToChannel sends a plain text message to the channel.
func (tg *TelegramImpl) SendMessageToChannel(ctx context.Context, text string) error {
	if !tg.Enabled() {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	channelName := tg.channelName()
	if _, err := tg.bot.Send(tgbotapi.NewMessageToChannel(channelName, text)); err != nil {
		tg.Logger.Error("Error sending message to channel",
			"channel", channelName,
			"error", err)
		return fmt.Errorf("failed to send message to channel: %w", err)
	}

	tg.Logger.Info("Message sent to channel", "channel", channelName)
	return nil
}

func (tg *TelegramImpl) channelName() string {
	if strings.HasPrefix(tg.channel, "@") {
		return tg.channel
	}
	return "@" + tg.channel
}

// Caption renders a record as a MarkdownV2 photo caption.
func Caption(rec domain.StoryRecord) string {
	var sb strings.Builder

	user := "unknown"
	if rec.Username != nil {
		user = "@" + *rec.Username
	}
	sb.WriteString("*" + formatter.EscapeMarkdownV2(user) + "*")
	if rec.IsVerified {
		sb.WriteString(" ✔️")
	}
	sb.WriteString("\n")

	if rec.Timestamp != nil {
		sb.WriteString("🕒 " + formatter.EscapeMarkdownV2(*rec.Timestamp) + "\n")
	}
	if rec.SongData != nil {
		sb.WriteString("🎵 " + formatter.EscapeMarkdownV2(*rec.SongData) + "\n")
	}

	images, videos := 0, 0
	for _, m := range rec.MediaData {
		if m.Type == domain.MediaVideo {
			videos++
		} else {
			images++
		}
	}
	sb.WriteString(formatter.EscapeMarkdownV2(fmt.Sprintf("%s image(s), %s video(s)",
		formatter.FormatNumber(images), formatter.FormatNumber(videos))) + "\n")
	sb.WriteString("Story `" + formatter.EscapeMarkdownV2(rec.StoryID) + "`")

	return formatter.TruncateMarkdownV2(sb.String(), maxCaption)
}
