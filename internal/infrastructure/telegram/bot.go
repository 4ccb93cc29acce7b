package telegram

import (
	"errors"
	"fmt"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/logger"
	"tap-rating-bot/internal/metrics"
)

// Bot wraps the Telegram bot API
type Bot struct {
	api *tgbotapi.BotAPI
}

// NewBot creates a new Telegram bot
func NewBot(token string) (*Bot, error) {
	return NewBotWithEndpoint(token, tgbotapi.APIEndpoint)
}

// NewBotWithEndpoint creates a bot against a custom Bot API server
func NewBotWithEndpoint(token, endpoint string) (*Bot, error) {
	api, err := tgbotapi.NewBotAPIWithAPIEndpoint(token, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	api.Debug = false
	logger.Info().Str("account", api.Self.UserName).Msg("Authorized on Telegram")

	return &Bot{api: api}, nil
}

// GetUpdatesChan returns a channel for receiving updates
func (b *Bot) GetUpdatesChan() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	return b.api.GetUpdatesChan(u)
}

// StopReceivingUpdates stops the long-polling loop
func (b *Bot) StopReceivingUpdates() {
	b.api.StopReceivingUpdates()
}

// SendMessage sends a text message
func (b *Bot) SendMessage(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	return b.send(msg)
}

// SendMessageWithReplyKeyboard sends a message and replaces the reply keyboard
func (b *Bot) SendMessageWithReplyKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return b.send(msg)
}

// SendPhoto sends a photo by URL with a caption
func (b *Bot) SendPhoto(chatID int64, photoURL, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(photoURL))
	photo.Caption = caption
	return b.send(photo)
}

// FileURL resolves a file ID into a direct download URL
func (b *Bot) FileURL(fileID string) (string, error) {
	link, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return "", translateError(err)
	}
	return link, nil
}

// SetupCommands configures the bot commands with BotFather
func (b *Bot) SetupCommands() error {
	commands := []tgbotapi.BotCommand{
		{
			Command:     "start",
			Description: "Запустить бота",
		},
		{
			Command:     "help",
			Description: "Показать справку",
		},
		{
			Command:     "register",
			Description: "Зарегистрироваться",
		},
		{
			Command:     "profile",
			Description: "Показать профиль",
		},
		{
			Command:     "settings",
			Description: "Изменить профиль",
		},
	}

	setCommands := tgbotapi.NewSetMyCommands(commands...)
	_, err := b.api.Request(setCommands)
	if err != nil {
		return fmt.Errorf("failed to set bot commands: %w", err)
	}

	logger.Info().Msg("Bot commands configured successfully")
	return nil
}

func (b *Bot) send(c tgbotapi.Chattable) error {
	if _, err := b.api.Send(c); err != nil {
		return translateError(err)
	}
	return nil
}

// translateError classifies Bot API failures. Any 403 means the chat is no
// longer reachable: blocked bot, deactivated account or no prior conversation.
func translateError(err error) error {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		metrics.IncSendFailure("network")
		return apperror.Transport(err)
	}

	switch {
	case apiErr.Code == http.StatusForbidden:
		metrics.IncSendFailure("blocked")
		return apperror.Blocked(err)
	case apiErr.RetryAfter > 0:
		metrics.IncSendFailure("rate_limited")
		logger.Warn().Int("retry_after", apiErr.RetryAfter).Msg("Rate limit exceeded")
	default:
		metrics.IncSendFailure("api")
	}
	return apperror.Transport(err)
}
