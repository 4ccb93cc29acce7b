package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/interfaces/telegram"
	"tap-rating-bot/internal/interfaces/telegram/handlers/shared"
	"tap-rating-bot/internal/logger"
)

// userHandlerFunc handles a message from a registered user
type userHandlerFunc func(ctx context.Context, message *tgbotapi.Message, u *user.User) error

// requireUser loads the sender's record and asks unknown senders to register.
// A sender previously deactivated for blocking the bot is active again.
func (h *BotHandler) requireUser(next userHandlerFunc) telegram.HandlerFunc {
	return func(ctx context.Context, update tgbotapi.Update) error {
		message := update.Message
		u, err := h.userUseCase.ResumeByTelegramID(ctx, user.TelegramID(message.From.ID))
		if apperror.IsNotFound(err) {
			return h.reply(ctx, message, shared.PleaseRegisterText)
		}
		if err != nil {
			return err
		}
		return next(ctx, message, u)
	}
}

func (h *BotHandler) reply(ctx context.Context, message *tgbotapi.Message, text string) error {
	return h.delivered(ctx, message, h.bot.SendMessage(message.Chat.ID, text))
}

func (h *BotHandler) replyWithKeyboard(ctx context.Context, message *tgbotapi.Message, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error {
	return h.delivered(ctx, message, h.bot.SendMessageWithReplyKeyboard(message.Chat.ID, text, keyboard))
}

// delivered inspects a send result. Send failures are logged rather than
// returned; a sender that blocked the bot is deactivated.
func (h *BotHandler) delivered(ctx context.Context, message *tgbotapi.Message, err error) error {
	if err == nil {
		return nil
	}

	telegramID := message.From.ID
	if !apperror.IsBlocked(err) {
		logger.Error().Err(err).Int64("telegram_id", telegramID).Msg("Failed to send reply")
		return nil
	}

	logger.Warn().Int64("telegram_id", telegramID).Msg("User blocked the bot")
	if err := h.userUseCase.DeactivateByTelegramID(ctx, user.TelegramID(telegramID)); err != nil && !apperror.IsNotFound(err) {
		logger.Error().Err(err).Int64("telegram_id", telegramID).Msg("Failed to deactivate user")
	}
	return nil
}

func sessionKey(message *tgbotapi.Message) usecases.SessionKey {
	return usecases.SessionKey{ChatID: message.Chat.ID, UserID: message.From.ID}
}

// largestPhoto returns the file ID of the biggest size Telegram offers
func largestPhoto(message *tgbotapi.Message) string {
	if len(message.Photo) == 0 {
		return ""
	}
	return message.Photo[len(message.Photo)-1].FileID
}
