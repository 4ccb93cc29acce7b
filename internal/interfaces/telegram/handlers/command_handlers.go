package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/interfaces/telegram/handlers/shared"
	"tap-rating-bot/internal/logger"
	"tap-rating-bot/internal/metrics"
)

// handleStart processes the /start command
func (h *BotHandler) handleStart(ctx context.Context, update tgbotapi.Update) error {
	return h.replyWithKeyboard(ctx, update.Message, shared.WelcomeText, shared.CreateMainKeyboard())
}

// handleHelp processes the /help command
func (h *BotHandler) handleHelp(ctx context.Context, update tgbotapi.Update) error {
	return h.reply(ctx, update.Message, shared.GetHelpText())
}

// handleRegister processes the /register command: the record is created on
// first use and the profile form is opened.
func (h *BotHandler) handleRegister(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	from := message.From

	if _, err := h.userUseCase.GetOrRegister(ctx, user.TelegramID(from.ID), from.UserName, from.FirstName, from.LastName); err != nil {
		return err
	}

	if _, err := h.registration.Begin(ctx, sessionKey(message)); err != nil {
		return err
	}
	metrics.IncRegistration("started")

	return h.replyWithKeyboard(ctx, message, shared.RegisterText, shared.CreateCancelKeyboard())
}

// handleProfile processes the /profile command
func (h *BotHandler) handleProfile(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message

	u, err := h.userUseCase.GetUserByTelegramID(ctx, user.TelegramID(message.From.ID))
	if apperror.IsNotFound(err) {
		return h.reply(ctx, message, shared.NotRegisteredText)
	}
	if err != nil {
		return err
	}

	text := shared.FormatProfileText(u)
	if u.Photo() != "" {
		err := h.bot.SendPhoto(message.Chat.ID, u.Photo(), text)
		if err == nil || apperror.IsBlocked(err) {
			return h.delivered(ctx, message, err)
		}
		// Stored file links expire; the text profile is still worth sending.
		logger.Warn().Err(err).Int64("telegram_id", message.From.ID).Msg("Failed to send profile photo")
	}
	return h.reply(ctx, message, text)
}

// handleSettings processes /settings and the Настройки button
func (h *BotHandler) handleSettings(ctx context.Context, message *tgbotapi.Message, _ *user.User) error {
	if _, err := h.registration.Begin(ctx, sessionKey(message)); err != nil {
		return err
	}
	metrics.IncRegistration("started")

	return h.replyWithKeyboard(ctx, message, shared.AskNameText, shared.CreateCancelKeyboard())
}

// handleDigest lets an administrator broadcast the digest immediately
func (h *BotHandler) handleDigest(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message

	admin, err := h.isAdmin(ctx, message.From.ID)
	if err != nil {
		return err
	}
	if !admin {
		return h.reply(ctx, message, shared.AdminOnlyText)
	}

	logger.Info().Int64("telegram_id", message.From.ID).Msg("Manual digest requested")
	report, err := h.digestUseCase.RunOnce(ctx)
	if err != nil {
		return err
	}

	return h.reply(ctx, message, shared.FormatDigestReport(report))
}

func (h *BotHandler) isAdmin(ctx context.Context, telegramID int64) (bool, error) {
	if h.options.IsAdmin(telegramID) {
		return true, nil
	}

	u, err := h.userUseCase.GetUserByTelegramID(ctx, user.TelegramID(telegramID))
	if apperror.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return u.IsAdmin(), nil
}

// handleUnknown answers messages no route matched
func (h *BotHandler) handleUnknown(ctx context.Context, update tgbotapi.Update) error {
	return h.reply(ctx, update.Message, shared.UnknownMessageText)
}
