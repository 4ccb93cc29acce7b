package handlers

import (
	"context"
	"errors"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tap-rating-bot/internal/apperror"
	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/interfaces/telegram/handlers/shared"
	"tap-rating-bot/internal/logger"
	"tap-rating-bot/internal/metrics"
)

// continueRegistration feeds the message to an open profile form.
// It reports false when no form is open for this chat.
func (h *BotHandler) continueRegistration(ctx context.Context, message *tgbotapi.Message) (bool, error) {
	key := sessionKey(message)

	state, err := h.registration.Current(ctx, key)
	if err != nil {
		return false, err
	}
	if state == usecases.StateIdle {
		return false, nil
	}

	u, err := h.userUseCase.GetUserByTelegramID(ctx, user.TelegramID(message.From.ID))
	if apperror.IsNotFound(err) {
		// The record was removed while the form was open.
		if _, err := h.registration.Cancel(ctx, key); err != nil {
			return true, err
		}
		return true, h.replyWithKeyboard(ctx, message, shared.NotRegisteredText, shared.CreateMainKeyboard())
	}
	if err != nil {
		return true, err
	}

	step, err := h.registration.Handle(ctx, key, u.ID(), usecases.Input{
		Text:        message.Text,
		PhotoFileID: largestPhoto(message),
	})
	if err != nil {
		if state == usecases.StateAwaitingPhoto && errors.Is(err, apperror.ErrTransport) {
			logger.Warn().Err(err).Int64("telegram_id", message.From.ID).Msg("Failed to resolve profile photo")
			return true, h.reply(ctx, message, shared.PhotoRetryErrorText)
		}
		metrics.IncRegistration("failed")
		return true, err
	}
	if !step.Handled() {
		return false, nil
	}
	metrics.IncUpdate("registration")

	return true, h.sendStep(ctx, message, step)
}

func (h *BotHandler) sendStep(ctx context.Context, message *tgbotapi.Message, step usecases.Step) error {
	if step.Prompt == usecases.PromptCompleted {
		metrics.IncRegistration("completed")
		logger.Info().
			Int64("telegram_id", message.From.ID).
			Msg("Profile updated")
		return h.replyWithKeyboard(ctx, message, shared.ProfileUpdatedText, shared.CreateMainKeyboard())
	}

	return h.reply(ctx, message, shared.PromptText(step.Prompt))
}
