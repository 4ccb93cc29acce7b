package handlers

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tap-rating-bot/internal/domain/user"
	"tap-rating-bot/internal/interfaces/telegram/handlers/shared"
	"tap-rating-bot/internal/logger"
	"tap-rating-bot/internal/metrics"
)

// handleRating shows the caller's taps, the grand total and the leaders
func (h *BotHandler) handleRating(ctx context.Context, message *tgbotapi.Message, u *user.User) error {
	board, err := h.ratingUseCase.Leaderboard(ctx, u.TelegramID(), h.options.LeaderboardLimit)
	if err != nil {
		return err
	}

	return h.reply(ctx, message, shared.FormatLeaderboardText(board))
}

// handleTap increments the caller's counter
func (h *BotHandler) handleTap(ctx context.Context, message *tgbotapi.Message, u *user.User) error {
	updated, err := h.ratingUseCase.Tap(ctx, u.ID())
	if err != nil {
		return err
	}
	metrics.IncTap()

	logger.Debug().
		Int64("user_id", int64(updated.ID())).
		Int64("taps", updated.Taps()).
		Msg("Tap registered")

	return h.reply(ctx, message, shared.FormatTapText(updated))
}

// handleCancel closes the profile form from any step
func (h *BotHandler) handleCancel(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message

	if _, err := h.registration.Cancel(ctx, sessionKey(message)); err != nil {
		return err
	}
	metrics.IncRegistration("cancelled")

	return h.replyWithKeyboard(ctx, message, shared.CancelledText, shared.CreateMainKeyboard())
}
