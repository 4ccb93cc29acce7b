package handlers

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tap-rating-bot/internal/application/usecases"
	"tap-rating-bot/internal/interfaces/telegram"
	"tap-rating-bot/internal/interfaces/telegram/handlers/shared"
	"tap-rating-bot/internal/logger"
	"tap-rating-bot/internal/metrics"
)

// Messenger sends replies to a chat.
// A recipient that blocked the bot is reported with an apperror.ErrBlocked error.
type Messenger interface {
	SendMessage(chatID int64, text string) error
	SendMessageWithReplyKeyboard(chatID int64, text string, keyboard tgbotapi.ReplyKeyboardMarkup) error
	SendPhoto(chatID int64, photoURL, caption string) error
}

// Bot is the Telegram side of the handler: replies plus the update stream
type Bot interface {
	Messenger
	GetUpdatesChan() tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Options tunes the chat front end
type Options struct {
	// How many users the Рейтинг screen lists
	LeaderboardLimit int
	// IsAdmin reports configured administrators; the stored is_admin flag is honoured as well
	IsAdmin func(telegramID int64) bool
	// Upper bound for handling a single update
	UpdateTimeout time.Duration
}

// BotHandler handles Telegram bot interactions
type BotHandler struct {
	bot           Bot
	userUseCase   *usecases.UserUseCase
	ratingUseCase *usecases.RatingUseCase
	registration  *usecases.RegistrationFlow
	digestUseCase *usecases.DigestUseCase
	dispatcher    telegram.Dispatcher
	options       Options
	inflight      sync.WaitGroup
}

// NewBotHandler creates a new bot handler
func NewBotHandler(
	bot Bot,
	userUseCase *usecases.UserUseCase,
	ratingUseCase *usecases.RatingUseCase,
	registration *usecases.RegistrationFlow,
	digestUseCase *usecases.DigestUseCase,
	options Options,
) *BotHandler {
	if options.LeaderboardLimit <= 0 {
		options.LeaderboardLimit = 10
	}
	if options.IsAdmin == nil {
		options.IsAdmin = func(int64) bool { return false }
	}
	if options.UpdateTimeout <= 0 {
		options.UpdateTimeout = 30 * time.Second
	}

	h := &BotHandler{
		bot:           bot,
		userUseCase:   userUseCase,
		ratingUseCase: ratingUseCase,
		registration:  registration,
		digestUseCase: digestUseCase,
		dispatcher:    telegram.NewDispatcher(),
		options:       options,
	}
	h.registerRoutes()
	return h
}

func (h *BotHandler) registerRoutes() {
	h.dispatcher.RegisterHandler("start", h.handleStart)
	h.dispatcher.RegisterHandler("help", h.handleHelp)
	h.dispatcher.RegisterHandler("register", h.handleRegister)
	h.dispatcher.RegisterHandler("profile", h.handleProfile)
	h.dispatcher.RegisterHandler("settings", h.requireUser(h.handleSettings))
	h.dispatcher.RegisterHandler("digest", h.handleDigest)

	h.dispatcher.RegisterText(shared.ButtonRating, h.requireUser(h.handleRating))
	h.dispatcher.RegisterText(shared.ButtonTap, h.requireUser(h.handleTap))
	h.dispatcher.RegisterText(shared.ButtonSettings, h.requireUser(h.handleSettings))
	h.dispatcher.RegisterText(shared.ButtonCancel, h.handleCancel)

	h.dispatcher.SetFallback(h.handleUnknown)
}

// Start starts the bot and handles updates until ctx is cancelled
func (h *BotHandler) Start(ctx context.Context) error {
	updates := h.bot.GetUpdatesChan()

	logger.Info().Msg("Bot started. Waiting for updates...")

	// In-flight updates are allowed to finish after shutdown begins.
	handlerCtx := context.WithoutCancel(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Bot stopping...")
			h.bot.StopReceivingUpdates()
			h.inflight.Wait()
			return nil
		case update, ok := <-updates:
			if !ok {
				h.inflight.Wait()
				return nil
			}
			h.inflight.Add(1)
			go func() {
				defer h.inflight.Done()
				h.HandleUpdate(handlerCtx, update)
			}()
		}
	}
}

// HandleUpdate processes a single update
func (h *BotHandler) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil {
		return
	}

	start := time.Now()
	defer func() { metrics.ObserveUpdateDuration(time.Since(start).Seconds()) }()

	ctx, cancel := context.WithTimeout(ctx, h.options.UpdateTimeout)
	defer cancel()

	if err := h.handleMessage(ctx, update); err != nil {
		logger.Error().
			Err(err).
			Int64("telegram_id", message.From.ID).
			Str("text", message.Text).
			Msg("Failed to handle update")
		_ = h.reply(ctx, message, shared.InternalErrorText)
	}
}

// handleMessage routes commands and the cancel button first, then lets an open
// profile form consume the message, then falls back to the keyboard buttons.
func (h *BotHandler) handleMessage(ctx context.Context, update tgbotapi.Update) error {
	message := update.Message
	if message.IsCommand() || message.Text == shared.ButtonCancel {
		return h.dispatcher.Dispatch(ctx, update)
	}

	consumed, err := h.continueRegistration(ctx, message)
	if err != nil || consumed {
		return err
	}

	return h.dispatcher.Dispatch(ctx, update)
}
