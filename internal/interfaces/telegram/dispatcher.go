package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"tap-rating-bot/internal/metrics"
)

// HandlerFunc is a function that handles a Telegram update
type HandlerFunc func(ctx context.Context, update tgbotapi.Update) error

// Dispatcher handles routing of Telegram updates to appropriate handlers
type Dispatcher interface {
	// RegisterHandler registers a handler for a specific command
	RegisterHandler(command string, handler HandlerFunc)
	// RegisterText registers a handler for an exact message text, e.g. a keyboard button
	RegisterText(text string, handler HandlerFunc)
	// SetFallback registers the handler for messages nothing else matched
	SetFallback(handler HandlerFunc)
	// Dispatch dispatches an update to the appropriate handler
	Dispatch(ctx context.Context, update tgbotapi.Update) error
}

// NewDispatcher creates a new dispatcher instance
func NewDispatcher() Dispatcher {
	return &defaultDispatcher{
		handlers: make(map[string]HandlerFunc),
		texts:    make(map[string]HandlerFunc),
	}
}

type defaultDispatcher struct {
	handlers map[string]HandlerFunc
	texts    map[string]HandlerFunc
	fallback HandlerFunc
}

func (d *defaultDispatcher) RegisterHandler(command string, handler HandlerFunc) {
	d.handlers[command] = handler
}

func (d *defaultDispatcher) RegisterText(text string, handler HandlerFunc) {
	d.texts[text] = handler
}

func (d *defaultDispatcher) SetFallback(handler HandlerFunc) {
	d.fallback = handler
}

func (d *defaultDispatcher) Dispatch(ctx context.Context, update tgbotapi.Update) error {
	if update.Message == nil {
		return nil
	}

	if command := update.Message.Command(); command != "" {
		if handler, exists := d.handlers[command]; exists {
			metrics.IncUpdate("/" + command)
			return handler(ctx, update)
		}
	} else if handler, exists := d.texts[update.Message.Text]; exists {
		metrics.IncUpdate(update.Message.Text)
		return handler(ctx, update)
	}

	if d.fallback == nil {
		return nil
	}
	metrics.IncUpdate("fallback")
	return d.fallback(ctx, update)
}
