// Package telegram implements the chat transport over the Telegram Bot API.
//
// Updates are consumed via long polling, translated into domain inbound
// events and delivered over a channel in arrival order. Replies go out as
// plain text messages, optionally carrying a one-row inline keyboard.
package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/dkovalev/coachbot/internal/dialog"
	"github.com/dkovalev/coachbot/internal/models"
)

// DefaultPollTimeout is the long-poll timeout in seconds.
const DefaultPollTimeout = 30

const inboundBuffer = 64

// Opts holds configuration assembled from Options.
type Opts struct {
	Token       string
	PollTimeout int
	Debug       bool
	Endpoint    string
}

// Option configures the Telegram bot.
type Option func(*Opts)

// WithToken sets the bot access token.
func WithToken(token string) Option {
	return func(o *Opts) { o.Token = token }
}

// WithPollTimeout sets the long-poll timeout in seconds.
func WithPollTimeout(seconds int) Option {
	return func(o *Opts) { o.PollTimeout = seconds }
}

// WithDebug enables the underlying client's request logging.
func WithDebug(debug bool) Option {
	return func(o *Opts) { o.Debug = debug }
}

// WithEndpoint overrides the Telegram API endpoint (for tests).
func WithEndpoint(endpoint string) Option {
	return func(o *Opts) { o.Endpoint = endpoint }
}

// Bot is the Telegram transport.
type Bot struct {
	api         *tgbotapi.BotAPI
	inbound     chan models.InboundMessage
	pollTimeout int
}

// Compile-time check that Bot satisfies the dialog controller's Messenger.
var _ dialog.Messenger = (*Bot)(nil)

// NewBot authorizes against the Telegram API and prepares the transport.
func NewBot(opts ...Option) (*Bot, error) {
	cfg := Opts{PollTimeout: DefaultPollTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.Token == "" {
		return nil, fmt.Errorf("bot token not set")
	}

	var api *tgbotapi.BotAPI
	var err error
	if cfg.Endpoint != "" {
		api, err = tgbotapi.NewBotAPIWithAPIEndpoint(cfg.Token, cfg.Endpoint)
	} else {
		api, err = tgbotapi.NewBotAPI(cfg.Token)
	}
	if err != nil {
		return nil, fmt.Errorf("telegram authorization failed: %w", err)
	}
	api.Debug = cfg.Debug

	slog.Info("Telegram bot authorized", "username", api.Self.UserName)
	return &Bot{
		api:         api,
		inbound:     make(chan models.InboundMessage, inboundBuffer),
		pollTimeout: cfg.PollTimeout,
	}, nil
}

// Start begins long polling. Updates are translated and delivered on the
// Inbound channel until ctx is canceled, at which point the channel closes.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.pollTimeout
	updates := b.api.GetUpdatesChan(u)
	slog.Debug("Telegram update polling started", "poll_timeout", b.pollTimeout)

	go func() {
		defer close(b.inbound)
		for {
			select {
			case <-ctx.Done():
				b.api.StopReceivingUpdates()
				return
			case update, ok := <-updates:
				if !ok {
					return
				}
				if update.CallbackQuery != nil {
					// Always answer so the client stops showing a spinner,
					// even when the callback is not one we act on.
					b.answerCallback(update.CallbackQuery.ID)
				}
				msg, ok := TranslateUpdate(update)
				if !ok {
					slog.Debug("Telegram dropping unsupported update", "update_id", update.UpdateID)
					continue
				}
				select {
				case b.inbound <- msg:
				case <-ctx.Done():
					b.api.StopReceivingUpdates()
					return
				}
			}
		}
	}()
}

// Inbound returns the channel of translated inbound events.
func (b *Bot) Inbound() <-chan models.InboundMessage {
	return b.inbound
}

// Stop halts update polling.
func (b *Bot) Stop() {
	b.api.StopReceivingUpdates()
}

// TranslateUpdate converts a raw Telegram update into a domain inbound
// message. The second return is false for update kinds the bot ignores.
func TranslateUpdate(update tgbotapi.Update) (models.InboundMessage, bool) {
	switch {
	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		if cq.Data != models.ActionStartOrder || cq.Message == nil {
			return models.InboundMessage{}, false
		}
		return models.InboundMessage{
			ID:     "cb:" + cq.ID,
			ChatID: cq.Message.Chat.ID,
			Event:  models.EventStartOrder,
		}, true

	case update.Message != nil && update.Message.Text != "":
		m := update.Message
		id := fmt.Sprintf("msg:%d:%d", m.Chat.ID, m.MessageID)
		if m.IsCommand() {
			if m.Command() == "start" {
				return models.InboundMessage{ID: id, ChatID: m.Chat.ID, Event: models.EventStartCommand}, true
			}
			return models.InboundMessage{}, false
		}
		return models.InboundMessage{ID: id, ChatID: m.Chat.ID, Text: m.Text, Event: models.EventText}, true
	}
	return models.InboundMessage{}, false
}

// SendMessage sends a plain text reply.
func (b *Bot) SendMessage(ctx context.Context, chatID int64, text string) error {
	return b.send(ctx, tgbotapi.NewMessage(chatID, text))
}

// SendMessageWithButtons sends a text reply with a one-row inline keyboard.
func (b *Bot) SendMessageWithButtons(ctx context.Context, chatID int64, text string, buttons []models.Button) error {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(buttons) > 0 {
		row := make([]tgbotapi.InlineKeyboardButton, 0, len(buttons))
		for _, btn := range buttons {
			row = append(row, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Action))
		}
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(row)
	}
	return b.send(ctx, msg)
}

func (b *Bot) send(ctx context.Context, msg tgbotapi.MessageConfig) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := b.api.Send(msg); err != nil {
		slog.Error("Telegram send failed", "error", err, "chatID", msg.ChatID)
		return fmt.Errorf("telegram send failed: %w", err)
	}
	slog.Debug("Telegram message sent", "chatID", msg.ChatID, "length", len(msg.Text))
	return nil
}

func (b *Bot) answerCallback(id string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(id, "")); err != nil {
		slog.Warn("Telegram callback answer failed", "error", err, "callback_id", id)
	}
}
