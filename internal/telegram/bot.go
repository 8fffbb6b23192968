package telegram

import (
	"context"
	"fmt"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"interview-chatter/internal/chat"
	"interview-chatter/internal/generator"
	"interview-chatter/internal/history"
	"interview-chatter/internal/logging"
)

// typingRefresh keeps the chat action alive; Telegram drops it after ~5s.
const typingRefresh = 4 * time.Second

type Bot struct {
	api       *tgbotapi.BotAPI
	s         sender
	parseMode string
	sessions  *history.Manager
	log       *zerolog.Logger
}

// New connects to the Bot API. opts are applied to every chat's controller.
func New(botToken, parseMode string, gen generator.Client, logger *zerolog.Logger, opts ...chat.Option) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot api: %w", err)
	}
	b := newBot(botAPISender{api: api}, parseMode, gen, logger, opts...)
	b.api = api
	return b, nil
}

func newBot(s sender, parseMode string, gen generator.Client, logger *zerolog.Logger, opts ...chat.Option) *Bot {
	if logger == nil {
		logger = logging.Nop()
	}
	b := &Bot{s: s, parseMode: parseMode, log: logger}
	b.sessions = history.NewManager(func(chatID int64) *chat.Controller {
		l := b.log.With().Int64("chat_id", chatID).Logger()
		base := []chat.Option{
			chat.WithLogger(&l),
			chat.WithListener(func(m chat.Message) { b.deliver(chatID, m) }),
		}
		return chat.NewController(gen, append(base, opts...)...)
	})
	return b
}

// Sessions exposes the per-chat conversations, e.g. for reporting.
func (b *Bot) Sessions() *history.Manager { return b.sessions }

// Start long-polls for updates until ctx is done. Turns started here keep
// ctx, so cancelling it also stops their polling.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.log.Info().Str("username", b.api.Self.UserName).Msg("telegram bot started")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.log.Info().Msg("telegram bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	if update.Message != nil {
		b.handleIncomingMessage(ctx, update.Message)
		return
	}
	if update.CallbackQuery != nil {
		b.handleCallback(update.CallbackQuery)
	}
}

// SendText posts a plain notice to chatID, escaped for the configured
// parse mode.
func (b *Bot) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, b.escape(text))
	msg.ParseMode = b.parseMode
	if _, err := b.s.Send(msg); err != nil {
		return fmt.Errorf("failed to send message to %d: %w", chatID, err)
	}
	return nil
}

func (b *Bot) sendMessage(chatID int64, text string) {
	if err := b.SendText(chatID, text); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to send message")
	}
}

func (b *Bot) escape(text string) string {
	switch b.parseMode {
	case tgbotapi.ModeHTML, tgbotapi.ModeMarkdown, tgbotapi.ModeMarkdownV2:
		return tgbotapi.EscapeText(b.parseMode, text)
	}
	return text
}
