package telegram

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"interview-chatter/internal/chat"
	"interview-chatter/internal/interview"
)

const (
	copyAction     = "copy"
	downloadAction = "download"

	// Telegram rejects text messages longer than this.
	maxMessageRunes = 4096
)

// handleIncomingMessage routes a chat message. For accepted input it
// returns the turn's outcome channel, nil otherwise.
func (b *Bot) handleIncomingMessage(ctx context.Context, msg *tgbotapi.Message) <-chan chat.Outcome {
	chatID := msg.Chat.ID
	log := b.log.With().Int64("chat_id", chatID).Logger()
	if msg.From != nil {
		log = log.With().Str("username", msg.From.UserName).Logger()
	}

	if msg.IsCommand() {
		log.Info().Str("command", msg.Command()).Msg("incoming command")
		b.handleCommand(msg)
		return nil
	}

	log.Info().Str("text", msg.Text).Msg("incoming message")
	done, err := b.sessions.Get(chatID).Start(ctx, msg.Text)
	switch {
	case errors.Is(err, chat.ErrBusy):
		log.Debug().Msg("turn in progress, message ignored")
		return nil
	case errors.Is(err, chat.ErrEmptyInput):
		return nil
	case err != nil:
		log.Error().Err(err).Msg("failed to start turn")
		return nil
	}

	b.typing(chatID)
	typing := make(chan struct{})
	go b.keepTyping(ctx, chatID, typing)
	out := make(chan chat.Outcome, 1)
	go func() {
		o := <-done
		close(typing)
		out <- o
		close(out)
	}()
	return out
}

func (b *Bot) handleCommand(msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start", "help":
		b.sendMessage(msg.Chat.ID, chat.Greeting())
	default:
		b.sendMessage(msg.Chat.ID, "Unknown command. "+chat.Greeting())
	}
}

func (b *Bot) typing(chatID int64) {
	if _, err := b.s.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)); err != nil {
		b.log.Debug().Err(err).Int64("chat_id", chatID).Msg("failed to send chat action")
	}
}

// keepTyping refreshes the typing indicator until stop is closed.
func (b *Bot) keepTyping(ctx context.Context, chatID int64, stop <-chan struct{}) {
	t := time.NewTicker(typingRefresh)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ctx.Done():
			return
		case <-t.C:
			b.typing(chatID)
		}
	}
}

// deliver mirrors a transcript entry into the chat. The user's own
// messages are already there.
func (b *Bot) deliver(chatID int64, m chat.Message) {
	if m.Role == chat.RoleUser {
		return
	}
	out := tgbotapi.NewMessage(chatID, b.escape(m.Text))
	out.ParseMode = b.parseMode
	if m.Interview != nil {
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("📋 Copy JSON", copyAction+":"+m.ID),
				tgbotapi.NewInlineKeyboardButtonData("💾 Download", downloadAction+":"+m.ID),
			),
		)
	}
	if _, err := b.s.Send(out); err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Str("message_id", m.ID).Msg("failed to deliver message")
	}
}

func (b *Bot) handleCallback(cb *tgbotapi.CallbackQuery) {
	if cb.Message == nil || cb.Message.Chat == nil {
		b.answerCallback(cb.ID, "")
		return
	}
	chatID := cb.Message.Chat.ID
	action, id, _ := strings.Cut(cb.Data, ":")

	payload, ok := b.findInterview(chatID, id)
	if !ok {
		b.answerCallback(cb.ID, "Interview is no longer available")
		return
	}

	var err error
	switch action {
	case copyAction:
		err = b.sendCopy(chatID, payload)
	case downloadAction:
		err = b.sendExport(chatID, payload, "")
	default:
		b.answerCallback(cb.ID, "")
		return
	}
	if err != nil {
		b.log.Error().Err(err).Int64("chat_id", chatID).Str("action", action).Msg("failed to share interview")
		b.answerCallback(cb.ID, "Something went wrong, please try again")
		return
	}
	b.answerCallback(cb.ID, "")
}

func (b *Bot) findInterview(chatID int64, messageID string) (*interview.Payload, bool) {
	ctrl, ok := b.sessions.Lookup(chatID)
	if !ok {
		return nil, false
	}
	m, ok := ctrl.Transcript().Find(messageID)
	if !ok || m.Interview == nil {
		return nil, false
	}
	return m.Interview, true
}

// sendCopy posts the payload as a preformatted block, falling back to a
// file when it does not fit into one message.
func (b *Bot) sendCopy(chatID int64, p *interview.Payload) error {
	data, err := p.FormatJSON()
	if err != nil {
		return err
	}
	text := "<pre>" + tgbotapi.EscapeText(tgbotapi.ModeHTML, string(data)) + "</pre>"
	if utf8.RuneCountInString(text) > maxMessageRunes {
		return b.sendExport(chatID, p, "Transcript is too long for a message, sending it as a file.")
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	_, err = b.s.Send(msg)
	return err
}

func (b *Bot) sendExport(chatID int64, p *interview.Payload, caption string) error {
	name, data, err := p.Export()
	if err != nil {
		return err
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: name, Bytes: data})
	doc.Caption = caption
	_, err = b.s.Send(doc)
	return err
}

func (b *Bot) answerCallback(id, text string) {
	if _, err := b.s.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.log.Debug().Err(err).Msg("failed to answer callback")
	}
}
