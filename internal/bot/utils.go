package bot

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/dialog"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/logger"
)

// maxUpload caps documents accepted for import.
const maxUpload = 5 << 20

func (b *Bot) answerCallback(cb *tgbotapi.CallbackQuery, text string, alert bool) {
	resp := tgbotapi.NewCallback(cb.ID, text)
	resp.ShowAlert = alert
	if _, err := b.api.Request(resp); err != nil {
		logger.LogError(b.log, "answer callback failed", err)
	}
}

func (b *Bot) send(msg tgbotapi.Chattable) {
	if _, err := b.api.Send(msg); err != nil {
		logger.LogError(b.log, "send failed", err)
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyWith(chatID int64, text string, markup any) {
	m := tgbotapi.NewMessage(chatID, text)
	m.ReplyMarkup = markup
	b.send(m)
}

func (b *Bot) editText(chatID int64, messageID int, text string, kb tgbotapi.InlineKeyboardMarkup) {
	b.send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, text, kb))
}

func (b *Bot) editTextAndClear(chatID int64, messageID int, text string) {
	b.editText(chatID, messageID, text,
		tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}})
}

// setState stores the dialog and logs failures; the user sees the next prompt
// either way and a lost state only costs a /cancel.
func (b *Bot) setState(ctx context.Context, chatID int64, st dialog.State, p dialog.Payload) {
	if err := b.states.Set(ctx, chatID, st, p); err != nil {
		logger.LogError(b.log, "save dialog state failed", err,
			slog.Int64("chat_id", chatID), slog.String("state", string(st)))
	}
}

func (b *Bot) resetState(ctx context.Context, chatID int64) {
	if err := b.states.Reset(ctx, chatID); err != nil {
		logger.LogError(b.log, "reset dialog state failed", err, slog.Int64("chat_id", chatID))
	}
}

func (b *Bot) getState(ctx context.Context, chatID int64) *dialog.Item {
	st, err := b.states.Get(ctx, chatID)
	if err != nil || st == nil {
		logger.LogError(b.log, "load dialog state failed", err, slog.Int64("chat_id", chatID))
		return &dialog.Item{ChatID: chatID, State: dialog.StateIdle, Payload: dialog.Payload{}}
	}
	if st.Payload == nil {
		st.Payload = dialog.Payload{}
	}
	return st
}

// downloadTelegramFile fetches a document by FileID through the Bot API.
func (b *Bot) downloadTelegramFile(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("get file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("telegram returned status %s", resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if len(data) > maxUpload {
		return nil, fmt.Errorf("file larger than %d bytes", maxUpload)
	}
	return data, nil
}
