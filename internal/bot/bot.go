package bot

import (
	"context"
	"log/slog"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/dialog"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/curves"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/expr"
)

// TelegramAPI is the part of *tgbotapi.BotAPI the bot uses.
type TelegramAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	GetFileDirectURL(fileID string) (string, error)
}

type StateStore interface {
	Get(ctx context.Context, chatID int64) (*dialog.Item, error)
	Set(ctx context.Context, chatID int64, state dialog.State, payload dialog.Payload) error
	Reset(ctx context.Context, chatID int64) error
}

type MaterialStore interface {
	Create(ctx context.Context, m materials.Material) (*materials.Material, error)
	Collection(ctx context.Context, chatID int64) (*materials.Collection, error)
	GetByID(ctx context.Context, chatID, id int64) (*materials.Material, error)
	Delete(ctx context.Context, chatID, id int64) error
	DeleteAll(ctx context.Context, chatID int64) error
	Replace(ctx context.Context, chatID int64, ms []materials.Material) ([]materials.Material, error)
}

type CurveSource interface {
	Curves(ctx context.Context, ms []materials.Material) ([]curves.Curve, error)
}

type Bot struct {
	api       TelegramAPI
	log       *slog.Logger
	states    StateStore
	materials MaterialStore
	curves    CurveSource
	eval      *expr.Evaluator
	http      *http.Client
}

func New(api TelegramAPI, log *slog.Logger, statesRepo StateStore,
	materialsRepo MaterialStore, curveSource CurveSource, ev *expr.Evaluator) *Bot {

	return &Bot{
		api: api, log: log, states: statesRepo,
		materials: materialsRepo, curves: curveSource,
		eval: ev, http: http.DefaultClient,
	}
}

// Run consumes updates until ctx is done. Updates are handled one at a time.
func (b *Bot) Run(ctx context.Context, timeoutSec int) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeoutSec
	updates := b.api.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handleUpdate(ctx, upd)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, upd tgbotapi.Update) {
	if upd.Message != nil {
		b.onMessage(ctx, upd)
	} else if upd.CallbackQuery != nil {
		b.onCallback(ctx, upd)
	}
}

func (b *Bot) onMessage(ctx context.Context, upd tgbotapi.Update) {
	msg := upd.Message

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}
	if msg.Document != nil {
		b.handleDocument(ctx, msg)
		return
	}
	b.handleStateMessage(ctx, msg)
}

func (b *Bot) onCallback(ctx context.Context, upd tgbotapi.Update) {
	if upd.CallbackQuery.Message == nil {
		return
	}
	b.handleCallback(ctx, upd.CallbackQuery)
}
