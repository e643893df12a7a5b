package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/dialog"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/curves"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/logger"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/metrics"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/sheets"
)

// plot fetches the curves of ms and sends them as a chart workbook.
func (b *Bot) plot(ctx context.Context, chatID int64, title string, ms []materials.Material) ([]curves.Curve, bool) {
	if len(ms) == 0 {
		b.reply(chatID, "Nothing to plot.")
		return nil, false
	}
	start := time.Now()

	cs, err := b.curves.Curves(ctx, ms)
	if err != nil {
		metrics.CurveFailures.Inc()
		logger.LogError(b.log, "curve service failed", err, slog.Int64("chat_id", chatID))
		b.reply(chatID, "Could not compute the curves: "+err.Error())
		return nil, false
	}
	data, err := sheets.PlotWorkbook(title, cs)
	if err != nil {
		logger.LogError(b.log, "render plot failed", err, slog.Int64("chat_id", chatID))
		b.reply(chatID, "Could not draw the chart: "+err.Error())
		return nil, false
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("curves_%s.xlsx", time.Now().Format("20060102_150405")),
		Bytes: data,
	})
	doc.Caption = fmt.Sprintf("%s: %d curve(s), stress in MPa", title, len(cs))
	b.send(doc)

	metrics.PlotsRendered.Inc()
	logger.LogOperation(b.log, "plot_rendered",
		slog.Int64("chat_id", chatID), slog.Int("materials", len(ms)), slog.Duration("duration", time.Since(start)))
	return cs, true
}

func (b *Bot) plotAll(ctx context.Context, chatID int64) {
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return
	}
	if col.Len() == 0 {
		b.reply(chatID, noMaterials)
		return
	}
	b.plot(ctx, chatID, "All materials", col.Items())
}

func (b *Bot) plotItem(ctx context.Context, chatID, id int64) {
	m, err := b.materials.GetByID(ctx, chatID, id)
	if err != nil {
		logger.LogError(b.log, "get material failed", err, slog.Int64("chat_id", chatID), slog.Int64("id", id))
		b.reply(chatID, "Could not load the material.")
		return
	}
	if m == nil {
		b.reply(chatID, "This material no longer exists.")
		return
	}
	cs, ok := b.plot(ctx, chatID, m.Name, []materials.Material{*m})
	if ok && len(cs) == 1 {
		b.reply(chatID, materials.Snippet(*m, cs[0].Attributes))
	}
}

func (b *Bot) startSelect(ctx context.Context, chatID int64) {
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return
	}
	if col.Len() == 0 {
		b.reply(chatID, noMaterials)
		return
	}
	b.setState(ctx, chatID, dialog.StatePlotSelect, dialog.Payload{"selected": []int64{}})
	b.replyWith(chatID, "Tick the materials to plot:", selectKeyboard(col.Items(), nil))
}

func selectedSet(p dialog.Payload) map[int64]bool {
	out := map[int64]bool{}
	for _, id := range dialog.GetInt64s(p, "selected") {
		out[id] = true
	}
	return out
}

func (b *Bot) toggleSelect(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, id int64) string {
	if st.State != dialog.StatePlotSelect {
		return stepExpired
	}
	chatID := cb.Message.Chat.ID
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return ""
	}
	list := col.Items()
	sel := selectedSet(st.Payload)
	if sel[id] {
		delete(sel, id)
	} else {
		sel[id] = true
	}
	ids := make([]int64, 0, len(sel))
	for _, m := range list {
		if sel[m.ID] {
			ids = append(ids, m.ID)
		}
	}
	b.setState(ctx, chatID, dialog.StatePlotSelect, dialog.Payload{"selected": ids})
	b.send(tgbotapi.NewEditMessageReplyMarkup(chatID, cb.Message.MessageID, selectKeyboard(list, sel)))
	return ""
}

func (b *Bot) plotSelected(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) string {
	if st.State != dialog.StatePlotSelect {
		return stepExpired
	}
	chatID := cb.Message.Chat.ID
	ids := dialog.GetInt64s(st.Payload, "selected")
	if len(ids) == 0 {
		return "Tick at least one material"
	}
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return ""
	}
	picked := col.Select(ids)
	if len(picked) == 0 {
		return "The selected materials no longer exist"
	}
	b.resetState(ctx, chatID)
	b.clearMarkup(cb)
	b.plot(ctx, chatID, "Selected materials", picked)
	return ""
}
