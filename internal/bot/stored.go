package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/dialog"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/logger"
)

const noMaterials = "Your list is empty. Create a material or load the typical ones."

// collection loads the chat's list and reports failures to the user.
func (b *Bot) collection(ctx context.Context, chatID int64) (*materials.Collection, bool) {
	col, err := b.materials.Collection(ctx, chatID)
	if err != nil {
		logger.LogError(b.log, "list materials failed", err, slog.Int64("chat_id", chatID))
		b.reply(chatID, "Could not read your materials, try again later.")
		return nil, false
	}
	return col, true
}

func (b *Bot) showList(ctx context.Context, chatID int64) {
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return
	}
	b.showCollection(ctx, chatID, col)
}

func (b *Bot) showCollection(ctx context.Context, chatID int64, col *materials.Collection) {
	if col.Len() == 0 {
		b.resetState(ctx, chatID)
		b.reply(chatID, noMaterials)
		return
	}
	b.setState(ctx, chatID, dialog.StateMatList, dialog.Payload{})
	b.replyWith(chatID, fmt.Sprintf("Materials (%d):", col.Len()), listKeyboard(col.Items()))
}

func (b *Bot) showItem(ctx context.Context, cb *tgbotapi.CallbackQuery, id int64) string {
	chatID := cb.Message.Chat.ID
	m, err := b.materials.GetByID(ctx, chatID, id)
	if err != nil {
		logger.LogError(b.log, "get material failed", err, slog.Int64("chat_id", chatID), slog.Int64("id", id))
		return "Could not load the material"
	}
	if m == nil {
		return "This material no longer exists"
	}
	b.setState(ctx, chatID, dialog.StateMatItem, dialog.Payload{"mat_id": id})
	text := materials.Summary(*m) + "\n\n" + materials.Snippet(*m, nil)
	b.editText(chatID, cb.Message.MessageID, text, itemKeyboard(id))
	return ""
}

func (b *Bot) deleteItem(ctx context.Context, cb *tgbotapi.CallbackQuery, id int64) string {
	chatID := cb.Message.Chat.ID
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return ""
	}
	m, ok := col.ByID(id)
	if !ok {
		b.clearMarkup(cb)
		return "This material no longer exists"
	}
	if err := b.materials.Delete(ctx, chatID, id); err != nil {
		logger.LogError(b.log, "delete material failed", err, slog.Int64("chat_id", chatID), slog.Int64("id", id))
		return "Could not delete the material"
	}
	col.RemoveID(id)
	logger.LogOperation(b.log, "material_deleted", slog.Int64("chat_id", chatID), slog.Int64("id", id))
	b.editTextAndClear(chatID, cb.Message.MessageID, fmt.Sprintf("Deleted %s.", m.Name))
	b.showCollection(ctx, chatID, col)
	return "Deleted"
}

func (b *Bot) askErase(ctx context.Context, chatID int64) {
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return
	}
	if col.Len() == 0 {
		b.reply(chatID, noMaterials)
		return
	}
	b.setState(ctx, chatID, dialog.StateEraseAsk, dialog.Payload{})
	b.replyWith(chatID, fmt.Sprintf("Erase all %d materials?", col.Len()), eraseKeyboard())
}

func (b *Bot) eraseAll(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) string {
	if st.State != dialog.StateEraseAsk {
		return stepExpired
	}
	chatID := cb.Message.Chat.ID
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return ""
	}
	if err := b.materials.DeleteAll(ctx, chatID); err != nil {
		logger.LogError(b.log, "erase materials failed", err, slog.Int64("chat_id", chatID))
		return "Could not erase the list"
	}
	erased := col.Len()
	col.Clear()
	b.resetState(ctx, chatID)
	b.editTextAndClear(chatID, cb.Message.MessageID, "All materials erased.")
	logger.LogOperation(b.log, "materials_erased", slog.Int64("chat_id", chatID), slog.Int("count", erased))
	return "Erased"
}

func (b *Bot) loadTypical(ctx context.Context, chatID int64) {
	typical, err := materials.Typical(b.eval.Table())
	if err != nil {
		logger.LogError(b.log, "build typical materials failed", err)
		b.reply(chatID, "Could not build the typical materials.")
		return
	}
	saved, err := b.materials.Replace(ctx, chatID, typical)
	if err != nil {
		logger.LogError(b.log, "store typical materials failed", err, slog.Int64("chat_id", chatID))
		b.reply(chatID, "Could not store the typical materials, try again later.")
		return
	}
	col, err := materials.NewCollection(saved...)
	if err != nil {
		logger.LogError(b.log, "typical materials clash", err, slog.Int64("chat_id", chatID))
		b.reply(chatID, "Could not store the typical materials, try again later.")
		return
	}
	b.resetState(ctx, chatID)
	b.reply(chatID, "Loaded: "+strings.Join(col.Names(), ", "))
}
