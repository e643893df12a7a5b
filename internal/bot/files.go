package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/dialog"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/logger"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/sheets"
)

// maxReportedRows bounds the per-row problems listed after an import.
const maxReportedRows = 10

func (b *Bot) exportMaterials(ctx context.Context, chatID int64) {
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return
	}
	if col.Len() == 0 {
		b.reply(chatID, noMaterials)
		return
	}
	data, err := sheets.ExportMaterials(col.Items())
	if err != nil {
		logger.LogError(b.log, "export materials failed", err, slog.Int64("chat_id", chatID))
		b.reply(chatID, "Could not build the workbook.")
		return
	}
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  fmt.Sprintf("materials_%s.xlsx", time.Now().Format("20060102_150405")),
		Bytes: data,
	})
	doc.Caption = "Your materials. Cells may hold expressions such as 36*ksi; upload the file back with Import."
	b.send(doc)
}

func (b *Bot) startImport(ctx context.Context, chatID int64) {
	b.setState(ctx, chatID, dialog.StateImportFile, dialog.Payload{})
	b.replyWith(chatID,
		"Send an .xlsx workbook with columns name, kind, color and one column per parameter. "+
			"Imported materials are appended to your list.",
		navKeyboard(false, true))
}

func (b *Bot) handleDocument(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	st := b.getState(ctx, chatID)
	if st.State != dialog.StateImportFile {
		b.reply(chatID, "To import materials press Import first.")
		return
	}
	if !strings.EqualFold(path.Ext(msg.Document.FileName), ".xlsx") {
		b.reply(chatID, "Only .xlsx workbooks can be imported.")
		return
	}

	data, err := b.downloadTelegramFile(ctx, msg.Document.FileID)
	if err != nil {
		logger.LogError(b.log, "download import failed", err, slog.Int64("chat_id", chatID))
		b.reply(chatID, "Could not download the file.")
		return
	}
	parsed, rowErrs, err := sheets.ImportMaterials(data, b.eval.Table())
	if err != nil {
		b.reply(chatID, "Could not read the workbook: "+err.Error())
		return
	}

	var added []string
	for _, m := range parsed {
		m.ChatID = chatID
		saved, err := b.materials.Create(ctx, m)
		if errors.Is(err, materials.ErrDuplicateName) {
			rowErrs = append(rowErrs, sheets.RowError{Row: -1, Err: err})
			continue
		}
		if err != nil {
			logger.LogError(b.log, "save imported material failed", err, slog.Int64("chat_id", chatID))
			b.reply(chatID, "Could not save the imported materials, try again later.")
			return
		}
		added = append(added, saved.Name)
	}
	b.resetState(ctx, chatID)
	logger.LogOperation(b.log, "materials_imported",
		slog.Int64("chat_id", chatID), slog.Int("added", len(added)), slog.Int("rejected", len(rowErrs)))
	b.reply(chatID, importReport(added, rowErrs))
}

func importReport(added []string, rowErrs []sheets.RowError) string {
	var sb strings.Builder
	if len(added) > 0 {
		fmt.Fprintf(&sb, "Imported %d: %s", len(added), strings.Join(added, ", "))
	} else {
		sb.WriteString("Nothing was imported.")
	}
	for i, e := range rowErrs {
		if i == maxReportedRows {
			fmt.Fprintf(&sb, "\n…and %d more", len(rowErrs)-maxReportedRows)
			break
		}
		if e.Row < 0 {
			fmt.Fprintf(&sb, "\n⚠️ %v", e.Err)
			continue
		}
		fmt.Fprintf(&sb, "\n⚠️ %s", e.Error())
	}
	return sb.String()
}
