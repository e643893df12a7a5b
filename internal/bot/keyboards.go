package bot

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/expr"
)

// Reply keyboard labels.
const (
	btnNewMaterial = "➕ New material"
	btnMaterials   = "📋 Materials"
	btnPlotAll     = "📈 Plot all"
	btnPlotSelect  = "☑️ Plot selection"
	btnTypical     = "⭐ Load typical"
	btnEraseAll    = "🗑 Erase all"
	btnExport      = "📤 Export"
	btnImport      = "📥 Import"
	btnUnits       = "📐 Units"
)

// palette offered at the colour step, matplotlib's default cycle plus black.
var palette = []struct{ Name, Hex string }{
	{"black", "#000000"},
	{"blue", "#1f77b4"},
	{"orange", "#ff7f0e"},
	{"green", "#2ca02c"},
	{"red", "#d62728"},
	{"purple", "#9467bd"},
}

func mainReplyKeyboard() tgbotapi.ReplyKeyboardMarkup {
	return tgbotapi.ReplyKeyboardMarkup{
		ResizeKeyboard: true,
		Keyboard: [][]tgbotapi.KeyboardButton{
			{tgbotapi.NewKeyboardButton(btnNewMaterial), tgbotapi.NewKeyboardButton(btnMaterials)},
			{tgbotapi.NewKeyboardButton(btnPlotAll), tgbotapi.NewKeyboardButton(btnPlotSelect)},
			{tgbotapi.NewKeyboardButton(btnTypical), tgbotapi.NewKeyboardButton(btnEraseAll)},
			{tgbotapi.NewKeyboardButton(btnExport), tgbotapi.NewKeyboardButton(btnImport)},
			{tgbotapi.NewKeyboardButton(btnUnits)},
		},
	}
}

func navKeyboard(back bool, cancel bool) tgbotapi.InlineKeyboardMarkup {
	row := []tgbotapi.InlineKeyboardButton{}
	if back {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "nav:back"))
	}
	if cancel {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("✖️ Cancel", "nav:cancel"))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row)
}

func kindKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, k := range materials.Kinds() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(k.Title, "kind:"+string(k.Kind)),
		))
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func paramKeyboard(p materials.ParamSpec) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Use default ("+expr.Format(p.Default)+")", "par:def"),
			tgbotapi.NewInlineKeyboardButtonData("Leave unset", "par:skip"),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func colorKeyboard() tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, c := range palette {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(c.Name, "col:"+strings.TrimPrefix(c.Hex, "#")))
		if len(row) == 3 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, navKeyboard(true, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func confirmKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("💾 Save", "mat:save"),
			tgbotapi.NewInlineKeyboardButtonData("📈 Plot", "mat:plot"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✏️ Edit parameters", "mat:edit"),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func listKeyboard(ms []materials.Material) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range ms {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(m.Name, fmt.Sprintf("item:%d", m.ID)),
		))
	}
	rows = append(rows, navKeyboard(false, true).InlineKeyboard[0])
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func itemKeyboard(id int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("📈 Plot", fmt.Sprintf("item:plot:%d", id)),
			tgbotapi.NewInlineKeyboardButtonData("🗑 Delete", fmt.Sprintf("item:del:%d", id)),
		),
		navKeyboard(true, true).InlineKeyboard[0],
	)
}

func selectKeyboard(ms []materials.Material, selected map[int64]bool) tgbotapi.InlineKeyboardMarkup {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, m := range ms {
		mark := "⬜️ "
		if selected[m.ID] {
			mark = "✅ "
		}
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(mark+m.Name, fmt.Sprintf("sel:%d", m.ID)),
		))
	}
	rows = append(rows,
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonData("📈 Plot selected", "sel:plot")),
		navKeyboard(false, true).InlineKeyboard[0],
	)
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func eraseKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Yes, erase everything", "erase:yes"),
		),
		navKeyboard(false, true).InlineKeyboard[0],
	)
}
