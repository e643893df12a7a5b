package bot

import (
	"context"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/dialog"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
)

const helpText = `Commands:
/start — show the menu
/new — create a material
/list — stored materials
/plot — plot every stored material
/typical — replace the list with typical materials
/export — download the list as .xlsx
/import — upload a list from .xlsx
/eval <expression> — evaluate, e.g. /eval 240*kgf/cm^2
/units — supported unit symbols
/cancel — abort the current step

Any other text is evaluated as an expression. Results are in N, mm and MPa.`

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	switch msg.Command() {
	case "start":
		b.resetState(ctx, chatID)
		b.replyWith(chatID,
			"Hi! Build stress–strain materials here and get their curves as Excel charts.\n"+
				"Type an expression such as 36*ksi at any time to convert it.",
			mainReplyKeyboard())
	case "help":
		b.reply(chatID, helpText)
	case "cancel":
		b.resetState(ctx, chatID)
		b.replyWith(chatID, "Cancelled.", mainReplyKeyboard())
	case "units":
		b.reply(chatID, unitsText(b.eval.Table()))
	case "eval":
		args := strings.TrimSpace(msg.CommandArguments())
		if args == "" {
			b.reply(chatID, "Usage: /eval <expression>, e.g. /eval 1.25*60*ksi")
			return
		}
		b.calculate(chatID, args)
	case "new":
		b.startWizard(ctx, chatID)
	case "list":
		b.showList(ctx, chatID)
	case "plot":
		b.plotAll(ctx, chatID)
	case "typical":
		b.loadTypical(ctx, chatID)
	case "export":
		b.exportMaterials(ctx, chatID)
	case "import":
		b.startImport(ctx, chatID)
	default:
		b.reply(chatID, "Unknown command. Try /help")
	}
}

func (b *Bot) handleStateMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)

	// Reply keyboard buttons work from any state.
	switch text {
	case btnNewMaterial:
		b.startWizard(ctx, chatID)
		return
	case btnMaterials:
		b.showList(ctx, chatID)
		return
	case btnPlotAll:
		b.plotAll(ctx, chatID)
		return
	case btnPlotSelect:
		b.startSelect(ctx, chatID)
		return
	case btnTypical:
		b.loadTypical(ctx, chatID)
		return
	case btnEraseAll:
		b.askErase(ctx, chatID)
		return
	case btnExport:
		b.exportMaterials(ctx, chatID)
		return
	case btnImport:
		b.startImport(ctx, chatID)
		return
	case btnUnits:
		b.reply(chatID, unitsText(b.eval.Table()))
		return
	}
	if text == "" {
		return
	}

	st := b.getState(ctx, chatID)
	switch st.State {
	case dialog.StateMatName:
		b.wizardName(ctx, chatID, st, text)
	case dialog.StateMatParam:
		b.wizardParamText(ctx, chatID, st, text)
	case dialog.StateMatColor:
		b.wizardColor(ctx, chatID, st, text)
	case dialog.StateImportFile:
		b.reply(chatID, "Send the workbook as a document, or /cancel.")
	default:
		b.calculate(chatID, text)
	}
}

const stepExpired = "This step has expired"

// handleCallback routes inline button presses. Handlers return the notice
// shown in the callback answer, empty for none.
func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	data := cb.Data
	chatID := cb.Message.Chat.ID
	st := b.getState(ctx, chatID)

	var notice string
	switch {
	case data == "nav:cancel":
		b.resetState(ctx, chatID)
		b.editTextAndClear(chatID, cb.Message.MessageID, "Cancelled.")
		notice = "Cancelled"
	case data == "nav:back":
		b.goBack(ctx, cb, st)
	case strings.HasPrefix(data, "kind:"):
		notice = b.wizardPickKind(ctx, cb, st, materials.Kind(strings.TrimPrefix(data, "kind:")))
	case data == "par:def" || data == "par:skip":
		notice = b.wizardParamButton(ctx, cb, st, data == "par:def")
	case strings.HasPrefix(data, "col:"):
		if st.State != dialog.StateMatColor {
			notice = stepExpired
			break
		}
		b.clearMarkup(cb)
		b.wizardColor(ctx, chatID, st, "#"+strings.TrimPrefix(data, "col:"))
	case data == "mat:save":
		notice = b.wizardSave(ctx, cb, st)
	case data == "mat:plot":
		notice = b.wizardPlot(ctx, cb, st)
	case data == "mat:edit":
		if st.State != dialog.StateMatConfirm {
			notice = stepExpired
			break
		}
		b.clearMarkup(cb)
		b.askParam(ctx, chatID, st.Payload, 0, "")
	case strings.HasPrefix(data, "item:plot:"):
		if id, ok := parseID(data, "item:plot:"); ok {
			b.plotItem(ctx, chatID, id)
		}
	case strings.HasPrefix(data, "item:del:"):
		if id, ok := parseID(data, "item:del:"); ok {
			notice = b.deleteItem(ctx, cb, id)
		}
	case strings.HasPrefix(data, "item:"):
		if id, ok := parseID(data, "item:"); ok {
			notice = b.showItem(ctx, cb, id)
		}
	case data == "sel:plot":
		notice = b.plotSelected(ctx, cb, st)
	case strings.HasPrefix(data, "sel:"):
		if id, ok := parseID(data, "sel:"); ok {
			notice = b.toggleSelect(ctx, cb, st, id)
		}
	case data == "erase:yes":
		notice = b.eraseAll(ctx, cb, st)
	default:
		b.log.Warn("unknown callback", "data", data)
	}
	b.answerCallback(cb, notice, false)
}

func (b *Bot) goBack(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) {
	chatID := cb.Message.Chat.ID
	b.clearMarkup(cb)
	switch st.State {
	case dialog.StateMatName:
		b.startWizard(ctx, chatID)
	case dialog.StateMatParam:
		step, _ := dialog.GetInt(st.Payload, "step")
		if step == 0 {
			b.askName(ctx, chatID, st.Payload)
			return
		}
		b.askParam(ctx, chatID, st.Payload, step-1, "")
	case dialog.StateMatColor:
		spec, err := draftSpec(st.Payload)
		if err != nil {
			b.startWizard(ctx, chatID)
			return
		}
		b.askParam(ctx, chatID, st.Payload, len(spec.Params)-1, "")
	case dialog.StateMatConfirm:
		b.askColor(ctx, chatID, st.Payload)
	case dialog.StateMatItem:
		b.showList(ctx, chatID)
	default:
		b.resetState(ctx, chatID)
	}
}

// clearMarkup drops the inline keyboard of the message a callback came from.
func (b *Bot) clearMarkup(cb *tgbotapi.CallbackQuery) {
	rm := tgbotapi.InlineKeyboardMarkup{InlineKeyboard: [][]tgbotapi.InlineKeyboardButton{}}
	b.send(tgbotapi.NewEditMessageReplyMarkup(cb.Message.Chat.ID, cb.Message.MessageID, rm))
}

func parseID(data, prefix string) (int64, bool) {
	id, err := strconv.ParseInt(strings.TrimPrefix(data, prefix), 10, 64)
	return id, err == nil
}
