package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/dialog"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/expr"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/logger"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/metrics"
)

const maxNameLen = 64

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

func (b *Bot) startWizard(ctx context.Context, chatID int64) {
	b.setState(ctx, chatID, dialog.StateMatPickKind, dialog.Payload{})
	b.replyWith(chatID, "Which material model?", kindKeyboard())
}

func (b *Bot) wizardPickKind(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, kind materials.Kind) string {
	if st.State != dialog.StateMatPickKind {
		return stepExpired
	}
	spec, err := materials.SpecFor(kind)
	if err != nil {
		return "Unknown model"
	}
	b.editTextAndClear(cb.Message.Chat.ID, cb.Message.MessageID, "Model: "+spec.Title)
	b.askName(ctx, cb.Message.Chat.ID, dialog.Payload{"kind": string(kind)})
	return ""
}

func (b *Bot) askName(ctx context.Context, chatID int64, p dialog.Payload) {
	b.setState(ctx, chatID, dialog.StateMatName, p)
	b.replyWith(chatID, "Name for the material (e.g. A36 or fc240cc):", navKeyboard(true, true))
}

func (b *Bot) wizardName(ctx context.Context, chatID int64, st *dialog.Item, name string) {
	if utf8.RuneCountInString(name) > maxNameLen {
		b.reply(chatID, fmt.Sprintf("The name is longer than %d characters, try a shorter one.", maxNameLen))
		return
	}
	col, ok := b.collection(ctx, chatID)
	if !ok {
		return
	}
	if _, taken := col.Get(name); taken {
		b.reply(chatID, fmt.Sprintf("%q is already in your list. Pick another name.", name))
		return
	}
	p := st.Payload
	p["name"] = name
	if _, ok := p["params"]; !ok {
		p["params"] = map[string]float64{}
	}
	b.askParam(ctx, chatID, p, 0, "")
}

func draftSpec(p dialog.Payload) (materials.KindSpec, error) {
	kind, _ := dialog.GetString(p, "kind")
	return materials.SpecFor(materials.Kind(kind))
}

// draft is the material the wizard has built so far.
func draft(p dialog.Payload) (materials.Material, error) {
	spec, err := draftSpec(p)
	if err != nil {
		return materials.Material{}, err
	}
	name, _ := dialog.GetString(p, "name")
	color, ok := dialog.GetString(p, "color")
	if !ok {
		color = materials.DefaultColor
	}
	return materials.Material{
		Name:   name,
		Kind:   spec.Kind,
		Params: dialog.GetFloats(p, "params"),
		Color:  color,
	}, nil
}

// askParam prompts for parameter step of the draft's kind. note, when set,
// reports the outcome of the previous step.
func (b *Bot) askParam(ctx context.Context, chatID int64, p dialog.Payload, step int, note string) {
	spec, err := draftSpec(p)
	if err != nil {
		b.startWizard(ctx, chatID)
		return
	}
	if step >= len(spec.Params) {
		if note != "" {
			b.reply(chatID, note)
		}
		b.askColor(ctx, chatID, p)
		return
	}
	if step < 0 {
		step = 0
	}
	param := spec.Params[step]
	p["step"] = step
	b.setState(ctx, chatID, dialog.StateMatParam, p)

	var sb strings.Builder
	if note != "" {
		sb.WriteString(note + "\n\n")
	}
	fmt.Fprintf(&sb, "[%d/%d] %s", step+1, len(spec.Params), param.Key)
	if param.Hint != "" {
		fmt.Fprintf(&sb, " (%s)", param.Hint)
	}
	if param.Required {
		sb.WriteString(", required")
	}
	if v, ok := dialog.GetFloats(p, "params")[param.Key]; ok {
		fmt.Fprintf(&sb, "\nCurrent: %s", expr.Format(v))
	}
	sb.WriteString("\nType a value or an expression such as 36*ksi.")
	b.replyWith(chatID, sb.String(), paramKeyboard(param))
}

func (b *Bot) wizardParamText(ctx context.Context, chatID int64, st *dialog.Item, text string) {
	spec, err := draftSpec(st.Payload)
	if err != nil {
		b.startWizard(ctx, chatID)
		return
	}
	step, _ := dialog.GetInt(st.Payload, "step")
	if step < 0 || step >= len(spec.Params) {
		b.askColor(ctx, chatID, st.Payload)
		return
	}
	key := spec.Params[step].Key
	params := dialog.GetFloats(st.Payload, "params")

	v, err := b.eval.Eval(text)
	metrics.Evaluations.WithLabelValues(expr.Kind(err)).Inc()
	var note string
	switch {
	case err != nil:
		delete(params, key)
		note = fmt.Sprintf("⚠️ %s: %v\n%s is left unset.", key, err, key)
	case v <= 0:
		delete(params, key)
		note = fmt.Sprintf("⚠️ %s must be positive, got %s.\n%s is left unset.", key, expr.Format(v), key)
	default:
		params[key] = v
		note = fmt.Sprintf("✓ %s = %s", key, expr.Format(v))
	}
	st.Payload["params"] = params
	b.askParam(ctx, chatID, st.Payload, step+1, note)
}

func (b *Bot) wizardParamButton(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item, useDefault bool) string {
	if st.State != dialog.StateMatParam {
		return stepExpired
	}
	chatID := cb.Message.Chat.ID
	spec, err := draftSpec(st.Payload)
	if err != nil {
		return stepExpired
	}
	step, _ := dialog.GetInt(st.Payload, "step")
	if step < 0 || step >= len(spec.Params) {
		return stepExpired
	}
	param := spec.Params[step]
	params := dialog.GetFloats(st.Payload, "params")
	var note string
	if useDefault {
		params[param.Key] = param.Default
		note = fmt.Sprintf("✓ %s = %s", param.Key, expr.Format(param.Default))
	} else {
		delete(params, param.Key)
		note = fmt.Sprintf("%s is left unset.", param.Key)
	}
	st.Payload["params"] = params
	b.clearMarkup(cb)
	b.askParam(ctx, chatID, st.Payload, step+1, note)
	return ""
}

func (b *Bot) askColor(ctx context.Context, chatID int64, p dialog.Payload) {
	b.setState(ctx, chatID, dialog.StateMatColor, p)
	b.replyWith(chatID, "Curve colour? Pick one or type #rrggbb.", colorKeyboard())
}

func (b *Bot) wizardColor(ctx context.Context, chatID int64, st *dialog.Item, color string) {
	if !hexColor.MatchString(color) {
		b.reply(chatID, fmt.Sprintf("%q is not a #rrggbb colour.", color))
		return
	}
	st.Payload["color"] = strings.ToLower(color)
	b.showConfirm(ctx, chatID, st.Payload)
}

func (b *Bot) showConfirm(ctx context.Context, chatID int64, p dialog.Payload) {
	m, err := draft(p)
	if err != nil {
		b.startWizard(ctx, chatID)
		return
	}
	b.setState(ctx, chatID, dialog.StateMatConfirm, p)
	text := materials.Summary(m) + "\n\n" + materials.Snippet(m, nil)
	if missing := m.Missing(); len(missing) > 0 {
		text += "\nStill required: " + strings.Join(missing, ", ")
	}
	b.replyWith(chatID, text, confirmKeyboard())
}

func (b *Bot) wizardSave(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) string {
	if st.State != dialog.StateMatConfirm {
		return stepExpired
	}
	chatID := cb.Message.Chat.ID
	m, err := draft(st.Payload)
	if err != nil {
		return stepExpired
	}
	m.ChatID = chatID

	if missing := m.Missing(); len(missing) > 0 {
		spec, _ := materials.SpecFor(m.Kind)
		step := 0
		for i, p := range spec.Params {
			if p.Key == missing[0] {
				step = i
				break
			}
		}
		b.clearMarkup(cb)
		b.askParam(ctx, chatID, st.Payload, step, fmt.Sprintf("⚠️ %s is required before saving.", missing[0]))
		return ""
	}
	if err := m.Validate(); err != nil {
		b.reply(chatID, "⚠️ "+err.Error())
		return ""
	}

	saved, err := b.materials.Create(ctx, m)
	if errors.Is(err, materials.ErrDuplicateName) {
		b.clearMarkup(cb)
		b.reply(chatID, fmt.Sprintf("%q is already in your list.", m.Name))
		b.askName(ctx, chatID, st.Payload)
		return ""
	}
	if err != nil {
		logger.LogError(b.log, "save material failed", err, slog.Int64("chat_id", chatID))
		b.reply(chatID, "Could not save the material, try again later.")
		return ""
	}

	metrics.MaterialsSaved.WithLabelValues(string(saved.Kind)).Inc()
	logger.LogOperation(b.log, "material_saved",
		slog.Int64("chat_id", chatID), slog.String("kind", string(saved.Kind)), slog.Int64("id", saved.ID))
	b.resetState(ctx, chatID)
	b.clearMarkup(cb)
	b.replyWith(chatID, fmt.Sprintf("Saved %s as #%d in your list.", saved.Name, saved.Position+1), mainReplyKeyboard())
	return "Saved"
}

// wizardPlot plots the unsaved draft and answers with the snippet completed
// by the values the curve service resolved.
func (b *Bot) wizardPlot(ctx context.Context, cb *tgbotapi.CallbackQuery, st *dialog.Item) string {
	if st.State != dialog.StateMatConfirm {
		return stepExpired
	}
	chatID := cb.Message.Chat.ID
	m, err := draft(st.Payload)
	if err != nil {
		return stepExpired
	}
	if missing := m.Missing(); len(missing) > 0 {
		b.reply(chatID, "Set "+strings.Join(missing, ", ")+" before plotting.")
		return ""
	}
	cs, ok := b.plot(ctx, chatID, m.Name, []materials.Material{m})
	if ok && len(cs) == 1 {
		b.reply(chatID, materials.Snippet(m, cs[0].Attributes))
	}
	return ""
}
