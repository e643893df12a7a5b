package bot

import (
	"errors"
	"fmt"
	"html"
	"strings"
	"unicode/utf8"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/expr"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/metrics"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

// calculate evaluates free text and echoes the value, or points at the
// offending character.
func (b *Bot) calculate(chatID int64, input string) {
	v, err := b.eval.Eval(input)
	metrics.Evaluations.WithLabelValues(expr.Kind(err)).Inc()
	if err == nil {
		b.reply(chatID, fmt.Sprintf("%s = %s", input, expr.Format(v)))
		return
	}
	m := tgbotapi.NewMessage(chatID, evalErrorHTML(input, err))
	m.ParseMode = tgbotapi.ModeHTML
	b.send(m)
}

func evalErrorHTML(input string, err error) string {
	var e *expr.Error
	if !errors.As(err, &e) || e.Pos < 0 || e.Pos > len(input) {
		return "⚠️ " + html.EscapeString(err.Error())
	}
	caret := strings.Repeat(" ", utf8.RuneCountInString(input[:e.Pos])) + "^"
	return fmt.Sprintf("<pre>%s\n%s</pre>\n⚠️ %s",
		html.EscapeString(input), caret, html.EscapeString(err.Error()))
}

var quantityOrder = []struct {
	q    units.Quantity
	base string
}{
	{units.Length, "mm"},
	{units.Force, "N"},
	{units.Pressure, "MPa"},
}

func unitsText(t units.Table) string {
	groups := t.ByQuantity()
	var sb strings.Builder
	sb.WriteString("Units (results are in N, mm and MPa):")
	for _, q := range quantityOrder {
		us := groups[q.q]
		if len(us) == 0 {
			continue
		}
		fmt.Fprintf(&sb, "\n\n%s, base %s:", q.q, q.base)
		for _, u := range us {
			fmt.Fprintf(&sb, "\n  %s = %s", u.Symbol, expr.Format(u.Factor))
		}
	}
	sb.WriteString("\n\nOperators: + - * / ^ ** and parentheses. A unit right after a number multiplies it: 5mm, 2.5 kN.")
	return sb.String()
}
