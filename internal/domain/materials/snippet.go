package materials

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/expr"
)

// Snippet renders the python call that rebuilds m with the
// ConstitutiveRelationships library. Values missing from m.Params are taken
// from resolved (the attributes echoed by the curve service) when present.
func Snippet(m Material, resolved map[string]float64) string {
	spec, err := SpecFor(m.Kind)
	if err != nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("# python syntax\n")
	sb.WriteString("import ConstitutiveRelationships as cr\n\n")
	fmt.Fprintf(&sb, "%s(\n", spec.Constructor)
	fmt.Fprintf(&sb, "    name=%s,\n", strconv.Quote(m.Name))
	for _, p := range spec.Params {
		v, ok := m.Params[p.Key]
		if !ok {
			v, ok = resolved[p.Key]
		}
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "    %s=%s,\n", p.Key, expr.Format(v))
	}
	fmt.Fprintf(&sb, "    color=%s\n", strconv.Quote(m.Color))
	sb.WriteString(")\n")
	return sb.String()
}

// Summary is the short human-readable parameter listing shown in chat.
func Summary(m Material) string {
	spec, err := SpecFor(m.Kind)
	if err != nil {
		return m.Name
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s — %s\n", m.Name, spec.Title)
	for _, p := range spec.Params {
		if v, ok := m.Params[p.Key]; ok {
			fmt.Fprintf(&sb, "%s = %s\n", p.Key, expr.Format(v))
		} else {
			fmt.Fprintf(&sb, "%s = (unset)\n", p.Key)
		}
	}
	fmt.Fprintf(&sb, "color = %s", m.Color)
	return sb.String()
}
