package materials

import (
	"sort"
	"strings"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/expr"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

// FieldErrors maps a parameter key to the reason its input was rejected.
type FieldErrors map[string]error

func (fe FieldErrors) Keys() []string {
	out := make([]string, 0, len(fe))
	for k := range fe {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build evaluates raw parameter inputs for kind. Blank inputs are left unset;
// inputs that fail to evaluate are left unset and reported in FieldErrors.
// The returned material is not validated.
func Build(kind Kind, name, color string, raw map[string]string, table units.Table) (Material, FieldErrors, error) {
	spec, err := SpecFor(kind)
	if err != nil {
		return Material{}, nil, err
	}
	if strings.TrimSpace(color) == "" {
		color = DefaultColor
	}
	m := Material{
		Name:   strings.TrimSpace(name),
		Kind:   kind,
		Color:  strings.TrimSpace(color),
		Params: map[string]float64{},
	}
	errs := FieldErrors{}
	for _, p := range spec.Params {
		in, ok := raw[p.Key]
		if !ok || strings.TrimSpace(in) == "" {
			continue
		}
		v, err := expr.Evaluate(in, table)
		if err != nil {
			errs[p.Key] = err
			continue
		}
		m.Params[p.Key] = v
	}
	return m, errs, nil
}

// Defaults returns the form values for kind.
func Defaults(kind Kind) map[string]float64 {
	spec, err := SpecFor(kind)
	if err != nil {
		return nil
	}
	out := make(map[string]float64, len(spec.Params))
	for _, p := range spec.Params {
		out[p.Key] = p.Default
	}
	return out
}
