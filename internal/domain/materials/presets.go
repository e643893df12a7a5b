package materials

import (
	"fmt"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

type preset struct {
	name   string
	kind   Kind
	params map[string]string
}

var typical = []preset{
	{"A36", KindBilinearSteel, map[string]string{"fy": "36*ksi", "fsu": "1.50*36*ksi"}},
	{"A572", KindBilinearSteel, map[string]string{"fy": "50*ksi", "fsu": "1.10*50*ksi"}},
	{"A706Gr60", KindBilinearSteel, map[string]string{"fy": "60*ksi", "fsu": "1.25*60*ksi"}},
	{"fc240uc", KindUnconfinedConcrete, map[string]string{"fco": "240*kgf/cm^2"}},
	{"fc240cc", KindConfinedConcrete, map[string]string{
		"fco": "24", "eco": "0.003", "b": "300", "h": "400", "rec": "30",
		"num_var_b": "3", "num_var_h": "4", "phi_longitudinal": "16",
		"num_est_perpendicular_b": "2", "num_est_perpendicular_h": "2",
		"phi_estribo": "10", "s": "200", "fye": "420", "esu_estribo": "0.09",
	}},
}

// Typical builds the reference set loaded by "Load typical".
func Typical(table units.Table) ([]Material, error) {
	out := make([]Material, 0, len(typical))
	for i, p := range typical {
		m, errs, err := Build(p.kind, p.name, DefaultColor, p.params, table)
		if err != nil {
			return nil, err
		}
		for _, k := range errs.Keys() {
			return nil, fmt.Errorf("preset %s.%s: %w", p.name, k, errs[k])
		}
		if err := m.Validate(); err != nil {
			return nil, fmt.Errorf("preset %s: %w", p.name, err)
		}
		m.Position = i
		out = append(out, m)
	}
	return out, nil
}
