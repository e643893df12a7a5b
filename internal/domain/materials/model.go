package materials

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Kind string

const (
	KindBilinearSteel      Kind = "bilinear_steel"
	KindUnconfinedConcrete Kind = "unconfined_concrete"
	KindConfinedConcrete   Kind = "confined_concrete"
)

const DefaultColor = "#000000"

var (
	ErrInvalid       = errors.New("invalid material")
	ErrDuplicateName = errors.New("material name already used")
	ErrUnknownKind   = errors.New("unknown material kind")
)

// ParamSpec describes one input of a material model, with the value the
// input form is pre-filled with.
type ParamSpec struct {
	Key      string
	Default  float64
	Required bool
	Hint     string
}

type KindSpec struct {
	Kind        Kind
	Title       string
	Constructor string // python constructor in the ConstitutiveRelationships library
	Params      []ParamSpec
}

func (s KindSpec) Param(key string) (ParamSpec, bool) {
	for _, p := range s.Params {
		if p.Key == key {
			return p, true
		}
	}
	return ParamSpec{}, false
}

var kindSpecs = []KindSpec{
	{
		Kind:        KindConfinedConcrete,
		Title:       "Confined Mander Concrete",
		Constructor: "cr.uniaxialConfinedConcrete",
		Params: []ParamSpec{
			{"fco", 24, true, "unconfined strength"},
			{"eco", 0.003, true, "strain at fco"},
			{"b", 300, true, "section width"},
			{"h", 400, true, "section height"},
			{"rec", 30, true, "cover"},
			{"num_var_b", 3, true, "longitudinal bars along b"},
			{"num_var_h", 4, true, "longitudinal bars along h"},
			{"phi_longitudinal", 16, true, "longitudinal bar diameter"},
			{"num_est_perpendicular_b", 2, true, "hoop legs perpendicular to b"},
			{"num_est_perpendicular_h", 2, true, "hoop legs perpendicular to h"},
			{"phi_estribo", 10, true, "hoop diameter"},
			{"s", 100, true, "hoop spacing"},
			{"fye", 420, true, "hoop yield strength"},
			{"esu_estribo", 0.09, true, "hoop ultimate strain"},
		},
	},
	{
		Kind:        KindUnconfinedConcrete,
		Title:       "Unconfined Mander Concrete",
		Constructor: "cr.uniaxialUnconfinedConcrete",
		Params: []ParamSpec{
			{"fco", 24, true, "compressive strength"},
			{"eco", 0.002, false, "strain at fco"},
			{"ec_sprall", 0.006, false, "spalling strain"},
		},
	},
	{
		Kind:        KindBilinearSteel,
		Title:       "BiLineal Steel",
		Constructor: "cr.uniaxialBilinealSteel",
		Params: []ParamSpec{
			{"fy", 420, true, "yield strength"},
			{"fsu", 630, true, "ultimate strength"},
			{"esh", 0.0080, false, "strain at onset of hardening"},
			{"esu", 0.12, false, "ultimate strain"},
			{"Es", 200000, false, "elastic modulus"},
			{"Esh", 7000, false, "hardening modulus"},
		},
	},
}

// Kinds lists the supported models in menu order.
func Kinds() []KindSpec {
	out := make([]KindSpec, len(kindSpecs))
	copy(out, kindSpecs)
	return out
}

func SpecFor(k Kind) (KindSpec, error) {
	for _, s := range kindSpecs {
		if s.Kind == k {
			return s, nil
		}
	}
	return KindSpec{}, fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
}

// Material is a stored, named parameter set. Params only holds the values the
// user set; absent keys are left to the curve service's defaults.
type Material struct {
	ID        int64
	ChatID    int64
	Position  int
	Name      string             `validate:"required,max=64"`
	Kind      Kind               `validate:"required,oneof=bilinear_steel unconfined_concrete confined_concrete"`
	Params    map[string]float64 `validate:"dive,gt=0"`
	Color     string             `validate:"required,hexcolor"`
	CreatedAt time.Time
}

// Missing lists required parameters that are not set, in spec order.
func (m Material) Missing() []string {
	spec, err := SpecFor(m.Kind)
	if err != nil {
		return nil
	}
	var out []string
	for _, p := range spec.Params {
		if _, ok := m.Params[p.Key]; p.Required && !ok {
			out = append(out, p.Key)
		}
	}
	return out
}

var validate = validator.New()

func (m Material) Validate() error {
	if err := validate.Struct(m); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(msgs, "; "))
	}
	spec, err := SpecFor(m.Kind)
	if err != nil {
		return err
	}
	for k := range m.Params {
		if _, ok := spec.Param(k); !ok {
			return fmt.Errorf("%w: %s has no parameter %q", ErrInvalid, spec.Title, k)
		}
	}
	if missing := m.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalid, strings.Join(missing, ", "))
	}
	return nil
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return strings.ToLower(fe.Field()) + " is required"
	case "max":
		return fmt.Sprintf("%s longer than %s characters", strings.ToLower(fe.Field()), fe.Param())
	case "hexcolor":
		return fmt.Sprintf("color %q is not #rrggbb", fe.Value())
	case "oneof":
		return fmt.Sprintf("kind %q is not supported", fe.Value())
	case "gt":
		// Namespace looks like Material.Params[fy]
		ns := fe.Namespace()
		key := ns
		if i := strings.Index(ns, "["); i >= 0 {
			key = strings.TrimSuffix(ns[i+1:], "]")
		}
		return fmt.Sprintf("%s must be positive", key)
	}
	return fe.Error()
}
