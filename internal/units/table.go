package units

import (
	"fmt"
	"sort"
)

// Base system: newtons, millimetres, megapascals (N/mm²).
const (
	Millimeter = 1.0
	Centimeter = 10 * Millimeter
	Meter      = 1000 * Millimeter
	Inch       = 25.4 * Millimeter
	Foot       = 12 * Inch

	Newton        = 1.0
	Kilonewton    = 1000 * Newton
	KilogramForce = 9.80665 * Newton
	TonneForce    = 1000 * KilogramForce
	PoundForce    = 0.45359237 * KilogramForce
	Kip           = 1000 * PoundForce

	Megapascal = Newton / (Millimeter * Millimeter)
	Kilopascal = 1e-3 * Megapascal
	Pascal     = 1e-6 * Megapascal
	Ksi        = Kip / (Inch * Inch)
)

type Quantity string

const (
	Length   Quantity = "length"
	Force    Quantity = "force"
	Pressure Quantity = "pressure"
)

type Unit struct {
	Symbol   string
	Factor   float64
	Quantity Quantity
}

// Table is an immutable set of unit symbols. The zero value is an empty table.
type Table struct {
	units []Unit
	index map[string]float64
}

// NewTable checks that every symbol is a non-empty run of ASCII letters,
// unique, and has a strictly positive factor.
func NewTable(list ...Unit) (Table, error) {
	t := Table{
		units: make([]Unit, 0, len(list)),
		index: make(map[string]float64, len(list)),
	}
	for _, u := range list {
		if !isSymbol(u.Symbol) {
			return Table{}, fmt.Errorf("invalid unit symbol %q", u.Symbol)
		}
		if _, dup := t.index[u.Symbol]; dup {
			return Table{}, fmt.Errorf("duplicate unit symbol %q", u.Symbol)
		}
		if !(u.Factor > 0) {
			return Table{}, fmt.Errorf("unit %q: factor must be positive, got %v", u.Symbol, u.Factor)
		}
		t.units = append(t.units, u)
		t.index[u.Symbol] = u.Factor
	}
	return t, nil
}

func MustTable(list ...Unit) Table {
	t, err := NewTable(list...)
	if err != nil {
		panic(err)
	}
	return t
}

// Default is the table offered to users.
var Default = MustTable(
	Unit{"mm", Millimeter, Length},
	Unit{"cm", Centimeter, Length},
	Unit{"m", Meter, Length},
	Unit{"inches", Inch, Length},
	Unit{"in", Inch, Length},
	Unit{"ft", Foot, Length},
	Unit{"N", Newton, Force},
	Unit{"kN", Kilonewton, Force},
	Unit{"kgf", KilogramForce, Force},
	Unit{"tf", TonneForce, Force},
	Unit{"lbf", PoundForce, Force},
	Unit{"kip", Kip, Force},
	Unit{"MPa", Megapascal, Pressure},
	Unit{"kPa", Kilopascal, Pressure},
	Unit{"Pa", Pascal, Pressure},
	Unit{"ksi", Ksi, Pressure},
)

// Lookup matches the whole symbol, case-sensitively.
func (t Table) Lookup(symbol string) (float64, bool) {
	f, ok := t.index[symbol]
	return f, ok
}

// Units returns the definitions in declaration order.
func (t Table) Units() []Unit {
	out := make([]Unit, len(t.units))
	copy(out, t.units)
	return out
}

func (t Table) Len() int { return len(t.units) }

// Symbols returns the symbols sorted by descending length, then alphabetically.
func (t Table) Symbols() []string {
	out := make([]string, 0, len(t.units))
	for _, u := range t.units {
		out = append(out, u.Symbol)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if len(out[i]) != len(out[j]) {
			return len(out[i]) > len(out[j])
		}
		return out[i] < out[j]
	})
	return out
}

// ByQuantity groups the units, keeping declaration order inside each group.
func (t Table) ByQuantity() map[Quantity][]Unit {
	out := make(map[Quantity][]Unit)
	for _, u := range t.units {
		out[u.Quantity] = append(out[u.Quantity], u)
	}
	return out
}

func isSymbol(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !IsLetter(s[i]) {
			return false
		}
	}
	return true
}

// IsLetter reports whether c may appear in a unit symbol.
func IsLetter(c byte) bool {
	return ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
