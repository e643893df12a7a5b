package expr

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

func eval(t *testing.T, input string) float64 {
	t.Helper()
	v, err := Evaluate(input, units.Default)
	require.NoError(t, err, input)
	return v
}

func evalErr(t *testing.T, input string) *Error {
	t.Helper()
	_, err := Evaluate(input, units.Default)
	require.Error(t, err, input)
	var e *Error
	require.True(t, errors.As(err, &e), "want *Error, got %T", err)
	return e
}

func TestEveryUnitEvaluatesToItsFactor(t *testing.T) {
	for _, u := range units.Default.Units() {
		t.Run(u.Symbol, func(t *testing.T) {
			assert.Equal(t, u.Factor, eval(t, u.Symbol))
		})
	}
}

func TestBinaryOperators(t *testing.T) {
	pairs := [][2]float64{{3, 4}, {-2.5, 0.5}, {1e-3, 7}, {420, 200000}, {0, 9}}
	for _, p := range pairs {
		a, b := p[0], p[1]
		cases := map[string]float64{
			"+": a + b,
			"-": a - b,
			"*": a * b,
			"/": a / b,
		}
		for op, want := range cases {
			in := fmt.Sprintf("%s %s %s", Format(a), op, Format(b))
			t.Run(in, func(t *testing.T) {
				assert.InDelta(t, want, eval(t, in), 1e-12*math.Max(1, math.Abs(want)))
			})
		}
	}
}

func TestPrecedence(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"1+2*3", 7},
		{"(1+2)*3", 9},
		{"10-4-3", 3},
		{"8/4/2", 1},
		{"-3*2", -6},
		{"--3", 3},
		{"+4", 4},
		{"2*-3", -6},
		{"-2^2", -4},
		{"(-2)^2", 4},
		{"2^3^2", 512},
		{"2**-1", 0.5},
		{"2 ** 10", 1024},
		{" 1 + 1 ", 2},
		{".5", 0.5},
		{"5.", 5},
		{"-0.25", -0.25},
		{"1e3", 1000},
		{"0e-400", 0},
		{"0.000", 0},
		{"1.5E-3", 0.0015},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.InDelta(t, tt.want, eval(t, tt.in), 1e-12)
		})
	}
}

func TestUnits(t *testing.T) {
	t.Run("longer symbols win over their prefixes", func(t *testing.T) {
		assert.Equal(t, 5*units.Millimeter, eval(t, "5mm"))
		assert.Equal(t, 5*units.Meter, eval(t, "5m"))
		assert.Equal(t, 2*units.Inch, eval(t, "2inches"))
		assert.Equal(t, 2*units.Inch, eval(t, "2in"))
	})

	t.Run("juxtaposition multiplies", func(t *testing.T) {
		assert.InDelta(t, 5*units.Kilonewton, eval(t, "(2+3) kN"), 1e-9)
		assert.InDelta(t, 36*units.Ksi, eval(t, "36ksi"), 1e-12)
		assert.InDelta(t, 3*units.Centimeter*units.Centimeter, eval(t, "3cm^2"), 1e-9)
	})

	t.Run("steel presets", func(t *testing.T) {
		assert.InDelta(t, 248.2112625540610, eval(t, "36*ksi"), 1e-9)
		assert.InDelta(t, 1.5*36*units.Ksi, eval(t, "1.50*36*ksi"), 1e-9)
	})

	t.Run("units bind tighter than division", func(t *testing.T) {
		assert.InDelta(t, 5.0, eval(t, "1000 N / 2 cm^2"), 1e-12)
		assert.InDelta(t, 5.0, eval(t, "1 kN/2cm^2"), 1e-12)
		assert.InDelta(t, 1/(4*units.Inch), eval(t, "1 / 4 in"), 1e-15)
		assert.InDelta(t, 2*units.Meter, eval(t, "4 m^2 / 2 m"), 1e-9)
		assert.InDelta(t, 30.0, eval(t, "3 cm * 1"), 1e-12)
	})

	t.Run("exponent applies to its own unit only", func(t *testing.T) {
		assert.InDelta(t, 4*units.Centimeter, eval(t, "2^2 cm"), 1e-12)
		assert.InDelta(t, 0.5*units.Meter, eval(t, "2^-1 m"), 1e-12)
		assert.InDelta(t, -4*units.Centimeter, eval(t, "-2^2 cm"), 1e-12)
	})

	t.Run("caret exponent is supported", func(t *testing.T) {
		assert.InDelta(t, 23.53596, eval(t, "240*kgf/cm^2"), 1e-9)
		assert.InDelta(t, 23.53596, eval(t, "240*kgf/cm**2"), 1e-9)
	})

	t.Run("pressure conversion is consistent", func(t *testing.T) {
		assert.InDelta(t, 1.0, eval(t, "1000 kPa"), 1e-12)
		assert.InDelta(t, 1.0, eval(t, "N/mm^2"), 1e-12)
		assert.InDelta(t, 1.0, eval(t, "1e6 Pa"), 1e-12)
	})
}

func TestFailures(t *testing.T) {
	tests := []struct {
		in   string
		want error
	}{
		{"", ErrEmpty},
		{"   \t", ErrEmpty},
		{"1/0", ErrDivisionByZero},
		{"4 / (2-2)", ErrDivisionByZero},
		{"0^-1", ErrDivisionByZero},
		{"1+", ErrSyntax},
		{"*2", ErrSyntax},
		{"(1+2", ErrSyntax},
		{"1+2)", ErrSyntax},
		{"()", ErrSyntax},
		{"1 2", ErrSyntax},
		{"1.2.3", ErrSyntax},
		{".", ErrSyntax},
		{"5 furlongs", ErrUnknownUnit},
		{"5MM", ErrUnknownUnit},
		{"2e", ErrUnknownUnit},
		{"__import__", ErrUnexpectedChar},
		{"1;2", ErrUnexpectedChar},
		{"2%3", ErrUnexpectedChar},
		{"1e999", ErrNonFinite},
		{"1e-400", ErrNonFinite},
		{"1/1e-400", ErrNonFinite},
		{"2.5E-999 MPa", ErrNonFinite},
		{"10^400", ErrNonFinite},
		{"(-8)^0.5", ErrNonFinite},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			e := evalErr(t, tt.in)
			assert.ErrorIs(t, e, tt.want)
			assert.Equal(t, tt.in, e.Input)
		})
	}
}

func TestErrorPositions(t *testing.T) {
	e := evalErr(t, "12 + furlong")
	assert.Equal(t, 5, e.Pos)
	assert.Contains(t, e.Error(), "position 6")
	assert.Contains(t, e.Error(), `"furlong"`)

	e = evalErr(t, "3/0")
	assert.Equal(t, 1, e.Pos)

	e = evalErr(t, "")
	assert.Equal(t, -1, e.Pos)
	assert.Equal(t, "evaluation error: empty expression", e.Error())
}

func TestLimits(t *testing.T) {
	t.Run("overlong input", func(t *testing.T) {
		e := evalErr(t, strings.Repeat("1+", MaxLength)+"1")
		assert.ErrorIs(t, e, ErrTooLong)
	})

	t.Run("deep nesting fails without panicking", func(t *testing.T) {
		in := strings.Repeat("(", 100) + "1" + strings.Repeat(")", 100)
		assert.ErrorIs(t, evalErr(t, in), ErrSyntax)
		assert.ErrorIs(t, evalErr(t, strings.Repeat("-", 100)+"1"), ErrSyntax)
	})

	t.Run("moderate nesting is fine", func(t *testing.T) {
		in := strings.Repeat("(", 20) + "1" + strings.Repeat(")", 20)
		assert.Equal(t, 1.0, eval(t, in))
	})
}

func TestFormatRoundTrip(t *testing.T) {
	values := []float64{
		0, 1, -1, 0.1, 1.0 / 3, 420, 200000, 0.0080, 1e-6, -2.5e-12, 6.02214076e23,
		math.MaxFloat64, math.SmallestNonzeroFloat64, 36 * units.Ksi, 240 * units.KilogramForce / 100,
	}
	for _, v := range values {
		s := Format(v)
		t.Run(s, func(t *testing.T) {
			got, err := Evaluate(s, units.Default)
			require.NoError(t, err)
			assert.Equal(t, v, got)
		})
	}
}

func TestEvaluator(t *testing.T) {
	tbl := units.MustTable(units.Unit{Symbol: "m", Factor: 1, Quantity: units.Length}, units.Unit{Symbol: "mm", Factor: 0.001, Quantity: units.Length})
	ev := New(tbl)

	v, err := ev.Eval("5mm")
	require.NoError(t, err)
	assert.InDelta(t, 0.005, v, 1e-15)

	v, err = ev.Eval("2m")
	require.NoError(t, err)
	assert.Equal(t, 2.0, v)

	_, err = ev.Eval("1 kN")
	assert.ErrorIs(t, err, ErrUnknownUnit)
	assert.Equal(t, 2, ev.Table().Len())
}

func TestKind(t *testing.T) {
	assert.Equal(t, "ok", Kind(nil))
	_, err := Evaluate("1/0", units.Default)
	assert.Equal(t, "division_by_zero", Kind(err))
	_, err = Evaluate("3 parsecs", units.Default)
	assert.Equal(t, "unknown_unit", Kind(err))
	assert.Equal(t, "other", Kind(assert.AnError))
}
