package units

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTable(t *testing.T) {
	t.Run("contains every documented symbol", func(t *testing.T) {
		for _, sym := range []string{"mm", "cm", "m", "inches", "in", "ft", "N", "kN", "kgf", "tf", "lbf", "kip", "MPa", "kPa", "Pa", "ksi"} {
			_, ok := Default.Lookup(sym)
			assert.True(t, ok, "missing %s", sym)
		}
		assert.Equal(t, 16, Default.Len())
	})

	t.Run("factors are strictly positive", func(t *testing.T) {
		for _, u := range Default.Units() {
			assert.Greater(t, u.Factor, 0.0, u.Symbol)
		}
	})

	t.Run("derived factors", func(t *testing.T) {
		f, _ := Default.Lookup("ft")
		assert.InDelta(t, 304.8, f, 1e-12)
		f, _ = Default.Lookup("ksi")
		assert.InDelta(t, 6.894757293168361, f, 1e-12)
		f, _ = Default.Lookup("tf")
		assert.InDelta(t, 9806.65, f, 1e-9)
		f, _ = Default.Lookup("kip")
		assert.InDelta(t, 4448.2216152605, f, 1e-9)
		f, _ = Default.Lookup("Pa")
		assert.Equal(t, 1e-6, f)
	})

	t.Run("inches and in are aliases", func(t *testing.T) {
		a, _ := Default.Lookup("inches")
		b, _ := Default.Lookup("in")
		assert.Equal(t, a, b)
	})

	t.Run("lookup is case sensitive", func(t *testing.T) {
		_, ok := Default.Lookup("MM")
		assert.False(t, ok)
		_, ok = Default.Lookup("mpa")
		assert.False(t, ok)
	})
}

func TestNewTable(t *testing.T) {
	t.Run("rejects duplicates", func(t *testing.T) {
		_, err := NewTable(Unit{"mm", 1, Length}, Unit{"mm", 2, Length})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("rejects non positive factors", func(t *testing.T) {
		_, err := NewTable(Unit{"x", 0, Length})
		require.Error(t, err)
		_, err = NewTable(Unit{"y", -1, Length})
		require.Error(t, err)
	})

	t.Run("rejects symbols that are not letters", func(t *testing.T) {
		_, err := NewTable(Unit{"m2", 1, Length})
		require.Error(t, err)
		_, err = NewTable(Unit{"", 1, Length})
		require.Error(t, err)
	})

	t.Run("Units returns a copy", func(t *testing.T) {
		tbl := MustTable(Unit{"a", 1, Length})
		us := tbl.Units()
		us[0].Factor = 99
		f, _ := tbl.Lookup("a")
		assert.Equal(t, 1.0, f)
	})
}

func TestSymbolsLongestFirst(t *testing.T) {
	syms := Default.Symbols()
	require.Len(t, syms, Default.Len())
	assert.Equal(t, "inches", syms[0])
	for i := 1; i < len(syms); i++ {
		assert.GreaterOrEqual(t, len(syms[i-1]), len(syms[i]))
	}
	assert.Equal(t, "m", syms[len(syms)-1])
}

func TestByQuantity(t *testing.T) {
	groups := Default.ByQuantity()
	assert.Len(t, groups[Length], 6)
	assert.Len(t, groups[Force], 6)
	assert.Len(t, groups[Pressure], 4)
	assert.Equal(t, "mm", groups[Length][0].Symbol)
}
