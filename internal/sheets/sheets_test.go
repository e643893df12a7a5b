package sheets

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/curves"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

func open(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

func raw(t *testing.T, f *excelize.File, sheet, cell string) string {
	t.Helper()
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	return v
}

func TestPlotWorkbook(t *testing.T) {
	cs := []curves.Curve{
		{Name: "A36", Color: "#ff0000", Strain: []float64{0, 0.001, 0.1}, Stress: []float64{0, 200, 372}},
		{Name: "fc240uc", Strain: []float64{0, -0.002}, Stress: []float64{0, -23.5}},
	}
	data, err := PlotWorkbook("All materials", cs)
	require.NoError(t, err)

	f := open(t, data)
	assert.Equal(t, []string{plotSheet, dataSheet}, f.GetSheetList())

	assert.Equal(t, "strain", raw(t, f, dataSheet, "A1"))
	assert.Equal(t, "A36", raw(t, f, dataSheet, "B1"))
	assert.Equal(t, "0.001", raw(t, f, dataSheet, "A3"))
	assert.Equal(t, "372", raw(t, f, dataSheet, "B4"))
	assert.Equal(t, "fc240uc", raw(t, f, dataSheet, "D1"))
	assert.Equal(t, "-23.5", raw(t, f, dataSheet, "D3"))
	assert.Equal(t, "", raw(t, f, dataSheet, "D4"))
}

func TestPlotWorkbookRejectsBadInput(t *testing.T) {
	_, err := PlotWorkbook("empty", nil)
	assert.Error(t, err)

	_, err = PlotWorkbook("bad", []curves.Curve{{Name: "x", Strain: []float64{0, 1}, Stress: []float64{0}}})
	assert.ErrorIs(t, err, curves.ErrBadCurve)
}

func TestExportImportRoundTrip(t *testing.T) {
	typical, err := materials.Typical(units.Default)
	require.NoError(t, err)
	typical[0].Color = "#1f77b4"

	data, err := ExportMaterials(typical)
	require.NoError(t, err)

	got, rowErrs, err := ImportMaterials(data, units.Default)
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	require.Len(t, got, len(typical))
	for i := range typical {
		assert.Equal(t, typical[i].Name, got[i].Name)
		assert.Equal(t, typical[i].Kind, got[i].Kind)
		assert.Equal(t, typical[i].Color, got[i].Color)
		assert.Equal(t, typical[i].Params, got[i].Params, typical[i].Name)
	}
}

func TestExportLayout(t *testing.T) {
	data, err := ExportMaterials([]materials.Material{{
		Name: "S", Kind: materials.KindBilinearSteel, Color: "#000000",
		Params: map[string]float64{"fy": 420},
	}})
	require.NoError(t, err)

	f := open(t, data)
	rows, err := f.GetRows(materialsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"name", "kind", "color", "fco"}, rows[0][:4])
	assert.Contains(t, rows[0], "fy")
	assert.Contains(t, rows[0], "esu_estribo")
	assert.Equal(t, "S", rows[1][0])
	assert.Equal(t, "bilinear_steel", rows[1][1])
}

func TestImportExpressions(t *testing.T) {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]interface{}{
		{"name", "kind", "fy", "fsu", "fco"},
		{"S1", "bilinear_steel", "36*ksi", "54 ksi"},
		{"bogus", "timber", "1", "2"},
		{"S2", "bilinear_steel", "36 furlongs", "1"},
		{"S3", "bilinear_steel", "420"},
		{"S1", "bilinear_steel", "1", "2"},
		{""},
		{"C", "unconfined_concrete", "", "", "240*kgf/cm^2"},
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	got, rowErrs, err := ImportMaterials(buf.Bytes(), units.Default)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "S1", got[0].Name)
	assert.InDelta(t, 36*units.Ksi, got[0].Params["fy"], 1e-9)
	assert.InDelta(t, 54*units.Ksi, got[0].Params["fsu"], 1e-9)
	assert.Equal(t, materials.DefaultColor, got[0].Color)
	assert.Equal(t, "C", got[1].Name)
	assert.InDelta(t, 23.53596, got[1].Params["fco"], 1e-9)

	require.Len(t, rowErrs, 4)
	assert.Equal(t, 3, rowErrs[0].Row)
	assert.ErrorIs(t, rowErrs[0].Err, materials.ErrUnknownKind)
	assert.Equal(t, 4, rowErrs[1].Row)
	assert.Contains(t, rowErrs[1].Error(), "fy")
	assert.Equal(t, 5, rowErrs[2].Row)
	assert.ErrorIs(t, rowErrs[2].Err, materials.ErrInvalid)
	assert.Equal(t, 6, rowErrs[3].Row)
	assert.ErrorIs(t, rowErrs[3].Err, materials.ErrDuplicateName)
}

func TestImportRejectsBadWorkbooks(t *testing.T) {
	_, _, err := ImportMaterials([]byte("not a zip"), units.Default)
	assert.Error(t, err)

	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue(f.GetSheetName(0), "A1", "title"))
	require.NoError(t, f.SetCellValue(f.GetSheetName(0), "A2", "x"))
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	_, _, err = ImportMaterials(buf.Bytes(), units.Default)
	assert.ErrorContains(t, err, `"name"`)
}
