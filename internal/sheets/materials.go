package sheets

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/units"
)

const materialsSheet = "Materials"

// paramColumns is the union of every kind's parameter keys, first seen first.
func paramColumns() []string {
	seen := map[string]bool{}
	var out []string
	for _, k := range materials.Kinds() {
		for _, p := range k.Params {
			if !seen[p.Key] {
				seen[p.Key] = true
				out = append(out, p.Key)
			}
		}
	}
	return out
}

// ExportMaterials writes one row per material. Unset parameters are blank.
func ExportMaterials(ms []materials.Material) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), materialsSheet); err != nil {
		return nil, err
	}
	cols := paramColumns()
	header := []interface{}{"name", "kind", "color"}
	for _, c := range cols {
		header = append(header, c)
	}
	if err := f.SetSheetRow(materialsSheet, "A1", &header); err != nil {
		return nil, err
	}

	for i, m := range ms {
		row := []interface{}{m.Name, string(m.Kind), m.Color}
		for _, c := range cols {
			if v, ok := m.Params[c]; ok {
				row = append(row, v)
			} else {
				row = append(row, nil)
			}
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(materialsSheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

type RowError struct {
	Row int // 1-based, as shown in the spreadsheet
	Err error
}

func (e RowError) Error() string { return fmt.Sprintf("row %d: %v", e.Row, e.Err) }

// ImportMaterials reads the first sheet of an ExportMaterials-style workbook.
// Cells may hold numbers or unit expressions ("36*ksi"). Rows that fail are
// skipped and reported; the rest are returned valid and in file order.
func ImportMaterials(data []byte, table units.Table) ([]materials.Material, []RowError, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("sheet %q has no material rows", sheet)
	}

	idx := map[string]int{}
	for i, h := range rows[0] {
		idx[strings.TrimSpace(h)] = i
	}
	for _, required := range []string{"name", "kind"} {
		if _, ok := idx[required]; !ok {
			return nil, nil, fmt.Errorf("header is missing the %q column", required)
		}
	}
	cell := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	var (
		errs []RowError
		list = &materials.Collection{}
	)
	for r := 1; r < len(rows); r++ {
		row := rows[r]
		name := cell(row, "name")
		if name == "" {
			continue
		}
		kind := materials.Kind(cell(row, "kind"))
		spec, err := materials.SpecFor(kind)
		if err != nil {
			errs = append(errs, RowError{Row: r + 1, Err: err})
			continue
		}
		raw := map[string]string{}
		for _, p := range spec.Params {
			raw[p.Key] = cell(row, p.Key)
		}
		m, ferrs, err := materials.Build(kind, name, cell(row, "color"), raw, table)
		if err != nil {
			errs = append(errs, RowError{Row: r + 1, Err: err})
			continue
		}
		if keys := ferrs.Keys(); len(keys) > 0 {
			errs = append(errs, RowError{Row: r + 1, Err: fmt.Errorf("%s: %w", keys[0], ferrs[keys[0]])})
			continue
		}
		if err := m.Validate(); err != nil {
			errs = append(errs, RowError{Row: r + 1, Err: err})
			continue
		}
		if err := list.Append(m); err != nil {
			errs = append(errs, RowError{Row: r + 1, Err: err})
		}
	}
	return list.Items(), errs, nil
}
