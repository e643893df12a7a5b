package sheets

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/curves"
)

const (
	plotSheet = "Plot"
	dataSheet = "Data"
)

// PlotWorkbook lays the curves out as strain/stress column pairs on a data
// sheet and draws them on one scatter chart.
func PlotWorkbook(title string, cs []curves.Curve) ([]byte, error) {
	if len(cs) == 0 {
		return nil, fmt.Errorf("no curves to plot")
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), plotSheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(dataSheet); err != nil {
		return nil, err
	}

	series := make([]excelize.ChartSeries, 0, len(cs))
	for i, c := range cs {
		if err := c.Check(); err != nil {
			return nil, fmt.Errorf("%s: %w", c.Name, err)
		}
		xCol, err := excelize.ColumnNumberToName(2*i + 1)
		if err != nil {
			return nil, err
		}
		yCol, err := excelize.ColumnNumberToName(2*i + 2)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(dataSheet, xCol+"1", "strain"); err != nil {
			return nil, err
		}
		if err := f.SetCellValue(dataSheet, yCol+"1", c.Name); err != nil {
			return nil, err
		}
		for r := range c.Strain {
			row := r + 2
			if err := f.SetCellValue(dataSheet, fmt.Sprintf("%s%d", xCol, row), c.Strain[r]); err != nil {
				return nil, err
			}
			if err := f.SetCellValue(dataSheet, fmt.Sprintf("%s%d", yCol, row), c.Stress[r]); err != nil {
				return nil, err
			}
		}
		last := len(c.Strain) + 1
		s := excelize.ChartSeries{
			Name:       fmt.Sprintf("%s!$%s$1", dataSheet, yCol),
			Categories: fmt.Sprintf("%s!$%s$2:$%s$%d", dataSheet, xCol, xCol, last),
			Values:     fmt.Sprintf("%s!$%s$2:$%s$%d", dataSheet, yCol, yCol, last),
			Marker:     excelize.ChartMarker{Symbol: "none"},
			Line:       excelize.ChartLine{Width: 1.5},
		}
		if color := strings.TrimPrefix(c.Color, "#"); color != "" {
			s.Fill = excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1}
		}
		series = append(series, s)
	}

	chart := &excelize.Chart{
		Type:   excelize.Scatter,
		Series: series,
		Title:  []excelize.RichTextRun{{Text: title}},
		Legend: excelize.ChartLegend{Position: "bottom"},
		XAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: "strain"}},
		},
		YAxis: excelize.ChartAxis{
			Title: []excelize.RichTextRun{{Text: "stress [MPa]"}},
		},
		Dimension: excelize.ChartDimension{Width: 960, Height: 540},
	}
	if err := f.AddChart(plotSheet, "A1", chart); err != nil {
		return nil, fmt.Errorf("add chart: %w", err)
	}
	f.SetActiveSheet(0)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
