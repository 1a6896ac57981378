// Package export writes the dashboard statistics to an Excel workbook.
package export

import (
	"fmt"
	"io"

	"covid-dashboard/internal/stats"

	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary       = "Summary"
	SheetSex           = "Sex"
	SheetAge           = "Age"
	SheetComorbidities = "Comorbidities"
	SheetSurvival      = "Survival"
)

type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

// WriteStatistics writes one sheet per aggregate. Outcome sheets are
// omitted when the report has none.
func WriteStatistics(w io.Writer, r *stats.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets(r) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
		}

		if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
			return fmt.Errorf("failed to write %s header: %w", s.name, err)
		}
		last, err := excelize.CoordinatesToCellName(len(s.header), 1)
		if err != nil {
			return fmt.Errorf("failed to convert coordinates: %w", err)
		}
		if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("failed to set %s header style: %w", s.name, err)
		}
		if err := f.SetColWidth(s.name, "A", "A", 26); err != nil {
			return fmt.Errorf("failed to set %s column width: %w", s.name, err)
		}

		for j, row := range s.rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return fmt.Errorf("failed to convert coordinates: %w", err)
			}
			if err := f.SetSheetRow(s.name, cell, &row); err != nil {
				return fmt.Errorf("failed to write %s row %d: %w", s.name, j+1, err)
			}
		}
	}

	return f.Write(w)
}

func sheets(r *stats.Report) []sheet {
	summary := sheet{
		name:   SheetSummary,
		header: []interface{}{"Metric", "Value"},
		rows: [][]interface{}{
			{"Total patients", r.Summary.Patients},
			{"Mean age (years)", round1(r.Summary.MeanAge)},
		},
	}
	if r.Summary.HasOutcome {
		summary.rows = append(summary.rows,
			[]interface{}{"Deaths", r.Summary.Deaths},
			[]interface{}{"Mortality rate (%)", round1(r.Summary.MortalityRate)})
	}

	sex := sheet{name: SheetSex, header: []interface{}{"Sex", "Patients"}}
	for _, s := range r.Sexes {
		sex.rows = append(sex.rows, []interface{}{s.Label, s.Count})
	}

	age := sheet{name: SheetAge, header: []interface{}{"From", "To", "Patients"}}
	for _, b := range r.AgeHistogram {
		age.rows = append(age.rows, []interface{}{round1(b.Lower), round1(b.Upper), b.Count})
	}

	out := []sheet{summary, sex, age}
	if len(r.ComorbidityDeaths) > 0 {
		com := sheet{name: SheetComorbidities, header: []interface{}{"Comorbidity", "Deaths"}}
		for _, c := range r.ComorbidityDeaths {
			com.rows = append(com.rows, []interface{}{c.Label, c.Count})
		}
		out = append(out, com)
	}
	if len(r.SurvivalByUnit) > 0 {
		surv := sheet{name: SheetSurvival, header: []interface{}{"Institution", "Patients", "Deaths", "Survival rate (%)"}}
		for _, u := range r.SurvivalByUnit {
			surv.rows = append(surv.rows, []interface{}{u.Unit, u.Patients, u.Deaths, round1(u.SurvivalRate)})
		}
		out = append(out, surv)
	}
	return out
}

func round1(v float64) float64 {
	return float64(int64(v*10+0.5)) / 10
}
