package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"covid-dashboard/internal/models"
)

// Read parses a patient CSV. Columns are located by header name; AGE is
// required and every other column is optional.
func Read(r io.Reader) (*Dataset, error) {
	cr := csv.NewReader(r)
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, errors.New("empty dataset: missing header row")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	var present []string
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		index[h] = i
		present = append(present, h)
	}
	if _, ok := index[ColAge]; !ok {
		return nil, fmt.Errorf("missing required column %s", ColAge)
	}

	var records []models.PatientRecord
	for row := 1; ; row++ {
		fields, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}

		var rec models.PatientRecord
		if rec.Age, err = intCell(fields, index, ColAge, true); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		sex, err := intCell(fields, index, ColSex, false)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		rec.Sex = models.Sex(sex)
		if rec.MedicalUnit, err = intCell(fields, index, ColMedicalUnit, false); err != nil {
			return nil, fmt.Errorf("row %d: %w", row, err)
		}
		for _, c := range models.Comorbidities {
			v, err := intCell(fields, index, c.Column(), false)
			if err != nil {
				return nil, fmt.Errorf("row %d: %w", row, err)
			}
			rec.SetFlag(c, models.Flag(v))
		}
		if i, ok := index[ColDateDied]; ok {
			rec.DateDied = fields[i]
			rec.Deceased = IsDeceased(rec.DateDied)
		}
		records = append(records, rec)
	}

	return New(records, present...), nil
}

func intCell(fields []string, index map[string]int, col string, required bool) (int, error) {
	i, ok := index[col]
	if !ok {
		return 0, nil
	}
	raw := strings.TrimSpace(fields[i])
	if raw == "" {
		if required {
			return 0, fmt.Errorf("column %s: empty value", col)
		}
		return 0, nil
	}
	if v, err := strconv.Atoi(raw); err == nil {
		return v, nil
	}
	// pandas writes integer columns as floats once they held a NaN.
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("column %s: invalid integer %q", col, raw)
	}
	return int(math.Round(f)), nil
}
