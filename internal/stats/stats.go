// Package stats computes the descriptive statistics shown on the dashboard.
package stats

import (
	"errors"
	"math"
	"sort"

	"covid-dashboard/internal/dataset"
	"covid-dashboard/internal/models"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// DefaultAgeBins matches the dashboard age histogram.
const DefaultAgeBins = 30

// DeathChartComorbidities are the flags counted among deceased patients.
var DeathChartComorbidities = []models.Comorbidity{
	models.Pneumonia,
	models.Diabetes,
	models.Hypertension,
	models.Obesity,
}

type Summary struct {
	Patients      int     `json:"patients"`
	MeanAge       float64 `json:"mean_age"`
	HasOutcome    bool    `json:"has_outcome"`
	Deaths        int     `json:"deaths"`
	MortalityRate float64 `json:"mortality_rate"` // percent
}

type SexCount struct {
	Sex   models.Sex `json:"sex"`
	Label string     `json:"label"`
	Count int        `json:"count"`
}

type AgeBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

type ComorbidityCount struct {
	Comorbidity models.Comorbidity `json:"comorbidity"`
	Label       string             `json:"label"`
	Count       int                `json:"count"`
}

type UnitSurvival struct {
	Unit         string  `json:"unit"`
	Patients     int     `json:"patients"`
	Deaths       int     `json:"deaths"`
	SurvivalRate float64 `json:"survival_rate"` // percent
}

// Report bundles every aggregate the dashboard renders.
type Report struct {
	Summary           Summary            `json:"summary"`
	Sexes             []SexCount         `json:"sexes"`
	AgeHistogram      []AgeBin           `json:"age_histogram"`
	ComorbidityDeaths []ComorbidityCount `json:"comorbidity_deaths,omitempty"`
	SurvivalByUnit    []UnitSurvival     `json:"survival_by_unit,omitempty"`
}

// Compute runs all aggregates. Outcome-based sections are left empty when
// the dataset has no DATE_DIED column.
func Compute(d *dataset.Dataset, ageBins int) (*Report, error) {
	hist, err := AgeHistogram(d, ageBins)
	if err != nil {
		return nil, err
	}
	r := &Report{
		Summary:      Summarize(d),
		Sexes:        SexDistribution(d),
		AgeHistogram: hist,
	}
	if d.HasOutcome() {
		r.ComorbidityDeaths = ComorbidityDeaths(d)
		r.SurvivalByUnit = SurvivalByUnit(d)
	}
	return r, nil
}

func Summarize(d *dataset.Dataset) Summary {
	s := Summary{Patients: d.Len(), HasOutcome: d.HasOutcome()}
	if d.Len() == 0 {
		return s
	}

	ages := make([]float64, d.Len())
	deceased := make([]float64, d.Len())
	for i, r := range d.Records {
		ages[i] = float64(r.Age)
		if r.Deceased {
			deceased[i] = 1
			s.Deaths++
		}
	}
	s.MeanAge = stat.Mean(ages, nil)
	if s.HasOutcome {
		s.MortalityRate = stat.Mean(deceased, nil) * 100
	}
	return s
}

// SexDistribution counts female and male patients. Other codes are
// reported as a trailing Unknown entry when present.
func SexDistribution(d *dataset.Dataset) []SexCount {
	counts := map[models.Sex]int{}
	for _, r := range d.Records {
		switch r.Sex {
		case models.SexFemale, models.SexMale:
			counts[r.Sex]++
		default:
			counts[0]++
		}
	}

	out := []SexCount{
		{Sex: models.SexFemale, Label: models.SexFemale.String(), Count: counts[models.SexFemale]},
		{Sex: models.SexMale, Label: models.SexMale.String(), Count: counts[models.SexMale]},
	}
	if n := counts[0]; n > 0 {
		out = append(out, SexCount{Sex: 0, Label: models.Sex(0).String(), Count: n})
	}
	return out
}

// AgeHistogram buckets ages into equal-width bins spanning the observed
// minimum and maximum. The last bin includes the maximum.
func AgeHistogram(d *dataset.Dataset, bins int) ([]AgeBin, error) {
	if bins <= 0 {
		return nil, errors.New("histogram needs at least one bin")
	}
	if d.Len() == 0 {
		return nil, nil
	}

	ages := make([]float64, d.Len())
	for i, r := range d.Records {
		ages[i] = float64(r.Age)
	}
	sort.Float64s(ages)

	lo, hi := ages[0], ages[len(ages)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, ages, nil)

	out := make([]AgeBin, bins)
	for i := range out {
		out[i] = AgeBin{Lower: dividers[i], Upper: dividers[i+1], Count: int(counts[i])}
	}
	out[bins-1].Upper = hi
	return out, nil
}

// ComorbidityDeaths counts, among deceased patients, how many carry each
// of DeathChartComorbidities. Sorted by count descending, then label.
func ComorbidityDeaths(d *dataset.Dataset) []ComorbidityCount {
	out := make([]ComorbidityCount, len(DeathChartComorbidities))
	for i, c := range DeathChartComorbidities {
		out[i] = ComorbidityCount{Comorbidity: c, Label: c.Label()}
	}

	for _, r := range d.Records {
		if !r.Deceased {
			continue
		}
		for i, c := range DeathChartComorbidities {
			if r.Flag(c).Present() {
				out[i].Count++
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// SurvivalByUnit groups patients by institution name and reports
// (1 - mean(deceased)) * 100, sorted ascending by rate then name.
func SurvivalByUnit(d *dataset.Dataset) []UnitSurvival {
	outcomes := map[string][]float64{}
	for _, r := range d.Records {
		name := models.MedicalUnitName(r.MedicalUnit)
		v := 0.0
		if r.Deceased {
			v = 1
		}
		outcomes[name] = append(outcomes[name], v)
	}

	out := make([]UnitSurvival, 0, len(outcomes))
	for name, vals := range outcomes {
		out = append(out, UnitSurvival{
			Unit:         name,
			Patients:     len(vals),
			Deaths:       int(floats.Sum(vals)),
			SurvivalRate: (1 - stat.Mean(vals, nil)) * 100,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].SurvivalRate != out[j].SurvivalRate {
			return out[i].SurvivalRate < out[j].SurvivalRate
		}
		return out[i].Unit < out[j].Unit
	})
	return out
}
