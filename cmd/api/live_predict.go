package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"net/http"
	"strconv"
	"strings"

	"covid-dashboard/internal/models"
	"covid-dashboard/internal/risk"

	"github.com/starfederation/datastar-go/datastar"
)

// sliderValue accepts the age signal as a JSON number or a string, since a
// bound range input reports its value as text.
type sliderValue int

func (v *sliderValue) UnmarshalJSON(b []byte) error {
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n = json.Number(s)
	}
	i, err := strconv.Atoi(strings.TrimSpace(n.String()))
	if err != nil {
		return fmt.Errorf("age must be a whole number: %q", n.String())
	}
	*v = sliderValue(i)
	return nil
}

type PredictSignals struct {
	Age            sliderValue `json:"age"`
	Sex            string      `json:"sex"`
	Pneumonia      bool        `json:"pneumonia"`
	Diabetes       bool        `json:"diabetes"`
	Hypertension   bool        `json:"hypertension"`
	Cardiovascular bool        `json:"cardiovascular"`
	Obesity        bool        `json:"obesity"`
	RenalChronic   bool        `json:"renal_chronic"`
	Tobacco        bool        `json:"tobacco"`
	Asthma         bool        `json:"asthma"`
}

func (s *PredictSignals) input() *models.PatientInput {
	in := &models.PatientInput{
		Age: int(s.Age),
		Sex: models.SexFemale,
		Comorbidities: map[models.Comorbidity]bool{
			models.Pneumonia:      s.Pneumonia,
			models.Diabetes:       s.Diabetes,
			models.Hypertension:   s.Hypertension,
			models.Cardiovascular: s.Cardiovascular,
			models.Obesity:        s.Obesity,
			models.RenalChronic:   s.RenalChronic,
			models.Tobacco:        s.Tobacco,
			models.Asthma:         s.Asthma,
		},
	}
	if s.Sex == "male" {
		in.Sex = models.SexMale
	}
	return in
}

// handleLivePredict evaluates the form signals and patches #risk-result.
func handleLivePredict(w http.ResponseWriter, r *http.Request) {
	signals := &PredictSignals{Age: risk.DefaultAge}
	if err := datastar.ReadSignals(r, signals); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := loader.Get(r.Context()); err != nil {
		sse := datastar.NewSSE(w, r)
		sse.PatchElements(fmt.Sprintf(`<div id="risk-result" class="warning">%s</div>`,
			html.EscapeString(newWarningData(err).Message())))
		return
	}

	assessment, err := engine.Assess(signals.input())
	if errors.Is(err, risk.ErrInvalidAge) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Assessment Failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	sse := datastar.NewSSE(w, r)
	sse.PatchElements(renderAssessment(assessment))
}

func renderAssessment(a *models.Assessment) string {
	class := "success"
	if a.High() {
		class = "error"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<div id="risk-result" class="risk %s" data-level="%s">`, class, a.Level))
	sb.WriteString(fmt.Sprintf(`<h6><strong>Result: %s</strong></h6>`, html.EscapeString(a.Headline)))
	sb.WriteString(fmt.Sprintf(`<p>%s</p>`, html.EscapeString(a.Advice)))
	if len(a.Reasons) > 0 {
		sb.WriteString(`<ul class="reasons">`)
		for _, reason := range a.Reasons {
			sb.WriteString(fmt.Sprintf(`<li>%s</li>`, html.EscapeString(reason)))
		}
		sb.WriteString(`</ul>`)
	}
	sb.WriteString("</div>")
	return sb.String()
}
