package models

type RiskLevel string

const (
	RiskLow  RiskLevel = "low"
	RiskHigh RiskLevel = "high"
)

// PatientInput is what the prediction form collects.
type PatientInput struct {
	Age           int                  `json:"age"`
	Sex           Sex                  `json:"sex"`
	Comorbidities map[Comorbidity]bool `json:"comorbidities"`
}

func (in *PatientInput) Has(c Comorbidity) bool {
	return in.Comorbidities[c]
}

type Assessment struct {
	Level    RiskLevel `json:"level"`
	Headline string    `json:"headline"`
	Advice   string    `json:"advice"`
	Reasons  []string  `json:"reasons"`
}

func (a *Assessment) High() bool {
	return a.Level == RiskHigh
}
