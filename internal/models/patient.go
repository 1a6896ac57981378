package models

// Sex codes as they appear in the SEX column.
type Sex int

const (
	SexFemale Sex = 1
	SexMale   Sex = 2
)

func (s Sex) String() string {
	switch s {
	case SexFemale:
		return "Female"
	case SexMale:
		return "Male"
	default:
		return "Unknown"
	}
}

// Flag is a raw comorbidity code: 1 yes, 2 no, 97/98/99 unknown.
type Flag int

const (
	FlagYes Flag = 1
	FlagNo  Flag = 2
)

func (f Flag) Present() bool {
	return f == FlagYes
}

type PatientRecord struct {
	Age            int    `json:"age"`
	Sex            Sex    `json:"sex"`
	MedicalUnit    int    `json:"medical_unit"`
	DateDied       string `json:"date_died"`
	Pneumonia      Flag   `json:"pneumonia"`
	Diabetes       Flag   `json:"diabetes"`
	Hypertension   Flag   `json:"hypertension"`
	Obesity        Flag   `json:"obesity"`
	Cardiovascular Flag   `json:"cardiovascular"`
	RenalChronic   Flag   `json:"renal_chronic"`
	Tobacco        Flag   `json:"tobacco"`
	Asthma         Flag   `json:"asthma"`
	Deceased       bool   `json:"deceased"` // derived from DateDied on load
}

// Flag returns the raw code stored for the given comorbidity.
func (p *PatientRecord) Flag(c Comorbidity) Flag {
	switch c {
	case Pneumonia:
		return p.Pneumonia
	case Diabetes:
		return p.Diabetes
	case Hypertension:
		return p.Hypertension
	case Obesity:
		return p.Obesity
	case Cardiovascular:
		return p.Cardiovascular
	case RenalChronic:
		return p.RenalChronic
	case Tobacco:
		return p.Tobacco
	case Asthma:
		return p.Asthma
	}
	return 0
}

// SetFlag stores a raw code for the given comorbidity.
func (p *PatientRecord) SetFlag(c Comorbidity, f Flag) {
	switch c {
	case Pneumonia:
		p.Pneumonia = f
	case Diabetes:
		p.Diabetes = f
	case Hypertension:
		p.Hypertension = f
	case Obesity:
		p.Obesity = f
	case Cardiovascular:
		p.Cardiovascular = f
	case RenalChronic:
		p.RenalChronic = f
	case Tobacco:
		p.Tobacco = f
	case Asthma:
		p.Asthma = f
	}
}
