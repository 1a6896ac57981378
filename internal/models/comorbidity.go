package models

type Comorbidity string

const (
	Pneumonia      Comorbidity = "pneumonia"
	Diabetes       Comorbidity = "diabetes"
	Hypertension   Comorbidity = "hypertension"
	Obesity        Comorbidity = "obesity"
	Cardiovascular Comorbidity = "cardiovascular"
	RenalChronic   Comorbidity = "renal_chronic"
	Tobacco        Comorbidity = "tobacco"
	Asthma         Comorbidity = "asthma"
)

// Comorbidities lists every tracked flag in form order.
var Comorbidities = []Comorbidity{
	Pneumonia, Diabetes, Hypertension, Cardiovascular, Obesity, RenalChronic, Tobacco, Asthma,
}

var comorbidityLabels = map[Comorbidity]string{
	Pneumonia:      "Pneumonia",
	Diabetes:       "Diabetes",
	Hypertension:   "Hypertension",
	Obesity:        "Obesity",
	Cardiovascular: "Cardiovascular disease",
	RenalChronic:   "Chronic renal failure",
	Tobacco:        "Smoking",
	Asthma:         "Asthma",
}

// The dataset keeps the original Spanish spelling of HIPERTENSION.
var comorbidityColumns = map[Comorbidity]string{
	Pneumonia:      "PNEUMONIA",
	Diabetes:       "DIABETES",
	Hypertension:   "HIPERTENSION",
	Obesity:        "OBESITY",
	Cardiovascular: "CARDIOVASCULAR",
	RenalChronic:   "RENAL_CHRONIC",
	Tobacco:        "TOBACCO",
	Asthma:         "ASTHMA",
}

func (c Comorbidity) Label() string {
	if l, ok := comorbidityLabels[c]; ok {
		return l
	}
	return string(c)
}

// Column is the CSV header carrying this flag.
func (c Comorbidity) Column() string {
	return comorbidityColumns[c]
}
