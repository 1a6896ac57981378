// Package dataset reads the cleaned COVID-19 patient file and keeps it in
// memory for the lifetime of the process.
package dataset

import (
	"errors"

	"covid-dashboard/internal/models"
)

// DeathSentinel is the DATE_DIED placeholder for patients who survived.
const DeathSentinel = "9999-99-99"

// DefaultFile is the dataset file name looked up in the working directory.
const DefaultFile = "covid19_data_nettoye.csv"

const (
	ColAge         = "AGE"
	ColSex         = "SEX"
	ColMedicalUnit = "MEDICAL_UNIT"
	ColDateDied    = "DATE_DIED"
)

var ErrDatasetNotFound = errors.New("dataset file not found")

// IsDeceased reports whether a DATE_DIED value records a death.
func IsDeceased(dateDied string) bool {
	return dateDied != DeathSentinel
}

// Dataset is an immutable set of patient records.
type Dataset struct {
	Records []models.PatientRecord
	columns map[string]bool
}

// New builds a dataset from already parsed records. columns names the
// source columns that were present.
func New(records []models.PatientRecord, columns ...string) *Dataset {
	d := &Dataset{Records: records, columns: make(map[string]bool, len(columns))}
	for _, c := range columns {
		d.columns[c] = true
	}
	return d
}

func (d *Dataset) Len() int {
	return len(d.Records)
}

func (d *Dataset) HasColumn(name string) bool {
	return d.columns[name]
}

// HasOutcome reports whether the deceased flag was derived for the records.
func (d *Dataset) HasOutcome() bool {
	return d.columns[ColDateDied]
}
