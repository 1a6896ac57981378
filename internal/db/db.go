package db

import (
	"context"
	"database/sql"
)

// Patient mirrors a row of the patients table.
type Patient struct {
	Age            int32
	Sex            int32
	MedicalUnit    int32
	DateDied       sql.NullString
	Pneumonia      int32
	Diabetes       int32
	Hypertension   int32
	Obesity        int32
	Cardiovascular int32
	RenalChronic   int32
	Tobacco        int32
	Asthma         int32
}

// Queries interface mimicking sqlc generated code
type Queries struct {
	db *sql.DB
}

func New(db *sql.DB) *Queries {
	return &Queries{db: db}
}

const listPatients = `SELECT age, sex, medical_unit, date_died, pneumonia, diabetes, hipertension, obesity, cardiovascular, renal_chronic, tobacco, asthma FROM patients`

func (q *Queries) ListPatients(ctx context.Context) ([]Patient, error) {
	rows, err := q.db.QueryContext(ctx, listPatients)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Patient
	for rows.Next() {
		var i Patient
		if err := rows.Scan(&i.Age, &i.Sex, &i.MedicalUnit, &i.DateDied, &i.Pneumonia, &i.Diabetes, &i.Hypertension,
			&i.Obesity, &i.Cardiovascular, &i.RenalChronic, &i.Tobacco, &i.Asthma); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
