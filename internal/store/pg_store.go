package store

import (
	"context"
	"database/sql"
	"fmt"

	"covid-dashboard/internal/dataset"
	"covid-dashboard/internal/db"
	"covid-dashboard/internal/models"

	_ "github.com/lib/pq"
)

// PostgresStore reads patient records from the patients table. It is a
// dataset.Source and never writes.
type PostgresStore struct {
	q *db.Queries
}

func NewPostgresStore(conn *sql.DB) *PostgresStore {
	return &PostgresStore{q: db.New(conn)}
}

// Open connects with the lib/pq driver and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	conn, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return conn, nil
}

func (s *PostgresStore) Load(ctx context.Context) (*dataset.Dataset, error) {
	rows, err := s.q.ListPatients(ctx)
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}

	records := make([]models.PatientRecord, len(rows))
	for i, r := range rows {
		// A NULL date_died is a survivor, same as the CSV sentinel.
		dateDied := dataset.DeathSentinel
		if r.DateDied.Valid {
			dateDied = r.DateDied.String
		}
		rec := models.PatientRecord{
			Age:         int(r.Age),
			Sex:         models.Sex(r.Sex),
			MedicalUnit: int(r.MedicalUnit),
			DateDied:    dateDied,
			Deceased:    dataset.IsDeceased(dateDied),
		}
		rec.SetFlag(models.Pneumonia, models.Flag(r.Pneumonia))
		rec.SetFlag(models.Diabetes, models.Flag(r.Diabetes))
		rec.SetFlag(models.Hypertension, models.Flag(r.Hypertension))
		rec.SetFlag(models.Obesity, models.Flag(r.Obesity))
		rec.SetFlag(models.Cardiovascular, models.Flag(r.Cardiovascular))
		rec.SetFlag(models.RenalChronic, models.Flag(r.RenalChronic))
		rec.SetFlag(models.Tobacco, models.Flag(r.Tobacco))
		rec.SetFlag(models.Asthma, models.Flag(r.Asthma))
		records[i] = rec
	}

	columns := []string{dataset.ColAge, dataset.ColSex, dataset.ColMedicalUnit, dataset.ColDateDied}
	for _, c := range models.Comorbidities {
		columns = append(columns, c.Column())
	}
	return dataset.New(records, columns...), nil
}
