package collector

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/mattn/go-sqlite3"
)

const schema = `
CREATE TABLE IF NOT EXISTS readings (
  sensorname    TEXT    NOT NULL,
  time          INTEGER NOT NULL,
  temperature_c REAL    NOT NULL,
  humidity_pct  REAL    NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_readings_sensor_time ON readings(sensorname, time);
`

const insertReadingSQL = `
INSERT INTO readings (sensorname, time, temperature_c, humidity_pct) VALUES (?, ?, ?, ?)
`

// Reading is one stored sample.
type Reading struct {
	Time         int64
	TemperatureC float64
	HumidityPct  float64
}

// Store persists uploaded batches in sqlite. The schema is created on open.
type Store struct {
	db *sql.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open db %s: %w", path, err)
	}
	// sqlite does best with a single writer.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("close db after schema failure", "error", closeErr)
		}
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// InsertBatch writes all readings of one upload in a single transaction, in
// the order they arrived.
func (s *Store) InsertBatch(sensorName string, readings []Reading) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin insert batch: %w", err)
	}
	for _, r := range readings {
		if _, err := tx.Exec(insertReadingSQL, sensorName, r.Time, r.TemperatureC, r.HumidityPct); err != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.Error("rollback insert batch", "error", rbErr)
			}
			return fmt.Errorf("insert reading: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert batch: %w", err)
	}
	return nil
}

// CountReadings reports how many readings a sensor has stored.
func (s *Store) CountReadings(sensorName string) (int, error) {
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM readings WHERE sensorname = ?`, sensorName).Scan(&n)
	return n, err
}

func (s *Store) Close() error { return s.db.Close() }
