package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	"github.com/raccog/HydroManager/internal/modules/hydro/types"
)

//go:embed sql/insert-reading.sql
var insertReadingSQL string

//go:embed sql/insert-pulse.sql
var insertPulseSQL string

//go:embed sql/list-readings.sql
var listReadingsSQL string

//go:embed sql/list-pulses.sql
var listPulsesSQL string

//go:embed sql/count-readings.sql
var countReadingsSQL string

//go:embed sql/count-pulses.sql
var countPulsesSQL string

type HydroRepository interface {
	// InsertPoll stores one poll's worth of rows in a single transaction:
	// every pulse row and then the reading row, committed once. On any error
	// nothing is stored.
	InsertPoll(ctx context.Context, reading types.SensorReading, pulses []types.PumpPulse) error
	ListReadings(ctx context.Context) ([]types.SensorReading, error)
	ListPulses(ctx context.Context) ([]types.PumpPulse, error)
	CountReadings(ctx context.Context) (int, error)
	CountPulses(ctx context.Context) (int, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) HydroRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) InsertPoll(ctx context.Context, reading types.SensorReading, pulses []types.PumpPulse) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin poll tx: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && rollbackErr != sql.ErrTxDone {
			slog.Error("rollback poll tx", "error", rollbackErr)
		}
	}()

	for _, p := range pulses {
		_, err := tx.ExecContext(ctx, insertPulseSQL,
			p.Time.UTC().Format(time.RFC3339Nano), p.PumpID, p.Length, p.Interrupted,
		)
		if err != nil {
			return fmt.Errorf("insert pulse: %w", err)
		}
	}

	_, err = tx.ExecContext(ctx, insertReadingSQL,
		reading.Time.UTC().Format(time.RFC3339Nano), reading.SensorID, reading.Value, reading.TypeIndex,
	)
	if err != nil {
		return fmt.Errorf("insert reading: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit poll: %w", err)
	}
	return nil
}

func (r *repositoryImpl) ListReadings(ctx context.Context) ([]types.SensorReading, error) {
	rows, err := r.db.QueryContext(ctx, listReadingsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close readings rows", "error", err)
		}
	}()
	var out []types.SensorReading
	for rows.Next() {
		var rec types.SensorReading
		var ts string
		if err := rows.Scan(&ts, &rec.SensorID, &rec.Value, &rec.TypeIndex); err != nil {
			return nil, err
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		rec.Time = t
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) ListPulses(ctx context.Context) ([]types.PumpPulse, error) {
	rows, err := r.db.QueryContext(ctx, listPulsesSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close pulses rows", "error", err)
		}
	}()
	var out []types.PumpPulse
	for rows.Next() {
		var rec types.PumpPulse
		var ts string
		if err := rows.Scan(&ts, &rec.PumpID, &rec.Length, &rec.Interrupted); err != nil {
			return nil, err
		}
		t, err := parseTimestamp(ts)
		if err != nil {
			return nil, err
		}
		rec.Time = t
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) CountReadings(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countReadingsSQL).Scan(&n)
	return n, err
}

func (r *repositoryImpl) CountPulses(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, countPulsesSQL).Scan(&n)
	return n, err
}

func parseTimestamp(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		var err2 error
		t, err2 = time.Parse(time.RFC3339, ts)
		if err2 != nil {
			return time.Time{}, fmt.Errorf("parse timestamp %q: RFC3339Nano: %w; RFC3339: %w", ts, err, err2)
		}
	}
	return t, nil
}
