package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/voltwatch/voltwatch/internal/telemetry"
)

// SQLite implements Store and Registry on a local sqlite database.
// Timestamps are stored as Unix milliseconds.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path and runs migrations.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %q: %w", path, err)
	}
	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: migrate %q: %w", path, err)
	}
	return s, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error { return s.db.Close() }

func (s *SQLite) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS batteries (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		capacity REAL NOT NULL,
		manufacturer TEXT NOT NULL,
		installation_date INTEGER NOT NULL,
		status TEXT NOT NULL DEFAULT 'ACTIVE'
	);

	CREATE TABLE IF NOT EXISTS readings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		battery_id TEXT NOT NULL,
		voltage REAL NOT NULL,
		current REAL NOT NULL,
		temperature REAL NOT NULL,
		soc REAL NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_readings_battery_ts ON readings(battery_id, timestamp);

	CREATE TABLE IF NOT EXISTS alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		battery_id TEXT NOT NULL,
		alert_type TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_alerts_battery_ts ON alerts(battery_id, timestamp);

	CREATE TABLE IF NOT EXISTS health_predictions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		battery_id TEXT NOT NULL,
		health_score REAL NOT NULL,
		remaining_capacity REAL NOT NULL,
		estimated_lifetime INTEGER NOT NULL,
		status TEXT NOT NULL,
		recommendations TEXT NOT NULL,
		timestamp INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_health_battery_ts ON health_predictions(battery_id, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

// wrapErr maps a driver failure onto the engine's error taxonomy.
func wrapErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("store: %s: %w", op, telemetry.ErrDependencyTimeout)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("store: %s: %w", op, err)
	}
	return fmt.Errorf("store: %s: %v: %w", op, err, telemetry.ErrStoreUnavailable)
}

func (s *SQLite) SaveReading(ctx context.Context, r telemetry.Reading) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO readings (battery_id, voltage, current, temperature, soc, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.BatteryID, r.Voltage, r.Current, r.Temperature, r.SoC, r.Timestamp.UnixMilli())
	if err != nil {
		return wrapErr("save reading", err)
	}
	return nil
}

func (s *SQLite) SaveAlert(ctx context.Context, a telemetry.Alert) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO alerts (battery_id, alert_type, severity, message, timestamp)
		 VALUES (?, ?, ?, ?, ?)`,
		a.BatteryID, a.Type, a.Severity, a.Message, a.Timestamp.UnixMilli())
	if err != nil {
		return wrapErr("save alert", err)
	}
	return nil
}

func (s *SQLite) SaveHealthPrediction(ctx context.Context, p telemetry.HealthPrediction) error {
	recs, err := json.Marshal(p.Recommendations)
	if err != nil {
		return fmt.Errorf("store: save health prediction: marshal recommendations: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO health_predictions
		 (battery_id, health_score, remaining_capacity, estimated_lifetime, status, recommendations, timestamp)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		p.BatteryID, p.HealthScore, p.RemainingCapacity, p.EstimatedLifetime,
		p.Status, string(recs), p.Timestamp.UnixMilli())
	if err != nil {
		return wrapErr("save health prediction", err)
	}
	return nil
}

func (s *SQLite) QueryReadings(ctx context.Context, batteryID string, start, end time.Time) ([]telemetry.Reading, error) {
	q := `SELECT voltage, current, temperature, soc, timestamp
	      FROM readings WHERE battery_id = ?`
	args := []any{batteryID}
	if !start.IsZero() {
		q += ` AND timestamp >= ?`
		args = append(args, start.UnixMilli())
	}
	if !end.IsZero() {
		q += ` AND timestamp <= ?`
		args = append(args, end.UnixMilli())
	}
	q += ` ORDER BY timestamp`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapErr("query readings", err)
	}
	defer rows.Close()

	var out []telemetry.Reading
	for rows.Next() {
		var r telemetry.Reading
		var ts int64
		if err := rows.Scan(&r.Voltage, &r.Current, &r.Temperature, &r.SoC, &ts); err != nil {
			return nil, wrapErr("scan reading", err)
		}
		r.BatteryID = batteryID
		r.Timestamp = time.UnixMilli(ts).UTC()
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("query readings", err)
	}
	return out, nil
}

func (s *SQLite) QueryHealthHistory(ctx context.Context, batteryID string, start, end time.Time) ([]telemetry.HealthPrediction, error) {
	q := `SELECT health_score, remaining_capacity, estimated_lifetime, status, recommendations, timestamp
	      FROM health_predictions WHERE battery_id = ?`
	args := []any{batteryID}
	if !start.IsZero() {
		q += ` AND timestamp >= ?`
		args = append(args, start.UnixMilli())
	}
	if !end.IsZero() {
		q += ` AND timestamp <= ?`
		args = append(args, end.UnixMilli())
	}
	q += ` ORDER BY timestamp`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, wrapErr("query health history", err)
	}
	defer rows.Close()

	var out []telemetry.HealthPrediction
	for rows.Next() {
		var p telemetry.HealthPrediction
		var recs string
		var ts int64
		if err := rows.Scan(&p.HealthScore, &p.RemainingCapacity, &p.EstimatedLifetime, &p.Status, &recs, &ts); err != nil {
			return nil, wrapErr("scan health prediction", err)
		}
		p.BatteryID = batteryID
		p.Timestamp = time.UnixMilli(ts).UTC()
		if err := json.Unmarshal([]byte(recs), &p.Recommendations); err != nil {
			return nil, fmt.Errorf("store: decode recommendations: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("query health history", err)
	}
	return out, nil
}

func (s *SQLite) GetBattery(ctx context.Context, id string) (telemetry.Battery, error) {
	var b telemetry.Battery
	var installed int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, type, capacity, manufacturer, installation_date, status
		 FROM batteries WHERE id = ?`, id).
		Scan(&b.ID, &b.Name, &b.Type, &b.Capacity, &b.Manufacturer, &installed, &b.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return telemetry.Battery{}, fmt.Errorf("battery %q: %w", id, telemetry.ErrNotFound)
	}
	if err != nil {
		return telemetry.Battery{}, wrapErr("get battery", err)
	}
	b.InstallationDate = time.UnixMilli(installed).UTC()
	return b, nil
}

func (s *SQLite) PutBattery(ctx context.Context, b telemetry.Battery) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO batteries (id, name, type, capacity, manufacturer, installation_date, status)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			capacity = excluded.capacity,
			manufacturer = excluded.manufacturer,
			installation_date = excluded.installation_date,
			status = excluded.status`,
		b.ID, b.Name, b.Type, b.Capacity, b.Manufacturer, b.InstallationDate.UnixMilli(), b.Status)
	if err != nil {
		return wrapErr("put battery", err)
	}
	return nil
}

func (s *SQLite) ListBatteries(ctx context.Context) ([]telemetry.Battery, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, type, capacity, manufacturer, installation_date, status
		 FROM batteries ORDER BY id`)
	if err != nil {
		return nil, wrapErr("list batteries", err)
	}
	defer rows.Close()

	var out []telemetry.Battery
	for rows.Next() {
		var b telemetry.Battery
		var installed int64
		if err := rows.Scan(&b.ID, &b.Name, &b.Type, &b.Capacity, &b.Manufacturer, &installed, &b.Status); err != nil {
			return nil, wrapErr("scan battery", err)
		}
		b.InstallationDate = time.UnixMilli(installed).UTC()
		out = append(out, b)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr("list batteries", err)
	}
	return out, nil
}
