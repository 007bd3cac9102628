package store

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/voltwatch/voltwatch/internal/telemetry"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func TestReadingRoundtrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	in := telemetry.Reading{
		BatteryID: "B1", Voltage: 3.72, Current: -1.4,
		Temperature: 27.5, SoC: 64, Timestamp: t0,
	}
	if err := s.SaveReading(ctx, in); err != nil {
		t.Fatalf("SaveReading: %v", err)
	}

	got, err := s.QueryReadings(ctx, "B1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("QueryReadings: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("QueryReadings: got %d rows, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0], in) {
		t.Errorf("roundtrip: got %+v, want %+v", got[0], in)
	}
}

func TestQueryReadings_Range(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		r := telemetry.Reading{
			BatteryID: "B1", Voltage: 3.7, SoC: 50,
			Timestamp: t0.Add(time.Duration(i) * time.Hour),
		}
		if err := s.SaveReading(ctx, r); err != nil {
			t.Fatalf("SaveReading: %v", err)
		}
	}
	// Another battery's rows must never surface.
	if err := s.SaveReading(ctx, telemetry.Reading{BatteryID: "B2", Timestamp: t0}); err != nil {
		t.Fatalf("SaveReading: %v", err)
	}

	tests := []struct {
		name       string
		start, end time.Time
		want       int
	}{
		{"all history", time.Time{}, time.Time{}, 5},
		{"closed range", t0.Add(time.Hour), t0.Add(3 * time.Hour), 3},
		{"open start", time.Time{}, t0.Add(time.Hour), 2},
		{"open end", t0.Add(3 * time.Hour), time.Time{}, 2},
		{"bounds inclusive", t0, t0, 1},
		{"empty range", t0.Add(10 * time.Hour), time.Time{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.QueryReadings(ctx, "B1", tt.start, tt.end)
			if err != nil {
				t.Fatalf("QueryReadings: %v", err)
			}
			if len(got) != tt.want {
				t.Errorf("rows: got %d, want %d", len(got), tt.want)
			}
			for i := 1; i < len(got); i++ {
				if got[i].Timestamp.Before(got[i-1].Timestamp) {
					t.Error("rows out of timestamp order")
				}
			}
		})
	}
}

func TestHealthHistoryRoundtrip(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	in := telemetry.HealthPrediction{
		BatteryID:         "B1",
		HealthScore:       72.5,
		RemainingCapacity: 78,
		EstimatedLifetime: 190,
		Status:            telemetry.HealthFair,
		Recommendations:   []string{"a", "b", "c"},
		Timestamp:         t0,
	}
	if err := s.SaveHealthPrediction(ctx, in); err != nil {
		t.Fatalf("SaveHealthPrediction: %v", err)
	}

	got, err := s.QueryHealthHistory(ctx, "B1", time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("QueryHealthHistory: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("QueryHealthHistory: got %d rows, want 1", len(got))
	}
	if !reflect.DeepEqual(got[0], in) {
		t.Errorf("roundtrip: got %+v, want %+v", got[0], in)
	}
}

func TestSaveAlert(t *testing.T) {
	s := openTestDB(t)

	err := s.SaveAlert(context.Background(), telemetry.Alert{
		BatteryID: "B1",
		Type:      telemetry.AlertLowVoltage,
		Severity:  telemetry.SeveritySevere,
		Message:   "battery voltage below critical threshold: 2.80V",
		Timestamp: t0,
	})
	if err != nil {
		t.Fatalf("SaveAlert: %v", err)
	}
}

func TestBatteryRegistry(t *testing.T) {
	s := openTestDB(t)
	ctx := context.Background()

	_, err := s.GetBattery(ctx, "B1")
	if !errors.Is(err, telemetry.ErrNotFound) {
		t.Fatalf("GetBattery on empty registry: got %v, want ErrNotFound", err)
	}

	b := telemetry.Battery{
		ID: "B1", Name: "rack-1", Type: "LiFePO4", Capacity: 100,
		Manufacturer: "ACME", InstallationDate: t0, Status: telemetry.StatusActive,
	}
	if err := s.PutBattery(ctx, b); err != nil {
		t.Fatalf("PutBattery: %v", err)
	}

	got, err := s.GetBattery(ctx, "B1")
	if err != nil {
		t.Fatalf("GetBattery: %v", err)
	}
	if !reflect.DeepEqual(got, b) {
		t.Errorf("GetBattery: got %+v, want %+v", got, b)
	}

	// Upsert replaces, not duplicates.
	b.Status = telemetry.StatusMaintenance
	if err := s.PutBattery(ctx, b); err != nil {
		t.Fatalf("PutBattery upsert: %v", err)
	}
	list, err := s.ListBatteries(ctx)
	if err != nil {
		t.Fatalf("ListBatteries: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListBatteries: got %d, want 1 after upsert", len(list))
	}
	if list[0].Status != telemetry.StatusMaintenance {
		t.Errorf("Status after upsert: got %q, want MAINTENANCE", list[0].Status)
	}
}

func TestContextTimeout(t *testing.T) {
	s := openTestDB(t)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	err := s.SaveReading(ctx, telemetry.Reading{BatteryID: "B1", Timestamp: t0})
	if !errors.Is(err, telemetry.ErrDependencyTimeout) {
		t.Errorf("SaveReading past deadline: got %v, want ErrDependencyTimeout", err)
	}
}
