package reports

import (
	"strings"
	"testing"
	"time"

	"arbitrage-shift-tracker/internal/balance"
	"arbitrage-shift-tracker/internal/database"
)

func tp(t time.Time) *time.Time { return &t }

func validReport() *database.ShiftReport {
	return &database.ShiftReport{
		EmployeeID: 42,
		ShiftDate:  time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		ShiftType:  database.ShiftMorning,
	}
}

func TestValidate(t *testing.T) {
	day := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		mutate  func(*database.ShiftReport)
		wantErr string
	}{
		{
			name:   "complete report",
			mutate: func(r *database.ShiftReport) {},
		},
		{
			name: "with ordered window",
			mutate: func(r *database.ShiftReport) {
				r.ShiftStartTime = tp(day.Add(8 * time.Hour))
				r.ShiftEndTime = tp(day.Add(20 * time.Hour))
			},
		},
		{
			name:    "missing employee",
			mutate:  func(r *database.ShiftReport) { r.EmployeeID = 0 },
			wantErr: "employee_id",
		},
		{
			name:    "bad shift type",
			mutate:  func(r *database.ShiftReport) { r.ShiftType = "night" },
			wantErr: "shift_type",
		},
		{
			name:    "missing shift date",
			mutate:  func(r *database.ShiftReport) { r.ShiftDate = time.Time{} },
			wantErr: "shift_date",
		},
		{
			name: "inverted window",
			mutate: func(r *database.ShiftReport) {
				r.ShiftStartTime = tp(day.Add(20 * time.Hour))
				r.ShiftEndTime = tp(day.Add(12 * time.Hour))
			},
			wantErr: "shift_start_time must be before shift_end_time",
		},
		{
			name: "zero-length window",
			mutate: func(r *database.ShiftReport) {
				r.ShiftStartTime = tp(day.Add(12 * time.Hour))
				r.ShiftEndTime = tp(day.Add(12 * time.Hour))
			},
			wantErr: "shift_start_time must be before shift_end_time",
		},
		{
			name: "start only is allowed",
			mutate: func(r *database.ShiftReport) {
				r.ShiftStartTime = tp(day.Add(20 * time.Hour))
			},
		},
		{
			name: "unknown platform in balances",
			mutate: func(r *database.ShiftReport) {
				r.Balances = balance.Snapshot{"binance": nil}
			},
			wantErr: "unsupported platform",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report := validReport()
			tt.mutate(report)

			err := validate(report)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("validate() = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}
