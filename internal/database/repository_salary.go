package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// GetSalarySettings retrieves the global payroll settings, creating the
// default row on first access
func (r *Repository) GetSalarySettings(ctx context.Context) (*SalarySettings, error) {
	query := `
		SELECT id, base_percent, min_requests_per_day, bonus_percent, bonus_requests_threshold, updated_at
		FROM salary_settings
		ORDER BY id
		LIMIT 1
	`
	settings := &SalarySettings{}
	err := r.q.QueryRow(ctx, query).Scan(
		&settings.ID, &settings.BasePercent, &settings.MinRequestsPerDay,
		&settings.BonusPercent, &settings.BonusRequestsThreshold, &settings.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return r.createDefaultSalarySettings(ctx)
	}
	if err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *Repository) createDefaultSalarySettings(ctx context.Context) (*SalarySettings, error) {
	settings := &SalarySettings{BasePercent: 30}
	query := `
		INSERT INTO salary_settings (base_percent, min_requests_per_day, bonus_percent, bonus_requests_threshold)
		VALUES ($1, $2, $3, $4)
		RETURNING id, updated_at
	`
	err := r.q.QueryRow(
		ctx, query,
		settings.BasePercent, settings.MinRequestsPerDay,
		settings.BonusPercent, settings.BonusRequestsThreshold,
	).Scan(&settings.ID, &settings.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return settings, nil
}

// UpdateSalarySettings updates the global payroll settings
func (r *Repository) UpdateSalarySettings(ctx context.Context, settings *SalarySettings) error {
	if _, err := r.GetSalarySettings(ctx); err != nil {
		return err
	}
	query := `
		UPDATE salary_settings
		SET base_percent = $1, min_requests_per_day = $2, bonus_percent = $3,
		    bonus_requests_threshold = $4, updated_at = CURRENT_TIMESTAMP
		WHERE id = (SELECT id FROM salary_settings ORDER BY id LIMIT 1)
	`
	_, err := r.q.Exec(
		ctx, query,
		settings.BasePercent, settings.MinRequestsPerDay,
		settings.BonusPercent, settings.BonusRequestsThreshold,
	)
	return err
}

// ============================================================================
// SCAM HISTORY
// ============================================================================

// UpsertScamHistory synchronizes the scam trail with a report: nonzero scam
// amounts insert or refresh the row, zero removes it
func (r *Repository) UpsertScamHistory(ctx context.Context, report *ShiftReport) error {
	if report.ScamAmount == 0 {
		_, err := r.q.Exec(ctx, `DELETE FROM employee_scam_history WHERE shift_report_id = $1`, report.ID)
		return err
	}

	query := `
		UPDATE employee_scam_history
		SET employee_id = $2, amount = $3, comment = $4, date = $5
		WHERE shift_report_id = $1
	`
	tag, err := r.q.Exec(
		ctx, query,
		report.ID, report.EmployeeID, report.ScamAmount, report.ScamComment, report.ShiftDate,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	insert := `
		INSERT INTO employee_scam_history (employee_id, shift_report_id, amount, comment, date)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err = r.q.Exec(
		ctx, insert,
		report.EmployeeID, report.ID, report.ScamAmount, report.ScamComment, report.ShiftDate,
	)
	return err
}

// ListScamHistory retrieves an employee's scam records, newest first
func (r *Repository) ListScamHistory(ctx context.Context, employeeID int64) ([]*EmployeeScamHistory, error) {
	query := `
		SELECT id, employee_id, shift_report_id, amount, comment, date, created_at
		FROM employee_scam_history
		WHERE employee_id = $1
		ORDER BY date DESC, id DESC
	`
	return r.queryScamHistory(ctx, query, employeeID)
}

// ListScamHistoryForPeriod retrieves all scam records in a period
func (r *Repository) ListScamHistoryForPeriod(ctx context.Context, from, to time.Time) ([]*EmployeeScamHistory, error) {
	query := `
		SELECT id, employee_id, shift_report_id, amount, comment, date, created_at
		FROM employee_scam_history
		WHERE ($1::date IS NULL OR date >= $1)
		  AND ($2::date IS NULL OR date <= $2)
		ORDER BY date DESC, id DESC
	`
	return r.queryScamHistory(ctx, query, dateArg(from), dateArg(to))
}

func (r *Repository) queryScamHistory(ctx context.Context, query string, args ...any) ([]*EmployeeScamHistory, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*EmployeeScamHistory
	for rows.Next() {
		h := &EmployeeScamHistory{}
		if err := rows.Scan(
			&h.ID, &h.EmployeeID, &h.ShiftReportID, &h.Amount, &h.Comment, &h.Date, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
