package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"arbitrage-shift-tracker/internal/balance"
)

const shiftReportColumns = `
	id, employee_id, shift_date, shift_type, total_requests, balances,
	scam_amount, scam_comment, scam_personal,
	dokidka_amount, dokidka_comment,
	internal_transfer_amount, internal_transfer_comment,
	appeal_amount, appeal_comment, appeal_deducted,
	bybit_requests, htx_requests, bliss_requests,
	bybit_file, htx_file, bliss_file,
	start_photo, end_photo,
	shift_start_time, shift_end_time,
	created_at, updated_at`

// CreateShiftReport inserts a new shift report
func (r *Repository) CreateShiftReport(ctx context.Context, report *ShiftReport) error {
	balances, err := report.Balances.Marshal()
	if err != nil {
		return err
	}
	query := `
		INSERT INTO shift_reports (
			employee_id, shift_date, shift_type, total_requests, balances,
			scam_amount, scam_comment, scam_personal,
			dokidka_amount, dokidka_comment,
			internal_transfer_amount, internal_transfer_comment,
			appeal_amount, appeal_comment, appeal_deducted,
			bybit_requests, htx_requests, bliss_requests,
			bybit_file, htx_file, bliss_file,
			start_photo, end_photo,
			shift_start_time, shift_end_time
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		RETURNING id, created_at, updated_at
	`
	return r.q.QueryRow(
		ctx, query,
		report.EmployeeID, report.ShiftDate, report.ShiftType, report.TotalRequests, balances,
		report.ScamAmount, report.ScamComment, report.ScamPersonal,
		report.DokidkaAmount, report.DokidkaComment,
		report.InternalTransferAmount, report.InternalTransferComment,
		report.AppealAmount, report.AppealComment, report.AppealDeducted,
		report.BybitRequests, report.HTXRequests, report.BlissRequests,
		report.BybitFile, report.HTXFile, report.BlissFile,
		report.StartPhoto, report.EndPhoto,
		report.ShiftStartTime, report.ShiftEndTime,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
}

// UpdateShiftReport updates an existing shift report
func (r *Repository) UpdateShiftReport(ctx context.Context, report *ShiftReport) error {
	balances, err := report.Balances.Marshal()
	if err != nil {
		return err
	}
	query := `
		UPDATE shift_reports
		SET employee_id = $2, shift_date = $3, shift_type = $4, total_requests = $5, balances = $6,
		    scam_amount = $7, scam_comment = $8, scam_personal = $9,
		    dokidka_amount = $10, dokidka_comment = $11,
		    internal_transfer_amount = $12, internal_transfer_comment = $13,
		    appeal_amount = $14, appeal_comment = $15, appeal_deducted = $16,
		    bybit_requests = $17, htx_requests = $18, bliss_requests = $19,
		    bybit_file = $20, htx_file = $21, bliss_file = $22,
		    start_photo = $23, end_photo = $24,
		    shift_start_time = $25, shift_end_time = $26,
		    updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	tag, err := r.q.Exec(
		ctx, query,
		report.ID,
		report.EmployeeID, report.ShiftDate, report.ShiftType, report.TotalRequests, balances,
		report.ScamAmount, report.ScamComment, report.ScamPersonal,
		report.DokidkaAmount, report.DokidkaComment,
		report.InternalTransferAmount, report.InternalTransferComment,
		report.AppealAmount, report.AppealComment, report.AppealDeducted,
		report.BybitRequests, report.HTXRequests, report.BlissRequests,
		report.BybitFile, report.HTXFile, report.BlissFile,
		report.StartPhoto, report.EndPhoto,
		report.ShiftStartTime, report.ShiftEndTime,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetShiftReportByID retrieves a shift report by ID
func (r *Repository) GetShiftReportByID(ctx context.Context, id int64) (*ShiftReport, error) {
	query := `SELECT ` + shiftReportColumns + ` FROM shift_reports WHERE id = $1`
	report, err := scanShiftReport(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return report, nil
}

// ListShiftReports retrieves reports for a period, newest shift first.
// employeeID filters to one employee when nonzero; zero-valued bounds are
// open-ended.
func (r *Repository) ListShiftReports(ctx context.Context, from, to time.Time, employeeID int64) ([]*ShiftReport, error) {
	query := `
		SELECT ` + shiftReportColumns + `
		FROM shift_reports
		WHERE ($1::date IS NULL OR shift_date >= $1)
		  AND ($2::date IS NULL OR shift_date <= $2)
		  AND ($3::int = 0 OR employee_id = $3)
		ORDER BY shift_date DESC, shift_type DESC, id DESC
	`
	rows, err := r.q.Query(ctx, query, dateArg(from), dateArg(to), employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []*ShiftReport
	for rows.Next() {
		report, err := scanShiftReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

// ListReportRefs loads the full lookback history in resolution form: id,
// shift ordering key and parsed balance snapshot. One scan serves a whole
// aggregation request.
func (r *Repository) ListReportRefs(ctx context.Context) ([]balance.ReportRef, error) {
	query := `
		SELECT id, shift_date, shift_type, balances
		FROM shift_reports
		ORDER BY shift_date, shift_type
	`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []balance.ReportRef
	for rows.Next() {
		var (
			ref balance.ReportRef
			raw []byte
		)
		if err := rows.Scan(&ref.ID, &ref.ShiftDate, &ref.ShiftType, &raw); err != nil {
			return nil, err
		}
		snapshot, err := balance.ParseSnapshot(raw)
		if err != nil {
			return nil, err
		}
		ref.Balances = snapshot
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// ListInitialBalanceRefs loads initial balances in resolution form
func (r *Repository) ListInitialBalanceRefs(ctx context.Context) ([]balance.InitialBalanceRef, error) {
	balances, err := r.ListInitialBalances(ctx)
	if err != nil {
		return nil, err
	}
	refs := make([]balance.InitialBalanceRef, 0, len(balances))
	for _, b := range balances {
		refs = append(refs, balance.InitialBalanceRef{
			Platform:    b.Platform,
			AccountID:   b.AccountID,
			AccountName: b.AccountName,
			Balance:     b.Balance,
		})
	}
	return refs, nil
}

// DeleteShiftReport removes a shift report
func (r *Repository) DeleteShiftReport(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM shift_reports WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanShiftReport(row pgx.Row) (*ShiftReport, error) {
	report := &ShiftReport{}
	var raw []byte
	err := row.Scan(
		&report.ID, &report.EmployeeID, &report.ShiftDate, &report.ShiftType,
		&report.TotalRequests, &raw,
		&report.ScamAmount, &report.ScamComment, &report.ScamPersonal,
		&report.DokidkaAmount, &report.DokidkaComment,
		&report.InternalTransferAmount, &report.InternalTransferComment,
		&report.AppealAmount, &report.AppealComment, &report.AppealDeducted,
		&report.BybitRequests, &report.HTXRequests, &report.BlissRequests,
		&report.BybitFile, &report.HTXFile, &report.BlissFile,
		&report.StartPhoto, &report.EndPhoto,
		&report.ShiftStartTime, &report.ShiftEndTime,
		&report.CreatedAt, &report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	snapshot, err := balance.ParseSnapshot(raw)
	if err != nil {
		return nil, err
	}
	report.Balances = snapshot
	return report, nil
}

// dateArg maps a zero time to NULL so period bounds can be open-ended
func dateArg(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
