// Package reports orchestrates shift report writes and the derived profit,
// payroll and dashboard figures.
package reports

import (
	"context"
	"fmt"
	"time"

	"arbitrage-shift-tracker/internal/balance"
	"arbitrage-shift-tracker/internal/cache"
	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/linker"
	"arbitrage-shift-tracker/internal/logging"
	"arbitrage-shift-tracker/internal/platform"
	"arbitrage-shift-tracker/internal/profit"
)

// Service wires report persistence to balance resolution, profit
// calculation and order linking
type Service struct {
	repo        *database.Repository
	cache       *cache.Service // nil when Redis is disabled
	limits      profit.Limits
	basePercent float64
	log         *logging.Logger
}

// New creates the report service. basePercent is the payroll fallback when
// neither the employee nor the stored settings carry a percent.
func New(repo *database.Repository, cacheSvc *cache.Service, limits profit.Limits, basePercent float64) *Service {
	return &Service{
		repo:        repo,
		cache:       cacheSvc,
		limits:      limits,
		basePercent: basePercent,
		log:         logging.WithComponent("reports"),
	}
}

// ReportWithProfit is a report together with its computed profit figures and
// the count of orders linked on this write
type ReportWithProfit struct {
	*database.ShiftReport
	Profit profit.Breakdown `json:"profit"`
	Linked int              `json:"linked_orders,omitempty"`
}

// Create persists a new report, records its balance and scam trails, links
// orders in its shift window, and returns the computed profit figures. The
// write path runs in one transaction.
func (s *Service) Create(ctx context.Context, report *database.ShiftReport) (*ReportWithProfit, error) {
	if err := validate(report); err != nil {
		return nil, err
	}

	linked := 0
	err := s.repo.WithTx(ctx, func(tx *database.Repository) error {
		if err := tx.CreateShiftReport(ctx, report); err != nil {
			return fmt.Errorf("failed to create report: %w", err)
		}
		if err := s.syncTrails(ctx, tx, report); err != nil {
			return err
		}
		n, err := linker.New(tx).Link(ctx, report)
		if err != nil {
			return err
		}
		linked = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.withProfit(ctx, report, linked)
}

// Update rewrites a report and resynchronizes its trails and linked orders
func (s *Service) Update(ctx context.Context, report *database.ShiftReport) (*ReportWithProfit, error) {
	if err := validate(report); err != nil {
		return nil, err
	}

	linked := 0
	err := s.repo.WithTx(ctx, func(tx *database.Repository) error {
		if err := tx.UpdateShiftReport(ctx, report); err != nil {
			return err
		}
		if err := s.syncTrails(ctx, tx, report); err != nil {
			return err
		}
		n, err := linker.New(tx).Link(ctx, report)
		if err != nil {
			return err
		}
		linked = n
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return s.withProfit(ctx, report, linked)
}

// Get retrieves one report with its profit figures
func (s *Service) Get(ctx context.Context, id int64) (*ReportWithProfit, error) {
	report, err := s.repo.GetShiftReportByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.withProfit(ctx, report, 0)
}

// List retrieves reports for a period with profit figures computed against a
// single shared resolver
func (s *Service) List(ctx context.Context, from, to time.Time, employeeID int64) ([]*ReportWithProfit, error) {
	reports, err := s.repo.ListShiftReports(ctx, from, to, employeeID)
	if err != nil {
		return nil, err
	}

	resolver, err := s.buildResolver(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*ReportWithProfit, 0, len(reports))
	for _, report := range reports {
		out = append(out, &ReportWithProfit{
			ShiftReport: report,
			Profit:      profit.Calculate(figures(report), resolver, s.limits),
		})
	}
	return out, nil
}

// Delete removes a report and its derived trails
func (s *Service) Delete(ctx context.Context, id int64) error {
	err := s.repo.DeleteShiftReport(ctx, id)
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

// RecomputeReport drops cached figures after the report's order set changed.
// Profit is always computed from current state on read, so invalidation is
// the whole job.
func (s *Service) RecomputeReport(ctx context.Context, reportID int64) error {
	s.invalidate(ctx)
	return nil
}

// buildResolver loads the full lookback history once and shares it across
// every delta in the request
func (s *Service) buildResolver(ctx context.Context) (*balance.Resolver, error) {
	refs, err := s.repo.ListReportRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load report history: %w", err)
	}
	initial, err := s.repo.ListInitialBalanceRefs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load initial balances: %w", err)
	}
	nameFn := func(id int64) (string, bool) {
		return s.repo.AccountNameByID(ctx, id)
	}
	return balance.NewResolver(refs, initial, nameFn), nil
}

func (s *Service) withProfit(ctx context.Context, report *database.ShiftReport, linked int) (*ReportWithProfit, error) {
	resolver, err := s.buildResolver(ctx)
	if err != nil {
		return nil, err
	}
	return &ReportWithProfit{
		ShiftReport: report,
		Profit:      profit.Calculate(figures(report), resolver, s.limits),
		Linked:      linked,
	}, nil
}

// syncTrails rewrites the balance history rows and the scam record derived
// from a report
func (s *Service) syncTrails(ctx context.Context, tx *database.Repository, report *database.ShiftReport) error {
	var entries []*database.AccountBalanceHistory
	employeeID := report.EmployeeID
	for platformName, accounts := range report.Balances {
		for _, entry := range accounts {
			if entry.AccountID == 0 {
				continue
			}
			name, ok := tx.AccountNameByID(ctx, entry.AccountID)
			if !ok {
				continue
			}
			record := func(balanceType string, value float64) {
				entries = append(entries, &database.AccountBalanceHistory{
					AccountID:   entry.AccountID,
					AccountName: name,
					Platform:    platformName,
					ShiftDate:   report.ShiftDate,
					ShiftType:   report.ShiftType,
					Balance:     value,
					EmployeeID:  &employeeID,
					BalanceType: balanceType,
				})
			}
			switch {
			case entry.StartBalance != nil || entry.EndBalance != nil:
				if entry.StartBalance != nil {
					record("start", *entry.StartBalance)
				}
				if entry.EndBalance != nil {
					record("end", *entry.EndBalance)
				}
			case entry.Balance != nil:
				record("end", *entry.Balance)
			}
		}
	}
	if err := tx.ReplaceBalanceHistoryForShift(ctx, report.ShiftDate, report.ShiftType, entries); err != nil {
		return fmt.Errorf("failed to record balance history: %w", err)
	}

	if err := tx.UpsertScamHistory(ctx, report); err != nil {
		return fmt.Errorf("failed to sync scam history: %w", err)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.InvalidateComputed(ctx)
	}
}

func figures(report *database.ShiftReport) profit.ReportFigures {
	return profit.ReportFigures{
		Ref: balance.ReportRef{
			ID:        report.ID,
			ShiftDate: report.ShiftDate,
			ShiftType: report.ShiftType,
			Balances:  report.Balances,
		},
		Dokidka:      report.DokidkaAmount,
		Internal:     report.InternalTransferAmount,
		Scam:         report.ScamAmount,
		ScamPersonal: report.ScamPersonal,
	}
}

func validate(report *database.ShiftReport) error {
	if report.EmployeeID == 0 {
		return fmt.Errorf("employee_id is required")
	}
	if report.ShiftType != database.ShiftMorning && report.ShiftType != database.ShiftEvening {
		return fmt.Errorf("shift_type must be %q or %q", database.ShiftMorning, database.ShiftEvening)
	}
	if report.ShiftDate.IsZero() {
		return fmt.Errorf("shift_date is required")
	}
	if report.ShiftStartTime != nil && report.ShiftEndTime != nil &&
		!report.ShiftStartTime.Before(*report.ShiftEndTime) {
		return fmt.Errorf("shift_start_time must be before shift_end_time")
	}
	for platformName := range report.Balances {
		if !platform.IsSupported(platformName) {
			return fmt.Errorf("unsupported platform in balances: %s", platformName)
		}
	}
	return nil
}
