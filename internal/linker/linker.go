// Package linker assigns ingested orders to the employee whose shift window
// and account ownership match.
package linker

import (
	"context"
	"fmt"
	"time"

	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/logging"
)

// Store is the persistence surface the linker needs
type Store interface {
	// ActiveAccountNames returns the display names of the employee's active accounts
	ActiveAccountNames(ctx context.Context, employeeID int64) ([]string, error)
	// OrdersInWindow returns orders on the given accounts whose executed_at
	// falls within [start, end], inclusive on both ends
	OrdersInWindow(ctx context.Context, accountNames []string, start, end time.Time) ([]database.Order, error)
	// AssignOrdersToEmployee reassigns the given orders to the employee
	AssignOrdersToEmployee(ctx context.Context, orderIDs []int64, employeeID int64) error
}

// Linker links orders to shift reports
type Linker struct {
	store Store
	log   *logging.Logger
}

// New creates a linker
func New(store Store) *Linker {
	return &Linker{
		store: store,
		log:   logging.WithComponent("linker"),
	}
}

// Link attributes persisted orders to the report's employee. Orders qualify
// when their account belongs to the employee's active accounts and their
// executed_at lies inside the report's shift window (inclusive). Only orders
// not already attributed to this employee are touched, so a second run over
// the same report reassigns nothing.
//
// Reports without a complete shift window link nothing: the precondition is
// not met, and the caller may retry once the window is supplied.
func (l *Linker) Link(ctx context.Context, report *database.ShiftReport) (int, error) {
	if report.ShiftStartTime == nil || report.ShiftEndTime == nil {
		return 0, nil
	}

	names, err := l.store.ActiveAccountNames(ctx, report.EmployeeID)
	if err != nil {
		return 0, fmt.Errorf("failed to load employee accounts: %w", err)
	}
	if len(names) == 0 {
		return 0, nil
	}

	orders, err := l.store.OrdersInWindow(ctx, names, *report.ShiftStartTime, *report.ShiftEndTime)
	if err != nil {
		return 0, fmt.Errorf("failed to load orders in shift window: %w", err)
	}

	var relink []int64
	for _, order := range orders {
		if order.EmployeeID == nil || *order.EmployeeID != report.EmployeeID {
			relink = append(relink, order.ID)
		}
	}
	if len(relink) == 0 {
		return 0, nil
	}

	if err := l.store.AssignOrdersToEmployee(ctx, relink, report.EmployeeID); err != nil {
		return 0, fmt.Errorf("failed to assign orders: %w", err)
	}

	l.log.Info("linked orders to shift",
		"report_id", report.ID,
		"employee_id", report.EmployeeID,
		"linked", len(relink))
	return len(relink), nil
}
