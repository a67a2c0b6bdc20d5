package ingest

import (
	"context"
	"time"

	"arbitrage-shift-tracker/internal/database"
)

// PGStore adapts the database repository to the pipeline's Store interface.
// Transact rebinds the adapter to a transaction-scoped repository so the
// persist and link steps of one upload commit or roll back together.
type PGStore struct {
	repo *database.Repository
}

// NewPGStore wraps a repository
func NewPGStore(repo *database.Repository) *PGStore {
	return &PGStore{repo: repo}
}

func (s *PGStore) ActiveAccountNames(ctx context.Context, employeeID int64) ([]string, error) {
	return s.repo.ActiveAccountNames(ctx, employeeID)
}

func (s *PGStore) OrdersInWindow(ctx context.Context, accountNames []string, start, end time.Time) ([]database.Order, error) {
	return s.repo.OrdersInWindow(ctx, accountNames, start, end)
}

func (s *PGStore) AssignOrdersToEmployee(ctx context.Context, orderIDs []int64, employeeID int64) error {
	return s.repo.AssignOrdersToEmployee(ctx, orderIDs, employeeID)
}

func (s *PGStore) ExistingOrderIDs(ctx context.Context, platformName string, orderIDs []string) (map[string]bool, error) {
	return s.repo.ExistingOrderIDs(ctx, platformName, orderIDs)
}

func (s *PGStore) InsertOrders(ctx context.Context, orders []database.Order) error {
	return s.repo.InsertOrders(ctx, orders)
}

func (s *PGStore) Transact(ctx context.Context, fn func(Store) error) error {
	return s.repo.WithTx(ctx, func(tx *database.Repository) error {
		return fn(&PGStore{repo: tx})
	})
}
