package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const orderColumns = `
	id, order_id, employee_id, platform, account_name, symbol, side,
	quantity, price, total_usdt, fees_usdt, status, raw_status, counterparty,
	executed_at, created_at, updated_at`

// CreateOrder inserts a single order, as submitted through the API
func (r *Repository) CreateOrder(ctx context.Context, order *Order) error {
	query := `
		INSERT INTO orders (
			order_id, employee_id, platform, account_name, symbol, side,
			quantity, price, total_usdt, fees_usdt, status, raw_status, counterparty, executed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id, created_at, updated_at
	`
	return r.q.QueryRow(
		ctx, query,
		order.OrderID, order.EmployeeID, order.Platform, order.AccountName,
		order.Symbol, order.Side, order.Quantity, order.Price, order.TotalUSDT,
		order.FeesUSDT, order.Status, order.RawStatus, order.Counterparty, order.ExecutedAt,
	).Scan(&order.ID, &order.CreatedAt, &order.UpdatedAt)
}

// InsertOrders persists a parsed batch. Duplicate (order_id, platform) pairs
// are expected to be filtered by the caller; a race against a concurrent
// upload is absorbed by the unique constraint.
func (r *Repository) InsertOrders(ctx context.Context, orders []Order) error {
	query := `
		INSERT INTO orders (
			order_id, employee_id, platform, account_name, symbol, side,
			quantity, price, total_usdt, fees_usdt, status, raw_status, counterparty, executed_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (order_id, platform) DO NOTHING
	`
	for _, order := range orders {
		if _, err := r.q.Exec(
			ctx, query,
			order.OrderID, order.EmployeeID, order.Platform, order.AccountName,
			order.Symbol, order.Side, order.Quantity, order.Price, order.TotalUSDT,
			order.FeesUSDT, order.Status, order.RawStatus, order.Counterparty, order.ExecutedAt,
		); err != nil {
			return err
		}
	}
	return nil
}

// ExistingOrderIDs reports which of the given platform-scoped order ids are
// already persisted
func (r *Repository) ExistingOrderIDs(ctx context.Context, platformName string, orderIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool, len(orderIDs))
	if len(orderIDs) == 0 {
		return existing, nil
	}
	query := `
		SELECT order_id
		FROM orders
		WHERE platform = $1 AND order_id = ANY($2)
	`
	rows, err := r.q.Query(ctx, query, platformName, orderIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		existing[id] = true
	}
	return existing, rows.Err()
}

// OrdersInWindow retrieves orders on the given accounts executed inside
// [start, end], inclusive on both ends
func (r *Repository) OrdersInWindow(ctx context.Context, accountNames []string, start, end time.Time) ([]Order, error) {
	if len(accountNames) == 0 {
		return nil, nil
	}
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE account_name = ANY($1) AND executed_at >= $2 AND executed_at <= $3
		ORDER BY executed_at
	`
	rows, err := r.q.Query(ctx, query, accountNames, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// AssignOrdersToEmployee reassigns the given orders to an employee
func (r *Repository) AssignOrdersToEmployee(ctx context.Context, orderIDs []int64, employeeID int64) error {
	if len(orderIDs) == 0 {
		return nil
	}
	query := `
		UPDATE orders
		SET employee_id = $2, updated_at = CURRENT_TIMESTAMP
		WHERE id = ANY($1)
	`
	_, err := r.q.Exec(ctx, query, orderIDs, employeeID)
	return err
}

// GetOrderByID retrieves an order by internal ID
func (r *Repository) GetOrderByID(ctx context.Context, id int64) (*Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	order, err := scanOrder(r.q.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

// OrderFilter narrows ListOrders. Zero values mean no filtering.
type OrderFilter struct {
	Platform   string
	EmployeeID int64
	From       time.Time
	To         time.Time
	Limit      int
}

// ListOrders retrieves orders newest first
func (r *Repository) ListOrders(ctx context.Context, filter OrderFilter) ([]Order, error) {
	if filter.Limit <= 0 {
		filter.Limit = 500
	}
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = '' OR platform = $1)
		  AND ($2::int = 0 OR employee_id = $2)
		  AND ($3::timestamp IS NULL OR executed_at >= $3)
		  AND ($4::timestamp IS NULL OR executed_at <= $4)
		ORDER BY executed_at DESC
		LIMIT $5
	`
	rows, err := r.q.Query(ctx, query,
		filter.Platform, filter.EmployeeID, dateArg(filter.From), dateArg(filter.To), filter.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	return orders, rows.Err()
}

// CountOrdersByEmployee aggregates executed order counts per employee for a
// period, used by the dashboard
func (r *Repository) CountOrdersByEmployee(ctx context.Context, from, to time.Time) (map[int64]int, error) {
	query := `
		SELECT employee_id, COUNT(*)
		FROM orders
		WHERE employee_id IS NOT NULL
		  AND ($1::timestamp IS NULL OR executed_at >= $1)
		  AND ($2::timestamp IS NULL OR executed_at <= $2)
		GROUP BY employee_id
	`
	rows, err := r.q.Query(ctx, query, dateArg(from), dateArg(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var (
			employeeID int64
			count      int
		)
		if err := rows.Scan(&employeeID, &count); err != nil {
			return nil, err
		}
		counts[employeeID] = count
	}
	return counts, rows.Err()
}

// DeleteOrder removes an order
func (r *Repository) DeleteOrder(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanOrder(row pgx.Row) (*Order, error) {
	order := &Order{}
	err := row.Scan(
		&order.ID, &order.OrderID, &order.EmployeeID, &order.Platform, &order.AccountName,
		&order.Symbol, &order.Side, &order.Quantity, &order.Price, &order.TotalUSDT,
		&order.FeesUSDT, &order.Status, &order.RawStatus, &order.Counterparty,
		&order.ExecutedAt, &order.CreatedAt, &order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return order, nil
}
