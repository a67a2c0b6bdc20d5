package database

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

// CreateAccount inserts a new platform account
func (r *Repository) CreateAccount(ctx context.Context, account *Account) error {
	query := `
		INSERT INTO accounts (employee_id, platform, account_name, is_active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.q.QueryRow(
		ctx, query,
		account.EmployeeID, account.Platform, account.AccountName, account.IsActive,
	).Scan(&account.ID, &account.CreatedAt)
}

// UpdateAccount updates an existing account
func (r *Repository) UpdateAccount(ctx context.Context, account *Account) error {
	query := `
		UPDATE accounts
		SET employee_id = $2, platform = $3, account_name = $4, is_active = $5
		WHERE id = $1
	`
	tag, err := r.q.Exec(
		ctx, query,
		account.ID, account.EmployeeID, account.Platform, account.AccountName, account.IsActive,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAccountByID retrieves an account by ID
func (r *Repository) GetAccountByID(ctx context.Context, id int64) (*Account, error) {
	query := `
		SELECT id, employee_id, platform, account_name, is_active, created_at
		FROM accounts
		WHERE id = $1
	`
	account := &Account{}
	err := r.q.QueryRow(ctx, query, id).Scan(
		&account.ID, &account.EmployeeID, &account.Platform,
		&account.AccountName, &account.IsActive, &account.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return account, nil
}

// ListAccounts retrieves all accounts grouped by platform
func (r *Repository) ListAccounts(ctx context.Context) ([]*Account, error) {
	query := `
		SELECT id, employee_id, platform, account_name, is_active, created_at
		FROM accounts
		ORDER BY platform, account_name
	`
	return r.queryAccounts(ctx, query)
}

// ListActiveAccountsByEmployee retrieves an employee's active accounts
func (r *Repository) ListActiveAccountsByEmployee(ctx context.Context, employeeID int64) ([]*Account, error) {
	query := `
		SELECT id, employee_id, platform, account_name, is_active, created_at
		FROM accounts
		WHERE employee_id = $1 AND is_active = TRUE
		ORDER BY platform, account_name
	`
	return r.queryAccounts(ctx, query, employeeID)
}

// ActiveAccountNames returns the display names of the employee's active
// accounts, used by the order linker
func (r *Repository) ActiveAccountNames(ctx context.Context, employeeID int64) ([]string, error) {
	query := `
		SELECT account_name
		FROM accounts
		WHERE employee_id = $1 AND is_active = TRUE
	`
	rows, err := r.q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// AccountNameByID resolves an account id to its display name, used by the
// balance resolver's initial-balance fallback
func (r *Repository) AccountNameByID(ctx context.Context, id int64) (string, bool) {
	var name string
	err := r.q.QueryRow(ctx, `SELECT account_name FROM accounts WHERE id = $1`, id).Scan(&name)
	if err != nil {
		return "", false
	}
	return name, true
}

// DeleteAccount removes an account
func (r *Repository) DeleteAccount(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) queryAccounts(ctx context.Context, query string, args ...any) ([]*Account, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var accounts []*Account
	for rows.Next() {
		account := &Account{}
		if err := rows.Scan(
			&account.ID, &account.EmployeeID, &account.Platform,
			&account.AccountName, &account.IsActive, &account.CreatedAt,
		); err != nil {
			return nil, err
		}
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// ============================================================================
// INITIAL BALANCES
// ============================================================================

// ReplaceInitialBalances overwrites the full set of initial balances
func (r *Repository) ReplaceInitialBalances(ctx context.Context, balances []*InitialBalance) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM initial_balances`); err != nil {
		return err
	}
	query := `
		INSERT INTO initial_balances (platform, account_id, account_name, balance)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	for _, b := range balances {
		if err := r.q.QueryRow(
			ctx, query, b.Platform, b.AccountID, b.AccountName, b.Balance,
		).Scan(&b.ID); err != nil {
			return err
		}
	}
	return nil
}

// ListInitialBalances retrieves all initial balances
func (r *Repository) ListInitialBalances(ctx context.Context) ([]*InitialBalance, error) {
	query := `
		SELECT id, platform, account_id, account_name, balance
		FROM initial_balances
		ORDER BY platform, account_name
	`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var balances []*InitialBalance
	for rows.Next() {
		b := &InitialBalance{}
		if err := rows.Scan(&b.ID, &b.Platform, &b.AccountID, &b.AccountName, &b.Balance); err != nil {
			return nil, err
		}
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// ============================================================================
// BALANCE HISTORY
// ============================================================================

// RecordBalanceHistory appends one balance observation
func (r *Repository) RecordBalanceHistory(ctx context.Context, h *AccountBalanceHistory) error {
	query := `
		INSERT INTO account_balance_history
			(account_id, account_name, platform, shift_date, shift_type, balance, employee_id, balance_type)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	return r.q.QueryRow(
		ctx, query,
		h.AccountID, h.AccountName, h.Platform, h.ShiftDate, h.ShiftType,
		h.Balance, h.EmployeeID, h.BalanceType,
	).Scan(&h.ID, &h.CreatedAt)
}

// ReplaceBalanceHistoryForShift rewrites the balance rows one report
// contributed to the trail. Accounts belong to a single employee, so scoping
// the delete by account ids cannot touch another report's rows.
func (r *Repository) ReplaceBalanceHistoryForShift(ctx context.Context, shiftDate time.Time, shiftType string, entries []*AccountBalanceHistory) error {
	accountIDs := make([]int64, 0, len(entries))
	seen := make(map[int64]bool, len(entries))
	for _, e := range entries {
		if !seen[e.AccountID] {
			seen[e.AccountID] = true
			accountIDs = append(accountIDs, e.AccountID)
		}
	}
	if len(accountIDs) > 0 {
		query := `
			DELETE FROM account_balance_history
			WHERE shift_date = $1 AND shift_type = $2 AND account_id = ANY($3)
		`
		if _, err := r.q.Exec(ctx, query, shiftDate, shiftType, accountIDs); err != nil {
			return err
		}
	}
	for _, e := range entries {
		if err := r.RecordBalanceHistory(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// ListBalanceHistory retrieves the balance trail for one account, newest
// first, joined with the employee on shift
func (r *Repository) ListBalanceHistory(ctx context.Context, accountID int64, limit int) ([]*AccountBalanceHistory, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
		SELECT h.id, h.account_id, h.account_name, h.platform, h.shift_date, h.shift_type,
		       h.balance, h.employee_id, e.name, h.balance_type, h.created_at
		FROM account_balance_history h
		LEFT JOIN employees e ON e.id = h.employee_id
		WHERE h.account_id = $1
		ORDER BY h.shift_date DESC, h.shift_type DESC, h.id DESC
		LIMIT $2
	`
	rows, err := r.q.Query(ctx, query, accountID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var history []*AccountBalanceHistory
	for rows.Next() {
		h := &AccountBalanceHistory{}
		if err := rows.Scan(
			&h.ID, &h.AccountID, &h.AccountName, &h.Platform, &h.ShiftDate, &h.ShiftType,
			&h.Balance, &h.EmployeeID, &h.EmployeeName, &h.BalanceType, &h.CreatedAt,
		); err != nil {
			return nil, err
		}
		history = append(history, h)
	}
	return history, rows.Err()
}
