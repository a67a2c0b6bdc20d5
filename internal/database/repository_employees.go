package database

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a requested row does not exist
var ErrNotFound = errors.New("not found")

// CreateEmployee inserts a new employee
func (r *Repository) CreateEmployee(ctx context.Context, employee *Employee) error {
	query := `
		INSERT INTO employees (name, telegram, is_active, salary_percent)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`
	return r.q.QueryRow(
		ctx, query,
		employee.Name, employee.Telegram, employee.IsActive, employee.SalaryPercent,
	).Scan(&employee.ID, &employee.CreatedAt)
}

// UpdateEmployee updates an existing employee
func (r *Repository) UpdateEmployee(ctx context.Context, employee *Employee) error {
	query := `
		UPDATE employees
		SET name = $2, telegram = $3, is_active = $4, salary_percent = $5
		WHERE id = $1
	`
	tag, err := r.q.Exec(
		ctx, query,
		employee.ID, employee.Name, employee.Telegram, employee.IsActive, employee.SalaryPercent,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetEmployeeByID retrieves an employee by ID
func (r *Repository) GetEmployeeByID(ctx context.Context, id int64) (*Employee, error) {
	query := `
		SELECT id, name, telegram, is_active, salary_percent, created_at
		FROM employees
		WHERE id = $1
	`
	employee := &Employee{}
	err := r.q.QueryRow(ctx, query, id).Scan(
		&employee.ID, &employee.Name, &employee.Telegram,
		&employee.IsActive, &employee.SalaryPercent, &employee.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return employee, nil
}

// ListEmployees retrieves all employees, active first, newest first within
// each group
func (r *Repository) ListEmployees(ctx context.Context) ([]*Employee, error) {
	query := `
		SELECT id, name, telegram, is_active, salary_percent, created_at
		FROM employees
		ORDER BY is_active DESC, created_at DESC
	`
	rows, err := r.q.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []*Employee
	for rows.Next() {
		employee := &Employee{}
		if err := rows.Scan(
			&employee.ID, &employee.Name, &employee.Telegram,
			&employee.IsActive, &employee.SalaryPercent, &employee.CreatedAt,
		); err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	return employees, rows.Err()
}

// DeleteEmployee removes an employee
func (r *Repository) DeleteEmployee(ctx context.Context, id int64) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM employees WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
