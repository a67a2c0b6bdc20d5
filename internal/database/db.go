package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"arbitrage-shift-tracker/internal/logging"
)

// DB wraps the PostgreSQL connection pool
type DB struct {
	Pool *pgxpool.Pool
	log  *logging.Logger
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDB creates a new database connection
func NewDB(cfg Config) (*DB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	log := logging.WithComponent("database")
	log.Info("connected to PostgreSQL", "database", cfg.Database, "host", cfg.Host)

	return &DB{Pool: pool, log: log}, nil
}

// Close closes the database connection
func (db *DB) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		db.log.Info("database connection closed")
	}
}

// RunMigrations executes database migrations
func (db *DB) RunMigrations(ctx context.Context) error {
	db.log.Info("running database migrations")

	migrations := []string{
		`CREATE TABLE IF NOT EXISTS employees (
			id SERIAL PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			telegram VARCHAR(100),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			salary_percent DOUBLE PRECISION,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS accounts (
			id SERIAL PRIMARY KEY,
			employee_id INTEGER REFERENCES employees(id) ON DELETE SET NULL,
			platform VARCHAR(20) NOT NULL,
			account_name VARCHAR(100) NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_employee ON accounts(employee_id)`,
		`CREATE INDEX IF NOT EXISTS idx_accounts_platform ON accounts(platform)`,

		`CREATE TABLE IF NOT EXISTS initial_balances (
			id SERIAL PRIMARY KEY,
			platform VARCHAR(20) NOT NULL,
			account_id INTEGER REFERENCES accounts(id) ON DELETE SET NULL,
			account_name VARCHAR(100) NOT NULL,
			balance DOUBLE PRECISION NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_initial_balances_platform ON initial_balances(platform)`,

		`CREATE TABLE IF NOT EXISTS shift_reports (
			id SERIAL PRIMARY KEY,
			employee_id INTEGER NOT NULL REFERENCES employees(id),
			shift_date DATE NOT NULL,
			shift_type VARCHAR(10) NOT NULL,
			total_requests INTEGER NOT NULL DEFAULT 0,
			balances JSONB NOT NULL DEFAULT '{}',
			scam_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			scam_comment TEXT NOT NULL DEFAULT '',
			scam_personal BOOLEAN NOT NULL DEFAULT FALSE,
			dokidka_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			dokidka_comment TEXT NOT NULL DEFAULT '',
			internal_transfer_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			internal_transfer_comment TEXT NOT NULL DEFAULT '',
			appeal_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			appeal_comment TEXT NOT NULL DEFAULT '',
			appeal_deducted BOOLEAN NOT NULL DEFAULT FALSE,
			bybit_requests INTEGER NOT NULL DEFAULT 0,
			htx_requests INTEGER NOT NULL DEFAULT 0,
			bliss_requests INTEGER NOT NULL DEFAULT 0,
			bybit_file TEXT,
			htx_file TEXT,
			bliss_file TEXT,
			start_photo TEXT,
			end_photo TEXT,
			shift_start_time TIMESTAMP,
			shift_end_time TIMESTAMP,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_shift_reports_employee ON shift_reports(employee_id)`,
		`CREATE INDEX IF NOT EXISTS idx_shift_reports_date ON shift_reports(shift_date)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			order_id VARCHAR(100) NOT NULL,
			employee_id INTEGER REFERENCES employees(id) ON DELETE SET NULL,
			platform VARCHAR(20) NOT NULL,
			account_name VARCHAR(100) NOT NULL DEFAULT '',
			symbol VARCHAR(20) NOT NULL DEFAULT 'USDT',
			side VARCHAR(4) NOT NULL DEFAULT '',
			quantity DOUBLE PRECISION NOT NULL DEFAULT 0,
			price DOUBLE PRECISION NOT NULL DEFAULT 0,
			total_usdt DOUBLE PRECISION NOT NULL DEFAULT 0,
			fees_usdt DOUBLE PRECISION NOT NULL DEFAULT 0,
			status VARCHAR(20) NOT NULL DEFAULT 'filled',
			raw_status VARCHAR(100),
			counterparty VARCHAR(100),
			executed_at TIMESTAMP NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			CONSTRAINT uq_orders_order_platform UNIQUE (order_id, platform)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_executed_at ON orders(executed_at)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_account_name ON orders(account_name)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_employee ON orders(employee_id)`,

		`CREATE TABLE IF NOT EXISTS account_balance_history (
			id SERIAL PRIMARY KEY,
			account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			account_name VARCHAR(100) NOT NULL,
			platform VARCHAR(20) NOT NULL,
			shift_date DATE NOT NULL,
			shift_type VARCHAR(10) NOT NULL,
			balance DOUBLE PRECISION NOT NULL,
			employee_id INTEGER REFERENCES employees(id) ON DELETE SET NULL,
			balance_type VARCHAR(10) NOT NULL DEFAULT 'end',
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_balance_history_account ON account_balance_history(account_id)`,
		`CREATE INDEX IF NOT EXISTS idx_balance_history_date ON account_balance_history(shift_date)`,

		`CREATE TABLE IF NOT EXISTS employee_scam_history (
			id SERIAL PRIMARY KEY,
			employee_id INTEGER NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
			shift_report_id INTEGER NOT NULL REFERENCES shift_reports(id) ON DELETE CASCADE,
			amount DOUBLE PRECISION NOT NULL,
			comment TEXT NOT NULL DEFAULT '',
			date DATE NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_scam_history_employee ON employee_scam_history(employee_id)`,

		`CREATE TABLE IF NOT EXISTS salary_settings (
			id SERIAL PRIMARY KEY,
			base_percent INTEGER NOT NULL DEFAULT 30,
			min_requests_per_day INTEGER NOT NULL DEFAULT 0,
			bonus_percent INTEGER NOT NULL DEFAULT 0,
			bonus_requests_threshold INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(50) NOT NULL UNIQUE,
			password_hash VARCHAR(100) NOT NULL,
			employee_id INTEGER REFERENCES employees(id) ON DELETE SET NULL,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for i, migration := range migrations {
		if _, err := db.Pool.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	db.log.Info("database migrations completed", "count", len(migrations))
	return nil
}
