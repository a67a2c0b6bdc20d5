package database

import (
	"time"

	"arbitrage-shift-tracker/internal/balance"
)

// Shift types
const (
	ShiftMorning = "morning"
	ShiftEvening = "evening"
)

// Employee represents a shift worker
type Employee struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Telegram      *string   `json:"telegram,omitempty"`
	IsActive      bool      `json:"is_active"`
	SalaryPercent *float64  `json:"salary_percent,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// Account represents a trading identity on one platform. Many accounts may
// belong to one employee; an account belongs to at most one platform.
type Account struct {
	ID          int64     `json:"id"`
	EmployeeID  *int64    `json:"employee_id,omitempty"`
	Platform    string    `json:"platform"`
	AccountName string    `json:"account_name"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// InitialBalance is the base case for balance lookback: the starting balance
// for an account that has no prior shift report
type InitialBalance struct {
	ID          int64   `json:"id"`
	Platform    string  `json:"platform"`
	AccountID   *int64  `json:"account_id,omitempty"`
	AccountName string  `json:"account_name"`
	Balance     float64 `json:"balance"`
}

// ShiftReport is one employee's report for one worked shift
type ShiftReport struct {
	ID            int64            `json:"id"`
	EmployeeID    int64            `json:"employee_id"`
	ShiftDate     time.Time        `json:"shift_date"`
	ShiftType     string           `json:"shift_type"` // morning or evening
	TotalRequests int              `json:"total_requests"`
	Balances      balance.Snapshot `json:"balances"`

	ScamAmount   float64 `json:"scam_amount"`
	ScamComment  string  `json:"scam_comment"`
	ScamPersonal bool    `json:"scam_personal"`

	DokidkaAmount           float64 `json:"dokidka_amount"` // external top-up
	DokidkaComment          string  `json:"dokidka_comment"`
	InternalTransferAmount  float64 `json:"internal_transfer_amount"`
	InternalTransferComment string  `json:"internal_transfer_comment"`

	AppealAmount   float64 `json:"appeal_amount"`
	AppealComment  string  `json:"appeal_comment"`
	AppealDeducted bool    `json:"appeal_deducted"`

	BybitRequests int `json:"bybit_requests"`
	HTXRequests   int `json:"htx_requests"`
	BlissRequests int `json:"bliss_requests"`

	BybitFile *string `json:"bybit_file,omitempty"`
	HTXFile   *string `json:"htx_file,omitempty"`
	BlissFile *string `json:"bliss_file,omitempty"`

	StartPhoto *string `json:"start_photo,omitempty"`
	EndPhoto   *string `json:"end_photo,omitempty"`

	// Shift window in canonical reporting time; the linker requires both
	ShiftStartTime *time.Time `json:"shift_start_time,omitempty"`
	ShiftEndTime   *time.Time `json:"shift_end_time,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Order is a normalized trade record. (OrderID, Platform) is unique:
// re-ingesting the same export skips duplicates.
type Order struct {
	ID           int64     `json:"id"`
	OrderID      string    `json:"order_id"`
	EmployeeID   *int64    `json:"employee_id,omitempty"`
	Platform     string    `json:"platform"`
	AccountName  string    `json:"account_name"`
	Symbol       string    `json:"symbol"`
	Side         string    `json:"side"`
	Quantity     float64   `json:"quantity"`
	Price        float64   `json:"price"`
	TotalUSDT    float64   `json:"total_usdt"`
	FeesUSDT     float64   `json:"fees_usdt"`
	Status       string    `json:"status"`
	RawStatus    *string   `json:"raw_status,omitempty"`
	Counterparty *string   `json:"counterparty,omitempty"`
	ExecutedAt   time.Time `json:"executed_at"` // canonical reporting time
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// AccountBalanceHistory is an append-only audit trail of per-shift balances.
// The resolver reads report snapshots directly; this table exists for audit
// and reporting.
type AccountBalanceHistory struct {
	ID           int64     `json:"id"`
	AccountID    int64     `json:"account_id"`
	AccountName  string    `json:"account_name"`
	Platform     string    `json:"platform"`
	ShiftDate    time.Time `json:"shift_date"`
	ShiftType    string    `json:"shift_type"`
	Balance      float64   `json:"balance"`
	EmployeeID   *int64    `json:"employee_id,omitempty"`
	EmployeeName *string   `json:"employee_name,omitempty"`
	BalanceType  string    `json:"balance_type"` // start or end
	CreatedAt    time.Time `json:"created_at"`
}

// EmployeeScamHistory records scam losses attributed to an employee's shift
type EmployeeScamHistory struct {
	ID            int64     `json:"id"`
	EmployeeID    int64     `json:"employee_id"`
	ShiftReportID int64     `json:"shift_report_id"`
	Amount        float64   `json:"amount"`
	Comment       string    `json:"comment"`
	Date          time.Time `json:"date"`
	CreatedAt     time.Time `json:"created_at"`
}

// SalarySettings holds the global payroll calculation knobs
type SalarySettings struct {
	ID                     int64     `json:"id"`
	BasePercent            int       `json:"base_percent"`
	MinRequestsPerDay      int       `json:"min_requests_per_day"`
	BonusPercent           int       `json:"bonus_percent"`
	BonusRequestsThreshold int       `json:"bonus_requests_threshold"`
	UpdatedAt              time.Time `json:"updated_at"`
}

// User is an API login identity, optionally tied to an employee
type User struct {
	ID           string    `json:"id"` // uuid
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	EmployeeID   *int64    `json:"employee_id,omitempty"`
	IsAdmin      bool      `json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
}
