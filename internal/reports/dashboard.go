package reports

import (
	"context"
	"fmt"
	"sort"
	"time"

	"arbitrage-shift-tracker/internal/cache"
	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/profit"
)

// Dashboard aggregates a period for the overview page
type Dashboard struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`

	Totals    profit.Breakdown  `json:"totals"`
	Employees []EmployeeSummary `json:"employees"`
	Platforms []PlatformSummary `json:"platforms"`

	ReportCount   int     `json:"report_count"`
	OrderCount    int     `json:"order_count"`
	TotalRequests int     `json:"total_requests"`
	ScamTotal     float64 `json:"scam_total"`
}

// EmployeeSummary is one employee's profit layers for the period
type EmployeeSummary struct {
	EmployeeID   int64   `json:"employee_id"`
	Name         string  `json:"name"`
	Gross        float64 `json:"gross"`
	Profit       float64 `json:"profit"`
	SalaryProfit float64 `json:"salary_profit"`
	Scam         float64 `json:"scam"`
	ReportCount  int     `json:"report_count"`
	OrderCount   int     `json:"order_count"`
}

// PlatformSummary is the order activity on one platform for the period
type PlatformSummary struct {
	Platform   string  `json:"platform"`
	OrderCount int     `json:"order_count"`
	Volume     float64 `json:"volume"`
}

// BuildDashboard aggregates reports and orders for a period. The result is
// cached briefly; writes invalidate it.
func (s *Service) BuildDashboard(ctx context.Context, from, to time.Time) (*Dashboard, error) {
	key := fmt.Sprintf(cache.KeyDashboard, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if s.cache != nil {
		cached := &Dashboard{}
		if err := s.cache.GetJSON(ctx, key, cached); err == nil {
			return cached, nil
		}
	}

	reports, err := s.repo.ListShiftReports(ctx, from, to, 0)
	if err != nil {
		return nil, err
	}
	employees, err := s.repo.ListEmployees(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.repo.ListOrders(ctx, database.OrderFilter{From: from, To: to, Limit: 100000})
	if err != nil {
		return nil, err
	}
	orderCounts, err := s.repo.CountOrdersByEmployee(ctx, from, to)
	if err != nil {
		return nil, err
	}
	resolver, err := s.buildResolver(ctx)
	if err != nil {
		return nil, err
	}

	dashboard := &Dashboard{From: from, To: to}
	names := make(map[int64]string, len(employees))
	for _, employee := range employees {
		names[employee.ID] = employee.Name
	}

	byEmployee := make(map[int64]*EmployeeSummary)
	for _, report := range reports {
		breakdown := profit.Calculate(figures(report), resolver, s.limits)

		dashboard.Totals.Gross += breakdown.Gross
		dashboard.Totals.Profit += breakdown.Profit
		dashboard.Totals.ProjectProfit += breakdown.ProjectProfit
		dashboard.Totals.SalaryProfit += breakdown.SalaryProfit
		dashboard.ScamTotal += breakdown.Scam
		dashboard.ReportCount++
		dashboard.TotalRequests += report.TotalRequests

		summary, ok := byEmployee[report.EmployeeID]
		if !ok {
			summary = &EmployeeSummary{
				EmployeeID: report.EmployeeID,
				Name:       names[report.EmployeeID],
				OrderCount: orderCounts[report.EmployeeID],
			}
			byEmployee[report.EmployeeID] = summary
		}
		summary.Gross += breakdown.Gross
		summary.Profit += breakdown.Profit
		summary.SalaryProfit += breakdown.SalaryProfit
		summary.Scam += breakdown.Scam
		summary.ReportCount++
	}

	byPlatform := make(map[string]*PlatformSummary)
	for _, order := range orders {
		summary, ok := byPlatform[order.Platform]
		if !ok {
			summary = &PlatformSummary{Platform: order.Platform}
			byPlatform[order.Platform] = summary
		}
		summary.OrderCount++
		summary.Volume += order.TotalUSDT
	}
	dashboard.OrderCount = len(orders)

	dashboard.Totals.Gross = round2(dashboard.Totals.Gross)
	dashboard.Totals.Profit = round2(dashboard.Totals.Profit)
	dashboard.Totals.ProjectProfit = round2(dashboard.Totals.ProjectProfit)
	dashboard.Totals.SalaryProfit = round2(dashboard.Totals.SalaryProfit)
	dashboard.ScamTotal = round2(dashboard.ScamTotal)

	for _, summary := range byEmployee {
		summary.Gross = round2(summary.Gross)
		summary.Profit = round2(summary.Profit)
		summary.SalaryProfit = round2(summary.SalaryProfit)
		summary.Scam = round2(summary.Scam)
		dashboard.Employees = append(dashboard.Employees, *summary)
	}
	sort.Slice(dashboard.Employees, func(i, j int) bool {
		return dashboard.Employees[i].Profit > dashboard.Employees[j].Profit
	})

	for _, summary := range byPlatform {
		summary.Volume = round2(summary.Volume)
		dashboard.Platforms = append(dashboard.Platforms, *summary)
	}
	sort.Slice(dashboard.Platforms, func(i, j int) bool {
		return dashboard.Platforms[i].Platform < dashboard.Platforms[j].Platform
	})

	if s.cache != nil {
		s.cache.SetJSON(ctx, key, dashboard, cache.DefaultDashboardTTL)
	}
	return dashboard, nil
}
