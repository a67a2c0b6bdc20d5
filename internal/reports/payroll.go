package reports

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"arbitrage-shift-tracker/internal/cache"
	"arbitrage-shift-tracker/internal/profit"
)

// PayrollEntry is one employee's computed salary for a period
type PayrollEntry struct {
	EmployeeID    int64   `json:"employee_id"`
	Name          string  `json:"name"`
	Percent       float64 `json:"percent"`
	SalaryProfit  float64 `json:"salary_profit"`
	Salary        float64 `json:"salary"`
	ReportCount   int     `json:"report_count"`
	TotalRequests int     `json:"total_requests"`
	ScamTotal     float64 `json:"scam_total"`
}

// Payroll computes per-employee salaries for a period: the sum of each
// report's payroll profit multiplied by the employee's percent. The percent
// falls back from the employee override to the stored settings to the
// configured default.
func (s *Service) Payroll(ctx context.Context, from, to time.Time) ([]PayrollEntry, error) {
	key := fmt.Sprintf(cache.KeyPayroll, from.Format("2006-01-02"), to.Format("2006-01-02"))
	if s.cache != nil {
		var cached []PayrollEntry
		if err := s.cache.GetJSON(ctx, key, &cached); err == nil {
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
	settings, err := s.repo.GetSalarySettings(ctx)
	if err != nil {
		return nil, err
	}
	resolver, err := s.buildResolver(ctx)
	if err != nil {
		return nil, err
	}

	fallback := float64(settings.BasePercent)
	if fallback <= 0 {
		fallback = s.basePercent
	}

	byEmployee := make(map[int64]*PayrollEntry)
	for _, employee := range employees {
		percent := fallback
		if employee.SalaryPercent != nil {
			percent = *employee.SalaryPercent
		}
		byEmployee[employee.ID] = &PayrollEntry{
			EmployeeID: employee.ID,
			Name:       employee.Name,
			Percent:    percent,
		}
	}

	for _, report := range reports {
		entry, ok := byEmployee[report.EmployeeID]
		if !ok {
			continue
		}
		breakdown := profit.Calculate(figures(report), resolver, s.limits)
		entry.SalaryProfit += breakdown.SalaryProfit
		entry.ScamTotal += breakdown.Scam
		entry.ReportCount++
		entry.TotalRequests += report.TotalRequests
	}

	var payroll []PayrollEntry
	for _, entry := range byEmployee {
		if entry.ReportCount == 0 {
			continue
		}
		entry.SalaryProfit = round2(entry.SalaryProfit)
		entry.ScamTotal = round2(entry.ScamTotal)
		entry.Salary = round2(entry.SalaryProfit * entry.Percent / 100)
		payroll = append(payroll, *entry)
	}
	sort.Slice(payroll, func(i, j int) bool { return payroll[i].Salary > payroll[j].Salary })

	if s.cache != nil {
		s.cache.SetJSON(ctx, key, payroll, cache.DefaultProfitTTL)
	}
	return payroll, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
