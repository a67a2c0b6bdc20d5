// Package profit computes the layered profit figures for shift reports:
// gross balance delta, net of transfers, project profit and payroll profit.
package profit

import (
	"math"

	"arbitrage-shift-tracker/internal/balance"
)

// Resolver supplies the prior balance for accounts that report only a
// point-in-time balance instead of an explicit start/end pair
type Resolver interface {
	Resolve(accountID int64, platformName string, asOf balance.ReportRef) float64
}

// Limits holds the sanity ceilings applied during calculation. Balances and
// profits beyond these are treated as data-entry errors and zeroed.
type Limits struct {
	MaxBalanceDelta float64 // per-account start/end ceiling
	MaxGross        float64 // total gross ceiling
}

// DefaultLimits matches the production ceilings
var DefaultLimits = Limits{MaxBalanceDelta: 100000, MaxGross: 50000}

// ReportFigures is the calculation input for one shift report
type ReportFigures struct {
	Ref          balance.ReportRef
	Dokidka      float64 // external top-up
	Internal     float64 // internal transfer
	Scam         float64
	ScamPersonal bool
}

// Breakdown holds the computed profit layers, rounded to 2 decimal places.
// Profit is net of dokidka and internal transfers; ProjectProfit further
// subtracts scam; SalaryProfit subtracts scam only when it was the
// employee's personal fault.
type Breakdown struct {
	Gross         float64 `json:"gross"`
	Profit        float64 `json:"profit"`
	ProjectProfit float64 `json:"project_profit"`
	SalaryProfit  float64 `json:"salary_profit"`
	Scam          float64 `json:"scam"`
	Dokidka       float64 `json:"dokidka"`
	Internal      float64 `json:"internal"`
}

// Calculate computes the profit breakdown for one report. Pure: no side
// effects beyond the resolver's internal memoization.
func Calculate(report ReportFigures, resolver Resolver, limits Limits) Breakdown {
	gross := 0.0

	for platformName, entries := range report.Ref.Balances {
		for _, entry := range entries {
			start := deref(entry.StartBalance)
			end := deref(entry.EndBalance)

			if start == 0 && end == 0 {
				// Point-in-time snapshot: delta against the prior shift's balance
				current := deref(entry.Balance)
				if current != 0 && entry.AccountID != 0 && resolver != nil {
					prev := resolver.Resolve(entry.AccountID, platformName, report.Ref)
					gross += current - prev
				}
				continue
			}

			if math.Abs(start) > limits.MaxBalanceDelta {
				start = 0
			}
			if math.Abs(end) > limits.MaxBalanceDelta {
				end = 0
			}
			gross += end - start
		}
	}

	if math.Abs(gross) > limits.MaxGross {
		gross = 0
	}

	profit := gross - report.Dokidka - report.Internal
	projectProfit := profit - report.Scam
	salaryProfit := profit
	if report.ScamPersonal {
		salaryProfit -= report.Scam
	}

	return Breakdown{
		Gross:         round2(gross),
		Profit:        round2(profit),
		ProjectProfit: round2(projectProfit),
		SalaryProfit:  round2(salaryProfit),
		Scam:          round2(report.Scam),
		Dokidka:       round2(report.Dokidka),
		Internal:      round2(report.Internal),
	}
}

// CalculateAll computes breakdowns for a batch of reports sharing one
// resolver, so the lookback history is sorted and memoized once per batch
func CalculateAll(reports []ReportFigures, resolver Resolver, limits Limits) map[int64]Breakdown {
	results := make(map[int64]Breakdown, len(reports))
	for _, report := range reports {
		results[report.Ref.ID] = Calculate(report, resolver, limits)
	}
	return results
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
