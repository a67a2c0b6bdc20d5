package balance

import (
	"sort"
	"time"
)

// ReportRef is the slice of a shift report the resolver needs for lookback
type ReportRef struct {
	ID        int64
	ShiftDate time.Time
	ShiftType string // morning or evening
	Balances  Snapshot
}

// shiftRank orders shifts within one date: morning before evening
func shiftRank(shiftType string) int {
	if shiftType == "evening" {
		return 1
	}
	return 0
}

// before reports whether a sorts strictly before b in shift history order
func (a ReportRef) before(b ReportRef) bool {
	ad, bd := dateOnly(a.ShiftDate), dateOnly(b.ShiftDate)
	if !ad.Equal(bd) {
		return ad.Before(bd)
	}
	return shiftRank(a.ShiftType) < shiftRank(b.ShiftType)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// InitialBalanceRef is a configured starting balance for an account
type InitialBalanceRef struct {
	Platform    string
	AccountID   *int64
	AccountName string
	Balance     float64
}

// AccountNameFunc maps an account id to its display name, for the
// initial-balance fallback. ok is false when the account is unknown.
type AccountNameFunc func(accountID int64) (name string, ok bool)

type memoKey struct {
	accountID int64
	platform  string
	asOfID    int64
}

// Resolver finds an account's most recent known balance before a given
// report. It works over a pre-loaded report history so a whole aggregation
// pass shares one sorted slice instead of re-querying per account; results
// are memoized per (account, platform, as-of report).
type Resolver struct {
	history     []ReportRef // sorted most recent first
	initial     []InitialBalanceRef
	accountName AccountNameFunc
	memo        map[memoKey]float64
}

// NewResolver builds a resolver over the full report history. The slice is
// copied and sorted; callers may pass reports in any order.
func NewResolver(history []ReportRef, initial []InitialBalanceRef, accountName AccountNameFunc) *Resolver {
	sorted := make([]ReportRef, len(history))
	copy(sorted, history)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[j].before(sorted[i])
	})
	if accountName == nil {
		accountName = func(int64) (string, bool) { return "", false }
	}
	return &Resolver{
		history:     sorted,
		initial:     initial,
		accountName: accountName,
		memo:        make(map[memoKey]float64),
	}
}

// Resolve returns the balance of accountID on platformName as of the shift
// strictly before asOf: the newest prior report whose snapshot mentions the
// account wins; with no such report the InitialBalance entries are consulted
// by account id, then by account name; with no match the account starts at 0.
//
// A report on the same date qualifies only when it is the morning shift and
// asOf is the evening one; a report never sees itself.
func (r *Resolver) Resolve(accountID int64, platformName string, asOf ReportRef) float64 {
	key := memoKey{accountID: accountID, platform: platformName, asOfID: asOf.ID}
	if v, ok := r.memo[key]; ok {
		return v
	}

	v := r.resolve(accountID, platformName, asOf)
	r.memo[key] = v
	return v
}

func (r *Resolver) resolve(accountID int64, platformName string, asOf ReportRef) float64 {
	for _, report := range r.history {
		if report.ID == asOf.ID || !report.before(asOf) {
			continue
		}
		if entry := report.Balances.Find(platformName, accountID); entry != nil {
			if entry.Balance != nil {
				return *entry.Balance
			}
			return 0
		}
	}

	// No prior report mentions the account: fall back to initial balances,
	// matching by explicit account id first
	for _, ib := range r.initial {
		if ib.Platform != platformName {
			continue
		}
		if ib.AccountID != nil && *ib.AccountID == accountID {
			return ib.Balance
		}
	}
	if name, ok := r.accountName(accountID); ok && name != "" {
		for _, ib := range r.initial {
			if ib.Platform == platformName && ib.AccountName == name {
				return ib.Balance
			}
		}
	}
	return 0
}
