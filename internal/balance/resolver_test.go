package balance

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC)
}

func pf(v float64) *float64 { return &v }

func snapshotWithBalance(platformName string, accountID int64, bal float64) Snapshot {
	return Snapshot{
		platformName: {{AccountID: accountID, Balance: pf(bal)}},
	}
}

func TestResolveMonotonicLookback(t *testing.T) {
	r1 := ReportRef{ID: 1, ShiftDate: day(1), ShiftType: "morning", Balances: snapshotWithBalance("bybit", 7, 100)}
	r2 := ReportRef{ID: 2, ShiftDate: day(1), ShiftType: "evening", Balances: snapshotWithBalance("bybit", 7, 150)}
	r3 := ReportRef{ID: 3, ShiftDate: day(2), ShiftType: "morning", Balances: snapshotWithBalance("bybit", 7, 200)}

	resolver := NewResolver([]ReportRef{r3, r1, r2}, nil, nil)

	if got := resolver.Resolve(7, "bybit", r3); got != 150 {
		t.Errorf("resolve as of day2 morning: expected 150 (day1 evening), got %f", got)
	}
	if got := resolver.Resolve(7, "bybit", r2); got != 100 {
		t.Errorf("resolve as of day1 evening: expected 100 (day1 morning), got %f", got)
	}
	if got := resolver.Resolve(7, "bybit", r1); got != 0 {
		t.Errorf("resolve as of day1 morning: expected 0 (no history), got %f", got)
	}
}

func TestResolveSameDateVisibility(t *testing.T) {
	morning := ReportRef{ID: 1, ShiftDate: day(3), ShiftType: "morning", Balances: snapshotWithBalance("htx", 4, 500)}
	evening := ReportRef{ID: 2, ShiftDate: day(3), ShiftType: "evening", Balances: snapshotWithBalance("htx", 4, 600)}

	resolver := NewResolver([]ReportRef{morning, evening}, nil, nil)

	// Evening sees the same day's morning report
	if got := resolver.Resolve(4, "htx", evening); got != 500 {
		t.Errorf("evening lookback: expected 500, got %f", got)
	}
	// Morning must not see the same day's evening report
	if got := resolver.Resolve(4, "htx", morning); got != 0 {
		t.Errorf("morning lookback: expected 0, got %f", got)
	}
}

func TestResolveNeverSeesItself(t *testing.T) {
	only := ReportRef{ID: 1, ShiftDate: day(1), ShiftType: "morning", Balances: snapshotWithBalance("gate", 9, 999)}

	resolver := NewResolver([]ReportRef{only}, nil, nil)
	if got := resolver.Resolve(9, "gate", only); got != 0 {
		t.Errorf("expected 0, report must not resolve against itself, got %f", got)
	}
}

func TestResolvePicksNewestMention(t *testing.T) {
	// Account 5 appears on day1 and day3 but not day4; lookback from day5
	// must return day3's value
	history := []ReportRef{
		{ID: 1, ShiftDate: day(1), ShiftType: "morning", Balances: snapshotWithBalance("bybit", 5, 10)},
		{ID: 2, ShiftDate: day(3), ShiftType: "evening", Balances: snapshotWithBalance("bybit", 5, 30)},
		{ID: 3, ShiftDate: day(4), ShiftType: "morning", Balances: snapshotWithBalance("bybit", 8, 80)},
	}
	asOf := ReportRef{ID: 4, ShiftDate: day(5), ShiftType: "morning"}

	resolver := NewResolver(history, nil, nil)
	if got := resolver.Resolve(5, "bybit", asOf); got != 30 {
		t.Errorf("expected 30 from day3 evening, got %f", got)
	}
}

func TestResolveEntryWithoutBalanceCountsAsZero(t *testing.T) {
	prior := ReportRef{
		ID:        1,
		ShiftDate: day(1),
		ShiftType: "morning",
		Balances: Snapshot{
			"bybit": {{AccountID: 5, StartBalance: pf(10), EndBalance: pf(20)}},
		},
	}
	asOf := ReportRef{ID: 2, ShiftDate: day(2), ShiftType: "morning"}

	resolver := NewResolver([]ReportRef{prior}, nil, nil)
	if got := resolver.Resolve(5, "bybit", asOf); got != 0 {
		t.Errorf("entry without balance field should resolve to 0, got %f", got)
	}
}

func TestResolveInitialBalanceFallback(t *testing.T) {
	accID := int64(11)
	initial := []InitialBalanceRef{
		{Platform: "bliss", AccountID: &accID, AccountName: "acc-a", Balance: 250},
		{Platform: "bliss", AccountName: "acc-b", Balance: 400},
		{Platform: "bybit", AccountName: "acc-b", Balance: 999},
	}
	names := func(id int64) (string, bool) {
		if id == 12 {
			return "acc-b", true
		}
		return "", false
	}
	asOf := ReportRef{ID: 1, ShiftDate: day(1), ShiftType: "morning"}

	resolver := NewResolver(nil, initial, names)

	// Matched by explicit account id
	if got := resolver.Resolve(11, "bliss", asOf); got != 250 {
		t.Errorf("expected 250 by account id, got %f", got)
	}
	// Matched by account name on the right platform
	if got := resolver.Resolve(12, "bliss", asOf); got != 400 {
		t.Errorf("expected 400 by account name, got %f", got)
	}
	// Unknown account resolves to 0
	if got := resolver.Resolve(13, "bliss", asOf); got != 0 {
		t.Errorf("expected 0 for unknown account, got %f", got)
	}
}

func TestResolveMemoizes(t *testing.T) {
	calls := 0
	names := func(id int64) (string, bool) {
		calls++
		return "", false
	}
	asOf := ReportRef{ID: 1, ShiftDate: day(1), ShiftType: "morning"}

	resolver := NewResolver(nil, nil, names)
	resolver.Resolve(1, "bybit", asOf)
	resolver.Resolve(1, "bybit", asOf)
	resolver.Resolve(1, "bybit", asOf)

	if calls != 1 {
		t.Errorf("expected one uncached resolution, got %d", calls)
	}
}
