package linker

import (
	"context"
	"testing"
	"time"

	"arbitrage-shift-tracker/internal/database"
)

type fakeStore struct {
	accounts map[int64][]string
	orders   []database.Order

	assignCalls int
}

func (s *fakeStore) ActiveAccountNames(ctx context.Context, employeeID int64) ([]string, error) {
	return s.accounts[employeeID], nil
}

func (s *fakeStore) OrdersInWindow(ctx context.Context, accountNames []string, start, end time.Time) ([]database.Order, error) {
	names := make(map[string]bool, len(accountNames))
	for _, n := range accountNames {
		names[n] = true
	}
	var out []database.Order
	for _, o := range s.orders {
		if !names[o.AccountName] {
			continue
		}
		if o.ExecutedAt.Before(start) || o.ExecutedAt.After(end) {
			continue
		}
		out = append(out, o)
	}
	return out, nil
}

func (s *fakeStore) AssignOrdersToEmployee(ctx context.Context, orderIDs []int64, employeeID int64) error {
	s.assignCalls++
	ids := make(map[int64]bool, len(orderIDs))
	for _, id := range orderIDs {
		ids[id] = true
	}
	for i := range s.orders {
		if ids[s.orders[i].ID] {
			e := employeeID
			s.orders[i].EmployeeID = &e
		}
	}
	return nil
}

func tp(t time.Time) *time.Time { return &t }

func ip(v int64) *int64 { return &v }

func order(id int64, account string, employeeID *int64, executedAt time.Time) database.Order {
	return database.Order{
		ID:          id,
		OrderID:     "ord",
		EmployeeID:  employeeID,
		Platform:    "bybit",
		AccountName: account,
		ExecutedAt:  executedAt,
	}
}

func shiftReport(employeeID int64, start, end *time.Time) *database.ShiftReport {
	return &database.ShiftReport{
		ID:             1,
		EmployeeID:     employeeID,
		ShiftDate:      time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC),
		ShiftType:      database.ShiftMorning,
		ShiftStartTime: start,
		ShiftEndTime:   end,
	}
}

func TestLinkAssignsMatchingOrders(t *testing.T) {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC)

	store := &fakeStore{
		accounts: map[int64][]string{42: {"acc-a", "acc-b"}},
		orders: []database.Order{
			order(1, "acc-a", nil, start.Add(time.Hour)),
			order(2, "acc-b", ip(7), start.Add(2*time.Hour)),
			order(3, "acc-a", ip(42), start.Add(3*time.Hour)), // already attributed
			order(4, "acc-c", nil, start.Add(time.Hour)),      // someone else's account
			order(5, "acc-a", nil, end.Add(time.Minute)),      // after the window
		},
	}

	linked, err := New(store).Link(context.Background(), shiftReport(42, tp(start), tp(end)))
	if err != nil {
		t.Fatalf("Link returned error: %v", err)
	}
	if linked != 2 {
		t.Errorf("expected 2 reassignments, got %d", linked)
	}
	for _, id := range []int{0, 1} {
		if store.orders[id].EmployeeID == nil || *store.orders[id].EmployeeID != 42 {
			t.Errorf("order %d should be assigned to employee 42, got %v", store.orders[id].ID, store.orders[id].EmployeeID)
		}
	}
	if store.orders[3].EmployeeID != nil {
		t.Errorf("order on foreign account must stay unassigned, got %v", store.orders[3].EmployeeID)
	}
	if store.orders[4].EmployeeID != nil {
		t.Errorf("order outside the window must stay unassigned, got %v", store.orders[4].EmployeeID)
	}
}

func TestLinkWindowBoundariesInclusive(t *testing.T) {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC)

	store := &fakeStore{
		accounts: map[int64][]string{42: {"acc-a"}},
		orders: []database.Order{
			order(1, "acc-a", nil, start),
			order(2, "acc-a", nil, end),
		},
	}

	linked, err := New(store).Link(context.Background(), shiftReport(42, tp(start), tp(end)))
	if err != nil {
		t.Fatalf("Link returned error: %v", err)
	}
	if linked != 2 {
		t.Errorf("boundary timestamps must match: expected 2, got %d", linked)
	}
}

func TestLinkIdempotent(t *testing.T) {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC)

	store := &fakeStore{
		accounts: map[int64][]string{42: {"acc-a"}},
		orders:   []database.Order{order(1, "acc-a", nil, start.Add(time.Hour))},
	}
	report := shiftReport(42, tp(start), tp(end))
	l := New(store)

	first, err := l.Link(context.Background(), report)
	if err != nil {
		t.Fatalf("first Link returned error: %v", err)
	}
	second, err := l.Link(context.Background(), report)
	if err != nil {
		t.Fatalf("second Link returned error: %v", err)
	}

	if first != 1 || second != 0 {
		t.Errorf("expected 1 then 0 reassignments, got %d then %d", first, second)
	}
	if store.assignCalls != 1 {
		t.Errorf("second run must not write, got %d assign calls", store.assignCalls)
	}
}

func TestLinkRequiresCompleteWindow(t *testing.T) {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)

	store := &fakeStore{
		accounts: map[int64][]string{42: {"acc-a"}},
		orders:   []database.Order{order(1, "acc-a", nil, start.Add(time.Hour))},
	}
	l := New(store)

	for _, report := range []*database.ShiftReport{
		shiftReport(42, nil, nil),
		shiftReport(42, tp(start), nil),
		shiftReport(42, nil, tp(start)),
	} {
		linked, err := l.Link(context.Background(), report)
		if err != nil {
			t.Fatalf("Link returned error: %v", err)
		}
		if linked != 0 {
			t.Errorf("incomplete shift window must link nothing, got %d", linked)
		}
	}
	if store.assignCalls != 0 {
		t.Errorf("incomplete window must not write, got %d assign calls", store.assignCalls)
	}
}

func TestLinkNoActiveAccounts(t *testing.T) {
	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	end := start.Add(12 * time.Hour)

	store := &fakeStore{
		accounts: map[int64][]string{},
		orders:   []database.Order{order(1, "acc-a", nil, start.Add(time.Hour))},
	}

	linked, err := New(store).Link(context.Background(), shiftReport(42, tp(start), tp(end)))
	if err != nil {
		t.Fatalf("Link returned error: %v", err)
	}
	if linked != 0 {
		t.Errorf("employee without active accounts must link nothing, got %d", linked)
	}
}
