package ingest

import (
	"context"
	"testing"
	"time"

	"arbitrage-shift-tracker/internal/database"
	"arbitrage-shift-tracker/internal/parser"
	"arbitrage-shift-tracker/internal/platform"
)

// memStore keeps orders in memory and satisfies the full pipeline surface
type memStore struct {
	orders []database.Order
	nextID int64

	transactCalls int
	failInsert    bool
}

func (m *memStore) ActiveAccountNames(ctx context.Context, employeeID int64) ([]string, error) {
	return []string{"acc-a"}, nil
}

func (m *memStore) OrdersInWindow(ctx context.Context, accountNames []string, start, end time.Time) ([]database.Order, error) {
	names := make(map[string]bool, len(accountNames))
	for _, n := range accountNames {
		names[n] = true
	}
	var out []database.Order
	for _, o := range m.orders {
		if names[o.AccountName] && !o.ExecutedAt.Before(start) && !o.ExecutedAt.After(end) {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memStore) AssignOrdersToEmployee(ctx context.Context, orderIDs []int64, employeeID int64) error {
	ids := make(map[int64]bool, len(orderIDs))
	for _, id := range orderIDs {
		ids[id] = true
	}
	for i := range m.orders {
		if ids[m.orders[i].ID] {
			e := employeeID
			m.orders[i].EmployeeID = &e
		}
	}
	return nil
}

func (m *memStore) ExistingOrderIDs(ctx context.Context, platformName string, orderIDs []string) (map[string]bool, error) {
	existing := make(map[string]bool)
	for _, o := range m.orders {
		if o.Platform == platformName {
			existing[o.OrderID] = true
		}
	}
	out := make(map[string]bool)
	for _, id := range orderIDs {
		if existing[id] {
			out[id] = true
		}
	}
	return out, nil
}

func (m *memStore) InsertOrders(ctx context.Context, orders []database.Order) error {
	if m.failInsert {
		return context.DeadlineExceeded
	}
	for _, o := range orders {
		m.nextID++
		o.ID = m.nextID
		m.orders = append(m.orders, o)
	}
	return nil
}

func (m *memStore) Transact(ctx context.Context, fn func(Store) error) error {
	m.transactCalls++
	before := make([]database.Order, len(m.orders))
	copy(before, m.orders)
	if err := fn(m); err != nil {
		m.orders = before
		return err
	}
	return nil
}

func newService(store *memStore) *Service {
	return New(parser.New(10), platform.NewNormalizer(nil), store, nil)
}

// gateCSV builds a generic keyword-header export; gate rows carry no timezone
// offset so timestamps pass through unchanged
func gateCSV() []byte {
	return []byte("Order No.,Cryptocurrency,Type,Coin Amount,Price,Fiat Amount,Counterparty,Status,Time\n" +
		"g-1,USDT,SELL,100,95.5,9550,alice,Completed,2024-05-10 10:00:00\n" +
		"g-2,USDT,BUY,50,96,4800,bob,Completed,2024-05-10 12:30:00\n" +
		"g-3,USDT,SELL,20,95,1900,carol,Completed,2024-05-10 23:30:00\n")
}

func TestIngestPersistsAndLinks(t *testing.T) {
	store := &memStore{}
	svc := newService(store)

	start := time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 10, 21, 0, 0, 0, time.UTC)
	report := &database.ShiftReport{
		ID:             7,
		EmployeeID:     42,
		ShiftDate:      start,
		ShiftType:      database.ShiftMorning,
		ShiftStartTime: &start,
		ShiftEndTime:   &end,
	}

	summary, err := svc.Ingest(context.Background(), Request{
		Platform:    "gate",
		Filename:    "orders.csv",
		Data:        gateCSV(),
		AccountName: "acc-a",
		WindowStart: &start,
		WindowEnd:   &end,
		Report:      report,
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	if summary.TotalParsed != 3 {
		t.Errorf("expected 3 parsed rows, got %d", summary.TotalParsed)
	}
	if summary.Created != 2 {
		t.Errorf("expected 2 created (one row outside the window), got %d", summary.Created)
	}
	if summary.Skipped != 0 {
		t.Errorf("expected 0 skipped, got %d", summary.Skipped)
	}
	if len(store.orders) != 2 {
		t.Fatalf("expected 2 persisted orders, got %d", len(store.orders))
	}
	for _, o := range store.orders {
		if o.AccountName != "acc-a" {
			t.Errorf("expected account name acc-a, got %q", o.AccountName)
		}
		if o.EmployeeID == nil || *o.EmployeeID != 42 {
			t.Errorf("expected order attributed to employee 42, got %v", o.EmployeeID)
		}
	}
}

func TestIngestIdempotent(t *testing.T) {
	store := &memStore{}
	svc := newService(store)
	req := Request{
		Platform:    "gate",
		Filename:    "orders.csv",
		Data:        gateCSV(),
		AccountName: "acc-a",
	}

	first, err := svc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("first Ingest returned error: %v", err)
	}
	second, err := svc.Ingest(context.Background(), req)
	if err != nil {
		t.Fatalf("second Ingest returned error: %v", err)
	}

	if first.Created != 3 || first.Skipped != 0 {
		t.Errorf("first run: expected 3 created 0 skipped, got %d/%d", first.Created, first.Skipped)
	}
	if second.Created != 0 || second.Skipped != first.Created {
		t.Errorf("second run: expected 0 created, skipped equal to first run's created, got %d/%d", second.Created, second.Skipped)
	}
	if len(store.orders) != 3 {
		t.Errorf("expected 3 persisted orders after both runs, got %d", len(store.orders))
	}
}

func TestIngestAppliesTimezoneOnce(t *testing.T) {
	store := &memStore{}
	svc := newService(store)

	// bybit export times are platform-local, three hours behind the
	// reference time zone
	data := []byte("Order No.,Cryptocurrency,Type,Coin Amount,Price,Fiat Amount,Status,Time\n" +
		"b-1,USDT,SELL,100,95.5,9550,Completed,2024-05-10 10:00:00\n")

	_, err := svc.Ingest(context.Background(), Request{
		Platform:    "bybit",
		Filename:    "orders.csv",
		Data:        data,
		AccountName: "acc-a",
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}

	want := time.Date(2024, 5, 10, 13, 0, 0, 0, time.UTC)
	if !store.orders[0].ExecutedAt.Equal(want) {
		t.Errorf("expected executed_at %v after offset, got %v", want, store.orders[0].ExecutedAt)
	}
}

func TestIngestWindowBoundariesInclusive(t *testing.T) {
	store := &memStore{}
	svc := newService(store)

	start := time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC)
	end := time.Date(2024, 5, 10, 12, 30, 0, 0, time.UTC)

	summary, err := svc.Ingest(context.Background(), Request{
		Platform:    "gate",
		Filename:    "orders.csv",
		Data:        gateCSV(),
		AccountName: "acc-a",
		WindowStart: &start,
		WindowEnd:   &end,
	})
	if err != nil {
		t.Fatalf("Ingest returned error: %v", err)
	}
	if summary.Created != 2 {
		t.Errorf("rows at the exact window bounds must be kept: expected 2, got %d", summary.Created)
	}
}

func TestIngestRejectsUnknownPlatform(t *testing.T) {
	store := &memStore{}
	svc := newService(store)

	_, err := svc.Ingest(context.Background(), Request{Platform: "kraken", Data: gateCSV()})
	if err == nil {
		t.Fatal("expected error for unsupported platform")
	}
	if store.transactCalls != 0 {
		t.Errorf("unsupported platform must not open a transaction, got %d", store.transactCalls)
	}
}

func TestIngestRollsBackOnInsertFailure(t *testing.T) {
	store := &memStore{failInsert: true}
	svc := newService(store)

	_, err := svc.Ingest(context.Background(), Request{
		Platform:    "gate",
		Filename:    "orders.csv",
		Data:        gateCSV(),
		AccountName: "acc-a",
	})
	if err == nil {
		t.Fatal("expected error from failing insert")
	}
	if len(store.orders) != 0 {
		t.Errorf("failed batch must leave no orders behind, got %d", len(store.orders))
	}
}
