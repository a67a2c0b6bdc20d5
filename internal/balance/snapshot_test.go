package balance

import (
	"testing"
)

func TestParseSnapshotShapes(t *testing.T) {
	data := []byte(`{
		"bybit": [
			{"account_id": 1, "balance": 120.5},
			{"account_id": 2, "start_balance": 100, "end_balance": 140}
		],
		"htx": [
			{"id": 3, "balance": 55}
		]
	}`)

	s, err := ParseSnapshot(data)
	if err != nil {
		t.Fatalf("ParseSnapshot returned error: %v", err)
	}

	e1 := s.Find("bybit", 1)
	if e1 == nil || e1.Balance == nil || *e1.Balance != 120.5 {
		t.Errorf("expected bybit account 1 balance 120.5, got %+v", e1)
	}

	e2 := s.Find("bybit", 2)
	if e2 == nil || e2.StartBalance == nil || *e2.StartBalance != 100 || e2.EndBalance == nil || *e2.EndBalance != 140 {
		t.Errorf("expected bybit account 2 start/end 100/140, got %+v", e2)
	}

	// Legacy "id" key still resolves the account
	e3 := s.Find("htx", 3)
	if e3 == nil || e3.Balance == nil || *e3.Balance != 55 {
		t.Errorf("expected htx account 3 balance 55 via legacy id key, got %+v", e3)
	}

	if s.Find("gate", 1) != nil {
		t.Error("expected nil for account missing from snapshot")
	}
}

func TestParseSnapshotEmpty(t *testing.T) {
	for _, data := range [][]byte{nil, []byte(""), []byte("{}"), []byte("null")} {
		s, err := ParseSnapshot(data)
		if err != nil {
			t.Fatalf("ParseSnapshot(%q) returned error: %v", data, err)
		}
		if s == nil {
			t.Fatalf("ParseSnapshot(%q) returned nil snapshot", data)
		}
	}
}

func TestSnapshotMarshalRoundTrip(t *testing.T) {
	s := Snapshot{
		"gate": {{AccountID: 4, Balance: pf(77)}},
	}

	data, err := s.Marshal()
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	parsed, err := ParseSnapshot(data)
	if err != nil {
		t.Fatalf("ParseSnapshot returned error: %v", err)
	}
	e := parsed.Find("gate", 4)
	if e == nil || e.Balance == nil || *e.Balance != 77 {
		t.Errorf("expected gate account 4 balance 77 after round trip, got %+v", e)
	}

	var nilSnap Snapshot
	data, err = nilSnap.Marshal()
	if err != nil || string(data) != "{}" {
		t.Errorf("nil snapshot should marshal to {}, got %s err %v", data, err)
	}
}
