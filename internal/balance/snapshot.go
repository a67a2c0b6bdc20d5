// Package balance implements shift balance snapshots and the history
// resolver that finds an account's most recent known balance.
package balance

import (
	"encoding/json"
	"fmt"
)

// AccountEntry is one account's balance inside a shift report snapshot.
// Two shapes occur in practice: a single point-in-time balance, or an
// explicit start/end pair recorded during the shift.
type AccountEntry struct {
	AccountID    int64    `json:"account_id,omitempty"`
	Balance      *float64 `json:"balance,omitempty"`
	StartBalance *float64 `json:"start_balance,omitempty"`
	EndBalance   *float64 `json:"end_balance,omitempty"`
}

// UnmarshalJSON accepts both "account_id" and the legacy "id" key
func (e *AccountEntry) UnmarshalJSON(data []byte) error {
	type alias struct {
		AccountID    int64    `json:"account_id"`
		LegacyID     int64    `json:"id"`
		Balance      *float64 `json:"balance"`
		StartBalance *float64 `json:"start_balance"`
		EndBalance   *float64 `json:"end_balance"`
	}
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	e.AccountID = a.AccountID
	if e.AccountID == 0 {
		e.AccountID = a.LegacyID
	}
	e.Balance = a.Balance
	e.StartBalance = a.StartBalance
	e.EndBalance = a.EndBalance
	return nil
}

// Snapshot maps a platform name to the balances of its accounts at
// reporting time
type Snapshot map[string][]AccountEntry

// ParseSnapshot decodes a snapshot from its stored JSON form.
// Empty input yields an empty snapshot, not an error.
func ParseSnapshot(data []byte) (Snapshot, error) {
	if len(data) == 0 {
		return Snapshot{}, nil
	}
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse balance snapshot: %w", err)
	}
	if s == nil {
		s = Snapshot{}
	}
	return s, nil
}

// Marshal encodes the snapshot for storage
func (s Snapshot) Marshal() ([]byte, error) {
	if s == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(s)
}

// Find returns the entry for accountID on platform, or nil
func (s Snapshot) Find(platformName string, accountID int64) *AccountEntry {
	for i := range s[platformName] {
		if s[platformName][i].AccountID == accountID {
			return &s[platformName][i]
		}
	}
	return nil
}
