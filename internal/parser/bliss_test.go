package parser

import (
	"testing"
	"time"
)

const blissHeader = "Creation date;Internal id;Organization user;Amount;Crypto amount;Status;Method"

func TestParseFileBliss(t *testing.T) {
	csvData := []byte(blissHeader + "\n" +
		"05.03.2024 14:22:10;bl-1001;acc-main;9 800,50;100,5;success;SBP Sell\n" +
		"05.03.2024 15:00:00;bl-1002;acc-main;4950;50;failed;card\n" +
		"05.03.2024 15:30:00;;acc-main;990;10;success;card\n" +
		"05.03.2024 16:00:00;bl-1004;;990;10;success;card\n" +
		"05.03.2024 16:30:00;bl-1005;acc-main;not-a-number;10;success;card\n")

	p := New(20)
	result, err := p.ParseFile("bliss", "bliss_export.csv", csvData)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}

	if result.Parsed != 2 {
		t.Errorf("expected 2 parsed orders, got %d", result.Parsed)
	}
	if result.Dropped != 3 {
		t.Errorf("expected 3 dropped rows, got %d", result.Dropped)
	}

	first := result.Orders[0]
	if first.OrderID != "bl-1001" {
		t.Errorf("expected order id bl-1001, got %s", first.OrderID)
	}
	if first.Counterparty != "acc-main" {
		t.Errorf("expected counterparty acc-main, got %s", first.Counterparty)
	}
	if first.Side != SideSell {
		t.Errorf("expected side sell from method %q, got %s", "SBP Sell", first.Side)
	}
	if !floatEquals(first.Quantity, 100.5) {
		t.Errorf("expected quantity 100.5, got %f", first.Quantity)
	}
	if !floatEquals(first.TotalUSDT, 9800.50) {
		t.Errorf("expected total 9800.50, got %f", first.TotalUSDT)
	}
	// Price is derived: fiat amount / crypto amount
	if !floatEquals(first.Price, 9800.50/100.5) {
		t.Errorf("expected derived price %f, got %f", 9800.50/100.5, first.Price)
	}
	if first.Status != StatusFilled {
		t.Errorf("expected status filled, got %s", first.Status)
	}
	want := time.Date(2024, 3, 5, 14, 22, 10, 0, time.UTC)
	if !first.ExecutedAt.Equal(want) {
		t.Errorf("expected executed_at %v, got %v", want, first.ExecutedAt)
	}

	second := result.Orders[1]
	if second.Side != SideBuy {
		t.Errorf("expected side buy for method card, got %s", second.Side)
	}
	if second.Status != StatusFailed {
		t.Errorf("expected status failed, got %s", second.Status)
	}
}

func TestParseBlissSeparatorDetection(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{
			name: "comma separated",
			data: "Creation date,Internal id,Organization user,Amount,Crypto amount,Status,Method\n" +
				"05.03.2024 14:22:10,bl-1,acc,1000,10,success,card\n",
		},
		{
			name: "tab separated",
			data: "Creation date\tInternal id\tOrganization user\tAmount\tCrypto amount\tStatus\tMethod\n" +
				"05.03.2024 14:22:10\tbl-1\tacc\t1000\t10\tsuccess\tcard\n",
		},
	}

	p := New(20)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := p.ParseFile("bliss", "export.csv", []byte(tt.data))
			if err != nil {
				t.Fatalf("ParseFile returned error: %v", err)
			}
			if result.Parsed != 1 {
				t.Errorf("expected 1 parsed order, got %d", result.Parsed)
			}
		})
	}
}

func TestParseBlissMissingColumns(t *testing.T) {
	data := []byte("Creation date;Internal id;Amount\n05.03.2024 14:22:10;bl-1;1000\n")

	p := New(20)
	if _, err := p.ParseFile("bliss", "export.csv", []byte(data)); err == nil {
		t.Error("expected error when required columns are missing")
	}
}

func TestNormalizeBlissStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"success", StatusFilled},
		{"Completed", StatusFilled},
		{"done", StatusFilled},
		{"cancelled", StatusCanceled},
		{"canceled", StatusCanceled},
		{"expired", StatusExpired},
		{"failed", StatusFailed},
		{"in_progress", StatusPending},
	}

	for _, tt := range tests {
		if got := normalizeBlissStatus(tt.in); got != tt.want {
			t.Errorf("normalizeBlissStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
