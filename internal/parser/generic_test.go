package parser

import (
	"errors"
	"math"
	"testing"
	"time"
)

func floatEquals(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestParseFileBybit(t *testing.T) {
	csvData := []byte("Order No.,Cryptocurrency,Side,Coin Amount,Price,Fiat Amount,Counterparty,Status,Time\n" +
		"1849301,USDT,BUY,100.5,98.20,\"9 869,10\",trader01,Completed,2024-03-05 14:22:10\n" +
		"1849302,USDT,SELL,50,,4950,trader02,Completed,2024-03-05 15:01:00\n" +
		",USDT,BUY,10,99,990,trader03,Completed,2024-03-05 15:30:00\n")

	p := New(20)
	result, err := p.ParseFile("bybit", "orders.csv", csvData)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}

	if result.Parsed != 2 {
		t.Errorf("expected 2 parsed orders, got %d", result.Parsed)
	}
	if result.Dropped != 1 {
		t.Errorf("expected 1 dropped row (missing order id), got %d", result.Dropped)
	}

	first := result.Orders[0]
	if first.OrderID != "1849301" {
		t.Errorf("expected order id 1849301, got %s", first.OrderID)
	}
	if first.Side != SideBuy {
		t.Errorf("expected side buy, got %s", first.Side)
	}
	if !floatEquals(first.Quantity, 100.5) {
		t.Errorf("expected quantity 100.5, got %f", first.Quantity)
	}
	if !floatEquals(first.TotalUSDT, 9869.10) {
		t.Errorf("expected total 9869.10 after comma-decimal cleanup, got %f", first.TotalUSDT)
	}
	if first.Counterparty != "trader01" {
		t.Errorf("expected counterparty trader01, got %s", first.Counterparty)
	}
	if first.Status != StatusFilled {
		t.Errorf("expected status filled, got %s", first.Status)
	}

	wantTime := time.Date(2024, 3, 5, 14, 22, 10, 0, time.UTC)
	if !first.ExecutedAt.Equal(wantTime) {
		t.Errorf("expected executed_at %v, got %v", wantTime, first.ExecutedAt)
	}

	// Second row has no price column value: it must be back-filled from total/quantity
	second := result.Orders[1]
	if !floatEquals(second.Price, 99.0) {
		t.Errorf("expected back-filled price 99.0, got %f", second.Price)
	}
	if second.Side != SideSell {
		t.Errorf("expected side sell, got %s", second.Side)
	}
}

func TestParseGenericRowBackfillAndDefaults(t *testing.T) {
	p := New(20)

	tests := []struct {
		name       string
		header     []string
		row        []string
		wantNil    bool
		wantSymbol string
		wantPrice  float64
		wantTotal  float64
	}{
		{
			name:       "total back-filled from price and quantity",
			header:     []string{"Order ID", "Coin Amount", "Price"},
			row:        []string{"a1", "10", "95.5"},
			wantSymbol: "USDT",
			wantPrice:  95.5,
			wantTotal:  955,
		},
		{
			name:    "dropped without quantity",
			header:  []string{"Order ID", "Price", "Fiat Amount"},
			row:     []string{"a2", "95.5", "955"},
			wantNil: true,
		},
		{
			name:    "dropped when both price and total missing",
			header:  []string{"Order ID", "Coin Amount"},
			row:     []string{"a3", "10"},
			wantNil: true,
		},
		{
			name:       "currency symbols stripped from numbers",
			header:     []string{"Order ID", "Coin Amount", "Price", "Cryptocurrency"},
			row:        []string{"a4", "2 000", "₽97.5", "usdt"},
			wantSymbol: "USDT",
			wantPrice:  97.5,
			wantTotal:  195000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			order := p.parseGenericRow(tt.header, tt.row)
			if tt.wantNil {
				if order != nil {
					t.Fatalf("expected row to be dropped, got %+v", order)
				}
				return
			}
			if order == nil {
				t.Fatal("expected order, got nil")
			}
			if order.Symbol != tt.wantSymbol {
				t.Errorf("expected symbol %s, got %s", tt.wantSymbol, order.Symbol)
			}
			if !floatEquals(order.Price, tt.wantPrice) {
				t.Errorf("expected price %f, got %f", tt.wantPrice, order.Price)
			}
			if !floatEquals(order.TotalUSDT, tt.wantTotal) {
				t.Errorf("expected total %f, got %f", tt.wantTotal, order.TotalUSDT)
			}
		})
	}
}

func TestParseFileGateUsesGenericColumns(t *testing.T) {
	csvData := []byte("order id,currency,type,coin amount,price,fiat amount,status,time\n" +
		"g-77,USDT,sell,25,101.2,2530,completed,2024-06-01 09:00:00\n")

	p := New(20)
	result, err := p.ParseFile("gate", "gate_orders.csv", csvData)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	if result.Parsed != 1 {
		t.Fatalf("expected 1 parsed order, got %d", result.Parsed)
	}
	if result.Orders[0].Side != SideSell {
		t.Errorf("expected side sell, got %s", result.Orders[0].Side)
	}
}

func TestParseFileHeaderBelowPreamble(t *testing.T) {
	// Exports sometimes carry a summary block before the real table
	csvData := []byte("Export for account X\n" +
		"Generated 2024-06-01\n" +
		"Order No.,Coin Amount,Price\n" +
		"b-1,5,100\n")

	p := New(20)
	result, err := p.ParseFile("bybit", "orders.csv", csvData)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}
	if result.Parsed != 1 {
		t.Fatalf("expected 1 parsed order, got %d", result.Parsed)
	}
}

func TestParseFileErrors(t *testing.T) {
	p := New(20)

	if _, err := p.ParseFile("kraken", "orders.csv", []byte("a,b\n1,2\n")); err == nil {
		t.Error("expected error for unsupported platform")
	}

	if _, err := p.ParseFile("bybit", "orders.pdf", []byte("x")); !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("expected ErrUnsupportedFormat, got %v", err)
	}

	if _, err := p.ParseFile("bybit", "orders.csv", []byte("")); !errors.Is(err, ErrEmptyFile) {
		t.Errorf("expected ErrEmptyFile, got %v", err)
	}
}
