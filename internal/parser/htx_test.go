package parser

import (
	"testing"
	"time"
)

func TestParseFileHTX(t *testing.T) {
	csvData := []byte("Номер:,Монета,Тип,Количество,Цена за ед.,Общая цена,Статус,Время\n" +
		"202401001,USDT,Продать,120.5,97.8,\"11784,9\",Завершено,2024-02-10 08:15:00\n" +
		"202401002,USDT,Купить,200,96.5,19300,Отменено,2024-02-10 09:00:00\n" +
		"202401003,USDT,Купить,,96.5,,Завершено,2024-02-10 10:00:00\n")

	p := New(20)
	result, err := p.ParseFile("htx", "htx_orders.csv", csvData)
	if err != nil {
		t.Fatalf("ParseFile returned error: %v", err)
	}

	if result.Parsed != 2 {
		t.Errorf("expected 2 parsed orders, got %d", result.Parsed)
	}
	if result.Dropped != 1 {
		t.Errorf("expected 1 dropped row (no quantity), got %d", result.Dropped)
	}

	sell := result.Orders[0]
	if sell.OrderID != "202401001" {
		t.Errorf("expected order id 202401001, got %s", sell.OrderID)
	}
	if sell.Side != SideSell {
		t.Errorf("expected side sell, got %s", sell.Side)
	}
	if !floatEquals(sell.TotalUSDT, 11784.9) {
		t.Errorf("expected total 11784.9, got %f", sell.TotalUSDT)
	}
	if sell.Status != StatusFilled {
		t.Errorf("expected status filled, got %s", sell.Status)
	}
	want := time.Date(2024, 2, 10, 8, 15, 0, 0, time.UTC)
	if !sell.ExecutedAt.Equal(want) {
		t.Errorf("expected executed_at %v, got %v", want, sell.ExecutedAt)
	}

	buy := result.Orders[1]
	if buy.Side != SideBuy {
		t.Errorf("expected side buy, got %s", buy.Side)
	}
	if buy.Status != StatusCanceled {
		t.Errorf("expected status canceled, got %s", buy.Status)
	}
}

func TestNormalizeHTXStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Завершено", StatusFilled},
		{"Отменено", StatusCanceled},
		{"Ожидание оплаты", StatusPending},
		{"что-то новое", StatusFilled},
	}

	for _, tt := range tests {
		if got := normalizeHTXStatus(tt.in); got != tt.want {
			t.Errorf("normalizeHTXStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
