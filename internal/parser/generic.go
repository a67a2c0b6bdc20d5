package parser

import (
	"strings"
)

// Keyword sets for the generic column matcher used by bybit and gate
// exports. A column is classified by the first rule whose keyword occurs in
// the lowercased column name, so rule order matters: e.g. "Coin Amount" must
// be claimed before the bare "amount"-style price/total rules see it.
var (
	kwOrderID      = []string{"order no", "order id", "orderid", "order_id", "номер"}
	kwSymbol       = []string{"cryptocurrency", "symbol", "pair", "пара", "инструмент", "currency", "валюта"}
	kwSide         = []string{"side", "type", "тип", "направление"}
	kwCoinAmount   = []string{"coin amount", "coinamount", "coin_amount"}
	kwPrice        = []string{"price", "цена", "курс"}
	kwFiatAmount   = []string{"fiat amount", "fiatamount", "fiat_amount"}
	kwCounterparty = []string{"counterparty", "nickname", "контрагент"}
	kwStatus       = []string{"status", "статус"}
	kwTime         = []string{"time", "date", "время", "дата", "created"}

	kwBuy  = []string{"buy", "покупка", "long"}
	kwSell = []string{"sell", "продажа", "short"}
)

func matchesAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}

// parseGenericRow extracts an order from a keyword-matched row. Returns nil
// when the row lacks an order id, a quantity, or both price and total.
func (p *Parser) parseGenericRow(header []string, row []string) *ParsedOrder {
	var (
		orderID      string
		symbol       string
		side         string
		counterparty string
		coinAmount   *float64
		price        *float64
		fiatAmount   *float64
	)
	status := StatusFilled
	rawStatus := ""
	executedAt := p.now()

	for i, col := range header {
		colLower := strings.ToLower(strings.TrimSpace(col))
		value := cellAt(row, i)

		switch {
		case matchesAny(colLower, kwOrderID):
			orderID = value

		case matchesAny(colLower, kwSymbol):
			if !isEmptyCell(value) {
				symbol = strings.ToUpper(value)
			}

		case matchesAny(colLower, kwSide):
			sideValue := strings.ToLower(value)
			if matchesAny(sideValue, kwBuy) {
				side = SideBuy
			} else if matchesAny(sideValue, kwSell) {
				side = SideSell
			}

		case matchesAny(colLower, kwCoinAmount):
			if f := parseNumericCell(value); f != nil {
				coinAmount = f
			}

		case matchesAny(colLower, kwPrice):
			if f := parseNumericCell(value); f != nil {
				price = f
			}

		case matchesAny(colLower, kwFiatAmount):
			if f := parseNumericCell(value); f != nil {
				fiatAmount = f
			}

		case matchesAny(colLower, kwCounterparty):
			if !isEmptyCell(value) {
				counterparty = value
			}

		case matchesAny(colLower, kwStatus):
			if !isEmptyCell(value) {
				rawStatus = value
				status = normalizeGenericStatus(value)
			}

		case matchesAny(colLower, kwTime):
			if t, ok := parseTimeCell(value); ok {
				executedAt = t
			}
		}
	}

	// Back-fill whichever of price/total is missing from the other
	if price == nil && nonZero(coinAmount) && nonZero(fiatAmount) {
		v := *fiatAmount / *coinAmount
		price = &v
	}
	if fiatAmount == nil && nonZero(price) && nonZero(coinAmount) {
		v := *price * *coinAmount
		fiatAmount = &v
	}

	if symbol == "" {
		symbol = "USDT"
	}

	if orderID == "" || coinAmount == nil || (price == nil && fiatAmount == nil) {
		return nil
	}

	order := &ParsedOrder{
		OrderID:      orderID,
		Symbol:       symbol,
		Side:         side,
		Counterparty: counterparty,
		Quantity:     *coinAmount,
		Status:       status,
		RawStatus:    rawStatus,
		ExecutedAt:   executedAt,
	}
	if price != nil {
		order.Price = *price
	}
	if fiatAmount != nil {
		order.TotalUSDT = *fiatAmount
	}
	return order
}

func nonZero(f *float64) bool {
	return f != nil && *f != 0
}
