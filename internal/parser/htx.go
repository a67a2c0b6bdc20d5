package parser

import (
	"strings"
)

// HTX export column headers. These are fixed strings, not keywords: the HTX
// P2P export always ships Russian headers, including the trailing colon on
// the order number column.
const (
	htxColOrderID  = "Номер:"
	htxColCoin     = "Монета"
	htxColSide     = "Тип"
	htxColQuantity = "Количество"
	htxColPrice    = "Цена за ед."
	htxColTotal    = "Общая цена"
	htxColStatus   = "Статус"
	htxColTime     = "Время"
)

// parseHTXRow extracts an order from an HTX export row. Returns nil when the
// row lacks an order id, a quantity, or both price and total.
func (p *Parser) parseHTXRow(header []string, row []string) *ParsedOrder {
	var (
		orderID  string
		symbol   string
		side     string
		quantity *float64
		price    *float64
		total    *float64
	)
	status := StatusFilled
	rawStatus := ""
	executedAt := p.now()

	for i, col := range header {
		value := cellAt(row, i)

		switch strings.TrimSpace(col) {
		case htxColOrderID:
			orderID = value

		case htxColCoin:
			if !isEmptyCell(value) {
				symbol = strings.ToUpper(value)
			}

		case htxColSide:
			lower := strings.ToLower(value)
			if strings.Contains(lower, "продать") {
				side = SideSell
			} else if strings.Contains(lower, "купить") {
				side = SideBuy
			}

		case htxColQuantity:
			if f, ok := parseLooseFloat(value); ok {
				quantity = &f
			}

		case htxColPrice:
			if f, ok := parseLooseFloat(value); ok {
				price = &f
			}

		case htxColTotal:
			if f, ok := parseLooseFloat(value); ok {
				total = &f
			}

		case htxColStatus:
			if !isEmptyCell(value) {
				rawStatus = value
				status = normalizeHTXStatus(value)
			}

		case htxColTime:
			if t, ok := parseTimeCell(value); ok {
				executedAt = t
			}
		}
	}

	if price == nil && nonZero(quantity) && nonZero(total) {
		v := *total / *quantity
		price = &v
	}
	if total == nil && nonZero(price) && nonZero(quantity) {
		v := *price * *quantity
		total = &v
	}

	if symbol == "" {
		symbol = "USDT"
	}

	if orderID == "" || quantity == nil || (price == nil && total == nil) {
		return nil
	}

	order := &ParsedOrder{
		OrderID:    orderID,
		Symbol:     symbol,
		Side:       side,
		Quantity:   *quantity,
		Status:     status,
		RawStatus:  rawStatus,
		ExecutedAt: executedAt,
	}
	if price != nil {
		order.Price = *price
	}
	if total != nil {
		order.TotalUSDT = *total
	}
	return order
}
