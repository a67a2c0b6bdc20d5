package parser

import (
	"bytes"
	"fmt"
	"strings"
)

// Required bliss export columns. The export separator varies between
// accounts, so the reader auto-detects it before committing to a parse.
var blissRequiredColumns = []string{
	"Creation date",
	"Internal id",
	"Organization user",
	"Amount",
	"Crypto amount",
	"Status",
	"Method",
}

var blissSeparators = []rune{';', ',', '\t'}

// parseBliss parses a bliss CSV export. A row is dropped when the internal
// id or counterparty is empty, or a numeric field fails to convert.
func (p *Parser) parseBliss(data []byte) (*Result, error) {
	t, err := p.readBlissTable(data)
	if err != nil {
		return nil, err
	}

	cols := make(map[string]int, len(t.header))
	for i, name := range t.header {
		cols[name] = i
	}

	result := &Result{}
	for _, row := range t.rows {
		order := p.parseBlissRow(cols, row)
		if order == nil {
			result.Dropped++
			continue
		}
		result.Orders = append(result.Orders, *order)
		result.Parsed++
	}
	return result, nil
}

// readBlissTable tries each candidate separator until the required columns
// all appear in the header.
func (p *Parser) readBlissTable(data []byte) (*table, error) {
	data = stripBOM(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, ErrEmptyFile
	}

	for _, sep := range blissSeparators {
		t, err := p.readCSV(data, sep)
		if err != nil {
			continue
		}
		if hasAllColumns(t.header, blissRequiredColumns) {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: required bliss columns missing", ErrHeaderNotFound)
}

func hasAllColumns(header []string, required []string) bool {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}
	for _, col := range required {
		if !present[col] {
			return false
		}
	}
	return true
}

func (p *Parser) parseBlissRow(cols map[string]int, row []string) *ParsedOrder {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok {
			return ""
		}
		return cellAt(row, i)
	}

	orderID := get("Internal id")
	counterparty := get("Organization user")
	if orderID == "" || isEmptyCell(orderID) || counterparty == "" || isEmptyCell(counterparty) {
		return nil
	}

	total, okTotal := parseLooseFloat(get("Amount"))
	quantity, okQty := parseLooseFloat(get("Crypto amount"))
	if !okTotal || !okQty {
		return nil
	}

	// Side comes from the payment method: sell methods are marked explicitly,
	// everything else is a buy
	side := SideBuy
	method := strings.ToLower(get("Method"))
	for _, kw := range []string{"sell", "продажа", "продать"} {
		if strings.Contains(method, kw) {
			side = SideSell
			break
		}
	}

	rawStatus := get("Status")
	status := normalizeBlissStatus(rawStatus)

	executedAt := p.now()
	if t, ok := parseTimeCell(get("Creation date")); ok {
		executedAt = t
	}

	price := 0.0
	if quantity > 0 {
		price = total / quantity
	}

	return &ParsedOrder{
		OrderID:      orderID,
		Symbol:       "USDT",
		Side:         side,
		Counterparty: counterparty,
		Quantity:     quantity,
		Price:        price,
		TotalUSDT:    total,
		Status:       status,
		RawStatus:    rawStatus,
		ExecutedAt:   executedAt,
	}
}
