// Package parser turns per-platform order export files (CSV and XLSX) into
// canonical order records. Each platform has its own export quirks: bybit and
// gate use loosely named columns matched by keyword, htx ships fixed Russian
// headers, bliss uses a separator that varies between exports.
package parser

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"arbitrage-shift-tracker/internal/platform"
)

// Order sides
const (
	SideBuy  = "buy"
	SideSell = "sell"
)

// Normalized order statuses
const (
	StatusFilled   = "filled"
	StatusCanceled = "canceled"
	StatusPending  = "pending"
	StatusExpired  = "expired"
	StatusFailed   = "failed"
	StatusAppealed = "appealed"
)

var (
	// ErrEmptyFile is returned for files with no data rows
	ErrEmptyFile = errors.New("file contains no data rows")
	// ErrHeaderNotFound is returned when no recognizable header row exists
	ErrHeaderNotFound = errors.New("header row not found")
	// ErrUnsupportedFormat is returned for file extensions the parser cannot read
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// ParsedOrder is a single order row extracted from an export file.
// ExecutedAt is naive platform-local time; timezone normalization happens
// downstream, at ingestion.
type ParsedOrder struct {
	OrderID      string  `json:"order_id"`
	Symbol       string  `json:"symbol"`
	Side         string  `json:"side"`
	Counterparty string  `json:"counterparty,omitempty"`
	Quantity     float64 `json:"quantity"`
	Price        float64 `json:"price"`
	TotalUSDT    float64 `json:"total_usdt"`
	FeesUSDT     float64 `json:"fees_usdt"`
	Status       string  `json:"status"`
	RawStatus    string  `json:"raw_status,omitempty"`
	ExecutedAt   time.Time `json:"executed_at"`
}

// Result holds the orders extracted from one file plus row counters
type Result struct {
	Orders  []ParsedOrder `json:"orders"`
	Parsed  int           `json:"parsed"`
	Dropped int           `json:"dropped"`
}

// Parser parses platform export files
type Parser struct {
	maxHeaderScan int
	now           func() time.Time
}

// New creates a parser. maxHeaderScan bounds how many leading rows are
// scanned when locating the header in bybit/gate exports.
func New(maxHeaderScan int) *Parser {
	if maxHeaderScan <= 0 {
		maxHeaderScan = 20
	}
	return &Parser{maxHeaderScan: maxHeaderScan, now: time.Now}
}

// ParseFile parses a platform export. The filename is used only to pick the
// reader (xlsx vs csv); bliss exports are always CSV.
func (p *Parser) ParseFile(platformName, filename string, data []byte) (*Result, error) {
	name, err := platform.Validate(platformName)
	if err != nil {
		return nil, err
	}

	if name == platform.Bliss {
		return p.parseBliss(data)
	}

	table, err := p.readTable(filename, data)
	if err != nil {
		return nil, err
	}

	switch name {
	case platform.HTX:
		return p.parseRows(table, p.parseHTXRow), nil
	case platform.Bybit, platform.Gate:
		// Gate exports match the generic keyword layout
		return p.parseRows(table, p.parseGenericRow), nil
	}
	return nil, fmt.Errorf("unsupported platform: %q", platformName)
}

func (p *Parser) readTable(filename string, data []byte) (*table, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".xlsx", ".xls":
		return p.readXLSX(data)
	case ".csv", ".txt", "":
		return p.readCSV(data, ',')
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
}

type rowParser func(header []string, row []string) *ParsedOrder

func (p *Parser) parseRows(t *table, parse rowParser) *Result {
	result := &Result{}
	for _, row := range t.rows {
		order := parse(t.header, row)
		if order == nil {
			result.Dropped++
			continue
		}
		result.Orders = append(result.Orders, *order)
		result.Parsed++
	}
	return result
}
