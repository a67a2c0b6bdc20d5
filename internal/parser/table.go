package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// table is a parsed spreadsheet: one header row plus data rows
type table struct {
	header []string
	rows   [][]string
}

// headerMarkers identify a header row in loosely formatted exports. Some
// platforms prepend summary rows before the real table.
var headerMarkers = []string{
	"order no", "order id", "orderid", "order_id", "номер",
	"status", "статус",
}

func (p *Parser) readCSV(data []byte, sep rune) (*table, error) {
	data = stripBOM(data)

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sep
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return p.buildTable(records)
}

func (p *Parser) readXLSX(data []byte) (*table, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptyFile
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read xlsx rows: %w", err)
	}
	return p.buildTable(rows)
}

func (p *Parser) buildTable(records [][]string) (*table, error) {
	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headerIdx := p.locateHeader(records)
	if headerIdx < 0 {
		return nil, ErrHeaderNotFound
	}
	if headerIdx+1 >= len(records) {
		return nil, ErrEmptyFile
	}

	header := make([]string, len(records[headerIdx]))
	for i, cell := range records[headerIdx] {
		header[i] = strings.TrimSpace(cell)
	}

	return &table{header: header, rows: records[headerIdx+1:]}, nil
}

// locateHeader scans the leading rows for one that carries a known header
// marker. Falls back to the first row when nothing matches within the scan
// window, since clean exports start with the header.
func (p *Parser) locateHeader(records [][]string) int {
	limit := p.maxHeaderScan
	if limit > len(records) {
		limit = len(records)
	}
	for i := 0; i < limit; i++ {
		for _, cell := range records[i] {
			lower := strings.ToLower(strings.TrimSpace(cell))
			for _, marker := range headerMarkers {
				if strings.Contains(lower, marker) {
					return i
				}
			}
		}
	}
	if len(records) > 0 {
		return 0
	}
	return -1
}

func stripBOM(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
}

// cellAt returns the trimmed cell value, tolerating short rows
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// isEmptyCell reports whether a cell is blank or a spreadsheet NaN artifact
func isEmptyCell(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "nan", "none":
		return true
	}
	return false
}
