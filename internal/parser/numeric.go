package parser

import (
	"strconv"
	"strings"
	"time"
)

// parseNumericCell extracts a float from a spreadsheet cell that may carry
// currency symbols, thousands separators or a comma decimal point.
// Returns nil when nothing numeric remains.
func parseNumericCell(v string) *float64 {
	if isEmptyCell(v) {
		return nil
	}

	var b strings.Builder
	for _, r := range v {
		if (r >= '0' && r <= '9') || r == '.' || r == ',' || r == '-' {
			b.WriteRune(r)
		}
	}
	clean := strings.ReplaceAll(b.String(), ",", ".")
	if clean == "" || clean == "-" {
		return nil
	}

	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return nil
	}
	return &f
}

// parseLooseFloat converts a plain numeric string with optional spaces
// (including NBSP thousands separators) and comma decimals
func parseLooseFloat(v string) (float64, bool) {
	if isEmptyCell(v) {
		return 0, false
	}
	clean := strings.NewReplacer(" ", "", " ", "", ",", ".").Replace(v)
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// timeLayouts covers the timestamp formats seen across platform exports
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02/01/2006 15:04",
	"02-01-2006 15:04",
	"2006-01-02T15:04:05",
	"2006/01/02 15:04:05",
}

// parseTimeCell parses a timestamp cell, trying known layouts in order.
// The returned time is naive platform-local.
func parseTimeCell(v string) (time.Time, bool) {
	if isEmptyCell(v) {
		return time.Time{}, false
	}
	v = strings.TrimSpace(v)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
