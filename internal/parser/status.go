package parser

import "strings"

// normalizeGenericStatus maps bybit/gate status strings to the canonical
// set. Unknown values count as filled: those exports only include executed
// orders unless marked otherwise.
func normalizeGenericStatus(v string) string {
	s := strings.ToLower(strings.TrimSpace(v))
	switch {
	case strings.Contains(s, "completed") || strings.Contains(s, "завершен"):
		return StatusFilled
	case strings.Contains(s, "canceled") || strings.Contains(s, "cancelled") || strings.Contains(s, "отменен"):
		return StatusCanceled
	case strings.Contains(s, "pending") || strings.Contains(s, "ожидание"):
		return StatusPending
	default:
		return StatusFilled
	}
}

// normalizeHTXStatus maps HTX Russian status strings to the canonical set
func normalizeHTXStatus(v string) string {
	s := strings.ToLower(strings.TrimSpace(v))
	switch {
	case strings.Contains(s, "завершено"):
		return StatusFilled
	case strings.Contains(s, "отменено"):
		return StatusCanceled
	case strings.Contains(s, "ожидание"):
		return StatusPending
	default:
		return StatusFilled
	}
}

// normalizeBlissStatus maps bliss status strings to the canonical set.
// Unknown values count as pending: bliss exports include in-flight payments.
func normalizeBlissStatus(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "success", "completed", "done":
		return StatusFilled
	case "cancelled", "canceled":
		return StatusCanceled
	case "expired":
		return StatusExpired
	case "failed":
		return StatusFailed
	default:
		return StatusPending
	}
}
