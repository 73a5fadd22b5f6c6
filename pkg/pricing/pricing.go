// Package pricing converts a team subscription's remaining days into a
// display price. 30 remaining days cost 15.00 CNY; other durations are
// prorated linearly and rounded half-up to the cent.
package pricing

import (
	"fmt"
	"strings"
	"time"
)

const (
	DefaultBaseDays       = 30
	DefaultBasePriceCents = 1500
)

// RemainingDays returns the whole days from now's date to the expiry date.
// A nil expiry returns -1 (unknown); past or same-day expiry returns 0.
func RemainingDays(expiresAt *time.Time, now time.Time) int {
	if expiresAt == nil {
		return -1
	}
	y1, m1, d1 := now.Date()
	y2, m2, d2 := expiresAt.Date()
	today := time.Date(y1, m1, d1, 0, 0, 0, 0, time.UTC)
	expiry := time.Date(y2, m2, d2, 0, 0, 0, 0, time.UTC)
	days := int(expiry.Sub(today).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

// PriceCents prorates basePriceCents over baseDays for the given remaining
// days, rounding half-up. Negative remainingDays (unknown expiry) yields -1.
func PriceCents(remainingDays, baseDays, basePriceCents int) int {
	if remainingDays < 0 {
		return -1
	}
	if remainingDays == 0 {
		return 0
	}
	numerator := remainingDays * basePriceCents
	return (2*numerator + baseDays) / (2 * baseDays)
}

// FormatYuan renders cents as a yuan string with trailing zeros removed,
// e.g. 1500 -> "15", 1250 -> "12.5". Negative cents yields "".
func FormatYuan(priceCents int) string {
	if priceCents < 0 {
		return ""
	}
	s := fmt.Sprintf("%.2f", float64(priceCents)/100.0)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
