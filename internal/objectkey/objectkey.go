// Package objectkey derives deterministic object-store keys for covers.
package objectkey

import (
	"fmt"
	"path"
	"strings"

	"github.com/jmylchreest/covergen/internal/label"
)

// Categories used as the first key segment.
const (
	CategoryMonthly = "monthly"
	CategoryWeekly  = "weekly"
)

// Extension of every stored cover.
const Extension = ".png"

// Monthly returns "monthly/{year}/{month}.png".
func Monthly(month string, year int) string {
	return build(CategoryMonthly, year, hyphenate(month))
}

// Weekly returns "weekly/{year}/{date1}-{date2}.png" with spaces replaced by
// hyphens.
func Weekly(date1, date2 string, year int) string {
	return build(CategoryWeekly, year, hyphenate(date1)+"-"+hyphenate(date2))
}

// ForMonthly is Monthly for a validated request.
func ForMonthly(m label.Monthly) string {
	return Monthly(string(m.Month), m.Year)
}

// ForWeekly is Weekly for a validated request.
func ForWeekly(w label.Weekly) string {
	return Weekly(w.Date1, w.Date2, w.Year)
}

// Slug flattens a key into a single file-name-safe token, e.g.
// "monthly/2025/june.png" becomes "monthly-2025-june".
func Slug(key string) string {
	return strings.ReplaceAll(strings.TrimSuffix(key, Extension), "/", "-")
}

func build(category string, year int, stem string) string {
	return path.Join(category, fmt.Sprint(year), stem+Extension)
}

// hyphenate lowercases s and replaces every whitespace run with one hyphen.
func hyphenate(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), "-")
}
