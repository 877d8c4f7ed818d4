package objectkey

import (
	"strings"
	"testing"
	"unicode"

	"github.com/jmylchreest/covergen/internal/label"
	"github.com/jmylchreest/covergen/internal/security"
)

func TestMonthly(t *testing.T) {
	tests := []struct {
		month string
		year  int
		want  string
	}{
		{month: "march", year: 2025, want: "monthly/2025/march.png"},
		{month: "june", year: 2031, want: "monthly/2031/june.png"},
		{month: "June", year: 2025, want: "monthly/2025/june.png"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := Monthly(tt.month, tt.year); got != tt.want {
				t.Errorf("Monthly(%q, %d) = %q, want %q", tt.month, tt.year, got, tt.want)
			}
		})
	}
}

func TestWeekly(t *testing.T) {
	tests := []struct {
		date1, date2 string
		year         int
		want         string
	}{
		{date1: "march 3", date2: "march 9", year: 2025, want: "weekly/2025/march-3-march-9.png"},
		{date1: "december 29", date2: "january 4", year: 2026, want: "weekly/2026/december-29-january-4.png"},
		{date1: "march  3", date2: " march 9", year: 2025, want: "weekly/2025/march-3-march-9.png"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := Weekly(tt.date1, tt.date2, tt.year)
			if got != tt.want {
				t.Errorf("Weekly() = %q, want %q", got, tt.want)
			}
			if strings.IndexFunc(got, unicode.IsSpace) >= 0 {
				t.Errorf("Weekly() = %q contains whitespace", got)
			}
			if err := security.ValidateObjectKey(got); err != nil {
				t.Errorf("ValidateObjectKey(%q) = %v", got, err)
			}
		})
	}
}

func TestKeysAreStable(t *testing.T) {
	w := label.Weekly{Date1: "march 3", Date2: "march 9", Year: 2025}
	if ForWeekly(w) != ForWeekly(w) {
		t.Error("ForWeekly is not idempotent")
	}
	m := label.Monthly{Month: label.June, Year: 2025}
	if got := ForMonthly(m); got != "monthly/2025/june.png" {
		t.Errorf("ForMonthly() = %q", got)
	}
}

func TestSlug(t *testing.T) {
	if got := Slug("weekly/2025/march-3-march-9.png"); got != "weekly-2025-march-3-march-9" {
		t.Errorf("Slug() = %q", got)
	}
}
