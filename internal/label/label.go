// Package label validates and canonicalises the month, date and year fields
// of cover requests. Labels are opaque strings: no calendar arithmetic is done,
// so "february 30" is a valid weekly date.
package label

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/jmylchreest/covergen/internal/apperr"
)

// DefaultMinYear is the earliest year accepted unless configured otherwise.
const DefaultMinYear = 2025

// Month is a canonical lowercase English month name.
type Month string

// Canonical month names.
const (
	January   Month = "january"
	February  Month = "february"
	March     Month = "march"
	April     Month = "april"
	May       Month = "may"
	June      Month = "june"
	July      Month = "july"
	August    Month = "august"
	September Month = "september"
	October   Month = "october"
	November  Month = "november"
	December  Month = "december"
)

var months = []Month{
	January, February, March, April, May, June,
	July, August, September, October, November, December,
}

// Months returns the twelve canonical month names in calendar order.
func Months() []Month {
	return slices.Clone(months)
}

// datePattern matches a canonicalised "<month> <day>" with day in 1..31.
var datePattern = regexp.MustCompile(
	`^(january|february|march|april|may|june|july|august|september|october|november|december) ([1-9]|[12][0-9]|3[01])$`,
)

// Monthly is a validated monthly cover request.
type Monthly struct {
	Month Month `json:"month"`
	Year  int   `json:"year"`
}

// Text is the label painted on the cover and hashed into its colour.
func (m Monthly) Text() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// Weekly is a validated weekly cover request spanning two dates.
type Weekly struct {
	Date1 string `json:"date1"`
	Date2 string `json:"date2"`
	Year  int    `json:"year"`
}

// Text is the string hashed into the weekly cover colour.
func (w Weekly) Text() string {
	return fmt.Sprintf("%s %s %d", w.Date1, w.Date2, w.Year)
}

// Validator checks request fields against the configured year floor.
type Validator struct {
	MinYear int
}

// NewValidator returns a Validator with the given minimum year. A
// non-positive minYear selects DefaultMinYear.
func NewValidator(minYear int) Validator {
	if minYear <= 0 {
		minYear = DefaultMinYear
	}
	return Validator{MinYear: minYear}
}

// ValidateMonthly canonicalises month and checks both fields, reporting every
// failing field in a single ValidationError.
func (v Validator) ValidateMonthly(month string, year int) (Monthly, error) {
	verr := &apperr.ValidationError{}

	m, err := ParseMonth(month)
	if err != nil {
		verr.Add("month", "%v", err)
	}
	v.checkYear(verr, year)

	if err := verr.OrNil(); err != nil {
		return Monthly{}, err
	}
	return Monthly{Month: m, Year: year}, nil
}

// ValidateWeekly canonicalises both dates and checks every field.
func (v Validator) ValidateWeekly(date1, date2 string, year int) (Weekly, error) {
	verr := &apperr.ValidationError{}

	d1, err := ParseDate(date1)
	if err != nil {
		verr.Add("date1", "%v", err)
	}
	d2, err := ParseDate(date2)
	if err != nil {
		verr.Add("date2", "%v", err)
	}
	v.checkYear(verr, year)

	if err := verr.OrNil(); err != nil {
		return Weekly{}, err
	}
	return Weekly{Date1: d1, Date2: d2, Year: year}, nil
}

func (v Validator) checkYear(verr *apperr.ValidationError, year int) {
	minYear := v.MinYear
	if minYear <= 0 {
		minYear = DefaultMinYear
	}
	if year < minYear {
		verr.Add("year", "must be %d or later, got %d", minYear, year)
	}
}

// ParseMonth returns the canonical form of a case-insensitive month name.
func ParseMonth(s string) (Month, error) {
	m := Month(Canonical(s))
	if slices.Contains(months, m) {
		return m, nil
	}
	return "", fmt.Errorf("unknown month %q", s)
}

// ParseDate returns the canonical "<month> <day>" form of a raw date label.
func ParseDate(s string) (string, error) {
	c := Canonical(s)
	if !datePattern.MatchString(c) {
		return "", fmt.Errorf("%q is not of the form \"<month> <day>\" with day 1-31", s)
	}
	return c, nil
}

// ParseYear parses a decimal year, used by the CLI where fields arrive as text.
func ParseYear(s string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid year %q: %w", s, err)
	}
	return year, nil
}

// Canonical lowercases s, trims it and collapses internal whitespace runs to
// a single space.
func Canonical(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}
