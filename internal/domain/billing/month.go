package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/turtacn/MRM-Billing/pkg/errors"
)

// Month is the three-letter lowercase code of a month inside a financial year.
type Month string

const (
	MonthApr Month = "apr"
	MonthMay Month = "may"
	MonthJun Month = "jun"
	MonthJul Month = "jul"
	MonthAug Month = "aug"
	MonthSep Month = "sep"
	MonthOct Month = "oct"
	MonthNov Month = "nov"
	MonthDec Month = "dec"
	MonthJan Month = "jan"
	MonthFeb Month = "feb"
	MonthMar Month = "mar"
)

// Months lists the twelve month codes in financial-year order (April first).
var Months = []Month{
	MonthApr, MonthMay, MonthJun, MonthJul, MonthAug, MonthSep,
	MonthOct, MonthNov, MonthDec, MonthJan, MonthFeb, MonthMar,
}

// FirstCalendarMonth is the calendar month a financial year starts in.
const FirstCalendarMonth = time.April

// ParseMonth validates a month code. Matching is case-insensitive.
func ParseMonth(s string) (Month, error) {
	m := Month(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", errors.Newf(errors.ErrCodeInvalidMonth, "unrecognised month code %q", s)
	}
	return m, nil
}

// Valid reports whether m is one of the twelve month codes.
func (m Month) Valid() bool {
	return m.Index() >= 0
}

// Index returns the zero-based position of m in financial-year order, or -1.
func (m Month) Index() int {
	for i, candidate := range Months {
		if candidate == m {
			return i
		}
	}
	return -1
}

// Calendar returns the calendar month for m.
func (m Month) Calendar() time.Month {
	return time.Month((int(FirstCalendarMonth)-1+m.Index())%12 + 1)
}

// InEndYear reports whether m falls in the end year of its financial year
// (January to March).
func (m Month) InEndYear() bool {
	return m.Calendar() < FirstCalendarMonth
}

// CalendarYear returns the calendar year m falls in for the financial year
// starting in fyStart.
func (m Month) CalendarYear(fyStart int) int {
	if m.InEndYear() {
		return fyStart + 1
	}
	return fyStart
}

// Label renders the month as "April 2025".
func (m Month) Label(fy FinancialYear) string {
	year := fy.StartYear
	if m.InEndYear() {
		year = fy.EndYear
	}
	return fmt.Sprintf("%s %d", m.Calendar().String(), year)
}

// Previous returns the calendar-adjacent preceding month and the start year of
// the financial year it belongs to. April rolls back into March of the prior
// financial year.
func (m Month) Previous(fyStart int) (Month, int) {
	idx := m.Index()
	if idx == 0 {
		return MonthMar, fyStart - 1
	}
	return Months[idx-1], fyStart
}

// Next returns the calendar-adjacent following month and its financial year start.
func (m Month) Next(fyStart int) (Month, int) {
	idx := m.Index()
	if idx == len(Months)-1 {
		return MonthApr, fyStart + 1
	}
	return Months[idx+1], fyStart
}

// FinancialYear is an April-to-March accounting period.
type FinancialYear struct {
	StartYear int `json:"start_year" yaml:"start_year" mapstructure:"start_year"`
	EndYear   int `json:"end_year" yaml:"end_year" mapstructure:"end_year"`
}

// NewFinancialYear builds the financial year that starts in startYear.
func NewFinancialYear(startYear int) FinancialYear {
	return FinancialYear{StartYear: startYear, EndYear: startYear + 1}
}

// Validate checks EndYear = StartYear + 1.
func (fy FinancialYear) Validate() error {
	if fy.StartYear <= 0 {
		return errors.NewValidationError("financial year start must be positive")
	}
	if fy.EndYear != fy.StartYear+1 {
		return errors.Newf(errors.ErrCodeValidation, "financial year %d-%d must span consecutive years", fy.StartYear, fy.EndYear)
	}
	return nil
}

// String renders "2025-2026".
func (fy FinancialYear) String() string {
	return fmt.Sprintf("%d-%d", fy.StartYear, fy.EndYear)
}

// Short renders "2025-26".
func (fy FinancialYear) Short() string {
	return fmt.Sprintf("%d-%02d", fy.StartYear, fy.EndYear%100)
}

// FinancialYearOf returns the month code and financial year containing t.
func FinancialYearOf(t time.Time) (Month, FinancialYear) {
	cal := t.Month()
	idx := (int(cal) - int(FirstCalendarMonth) + 12) % 12
	start := t.Year()
	if cal < FirstCalendarMonth {
		start--
	}
	return Months[idx], NewFinancialYear(start)
}

// ParsePeriod converts a legacy "YYYY-MM" period into a month code and its
// financial year. "2025-04" is April of FY 2025-2026, "2026-02" is February of
// the same financial year.
func ParsePeriod(period string) (Month, FinancialYear, error) {
	parts := strings.Split(strings.TrimSpace(period), "-")
	if len(parts) != 2 {
		return "", FinancialYear{}, errors.Newf(errors.ErrCodeInvalidMonth, "period %q is not YYYY-MM", period)
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year <= 0 {
		return "", FinancialYear{}, errors.Newf(errors.ErrCodeInvalidMonth, "period %q has an invalid year", period)
	}
	num, err := strconv.Atoi(parts[1])
	if err != nil || num < 1 || num > 12 {
		return "", FinancialYear{}, errors.Newf(errors.ErrCodeInvalidMonth, "period %q has an invalid month", period)
	}
	m, fy := FinancialYearOf(time.Date(year, time.Month(num), 1, 0, 0, 0, 0, time.UTC))
	return m, fy, nil
}

//Personal.AI order the ending
