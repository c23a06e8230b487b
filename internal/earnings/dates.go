package earnings

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var dateLayouts = []string{
	dateLayout,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"20060102",
	"Jan 2, 2006",
	"January 2, 2006",
}

// NormalizeDate reduces any supported date or timestamp to YYYY-MM-DD.
// Unparseable input yields "".
func NormalizeDate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}
	if len(s) > len(dateLayout) && s[4] == '-' {
		if t, err := time.Parse(dateLayout, s[:len(dateLayout)]); err == nil {
			return t.Format(dateLayout)
		}
	}
	return ""
}

func parseDay(date string) (time.Time, bool) {
	t, err := time.Parse(dateLayout, NormalizeDate(date))
	return t, err == nil
}

// FiscalLabel derives "Q{quarter}FY{yy}" from the calendar month of date,
// quarter = floor(month0/3)+1 with month0 in 0..11.
func FiscalLabel(date string) string {
	t, ok := parseDay(date)
	if !ok {
		return ""
	}
	quarter := (int(t.Month())-1)/3 + 1
	return fmt.Sprintf("Q%dFY%02d", quarter, t.Year()%100)
}

// IsPast reports whether date falls on a day before now's day.
func IsPast(date string, now time.Time) bool {
	t, ok := parseDay(date)
	if !ok {
		return false
	}
	today := now.Format(dateLayout)
	return t.Format(dateLayout) < today
}

func daysBetween(a, b string) (int, bool) {
	ta, okA := parseDay(a)
	tb, okB := parseDay(b)
	if !okA || !okB {
		return 0, false
	}
	d := int(ta.Sub(tb).Hours() / 24)
	if d < 0 {
		d = -d
	}
	return d, true
}
