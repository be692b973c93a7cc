package bank

import (
	"regexp"
	"strconv"
	"time"
)

// Period is the statement period (billing year and month) a file covers.
// Exports that print dates as month/day only need it to recover the year.
type Period struct {
	Year  int
	Month int
}

// IsZero reports whether no period was detected.
func (p Period) IsZero() bool { return p.Year == 0 }

var periodPattern = regexp.MustCompile(`(20\d{2})(\d{2})`)

// DetectPeriod extracts the statement period from a file name containing
// a YYYYMM run of digits, e.g. "cube_202601.csv". Returns a zero Period
// when no period is present.
func DetectPeriod(filename string) Period {
	m := periodPattern.FindStringSubmatch(filename)
	if m == nil {
		return Period{}
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Period{}
	}
	return Period{Year: year, Month: month}
}

// CompleteYear assigns a year to a month/day-only date. A December row on
// a January statement belongs to the prior year; a January row on a
// December statement belongs to the next.
func (p Period) CompleteYear(month time.Month, day int) time.Time {
	year := p.Year
	if p.Month == 1 && month == time.December {
		year--
	}
	if p.Month == 12 && month == time.January {
		year++
	}
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
