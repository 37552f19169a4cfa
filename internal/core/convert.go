package core

// convert.go turns spreadsheet cells into domain values.
//
// Dates arrive in whatever shape the coach's spreadsheet produced: ISO
// strings, US or EU layouts, timestamps with a time part, or Excel serial
// day numbers from .xlsx cells.

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// DateLayout is the canonical rendering of dates in exports and templates.
const DateLayout = "2006-01-02"

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would result in dates more than this many years in the future
// are assumed to be in the previous century.
var TwoDigitYearPivot = 0

// excelSerialRegex matches Excel serial day numbers (up to year ~2173).
var excelSerialRegex = regexp.MustCompile(`^\d{1,5}(\.\d+)?$`)

var (
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02", "2006.01.02",
		"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04", time.RFC3339,
		"1/2/2006", "01/02/2006", "1-2-2006", "01-02-2006", "1.2.2006", "01.02.2006",
		"Jan 2, 2006", "January 2, 2006", "2 Jan 2006", "2 January 2006",
		"20060102",
		// Day-first after month-first so ambiguous dates read as US.
		"2/1/2006", "02/01/2006", "2-1-2006", "02-01-2006", "2.1.2006", "02.01.2006",
		"2006-1-2", "2006/1/2",
		"Jan 2 2006", "January 2 2006", "2-Jan-2006", "02-Jan-2006", "2-January-2006",
	}
	twoDigitYearLayouts = []string{
		"1/2/06", "01/02/06", "1-2-06", "1.2.06", "01.02.06",
		"2/1/06", "02/01/06", "2.1.06", "02.01.06",
	}
)

// ParseDate parses a date cell. The time part, if any, is dropped and the
// result is UTC midnight of the calendar date.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), true
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return dateOnly(t), true
		}
	}

	return time.Time{}, false
}

// FormatDate renders a date as YYYY-MM-DD.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// excelSerialToISO converts an Excel serial day number to YYYY-MM-DD.
// Values that are not serials are returned unchanged.
func excelSerialToISO(s string, date1904 bool) string {
	if !excelSerialRegex.MatchString(s) {
		return s
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 1 {
		return s
	}
	t, err := excelize.ExcelDateToTime(f, date1904)
	if err != nil {
		return s
	}
	return FormatDate(t)
}

// HeaderIndex maps column names (lowercase) to their position in a row.
type HeaderIndex map[string]int

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased and trimmed; the first occurrence of a name wins.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		if key == "" {
			continue
		}
		if _, dup := idx[key]; !dup {
			idx[key] = i
		}
	}
	return idx
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// surrounding whitespace, the Excel text-formula wrapper (="...") and a
// pair of double quotes wrapping the whole value.
func CleanCell(s string) string {
	s = cleanText(s)
	if len(s) >= 2 && strings.HasPrefix(s, `"`) && strings.HasSuffix(s, `"`) {
		s = strings.TrimSpace(s[1 : len(s)-1])
	}
	return s
}

// cleanText trims a free-text cell and unwraps ="..." but keeps any quotes
// that are part of the value.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") && len(s) >= 3 {
		s = strings.TrimSpace(s[2 : len(s)-1])
	}
	return s
}
