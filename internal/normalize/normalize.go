// Package normalize coerces raw spreadsheet cell text into the value types
// the statement engine works with. Bank exports arrive with escape artifacts
// (_x00A0_ style), locale thousand separators, the 원 currency marker and a
// mix of date renderings, so every cell goes through here before it is
// interpreted.
package normalize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	escapePattern   = regexp.MustCompile(`_x([0-9A-Fa-f]{4})_`)
	spacePattern    = regexp.MustCompile(`\s+`)
	dateTimePattern = regexp.MustCompile(`(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})(?:\s+(\d{1,2}):(\d{2})(?::(\d{2}))?)?`)
	digitsPattern   = regexp.MustCompile(`^\d+$`)
)

// serialEpoch is the day-zero of the Windows Excel date system. Serial 1 is
// 1900-01-01; the epoch sits at 1899-12-30 to absorb the historical leap-year
// bug of that system.
var serialEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// DecodeEscapes reverses the _xHHHH_ escape encoding spreadsheet tools apply
// to control and special characters, and folds non-breaking spaces into
// ordinary spaces. Escape sequences that do not decode are dropped.
func DecodeEscapes(s string) string {
	out := escapePattern.ReplaceAllStringFunc(s, func(m string) string {
		code, err := strconv.ParseUint(m[2:6], 16, 32)
		if err != nil {
			return ""
		}
		return string(rune(code))
	})
	return strings.ReplaceAll(out, " ", " ")
}

// Text decodes escapes, collapses whitespace runs to single spaces and trims.
func Text(s string) string {
	return strings.TrimSpace(spacePattern.ReplaceAllString(DecodeEscapes(s), " "))
}

// Amount parses a currency cell into integer won. Thousand separators and the
// 원 marker are stripped, parenthesized values are negative (accounting
// notation), fractional values round to the nearest unit. Anything that does
// not survive as a number yields 0; Amount never fails.
func Amount(s string) int64 {
	t := Text(s)
	if t == "" {
		return 0
	}
	negative := false
	if strings.HasPrefix(t, "(") && strings.HasSuffix(t, ")") {
		negative = true
		t = t[1 : len(t)-1]
	}
	t = strings.ReplaceAll(t, ",", "")
	t = strings.ReplaceAll(t, "원", "")
	t = strings.TrimSpace(t)
	if t == "" {
		return 0
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	v := int64(math.Round(n))
	if negative {
		v = -v
	}
	return v
}

// DateTime is the result of parsing a transaction date cell. A zero Timestamp
// means the cell did not parse; Text then still carries the normalized cell
// content for diagnostics.
type DateTime struct {
	Timestamp time.Time
	DateKey   string // YYYY-MM-DD
	MonthKey  string // YYYY-MM
	Text      string // YYYY/MM/DD HH:MM:SS when parsed, raw text otherwise
}

// Valid reports whether the cell yielded a usable timestamp.
func (d DateTime) Valid() bool { return !d.Timestamp.IsZero() }

// ParseDateTime parses a date cell. It accepts the textual family
// YYYY[-/.]MM[-/.]DD with an optional HH:MM[:SS] tail, and bare Excel date
// serials (what a date cell degrades to when number formatting is stripped).
func ParseDateTime(s string) DateTime {
	t := Text(s)
	if t == "" {
		return DateTime{}
	}

	if m := dateTimePattern.FindStringSubmatch(t); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		hour, minute, sec := 0, 0, 0
		if m[4] != "" {
			hour, _ = strconv.Atoi(m[4])
			minute, _ = strconv.Atoi(m[5])
		}
		if m[6] != "" {
			sec, _ = strconv.Atoi(m[6])
		}
		ts := time.Date(year, time.Month(month), day, hour, minute, sec, 0, time.UTC)
		// time.Date normalizes out-of-range components (2024-13-40 becomes a
		// 2025 date); reject those instead of silently shifting.
		if ts.Year() != year || ts.Month() != time.Month(month) || ts.Day() != day {
			return DateTime{Text: t}
		}
		return fromTime(ts)
	}

	if serial, err := strconv.ParseFloat(t, 64); err == nil && serial > 0 {
		days := math.Floor(serial)
		frac := serial - days
		ts := serialEpoch.AddDate(0, 0, int(days)).
			Add(time.Duration(math.Round(frac*86400)) * time.Second)
		return fromTime(ts)
	}

	return DateTime{Text: t}
}

func fromTime(ts time.Time) DateTime {
	return DateTime{
		Timestamp: ts,
		DateKey:   ts.Format("2006-01-02"),
		MonthKey:  ts.Format("2006-01"),
		Text:      ts.Format("2006/01/02 15:04:05"),
	}
}

// ToInt coerces a cell into an integer, strictly: after normalization the
// cell must be all digits. The parser uses this to decide whether a row is a
// transaction row at all, so "1.0", "1건" and blank cells all report false.
func ToInt(s string) (int, bool) {
	t := Text(s)
	if t == "" || !digitsPattern.MatchString(t) {
		return 0, false
	}
	n, err := strconv.Atoi(t)
	if err != nil {
		return 0, false
	}
	return n, true
}

// FirstNonEmpty returns the first candidate column whose cell is non-blank.
// Candidate order is significant: merged regions put the value in the anchor
// column, the trailing columns are usually empty shadows.
func FirstNonEmpty(row []string, candidates []int) string {
	for _, i := range candidates {
		if i < 0 || i >= len(row) {
			continue
		}
		if strings.TrimSpace(row[i]) != "" {
			return row[i]
		}
	}
	return ""
}
