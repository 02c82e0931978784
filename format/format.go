package format

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DefaultCurrency is used by Salary when currency is empty.
const DefaultCurrency = "INR"

const lakh = 100000

// Salary renders a salary range. Amounts of one lakh or more are shown in LPA with
// one decimal; smaller ones use Indian digit grouping. A missing maximum renders an
// open range "min+"; a missing minimum renders "Not disclosed".
func Salary(min, max float64, currency string) string {
	if currency == "" {
		currency = DefaultCurrency
	}
	switch {
	case min > 0 && max > 0:
		return fmt.Sprintf("%s - %s %s", amount(min), amount(max), currency)
	case min > 0:
		return fmt.Sprintf("%s+ %s", amount(min), currency)
	default:
		return "Not disclosed"
	}
}

func amount(v float64) string {
	if v >= lakh {
		return strconv.FormatFloat(v/lakh, 'f', 1, 64) + " LPA"
	}
	return Grouped(v)
}

// Grouped formats v with Indian digit grouping (12,34,567) and at most three
// fraction digits.
func Grouped(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	v = math.Round(v*1000) / 1000
	whole := math.Floor(v)
	frac := strconv.FormatFloat(v-whole, 'f', 3, 64)
	frac = strings.TrimRight(strings.TrimPrefix(frac, "0"), "0")
	if frac == "." {
		frac = ""
	}

	digits := strconv.FormatFloat(whole, 'f', 0, 64)
	if len(digits) > 3 {
		head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
		var groups []string
		for len(head) > 2 {
			groups = append([]string{head[len(head)-2:]}, groups...)
			head = head[:len(head)-2]
		}
		if head != "" {
			groups = append([]string{head}, groups...)
		}
		digits = strings.Join(append(groups, tail), ",")
	}
	return sign + digits + frac
}

const day = 24 * time.Hour

// Relative describes how long ago t was, counting partial days as whole ones.
func Relative(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < 0 {
		diff = -diff
	}
	days := int(math.Ceil(float64(diff) / float64(day)))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	case days < 365:
		return fmt.Sprintf("%d months ago", days/30)
	default:
		return fmt.Sprintf("%d years ago", days/365)
	}
}

// Date renders t as "2 Jan 2006".
func Date(t time.Time) string {
	return t.Format("2 Jan 2006")
}

// InvalidDate is returned by the string variants when the input cannot be parsed.
const InvalidDate = "Invalid Date"

var layouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts the backend's zoned and zoneless timestamp shapes.
// Zoneless values are read in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// DateString parses s and renders it with Date.
func DateString(s string) string {
	t, ok := ParseTimestamp(s, time.Local)
	if !ok {
		return InvalidDate
	}
	return Date(t)
}

// RelativeString parses s and renders it with Relative.
func RelativeString(s string, now time.Time) string {
	t, ok := ParseTimestamp(s, now.Location())
	if !ok {
		return InvalidDate
	}
	return Relative(t, now)
}
