package billing

import (
	"strings"
	"time"
)

const (
	longDateLayout  = "Jan 02, 2006"
	shortDateLayout = "01/02/06"
	isoDateLayout   = "2006-01-02"
)

// FormatDate renders a date as "Jan 02, 2006".
func FormatDate(t time.Time) string {
	return t.Format(longDateLayout)
}

// FormatDateShort renders a date as MM/DD/YY.
func FormatDateShort(t time.Time) string {
	return t.Format(shortDateLayout)
}

// ParseDay parses a YYYY-MM-DD string as midnight in loc.
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(isoDateLayout, strings.TrimSpace(s), loc)
}

// FormatDay renders a date as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return t.Format(isoDateLayout)
}

// DisplayAmount renders a money string as "$ 1234.50", the form used on the
// PDF and in invoice emails.
func DisplayAmount(amount string) string {
	return "$ " + Fixed(ParseDecimal(amount))
}

// FormatUSD renders a money string with thousands separators, e.g. "$1,234.50".
func FormatUSD(amount string) string {
	d := Round2(ParseDecimal(amount))
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	intPart, frac := s[:len(s)-3], s[len(s)-3:]

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "$" + b.String() + frac
	if neg {
		return "-" + out
	}
	return out
}
