package core

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// FormatCurrency renders an amount as a dollar string with thousands
// separators and exactly two decimals, e.g. 123450 cents -> "$1,234.50".
func FormatCurrency(m Money) string {
	cents := m.Cents
	neg := cents < 0
	if neg {
		cents = -cents
	}
	s := fmt.Sprintf("$%s.%02d", humanize.Comma(cents/100), cents%100)
	if neg {
		return "-" + s
	}
	return s
}

// FormatDate renders a date relative to now: "Today", "Yesterday", or a
// short absolute form like "Jan 2, 2006".
func FormatDate(d Date, now time.Time) string {
	if d.SameDay(now) {
		return "Today"
	}
	if d.SameDay(now.AddDate(0, 0, -1)) {
		return "Yesterday"
	}
	return d.Format("Jan 2, 2006")
}
