package sync

import (
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ISODateFormat is the date format Recruit CRM expects in custom fields.
const ISODateFormat = "2006-01-02"

// MinDateYear is the earliest year accepted, bare numbers like "1234" otherwise parse as years.
const MinDateYear = 1900

// monthYearLayouts are tried before dateparse, they resolve to the first of the month.
var monthYearLayouts = []string{"January 2006", "Jan 2006", "January, 2006", "Jan, 2006", "01/2006", "2006-01"}

// NormalizeDate converts a human entered date to YYYY-MM-DD.
// Empty input gives "" and no error, unparseable input gives "" and a *DateParseError.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	t, ok := parseMonthYear(s)
	if !ok {
		var err error
		if t, err = dateparse.ParseIn(s, time.UTC); err != nil {
			return "", &DateParseError{Value: s, Err: err}
		}
	}
	if t.Year() < MinDateYear {
		return "", &DateParseError{Value: s, Err: fmt.Errorf("year %d is before %d", t.Year(), MinDateYear)}
	}
	return t.Format(ISODateFormat), nil
}

func parseMonthYear(s string) (time.Time, bool) {
	for _, layout := range monthYearLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
