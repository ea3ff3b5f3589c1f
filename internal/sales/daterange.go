package sales

import (
	"strings"
	"time"

	pkgerrors "github.com/baxeinwear/storefront-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

// DateRange bounds a report. A nil side is open.
type DateRange struct {
	Start *time.Time
	End   *time.Time
}

// ParseDateRange reads "YYYY-MM-DD" bounds. The end date covers the whole day,
// up to 23:59:59.999.
func ParseDateRange(start, end string) (DateRange, error) {
	var out DateRange
	if s := strings.TrimSpace(start); s != "" {
		t, err := time.ParseInLocation(dateLayout, s, time.UTC)
		if err != nil {
			return DateRange{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "dataInicio must be YYYY-MM-DD")
		}
		out.Start = &t
	}
	if e := strings.TrimSpace(end); e != "" {
		t, err := time.ParseInLocation(dateLayout, e, time.UTC)
		if err != nil {
			return DateRange{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "dataFim must be YYYY-MM-DD")
		}
		t = endOfDay(t)
		out.End = &t
	}
	if out.Start != nil && out.End != nil && out.End.Before(*out.Start) {
		return DateRange{}, pkgerrors.New(pkgerrors.CodeValidation, "dataFim must not be before dataInicio")
	}
	return out, nil
}

func endOfDay(day time.Time) time.Time {
	return day.Add(24*time.Hour - time.Millisecond)
}
