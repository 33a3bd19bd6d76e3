package utils

import "time"

// Clock supplies the current instant. Tests inject a fixed clock.
type Clock func() time.Time

func SystemClock() time.Time { return time.Now() }

func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

const (
	PeriodKeyLayout   = "2006-01"
	PeriodLabelLayout = "January 2006"
	DateLayout        = "2006-01-02"
)

// PeriodKey is the calendar month of t in loc, as YYYY-MM.
func PeriodKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(PeriodKeyLayout)
}

// LocalDate truncates t to midnight of its calendar day in loc.
func LocalDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
}

// ParsePeriodKey accepts YYYY-MM and rejects anything else.
func ParsePeriodKey(key string) (time.Time, error) {
	return time.Parse(PeriodKeyLayout, key)
}

// PeriodLabel renders a YYYY-MM key as "January 2006". Unparsable keys are returned unchanged.
func PeriodLabel(key string) string {
	t, err := ParsePeriodKey(key)
	if err != nil {
		return key
	}
	return t.Format(PeriodLabelLayout)
}
