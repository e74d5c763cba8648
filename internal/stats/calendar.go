package stats

import "time"

// CivilDay truncates t to midnight UTC of its own calendar date.
func CivilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CalendarDays returns the signed number of calendar dates from a to b.
func CalendarDays(a, b time.Time) int {
	return int(CivilDay(b).Sub(CivilDay(a)).Hours() / 24)
}

// DaysBetween returns the fractional number of days from a to b.
func DaysBetween(a, b time.Time) float64 {
	return b.Sub(a).Hours() / 24
}

// MonthIndex maps t to a monotonically increasing month number.
func MonthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}

// QuarterIndex maps t to a monotonically increasing quarter number.
func QuarterIndex(t time.Time) int {
	return t.Year()*4 + (int(t.Month())-1)/3
}

// DayKey formats the calendar date of t, for set membership.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
