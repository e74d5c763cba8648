package features

import (
	"time"

	"trading-personality/internal/models"
	"trading-personality/internal/stats"
)

// Market sessions, by minutes after midnight of the trade's clock.
const (
	sessionPre = iota
	sessionOpen
	sessionMidday
	sessionClose
	sessionAfter
	sessionCount
)

var timingKeys = []string{
	"has_intraday", "peak_hour", "session_entropy", "open_session_pct",
	"close_session_pct", "extended_hours_pct", "monday_ratio", "friday_ratio",
	"weekday_entropy", "trading_days_pct", "trades_per_active_day",
	"avg_gap_days", "longest_gap_days", "gap_cv", "monthly_trend",
	"quarter_end_ratio", "december_ratio", "january_ratio",
}

// TimingModule describes when a trader acts: time of day, day of week,
// activity cadence and calendar seasonality.
type TimingModule struct{}

func (TimingModule) Name() string   { return "timing" }
func (TimingModule) Prefix() string { return "timing" }
func (TimingModule) Keys() []string { return timingKeys }

func (TimingModule) Extract(in Input) (map[string]*float64, error) {
	r := newResult(timingKeys)
	trades := in.Trades
	if len(trades) < in.MinSamples {
		return r, nil
	}
	n := len(trades)

	timingIntraday(r, trades)

	var weekdays [7]int
	for _, t := range trades {
		weekdays[t.Timestamp.Weekday()]++
	}
	r.set("monday_ratio", float64(weekdays[time.Monday])/float64(n)*5)
	r.set("friday_ratio", float64(weekdays[time.Friday])/float64(n)*5)
	workweek := make([]float64, 0, 5)
	for d := time.Monday; d <= time.Friday; d++ {
		workweek = append(workweek, float64(weekdays[d]))
	}
	if stats.Sum(workweek) > 0 {
		r.set("weekday_entropy", stats.NormalizedEntropy(workweek))
	}

	timingCadence(r, trades)
	timingSeasonality(r, trades)
	return r, nil
}

func hasClock(t time.Time) bool {
	h, m, s := t.Clock()
	return h != 0 || m != 0 || s != 0 || t.Nanosecond() != 0
}

func sessionOf(t time.Time) int {
	mins := t.Hour()*60 + t.Minute()
	switch {
	case mins < 9*60+30:
		return sessionPre
	case mins < 10*60+30:
		return sessionOpen
	case mins < 14*60:
		return sessionMidday
	case mins < 16*60:
		return sessionClose
	default:
		return sessionAfter
	}
}

func timingIntraday(r result, trades []models.Trade) {
	var clocked []time.Time
	for _, t := range trades {
		if hasClock(t.Timestamp) {
			clocked = append(clocked, t.Timestamp)
		}
	}
	r.setBool("has_intraday", len(clocked) > 0)
	if len(clocked) == 0 {
		return
	}

	hours := map[int]int{}
	sessions := make([]float64, sessionCount)
	for _, ts := range clocked {
		hours[ts.Hour()]++
		sessions[sessionOf(ts)]++
	}
	peak, _ := stats.ArgMaxInt(hours)
	n := float64(len(clocked))

	r.set("peak_hour", float64(peak))
	r.set("session_entropy", stats.NormalizedEntropy(sessions))
	r.set("open_session_pct", sessions[sessionOpen]/n)
	r.set("close_session_pct", sessions[sessionClose]/n)
	r.set("extended_hours_pct", (sessions[sessionPre]+sessions[sessionAfter])/n)
}

func timingCadence(r result, trades []models.Trade) {
	first := stats.CivilDay(trades[0].Timestamp)
	last := stats.CivilDay(trades[len(trades)-1].Timestamp)

	active := map[string]time.Time{}
	for _, t := range trades {
		d := stats.CivilDay(t.Timestamp)
		active[stats.DayKey(d)] = d
	}

	weekdaysInSpan := 0
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			weekdaysInSpan++
		}
	}
	if weekdaysInSpan > 0 {
		r.set("trading_days_pct", stats.Clamp(float64(len(active))/float64(weekdaysInSpan), 0, 1))
	}
	r.set("trades_per_active_day", float64(len(trades))/float64(len(active)))

	days := stats.SortedKeys(active)
	gaps := make([]float64, 0, len(days))
	for i := 1; i < len(days); i++ {
		gaps = append(gaps, float64(stats.CalendarDays(active[days[i-1]], active[days[i]])))
	}
	if len(gaps) > 0 {
		r.set("avg_gap_days", stats.Mean(gaps))
		r.set("longest_gap_days", maxFloat(gaps))
	}
	if len(gaps) >= 2 {
		cv, ok := stats.CoefficientOfVariation(gaps)
		r.setIf("gap_cv", cv, ok)
	}

	firstMonth := stats.MonthIndex(first)
	months := make([]float64, stats.MonthIndex(last)-firstMonth+1)
	for _, t := range trades {
		months[stats.MonthIndex(t.Timestamp)-firstMonth]++
	}
	if len(months) >= 3 {
		slope, ok := stats.LinearTrendSlope(months)
		r.setIf("monthly_trend", slope, ok)
	}
}

func isQuarterEnd(d time.Time) bool {
	switch d.Month() {
	case time.March, time.June, time.September, time.December:
	default:
		return false
	}
	daysInMonth := time.Date(d.Year(), d.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
	return d.Day() > daysInMonth-7
}

// timingSeasonality compares the trade share inside a calendar window with
// the share of calendar days the window covers in the history span. 1 means
// no seasonal preference.
func timingSeasonality(r result, trades []models.Trade) {
	windows := map[string]func(time.Time) bool{
		"quarter_end_ratio": isQuarterEnd,
		"december_ratio":    func(d time.Time) bool { return d.Month() == time.December },
		"january_ratio":     func(d time.Time) bool { return d.Month() == time.January },
	}

	first := stats.CivilDay(trades[0].Timestamp)
	last := stats.CivilDay(trades[len(trades)-1].Timestamp)
	spanDays := stats.CalendarDays(first, last) + 1

	for _, key := range stats.SortedKeys(windows) {
		inWindow := windows[key]
		covered := 0
		for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
			if inWindow(d) {
				covered++
			}
		}
		if covered == 0 {
			continue
		}
		hits := 0
		for _, t := range trades {
			if inWindow(stats.CivilDay(t.Timestamp)) {
				hits++
			}
		}
		observed := float64(hits) / float64(len(trades))
		expected := float64(covered) / float64(spanDays)
		r.set(key, observed/expected)
	}
}
