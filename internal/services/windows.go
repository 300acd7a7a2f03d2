package services

import "time"

// Aggregation windows, all in the local time zone, expressed as inclusive
// [start, end] bounds in Unix milliseconds.
//
// Today is a symmetric full-day window: the day is treated as complete
// for reporting purposes no matter when during it the query runs. Week
// and month are to-date windows ending at the current instant, so a
// mid-period query never reports a zero-filled future remainder. The
// asymmetry is deliberate.

// dayWindow spans the calendar day of now, 00:00:00.000 to 23:59:59.999.
// The end is derived calendar-wise, not as midnight+24h: DST transition
// days are 23 or 25 hours long.
func dayWindow(now time.Time) (start, end int64) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return midnight.UnixMilli(), midnight.AddDate(0, 0, 1).Add(-time.Millisecond).UnixMilli()
}

// weekWindow spans from 00:00 of the most recent weekStart day through now.
// When now falls on weekStart the window opens that same morning.
func weekWindow(now time.Time, weekStart time.Weekday) (start, end int64) {
	back := (int(now.Weekday()) - int(weekStart) + 7) % 7
	first := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).
		AddDate(0, 0, -back)
	return first.UnixMilli(), now.UnixMilli()
}

// monthWindow spans from 00:00 of the first of the month through now.
func monthWindow(now time.Time) (start, end int64) {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return first.UnixMilli(), now.UnixMilli()
}
