package core

// Overview is the dashboard snapshot for one user: the three window
// totals plus the per-category breakdown.
type Overview struct {
	TodayTotal float64         `json:"today_total"`
	WeekTotal  float64         `json:"week_total"`
	MonthTotal float64         `json:"month_total"`
	ByCategory []CategoryTotal `json:"by_category"`
}
