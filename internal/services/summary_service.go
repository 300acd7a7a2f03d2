package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"smartexpense/internal/cache"
	"smartexpense/internal/core"
	"smartexpense/internal/storage"
)

// SummaryService computes the dashboard aggregates: the three window
// totals, the category breakdown and the trailing daily series. Overview
// results are cached per user with a short TTL and invalidated on every
// expense write.
type SummaryService struct {
	expenses  *storage.ExpenseRepository
	weekStart time.Weekday
	overviews *cache.LRU[core.Overview]

	// now is swapped out in tests to pin the windows.
	now func() time.Time
}

func NewSummaryService(expenses *storage.ExpenseRepository, weekStart time.Weekday, cacheTTL time.Duration) *SummaryService {
	return &SummaryService{
		expenses:  expenses,
		weekStart: weekStart,
		overviews: cache.NewLRU[core.Overview](1024, cacheTTL),
		now:       time.Now,
	}
}

// TodayTotal sums the user's spend over the full current calendar day.
func (s *SummaryService) TodayTotal(ctx context.Context, userID int64) (float64, error) {
	start, end := dayWindow(s.now())
	return s.expenses.SumByDateRange(ctx, userID, start, end)
}

// WeekTotal sums the user's spend from the start of the week to now.
func (s *SummaryService) WeekTotal(ctx context.Context, userID int64) (float64, error) {
	start, end := weekWindow(s.now(), s.weekStart)
	return s.expenses.SumByDateRange(ctx, userID, start, end)
}

// MonthTotal sums the user's spend from the first of the month to now.
func (s *SummaryService) MonthTotal(ctx context.Context, userID int64) (float64, error) {
	start, end := monthWindow(s.now())
	return s.expenses.SumByDateRange(ctx, userID, start, end)
}

// CategoryBreakdown returns the user's per-category totals over all time.
func (s *SummaryService) CategoryBreakdown(ctx context.Context, userID int64) ([]core.CategoryTotal, error) {
	return s.expenses.CategoryTotals(ctx, userID)
}

// Overview loads the full dashboard snapshot, fanning the four queries
// out concurrently. Results are served from cache until the TTL lapses
// or an expense write invalidates them.
func (s *SummaryService) Overview(ctx context.Context, userID int64) (core.Overview, error) {
	key := overviewKey(userID)
	if cached, ok := s.overviews.Get(key); ok {
		return cached, nil
	}

	var ov core.Overview
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.TodayTotal(gctx, userID)
		ov.TodayTotal = total
		return err
	})
	g.Go(func() error {
		total, err := s.WeekTotal(gctx, userID)
		ov.WeekTotal = total
		return err
	})
	g.Go(func() error {
		total, err := s.MonthTotal(gctx, userID)
		ov.MonthTotal = total
		return err
	})
	g.Go(func() error {
		totals, err := s.CategoryBreakdown(gctx, userID)
		ov.ByCategory = totals
		return err
	})

	if err := g.Wait(); err != nil {
		return core.Overview{}, fmt.Errorf("load overview: %w", err)
	}

	s.overviews.Set(key, ov)
	return ov, nil
}

// DailySeries returns one zero-filled bucket per calendar day for the
// trailing days, oldest first and ending with today. Feeds the
// dashboard's bar chart.
func (s *SummaryService) DailySeries(ctx context.Context, userID int64, days int) ([]core.DailyTotal, error) {
	if days < 1 {
		days = 1
	}

	now := s.now()
	series := make([]core.DailyTotal, 0, days)
	for i := days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		start, end := dayWindow(day)

		total, err := s.expenses.SumByDateRange(ctx, userID, start, end)
		if err != nil {
			return nil, fmt.Errorf("sum day %s: %w", day.Format("2006-01-02"), err)
		}
		series = append(series, core.DailyTotal{Day: start, Total: total})
	}
	return series, nil
}

// Invalidate drops the user's cached overview after an expense write.
func (s *SummaryService) Invalidate(userID int64) {
	s.overviews.Delete(overviewKey(userID))
}

func overviewKey(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
