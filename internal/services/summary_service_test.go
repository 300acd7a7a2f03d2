package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"smartexpense/internal/core"
	"smartexpense/internal/storage"
)

type SummaryServiceSuite struct {
	suite.Suite
	store     *storage.Store
	expenses  *storage.ExpenseRepository
	summaries *SummaryService
	userID    int64

	// Wednesday 2024-06-12 15:00 local; every summary in the suite is
	// computed relative to this instant.
	now time.Time
}

func (s *SummaryServiceSuite) SetupTest() {
	store, err := storage.Open(":memory:")
	require.NoError(s.T(), err, "open test store")
	s.store = store
	s.expenses = storage.NewExpenseRepository(store)

	s.now = time.Date(2024, 6, 12, 15, 0, 0, 0, time.Local)
	s.summaries = NewSummaryService(s.expenses, time.Monday, time.Minute)
	s.summaries.now = func() time.Time { return s.now }

	users := storage.NewUserRepository(store)
	s.userID, err = users.Create(context.Background(), core.User{
		Username: "alice", Email: "alice@example.com", Password: "secret123",
		SecurityQuestion: "q", SecurityAnswer: "a",
	})
	require.NoError(s.T(), err)
}

func (s *SummaryServiceSuite) TearDownTest() {
	if s.store != nil {
		s.store.Close()
	}
}

func (s *SummaryServiceSuite) add(amount float64, category string, at time.Time) {
	s.T().Helper()
	_, err := s.expenses.Create(context.Background(), core.Expense{
		UserID:      s.userID,
		Amount:      amount,
		Category:    category,
		Description: "t",
		Date:        at.UnixMilli(),
	})
	require.NoError(s.T(), err)
}

func (s *SummaryServiceSuite) seed() {
	s.add(10.00, core.CategoryFood, s.now.Add(-time.Hour))                              // today
	s.add(5.00, core.CategoryTransport, s.now.AddDate(0, 0, -2))                        // Monday, in week and month
	s.add(20.00, core.CategoryBills, s.now.AddDate(0, 0, -7))                           // last week, in month
	s.add(100.00, core.CategoryShopping, time.Date(2024, 5, 20, 12, 0, 0, 0, time.Local)) // May, out of all windows
}

func (s *SummaryServiceSuite) TestWindowTotals() {
	s.seed()
	ctx := context.Background()

	today, err := s.summaries.TodayTotal(ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 10.00, today)

	week, err := s.summaries.WeekTotal(ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 15.00, week)

	month, err := s.summaries.MonthTotal(ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 35.00, month)
}

func (s *SummaryServiceSuite) TestTotalsForEmptyUser() {
	ctx := context.Background()

	today, err := s.summaries.TodayTotal(ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), today)

	ov, err := s.summaries.Overview(ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Zero(s.T(), ov.MonthTotal)
	assert.Empty(s.T(), ov.ByCategory, "no zero-amount category rows")
}

func (s *SummaryServiceSuite) TestOverview() {
	s.seed()

	ov, err := s.summaries.Overview(context.Background(), s.userID)
	require.NoError(s.T(), err)

	assert.Equal(s.T(), 10.00, ov.TodayTotal)
	assert.Equal(s.T(), 15.00, ov.WeekTotal)
	assert.Equal(s.T(), 35.00, ov.MonthTotal)

	require.Len(s.T(), ov.ByCategory, 4)
	assert.Equal(s.T(), core.CategoryShopping, ov.ByCategory[0].Category, "largest category first")
	assert.Equal(s.T(), 100.00, ov.ByCategory[0].Total)
}

func (s *SummaryServiceSuite) TestOverviewCacheAndInvalidate() {
	s.seed()
	ctx := context.Background()

	first, err := s.summaries.Overview(ctx, s.userID)
	require.NoError(s.T(), err)

	// New writes are invisible until the cache entry is dropped.
	s.add(3.00, core.CategoryFood, s.now.Add(-time.Minute))
	cached, err := s.summaries.Overview(ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), first.TodayTotal, cached.TodayTotal)

	s.summaries.Invalidate(s.userID)
	fresh, err := s.summaries.Overview(ctx, s.userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 13.00, fresh.TodayTotal)
}

func (s *SummaryServiceSuite) TestDailySeries() {
	s.seed()

	series, err := s.summaries.DailySeries(context.Background(), s.userID, 7)
	require.NoError(s.T(), err)
	require.Len(s.T(), series, 7)

	// Oldest first: index 0 is six days back, index 6 is today.
	assert.Equal(s.T(), 10.00, series[6].Total)
	assert.Equal(s.T(), 5.00, series[4].Total)
	assert.Zero(s.T(), series[0].Total, "empty days are zero-filled")

	wantFirst := time.Date(2024, 6, 6, 0, 0, 0, 0, time.Local).UnixMilli()
	assert.Equal(s.T(), wantFirst, series[0].Day)
	for i := 1; i < len(series); i++ {
		assert.Greater(s.T(), series[i].Day, series[i-1].Day)
	}
}

func TestSummaryServiceSuite(t *testing.T) {
	suite.Run(t, new(SummaryServiceSuite))
}
