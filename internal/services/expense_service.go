package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"smartexpense/internal/core"
	"smartexpense/internal/events"
	"smartexpense/internal/storage"
)

// ErrExpenseNotFound reports an id with no expense behind it.
var ErrExpenseNotFound = errors.New("expense not found")

// ErrNotOwner reports an attempt to touch another user's expense.
var ErrNotOwner = errors.New("expense belongs to another user")

// ExpenseService wraps the expense repository with ownership checks,
// change events and summary-cache invalidation. Event publishing is
// best-effort: a failed publish never fails the operation.
type ExpenseService struct {
	expenses  *storage.ExpenseRepository
	publisher *events.Publisher
	summaries *SummaryService
}

func NewExpenseService(expenses *storage.ExpenseRepository, publisher *events.Publisher, summaries *SummaryService) *ExpenseService {
	return &ExpenseService{
		expenses:  expenses,
		publisher: publisher,
		summaries: summaries,
	}
}

// Add validates and stores a new expense, returning its id.
func (s *ExpenseService) Add(ctx context.Context, e core.Expense) (int64, error) {
	if err := e.Validate(); err != nil {
		return 0, err
	}

	id, err := s.expenses.Create(ctx, e)
	if err != nil {
		return 0, fmt.Errorf("add expense: %w", err)
	}

	s.afterWrite(ctx, events.ExpenseCreated, id, e.UserID)
	return id, nil
}

// Get returns the expense with the given id if it belongs to userID.
func (s *ExpenseService) Get(ctx context.Context, userID, id int64) (*core.Expense, error) {
	e, err := s.expenses.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get expense: %w", err)
	}
	if e == nil {
		return nil, ErrExpenseNotFound
	}
	if e.UserID != userID {
		return nil, ErrNotOwner
	}
	return e, nil
}

// List returns all of the user's expenses, newest first.
func (s *ExpenseService) List(ctx context.Context, userID int64) ([]core.Expense, error) {
	return s.expenses.ListByUser(ctx, userID)
}

// Search returns the user's expenses whose description contains query.
func (s *ExpenseService) Search(ctx context.Context, userID int64, query string) ([]core.Expense, error) {
	return s.expenses.Search(ctx, userID, query)
}

// FilterByCategory returns the user's expenses in exactly that category.
func (s *ExpenseService) FilterByCategory(ctx context.Context, userID int64, category string) ([]core.Expense, error) {
	return s.expenses.FilterByCategory(ctx, userID, category)
}

// FilterByDateRange returns the user's expenses with date in [start, end].
func (s *ExpenseService) FilterByDateRange(ctx context.Context, userID int64, start, end int64) ([]core.Expense, error) {
	return s.expenses.FilterByDateRange(ctx, userID, start, end)
}

// Update rewrites the mutable fields of an existing expense. The record
// must belong to userID; owner and id never change.
func (s *ExpenseService) Update(ctx context.Context, userID int64, e core.Expense) error {
	existing, err := s.Get(ctx, userID, e.ID)
	if err != nil {
		return err
	}

	e.UserID = existing.UserID
	if err := e.Validate(); err != nil {
		return err
	}

	updated, err := s.expenses.Update(ctx, e)
	if err != nil {
		return fmt.Errorf("update expense: %w", err)
	}
	if !updated {
		return ErrExpenseNotFound
	}

	s.afterWrite(ctx, events.ExpenseUpdated, e.ID, userID)
	return nil
}

// Delete removes the expense with the given id if it belongs to userID.
func (s *ExpenseService) Delete(ctx context.Context, userID, id int64) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	deleted, err := s.expenses.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if !deleted {
		return ErrExpenseNotFound
	}

	s.afterWrite(ctx, events.ExpenseDeleted, id, userID)
	return nil
}

// afterWrite invalidates the user's cached summary and publishes the
// change event.
func (s *ExpenseService) afterWrite(ctx context.Context, eventType string, expenseID, userID int64) {
	if s.summaries != nil {
		s.summaries.Invalidate(userID)
	}

	if err := s.publisher.Publish(ctx, events.NewExpenseEvent(eventType, expenseID, userID)); err != nil {
		slog.ErrorContext(ctx, "Failed to publish expense event",
			"error", err,
			"type", eventType,
			"expense_id", expenseID,
			"user_id", userID,
		)
	}
}
