package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"smartexpense/internal/core"
)

const expenseColumns = "id, user_id, amount, category, description, date"

// ExpenseRepository provides CRUD and query operations over the expenses
// table. All queries are scoped to one user and ordered by date descending
// where a list is returned.
type ExpenseRepository struct {
	store *Store
}

func NewExpenseRepository(store *Store) *ExpenseRepository {
	return &ExpenseRepository{store: store}
}

// Create inserts an expense and returns the assigned id.
func (r *ExpenseRepository) Create(ctx context.Context, e core.Expense) (int64, error) {
	res, err := r.store.DB().ExecContext(ctx,
		`INSERT INTO expenses (user_id, amount, category, description, date)
		 VALUES (?, ?, ?, ?, ?)`,
		e.UserID, e.Amount, e.Category, e.Description, e.Date,
	)
	if err != nil {
		return 0, fmt.Errorf("insert expense: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense created",
		"expense_id", id,
		"user_id", e.UserID,
		"category", e.Category,
		"amount", e.Amount,
	)
	return id, nil
}

// GetByID returns the expense with the given id, or nil if absent.
func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*core.Expense, error) {
	var e core.Expense
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE id = ?", id,
	).Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Description, &e.Date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query expense: %w", err)
	}
	return &e, nil
}

// ListByUser returns all expenses of one user, newest first.
func (r *ExpenseRepository) ListByUser(ctx context.Context, userID int64) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? ORDER BY date DESC",
		userID,
	)
}

// Update rewrites amount, category, description and date of the expense
// with e.ID. Owner and id are immutable. Returns true iff a row changed.
func (r *ExpenseRepository) Update(ctx context.Context, e core.Expense) (bool, error) {
	res, err := r.store.DB().ExecContext(ctx,
		"UPDATE expenses SET amount = ?, category = ?, description = ?, date = ? WHERE id = ?",
		e.Amount, e.Category, e.Description, e.Date, e.ID,
	)
	if err != nil {
		return false, fmt.Errorf("update expense: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

// Delete removes the expense with the given id. Returns false when the id
// does not exist; the table is left unchanged in that case.
func (r *ExpenseRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.store.DB().ExecContext(ctx, "DELETE FROM expenses WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete expense: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return rows > 0, nil
}

// Search returns the user's expenses whose description contains query as
// a substring. Case sensitivity follows the store's LIKE collation.
func (r *ExpenseRepository) Search(ctx context.Context, userID int64, query string) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND description LIKE ? ORDER BY date DESC",
		userID, "%"+query+"%",
	)
}

// FilterByCategory returns the user's expenses with exactly the given
// category, newest first.
func (r *ExpenseRepository) FilterByCategory(ctx context.Context, userID int64, category string) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND category = ? ORDER BY date DESC",
		userID, category,
	)
}

// FilterByDateRange returns the user's expenses with date in [start, end],
// bounds inclusive, in Unix milliseconds.
func (r *ExpenseRepository) FilterByDateRange(ctx context.Context, userID int64, start, end int64) ([]core.Expense, error) {
	return r.listExpenses(ctx,
		"SELECT "+expenseColumns+" FROM expenses WHERE user_id = ? AND date BETWEEN ? AND ? ORDER BY date DESC",
		userID, start, end,
	)
}

// SumByDateRange returns the summed amount of the user's expenses with
// date in [start, end]. An empty match sums to 0, never an error.
func (r *ExpenseRepository) SumByDateRange(ctx context.Context, userID int64, start, end int64) (float64, error) {
	var total float64
	err := r.store.DB().QueryRowContext(ctx,
		"SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE user_id = ? AND date BETWEEN ? AND ?",
		userID, start, end,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("sum expenses: %w", err)
	}
	return total, nil
}

// CategoryTotals returns one row per category the user has spent in,
// largest total first. Categories without expenses never appear.
func (r *ExpenseRepository) CategoryTotals(ctx context.Context, userID int64) ([]core.CategoryTotal, error) {
	rows, err := r.store.DB().QueryContext(ctx,
		`SELECT category, SUM(amount) AS total
		 FROM expenses WHERE user_id = ?
		 GROUP BY category ORDER BY total DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query category totals: %w", err)
	}
	defer rows.Close()

	var totals []core.CategoryTotal
	for rows.Next() {
		var ct core.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}
	return totals, rows.Err()
}

func (r *ExpenseRepository) listExpenses(ctx context.Context, query string, args ...any) ([]core.Expense, error) {
	rows, err := r.store.DB().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query expenses: %w", err)
	}
	defer rows.Close()

	var expenses []core.Expense
	for rows.Next() {
		var e core.Expense
		if err := rows.Scan(&e.ID, &e.UserID, &e.Amount, &e.Category, &e.Description, &e.Date); err != nil {
			return nil, fmt.Errorf("scan expense: %w", err)
		}
		expenses = append(expenses, e)
	}
	return expenses, rows.Err()
}
