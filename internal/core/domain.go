package core

import (
	"errors"
	"strings"
	"time"
)

// Expense categories offered by the clients. The store does not constrain
// the column, so values outside this set are stored as-is.
const (
	CategoryFood      = "Food"
	CategoryTransport = "Transport"
	CategoryShopping  = "Shopping"
	CategoryBills     = "Bills"
	CategoryOther     = "Other"
)

// Categories returns the category set in display order.
func Categories() []string {
	return []string{
		CategoryFood,
		CategoryTransport,
		CategoryShopping,
		CategoryBills,
		CategoryOther,
	}
}

// SecurityQuestions returns the fixed question set offered at registration.
func SecurityQuestions() []string {
	return []string{
		"What was the name of your first pet?",
		"In what city were you born?",
		"What is your favorite food?",
		"What is your mother's maiden name?",
		"What is your favorite color?",
	}
}

type (
	// User is an identity record. Password holds a bcrypt hash, never the
	// plain text. SecurityAnswer is compared exactly and case-sensitively.
	User struct {
		ID               int64  `json:"id"`
		Username         string `json:"username"`
		Email            string `json:"email"`
		Password         string `json:"-"`
		SecurityQuestion string `json:"security_question"`
		SecurityAnswer   string `json:"-"`
	}

	// Expense is a financial transaction record. Date is the wall-clock
	// time of the transaction in Unix milliseconds, not the time the row
	// was created.
	Expense struct {
		ID          int64   `json:"id"`
		UserID      int64   `json:"user_id"`
		Amount      float64 `json:"amount"`
		Category    string  `json:"category"`
		Description string  `json:"description"`
		Date        int64   `json:"date"`
	}

	// CategoryTotal pairs a category label with the summed amount of one
	// user's expenses in it. Derived on each query, never persisted.
	CategoryTotal struct {
		Category string  `json:"category"`
		Total    float64 `json:"total"`
	}

	// DailyTotal is one bucket of the dashboard's trailing-days series.
	// Day is midnight local time in Unix milliseconds.
	DailyTotal struct {
		Day   int64   `json:"day"`
		Total float64 `json:"total"`
	}
)

var (
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyCategory    = errors.New("empty category")
	ErrMissingUser      = errors.New("missing user id")
	ErrMissingDate      = errors.New("missing date")
	ErrEmptyDescription = errors.New("empty description")
)

// When returns the expense date as a local time.Time.
func (e Expense) When() time.Time {
	return time.UnixMilli(e.Date)
}

// Validate checks the fields clients are required to fill in before an
// expense reaches the repositories.
func (e Expense) Validate() error {
	if e.UserID <= 0 {
		return ErrMissingUser
	}
	if e.Amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(e.Category) == "" {
		return ErrEmptyCategory
	}
	if e.Date <= 0 {
		return ErrMissingDate
	}
	return nil
}
