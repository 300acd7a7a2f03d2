package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"smartexpense/internal/core"
	"smartexpense/internal/log"
)

type expenseRequest struct {
	Amount      float64 `json:"amount"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Date        int64   `json:"date,omitempty"`
}

func (req expenseRequest) toExpense(userID int64) core.Expense {
	e := core.Expense{
		UserID:      userID,
		Amount:      req.Amount,
		Category:    strings.TrimSpace(req.Category),
		Description: strings.TrimSpace(req.Description),
		Date:        req.Date,
	}
	if e.Date == 0 {
		e.Date = time.Now().UnixMilli()
	}
	return e
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	sess := sessionFrom(r.Context())
	e := req.toExpense(sess.UserID)

	id, err := s.expenses.Add(r.Context(), e)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	e.ID = id

	s.logger.InfoContext(r.Context(), "Expense created",
		log.FieldExpenseID, id,
		log.FieldUserID, sess.UserID,
		log.FieldCategory, e.Category,
		log.FieldAmount, e.Amount,
		log.FieldDate, e.When().Format(time.RFC3339),
	)
	writeJSON(w, http.StatusCreated, e)
}

// handleListExpenses serves the expense list with optional filters:
// ?q= substring search, ?category= exact match, ?start=&end= date range
// in Unix milliseconds. Filters are mutually exclusive; q wins, then
// category, then range.
func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	ctx := r.Context()
	query := r.URL.Query()

	var (
		list []core.Expense
		err  error
	)
	switch {
	case query.Get("q") != "":
		list, err = s.expenses.Search(ctx, sess.UserID, query.Get("q"))
	case query.Get("category") != "":
		list, err = s.expenses.FilterByCategory(ctx, sess.UserID, query.Get("category"))
	case query.Get("start") != "" || query.Get("end") != "":
		var start, end int64
		start, end, err = parseDateRange(query.Get("start"), query.Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "start and end must be Unix milliseconds")
			return
		}
		list, err = s.expenses.FilterByDateRange(ctx, sess.UserID, start, end)
	default:
		list, err = s.expenses.List(ctx, sess.UserID)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}

	if list == nil {
		list = []core.Expense{}
	}
	writeJSON(w, http.StatusOK, map[string][]core.Expense{"expenses": list})
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	sess := sessionFrom(r.Context())
	e, err := s.expenses.Get(r.Context(), sess.UserID, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	var req expenseRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	sess := sessionFrom(r.Context())
	e := req.toExpense(sess.UserID)
	e.ID = id

	if err := s.expenses.Update(r.Context(), sess.UserID, e); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid expense id")
		return
	}

	sess := sessionFrom(r.Context())
	if err := s.expenses.Delete(r.Context(), sess.UserID, id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleCategories lists the fixed category set for expense forms.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"categories": core.Categories()})
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func parseDateRange(startStr, endStr string) (start, end int64, err error) {
	if startStr != "" {
		if start, err = strconv.ParseInt(startStr, 10, 64); err != nil {
			return 0, 0, err
		}
	}
	end = time.Now().UnixMilli()
	if endStr != "" {
		if end, err = strconv.ParseInt(endStr, 10, 64); err != nil {
			return 0, 0, err
		}
	}
	return start, end, nil
}
