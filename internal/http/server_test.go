package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"smartexpense/internal/core"
	"smartexpense/internal/log"
	"smartexpense/internal/services"
	"smartexpense/internal/session"
	"smartexpense/internal/storage"
)

type ServerSuite struct {
	suite.Suite
	store  *storage.Store
	server *Server
	ts     *httptest.Server
}

func (s *ServerSuite) SetupTest() {
	store, err := storage.Open(":memory:")
	require.NoError(s.T(), err, "open test store")
	s.store = store

	users := storage.NewUserRepository(store)
	expenses := storage.NewExpenseRepository(store)

	auth := services.NewAuthService(users)
	summaries := services.NewSummaryService(expenses, time.Monday, time.Minute)
	expenseSvc := services.NewExpenseService(expenses, nil, summaries)
	sessions := session.NewManager(time.Hour)

	logger := log.New(log.Config{Level: slog.LevelError, Component: log.ComponentHTTP})
	s.server = NewServer(":0", auth, expenseSvc, summaries, sessions, logger)
	s.ts = httptest.NewServer(s.server.Handler)
}

func (s *ServerSuite) TearDownTest() {
	if s.ts != nil {
		s.ts.Close()
	}
	if s.store != nil {
		s.store.Close()
	}
}

func (s *ServerSuite) do(method, path, token string, body any) *http.Response {
	s.T().Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.T(), json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, s.ts.URL+path, &buf)
	require.NoError(s.T(), err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := s.ts.Client().Do(req)
	require.NoError(s.T(), err)
	return resp
}

func (s *ServerSuite) decode(resp *http.Response, v any) {
	s.T().Helper()
	defer resp.Body.Close()
	require.NoError(s.T(), json.NewDecoder(resp.Body).Decode(v))
}

func (s *ServerSuite) register(email string) {
	s.T().Helper()
	resp := s.do(http.MethodPost, "/api/register", "", registerRequest{
		Username:         "alice",
		Email:            email,
		Password:         "secret123",
		SecurityQuestion: "What was the name of your first pet?",
		SecurityAnswer:   "Rex",
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) login(email string) string {
	s.T().Helper()
	resp := s.do(http.MethodPost, "/api/login", "", loginRequest{Email: email, Password: "secret123"})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var out loginResponse
	s.decode(resp, &out)
	require.NotEmpty(s.T(), out.Token)
	return out.Token
}

func (s *ServerSuite) TestHealthEndpoints() {
	for _, path := range []string{"/healthz", "/readyz"} {
		resp := s.do(http.MethodGet, path, "", nil)
		assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}
}

func (s *ServerSuite) TestRegisterValidation() {
	tests := []struct {
		name string
		req  registerRequest
	}{
		{"bad email", registerRequest{Username: "a", Email: "not-an-email", Password: "secret123", SecurityQuestion: "q", SecurityAnswer: "a"}},
		{"short password", registerRequest{Username: "a", Email: "a@example.com", Password: "short", SecurityQuestion: "q", SecurityAnswer: "a"}},
		{"empty username", registerRequest{Email: "a@example.com", Password: "secret123", SecurityQuestion: "q", SecurityAnswer: "a"}},
		{"missing answer", registerRequest{Username: "a", Email: "a@example.com", Password: "secret123", SecurityQuestion: "q"}},
	}
	for _, tt := range tests {
		resp := s.do(http.MethodPost, "/api/register", "", tt.req)
		assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode, tt.name)
		resp.Body.Close()
	}
}

func (s *ServerSuite) TestRegisterConflict() {
	s.register("alice@example.com")

	resp := s.do(http.MethodPost, "/api/register", "", registerRequest{
		Username: "dupe", Email: "alice@example.com", Password: "secret123",
		SecurityQuestion: "q", SecurityAnswer: "a",
	})
	assert.Equal(s.T(), http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestLoginAndMe() {
	s.register("alice@example.com")
	token := s.login("alice@example.com")

	resp := s.do(http.MethodGet, "/api/me", token, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)

	var me userResponse
	s.decode(resp, &me)
	assert.Equal(s.T(), "alice@example.com", me.Email)
	assert.Equal(s.T(), "alice", me.Username)
}

func (s *ServerSuite) TestLoginRejected() {
	s.register("alice@example.com")

	resp := s.do(http.MethodPost, "/api/login", "", loginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestLogoutEndsSession() {
	s.register("alice@example.com")
	token := s.login("alice@example.com")

	resp := s.do(http.MethodPost, "/api/logout", token, nil)
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(http.MethodGet, "/api/me", token, nil)
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestAuthRequired() {
	resp := s.do(http.MethodGet, "/api/expenses", "", nil)
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(http.MethodGet, "/api/expenses", "bogus-token", nil)
	assert.Equal(s.T(), http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestPasswordResetFlow() {
	s.register("alice@example.com")

	resp := s.do(http.MethodPost, "/api/password/question", "", emailRequest{Email: "alice@example.com"})
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var q map[string]string
	s.decode(resp, &q)
	assert.Equal(s.T(), "What was the name of your first pet?", q["question"])

	resp = s.do(http.MethodPost, "/api/password/verify", "", verifyAnswerRequest{Email: "alice@example.com", Answer: "rex"})
	assert.Equal(s.T(), http.StatusForbidden, resp.StatusCode, "answer check is case-sensitive")
	resp.Body.Close()

	resp = s.do(http.MethodPost, "/api/password/reset", "", resetPasswordRequest{
		Email: "alice@example.com", Answer: "Rex", NewPassword: "newpassword",
	})
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(http.MethodPost, "/api/login", "", loginRequest{Email: "alice@example.com", Password: "newpassword"})
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestExpenseCRUD() {
	s.register("alice@example.com")
	token := s.login("alice@example.com")

	resp := s.do(http.MethodPost, "/api/expenses", token, expenseRequest{
		Amount: 12.50, Category: core.CategoryFood, Description: "lunch",
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	var created core.Expense
	s.decode(resp, &created)
	require.NotZero(s.T(), created.ID)
	assert.NotZero(s.T(), created.Date, "date defaults to now")

	resp = s.do(http.MethodGet, fmt.Sprintf("/api/expenses/%d", created.ID), token, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var got core.Expense
	s.decode(resp, &got)
	assert.Equal(s.T(), "lunch", got.Description)

	resp = s.do(http.MethodPut, fmt.Sprintf("/api/expenses/%d", created.ID), token, expenseRequest{
		Amount: 15.00, Category: core.CategoryFood, Description: "long lunch", Date: created.Date,
	})
	assert.Equal(s.T(), http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), token, nil)
	assert.Equal(s.T(), http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(http.MethodGet, fmt.Sprintf("/api/expenses/%d", created.ID), token, nil)
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestExpenseValidation() {
	s.register("alice@example.com")
	token := s.login("alice@example.com")

	resp := s.do(http.MethodPost, "/api/expenses", token, expenseRequest{
		Amount: 0, Category: core.CategoryFood, Description: "free",
	})
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestExpenseIsolationBetweenUsers() {
	s.register("alice@example.com")
	aliceToken := s.login("alice@example.com")
	s.register("bob@example.com")
	bobToken := s.login("bob@example.com")

	resp := s.do(http.MethodPost, "/api/expenses", aliceToken, expenseRequest{
		Amount: 9.90, Category: core.CategoryFood, Description: "coffee",
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	var created core.Expense
	s.decode(resp, &created)

	// Bob sees neither the record nor a hint that it exists.
	resp = s.do(http.MethodGet, fmt.Sprintf("/api/expenses/%d", created.ID), bobToken, nil)
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(http.MethodDelete, fmt.Sprintf("/api/expenses/%d", created.ID), bobToken, nil)
	assert.Equal(s.T(), http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestExpenseFilters() {
	s.register("alice@example.com")
	token := s.login("alice@example.com")

	for _, e := range []expenseRequest{
		{Amount: 9.90, Category: core.CategoryFood, Description: "coffee"},
		{Amount: 25.00, Category: core.CategoryShopping, Description: "socks"},
	} {
		resp := s.do(http.MethodPost, "/api/expenses", token, e)
		require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
		resp.Body.Close()
	}

	var out map[string][]core.Expense

	resp := s.do(http.MethodGet, "/api/expenses?q=coff", token, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	s.decode(resp, &out)
	require.Len(s.T(), out["expenses"], 1)
	assert.Equal(s.T(), "coffee", out["expenses"][0].Description)

	resp = s.do(http.MethodGet, "/api/expenses?category="+core.CategoryShopping, token, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	s.decode(resp, &out)
	require.Len(s.T(), out["expenses"], 1)
	assert.Equal(s.T(), "socks", out["expenses"][0].Description)

	resp = s.do(http.MethodGet, "/api/expenses?start=0", token, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	s.decode(resp, &out)
	assert.Len(s.T(), out["expenses"], 2)

	resp = s.do(http.MethodGet, "/api/expenses?start=abc", token, nil)
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestSummaryEndpoints() {
	s.register("alice@example.com")
	token := s.login("alice@example.com")

	resp := s.do(http.MethodPost, "/api/expenses", token, expenseRequest{
		Amount: 10.00, Category: core.CategoryFood, Description: "lunch",
	})
	require.Equal(s.T(), http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = s.do(http.MethodGet, "/api/summary", token, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var ov core.Overview
	s.decode(resp, &ov)
	assert.Equal(s.T(), 10.00, ov.TodayTotal)
	assert.Equal(s.T(), 10.00, ov.MonthTotal)
	require.Len(s.T(), ov.ByCategory, 1)
	assert.Equal(s.T(), core.CategoryFood, ov.ByCategory[0].Category)

	resp = s.do(http.MethodGet, "/api/summary/daily", token, nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var series map[string][]core.DailyTotal
	s.decode(resp, &series)
	require.Len(s.T(), series["days"], 7)
	assert.Equal(s.T(), 10.00, series["days"][6].Total)

	resp = s.do(http.MethodGet, "/api/summary/daily?days=500", token, nil)
	assert.Equal(s.T(), http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func (s *ServerSuite) TestMetaEndpoints() {
	resp := s.do(http.MethodGet, "/api/meta/categories", "", nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var cats map[string][]string
	s.decode(resp, &cats)
	assert.Contains(s.T(), cats["categories"], core.CategoryFood)

	resp = s.do(http.MethodGet, "/api/meta/security-questions", "", nil)
	require.Equal(s.T(), http.StatusOK, resp.StatusCode)
	var qs map[string][]string
	s.decode(resp, &qs)
	assert.NotEmpty(s.T(), qs["questions"])
}

func TestServerSuite(t *testing.T) {
	suite.Run(t, new(ServerSuite))
}
