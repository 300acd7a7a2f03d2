package http

import (
	"net/http"

	"smartexpense/internal/core"
	"smartexpense/internal/log"
)

type registerRequest struct {
	Username         string `json:"username"`
	Email            string `json:"email"`
	Password         string `json:"password"`
	SecurityQuestion string `json:"security_question"`
	SecurityAnswer   string `json:"security_answer"`
}

type userResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	switch {
	case !core.IsNotEmpty(req.Username):
		writeError(w, http.StatusBadRequest, "username is required")
		return
	case !core.IsValidEmail(req.Email):
		writeError(w, http.StatusBadRequest, "invalid email address")
		return
	case !core.IsValidPassword(req.Password):
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	case !core.IsNotEmpty(req.SecurityQuestion) || !core.IsNotEmpty(req.SecurityAnswer):
		writeError(w, http.StatusBadRequest, "security question and answer are required")
		return
	}

	id, err := s.auth.Register(r.Context(), core.User{
		Username:         req.Username,
		Email:            req.Email,
		Password:         req.Password,
		SecurityQuestion: req.SecurityQuestion,
		SecurityAnswer:   req.SecurityAnswer,
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "User registered",
		log.FieldUserID, id,
		log.FieldEmail, req.Email,
	)
	writeJSON(w, http.StatusCreated, userResponse{ID: id, Username: req.Username, Email: req.Email})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string       `json:"token"`
	User  userResponse `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	u, err := s.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	token, err := s.sessions.Create(u)
	if err != nil {
		s.logger.ErrorContext(r.Context(), "Failed to create session", log.FieldError, err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		Token: token,
		User:  userResponse{ID: u.ID, Username: u.Username, Email: u.Email},
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.sessions.Destroy(bearerToken(r))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, userResponse{
		ID:       sess.UserID,
		Username: sess.Username,
		Email:    sess.Email,
	})
}

type emailRequest struct {
	Email string `json:"email"`
}

// handleSecurityQuestion is step one of the password-reset flow: look up
// the question registered for an email address.
func (s *Server) handleSecurityQuestion(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	q, err := s.auth.SecurityQuestion(r.Context(), req.Email)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"question": q})
}

type verifyAnswerRequest struct {
	Email  string `json:"email"`
	Answer string `json:"answer"`
}

func (s *Server) handleVerifyAnswer(w http.ResponseWriter, r *http.Request) {
	var req verifyAnswerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := s.auth.VerifySecurityAnswer(r.Context(), req.Email, req.Answer); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type resetPasswordRequest struct {
	Email       string `json:"email"`
	Answer      string `json:"answer"`
	NewPassword string `json:"new_password"`
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if !core.IsValidPassword(req.NewPassword) {
		writeError(w, http.StatusBadRequest, "password must be at least 6 characters")
		return
	}

	if err := s.auth.ResetPassword(r.Context(), req.Email, req.Answer, req.NewPassword); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSecurityQuestions lists the fixed question set shown at signup.
func (s *Server) handleSecurityQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"questions": core.SecurityQuestions()})
}
