package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/ashevelev/chatweb/pkg/api/response"
	"github.com/ashevelev/chatweb/pkg/domain"
	"github.com/ashevelev/chatweb/pkg/logger"
)

type AuthService interface {
	SignUp(ctx context.Context, req domain.SignupRequest) (*domain.User, error)
	SignIn(ctx context.Context, req domain.SigninRequest) (*domain.User, error)
}

type auth struct {
	service AuthService
	writer  response.JSONWriter
}

func NewAuth(service AuthService) *auth {
	return &auth{service: service}
}

func (a *auth) SignUp(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writer.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writer.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.service.SignUp(r.Context(), req)
	if err != nil {
		if msg, ok := domain.IsValidation(err); ok {
			a.writer.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		if errors.Is(err, domain.ErrConflict) {
			a.writer.WriteError(w, http.StatusConflict, "An account with this email already exists")
			return
		}
		slog.ErrorContext(r.Context(), "signup failed", logger.Err(err))
		a.writer.WriteError(w, http.StatusInternalServerError, "Failed to create account. Please try again.")
		return
	}

	a.writer.WriteSuccess(w, http.StatusCreated, "User created successfully", map[string]any{"user": user})
}

func (a *auth) SignIn(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		a.writer.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.writer.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := a.service.SignIn(r.Context(), req)
	if err != nil {
		if msg, ok := domain.IsValidation(err); ok {
			a.writer.WriteError(w, http.StatusBadRequest, msg)
			return
		}
		if errors.Is(err, domain.ErrUnauthorized) {
			a.writer.WriteError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		slog.ErrorContext(r.Context(), "signin failed", logger.Err(err))
		a.writer.WriteError(w, http.StatusInternalServerError, "Failed to sign in. Please try again.")
		return
	}

	a.writer.WriteSuccess(w, http.StatusOK, "Signed in successfully", map[string]any{"user": user})
}
