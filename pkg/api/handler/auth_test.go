package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashevelev/chatweb/pkg/api/response"
	"github.com/ashevelev/chatweb/pkg/domain"
)

type stubAuthService struct {
	user      *domain.User
	signUpErr error
	signInErr error
}

func (s *stubAuthService) SignUp(_ context.Context, _ domain.SignupRequest) (*domain.User, error) {
	return s.user, s.signUpErr
}

func (s *stubAuthService) SignIn(_ context.Context, _ domain.SigninRequest) (*domain.User, error) {
	return s.user, s.signInErr
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Envelope {
	t.Helper()
	var env response.Envelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decoding envelope: %v", err)
	}
	return env
}

func TestSignUpHandler(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		service     *stubAuthService
		wantStatus  int
		wantMessage string
		wantSuccess bool
	}{
		{
			name:        "created",
			body:        `{"name":"Ann","email":"a@b.com","password":"secret1"}`,
			service:     &stubAuthService{user: &domain.User{ID: "u1", Email: "a@b.com"}},
			wantStatus:  http.StatusCreated,
			wantMessage: "User created successfully",
			wantSuccess: true,
		},
		{
			name:        "short password",
			body:        `{"name":"Ann","email":"a@b.com","password":"short"}`,
			service:     &stubAuthService{signUpErr: domain.NewValidationError("Password must be at least 6 characters long")},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Password must be at least 6 characters long",
		},
		{
			name:        "duplicate email",
			body:        `{"name":"Ann","email":"a@b.com","password":"secret1"}`,
			service:     &stubAuthService{signUpErr: domain.ErrConflict},
			wantStatus:  http.StatusConflict,
			wantMessage: "An account with this email already exists",
		},
		{
			name:        "malformed body",
			body:        `{"name":`,
			service:     &stubAuthService{},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuth(tt.service)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/signup", strings.NewReader(tt.body))

			h.SignUp(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decodeEnvelope(t, rec)
			if env.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMessage)
			}
			if env.Success != tt.wantSuccess {
				t.Errorf("success = %v, want %v", env.Success, tt.wantSuccess)
			}
		})
	}
}

func TestSignUpHandlerRejectsGet(t *testing.T) {
	h := NewAuth(&stubAuthService{})
	rec := httptest.NewRecorder()

	h.SignUp(rec, httptest.NewRequest(http.MethodGet, "/auth/signup", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
}

func TestSignInHandler(t *testing.T) {
	tests := []struct {
		name        string
		service     *stubAuthService
		wantStatus  int
		wantMessage string
	}{
		{
			name:        "ok",
			service:     &stubAuthService{user: &domain.User{ID: "u1"}},
			wantStatus:  http.StatusOK,
			wantMessage: "Signed in successfully",
		},
		{
			name:        "wrong password",
			service:     &stubAuthService{signInErr: domain.ErrUnauthorized},
			wantStatus:  http.StatusUnauthorized,
			wantMessage: "Invalid email or password",
		},
		{
			name:        "missing fields",
			service:     &stubAuthService{signInErr: domain.NewValidationError("Email and password are required")},
			wantStatus:  http.StatusBadRequest,
			wantMessage: "Email and password are required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAuth(tt.service)
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/auth/signin",
				strings.NewReader(`{"email":"a@b.com","password":"whatever"}`))

			h.SignIn(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if env := decodeEnvelope(t, rec); env.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", env.Message, tt.wantMessage)
			}
		})
	}
}
