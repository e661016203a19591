package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ashevelev/chatweb/pkg/domain"
)

type stubConversationService struct {
	conv    *domain.Conversation
	list    []domain.ConversationSummary
	err     error
	saved   []domain.Conversation
	patched []domain.ConversationPatch
	deleted []string
}

func (s *stubConversationService) Save(_ context.Context, conv domain.Conversation) error {
	s.saved = append(s.saved, conv)
	return s.err
}

func (s *stubConversationService) Get(_ context.Context, _, _ string) (*domain.Conversation, error) {
	return s.conv, s.err
}

func (s *stubConversationService) List(_ context.Context, _ string) ([]domain.ConversationSummary, error) {
	return s.list, s.err
}

func (s *stubConversationService) Update(_ context.Context, _, _ string, patch domain.ConversationPatch) error {
	s.patched = append(s.patched, patch)
	return s.err
}

func (s *stubConversationService) Delete(_ context.Context, id, _ string) error {
	s.deleted = append(s.deleted, id)
	return s.err
}

func TestListRequiresUserID(t *testing.T) {
	h := NewConversations(&stubConversationService{})
	rec := httptest.NewRecorder()

	h.List(rec, httptest.NewRequest(http.MethodGet, "/conversations", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "Unauthorized - userId required" {
		t.Errorf("body = %q", got)
	}
}

func TestListByQueryAndHeader(t *testing.T) {
	service := &stubConversationService{list: []domain.ConversationSummary{{ID: "c1", Title: "hello"}}}
	h := NewConversations(service)

	t.Run("query param", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, "/conversations?userId=u1", nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var got []domain.ConversationSummary
		if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
			t.Fatalf("decoding: %v", err)
		}
		if len(got) != 1 || got[0].ID != "c1" {
			t.Errorf("summaries = %+v", got)
		}
	})

	t.Run("header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/conversations", nil)
		req.Header.Set("X-User-Id", "u1")
		h.List(rec, req)

		if rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
	})
}

func TestSaveConversationValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "missing user",
			body:       `{"id":"c1","messages":[]}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Unauthorized - userId required in body",
		},
		{
			name:       "missing id",
			body:       `{"userId":"u1","messages":[]}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing required fields: id, messages",
		},
		{
			name:       "missing messages",
			body:       `{"id":"c1","userId":"u1"}`,
			wantStatus: http.StatusBadRequest,
			wantBody:   "Missing required fields: id, messages",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewConversations(&stubConversationService{})
			rec := httptest.NewRecorder()

			h.Save(rec, httptest.NewRequest(http.MethodPost, "/conversations", strings.NewReader(tt.body)))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
				t.Errorf("body = %q, want %q", got, tt.wantBody)
			}
		})
	}
}

func TestSaveConversationOK(t *testing.T) {
	service := &stubConversationService{}
	h := NewConversations(service)
	rec := httptest.NewRecorder()

	body := `{"id":"c1","userId":"u1","messages":[{"role":"user","content":"hi"}]}`
	h.Save(rec, httptest.NewRequest(http.MethodPost, "/conversations", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(service.saved) != 1 || service.saved[0].ID != "c1" {
		t.Errorf("saved = %+v", service.saved)
	}
}

func TestGetConversationNotFound(t *testing.T) {
	h := NewConversations(&stubConversationService{err: domain.ErrNotFound})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/conversations/c1?userId=u1", nil)
	req.SetPathValue("id", "c1")

	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != "Conversation not found" {
		t.Errorf("body = %q", got)
	}
}

func TestPatchConversation(t *testing.T) {
	service := &stubConversationService{}
	h := NewConversations(service)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/conversations/c1",
		strings.NewReader(`{"userId":"u1","title":"renamed"}`))
	req.SetPathValue("id", "c1")

	h.Patch(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(service.patched) != 1 {
		t.Fatalf("patched = %+v", service.patched)
	}
	if service.patched[0].Title == nil || *service.patched[0].Title != "renamed" {
		t.Errorf("patch title = %v", service.patched[0].Title)
	}
}

func TestDeleteConversation(t *testing.T) {
	service := &stubConversationService{}
	h := NewConversations(service)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/conversations/c1?userId=u1", nil)
	req.SetPathValue("id", "c1")

	h.Delete(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(service.deleted) != 1 || service.deleted[0] != "c1" {
		t.Errorf("deleted = %v", service.deleted)
	}
}

func TestExportConversation(t *testing.T) {
	h := NewConversations(&stubConversationService{conv: &domain.Conversation{
		ID: "c1", Title: "Greetings",
		Messages: []domain.Message{
			{Role: domain.RoleUser, Content: "hi"},
			{Role: domain.RoleAssistant, Content: "**hello**"},
		},
	}})
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/conversations/c1/export?userId=u1", nil)
	req.SetPathValue("id", "c1")

	h.Export(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("content type = %q", ct)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Greetings") {
		t.Errorf("transcript missing title: %q", body)
	}
	if !strings.Contains(body, "<strong>hello</strong>") {
		t.Errorf("assistant markdown not rendered: %q", body)
	}
}
