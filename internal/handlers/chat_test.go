package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"homehelper-backend/internal/models"
	"homehelper-backend/internal/services"
)

// ─── Fakes ───

type fakeOrchestrator struct {
	reply      string
	submitErr  error
	gotMessage string
	gotModel   string

	modelNames []string
	listErr    error

	chats        []*models.Chat
	listChatsErr error

	loadedChat *models.Chat
	loadErr    error

	createdChat *models.Chat
	createErr   error

	renameErr error
	deleteErr error

	health  models.HealthResponse
	healthy bool
}

func (f *fakeOrchestrator) Submit(ctx context.Context, userMessage, model string, sess *models.Session) (string, error) {
	f.gotMessage = userMessage
	f.gotModel = model
	if f.submitErr != nil {
		return "", f.submitErr
	}
	sess.AppendExchange(userMessage, f.reply, 50)
	return f.reply, nil
}

func (f *fakeOrchestrator) ListModels(ctx context.Context) ([]string, error) {
	return f.modelNames, f.listErr
}

func (f *fakeOrchestrator) ClearSession(sess *models.Session) {
	sess.Reset()
}

func (f *fakeOrchestrator) CreateChat(ctx context.Context, title, model string, sess *models.Session) (*models.Chat, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	return f.createdChat, nil
}

func (f *fakeOrchestrator) ListChats(ctx context.Context) ([]*models.Chat, error) {
	return f.chats, f.listChatsErr
}

func (f *fakeOrchestrator) LoadChat(ctx context.Context, id uuid.UUID, sess *models.Session) (*models.Chat, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	sess.ActiveChatID = &f.loadedChat.ID
	return f.loadedChat, nil
}

func (f *fakeOrchestrator) RenameChat(ctx context.Context, id uuid.UUID, title string) error {
	return f.renameErr
}

func (f *fakeOrchestrator) DeleteChat(ctx context.Context, id uuid.UUID, sess *models.Session) error {
	return f.deleteErr
}

func (f *fakeOrchestrator) Health(ctx context.Context, sess *models.Session) (models.HealthResponse, bool) {
	return f.health, f.healthy
}

type fakeSessions struct {
	sess  *models.Session
	saved bool
}

func (f *fakeSessions) Load(ctx context.Context, token string) (*models.Session, error) {
	return f.sess, nil
}

func (f *fakeSessions) Save(ctx context.Context, token string, sess *models.Session) error {
	f.saved = true
	return nil
}

func newTestRouter(orch *fakeOrchestrator, sessions *fakeSessions) http.Handler {
	h := NewChatHandler(orch, sessions)
	r := chi.NewRouter()
	r.Post("/api/chat", h.Chat)
	r.Get("/api/models", h.Models)
	r.Post("/api/clear-chat", h.ClearChat)
	r.Get("/api/health", h.Health)
	r.Route("/api/chats", func(r chi.Router) {
		r.Get("/", h.ListChats)
		r.Post("/", h.CreateChat)
		r.Get("/{id}", h.GetChat)
		r.Put("/{id}", h.RenameChat)
		r.Delete("/{id}", h.DeleteChat)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	return resp
}

// ─── POST /api/chat ───

func TestChatEndpoint_Success(t *testing.T) {
	orch := &fakeOrchestrator{reply: "hello back"}
	sessions := &fakeSessions{sess: &models.Session{CurrentModel: "llama2:7b"}}
	router := newTestRouter(orch, sessions)

	rr := doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{Message: "hello", Model: "mistral:7b"})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var resp models.ChatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Response != "hello back" {
		t.Errorf("Expected response 'hello back', got %q", resp.Response)
	}
	if resp.Model != "mistral:7b" {
		t.Errorf("Expected model 'mistral:7b', got %q", resp.Model)
	}
	if resp.Timestamp == "" {
		t.Error("Expected a timestamp")
	}
	if !sessions.saved {
		t.Error("Expected session saved after the exchange")
	}
}

func TestChatEndpoint_ModelDefaultsToSession(t *testing.T) {
	orch := &fakeOrchestrator{reply: "ok"}
	sessions := &fakeSessions{sess: &models.Session{CurrentModel: "llama2:13b"}}
	router := newTestRouter(orch, sessions)

	rr := doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{Message: "hello"})

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if orch.gotModel != "llama2:13b" {
		t.Errorf("Expected session model forwarded, got %q", orch.gotModel)
	}
}

func TestChatEndpoint_InvalidBody(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeSessions{sess: &models.Session{}})

	req := httptest.NewRequest(http.MethodPost, "/api/chat", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestChatEndpoint_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", &services.ValidationError{Message: "Message cannot be empty"}, http.StatusBadRequest, "VALIDATION_ERROR"},
		{"unavailable", &services.ServiceUnavailableError{Message: "down"}, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE"},
		{"model missing", &services.ModelNotFoundError{Message: "nope"}, http.StatusNotFound, "MODEL_NOT_FOUND"},
		{"inference", &services.InferenceError{Message: "boom"}, http.StatusInternalServerError, "INFERENCE_ERROR"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			orch := &fakeOrchestrator{submitErr: tc.err}
			sessions := &fakeSessions{sess: &models.Session{CurrentModel: "m"}}
			router := newTestRouter(orch, sessions)

			rr := doJSON(t, router, http.MethodPost, "/api/chat", models.ChatRequest{Message: "x", Model: "m"})

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected %d, got %d", tc.wantStatus, rr.Code)
			}
			if resp := decodeError(t, rr); resp.Error.Code != tc.wantCode {
				t.Errorf("Expected code %q, got %q", tc.wantCode, resp.Error.Code)
			}
		})
	}
}

// ─── GET /api/models ───

func TestModelsEndpoint(t *testing.T) {
	orch := &fakeOrchestrator{modelNames: []string{"llama2:7b", "mistral:7b"}}
	sessions := &fakeSessions{sess: &models.Session{CurrentModel: "llama2:7b"}}
	router := newTestRouter(orch, sessions)

	rr := doJSON(t, router, http.MethodGet, "/api/models", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp models.ModelsResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Models) != 2 || resp.CurrentModel != "llama2:7b" {
		t.Errorf("Unexpected response: %+v", resp)
	}
}

// ─── POST /api/clear-chat ───

func TestClearChatEndpoint(t *testing.T) {
	id := uuid.New()
	sessions := &fakeSessions{sess: &models.Session{
		History:      []models.ChatMessage{{Role: "user", Content: "x"}},
		ActiveChatID: &id,
	}}
	router := newTestRouter(&fakeOrchestrator{}, sessions)

	rr := doJSON(t, router, http.MethodPost, "/api/clear-chat", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if len(sessions.sess.History) != 0 || sessions.sess.ActiveChatID != nil {
		t.Error("Expected session cleared")
	}
	if !sessions.saved {
		t.Error("Expected cleared session saved")
	}
}

// ─── /api/chats ───

func TestListChatsEndpoint_EmptyIsArray(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeSessions{sess: &models.Session{}})

	rr := doJSON(t, router, http.MethodGet, "/api/chats/", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp map[string]json.RawMessage
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if string(resp["chats"]) == "null" {
		t.Error("Expected empty array, got null")
	}
}

func TestCreateChatEndpoint_EmptyBody(t *testing.T) {
	created := &models.Chat{ID: uuid.New(), Title: "New Chat", Model: "llama2:7b"}
	orch := &fakeOrchestrator{createdChat: created}
	sessions := &fakeSessions{sess: &models.Session{CurrentModel: "llama2:7b"}}
	router := newTestRouter(orch, sessions)

	rr := doJSON(t, router, http.MethodPost, "/api/chats/", nil)

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp["title"] != "New Chat" {
		t.Errorf("Expected title 'New Chat', got %v", resp["title"])
	}
	if !sessions.saved {
		t.Error("Expected session saved after chat creation")
	}
}

func TestGetChatEndpoint_InvalidID(t *testing.T) {
	router := newTestRouter(&fakeOrchestrator{}, &fakeSessions{sess: &models.Session{}})

	rr := doJSON(t, router, http.MethodGet, "/api/chats/not-a-uuid", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("Expected 400, got %d", rr.Code)
	}
}

func TestGetChatEndpoint_NotFound(t *testing.T) {
	orch := &fakeOrchestrator{loadErr: &services.NotFoundError{Message: "Chat not found"}}
	router := newTestRouter(orch, &fakeSessions{sess: &models.Session{}})

	rr := doJSON(t, router, http.MethodGet, "/api/chats/"+uuid.NewString(), nil)

	if rr.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", rr.Code)
	}
	if resp := decodeError(t, rr); resp.Error.Code != "NOT_FOUND" {
		t.Errorf("Expected code NOT_FOUND, got %q", resp.Error.Code)
	}
}

func TestGetChatEndpoint_Success(t *testing.T) {
	chat := &models.Chat{
		ID:    uuid.New(),
		Title: "my chat",
		Model: "llama2:7b",
		Messages: []models.Message{
			{Role: "user", Content: "q"},
			{Role: "assistant", Content: "a"},
		},
	}
	orch := &fakeOrchestrator{loadedChat: chat}
	sessions := &fakeSessions{sess: &models.Session{}}
	router := newTestRouter(orch, sessions)

	rr := doJSON(t, router, http.MethodGet, "/api/chats/"+chat.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	var resp models.Chat
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if resp.Title != "my chat" || len(resp.Messages) != 2 {
		t.Errorf("Unexpected chat payload: %+v", resp)
	}
	if !sessions.saved {
		t.Error("Expected session saved after loading a chat")
	}
}

func TestRenameChatEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"success", nil, http.StatusOK},
		{"empty title", &services.ValidationError{Message: "Title cannot be empty"}, http.StatusBadRequest},
		{"store failure", &services.StoreError{Message: "Failed to rename chat"}, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			orch := &fakeOrchestrator{renameErr: tc.err}
			router := newTestRouter(orch, &fakeSessions{sess: &models.Session{}})

			rr := doJSON(t, router, http.MethodPut, "/api/chats/"+uuid.NewString(), models.RenameChatRequest{Title: "anything"})

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected %d, got %d", tc.wantStatus, rr.Code)
			}
		})
	}
}

func TestDeleteChatEndpoint(t *testing.T) {
	sessions := &fakeSessions{sess: &models.Session{}}
	router := newTestRouter(&fakeOrchestrator{}, sessions)

	rr := doJSON(t, router, http.MethodDelete, "/api/chats/"+uuid.NewString(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if !sessions.saved {
		t.Error("Expected session saved after delete")
	}
}

// ─── GET /api/health ───

func TestHealthEndpoint(t *testing.T) {
	tests := []struct {
		name       string
		healthy    bool
		wantStatus int
	}{
		{"healthy", true, http.StatusOK},
		{"unhealthy", false, http.StatusServiceUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			status := "healthy"
			if !tc.healthy {
				status = "unhealthy"
			}
			orch := &fakeOrchestrator{
				healthy: tc.healthy,
				health:  models.HealthResponse{Status: status, CurrentModel: "m"},
			}
			router := newTestRouter(orch, &fakeSessions{sess: &models.Session{CurrentModel: "m"}})

			rr := doJSON(t, router, http.MethodGet, "/api/health", nil)

			if rr.Code != tc.wantStatus {
				t.Errorf("Expected %d, got %d", tc.wantStatus, rr.Code)
			}
			var resp models.HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != status {
				t.Errorf("Expected status %q, got %q", status, resp.Status)
			}
		})
	}
}
