package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"homehelper-backend/internal/middleware"
	"homehelper-backend/internal/models"
)

// chatOrchestrator is what the HTTP surface needs from the chat service.
type chatOrchestrator interface {
	Submit(ctx context.Context, userMessage, model string, sess *models.Session) (string, error)
	ListModels(ctx context.Context) ([]string, error)
	ClearSession(sess *models.Session)
	CreateChat(ctx context.Context, title, model string, sess *models.Session) (*models.Chat, error)
	ListChats(ctx context.Context) ([]*models.Chat, error)
	LoadChat(ctx context.Context, id uuid.UUID, sess *models.Session) (*models.Chat, error)
	RenameChat(ctx context.Context, id uuid.UUID, title string) error
	DeleteChat(ctx context.Context, id uuid.UUID, sess *models.Session) error
	Health(ctx context.Context, sess *models.Session) (models.HealthResponse, bool)
}

type sessionStore interface {
	Load(ctx context.Context, token string) (*models.Session, error)
	Save(ctx context.Context, token string, sess *models.Session) error
}

type ChatHandler struct {
	chat     chatOrchestrator
	sessions sessionStore
}

func NewChatHandler(chat chatOrchestrator, sessions sessionStore) *ChatHandler {
	return &ChatHandler{chat: chat, sessions: sessions}
}

// loadSession fetches the caller's session record; on failure it writes the
// error response and returns nil.
func (h *ChatHandler) loadSession(w http.ResponseWriter, r *http.Request) *models.Session {
	token := middleware.GetSessionToken(r.Context())
	sess, err := h.sessions.Load(r.Context(), token)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to load session", r))
		return nil
	}
	return sess
}

// saveSession writes the session back. A failed save loses session state but
// never the response that was already produced, so it is only logged.
func (h *ChatHandler) saveSession(r *http.Request, sess *models.Session) {
	token := middleware.GetSessionToken(r.Context())
	if err := h.sessions.Save(r.Context(), token, sess); err != nil {
		log.Printf("failed to save session %s: %v", token, err)
	}
}

func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req models.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	sess := h.loadSession(w, r)
	if sess == nil {
		return
	}

	model := req.Model
	if model == "" {
		model = sess.CurrentModel
	}

	reply, err := h.chat.Submit(r.Context(), req.Message, model, sess)
	if err != nil {
		// The model selection may have changed even when the call failed.
		h.saveSession(r, sess)
		handleServiceError(w, r, err)
		return
	}

	h.saveSession(r, sess)
	writeJSON(w, http.StatusOK, models.ChatResponse{
		Response:  reply,
		Model:     model,
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

func (h *ChatHandler) Models(w http.ResponseWriter, r *http.Request) {
	sess := h.loadSession(w, r)
	if sess == nil {
		return
	}

	names, err := h.chat.ListModels(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, models.ModelsResponse{
		Models:       names,
		CurrentModel: sess.CurrentModel,
	})
}

func (h *ChatHandler) ClearChat(w http.ResponseWriter, r *http.Request) {
	sess := h.loadSession(w, r)
	if sess == nil {
		return
	}

	h.chat.ClearSession(sess)
	h.saveSession(r, sess)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat history cleared"})
}

func (h *ChatHandler) ListChats(w http.ResponseWriter, r *http.Request) {
	chats, err := h.chat.ListChats(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if chats == nil {
		chats = []*models.Chat{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"chats": chats})
}

func (h *ChatHandler) CreateChat(w http.ResponseWriter, r *http.Request) {
	var req models.CreateChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	sess := h.loadSession(w, r)
	if sess == nil {
		return
	}

	chat, err := h.chat.CreateChat(r.Context(), req.Title, req.Model, sess)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.saveSession(r, sess)
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"id":    chat.ID,
		"title": chat.Title,
	})
}

func (h *ChatHandler) GetChat(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	sess := h.loadSession(w, r)
	if sess == nil {
		return
	}

	chat, err := h.chat.LoadChat(r.Context(), id, sess)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.saveSession(r, sess)
	writeJSON(w, http.StatusOK, chat)
}

func (h *ChatHandler) RenameChat(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	var req models.RenameChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.chat.RenameChat(r.Context(), id, req.Title); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat renamed"})
}

func (h *ChatHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid chat ID", r))
		return
	}

	sess := h.loadSession(w, r)
	if sess == nil {
		return
	}

	if err := h.chat.DeleteChat(r.Context(), id, sess); err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.saveSession(r, sess)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Chat deleted"})
}

func (h *ChatHandler) Health(w http.ResponseWriter, r *http.Request) {
	sess := h.loadSession(w, r)
	if sess == nil {
		return
	}

	resp, healthy := h.chat.Health(r.Context(), sess)
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
