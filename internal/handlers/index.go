package handlers

import (
	"embed"
	"html/template"
	"log"
	"net/http"

	"homehelper-backend/internal/config"
	"homehelper-backend/internal/middleware"
	"homehelper-backend/internal/models"
)

//go:embed templates/chat.html
var templateFS embed.FS

var chatTemplate = template.Must(template.ParseFS(templateFS, "templates/chat.html"))

// IndexHandler renders the chat page with the model catalog and the stored
// chat list pre-populated.
type IndexHandler struct {
	chat     chatOrchestrator
	sessions sessionStore
}

func NewIndexHandler(chat chatOrchestrator, sessions sessionStore) *IndexHandler {
	return &IndexHandler{chat: chat, sessions: sessions}
}

func (h *IndexHandler) Index(w http.ResponseWriter, r *http.Request) {
	sess := h.loadSession(r)

	// A page without the chat list still works; don't fail the render.
	chats, err := h.chat.ListChats(r.Context())
	if err != nil {
		log.Printf("failed to list chats for index page: %v", err)
	}

	data := struct {
		Models       []string
		Descriptions map[string]string
		CurrentModel string
		Chats        []*models.Chat
	}{
		Models:       config.AvailableModels,
		Descriptions: config.ModelDescriptions,
		CurrentModel: sess.CurrentModel,
		Chats:        chats,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := chatTemplate.Execute(w, data); err != nil {
		log.Printf("failed to render chat page: %v", err)
	}
}

func (h *IndexHandler) loadSession(r *http.Request) *models.Session {
	token := middleware.GetSessionToken(r.Context())
	sess, err := h.sessions.Load(r.Context(), token)
	if err != nil {
		log.Printf("failed to load session for index page: %v", err)
		return &models.Session{}
	}
	return sess
}
