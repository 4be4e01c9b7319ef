package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat is a named, persisted conversation.
type Chat struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	Messages     []Message `json:"messages,omitempty"`
}

// Message is one stored turn of a chat.
type Message struct {
	ID        uuid.UUID `json:"id"`
	ChatID    uuid.UUID `json:"chat_id"`
	Role      string    `json:"role"` // "system", "user" or "assistant"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// ChatMessage is the role/content pair sent to the inference server and kept
// in the session's rolling history.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the payload of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
	Model   string `json:"model"`
}

// ChatResponse is the reply of POST /api/chat.
type ChatResponse struct {
	Response  string `json:"response"`
	Model     string `json:"model"`
	Timestamp string `json:"timestamp"`
}

// CreateChatRequest is the payload of POST /api/chats. Both fields are
// optional; the handler falls back to a default title and the session model.
type CreateChatRequest struct {
	Title string `json:"title"`
	Model string `json:"model"`
}

// RenameChatRequest is the payload of PUT /api/chats/{id}.
type RenameChatRequest struct {
	Title string `json:"title"`
}

// ModelsResponse is the reply of GET /api/models.
type ModelsResponse struct {
	Models       []string `json:"models"`
	CurrentModel string   `json:"current_model"`
}

// HealthResponse is the reply of GET /api/health.
type HealthResponse struct {
	Status       string `json:"status"`
	Ollama       string `json:"ollama"`
	CurrentModel string `json:"current_model"`
	Error        string `json:"error,omitempty"`
}
