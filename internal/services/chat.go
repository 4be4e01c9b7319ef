package services

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"

	"homehelper-backend/internal/models"
)

const maxTitleLen = 50

// chatStore is the slice of the persistence layer the chat service needs.
type chatStore interface {
	Create(ctx context.Context, c *models.Chat) error
	AppendMessage(ctx context.Context, m *models.Message) error
	List(ctx context.Context) ([]*models.Chat, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Chat, error)
	Rename(ctx context.Context, id uuid.UUID, title string) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// inferenceClient is the contract to the inference server.
type inferenceClient interface {
	Ping(ctx context.Context) error
	ListModels(ctx context.Context) ([]string, error)
	Chat(ctx context.Context, model string, messages []models.ChatMessage) (string, error)
}

// ChatService orchestrates a chat exchange: it validates the request, probes
// the inference server, assembles the prompt from the session's rolling
// history, and mirrors the finished exchange into the persistent store.
type ChatService struct {
	store        chatStore
	llm          inferenceClient
	systemPrompt string
	historyLimit int
}

func NewChatService(store chatStore, llm inferenceClient, systemPrompt string, historyLimit int) *ChatService {
	return &ChatService{
		store:        store,
		llm:          llm,
		systemPrompt: systemPrompt,
		historyLimit: historyLimit,
	}
}

// Submit handles one user message and returns the assistant's reply. The
// session is mutated in place: the exchange lands in the rolling history, and
// a chat record is created and bound on the first message of a session.
// Store writes happen after the reply has been produced; their failures are
// logged and never surfaced to the caller.
func (s *ChatService) Submit(ctx context.Context, userMessage, model string, sess *models.Session) (string, error) {
	userMessage = strings.TrimSpace(userMessage)
	if userMessage == "" {
		return "", &ValidationError{Message: "Message cannot be empty"}
	}
	if model == "" {
		return "", &ValidationError{Message: "Model is required"}
	}

	sess.CurrentModel = model

	if err := s.llm.Ping(ctx); err != nil {
		return "", &ServiceUnavailableError{Message: "Cannot connect to Ollama. Please make sure it is running."}
	}

	available, err := s.llm.ListModels(ctx)
	if err != nil {
		return "", &ServiceUnavailableError{Message: "Error checking available models"}
	}
	if !contains(available, model) {
		return "", &ModelNotFoundError{
			Message: fmt.Sprintf("Model %s is not available. Available models: %s", model, strings.Join(available, ", ")),
		}
	}

	messages := make([]models.ChatMessage, 0, len(sess.History)+2)
	messages = append(messages, models.ChatMessage{Role: "system", Content: s.systemPrompt})
	messages = append(messages, sess.History...)
	messages = append(messages, models.ChatMessage{Role: "user", Content: userMessage})

	reply, err := s.llm.Chat(ctx, model, messages)
	if err != nil {
		return "", &InferenceError{Message: "Error communicating with Ollama"}
	}

	sess.AppendExchange(userMessage, reply, s.historyLimit)

	if sess.ActiveChatID == nil {
		chat := &models.Chat{Title: deriveTitle(userMessage), Model: model}
		if err := s.store.Create(ctx, chat); err != nil {
			log.Printf("failed to create chat record: %v", err)
		} else {
			sess.ActiveChatID = &chat.ID
		}
	}

	if sess.ActiveChatID != nil {
		s.persistMessage(ctx, *sess.ActiveChatID, "user", userMessage)
		s.persistMessage(ctx, *sess.ActiveChatID, "assistant", reply)
	}

	return reply, nil
}

func (s *ChatService) persistMessage(ctx context.Context, chatID uuid.UUID, role, content string) {
	m := &models.Message{ChatID: chatID, Role: role, Content: content}
	if err := s.store.AppendMessage(ctx, m); err != nil {
		log.Printf("failed to persist %s message for chat %s: %v", role, chatID, err)
	}
}

// ListModels returns the models the inference server has available.
func (s *ChatService) ListModels(ctx context.Context) ([]string, error) {
	names, err := s.llm.ListModels(ctx)
	if err != nil {
		return nil, &ServiceUnavailableError{Message: "Error fetching models"}
	}
	return names, nil
}

// ClearSession drops the rolling history and unbinds the active chat. The
// persisted chat, if any, is untouched.
func (s *ChatService) ClearSession(sess *models.Session) {
	sess.Reset()
}

// CreateChat creates an empty chat record, clears the session history and
// binds the new chat to the session.
func (s *ChatService) CreateChat(ctx context.Context, title, model string, sess *models.Session) (*models.Chat, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New Chat"
	}
	if model == "" {
		model = sess.CurrentModel
	}

	chat := &models.Chat{Title: title, Model: model}
	if err := s.store.Create(ctx, chat); err != nil {
		return nil, &StoreError{Message: "Failed to create chat"}
	}

	sess.Reset()
	sess.ActiveChatID = &chat.ID
	return chat, nil
}

// ListChats returns all stored chats, most recently updated first.
func (s *ChatService) ListChats(ctx context.Context) ([]*models.Chat, error) {
	chats, err := s.store.List(ctx)
	if err != nil {
		return nil, &StoreError{Message: "Failed to list chats"}
	}
	return chats, nil
}

// LoadChat replaces the session's rolling history with the stored messages
// of the chat and binds it. The history cap is not applied here; a stored
// chat longer than the cap is loaded whole.
func (s *ChatService) LoadChat(ctx context.Context, id uuid.UUID, sess *models.Session) (*models.Chat, error) {
	chat, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, &StoreError{Message: "Failed to load chat"}
	}
	if chat == nil {
		return nil, &NotFoundError{Message: "Chat not found"}
	}

	history := make([]models.ChatMessage, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		history = append(history, models.ChatMessage{Role: m.Role, Content: m.Content})
	}
	sess.History = history
	sess.ActiveChatID = &chat.ID

	return chat, nil
}

// RenameChat updates the chat's title.
func (s *ChatService) RenameChat(ctx context.Context, id uuid.UUID, title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return &ValidationError{Message: "Title cannot be empty"}
	}
	if err := s.store.Rename(ctx, id, title); err != nil {
		return &StoreError{Message: "Failed to rename chat"}
	}
	return nil
}

// DeleteChat removes the chat and its messages. If the session was bound to
// it, the session is reset.
func (s *ChatService) DeleteChat(ctx context.Context, id uuid.UUID, sess *models.Session) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return &StoreError{Message: "Failed to delete chat"}
	}
	if sess.ActiveChatID != nil && *sess.ActiveChatID == id {
		sess.Reset()
	}
	return nil
}

// Health reports whether the inference server answers the probe. The second
// return value is true when it does.
func (s *ChatService) Health(ctx context.Context, sess *models.Session) (models.HealthResponse, bool) {
	if err := s.llm.Ping(ctx); err != nil {
		return models.HealthResponse{
			Status:       "unhealthy",
			Ollama:       "not accessible",
			CurrentModel: sess.CurrentModel,
			Error:        err.Error(),
		}, false
	}
	return models.HealthResponse{
		Status:       "healthy",
		Ollama:       "running",
		CurrentModel: sess.CurrentModel,
	}, true
}

// deriveTitle names a new chat after its first message, truncated to 50
// characters with an ellipsis marker.
func deriveTitle(message string) string {
	runes := []rune(message)
	if len(runes) <= maxTitleLen {
		return message
	}
	return string(runes[:maxTitleLen]) + "..."
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}
