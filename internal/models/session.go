package models

import "github.com/google/uuid"

// Session is the ephemeral per-browser state: the rolling message history,
// the currently selected model and the chat the history belongs to, if any.
// It is stored as JSON in Redis keyed by an opaque session token.
type Session struct {
	History      []ChatMessage `json:"history"`
	CurrentModel string        `json:"current_model"`
	ActiveChatID *uuid.UUID    `json:"active_chat_id,omitempty"`
}

// AppendExchange adds a user/assistant pair to the rolling history and drops
// the oldest entries once the history holds more than limit exchanges. The
// bound is enforced here only; loading a long chat may exceed it.
func (s *Session) AppendExchange(userMsg, assistantMsg string, limit int) {
	s.History = append(s.History,
		ChatMessage{Role: "user", Content: userMsg},
		ChatMessage{Role: "assistant", Content: assistantMsg},
	)
	if max := limit * 2; len(s.History) > max {
		s.History = s.History[len(s.History)-max:]
	}
}

// Reset clears the rolling history and unbinds the active chat.
func (s *Session) Reset() {
	s.History = nil
	s.ActiveChatID = nil
}
