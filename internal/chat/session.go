// Package chat captures project intent through a backend-driven
// conversation before anything is dispatched or charged.
package chat

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hypertask-network/hypertask/internal/backend"
	"github.com/hypertask-network/hypertask/internal/domain"
)

// degradedReply is appended when the backend cannot be reached. The
// session stays usable; the user just gets no real assistant turn.
const degradedReply = "The agent service is unreachable right now. Your message was kept; try again in a moment."

// Session is one intent-capture conversation. Safe for concurrent use.
// The conversation id is sticky: the first non-empty id returned by the
// backend is pinned for the rest of the session. ready_to_execute is a
// one-way latch.
type Session struct {
	mu             sync.Mutex
	client         *backend.Client
	messages       []domain.ChatMessage
	conversationID string
	ready          bool
}

// NewSession creates an empty session over the given client.
func NewSession(client *backend.Client) *Session {
	return &Session{client: client}
}

// Send appends the user message, forwards it, and appends the
// assistant reply. Whitespace-only input is rejected before any
// request. A backend failure degrades to an advisory reply and a nil
// error; the conversation id and ready latch are untouched.
func (s *Session) Send(ctx context.Context, message string) (domain.ChatMessage, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return domain.ChatMessage{}, domain.ErrEmptyMessage
	}

	s.mu.Lock()
	s.append(domain.RoleUser, message)
	conversationID := s.conversationID
	s.mu.Unlock()

	// The request runs unlocked so readers are not held up behind a
	// slow backend turn.
	resp, err := s.client.Chat(ctx, message, conversationID)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.append(domain.RoleAssistant, degradedReply), nil
	}

	if s.conversationID == "" && resp.ConversationID != "" {
		s.conversationID = resp.ConversationID
	}
	if resp.ReadyToExecute {
		s.ready = true
	}
	return s.append(domain.RoleAssistant, resp.Response), nil
}

// append must be called with mu held.
func (s *Session) append(role domain.ChatRole, content string) domain.ChatMessage {
	msg := domain.ChatMessage{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	s.messages = append(s.messages, msg)
	return msg
}

// Messages returns a copy of the conversation log in order.
func (s *Session) Messages() []domain.ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.ChatMessage, len(s.messages))
	copy(out, s.messages)
	return out
}

// ConversationID returns the pinned conversation id, or "" before the
// first successful turn.
func (s *Session) ConversationID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversationID
}

// Ready reports whether the backend has flagged the conversation as
// ready to execute.
func (s *Session) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready
}

// Reset clears the session for a fresh conversation.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = nil
	s.conversationID = ""
	s.ready = false
}
