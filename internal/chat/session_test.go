package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hypertask-network/hypertask/internal/backend"
	"github.com/hypertask-network/hypertask/internal/domain"
)

type chatTurn struct {
	conversationID string
	ready          bool
	reply          string
}

// scriptedBackend replays canned /chat turns in order.
func scriptedBackend(t *testing.T, turns []chatTurn) *httptest.Server {
	t.Helper()
	var n int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if n >= len(turns) {
			t.Fatalf("unexpected chat turn %d", n)
		}
		turn := turns[n]
		n++
		json.NewEncoder(w).Encode(map[string]any{
			"response":         turn.reply,
			"conversation_id":  turn.conversationID,
			"ready_to_execute": turn.ready,
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestSend_EmptyMessage(t *testing.T) {
	s := NewSession(backend.New("http://127.0.0.1:1")) // never dialed

	for _, input := range []string{"", "   ", "\n\t"} {
		if _, err := s.Send(context.Background(), input); err != domain.ErrEmptyMessage {
			t.Errorf("Send(%q) error = %v, want ErrEmptyMessage", input, err)
		}
	}
	if len(s.Messages()) != 0 {
		t.Errorf("rejected input reached the log: %+v", s.Messages())
	}
}

func TestSend_StickyConversationID(t *testing.T) {
	srv := scriptedBackend(t, []chatTurn{
		{conversationID: "conv-1", reply: "What's the brand name?"},
		{conversationID: "conv-2", reply: "Got it."}, // later id must be ignored
	})
	s := NewSession(backend.New(srv.URL))

	if _, err := s.Send(context.Background(), "I need a logo"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if s.ConversationID() != "conv-1" {
		t.Fatalf("conversation id = %q, want conv-1", s.ConversationID())
	}

	if _, err := s.Send(context.Background(), "Acme"); err != nil {
		t.Fatalf("Send() error: %v", err)
	}
	if s.ConversationID() != "conv-1" {
		t.Errorf("conversation id drifted to %q, want sticky conv-1", s.ConversationID())
	}
}

func TestSend_ReadyLatch(t *testing.T) {
	srv := scriptedBackend(t, []chatTurn{
		{conversationID: "conv-1", ready: false, reply: "Tell me more."},
		{conversationID: "conv-1", ready: true, reply: "Ready to go."},
		{conversationID: "conv-1", ready: false, reply: "Anything else?"},
	})
	s := NewSession(backend.New(srv.URL))

	s.Send(context.Background(), "logo please")
	if s.Ready() {
		t.Fatal("ready before the backend flagged it")
	}
	s.Send(context.Background(), "brand is Acme")
	if !s.Ready() {
		t.Fatal("ready flag not latched")
	}
	// A later false must not clear the latch.
	s.Send(context.Background(), "thanks")
	if !s.Ready() {
		t.Error("ready latch was cleared by a later turn")
	}
}

func TestSend_DegradesOnBackendFailure(t *testing.T) {
	srv := httptest.NewServer(nil)
	s := NewSession(backend.New(srv.URL))
	srv.Close() // connection refused

	msg, err := s.Send(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Send() error = %v, want graceful degradation", err)
	}
	if msg.Role != domain.RoleAssistant || msg.Content != degradedReply {
		t.Errorf("degraded reply = %+v", msg)
	}

	log := s.Messages()
	if len(log) != 2 || log[0].Role != domain.RoleUser || log[1].Role != domain.RoleAssistant {
		t.Errorf("log = %+v, want user turn then advisory", log)
	}
	if s.ConversationID() != "" || s.Ready() {
		t.Error("failed turn mutated conversation state")
	}
}

func TestMessages_OrderedLog(t *testing.T) {
	turns := make([]chatTurn, 3)
	for i := range turns {
		turns[i] = chatTurn{conversationID: "conv-1", reply: fmt.Sprintf("reply %d", i)}
	}
	srv := scriptedBackend(t, turns)
	s := NewSession(backend.New(srv.URL))

	for i := 0; i < 3; i++ {
		s.Send(context.Background(), fmt.Sprintf("message %d", i))
	}

	log := s.Messages()
	if len(log) != 6 {
		t.Fatalf("log has %d entries, want 6", len(log))
	}
	for i := 0; i < 3; i++ {
		if log[2*i].Content != fmt.Sprintf("message %d", i) || log[2*i+1].Content != fmt.Sprintf("reply %d", i) {
			t.Errorf("turn %d out of order: %q / %q", i, log[2*i].Content, log[2*i+1].Content)
		}
	}
}

func TestReset(t *testing.T) {
	srv := scriptedBackend(t, []chatTurn{{conversationID: "conv-1", ready: true, reply: "ok"}})
	s := NewSession(backend.New(srv.URL))
	s.Send(context.Background(), "hello")

	s.Reset()
	if len(s.Messages()) != 0 || s.ConversationID() != "" || s.Ready() {
		t.Error("Reset left session state behind")
	}
}

// A slow backend turn must not hold the session lock; readers stay
// responsive while Send is in flight.
func TestSend_DoesNotBlockReaders(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		json.NewEncoder(w).Encode(map[string]any{
			"response":        "done",
			"conversation_id": "conv-1",
		})
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() {
		select {
		case <-release:
		default:
			close(release)
		}
	})

	s := NewSession(backend.New(srv.URL))
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Send(context.Background(), "hello")
	}()

	// The user turn becomes visible while the request is in flight.
	deadline := time.After(5 * time.Second)
	for len(s.Messages()) == 0 {
		select {
		case <-deadline:
			t.Fatal("Messages() blocked behind the in-flight turn")
		case <-time.After(2 * time.Millisecond):
		}
	}
	if s.Ready() {
		t.Error("ready flipped before the turn completed")
	}

	close(release)
	<-done
	if log := s.Messages(); len(log) != 2 || log[1].Content != "done" {
		t.Errorf("log after turn = %+v", log)
	}
}
