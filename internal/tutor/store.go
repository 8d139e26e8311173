package tutor

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"
)

// StoredMessage is a single message in a tutor conversation.
type StoredMessage struct {
	Role         string    `json:"role"`
	Content      string    `json:"content"`
	Model        string    `json:"model,omitempty"`
	InputTokens  int       `json:"input_tokens,omitempty"`
	OutputTokens int       `json:"output_tokens,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// Conversation is one lesson-scoped tutoring session.
type Conversation struct {
	ID           string          `json:"id"`
	Lesson       string          `json:"lesson"` // content path, "year/branch/lesson"
	SystemPrompt string          `json:"system_prompt"`
	Messages     []StoredMessage `json:"messages"`
	StartedAt    time.Time       `json:"started_at"`
	EndedAt      *time.Time      `json:"ended_at,omitempty"`
}

// ConversationStore persists tutor conversations and their messages.
type ConversationStore interface {
	CreateConversation(conv Conversation) (string, error)
	GetConversation(id string) (*Conversation, error)
	AddMessage(conversationID string, msg StoredMessage) error
	EndConversation(id string) error
}

// MemoryStore is the in-memory ConversationStore. It matches the portal's
// page-lifetime chat semantics: history lives as long as the process.
type MemoryStore struct {
	conversations map[string]*Conversation
	mu            sync.RWMutex
}

// NewMemoryStore creates an in-memory conversation store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		conversations: make(map[string]*Conversation),
	}
}

func (s *MemoryStore) CreateConversation(conv Conversation) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := generateID()
	conv.ID = id
	conv.StartedAt = time.Now()
	if conv.Messages == nil {
		conv.Messages = []StoredMessage{}
	}
	s.conversations[id] = &conv
	return id, nil
}

// GetConversation returns a snapshot of the conversation. The messages
// slice is copied so callers can range over it while other goroutines keep
// appending.
func (s *MemoryStore) GetConversation(id string) (*Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, ok := s.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation not found: %s", id)
	}

	snapshot := *conv
	snapshot.Messages = make([]StoredMessage, len(conv.Messages))
	copy(snapshot.Messages, conv.Messages)
	return &snapshot, nil
}

func (s *MemoryStore) AddMessage(conversationID string, msg StoredMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation not found: %s", conversationID)
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	conv.Messages = append(conv.Messages, msg)
	return nil
}

func (s *MemoryStore) EndConversation(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, ok := s.conversations[id]
	if !ok {
		return fmt.Errorf("conversation not found: %s", id)
	}
	now := time.Now()
	conv.EndedAt = &now
	return nil
}

func generateID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return fmt.Sprintf("%x", b)
}
