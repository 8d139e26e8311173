package tutor_test

import (
	"sync"
	"testing"

	"github.com/abdallah-7amza/MED-Portal-NUB/internal/tutor"
)

func TestMemoryStore_CreateAndGet(t *testing.T) {
	store := tutor.NewMemoryStore()

	id, err := store.CreateConversation(tutor.Conversation{
		Lesson:       "year-one/anatomy/heart-failure",
		SystemPrompt: "You are a tutor.",
	})
	if err != nil {
		t.Fatalf("CreateConversation() error = %v", err)
	}
	if id == "" {
		t.Error("CreateConversation() returned empty ID")
	}

	got, err := store.GetConversation(id)
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if got.Lesson != "year-one/anatomy/heart-failure" {
		t.Errorf("Lesson = %q", got.Lesson)
	}
	if got.StartedAt.IsZero() {
		t.Error("StartedAt was not set")
	}
	if got.EndedAt != nil {
		t.Error("new conversation should not be ended")
	}
}

func TestMemoryStore_Messages(t *testing.T) {
	store := tutor.NewMemoryStore()
	id, _ := store.CreateConversation(tutor.Conversation{Lesson: "y/b/l"})

	_ = store.AddMessage(id, tutor.StoredMessage{Role: "user", Content: "What is preload?"})
	_ = store.AddMessage(id, tutor.StoredMessage{Role: "model", Content: "Filling pressure.", Model: "gemini-2.5-flash"})

	got, err := store.GetConversation(id)
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("Messages count = %d, want 2", len(got.Messages))
	}
	if got.Messages[0].CreatedAt.IsZero() {
		t.Error("message CreatedAt was not set")
	}
	if got.Messages[1].Model != "gemini-2.5-flash" {
		t.Errorf("Messages[1].Model = %q", got.Messages[1].Model)
	}
}

func TestMemoryStore_End(t *testing.T) {
	store := tutor.NewMemoryStore()
	id, _ := store.CreateConversation(tutor.Conversation{Lesson: "y/b/l"})

	if err := store.EndConversation(id); err != nil {
		t.Fatalf("EndConversation() error = %v", err)
	}

	got, _ := store.GetConversation(id)
	if got.EndedAt == nil {
		t.Error("EndedAt should be set after EndConversation")
	}
}

// GetConversation hands out a snapshot, so readers can walk the message
// history while writers keep appending. Run both sides at once for the
// race detector, then check the reader's copy is insulated from later
// writes.
func TestMemoryStore_ConcurrentReadWrite(t *testing.T) {
	store := tutor.NewMemoryStore()
	id, _ := store.CreateConversation(tutor.Conversation{Lesson: "y/b/l"})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for range 200 {
			if err := store.AddMessage(id, tutor.StoredMessage{Role: "user", Content: "q"}); err != nil {
				t.Errorf("AddMessage() error = %v", err)
				return
			}
		}
	}()
	go func() {
		defer wg.Done()
		for range 200 {
			conv, err := store.GetConversation(id)
			if err != nil {
				t.Errorf("GetConversation() error = %v", err)
				return
			}
			for _, m := range conv.Messages {
				if m.Role == "" {
					t.Error("read a half-written message")
					return
				}
			}
		}
	}()
	wg.Wait()

	snapshot, err := store.GetConversation(id)
	if err != nil {
		t.Fatalf("GetConversation() error = %v", err)
	}
	before := len(snapshot.Messages)
	if err := store.AddMessage(id, tutor.StoredMessage{Role: "user", Content: "later"}); err != nil {
		t.Fatalf("AddMessage() error = %v", err)
	}
	if len(snapshot.Messages) != before {
		t.Errorf("snapshot grew to %d messages, want %d", len(snapshot.Messages), before)
	}
}

func TestMemoryStore_NotFound(t *testing.T) {
	store := tutor.NewMemoryStore()

	if _, err := store.GetConversation("nonexistent"); err == nil {
		t.Error("GetConversation() should error for non-existent conversation")
	}
	if err := store.AddMessage("nonexistent", tutor.StoredMessage{Role: "user", Content: "x"}); err == nil {
		t.Error("AddMessage() should error for non-existent conversation")
	}
	if err := store.EndConversation("nonexistent"); err == nil {
		t.Error("EndConversation() should error for non-existent conversation")
	}
}
