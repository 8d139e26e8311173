// Package tutor implements the lesson-scoped AI tutor: every conversation
// is opened against one resolved lesson and the model is instructed to
// answer from that lesson's material only.
package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abdallah-7amza/MED-Portal-NUB/internal/ai"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/content"
)

const (
	defaultMaxTokens = 1024

	// Generation settings the portal has always used for tutoring.
	tutorTemperature = 0.5
	tutorTopP        = 1
	tutorTopK        = 1

	// Shown instead of a propagated error; the user fixes the key or the
	// network and asks again.
	errorReply = "An error occurred. Please check your API key and network connection."
)

// EngineConfig holds dependencies for the tutor engine.
type EngineConfig struct {
	Provider  ai.Provider
	Store     ConversationStore // defaults to an in-memory store
	Model     string            // defaults to the provider's default model
	MaxTokens int               // defaults to 1024
}

// Engine runs tutor conversations.
type Engine struct {
	provider  ai.Provider
	store     ConversationStore
	model     string
	maxTokens int
}

// NewEngine creates a tutor engine.
func NewEngine(cfg EngineConfig) *Engine {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultMaxTokens
	}
	return &Engine{
		provider:  cfg.Provider,
		store:     store,
		model:     cfg.Model,
		maxTokens: maxTokens,
	}
}

// StartLesson opens a fresh conversation scoped to the given lesson and
// returns its ID together with the tutor's welcome line.
func (e *Engine) StartLesson(lesson *content.LessonArtifact) (string, string, error) {
	id, err := e.store.CreateConversation(Conversation{
		Lesson:       lesson.Path.String(),
		SystemPrompt: buildSystemPrompt(lesson),
	})
	if err != nil {
		return "", "", fmt.Errorf("create conversation: %w", err)
	}

	welcome := fmt.Sprintf("I'm your AI Tutor. How can I help you with this lesson on %s?",
		strings.ReplaceAll(lesson.Path.Lesson, "-", " "))
	return id, welcome, nil
}

// Ask records the user's question, asks the provider with the full
// conversation history, records and returns the reply. Provider failure is
// degraded to a fixed user-visible error line; the conversation stays
// intact so the user can simply try again.
func (e *Engine) Ask(ctx context.Context, conversationID, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("empty question")
	}

	if err := e.store.AddMessage(conversationID, StoredMessage{
		Role:    "user",
		Content: text,
	}); err != nil {
		return "", fmt.Errorf("store user message: %w", err)
	}

	conv, err := e.store.GetConversation(conversationID)
	if err != nil {
		return "", err
	}

	messages := make([]ai.Message, 0, len(conv.Messages))
	for _, m := range conv.Messages {
		messages = append(messages, ai.Message{Role: m.Role, Content: m.Content})
	}

	resp, err := e.provider.Complete(ctx, ai.CompletionRequest{
		Messages:          messages,
		SystemInstruction: conv.SystemPrompt,
		Model:             e.model,
		MaxTokens:         e.maxTokens,
		Temperature:       tutorTemperature,
		TopP:              tutorTopP,
		TopK:              tutorTopK,
	})
	if err != nil {
		slog.Error("tutor completion failed", "lesson", conv.Lesson, "error", err)
		return errorReply, nil
	}

	if err := e.store.AddMessage(conversationID, StoredMessage{
		Role:         "model",
		Content:      resp.Content,
		Model:        resp.Model,
		InputTokens:  resp.InputTokens,
		OutputTokens: resp.OutputTokens,
	}); err != nil {
		slog.Error("failed to store tutor reply", "error", err)
	}

	return resp.Content, nil
}

// End closes a conversation.
func (e *Engine) End(conversationID string) error {
	return e.store.EndConversation(conversationID)
}

// buildSystemPrompt pins the tutor to the lesson's own material. The quiz
// and flashcard data rides along so the tutor can discuss practice
// questions too.
func buildSystemPrompt(lesson *content.LessonArtifact) string {
	quizJSON := "{}"
	if lesson.Quiz != nil || lesson.Flashcards != nil {
		data, err := json.Marshal(map[string]any{
			"mcqs":       lesson.Quiz,
			"flashcards": lesson.Flashcards,
		})
		if err == nil {
			quizJSON = string(data)
		}
	}

	return fmt.Sprintf(`You are an expert medical tutor. The user is currently studying a lesson titled %q. The full lesson content is:

%s

The quiz and flashcard data is:

%s

Your role is to answer the user's questions based ONLY on this provided context. Be clear, concise, and helpful. Do not invent information. If the answer is not in the context, say "That information is not covered in this lesson's material."`,
		lesson.Title, lesson.BodyMarkdown, quizJSON)
}
