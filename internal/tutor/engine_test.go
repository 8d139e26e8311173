package tutor_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abdallah-7amza/MED-Portal-NUB/internal/ai"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/content"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/flashcards"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/quiz"
	"github.com/abdallah-7amza/MED-Portal-NUB/internal/tutor"
)

func testLesson() *content.LessonArtifact {
	return &content.LessonArtifact{
		Path:         content.Path{Year: "year-one", Branch: "anatomy", Lesson: "heart-failure"},
		Title:        "Heart Failure",
		BodyMarkdown: "# Heart Failure\n\nThe heart fails to pump adequately.",
		Quiz: []quiz.Question{
			{Stem: "Q1", Options: []string{"A", "B"}, Correct: 0},
		},
		Flashcards: []flashcards.Card{
			{Front: "preload", Back: "ventricular filling pressure"},
		},
	}
}

func TestStartLesson(t *testing.T) {
	engine := tutor.NewEngine(tutor.EngineConfig{Provider: ai.NewMockProvider("ok")})

	id, welcome, err := engine.StartLesson(testLesson())
	if err != nil {
		t.Fatalf("StartLesson() error = %v", err)
	}
	if id == "" {
		t.Error("conversation ID is empty")
	}
	want := "I'm your AI Tutor. How can I help you with this lesson on heart failure?"
	if welcome != want {
		t.Errorf("welcome = %q, want %q", welcome, want)
	}
}

func TestAsk(t *testing.T) {
	mock := ai.NewMockProvider("Preload is the filling pressure.")
	engine := tutor.NewEngine(tutor.EngineConfig{Provider: mock})

	id, _, err := engine.StartLesson(testLesson())
	if err != nil {
		t.Fatalf("StartLesson() error = %v", err)
	}

	reply, err := engine.Ask(context.Background(), id, "What is preload?")
	if err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if reply != "Preload is the filling pressure." {
		t.Errorf("reply = %q", reply)
	}

	req := mock.LastRequest
	if req == nil {
		t.Fatal("provider was never called")
	}
	if !strings.Contains(req.SystemInstruction, "The heart fails to pump adequately.") {
		t.Error("system instruction should carry the lesson body")
	}
	if !strings.Contains(req.SystemInstruction, `"mcqs"`) {
		t.Error("system instruction should carry the quiz data")
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v, want one user message", req.Messages)
	}
	if req.Temperature != 0.5 || req.TopP != 1 || req.TopK != 1 {
		t.Errorf("generation settings = %v/%v/%v, want 0.5/1/1",
			req.Temperature, req.TopP, req.TopK)
	}
}

func TestAsk_HistoryAccumulates(t *testing.T) {
	mock := ai.NewMockProvider("answer")
	engine := tutor.NewEngine(tutor.EngineConfig{Provider: mock})

	id, _, _ := engine.StartLesson(testLesson())

	if _, err := engine.Ask(context.Background(), id, "first question"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}
	if _, err := engine.Ask(context.Background(), id, "second question"); err != nil {
		t.Fatalf("Ask() error = %v", err)
	}

	// user, model, user
	if got := len(mock.LastRequest.Messages); got != 3 {
		t.Fatalf("got %d messages on second ask, want 3", got)
	}
	if mock.LastRequest.Messages[1].Role != "model" {
		t.Errorf("messages[1].Role = %q, want model", mock.LastRequest.Messages[1].Role)
	}
}

func TestAsk_ProviderFailureDegrades(t *testing.T) {
	mock := &ai.MockProvider{Err: errors.New("api key invalid")}
	engine := tutor.NewEngine(tutor.EngineConfig{Provider: mock})

	id, _, _ := engine.StartLesson(testLesson())

	reply, err := engine.Ask(context.Background(), id, "anything")
	if err != nil {
		t.Fatalf("Ask() error = %v, provider failure should not propagate", err)
	}
	want := "An error occurred. Please check your API key and network connection."
	if reply != want {
		t.Errorf("reply = %q, want %q", reply, want)
	}

	// The failed turn keeps the conversation usable.
	mock.Err = nil
	mock.Response = "recovered"
	reply, err = engine.Ask(context.Background(), id, "retry")
	if err != nil {
		t.Fatalf("Ask() after recovery error = %v", err)
	}
	if reply != "recovered" {
		t.Errorf("reply = %q, want %q", reply, "recovered")
	}
}

func TestAsk_EmptyQuestion(t *testing.T) {
	engine := tutor.NewEngine(tutor.EngineConfig{Provider: ai.NewMockProvider("ok")})
	id, _, _ := engine.StartLesson(testLesson())

	if _, err := engine.Ask(context.Background(), id, "   "); err == nil {
		t.Fatal("Ask() with a blank question should fail")
	}
}

func TestAsk_UnknownConversation(t *testing.T) {
	engine := tutor.NewEngine(tutor.EngineConfig{Provider: ai.NewMockProvider("ok")})

	if _, err := engine.Ask(context.Background(), "no-such-id", "hello"); err == nil {
		t.Fatal("Ask() on an unknown conversation should fail")
	}
}
