package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func geminiOKResponse(text string) geminiResponse {
	resp := geminiResponse{}
	resp.Candidates = []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	}{{}}
	resp.Candidates[0].Content.Parts = []struct {
		Text string `json:"text"`
	}{{Text: text}}
	return resp
}

func TestGeminiProvider_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/models/gemini-2.5-flash:generateContent") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing or wrong API key in query")
		}

		var req geminiRequest
		json.NewDecoder(r.Body).Decode(&req)
		if len(req.Contents) == 0 {
			t.Error("no contents in request")
		}

		resp := geminiOKResponse("Gemini response")
		resp.UsageMetadata.PromptTokenCount = 8
		resp.UsageMetadata.CandidatesTokenCount = 12
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewGeminiProvider("test-key", WithGeminiBaseURL(server.URL))

	resp, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Gemini response" {
		t.Errorf("content = %q, want %q", resp.Content, "Gemini response")
	}
	if resp.InputTokens != 8 {
		t.Errorf("input_tokens = %d, want 8", resp.InputTokens)
	}
}

func TestGeminiProvider_Complete_SystemInstruction(t *testing.T) {
	var received geminiRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		json.NewEncoder(w).Encode(geminiOKResponse("ok"))
	}))
	defer server.Close()

	provider := NewGeminiProvider("test-key", WithGeminiBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		SystemInstruction: "You are a medical tutor.",
		Messages: []Message{
			{Role: "user", Content: "hello"},
			{Role: "assistant", Content: "hi"},
			{Role: "user", Content: "explain jaundice"},
		},
		Temperature: 0.5,
		TopP:        1,
		TopK:        1,
	})

	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	if received.SystemInstruction == nil {
		t.Fatal("systemInstruction was not sent")
	}
	if got := received.SystemInstruction.Parts[0].Text; got != "You are a medical tutor." {
		t.Errorf("systemInstruction = %q, want the tutor prompt", got)
	}
	if len(received.Contents) != 3 {
		t.Fatalf("got %d contents, want 3", len(received.Contents))
	}
	if received.Contents[1].Role != "model" {
		t.Errorf("assistant role mapped to %q, want %q", received.Contents[1].Role, "model")
	}
	if received.GenerationConfig == nil {
		t.Fatal("generationConfig was not sent")
	}
	if received.GenerationConfig.TopP == nil || *received.GenerationConfig.TopP != 1 {
		t.Error("topP = nil or wrong, want 1")
	}
	if received.GenerationConfig.TopK == nil || *received.GenerationConfig.TopK != 1 {
		t.Error("topK = nil or wrong, want 1")
	}
}

func TestGeminiProvider_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "forbidden"}`))
	}))
	defer server.Close()

	provider := NewGeminiProvider("test-key", WithGeminiBaseURL(server.URL))

	_, err := provider.Complete(context.Background(), CompletionRequest{
		Messages: []Message{{Role: "user", Content: "hello"}},
	})

	if err == nil {
		t.Fatal("Complete() should return error on API error")
	}
}

func TestGeminiProvider_HealthCheck(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		wantErr    bool
	}{
		{"healthy", http.StatusOK, false},
		{"unhealthy", http.StatusForbidden, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if !strings.Contains(r.URL.Path, "/models") {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				w.WriteHeader(tt.statusCode)
			}))
			defer server.Close()

			provider := NewGeminiProvider("test-key", WithGeminiBaseURL(server.URL))
			err := provider.HealthCheck(context.Background())

			if (err != nil) != tt.wantErr {
				t.Errorf("HealthCheck() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestGeminiProvider_Models(t *testing.T) {
	provider := NewGeminiProvider("test-key")
	models := provider.Models()

	if len(models) == 0 {
		t.Fatal("Models() returned empty list")
	}
	for _, m := range models {
		if m.Name == "" {
			t.Errorf("model %q has empty name", m.ID)
		}
	}
}
