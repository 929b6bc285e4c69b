package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"resume-insights/internal/extract"
	"resume-insights/internal/llm"
)

func TestAnalyzeParsesChoice(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1,
  "model": "gpt-test",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"overallScore\": 72, \"courseSuggestions\": []}"}}],
  "usage": {"prompt_tokens": 100, "completion_tokens": 20, "total_tokens": 120}
}`))
	}))
	defer srv.Close()

	client, err := NewClient(llm.Settings{APIKey: "sk-test", BaseURL: srv.URL, Model: "gpt-test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got, err := client.Analyze(context.Background(), extract.Document{Text: "resume text", PageCount: 1}, "Data Engineer")
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if !got.OverallScore.Valid || got.OverallScore.Value != 72 {
		t.Fatalf("expected overall 72, got %+v", got.OverallScore)
	}
	if body["model"] != "gpt-test" {
		t.Fatalf("expected model in request, got %v", body["model"])
	}
	if msgs, ok := body["messages"].([]any); !ok || len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
}

func TestAnalyzeMapsStatus(t *testing.T) {
	cases := []struct {
		status int
		want   llm.Kind
	}{
		{http.StatusUnauthorized, llm.KindAuth},
		{http.StatusTooManyRequests, llm.KindRateLimited},
		{http.StatusInternalServerError, llm.KindUnavailable},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(tc.status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"test"}}`))
		}))

		client, err := NewClient(llm.Settings{APIKey: "sk-test", BaseURL: srv.URL})
		if err != nil {
			srv.Close()
			t.Fatalf("NewClient: %v", err)
		}
		_, err = client.Analyze(context.Background(), extract.Document{Text: "x", PageCount: 1}, "role")
		srv.Close()
		if llm.KindOf(err) != tc.want {
			t.Fatalf("status %d: expected %s, got %v", tc.status, tc.want, err)
		}
	}
}
