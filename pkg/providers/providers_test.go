package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestEcho_Deterministic(t *testing.T) {
	e := NewEcho()
	ctx := context.Background()

	first, err := e.Answer(ctx, "summarize this text", []string{"Some text to summarize."}, 0.42)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	for i := 0; i < 5; i++ {
		got, err := e.Answer(ctx, "summarize this text", []string{"Some text to summarize."}, 0.42)
		if err != nil {
			t.Fatalf("Answer() error = %v", err)
		}
		if got.Text != first.Text {
			t.Fatalf("run %d: text diverged", i)
		}
	}
}

func TestEcho_Content(t *testing.T) {
	e := NewEcho()
	ctx := context.Background()

	got, err := e.Answer(ctx, "q", []string{"item one", "item two"}, 0)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !strings.Contains(got.Text, "FREE") {
		t.Errorf("free answer does not state mode:\n%s", got.Text)
	}
	if !strings.Contains(got.Text, "[1] item one") || !strings.Contains(got.Text, "[2] item two") {
		t.Errorf("answer does not number evidence:\n%s", got.Text)
	}
	if len(got.Citations) != 2 {
		t.Errorf("citations = %v, want both evidence items", got.Citations)
	}

	got, err = e.Answer(ctx, "q", nil, 0.5)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if !strings.Contains(got.Text, "DAMPEN(damping=0.500)") {
		t.Errorf("damped answer does not state damping:\n%s", got.Text)
	}
	if !strings.Contains(got.Text, "Evidence is missing") {
		t.Errorf("empty-evidence answer does not state absence:\n%s", got.Text)
	}
}

func TestOpenAI_Answer(t *testing.T) {
	var captured chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("authorization = %q", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"model": "gpt-4o-mini",
			"choices": [{"message": {"role": "assistant", "content": "Paris [1]."}, "finish_reason": "stop"}],
			"usage": {"total_tokens": 42}
		}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	p := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})

	got, err := p.Answer(context.Background(), "capital of France?",
		[]string{"Source: Britannica: Paris."}, 0.45)
	if err != nil {
		t.Fatalf("Answer() error = %v", err)
	}
	if got.Text != "Paris [1]." {
		t.Errorf("text = %q", got.Text)
	}
	if got.Meta["finish_reason"] != "stop" || got.Meta["total_tokens"] != "42" {
		t.Errorf("meta = %v", got.Meta)
	}

	// Damping selects the reduced token ceiling and is surfaced in the
	// prompt.
	if captured.MaxTokens != DefaultOpenAIConfig().MaxTokensDampen {
		t.Errorf("max_tokens = %d, want dampened ceiling %d", captured.MaxTokens, DefaultOpenAIConfig().MaxTokensDampen)
	}
	if len(captured.Messages) != 2 || !strings.Contains(captured.Messages[1].Content, "DAMPEN") {
		t.Errorf("prompt does not carry governance mode: %+v", captured.Messages)
	}
}

func TestOpenAI_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit_error"}}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	p := NewOpenAI(OpenAIConfig{BaseURL: srv.URL, Timeout: 5 * time.Second})

	_, err := p.Answer(context.Background(), "q", nil, 0)
	if err == nil || !strings.Contains(err.Error(), "rate limited") {
		t.Errorf("error = %v, want api error surfaced", err)
	}
}

func TestOpenAI_MissingKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	p := NewOpenAI(OpenAIConfig{})
	if _, err := p.Answer(context.Background(), "q", nil, 0); err == nil {
		t.Error("missing api key did not error")
	}
}
