package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func groqTestServer(t *testing.T, status int, content string) (*httptest.Server, *chatRequest) {
	t.Helper()
	var received chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Errorf("failed to decode request body: %v", err)
		}

		w.WriteHeader(status)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": content}},
			},
		})
	}))
	return server, &received
}

func TestGroqChatComplete(t *testing.T) {
	server, received := groqTestServer(t, http.StatusOK, `["vf"]`)
	defer server.Close()

	c := NewGroqClient("test-key", "test-model", server.URL, time.Second)
	content, err := c.ChatComplete(context.Background(), "system msg", "user msg")
	if err != nil {
		t.Fatalf("ChatComplete failed: %v", err)
	}
	if content != `["vf"]` {
		t.Errorf("content = %q", content)
	}

	if received.Model != "test-model" {
		t.Errorf("model = %q, want test-model", received.Model)
	}
	if received.Temperature != chatTemperature {
		t.Errorf("temperature = %v, want %v", received.Temperature, chatTemperature)
	}
	if len(received.Messages) != 2 ||
		received.Messages[0].Role != "system" || received.Messages[0].Content != "system msg" ||
		received.Messages[1].Role != "user" || received.Messages[1].Content != "user msg" {
		t.Errorf("unexpected messages: %+v", received.Messages)
	}
}

func TestGroqNonSuccessStatus(t *testing.T) {
	server, _ := groqTestServer(t, http.StatusTooManyRequests, "")
	defer server.Close()

	c := NewGroqClient("test-key", "test-model", server.URL, time.Second)
	if _, err := c.ChatComplete(context.Background(), "s", "u"); err == nil {
		t.Fatal("expected error for non-2xx status")
	}
}

func TestGroqEmptyContentIsError(t *testing.T) {
	server, _ := groqTestServer(t, http.StatusOK, "   ")
	defer server.Close()

	c := NewGroqClient("test-key", "test-model", server.URL, time.Second)
	_, err := c.ChatComplete(context.Background(), "s", "u")
	if !errors.Is(err, ErrEmptyContent) {
		t.Fatalf("got %v, want ErrEmptyContent", err)
	}
}

func TestGroqMissingKeyIsConfigError(t *testing.T) {
	c := NewGroqClient("", "test-model", "http://127.0.0.1:1", time.Second)
	_, err := c.ChatComplete(context.Background(), "s", "u")

	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("got %v, want ConfigError", err)
	}
}
