package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lanternworks/scopeline/internal/config"
)

func testClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewAnthropicClient(AnthropicOpts{
		Config: config.AnthropicConfig{
			APIKey:         "test-key",
			Model:          "test-model",
			MaxTokens:      100,
			TimeoutSeconds: 5,
		},
		BaseURL: server.URL,
	})
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestNewAnthropicClient_RequiresKey(t *testing.T) {
	if _, err := NewAnthropicClient(AnthropicOpts{}); err == nil {
		t.Error("expected error for missing api key")
	}
}

func TestComplete_OK(t *testing.T) {
	var gotReq map[string]interface{}
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/messages" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("X-Api-Key") != "test-key" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("Anthropic-Version") == "" {
			t.Errorf("missing version header")
		}
		json.NewDecoder(r.Body).Decode(&gotReq)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"content": []map[string]string{
				{"type": "text", "text": "Hello "},
				{"type": "text", "text": "there."},
			},
		})
	})

	text, err := client.Complete(context.Background(), "be brief", []Message{
		{Role: RoleUser, Content: "hi"},
	})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "Hello there." {
		t.Errorf("text = %q", text)
	}
	if gotReq["system"] != "be brief" {
		t.Errorf("system = %v", gotReq["system"])
	}
	if gotReq["model"] != "test-model" {
		t.Errorf("model = %v", gotReq["model"])
	}
}

func TestComplete_RateLimited(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "30")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := client.Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	var rated *RateLimitedError
	if !errors.As(err, &rated) {
		t.Fatalf("err = %v, want RateLimitedError", err)
	}
	if rated.RetryAfter != 30 {
		t.Errorf("retryAfter = %d, want 30", rated.RetryAfter)
	}
}

func TestComplete_Overloaded(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
	})

	_, err := client.Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	var overloaded *OverloadedError
	if !errors.As(err, &overloaded) {
		t.Errorf("err = %v, want OverloadedError", err)
	}
}

func TestComplete_APIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"type": "invalid_request_error", "message": "max_tokens required"},
		})
	})

	_, err := client.Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "max_tokens required") {
		t.Errorf("err = %v, want api error message", err)
	}
}

func TestComplete_EmptyContent(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"content": []map[string]string{}})
	})

	if _, err := client.Complete(context.Background(), "", []Message{{Role: RoleUser, Content: "hi"}}); err == nil {
		t.Error("expected error for empty content")
	}
}
