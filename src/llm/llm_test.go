package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestQueryDefinition(t *testing.T) {
	var gotAuth string
	var gotReq chatRequest

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotReq); err != nil {
			t.Errorf("decode request: %v", err)
		}
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{
					"role":    "assistant",
					"content": "```json\n{\"translations\":[{\"pos\":\"n.\",\"tranCn\":\"鬼\"}]}\n```",
				}},
			},
		}
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	Init(&Config{APIBase: server.URL, APIKey: "sk-test", Model: "test-model"})

	content, err := QueryDefinition(context.Background(), "ghost")
	if err != nil {
		t.Fatalf("QueryDefinition: %v", err)
	}
	if content != `{"translations":[{"pos":"n.","tranCn":"鬼"}]}` {
		t.Errorf("content = %q, want fences stripped", content)
	}

	if gotAuth != "Bearer sk-test" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotReq.Model != "test-model" {
		t.Errorf("Model = %q", gotReq.Model)
	}
	if gotReq.Temperature != temperature || gotReq.MaxTokens != maxTokens {
		t.Errorf("sampling params = %v / %d", gotReq.Temperature, gotReq.MaxTokens)
	}
	if len(gotReq.Messages) != 1 || !strings.Contains(gotReq.Messages[0].Content, `"ghost"`) {
		t.Errorf("prompt does not name the word: %+v", gotReq.Messages)
	}
}

func TestQueryDefinitionAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limited", "type": "rate_limit", "code": 429},
		})
	}))
	defer server.Close()

	Init(&Config{APIBase: server.URL, APIKey: "sk-test", Model: "test-model"})

	// Short deadline so the retry backoff does not stall the test.
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	if _, err := QueryDefinition(ctx, "ghost"); err == nil {
		t.Fatal("QueryDefinition succeeded on API error")
	}
}

func TestQueryDefinitionRequiresInit(t *testing.T) {
	config = nil
	if _, err := QueryDefinition(context.Background(), "ghost"); err == nil {
		t.Fatal("QueryDefinition succeeded without Init")
	}

	Init(&Config{APIBase: "http://localhost", APIKey: "", Model: "m"})
	if Configured() {
		t.Error("Configured() = true without an API key")
	}
	if _, err := QueryDefinition(context.Background(), "ghost"); err == nil {
		t.Fatal("QueryDefinition succeeded without API key")
	}
}

func TestStripCodeFences(t *testing.T) {
	cases := []struct{ in, want string }{
		{"{\"a\":1}", "{\"a\":1}"},
		{"```json\n{\"a\":1}\n```", "{\"a\":1}"},
		{"```\n{\"a\":1}\n```", "{\"a\":1}"},
		{"  {\"a\":1}  ", "{\"a\":1}"},
	}
	for _, tc := range cases {
		if got := stripCodeFences(tc.in); got != tc.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
