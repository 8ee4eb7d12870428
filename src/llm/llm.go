// Package llm queries an OpenAI-compatible chat completions API for word
// definitions when the local dictionary has no entry. Results are JSON blobs
// in the same shape the gpt4_words table stores, so they can be cached and
// rendered by the same path.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Config struct {
	APIBase string
	APIKey  string
	Model   string
	Timeout time.Duration
}

var (
	config     *Config
	httpClient *http.Client
)

func Init(cfg *Config) {
	config = cfg
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	httpClient = &http.Client{Timeout: timeout}
}

// Configured reports whether the fallback can be used at all.
func Configured() bool {
	return config != nil && config.APIKey != "" && config.Model != ""
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *apiError `json:"error,omitempty"`
}

type apiError struct {
	Message string      `json:"message"`
	Type    string      `json:"type"`
	Code    interface{} `json:"code"` // string or number depending on vendor
}

const (
	maxRetries   = 3
	initialDelay = 1 * time.Second
	temperature  = 0.3
	maxTokens    = 2048
)

// definitionPrompt asks for the exact JSON contract the renderer and the
// gpt4_words cache expect. No markdown fences, JSON only.
func definitionPrompt(word string) string {
	return fmt.Sprintf(`Explain the English word or phrase %q for a Chinese learner. `+
		`Return ONLY a JSON object, no markdown code fences, with this shape:

{
  "phonetic_us": "US phonetic or null",
  "phonetic_uk": "UK phonetic or null",
  "translations": [
    { "pos": "part of speech (n. / v. / adj.)", "tranCn": "Chinese definition" }
  ],
  "sentences": [
    { "en": "example sentence", "cn": "Chinese translation" }
  ],
  "phrases": [
    { "phrase": "common collocation", "meaning": "its meaning" }
  ],
  "rememberMethod": "mnemonic or etymology note, or null"
}

Requirements: at least 1 translation, 2-3 sentences, phrases may be empty.`, word)
}

// QueryDefinition asks the model to define word. The returned string is the
// raw JSON content, fences stripped.
func QueryDefinition(ctx context.Context, word string) (string, error) {
	if config == nil {
		return "", fmt.Errorf("LLM client not initialized")
	}
	if config.APIKey == "" {
		return "", fmt.Errorf("API key is required")
	}
	if config.Model == "" {
		return "", fmt.Errorf("model is required")
	}

	request := chatRequest{
		Model: config.Model,
		Messages: []chatMessage{
			{Role: "user", Content: definitionPrompt(word)},
		},
		Temperature: temperature,
		MaxTokens:   maxTokens,
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(float64(initialDelay) * (1.5 * float64(attempt)))
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
			}
		}

		response, err := makeAPIRequest(ctx, request)
		if err != nil {
			lastErr = err
			continue
		}
		if len(response.Choices) == 0 {
			lastErr = fmt.Errorf("no choices in API response")
			continue
		}

		content := stripCodeFences(response.Choices[0].Message.Content)
		if content == "" {
			lastErr = fmt.Errorf("empty response content")
			continue
		}
		return content, nil
	}

	return "", fmt.Errorf("failed after %d attempts: %w", maxRetries, lastErr)
}

func makeAPIRequest(ctx context.Context, request chatRequest) (*chatResponse, error) {
	jsonData, err := json.Marshal(request)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := strings.TrimRight(config.APIBase, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+config.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	var response chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if response.Error != nil {
		return nil, fmt.Errorf("API error: %s (type: %s, code: %v)",
			response.Error.Message, response.Error.Type, response.Error.Code)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
	return &response, nil
}

// stripCodeFences unwraps ```json ... ``` blocks some models insist on.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
