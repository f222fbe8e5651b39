// Package analyze implements C6, the Analyzer: a single structured-JSON LLM
// call per transcript producing the fixed Analysis schema (§4.6).
package analyze

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// chatClient is a minimal OpenAI-compatible chat-completions client,
// sufficient for the single structured-JSON call C6 needs. Grounded on the
// teacher's llm package shape (request/response structs, a thin HTTP/RPC
// wrapper) but over net/http instead of gRPC, since CanaryScope's providers
// (OpenAI, Azure OpenAI) speak the REST chat-completions API.
type chatClient struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
}

func newChatClient(baseURL, apiKey, model string) *chatClient {
	return &chatClient{
		httpClient: &http.Client{Timeout: 90 * time.Second},
		baseURL:    baseURL,
		apiKey:     apiKey,
		model:      model,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string         `json:"model"`
	Messages       []chatMessage  `json:"messages"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat responseFormat `json:"response_format"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// rateLimited is returned by complete when the provider responds 429, so the
// caller's retry loop can distinguish it from a non-retryable failure.
type rateLimited struct{ retryAfter time.Duration }

func (e *rateLimited) Error() string { return "rate limited by analysis provider" }

func (c *chatClient) complete(ctx context.Context, systemPrompt, userPrompt string) (content string, promptTokens, completionTokens int, err error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
		Temperature:    0.2,
		MaxTokens:      4000,
		ResponseFormat: responseFormat{Type: "json_object"},
	})
	if err != nil {
		return "", 0, 0, fmt.Errorf("encoding chat request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", 0, 0, fmt.Errorf("building chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, 0, fmt.Errorf("calling analysis provider: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", 0, 0, fmt.Errorf("reading analysis response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return "", 0, 0, &rateLimited{retryAfter: retryAfterHeader(resp.Header.Get("Retry-After"))}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", 0, 0, fmt.Errorf("decoding analysis response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		msg := "unknown provider error"
		if parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", 0, 0, fmt.Errorf("analysis provider returned %d: %s", resp.StatusCode, msg)
	}
	if len(parsed.Choices) == 0 {
		return "", 0, 0, fmt.Errorf("analysis provider returned no choices")
	}

	return parsed.Choices[0].Message.Content, parsed.Usage.PromptTokens, parsed.Usage.CompletionTokens, nil
}

func retryAfterHeader(v string) time.Duration {
	if v == "" {
		return 0
	}
	if secs, err := time.ParseDuration(v + "s"); err == nil {
		return secs
	}
	return 0
}
