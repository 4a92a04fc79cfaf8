// Package llm provides the optional remote-feedback call. The call is
// best-effort by contract: failures come back as inline diagnostic strings,
// never as errors, so an Attempt is always recorded in full.
package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// systemPrompt is the fixed coaching instruction sent with every request.
const systemPrompt = "You are a strict interview coach. Give 3 bullets + 1-line summary feedback."

// requestTimeout bounds the single feedback call. No retries.
const requestTimeout = 20 * time.Second

// Client wraps an OpenAI-compatible chat endpoint.
type Client struct {
	api   *openai.Client
	model string
}

// New creates a feedback client for a configurable base URL and bearer token.
func New(baseURL, apiKey, modelName string) *Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(config),
		model: modelName,
	}
}

// Feedback requests qualitative coaching feedback for a question/answer pair.
// On success it returns the model's message content. Any failure yields an
// inline diagnostic string: "(LLM error <status>)" for non-success statuses,
// "(LLM feedback error: <description>)" otherwise.
func (c *Client) Feedback(ctx context.Context, question, answer string) string {
	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage(question, answer)},
		},
		Temperature: 0.3,
	})
	if err != nil {
		slog.Warn("LLM feedback call failed", "error", err)
		if status, ok := httpStatus(err); ok {
			return fmt.Sprintf("(LLM error %d)", status)
		}
		return fmt.Sprintf("(LLM feedback error: %v)", err)
	}

	if len(resp.Choices) == 0 {
		return "(LLM feedback error: no choices in response)"
	}
	return resp.Choices[0].Message.Content
}

// userMessage embeds the question and answer verbatim.
func userMessage(question, answer string) string {
	return fmt.Sprintf("Question: %s\nAnswer: %s", question, answer)
}

// httpStatus extracts the HTTP status code from a go-openai error, if any.
func httpStatus(err error) (int, bool) {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return apiErr.HTTPStatusCode, true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return reqErr.HTTPStatusCode, true
	}
	return 0, false
}
