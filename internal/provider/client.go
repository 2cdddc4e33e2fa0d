// Copyright 2025 LazyUncle Project
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package provider wraps the external chat-completion API used to
// generate gift ideas. Retry and circuit breaking live in the
// resilience package; this client issues single attempts and classifies
// their failures.
package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/your-org/lazyuncle/internal/config"
	"github.com/your-org/lazyuncle/internal/resilience"
)

// SystemInstruction is sent with every recommendation request
const SystemInstruction = "You are a thoughtful gift advisor. You respond only with valid JSON, never prose or markdown."

// CallError represents a failed provider call with the HTTP status
// returned by the provider, if any. A zero status means the call never
// produced a response (network failure).
type CallError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *CallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("provider error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("provider error: %s", e.Message)
}

func (e *CallError) Unwrap() error {
	return e.Err
}

// IsRetryable classifies an error for the resilient request executor:
// timeouts, provider statuses 429/502/503/504, and status-less network
// failures are retryable. Everything else (auth failures, malformed
// requests) is not.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || resilience.IsTimeout(err) {
		return true
	}

	var callErr *CallError
	if errors.As(err, &callErr) {
		switch callErr.StatusCode {
		case 0:
			return true
		case http.StatusTooManyRequests,
			http.StatusBadGateway,
			http.StatusServiceUnavailable,
			http.StatusGatewayTimeout:
			return true
		default:
			return false
		}
	}

	// Unclassified errors are treated as transient network failures
	return true
}

// completionAPI is the subset of the go-openai client the provider
// needs; tests substitute a fake.
type completionAPI interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Client wraps the chat-completion API with request shaping and error
// classification.
type Client struct {
	api    completionAPI
	cfg    config.ProviderConfig
	logger *zap.Logger
}

// NewClient creates a provider client from configuration
func NewClient(cfg config.ProviderConfig, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if !strings.HasPrefix(cfg.APIKey, "sk-") {
		return nil, fmt.Errorf("invalid API key format")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientCfg.BaseURL = cfg.Endpoint
	}

	client := &Client{
		api:    openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		logger: logger,
	}

	logger.Info("Provider client initialized",
		zap.String("model", cfg.Model),
		zap.Int("max_tokens", cfg.MaxTokens),
		zap.Float64("temperature", cfg.Temperature))

	return client, nil
}

// NewClientWithAPI creates a client backed by a custom completion API.
// Used by tests to inject a fake provider.
func NewClientWithAPI(api completionAPI, cfg config.ProviderConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{api: api, cfg: cfg, logger: logger}
}

// Model returns the configured model identifier
func (c *Client) Model() string {
	return c.cfg.Model
}

// Complete issues a single chat-completion attempt and returns the raw
// response text. Failures are returned as *CallError for retry
// classification.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: SystemInstruction},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:        c.cfg.MaxTokens,
		Temperature:      float32(c.cfg.Temperature),
		TopP:             float32(c.cfg.TopP),
		FrequencyPenalty: float32(c.cfg.FrequencyPenalty),
		PresencePenalty:  float32(c.cfg.PresencePenalty),
	}

	c.logger.Debug("Sending completion request to provider",
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_length", len(prompt)))

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", classifyAPIError(err)
	}

	if len(resp.Choices) == 0 {
		return "", &CallError{Message: "no choices returned from provider"}
	}

	c.logger.Debug("Completion request succeeded",
		zap.String("finish_reason", string(resp.Choices[0].FinishReason)),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens))

	return resp.Choices[0].Message.Content, nil
}

// classifyAPIError converts go-openai errors into CallError values
// carrying the provider's HTTP status
func classifyAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &CallError{
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &CallError{
			StatusCode: reqErr.HTTPStatusCode,
			Message:    reqErr.Error(),
			Err:        err,
		}
	}

	// No status at all: transport-level failure
	return &CallError{Message: err.Error(), Err: err}
}
