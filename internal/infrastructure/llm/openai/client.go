// Package openai implements the contract analysis provider on the OpenAI
// chat completions API. Calls run under the caller's request-scoped deadline;
// the payload is sent through the standard API, which is contractually
// excluded from provider-side training, and no opt-in flag is ever set.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/petrolex/contract-engine/internal/core/domain"
	"github.com/petrolex/contract-engine/internal/infrastructure/resilience"
)

const maxCompletionTokens = 4096

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

type Client struct {
	api      *openai.Client
	model    string
	executor *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4.1-mini"
	}
	return &Client{
		api:      openai.NewClientWithConfig(clientCfg),
		model:    model,
		executor: executor,
	}
}

func (c *Client) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.ContractAnalysis, []byte, error) {
	raw, err := c.complete(ctx, buildUserPrompt(req, false))
	if err != nil {
		return nil, nil, mapProviderError(err)
	}

	analysis, parseErr := parseAnalysis(raw)
	if parseErr == nil {
		return analysis, []byte(raw), nil
	}

	// A blind retry of the identical prompt will not fix unparseable output.
	// Re-prompt once with stricter formatting instructions instead.
	raw, err = c.complete(ctx, buildUserPrompt(req, true))
	if err != nil {
		return nil, nil, mapProviderError(err)
	}
	analysis, parseErr = parseAnalysis(raw)
	if parseErr != nil {
		return nil, []byte(raw), domain.WrapError(domain.ErrMalformedModelOutput, "parse analysis", parseErr)
	}
	return analysis, []byte(raw), nil
}

func (c *Client) complete(ctx context.Context, userPrompt string) (string, error) {
	var content string
	err := c.executor.Execute(ctx, "openai_analyze", func(ctx context.Context) error {
		resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:     c.model,
			MaxTokens: maxCompletionTokens,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONObject,
			},
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
				{Role: openai.ChatMessageRoleUser, Content: userPrompt},
			},
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return domain.WrapError(domain.ErrMalformedModelOutput, "chat completion", errors.New("no choices in response"))
		}
		content = resp.Choices[0].Message.Content
		return nil
	}, classifyOpenAIError)
	return content, err
}

func parseAnalysis(raw string) (*domain.ContractAnalysis, error) {
	var analysis domain.ContractAnalysis
	if err := json.Unmarshal([]byte(raw), &analysis); err != nil {
		// Models occasionally wrap the object in prose or fences.
		window := extractJSONObject(raw)
		if werr := json.Unmarshal([]byte(window), &analysis); werr != nil {
			return nil, err
		}
	}
	if analysis.OverallRisk == "" && len(analysis.RiskMatrix) == 0 {
		return nil, errors.New("response missing risk assessment fields")
	}
	return &analysis, nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
