package ai

import (
	"context"
	"encoding/base64"
	"log/slog"
	"strings"

	openaigo "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/edgard/recapbot/internal/config"
	"github.com/edgard/recapbot/internal/errs"
	"github.com/edgard/recapbot/internal/text"
)

// OpenAIClient generates text with any OpenAI-compatible chat completions API.
// It serves as the alternate model.
type OpenAIClient struct {
	client      openaigo.Client
	log         *slog.Logger
	model       string
	temperature float64
	instruction string
}

// NewOpenAIClient creates a client for the alternate model.
func NewOpenAIClient(cfg config.OpenAIConfig, log *slog.Logger) (*OpenAIClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errs.NewConfigError("openai API key is required", nil)
	}

	opts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithMaxRetries(cfg.MaxRetries),
		option.WithRequestTimeout(cfg.Timeout),
	}
	if baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"); baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	logger := log.With("component", "openai_client")
	logger.Info("OpenAI client initialized successfully", "model", cfg.Model)
	return &OpenAIClient{
		client:      openaigo.NewClient(opts...),
		log:         logger,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		instruction: cfg.SystemInstruction,
	}, nil
}

// Generate sends the conversation as chat completion messages.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	messages := make([]openaigo.ChatCompletionMessageParamUnion, 0, len(req.History)+2)
	if c.instruction != "" {
		messages = append(messages, openaigo.SystemMessage(c.instruction))
	}
	for _, turn := range req.History {
		if turn.Role == RoleModel {
			messages = append(messages, openaigo.AssistantMessage(turn.Text))
		} else {
			messages = append(messages, openaigo.UserMessage(turn.Text))
		}
	}

	if req.Image != nil && len(req.Image.Data) > 0 {
		dataURL := "data:" + req.Image.MimeType + ";base64," + base64.StdEncoding.EncodeToString(req.Image.Data)
		messages = append(messages, openaigo.UserMessage([]openaigo.ChatCompletionContentPartUnionParam{
			openaigo.TextContentPart(req.Prompt),
			openaigo.ImageContentPart(openaigo.ChatCompletionContentPartImageImageURLParam{URL: dataURL}),
		}))
	} else {
		messages = append(messages, openaigo.UserMessage(req.Prompt))
	}

	params := openaigo.ChatCompletionNewParams{
		Model:    openaigo.ChatModel(c.model),
		Messages: messages,
	}
	if c.temperature > 0 {
		params.Temperature = openaigo.Float(c.temperature)
	}

	c.log.DebugContext(ctx, "Generating chat completion", "history_turns", len(req.History), "prompt_length", len(req.Prompt), "has_image", req.Image != nil)

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		c.log.ErrorContext(ctx, "OpenAI chat completion failed", "error", err)
		return "", errs.NewBackendError("openai API call failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", errs.NewBackendError("openai returned no choices", ErrNoAnswer)
	}

	clean := text.Sanitize(resp.Choices[0].Message.Content)
	if clean == "" {
		c.log.WarnContext(ctx, "OpenAI response is empty", "finish_reason", resp.Choices[0].FinishReason)
		return "", errs.NewBackendError("openai returned empty text", ErrNoAnswer)
	}
	return clean, nil
}
