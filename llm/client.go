package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/studyloft/studyloft/config"
)

// TextGenerator is the external text-generation collaborator. The response may
// or may not be valid JSON even when the prompt asks for it; callers parse
// defensively.
type TextGenerator interface {
	Generate(ctx context.Context, prompt, systemInstruction string, maxTokens int, temperature float32) (string, error)
}

// SpeechSynthesizer turns a narration script into audio bytes.
type SpeechSynthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

type OpenAIClient struct {
	client      *openai.Client
	model       string
	speechModel string
	logger      *logrus.Logger
}

func NewOpenAIClient(cfg config.OpenAIConfig, logger *logrus.Logger) *OpenAIClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		speechModel: cfg.SpeechModel,
		logger:      logger,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt, systemInstruction string, maxTokens int, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
