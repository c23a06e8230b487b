package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const anthropicMaxTokens = 2048

type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
}

func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	c := &AnthropicClient{
		client:    &client,
		model:     anthropic.Model("claude-haiku-4-5"), // = anthropic.ModelClaudeHaiku4_5 (SDK >= v1.9.1)
		modelName: "claude-4.5-haiku",
	}
	if model != "" {
		c.model = anthropic.Model(model)
		c.modelName = model
	}
	return c
}

func (c *AnthropicClient) ModelName() string {
	return c.modelName
}

func (c *AnthropicClient) params(system string, messages []Message) anthropic.MessageNewParams {
	msgs := make([]anthropic.MessageParam, 0, len(messages))
	for _, m := range messages {
		if m.Role == RoleAssistant {
			msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
			continue
		}
		msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
	}
	return anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: anthropicMaxTokens,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: msgs,
	}
}

func (c *AnthropicClient) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	ctx, span := tracer.Start(ctx, "anthropic.complete")
	defer span.End()

	resp, err := c.client.Messages.New(ctx, c.params(system, messages))
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("no response from anthropic")
	}

	return sb.String(), nil
}

func (c *AnthropicClient) Stream(ctx context.Context, system string, messages []Message, onDelta func(string) error) error {
	ctx, span := tracer.Start(ctx, "anthropic.stream")
	defer span.End()

	stream := c.client.Messages.NewStreaming(ctx, c.params(system, messages))
	defer stream.Close()

	for stream.Next() {
		event := stream.Current()
		switch ev := event.AsAny().(type) {
		case anthropic.ContentBlockDeltaEvent:
			if delta, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok && delta.Text != "" {
				if err := onDelta(delta.Text); err != nil {
					return err
				}
			}
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("anthropic stream error: %w", err)
	}
	return nil
}
