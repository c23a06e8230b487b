package llm

import (
	"context"
	"fmt"
	"strings"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string
	Content string
}

// ChatClient is a hosted chat-completion model. Stream calls onDelta for each
// text fragment in order; an error from onDelta aborts the stream.
type ChatClient interface {
	Complete(ctx context.Context, system string, messages []Message) (string, error)
	Stream(ctx context.Context, system string, messages []Message, onDelta func(string) error) error
	ModelName() string
}

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
)

// NewChatClient builds the client for provider. An empty model keeps the
// provider default.
func NewChatClient(provider, apiKey, model string) (ChatClient, error) {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "", ProviderOpenAI:
		return NewOpenAIClient(apiKey, model), nil
	case ProviderAnthropic:
		return NewAnthropicClient(apiKey, model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
