package llm

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/nathanoyet/contra-ai/pkg/llm")

const (
	fallbackChunkRunes = 24
	fallbackChunkDelay = 15 * time.Millisecond
)

// Fragment is one piece of generated text handed to the caller. Reset means
// fragments emitted so far must be discarded before the ones that follow.
type Fragment struct {
	Text  string
	Reset bool
}

// Generator streams completions and degrades to a chunked replay of a
// single completion when streaming fails.
type Generator struct {
	client     ChatClient
	chunkRunes int
	chunkDelay time.Duration
}

func NewGenerator(client ChatClient) *Generator {
	return &Generator{
		client:     client,
		chunkRunes: fallbackChunkRunes,
		chunkDelay: fallbackChunkDelay,
	}
}

func (g *Generator) ModelName() string {
	return g.client.ModelName()
}

// Complete returns the whole completion in one piece.
func (g *Generator) Complete(ctx context.Context, system string, messages []Message) (string, error) {
	return g.client.Complete(ctx, system, messages)
}

// Stream emits the completion as fragments and returns the full text. No
// retry is attempted: if the fallback completion fails its error is returned.
func (g *Generator) Stream(ctx context.Context, system string, messages []Message, emit func(Fragment) error) (string, error) {
	var sb strings.Builder
	var emitErr error

	err := g.client.Stream(ctx, system, messages, func(delta string) error {
		if err := emit(Fragment{Text: delta}); err != nil {
			emitErr = err
			return err
		}
		sb.WriteString(delta)
		return nil
	})
	if emitErr != nil {
		return sb.String(), emitErr
	}
	if err == nil {
		return sb.String(), nil
	}

	slog.Warn("streaming generation failed, falling back to completion", "error", err, "emitted_chars", sb.Len())
	trace.SpanFromContext(ctx).AddEvent("stream_fallback", trace.WithAttributes(
		attribute.String("error", err.Error()),
		attribute.Int("emitted_chars", sb.Len()),
	))

	text, err := g.client.Complete(ctx, system, messages)
	if err != nil {
		return "", err
	}

	if sb.Len() > 0 {
		if err := emit(Fragment{Reset: true}); err != nil {
			return text, err
		}
	}

	for i, chunk := range Chunk(text, g.chunkRunes) {
		if i > 0 && g.chunkDelay > 0 {
			select {
			case <-ctx.Done():
				return text, ctx.Err()
			case <-time.After(g.chunkDelay):
			}
		}
		if err := emit(Fragment{Text: chunk}); err != nil {
			return text, err
		}
	}

	return text, nil
}

// Chunk splits s into pieces of at most size runes.
func Chunk(s string, size int) []string {
	if size <= 0 || s == "" {
		return nil
	}
	runes := []rune(s)
	chunks := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}
