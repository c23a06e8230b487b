package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nathanoyet/contra-ai/internal/status"
	"github.com/nathanoyet/contra-ai/pkg/llm"
)

// Generator produces narrative text; *llm.Generator satisfies it.
type Generator interface {
	Complete(ctx context.Context, system string, messages []llm.Message) (string, error)
	Stream(ctx context.Context, system string, messages []llm.Message, emit func(llm.Fragment) error) (string, error)
}

type Service struct {
	source Source
	gen    Generator
	status status.Store
	now    func() time.Time
}

func NewService(source Source, gen Generator, store status.Store) *Service {
	return &Service{source: source, gen: gen, status: store, now: time.Now}
}

// WithClock replaces the service clock.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Analyze collects provider data for req, builds the context and generates
// the narrative. With a requestID, progress is published to the status store
// and cleared when Analyze returns. A nil emit returns the text in one piece.
func (s *Service) Analyze(ctx context.Context, req Request, requestID string, emit func(llm.Fragment) error) (string, error) {
	req.Ticker = strings.ToUpper(strings.TrimSpace(req.Ticker))
	defer s.clearStatus(ctx, requestID)

	var bundle *Bundle
	if requestID != "" {
		bundle = CollectWithStatus(ctx, s.source, s.status, requestID, req.Ticker)
	} else {
		bundle = Collect(ctx, s.source, req.Ticker)
	}

	setStatus(ctx, s.status, requestID, "Generating analysis...")

	prompt := BuildContext(req, bundle, s.now())
	messages := []llm.Message{{Role: llm.RoleUser, Content: prompt}}

	slog.Info("generating analysis", "ticker", req.Ticker, "mode", req.Mode, "context_chars", len(prompt))

	text, err := s.generate(ctx, req.Mode.SystemPrompt(), messages, emit)
	if err != nil {
		return "", fmt.Errorf("generate %s analysis for %s: %w", req.Mode, req.Ticker, err)
	}
	return text, nil
}

type FollowUpRequest struct {
	Ticker   string
	History  []llm.Message
	Question string
}

// FollowUp answers a question with the earlier conversation as context.
func (s *Service) FollowUp(ctx context.Context, req FollowUpRequest, requestID string, emit func(llm.Fragment) error) (string, error) {
	defer s.clearStatus(ctx, requestID)
	setStatus(ctx, s.status, requestID, "Thinking about your question...")

	messages := make([]llm.Message, 0, len(req.History)+1)
	messages = append(messages, req.History...)
	messages = append(messages, llm.Message{
		Role:    llm.RoleUser,
		Content: fmt.Sprintf("[%s] %s", strings.ToUpper(req.Ticker), strings.TrimSpace(req.Question)),
	})

	text, err := s.generate(ctx, llm.FollowUpPrompt, messages, emit)
	if err != nil {
		return "", fmt.Errorf("generate follow-up for %s: %w", req.Ticker, err)
	}
	return text, nil
}

func (s *Service) generate(ctx context.Context, system string, messages []llm.Message, emit func(llm.Fragment) error) (string, error) {
	if emit == nil {
		return s.gen.Complete(ctx, system, messages)
	}
	return s.gen.Stream(ctx, system, messages, emit)
}

func (s *Service) clearStatus(ctx context.Context, requestID string) {
	if s.status == nil || requestID == "" {
		return
	}
	if err := s.status.Delete(context.WithoutCancel(ctx), requestID); err != nil {
		slog.Warn("failed to clear request status", "request_id", requestID, "error", err)
	}
}
