package handler

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/nathanoyet/contra-ai/internal/insight"
	"github.com/nathanoyet/contra-ai/internal/model"
	"github.com/nathanoyet/contra-ai/internal/status"
	"github.com/nathanoyet/contra-ai/pkg/llm"
)

// maxHistoryTurns bounds how many stored turns are replayed into a
// follow-up prompt.
const maxHistoryTurns = 10

type Analyzer interface {
	Analyze(ctx context.Context, req insight.Request, requestID string, emit func(llm.Fragment) error) (string, error)
	FollowUp(ctx context.Context, req insight.FollowUpRequest, requestID string, emit func(llm.Fragment) error) (string, error)
}

type AnalysisStore interface {
	GetAnalysis(ctx context.Context, userID, ticker string) (*model.Analysis, error)
	SaveAnalysis(ctx context.Context, a *model.Analysis) (bool, error)
}

type ConversationStore interface {
	GetTurns(ctx context.Context, userID, ticker string) ([]model.ConversationTurn, error)
	AppendTurn(ctx context.Context, t *model.ConversationTurn) error
}

// EventLookup finds the next and previous reports for a ticker.
type EventLookup interface {
	Lookup(ctx context.Context, ticker string) (next, previous *earnings.Event, err error)
}

type InsightHandler struct {
	analyzer  Analyzer
	analyses  AnalysisStore
	turns     ConversationStore
	events    EventLookup
	modelName string
	now       func() time.Time
}

// NewInsightHandler builds the handler. analyses and turns may be nil when
// no database is configured; results are then returned but not stored.
func NewInsightHandler(analyzer Analyzer, analyses AnalysisStore, turns ConversationStore, events EventLookup, modelName string) *InsightHandler {
	return &InsightHandler{
		analyzer:  analyzer,
		analyses:  analyses,
		turns:     turns,
		events:    events,
		modelName: modelName,
		now:       time.Now,
	}
}

func (h *InsightHandler) PostInsight(c *gin.Context) {
	var body InsightRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	mode, err := insight.ParseMode(body.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid mode"})
		return
	}
	ticker, _ := normalizeTicker(body.Ticker)
	userID := currentUserID(c)
	ctx := c.Request.Context()

	req := insight.Request{
		Ticker:       ticker,
		Mode:         mode,
		FiscalPeriod: body.FiscalPeriod,
		ReportDate:   earnings.NormalizeDate(body.ReportDate),
		ExpectedDate: earnings.NormalizeDate(body.ExpectedDate),
	}

	switch mode {
	case insight.ModeGeneral:
		if stored := h.storedAnalysis(ctx, userID, ticker); stored != nil {
			h.respondCached(c, body, stored)
			return
		}
	case insight.ModeEvent:
		if req.FiscalPeriod == "" && req.ReportDate == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "fiscal_period or report_date is required for event analysis"})
			return
		}
	case insight.ModePreEarnings:
		h.fillUpcoming(ctx, &req)
	}

	// Generation outlives the client so a finished analysis is still stored.
	genCtx := context.WithoutCancel(ctx)

	var emit func(llm.Fragment) error
	if body.Stream {
		startStream(c)
		emit = streamEmitter(c)
	}

	text, err := h.analyzer.Analyze(genCtx, req, status.Key(userID, body.RequestID), emit)
	if err != nil {
		slog.Error("error generating analysis", "ticker", ticker, "mode", mode, "error", err)
		h.fail(c, body.Stream, "Failed to generate analysis")
		return
	}

	h.persist(genCtx, userID, req, text)

	resp := InsightResponse{
		Ticker:    ticker,
		Mode:      string(mode),
		Content:   text,
		RequestID: body.RequestID,
		CreatedAt: formatTime(h.now()),
	}
	if body.Stream {
		c.SSEvent("done", resp)
		c.Writer.Flush()
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *InsightHandler) PostFollowUp(c *gin.Context) {
	var body FollowUpRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	ticker, _ := normalizeTicker(body.Ticker)
	userID := currentUserID(c)
	ctx := c.Request.Context()

	history := h.history(ctx, userID, ticker)
	genCtx := context.WithoutCancel(ctx)

	var emit func(llm.Fragment) error
	if body.Stream {
		startStream(c)
		emit = streamEmitter(c)
	}

	text, err := h.analyzer.FollowUp(genCtx, insight.FollowUpRequest{
		Ticker:   ticker,
		History:  history,
		Question: body.Question,
	}, status.Key(userID, body.RequestID), emit)
	if err != nil {
		slog.Error("error generating follow-up", "ticker", ticker, "error", err)
		h.fail(c, body.Stream, "Failed to answer question")
		return
	}

	h.appendTurn(genCtx, &model.ConversationTurn{
		UserID:   userID,
		Ticker:   ticker,
		Kind:     model.TurnFollowUp,
		Question: body.Question,
		Answer:   text,
	})

	resp := InsightResponse{
		Ticker:    ticker,
		Mode:      model.TurnFollowUp,
		Content:   text,
		RequestID: body.RequestID,
		CreatedAt: formatTime(h.now()),
	}
	if body.Stream {
		c.SSEvent("done", resp)
		c.Writer.Flush()
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetConversation returns the stored analysis and turns for a ticker.
func (h *InsightHandler) GetConversation(c *gin.Context) {
	ticker, ok := tickerParam(c)
	if !ok {
		return
	}
	userID := currentUserID(c)
	ctx := c.Request.Context()

	resp := ConversationResponse{Ticker: ticker, Turns: []TurnResponse{}}

	a, err := h.analyses.GetAnalysis(ctx, userID, ticker)
	if err != nil {
		slog.Error("error fetching analysis", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	if a != nil {
		resp.Analysis = &AnalysisResponse{
			ID:            a.ID.String(),
			Ticker:        a.Ticker,
			Content:       a.Content,
			ModelUsed:     a.ModelUsed,
			PromptVersion: a.PromptVersion,
			CreatedAt:     formatTime(a.CreatedAt),
		}
	}

	turns, err := h.turns.GetTurns(ctx, userID, ticker)
	if err != nil {
		slog.Error("error fetching conversation", "ticker", ticker, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	}
	for _, t := range turns {
		resp.Turns = append(resp.Turns, TurnResponse{
			ID:        t.ID.String(),
			Kind:      t.Kind,
			Question:  t.Question,
			Answer:    t.Answer,
			CreatedAt: formatTime(t.CreatedAt),
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *InsightHandler) storedAnalysis(ctx context.Context, userID, ticker string) *model.Analysis {
	if h.analyses == nil {
		return nil
	}
	a, err := h.analyses.GetAnalysis(ctx, userID, ticker)
	if err != nil {
		slog.Warn("error reading stored analysis, generating a new one", "ticker", ticker, "error", err)
		return nil
	}
	return a
}

func (h *InsightHandler) respondCached(c *gin.Context, body InsightRequest, a *model.Analysis) {
	resp := InsightResponse{
		Ticker:    a.Ticker,
		Mode:      string(insight.ModeGeneral),
		Content:   a.Content,
		Cached:    true,
		RequestID: body.RequestID,
		CreatedAt: formatTime(a.CreatedAt),
	}
	if body.Stream {
		startStream(c)
		c.SSEvent("delta", gin.H{"text": a.Content})
		c.SSEvent("done", resp)
		c.Writer.Flush()
		return
	}
	c.JSON(http.StatusOK, resp)
}

// fillUpcoming completes a pre-earnings request with the next report date
// and consensus estimate when the caller did not send them.
func (h *InsightHandler) fillUpcoming(ctx context.Context, req *insight.Request) {
	if h.events == nil {
		return
	}
	next, _, err := h.events.Lookup(ctx, req.Ticker)
	if err != nil {
		slog.Warn("error looking up next earnings", "ticker", req.Ticker, "error", err)
		return
	}
	if next == nil {
		return
	}
	if req.ExpectedDate == "" {
		req.ExpectedDate = next.Date
	}
	if req.FiscalPeriod == "" {
		req.FiscalPeriod = next.FiscalPeriod
	}
	if next.EstimatedEPS != nil {
		req.EstimatedEPS = *next.EstimatedEPS
	}
}

func (h *InsightHandler) persist(ctx context.Context, userID string, req insight.Request, text string) {
	switch req.Mode {
	case insight.ModeGeneral:
		if h.analyses == nil {
			return
		}
		inserted, err := h.analyses.SaveAnalysis(ctx, &model.Analysis{
			ID:            uuid.New(),
			UserID:        userID,
			Ticker:        req.Ticker,
			Content:       text,
			ModelUsed:     h.modelName,
			PromptVersion: llm.PromptVersion,
		})
		if err != nil {
			slog.Error("error storing analysis", "ticker", req.Ticker, "error", err)
			return
		}
		if !inserted {
			slog.Info("analysis already stored, keeping the earlier one", "ticker", req.Ticker)
		}
	case insight.ModeEvent:
		h.appendTurn(ctx, &model.ConversationTurn{
			UserID:   userID,
			Ticker:   req.Ticker,
			Kind:     model.TurnEvent,
			Question: fmt.Sprintf("Earnings report %s %s", req.FiscalPeriod, req.ReportDate),
			Answer:   text,
		})
	case insight.ModePreEarnings:
		h.appendTurn(ctx, &model.ConversationTurn{
			UserID:   userID,
			Ticker:   req.Ticker,
			Kind:     model.TurnPreEarnings,
			Question: fmt.Sprintf("Preview of %s report expected %s", req.FiscalPeriod, req.ExpectedDate),
			Answer:   text,
		})
	}
}

func (h *InsightHandler) appendTurn(ctx context.Context, t *model.ConversationTurn) {
	if h.turns == nil {
		return
	}
	t.ID = uuid.New()
	if err := h.turns.AppendTurn(ctx, t); err != nil {
		slog.Error("error storing conversation turn", "ticker", t.Ticker, "kind", t.Kind, "error", err)
	}
}

// history rebuilds the conversation as chat messages: the stored analysis
// first, then the most recent turns.
func (h *InsightHandler) history(ctx context.Context, userID, ticker string) []llm.Message {
	var msgs []llm.Message
	if a := h.storedAnalysis(ctx, userID, ticker); a != nil {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: fmt.Sprintf("[%s] Analyze this stock.", ticker)},
			llm.Message{Role: llm.RoleAssistant, Content: a.Content},
		)
	}
	if h.turns == nil {
		return msgs
	}
	turns, err := h.turns.GetTurns(ctx, userID, ticker)
	if err != nil {
		slog.Warn("error reading conversation, answering without it", "ticker", ticker, "error", err)
		return msgs
	}
	if len(turns) > maxHistoryTurns {
		turns = turns[len(turns)-maxHistoryTurns:]
	}
	for _, t := range turns {
		msgs = append(msgs,
			llm.Message{Role: llm.RoleUser, Content: t.Question},
			llm.Message{Role: llm.RoleAssistant, Content: t.Answer},
		)
	}
	return msgs
}

func (h *InsightHandler) fail(c *gin.Context, streaming bool, msg string) {
	if streaming {
		c.SSEvent("error", gin.H{"error": msg})
		c.Writer.Flush()
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func startStream(c *gin.Context) {
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
}

// streamEmitter writes fragments as SSE events. Writes after the client has
// gone are dropped so generation can finish.
func streamEmitter(c *gin.Context) func(llm.Fragment) error {
	return func(f llm.Fragment) error {
		if f.Reset {
			c.SSEvent("reset", gin.H{})
		}
		if f.Text != "" {
			c.SSEvent("delta", gin.H{"text": f.Text})
		}
		c.Writer.Flush()
		return nil
	}
}
