package handler

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/assert/v2"
	"github.com/google/uuid"
	"github.com/nathanoyet/contra-ai/internal/earnings"
	"github.com/nathanoyet/contra-ai/internal/insight"
	"github.com/nathanoyet/contra-ai/internal/model"
	"github.com/nathanoyet/contra-ai/internal/status"
	"github.com/nathanoyet/contra-ai/pkg/llm"
)

func TestPostInsight_GeneratesAndStores(t *testing.T) {
	env := newTestEnv()

	w := env.do("POST", "/api/insight", gin.H{"ticker": "aapl", "request_id": "req-1"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp InsightResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, "general", resp.Mode)
	assert.Equal(t, "AAPL rose after earnings.", resp.Content)
	assert.Equal(t, false, resp.Cached)

	assert.Equal(t, insight.ModeGeneral, env.analyzer.lastReq.Mode)
	assert.Equal(t, 1, len(env.analyses.saved))
	saved := env.analyses.saved[0]
	assert.Equal(t, "user-1", saved.UserID)
	assert.Equal(t, "AAPL", saved.Ticker)
	assert.Equal(t, "gpt-test", saved.ModelUsed)
	assert.Equal(t, llm.PromptVersion, saved.PromptVersion)
	assert.Equal(t, status.Key("user-1", "req-1"), env.analyzer.lastRequestID)
}

func TestPostInsight_WithoutRequestIDSkipsStatus(t *testing.T) {
	env := newTestEnv()

	w := env.do("POST", "/api/insight", gin.H{"ticker": "AAPL"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "", env.analyzer.lastRequestID)
}

func TestPostInsight_ReturnsStoredAnalysis(t *testing.T) {
	env := newTestEnv()
	env.analyses.stored = &model.Analysis{
		ID:      uuid.New(),
		UserID:  "user-1",
		Ticker:  "AAPL",
		Content: "Stored narrative.",
	}

	w := env.do("POST", "/api/insight", gin.H{"ticker": "AAPL"})

	assert.Equal(t, http.StatusOK, w.Code)
	var resp InsightResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "Stored narrative.", resp.Content)
	assert.Equal(t, true, resp.Cached)
	assert.Equal(t, 0, env.analyzer.calls)
	assert.Equal(t, 0, len(env.analyses.saved))
}

func TestPostInsight_StoreFailureStillAnswers(t *testing.T) {
	env := newTestEnv()
	env.analyses.err = errors.New("DB down")

	w := env.do("POST", "/api/insight", gin.H{"ticker": "AAPL"})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, env.analyzer.calls)
}

func TestPostInsight_InvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body any
	}{
		{"missing ticker", gin.H{"mode": "general"}},
		{"bad ticker", gin.H{"ticker": "AA PL"}},
		{"bad mode", gin.H{"ticker": "AAPL", "mode": "weekly"}},
		{"event without period", gin.H{"ticker": "AAPL", "mode": "event"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()
			w := env.do("POST", "/api/insight", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, 0, env.analyzer.calls)
		})
	}
}

func TestPostInsight_EventStoredAsTurn(t *testing.T) {
	env := newTestEnv()

	w := env.do("POST", "/api/insight", gin.H{
		"ticker":        "AAPL",
		"mode":          "event",
		"fiscal_period": "Q1FY25",
		"report_date":   "2025-01-30",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2025-01-30", env.analyzer.lastReq.ReportDate)
	assert.Equal(t, 0, len(env.analyses.saved))
	assert.Equal(t, 1, len(env.turns.turns))
	assert.Equal(t, model.TurnEvent, env.turns.turns[0].Kind)
	assert.Equal(t, "AAPL rose after earnings.", env.turns.turns[0].Answer)
}

func TestPostInsight_PreEarningsFillsNextReport(t *testing.T) {
	env := newTestEnv()
	env.market.next = &earnings.Event{
		Ticker:       "AAPL",
		Date:         "2025-04-30",
		FiscalPeriod: "Q2FY25",
		EstimatedEPS: strPtr("1.61"),
	}

	w := env.do("POST", "/api/insight", gin.H{"ticker": "AAPL", "mode": "pre_earnings"})

	assert.Equal(t, http.StatusOK, w.Code)
	req := env.analyzer.lastReq
	assert.Equal(t, insight.ModePreEarnings, req.Mode)
	assert.Equal(t, "2025-04-30", req.ExpectedDate)
	assert.Equal(t, "Q2FY25", req.FiscalPeriod)
	assert.Equal(t, "1.61", req.EstimatedEPS)
	assert.Equal(t, model.TurnPreEarnings, env.turns.turns[0].Kind)
}

func TestPostInsight_Stream(t *testing.T) {
	env := newTestEnv()
	env.analyzer.fragments = []llm.Fragment{
		{Text: "AAPL rose "},
		{Reset: true},
		{Text: "AAPL rose after earnings."},
	}

	w := env.do("POST", "/api/insight", gin.H{"ticker": "AAPL", "stream": true})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, strings.HasPrefix(w.Header().Get("Content-Type"), "text/event-stream"))
	body := w.Body.String()
	assert.Equal(t, 2, strings.Count(body, "event:delta"))
	assert.Equal(t, 1, strings.Count(body, "event:reset"))
	assert.Equal(t, 1, strings.Count(body, "event:done"))
	assert.Equal(t, true, strings.Index(body, "event:reset") < strings.Index(body, "event:done"))
	assert.Equal(t, 1, len(env.analyses.saved))
}

func TestPostInsight_StreamError(t *testing.T) {
	env := newTestEnv()
	env.analyzer.err = errors.New("model unavailable")

	w := env.do("POST", "/api/insight", gin.H{"ticker": "AAPL", "stream": true})

	body := w.Body.String()
	assert.Equal(t, true, strings.Contains(body, "event:error"))
	assert.Equal(t, false, strings.Contains(body, "event:done"))
	assert.Equal(t, 0, len(env.analyses.saved))
}

func TestPostInsight_GenerationError(t *testing.T) {
	env := newTestEnv()
	env.analyzer.err = errors.New("model unavailable")

	w := env.do("POST", "/api/insight", gin.H{"ticker": "AAPL"})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body map[string]string
	decodeBody(t, w, &body)
	assert.Equal(t, "Failed to generate analysis", body["error"])
}

func TestPostFollowUp_UsesHistory(t *testing.T) {
	env := newTestEnv()
	env.analyses.stored = &model.Analysis{UserID: "user-1", Ticker: "AAPL", Content: "Stored narrative."}
	env.turns.turns = []model.ConversationTurn{
		{UserID: "user-1", Ticker: "AAPL", Kind: model.TurnFollowUp, Question: "Margins?", Answer: "Up."},
		{UserID: "user-2", Ticker: "AAPL", Kind: model.TurnFollowUp, Question: "Other user", Answer: "Hidden."},
	}
	env.analyzer.text = "Services grew."

	w := env.do("POST", "/api/insight/followup", gin.H{"ticker": "AAPL", "question": "What drove revenue?"})

	assert.Equal(t, http.StatusOK, w.Code)
	req := env.analyzer.lastFollowUp
	assert.Equal(t, "What drove revenue?", req.Question)
	assert.Equal(t, 4, len(req.History))
	assert.Equal(t, "Stored narrative.", req.History[1].Content)
	assert.Equal(t, "Margins?", req.History[2].Content)

	assert.Equal(t, 3, len(env.turns.turns))
	last := env.turns.turns[2]
	assert.Equal(t, model.TurnFollowUp, last.Kind)
	assert.Equal(t, "Services grew.", last.Answer)
}

func TestPostFollowUp_MissingQuestion(t *testing.T) {
	env := newTestEnv()

	w := env.do("POST", "/api/insight/followup", gin.H{"ticker": "AAPL"})

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetConversation(t *testing.T) {
	env := newTestEnv()
	env.analyses.stored = &model.Analysis{ID: uuid.New(), UserID: "user-1", Ticker: "AAPL", Content: "Stored narrative.", ModelUsed: "gpt-test"}
	env.turns.turns = []model.ConversationTurn{
		{ID: uuid.New(), UserID: "user-1", Ticker: "AAPL", Kind: model.TurnEvent, Question: "Q1FY25", Answer: "Beat."},
	}

	w := env.do("GET", "/api/insight/aapl", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ConversationResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "AAPL", resp.Ticker)
	assert.Equal(t, "Stored narrative.", resp.Analysis.Content)
	assert.Equal(t, 1, len(resp.Turns))
	assert.Equal(t, "event", resp.Turns[0].Kind)
}

func TestGetConversation_Empty(t *testing.T) {
	env := newTestEnv()

	w := env.do("GET", "/api/insight/MSFT", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp ConversationResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, true, resp.Analysis == nil)
	assert.Equal(t, 0, len(resp.Turns))
}

func TestGetConversation_DBError(t *testing.T) {
	env := newTestEnv()
	env.analyses.err = errors.New("DB down")

	w := env.do("GET", "/api/insight/AAPL", nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func strPtr(s string) *string { return &s }
