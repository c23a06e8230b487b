package handler

import (
	"github.com/nathanoyet/contra-ai/internal/earnings"
)

type InsightRequest struct {
	Ticker       string `json:"ticker" binding:"required,ticker"`
	Mode         string `json:"mode"`
	FiscalPeriod string `json:"fiscal_period"`
	ReportDate   string `json:"report_date"`
	ExpectedDate string `json:"expected_date"`
	RequestID    string `json:"request_id" binding:"omitempty,max=128"`
	Stream       bool   `json:"stream"`
}

type FollowUpRequest struct {
	Ticker    string `json:"ticker" binding:"required,ticker"`
	Question  string `json:"question" binding:"required,max=2000"`
	RequestID string `json:"request_id" binding:"omitempty,max=128"`
	Stream    bool   `json:"stream"`
}

type InsightResponse struct {
	Ticker    string `json:"ticker"`
	Mode      string `json:"mode"`
	Content   string `json:"content"`
	Cached    bool   `json:"cached"`
	RequestID string `json:"request_id,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type AnalysisResponse struct {
	ID            string `json:"id"`
	Ticker        string `json:"ticker"`
	Content       string `json:"content"`
	ModelUsed     string `json:"model_used"`
	PromptVersion string `json:"prompt_version"`
	CreatedAt     string `json:"created_at"`
}

type TurnResponse struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	CreatedAt string `json:"created_at"`
}

type ConversationResponse struct {
	Ticker   string            `json:"ticker"`
	Analysis *AnalysisResponse `json:"analysis"`
	Turns    []TurnResponse    `json:"turns"`
}

type StatusResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

type SearchResult struct {
	Symbol     string `json:"symbol"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	Region     string `json:"region"`
	Currency   string `json:"currency"`
	MatchScore string `json:"match_score"`
}

type WatchlistRequest struct {
	Ticker      string `json:"ticker" binding:"required,ticker"`
	CompanyName string `json:"company_name" binding:"max=200"`
}

type WatchlistEntryResponse struct {
	ID          string `json:"id"`
	Ticker      string `json:"ticker"`
	CompanyName string `json:"company_name"`
	CreatedAt   string `json:"created_at"`
}

type WatchlistRefreshItem struct {
	Ticker        string          `json:"ticker"`
	CompanyName   string          `json:"company_name"`
	Price         *string         `json:"price"`
	Change        *string         `json:"change"`
	ChangePercent *string         `json:"change_percent"`
	NextEarnings  *earnings.Event `json:"next_earnings"`
	Error         string          `json:"error,omitempty"`
}

type CalendarResponse struct {
	Year    int            `json:"year"`
	Month   int            `json:"month"`
	Tickers []string       `json:"tickers"`
	Days    []earnings.Day `json:"days"`
}

type EarningsLookupResponse struct {
	Ticker   string          `json:"ticker"`
	Next     *earnings.Event `json:"next"`
	Previous *earnings.Event `json:"previous"`
}
