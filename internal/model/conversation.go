package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	TurnFollowUp    = "followup"
	TurnEvent       = "event"
	TurnPreEarnings = "pre_earnings"
)

type ConversationTurn struct {
	ID        uuid.UUID
	UserID    string
	Ticker    string
	Kind      string
	Question  string
	Answer    string
	CreatedAt time.Time
}
