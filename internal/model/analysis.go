package model

import (
	"time"

	"github.com/google/uuid"
)

// Analysis is the stored general analysis for one user and ticker. It is
// written once and never updated.
type Analysis struct {
	ID            uuid.UUID
	UserID        string
	Ticker        string
	Content       string
	ModelUsed     string
	PromptVersion string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
