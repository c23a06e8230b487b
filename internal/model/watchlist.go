package model

import (
	"time"

	"github.com/google/uuid"
)

type WatchlistEntry struct {
	ID          uuid.UUID
	UserID      string
	Ticker      string
	CompanyName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
