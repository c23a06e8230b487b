package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/nathanoyet/contra-ai/internal/model"
)

type AnalysisRepository struct {
	db *sql.DB
}

func NewAnalysisRepository(db *sql.DB) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// GetAnalysis returns nil when the user has no stored analysis for ticker.
func (r *AnalysisRepository) GetAnalysis(ctx context.Context, userID, ticker string) (*model.Analysis, error) {
	var a model.Analysis
	err := withUser(ctx, r.db, userID, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			SELECT id, user_id, ticker, content, model_used, prompt_version, created_at, updated_at
			FROM analyses
			WHERE user_id = $1 AND ticker = $2
		`, userID, ticker).Scan(&a.ID, &a.UserID, &a.Ticker, &a.Content, &a.ModelUsed, &a.PromptVersion, &a.CreatedAt, &a.UpdatedAt)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, err
	}

	return &a, nil
}

// SaveAnalysis inserts a new analysis. An existing one is left untouched and
// false is returned.
func (r *AnalysisRepository) SaveAnalysis(ctx context.Context, a *model.Analysis) (bool, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}

	err := withUser(ctx, r.db, a.UserID, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO analyses(id, user_id, ticker, content, model_used, prompt_version)
			VALUES($1, $2, $3, $4, $5, $6)
			ON CONFLICT (user_id, ticker) DO NOTHING
			RETURNING created_at, updated_at
		`, a.ID, a.UserID, a.Ticker, a.Content, a.ModelUsed, a.PromptVersion).Scan(&a.CreatedAt, &a.UpdatedAt)
	})

	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, err
	}

	return true, nil
}
