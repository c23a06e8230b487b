package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/nathanoyet/contra-ai/internal/model"
)

type ConversationRepository struct {
	db *sql.DB
}

func NewConversationRepository(db *sql.DB) *ConversationRepository {
	return &ConversationRepository{db: db}
}

// GetTurns returns the user's turns for ticker, oldest first.
func (r *ConversationRepository) GetTurns(ctx context.Context, userID, ticker string) ([]model.ConversationTurn, error) {
	var turns []model.ConversationTurn
	err := withUser(ctx, r.db, userID, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, user_id, ticker, kind, question, answer, created_at
			FROM conversation_turns
			WHERE user_id = $1 AND ticker = $2
			ORDER BY created_at ASC
		`, userID, ticker)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var t model.ConversationTurn
			if err := rows.Scan(&t.ID, &t.UserID, &t.Ticker, &t.Kind, &t.Question, &t.Answer, &t.CreatedAt); err != nil {
				return err
			}
			turns = append(turns, t)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return turns, nil
}

func (r *ConversationRepository) AppendTurn(ctx context.Context, t *model.ConversationTurn) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Kind == "" {
		t.Kind = model.TurnFollowUp
	}

	return withUser(ctx, r.db, t.UserID, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO conversation_turns(id, user_id, ticker, kind, question, answer)
			VALUES($1, $2, $3, $4, $5, $6)
			RETURNING created_at
		`, t.ID, t.UserID, t.Ticker, t.Kind, t.Question, t.Answer).Scan(&t.CreatedAt)
	})
}
