package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/nathanoyet/contra-ai/internal/model"
)

type WatchlistRepository struct {
	db *sql.DB
}

func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

func (r *WatchlistRepository) List(ctx context.Context, userID string) ([]model.WatchlistEntry, error) {
	var entries []model.WatchlistEntry
	err := withUser(ctx, r.db, userID, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, user_id, ticker, company_name, created_at, updated_at
			FROM watchlist
			WHERE user_id = $1
			ORDER BY created_at ASC
		`, userID)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var e model.WatchlistEntry
			if err := rows.Scan(&e.ID, &e.UserID, &e.Ticker, &e.CompanyName, &e.CreatedAt, &e.UpdatedAt); err != nil {
				return err
			}
			entries = append(entries, e)
		}
		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return entries, nil
}

// Add inserts the ticker or, when it is already listed, refreshes its
// company name. An empty name never replaces a stored one; e carries the
// stored row afterwards.
func (r *WatchlistRepository) Add(ctx context.Context, e *model.WatchlistEntry) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}

	return withUser(ctx, r.db, e.UserID, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			INSERT INTO watchlist(id, user_id, ticker, company_name)
			VALUES($1, $2, $3, $4)
			ON CONFLICT (user_id, ticker)
			DO UPDATE SET company_name = COALESCE(NULLIF(EXCLUDED.company_name, ''), watchlist.company_name),
			              updated_at = NOW()
			RETURNING id, company_name, created_at, updated_at
		`, e.ID, e.UserID, e.Ticker, e.CompanyName).Scan(&e.ID, &e.CompanyName, &e.CreatedAt, &e.UpdatedAt)
	})
}

// Remove reports whether a row was deleted.
func (r *WatchlistRepository) Remove(ctx context.Context, userID, ticker string) (bool, error) {
	var removed int64
	err := withUser(ctx, r.db, userID, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			DELETE FROM watchlist WHERE user_id = $1 AND ticker = $2
		`, userID, ticker)
		if err != nil {
			return err
		}
		removed, err = res.RowsAffected()
		return err
	})
	return removed > 0, err
}

func (r *WatchlistRepository) Tickers(ctx context.Context, userID string) ([]string, error) {
	var tickers pq.StringArray
	err := withUser(ctx, r.db, userID, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, `
			SELECT COALESCE(array_agg(ticker ORDER BY ticker), '{}')
			FROM watchlist
			WHERE user_id = $1
		`, userID).Scan(&tickers)
	})

	if err != nil {
		return nil, err
	}

	return []string(tickers), nil
}
