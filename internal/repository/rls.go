package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrNoUser = errors.New("repository: missing user id")

// claims is the JWT claim set the row-level policies read through auth.uid().
func claims(userID string) (string, error) {
	b, err := json.Marshal(map[string]string{
		"sub":  userID,
		"role": "authenticated",
	})
	return string(b), err
}

// withUser runs fn in a transaction scoped to userID so the table policies
// apply to every statement fn issues.
func withUser(ctx context.Context, db *sql.DB, userID string, fn func(tx *sql.Tx) error) error {
	if userID == "" {
		return ErrNoUser
	}
	claimSet, err := claims(userID)
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		SELECT set_config('request.jwt.claim.sub', $1, true),
		       set_config('request.jwt.claims', $2, true),
		       set_config('role', 'authenticated', true)
	`, userID, claimSet); err != nil {
		return fmt.Errorf("set request claims: %w", err)
	}

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
