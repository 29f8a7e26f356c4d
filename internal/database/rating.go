package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InsertRatingRecord logs a rating change in the 'ratings' table.
func InsertRatingRecord(ctx context.Context, userID, gameID uuid.UUID, oldRating, newRating float64, team string) error {
	q := `
		INSERT INTO ratings (user_id, game_id, old_rating, new_rating, team)
		VALUES ($1, $2, $3, $4, $5)
	`
	return pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, q, userID, gameID, oldRating, newRating, team)
		return err
	})
}
