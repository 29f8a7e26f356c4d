// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mkarlin/onenight/internal/game"
	"github.com/mkarlin/onenight/internal/models"
	"github.com/mkarlin/onenight/internal/rating"
)

// RecordGameResults persists the outcome of a finished game and runs the
// team rating update. won maps registered player IDs to whether their side
// took the game; ephemeral players carry no rating and are skipped there.
func RecordGameResults(ctx context.Context, gameID uuid.UUID, winner string, players []*models.Player, won map[uuid.UUID]bool, eliminated []uuid.UUID) error {
	elim := make(map[uuid.UUID]bool, len(eliminated))
	for _, id := range eliminated {
		elim[id] = true
	}
	// Ratings history records the faction each player scored with, taken
	// from the role they held at dawn.
	teamOf := make(map[uuid.UUID]string, len(players))
	for _, p := range players {
		teamOf[p.ID] = string(game.Faction(p.CurrentRole))
	}

	err := pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, status, winner, end_time)
			VALUES ($1, 'completed', $2, NOW())
			ON CONFLICT (id) DO UPDATE SET status = 'completed', winner = $2, end_time = NOW()
		`
		if _, e := tx.Exec(ctx, upsertGame, gameID, winner); e != nil {
			return e
		}

		for _, pl := range players {
			q := `
				INSERT INTO game_results (game_id, player_id, start_role, final_role, eliminated, did_win)
				VALUES ($1, $2, $3, $4, $5, $6)
				ON CONFLICT (game_id, player_id)
				DO UPDATE SET start_role=$3, final_role=$4, eliminated=$5, did_win=$6
			`
			if _, e2 := tx.Exec(ctx, q, gameID, pl.ID,
				string(pl.StartRole), string(pl.CurrentRole),
				elim[pl.ID], won[pl.ID],
			); e2 != nil {
				return e2
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}

	// Load registered users for the rating pass. Players without a stored
	// user row (ephemeral guests) are not rated.
	var userList []*models.User
	oldRatings := make(map[uuid.UUID]float64)
	for _, p := range players {
		if _, scored := won[p.ID]; !scored {
			continue
		}
		u, uerr := GetUserByID(ctx, p.ID)
		if uerr != nil {
			log.Printf("user not found for rating: %v\n", p.ID)
			continue
		}
		oldRatings[u.ID] = u.Rating
		userList = append(userList, u)
	}

	rating.FinalizeRatings(userList, won)

	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		for _, u := range userList {
			updQ := `UPDATE users SET rating=$1, phi=$2, sigma=$3 WHERE id=$4`
			if _, e := tx.Exec(ctx, updQ, u.Rating, u.Phi, u.Sigma, u.ID); e != nil {
				return e
			}
			insQ := `
				INSERT INTO ratings (user_id, game_id, old_rating, new_rating, team)
				VALUES ($1, $2, $3, $4, $5)
			`
			if _, e2 := tx.Exec(ctx, insQ, u.ID, gameID, oldRatings[u.ID], u.Rating, teamOf[u.ID]); e2 != nil {
				return e2
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx rating update: %w", err)
	}

	return nil
}

// StoreFinalGameStateInDB updates the games.final_game_state column with a
// JSON snapshot of the finished game (roles, votes, winner).
func StoreFinalGameStateInDB(ctx context.Context, gameID uuid.UUID, finalSnapshot interface{}) error {
	jsonData, err := json.Marshal(finalSnapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal final snapshot: %w", err)
	}
	query := `
		UPDATE games
		SET final_game_state = $1
		WHERE id = $2
	`
	err = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		_, e := tx.Exec(ctx, query, jsonData, gameID)
		return e
	})
	if err != nil {
		return fmt.Errorf("storing final game state in DB: %w", err)
	}
	return nil
}

// UpsertInitialGameState stores the dealt roles and center slots into
// games.initial_game_state when the night begins.
func UpsertInitialGameState(gameID uuid.UUID, initialData interface{}) {
	ctx := context.Background()
	dataBytes, err := json.Marshal(initialData)
	if err != nil {
		log.Printf("failed to marshal initial game state for game %v: %v", gameID, err)
		return
	}
	_ = pgx.BeginTxFunc(ctx, DB, pgx.TxOptions{}, func(tx pgx.Tx) error {
		q := `
			INSERT INTO games (id, status, initial_game_state, start_time)
			VALUES ($1, 'in_progress', $2, NOW())
			ON CONFLICT (id)
			DO UPDATE SET initial_game_state = EXCLUDED.initial_game_state, status='in_progress'
		`
		_, e := tx.Exec(ctx, q, gameID, dataBytes)
		return e
	})
}
