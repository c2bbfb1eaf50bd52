// internal/database/game.go
package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PlayerResult is one seat's final standing.
type PlayerResult struct {
	Seat         int    `json:"seat"`
	Name         string `json:"name"`
	PersistentID string `json:"persistent_id"`
	IsBot        bool   `json:"is_bot"`
	Score        int    `json:"score"`
	PileSize     int    `json:"pile_size"`
}

// GameResult is written once per finished game.
type GameResult struct {
	GameID   uuid.UUID      `json:"game_id"`
	RoomCode string         `json:"room_code"`
	Players  []PlayerResult `json:"players"`
}

// GameAction is one row of the per-game action log.
type GameAction struct {
	GameID      uuid.UUID
	RoomCode    string
	ActionIndex int
	Seat        int
	ActionType  string
	Payload     map[string]interface{}
	CreatedAt   time.Time
}

// Store persists finished games and the per-game action log to Postgres.
type Store struct {
	Pool *pgxpool.Pool
}

// NewStore wraps an open pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// RecordGameResults marks the game completed and upserts one row per seat.
func (s *Store) RecordGameResults(ctx context.Context, res GameResult) error {
	err := beginTxFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		upsertGame := `
			INSERT INTO games (id, room_code, status, end_time)
			VALUES ($1, $2, 'completed', NOW())
			ON CONFLICT (id) DO UPDATE SET status = 'completed', end_time = NOW()
		`
		if _, e := tx.Exec(ctx, upsertGame, res.GameID, res.RoomCode); e != nil {
			return e
		}

		q := `
			INSERT INTO game_results (game_id, seat, name, persistent_id, is_bot, score, pile_size)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (game_id, seat)
			DO UPDATE SET name=$3, persistent_id=$4, is_bot=$5, score=$6, pile_size=$7
		`
		for _, p := range res.Players {
			if _, e := tx.Exec(ctx, q, res.GameID, p.Seat, p.Name, p.PersistentID, p.IsBot, p.Score, p.PileSize); e != nil {
				return e
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("tx upsert game or results: %w", err)
	}
	return nil
}

// GetGameResults loads the stored standings for gameID ordered by seat.
func (s *Store) GetGameResults(ctx context.Context, gameID uuid.UUID) ([]PlayerResult, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT seat, name, persistent_id, is_bot, score, pile_size
		FROM game_results
		WHERE game_id = $1
		ORDER BY seat
	`, gameID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PlayerResult
	for rows.Next() {
		var p PlayerResult
		if err := rows.Scan(&p.Seat, &p.Name, &p.PersistentID, &p.IsBot, &p.Score, &p.PileSize); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertGameActions writes a batch of actions in one transaction, creating
// the game row on first sight. Replayed actions are ignored.
func (s *Store) InsertGameActions(ctx context.Context, actions []GameAction) error {
	return beginTxFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		for _, a := range actions {
			if err := insertGameActionTx(ctx, tx, a); err != nil {
				return fmt.Errorf("insertGameActionTx: %w", err)
			}
		}
		return nil
	})
}

func insertGameActionTx(ctx context.Context, tx pgx.Tx, a GameAction) error {
	upsertGameQ := `
		INSERT INTO games (id, room_code, status, start_time)
		VALUES ($1, $2, 'in_progress', $3)
		ON CONFLICT (id) DO NOTHING
	`
	if _, err := tx.Exec(ctx, upsertGameQ, a.GameID, a.RoomCode, a.CreatedAt); err != nil {
		return err
	}

	payload, err := json.Marshal(a.Payload)
	if err != nil {
		return err
	}
	actionInsertQ := `
		INSERT INTO game_actions (game_id, action_index, seat, action_type, action_payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id, action_index) DO NOTHING
	`
	_, err = tx.Exec(ctx, actionInsertQ, a.GameID, a.ActionIndex, a.Seat, a.ActionType, payload, a.CreatedAt)
	return err
}

// MarkGameAbandoned flags a game that stopped producing actions before completing.
func (s *Store) MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) error {
	return beginTxFunc(ctx, s.Pool, func(tx pgx.Tx) error {
		q := `
			UPDATE games
			SET status = 'abandoned', end_time = NOW()
			WHERE id = $1 AND status = 'in_progress'
		`
		_, e := tx.Exec(ctx, q, gameID)
		return e
	})
}
