package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/cardtable/pkg/repositories/models"
	"github.com/jackc/pgx/v5"
)

type PostgresRepository struct {
	conn *pgx.Conn
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS game_rooms (
	room_code TEXT PRIMARY KEY,
	is_game_started BOOLEAN NOT NULL DEFAULT FALSE,
	current_turn TEXT NOT NULL DEFAULT '',
	created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	id BIGSERIAL PRIMARY KEY,
	player_id TEXT NOT NULL UNIQUE,
	room_code TEXT NOT NULL REFERENCES game_rooms (room_code) ON DELETE CASCADE,
	name TEXT NOT NULL,
	is_ready BOOLEAN NOT NULL DEFAULT FALSE,
	created_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_players_room_code ON players (room_code);
`

func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	conn, err := pgx.Connect(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	if _, err := conn.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %v", err)
	}

	return &PostgresRepository{
		conn: conn,
	}, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	return r.conn.Close(ctx)
}

func (r *PostgresRepository) CreateRoom(ctx context.Context, code string) error {
	q := `
	INSERT INTO game_rooms (room_code, created_at) VALUES ($1, $2);
	`
	if _, err := r.conn.Exec(ctx, q, code, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert room: %v", err)
	}
	return nil
}

func (r *PostgresRepository) UpsertPlayer(ctx context.Context, roomCode string, playerID string, name string, ready bool) error {
	q := `
	INSERT INTO players (player_id, room_code, name, is_ready, created_at)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (player_id) DO UPDATE SET name = EXCLUDED.name, is_ready = EXCLUDED.is_ready;
	`
	if _, err := r.conn.Exec(ctx, q, playerID, roomCode, name, ready, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to upsert player: %v", err)
	}
	return nil
}

func (r *PostgresRepository) DeletePlayer(ctx context.Context, roomCode string, playerID string) error {
	q := `
	DELETE FROM players WHERE player_id = $1 AND room_code = $2;
	`
	if _, err := r.conn.Exec(ctx, q, playerID, roomCode); err != nil {
		return fmt.Errorf("failed to delete player: %v", err)
	}
	return nil
}

func (r *PostgresRepository) SaveRoomState(ctx context.Context, snapshot *models.RoomSnapshot) error {
	tx, err := r.conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback(ctx)

	q := `
	UPDATE game_rooms SET is_game_started = $1, current_turn = $2 WHERE room_code = $3;
	`
	if _, err := tx.Exec(ctx, q, snapshot.IsGameStarted, snapshot.CurrentTurn, snapshot.Code); err != nil {
		return fmt.Errorf("failed to update room: %v", err)
	}

	for _, player := range snapshot.Players {
		q := `
		UPDATE players SET is_ready = $1 WHERE player_id = $2 AND room_code = $3;
		`
		if _, err := tx.Exec(ctx, q, player.IsReady, player.ID, snapshot.Code); err != nil {
			return fmt.Errorf("failed to update player: %v", err)
		}
	}

	// players absent from the snapshot have left the room
	ids := make([]string, 0, len(snapshot.Players))
	for _, player := range snapshot.Players {
		ids = append(ids, player.ID)
	}
	q = `
	DELETE FROM players WHERE room_code = $1 AND NOT (player_id = ANY($2));
	`
	if _, err := tx.Exec(ctx, q, snapshot.Code, ids); err != nil {
		return fmt.Errorf("failed to delete departed players: %v", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *PostgresRepository) LoadRoomSnapshot(ctx context.Context, code string) (*models.RoomSnapshot, error) {
	snapshot := &models.RoomSnapshot{
		Code: code,
	}

	q := `
	SELECT is_game_started, current_turn FROM game_rooms WHERE room_code = $1;
	`
	if err := r.conn.QueryRow(ctx, q, code).Scan(&snapshot.IsGameStarted, &snapshot.CurrentTurn); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan room: %v", err)
	}

	q = `
	SELECT player_id, name, is_ready FROM players WHERE room_code = $1 ORDER BY id;
	`
	rows, err := r.conn.Query(ctx, q, code)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var player models.PlayerSnapshot
		if err := rows.Scan(&player.ID, &player.Name, &player.IsReady); err != nil {
			return nil, fmt.Errorf("failed to scan player: %v", err)
		}
		snapshot.Players = append(snapshot.Players, player)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate players: %v", err)
	}

	return snapshot, nil
}
