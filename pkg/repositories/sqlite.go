package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/cbodonnell/cardtable/pkg/repositories/models"
	_ "github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS game_rooms (
	room_code TEXT PRIMARY KEY,
	is_game_started INTEGER NOT NULL DEFAULT 0,
	current_turn TEXT NOT NULL DEFAULT '',
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS players (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	player_id TEXT NOT NULL UNIQUE,
	room_code TEXT NOT NULL REFERENCES game_rooms (room_code) ON DELETE CASCADE,
	name TEXT NOT NULL,
	is_ready INTEGER NOT NULL DEFAULT 0,
	created_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_players_room_code ON players (room_code);
`

func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	if _, err := db.ExecContext(ctx, sqliteSchema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %v", err)
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) CreateRoom(ctx context.Context, code string) error {
	q := `
	INSERT INTO game_rooms (room_code, created_at) VALUES (?, ?);
	`
	if _, err := r.db.ExecContext(ctx, q, code, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert room: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) UpsertPlayer(ctx context.Context, roomCode string, playerID string, name string, ready bool) error {
	q := `
	INSERT INTO players (player_id, room_code, name, is_ready, created_at)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT (player_id) DO UPDATE SET name = excluded.name, is_ready = excluded.is_ready;
	`
	if _, err := r.db.ExecContext(ctx, q, playerID, roomCode, name, ready, time.Now().UnixMilli()); err != nil {
		return fmt.Errorf("failed to upsert player: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) DeletePlayer(ctx context.Context, roomCode string, playerID string) error {
	q := `
	DELETE FROM players WHERE player_id = ? AND room_code = ?;
	`
	if _, err := r.db.ExecContext(ctx, q, playerID, roomCode); err != nil {
		return fmt.Errorf("failed to delete player: %v", err)
	}
	return nil
}

func (r *SQLiteRepository) SaveRoomState(ctx context.Context, snapshot *models.RoomSnapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %v", err)
	}
	defer tx.Rollback()

	q := `
	UPDATE game_rooms SET is_game_started = ?, current_turn = ? WHERE room_code = ?;
	`
	if _, err := tx.ExecContext(ctx, q, snapshot.IsGameStarted, snapshot.CurrentTurn, snapshot.Code); err != nil {
		return fmt.Errorf("failed to update room: %v", err)
	}

	for _, player := range snapshot.Players {
		q := `
		UPDATE players SET is_ready = ? WHERE player_id = ? AND room_code = ?;
		`
		if _, err := tx.ExecContext(ctx, q, player.IsReady, player.ID, snapshot.Code); err != nil {
			return fmt.Errorf("failed to update player: %v", err)
		}
	}

	// players absent from the snapshot have left the room
	if len(snapshot.Players) == 0 {
		q := `
		DELETE FROM players WHERE room_code = ?;
		`
		if _, err := tx.ExecContext(ctx, q, snapshot.Code); err != nil {
			return fmt.Errorf("failed to delete departed players: %v", err)
		}
	} else {
		placeholders := make([]string, 0, len(snapshot.Players))
		args := make([]interface{}, 0, len(snapshot.Players)+1)
		args = append(args, snapshot.Code)
		for _, player := range snapshot.Players {
			placeholders = append(placeholders, "?")
			args = append(args, player.ID)
		}
		q := fmt.Sprintf(`DELETE FROM players WHERE room_code = ? AND player_id NOT IN (%s);`, strings.Join(placeholders, ", "))
		if _, err := tx.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("failed to delete departed players: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %v", err)
	}

	return nil
}

func (r *SQLiteRepository) LoadRoomSnapshot(ctx context.Context, code string) (*models.RoomSnapshot, error) {
	snapshot := &models.RoomSnapshot{
		Code: code,
	}

	q := `
	SELECT is_game_started, current_turn FROM game_rooms WHERE room_code = ?;
	`
	if err := r.db.QueryRowContext(ctx, q, code).Scan(&snapshot.IsGameStarted, &snapshot.CurrentTurn); err != nil {
		if err == sql.ErrNoRows {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan room: %v", err)
	}

	q = `
	SELECT player_id, name, is_ready FROM players WHERE room_code = ? ORDER BY id;
	`
	rows, err := r.db.QueryContext(ctx, q, code)
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
