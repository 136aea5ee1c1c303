package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
)

// AvatarConstraint is the partial unique index guarding one avatar per game.
const AvatarConstraint = "players_game_avatar_key"

const playerColumns = `id, game_id, name, avatar, is_spectator, is_online, last_seen, version, created_at`

func scanPlayer(row pgx.Row) (*models.Player, error) {
	var p models.Player
	err := row.Scan(&p.ID, &p.GameID, &p.Name, &p.Avatar, &p.IsSpectator, &p.IsOnline, &p.LastSeen, &p.Version, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func playerRow(row pgx.Row, id string, avatar *string) (*models.Player, error) {
	p, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("player", id)
	}
	if sqlutil.IsUniqueViolation(err, AvatarConstraint) {
		a := ""
		if avatar != nil {
			a = *avatar
		}
		return nil, apperr.AvatarTaken(a)
	}
	if err != nil {
		return nil, fmt.Errorf("scan player: %w", err)
	}
	return p, nil
}

func (q *Queries) InsertPlayer(ctx context.Context, p models.Player) (*models.Player, error) {
	const query = `
		INSERT INTO players (id, game_id, name, avatar, is_spectator, is_online, last_seen)
		VALUES ($1, $2, $3, $4, $5, TRUE, now())
		RETURNING ` + playerColumns
	return playerRow(q.db.QueryRow(ctx, query, p.ID, p.GameID, p.Name, p.Avatar, p.IsSpectator), p.ID, p.Avatar)
}

func (q *Queries) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	return playerRow(q.db.QueryRow(ctx, `SELECT `+playerColumns+` FROM players WHERE id = $1`, id), id, nil)
}

func (q *Queries) ListPlayers(ctx context.Context, gameID string) ([]models.Player, error) {
	rows, err := q.db.Query(ctx, `SELECT `+playerColumns+` FROM players WHERE game_id = $1 ORDER BY created_at, id`, gameID)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	return collect(rows, scanPlayer)
}

// AvatarHolder returns the id of another player in the game holding avatar, if any.
func (q *Queries) AvatarHolder(ctx context.Context, gameID, avatar, excludeID string) (string, bool, error) {
	var id string
	err := q.db.QueryRow(ctx,
		`SELECT id FROM players WHERE game_id = $1 AND avatar = $2 AND id <> $3 LIMIT 1`,
		gameID, avatar, excludeID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("check avatar: %w", err)
	}
	return id, true, nil
}

func (q *Queries) UpdatePlayerProfile(ctx context.Context, id, name string, avatar *string) (*models.Player, error) {
	const query = `
		UPDATE players SET name = $2, avatar = $3, version = version + 1
		WHERE id = $1
		RETURNING ` + playerColumns
	return playerRow(q.db.QueryRow(ctx, query, id, name, avatar), id, avatar)
}

func (q *Queries) SetSpectator(ctx context.Context, id string, spectator bool) (*models.Player, error) {
	const query = `UPDATE players SET is_spectator = $2, version = version + 1 WHERE id = $1 RETURNING ` + playerColumns
	return playerRow(q.db.QueryRow(ctx, query, id, spectator), id, nil)
}

func (q *Queries) SetPresence(ctx context.Context, id string, online bool, lastSeen time.Time) (*models.Player, error) {
	const query = `
		UPDATE players SET is_online = $2, last_seen = $3, version = version + 1
		WHERE id = $1
		RETURNING ` + playerColumns
	return playerRow(q.db.QueryRow(ctx, query, id, online, lastSeen), id, nil)
}

// ListOnlinePlayers returns every player currently flagged online, across games.
func (q *Queries) ListOnlinePlayers(ctx context.Context) ([]models.Player, error) {
	rows, err := q.db.Query(ctx, `SELECT `+playerColumns+` FROM players WHERE is_online ORDER BY game_id, id`)
	if err != nil {
		return nil, fmt.Errorf("list online players: %w", err)
	}
	return collect(rows, scanPlayer)
}

func (q *Queries) DeletePlayer(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("player", id)
	}
	return nil
}
