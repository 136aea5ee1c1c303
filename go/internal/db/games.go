package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

const gameColumns = `id, name, voting_system, who_can_reveal, who_can_manage, auto_reveal, fun_features,
	show_average, show_countdown, host_player_id, current_issue_id, status, creator_id,
	confidence_status, version, created_at`

func scanGame(row pgx.Row) (*models.Game, error) {
	var g models.Game
	err := row.Scan(
		&g.ID, &g.Name, &g.VotingSystem, &g.WhoCanReveal, &g.WhoCanManage, &g.AutoReveal,
		&g.FunFeatures, &g.ShowAverage, &g.ShowCountdown, &g.HostPlayerID, &g.CurrentIssueID,
		&g.Status, &g.CreatorID, &g.ConfidenceStatus, &g.Version, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func gameRow(row pgx.Row, id string) (*models.Game, error) {
	g, err := scanGame(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperr.NotFound("game", id)
	}
	if err != nil {
		return nil, fmt.Errorf("scan game: %w", err)
	}
	return g, nil
}

func (q *Queries) InsertGame(ctx context.Context, g models.Game) (*models.Game, error) {
	const query = `
		INSERT INTO games (id, name, voting_system, who_can_reveal, who_can_manage, auto_reveal,
			fun_features, show_average, show_countdown, status, confidence_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + gameColumns
	row := q.db.QueryRow(ctx, query,
		g.ID, g.Name, g.VotingSystem, g.WhoCanReveal, g.WhoCanManage, g.AutoReveal,
		g.FunFeatures, g.ShowAverage, g.ShowCountdown, models.GameStatusVoting, models.ConfidenceStatusIdle,
	)
	return gameRow(row, g.ID)
}

func (q *Queries) GetGame(ctx context.Context, id string) (*models.Game, error) {
	return gameRow(q.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id), id)
}

// GetGameForUpdate locks the game row until the surrounding transaction ends.
func (q *Queries) GetGameForUpdate(ctx context.Context, id string) (*models.Game, error) {
	return gameRow(q.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1 FOR UPDATE`, id), id)
}

// GetGameForShare blocks admin writes on the game until the surrounding transaction ends.
func (q *Queries) GetGameForShare(ctx context.Context, id string) (*models.Game, error) {
	return gameRow(q.db.QueryRow(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1 FOR SHARE`, id), id)
}

type UpdateGameSettingsParams struct {
	ID           string
	Name         string
	Settings     models.GameSettings
	HostPlayerID *string
}

func (q *Queries) UpdateGameSettings(ctx context.Context, arg UpdateGameSettingsParams) (*models.Game, error) {
	const query = `
		UPDATE games SET name = $2, voting_system = $3, who_can_reveal = $4, who_can_manage = $5,
			auto_reveal = $6, fun_features = $7, show_average = $8, show_countdown = $9,
			host_player_id = $10, version = version + 1
		WHERE id = $1
		RETURNING ` + gameColumns
	s := arg.Settings
	row := q.db.QueryRow(ctx, query, arg.ID, arg.Name, s.VotingSystem, s.WhoCanReveal, s.WhoCanManage,
		s.AutoReveal, s.FunFeatures, s.ShowAverage, s.ShowCountdown, arg.HostPlayerID)
	return gameRow(row, arg.ID)
}

func (q *Queries) SetGameStatus(ctx context.Context, id string, status models.GameStatus) (*models.Game, error) {
	const query = `UPDATE games SET status = $2, version = version + 1 WHERE id = $1 RETURNING ` + gameColumns
	return gameRow(q.db.QueryRow(ctx, query, id, status), id)
}

// SetCurrentIssue points the game at issueID (nil clears it) and sets the round status.
func (q *Queries) SetCurrentIssue(ctx context.Context, id string, issueID *string, status models.GameStatus) (*models.Game, error) {
	const query = `
		UPDATE games SET current_issue_id = $2, status = $3, version = version + 1
		WHERE id = $1
		RETURNING ` + gameColumns
	return gameRow(q.db.QueryRow(ctx, query, id, issueID, status), id)
}

// ClaimCreator sets creator_id only while it is still NULL. The boolean reports whether this
// call won the slot.
func (q *Queries) ClaimCreator(ctx context.Context, gameID, playerID string) (*models.Game, bool, error) {
	const query = `
		UPDATE games SET creator_id = $2, version = version + 1
		WHERE id = $1 AND creator_id IS NULL
		RETURNING ` + gameColumns
	g, err := scanGame(q.db.QueryRow(ctx, query, gameID, playerID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("claim creator: %w", err)
	}
	return g, true, nil
}

func (q *Queries) SetCreator(ctx context.Context, gameID, playerID string) (*models.Game, error) {
	const query = `UPDATE games SET creator_id = $2, version = version + 1 WHERE id = $1 RETURNING ` + gameColumns
	return gameRow(q.db.QueryRow(ctx, query, gameID, playerID), gameID)
}

func (q *Queries) SetConfidenceStatus(ctx context.Context, id string, status models.ConfidenceStatus) (*models.Game, error) {
	const query = `UPDATE games SET confidence_status = $2, version = version + 1 WHERE id = $1 RETURNING ` + gameColumns
	return gameRow(q.db.QueryRow(ctx, query, id, status), id)
}

// RequireAdmin locks the game row and verifies playerID is its creator. The check runs inside
// the caller's transaction so a concurrent admin transfer cannot slip between check and write.
func (q *Queries) RequireAdmin(ctx context.Context, gameID, playerID string) (*models.Game, error) {
	g, err := q.GetGameForUpdate(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if !g.IsCreator(playerID) {
		return nil, apperr.Forbidden(apperr.ReasonNotAdmin, "player %q is not the admin of game %q", playerID, gameID)
	}
	return g, nil
}
