package players

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/db"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
)

// Repository implements player data access
type Repository struct {
	pool sqlutil.TxBeginner
}

// NewRepository creates a new players repository
func NewRepository(pool sqlutil.TxBeginner) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) write(ctx context.Context, fn func(q *db.Queries) error) error {
	return sqlutil.Run(ctx, r.pool, pgx.TxOptions{}, db.NewTx, fn)
}

// Join inserts the player and, if the game has no creator yet, claims the slot for them in the
// same transaction. The avatar index backs up the pre-check against concurrent joins.
func (r *Repository) Join(ctx context.Context, player models.Player) (*JoinResult, error) {
	var out JoinResult
	err := r.write(ctx, func(q *db.Queries) error {
		if _, err := q.GetGame(ctx, player.GameID); err != nil {
			return err
		}
		if err := checkAvatar(ctx, q, player.GameID, player.Avatar, ""); err != nil {
			return err
		}
		p, err := q.InsertPlayer(ctx, player)
		if err != nil {
			return err
		}
		out.Player = *p
		if err := q.RecordChange(ctx, p.GameID, models.TablePlayers, models.OpInsert, p.ID, p); err != nil {
			return err
		}

		g, won, err := q.ClaimCreator(ctx, p.GameID, p.ID)
		if err != nil {
			return err
		}
		if !won {
			return nil
		}
		out.IsAdmin = true
		return q.RecordChange(ctx, g.ID, models.TableGames, models.OpUpdate, g.ID, g)
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repository) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.Player, error) {
	var out *models.Player
	err := r.write(ctx, func(q *db.Queries) error {
		if _, err := member(ctx, q, req.GameID, req.PlayerID); err != nil {
			return err
		}
		if err := checkAvatar(ctx, q, req.GameID, req.Avatar, req.PlayerID); err != nil {
			return err
		}
		p, err := q.UpdatePlayerProfile(ctx, req.PlayerID, req.Name, req.Avatar)
		if err != nil {
			return err
		}
		out = p
		return q.RecordChange(ctx, p.GameID, models.TablePlayers, models.OpUpdate, p.ID, p)
	})
	return out, err
}

// SetSpectator lets a player toggle themself; toggling anyone else needs the admin slot.
func (r *Repository) SetSpectator(ctx context.Context, req SetSpectatorRequest) (*models.Player, error) {
	var out *models.Player
	err := r.write(ctx, func(q *db.Queries) error {
		if req.ActorID != req.TargetID {
			if _, err := q.RequireAdmin(ctx, req.GameID, req.ActorID); err != nil {
				return err
			}
		}
		if _, err := member(ctx, q, req.GameID, req.TargetID); err != nil {
			return err
		}
		p, err := q.SetSpectator(ctx, req.TargetID, req.IsSpectator)
		if err != nil {
			return err
		}
		out = p
		return q.RecordChange(ctx, p.GameID, models.TablePlayers, models.OpUpdate, p.ID, p)
	})
	return out, err
}

// Kick deletes the target player. Their votes go with them through the foreign keys; the delete
// event carries only the row id.
func (r *Repository) Kick(ctx context.Context, gameID, actorID, targetID string) error {
	return r.write(ctx, func(q *db.Queries) error {
		g, err := q.RequireAdmin(ctx, gameID, actorID)
		if err != nil {
			return err
		}
		if actorID == targetID {
			return apperr.New(apperr.KindValidation, apperr.ReasonSelfKick, "the admin cannot kick themself")
		}
		if _, err := member(ctx, q, gameID, targetID); err != nil {
			return err
		}
		if err := q.DeletePlayer(ctx, targetID); err != nil {
			return err
		}
		if err := q.RecordChange(ctx, gameID, models.TablePlayers, models.OpDelete, targetID, nil); err != nil {
			return err
		}
		if g.HostPlayerID == nil || *g.HostPlayerID != targetID {
			return nil
		}
		g, err = q.UpdateGameSettings(ctx, db.UpdateGameSettingsParams{
			ID:       g.ID,
			Name:     g.Name,
			Settings: g.GameSettings,
		})
		if err != nil {
			return err
		}
		return q.RecordChange(ctx, g.ID, models.TableGames, models.OpUpdate, g.ID, g)
	})
}

// SetPresence stamps the player's online flag. Unknown players are reported as NotFound so
// the caller can forget them.
func (r *Repository) SetPresence(ctx context.Context, playerID string, online bool, at time.Time) (*models.Player, error) {
	var out *models.Player
	err := r.write(ctx, func(q *db.Queries) error {
		p, err := q.SetPresence(ctx, playerID, online, at)
		if err != nil {
			return err
		}
		out = p
		return q.RecordChange(ctx, p.GameID, models.TablePlayers, models.OpUpdate, p.ID, p)
	})
	return out, err
}

func (r *Repository) ListOnline(ctx context.Context) ([]models.Player, error) {
	var out []models.Player
	err := sqlutil.Run(ctx, r.pool, sqlutil.ReadOnly, db.NewTx, func(q *db.Queries) error {
		var err error
		out, err = q.ListOnlinePlayers(ctx)
		return err
	})
	return out, err
}

func member(ctx context.Context, q *db.Queries, gameID, playerID string) (*models.Player, error) {
	p, err := q.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if p.GameID != gameID {
		return nil, apperr.NotFound("player", playerID)
	}
	return p, nil
}

func checkAvatar(ctx context.Context, q *db.Queries, gameID string, avatar *string, excludeID string) error {
	if avatar == nil {
		return nil
	}
	_, taken, err := q.AvatarHolder(ctx, gameID, *avatar, excludeID)
	if err != nil {
		return err
	}
	if taken {
		return apperr.AvatarTaken(*avatar)
	}
	return nil
}
