package players

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/idgen"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
)

const (
	maxNameLength   = 50
	maxAvatarLength = 500
)

// PlayersRepository defines what the app layer needs from the repository
type PlayersRepository interface {
	Join(ctx context.Context, player models.Player) (*JoinResult, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.Player, error)
	SetSpectator(ctx context.Context, req SetSpectatorRequest) (*models.Player, error)
	Kick(ctx context.Context, gameID, actorID, targetID string) error
	SetPresence(ctx context.Context, playerID string, online bool, at time.Time) (*models.Player, error)
	ListOnline(ctx context.Context) ([]models.Player, error)
}

// App handles player business logic
type App struct {
	repo  PlayersRepository
	clock clockwork.Clock
	newID func() string
}

// NewApp creates a new players App
func NewApp(repo PlayersRepository, clock clockwork.Clock) *App {
	return &App{
		repo:  repo,
		clock: clock,
		newID: idgen.PlayerID,
	}
}

// Join adds a player to the game. The first player of a game without a creator becomes admin.
func (a *App) Join(ctx context.Context, req JoinRequest) (*JoinResult, error) {
	if strings.TrimSpace(req.GameID) == "" {
		return nil, apperr.Validation("game_id is required")
	}
	name, avatar, err := validateProfile(req.Name, req.Avatar)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	res, err := a.repo.Join(ctx, models.Player{
		ID:          a.newID(),
		GameID:      req.GameID,
		Name:        name,
		Avatar:      avatar,
		IsSpectator: req.IsSpectator,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join game: %w", err)
	}

	log.Info().
		Str("game_id", req.GameID).
		Str("player_id", res.Player.ID).
		Bool("is_admin", res.IsAdmin).
		Msg("player joined")
	return res, nil
}

// UpdateProfile changes a player's own name and avatar.
func (a *App) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.Player, error) {
	if err := requireIDs(req.GameID, req.PlayerID); err != nil {
		return nil, err
	}
	name, avatar, err := validateProfile(req.Name, req.Avatar)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	req.Name, req.Avatar = name, avatar

	player, err := a.repo.UpdateProfile(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update player profile: %w", err)
	}
	log.Info().Str("game_id", req.GameID).Str("player_id", player.ID).Msg("player profile updated")
	return player, nil
}

func (a *App) SetSpectator(ctx context.Context, req SetSpectatorRequest) (*models.Player, error) {
	if err := requireIDs(req.GameID, req.ActorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.TargetID) == "" {
		req.TargetID = req.ActorID
	}
	player, err := a.repo.SetSpectator(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to set spectator: %w", err)
	}
	log.Info().Str("game_id", req.GameID).Str("player_id", player.ID).Bool("is_spectator", player.IsSpectator).Msg("spectator toggled")
	return player, nil
}

// Kick removes targetID from the game. Admin only, never the admin themself.
func (a *App) Kick(ctx context.Context, gameID, actorID, targetID string) error {
	if err := requireIDs(gameID, actorID); err != nil {
		return err
	}
	if strings.TrimSpace(targetID) == "" {
		return apperr.Validation("target_player_id is required")
	}
	if err := a.repo.Kick(ctx, gameID, actorID, targetID); err != nil {
		return fmt.Errorf("failed to kick player: %w", err)
	}
	log.Info().Str("game_id", gameID).Str("player_id", targetID).Str("by", actorID).Msg("player kicked")
	return nil
}

// MarkOnline flags the player online and stamps last_seen.
func (a *App) MarkOnline(ctx context.Context, playerID string) error {
	return a.mark(ctx, playerID, true)
}

// MarkOffline flags the player offline and stamps last_seen.
func (a *App) MarkOffline(ctx context.Context, playerID string) error {
	return a.mark(ctx, playerID, false)
}

func (a *App) mark(ctx context.Context, playerID string, online bool) error {
	p, err := a.repo.SetPresence(ctx, playerID, online, a.clock.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set presence: %w", err)
	}
	log.Debug().Str("game_id", p.GameID).Str("player_id", p.ID).Bool("online", online).Msg("presence changed")
	return nil
}

// OnlinePlayers lists the ids of every player currently flagged online.
func (a *App) OnlinePlayers(ctx context.Context) ([]string, error) {
	players, err := a.repo.ListOnline(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list online players: %w", err)
	}
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	return ids, nil
}

func validateProfile(name string, avatar *string) (string, *string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", nil, apperr.Validation("name is required")
	}
	if len(name) > maxNameLength {
		return "", nil, apperr.Validation("name must be at most %d characters", maxNameLength)
	}
	avatar = sqlutil.TrimPtr(avatar)
	if avatar != nil && len(*avatar) > maxAvatarLength {
		return "", nil, apperr.Validation("avatar must be at most %d characters", maxAvatarLength)
	}
	return name, avatar, nil
}

func requireIDs(gameID, playerID string) error {
	if strings.TrimSpace(gameID) == "" {
		return apperr.Validation("game_id is required")
	}
	if strings.TrimSpace(playerID) == "" {
		return apperr.Validation("player_id is required")
	}
	return nil
}
