package games

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/idgen"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

const maxNameLength = 100

// GamesRepository defines what the app layer needs from the repository
type GamesRepository interface {
	CreateGame(ctx context.Context, game models.Game) (*models.Game, error)
	GetSnapshot(ctx context.Context, gameID string) (*models.Snapshot, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*models.Game, error)
	Reveal(ctx context.Context, gameID, playerID string) (*RevealResult, error)
	NewRound(ctx context.Context, gameID, playerID string) (*models.Game, error)
	SetCurrentIssue(ctx context.Context, gameID, playerID, issueID string) (*CurrentIssueResult, error)
	TransferAdmin(ctx context.Context, gameID, playerID, targetID string) (*models.Game, error)
}

// App handles game business logic
type App struct {
	repo     GamesRepository
	defaults models.GameSettings
	newID    func() string
}

// NewApp creates a new games App. defaults seed games created without explicit settings.
func NewApp(repo GamesRepository, defaults models.GameSettings) *App {
	return &App{
		repo:     repo,
		defaults: defaults,
		newID:    idgen.GameID,
	}
}

// CreateGame creates a game with no creator; the first player to join claims it.
func (a *App) CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error) {
	name, err := validateName(req.Name)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	settings := a.defaults
	if req.Settings != nil {
		settings = *req.Settings
	}
	if err := validateSettings(settings); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	game, err := a.repo.CreateGame(ctx, models.Game{
		ID:           a.newID(),
		Name:         name,
		GameSettings: settings,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	log.Info().Str("game_id", game.ID).Str("name", game.Name).Msg("game created")
	return game, nil
}

// GetSnapshot reads everything a client needs to render the game.
func (a *App) GetSnapshot(ctx context.Context, gameID string) (*models.Snapshot, error) {
	if err := requireID("game_id", gameID); err != nil {
		return nil, err
	}
	snap, err := a.repo.GetSnapshot(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to get game snapshot: %w", err)
	}
	return snap, nil
}

// UpdateSettings edits the game's name and settings. Admin only.
func (a *App) UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*models.Game, error) {
	if err := requireIDs(req.GameID, req.PlayerID); err != nil {
		return nil, err
	}
	name, err := validateName(req.Name)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	if err := validateSettings(req.Settings); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	req.Name = name

	game, err := a.repo.UpdateSettings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update game settings: %w", err)
	}
	log.Info().Str("game_id", game.ID).Int64("version", game.Version).Msg("game settings updated")
	return game, nil
}

// Reveal exposes the round's votes and scores the current issue. Admin only.
func (a *App) Reveal(ctx context.Context, gameID, playerID string) (*RevealResult, error) {
	if err := requireIDs(gameID, playerID); err != nil {
		return nil, err
	}
	res, err := a.repo.Reveal(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reveal votes: %w", err)
	}
	ev := log.Info().Str("game_id", gameID)
	if res.Issue != nil {
		ev = ev.Str("issue_id", res.Issue.ID)
		if res.Issue.FinalScore != nil {
			ev = ev.Float64("final_score", *res.Issue.FinalScore)
		}
	}
	ev.Msg("votes revealed")
	return res, nil
}

// NewRound clears the current issue's votes and reopens voting. Admin only.
func (a *App) NewRound(ctx context.Context, gameID, playerID string) (*models.Game, error) {
	if err := requireIDs(gameID, playerID); err != nil {
		return nil, err
	}
	game, err := a.repo.NewRound(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start new round: %w", err)
	}
	log.Info().Str("game_id", gameID).Msg("new round started")
	return game, nil
}

// SetCurrentIssue moves voting onto issueID. Admin only.
func (a *App) SetCurrentIssue(ctx context.Context, gameID, playerID, issueID string) (*CurrentIssueResult, error) {
	if err := requireIDs(gameID, playerID); err != nil {
		return nil, err
	}
	if err := requireID("issue_id", issueID); err != nil {
		return nil, err
	}
	res, err := a.repo.SetCurrentIssue(ctx, gameID, playerID, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to set current issue: %w", err)
	}
	log.Info().Str("game_id", gameID).Str("issue_id", issueID).Msg("current issue changed")
	return res, nil
}

// TransferAdmin hands the admin slot to another player of the game. Admin only.
func (a *App) TransferAdmin(ctx context.Context, gameID, playerID, targetID string) (*models.Game, error) {
	if err := requireIDs(gameID, playerID); err != nil {
		return nil, err
	}
	if err := requireID("target_player_id", targetID); err != nil {
		return nil, err
	}
	if targetID == playerID {
		return nil, apperr.Validation("player %q is already the admin", playerID)
	}
	game, err := a.repo.TransferAdmin(ctx, gameID, playerID, targetID)
	if err != nil {
		return nil, fmt.Errorf("failed to transfer admin: %w", err)
	}
	log.Info().Str("game_id", gameID).Str("from", playerID).Str("to", targetID).Msg("admin transferred")
	return game, nil
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", apperr.Validation("game name is required")
	}
	if len(name) > maxNameLength {
		return "", apperr.Validation("game name must be at most %d characters", maxNameLength)
	}
	return name, nil
}

func validateSettings(s models.GameSettings) error {
	if s.VotingSystem != models.VotingSystemFibonacci {
		return apperr.Validation("unsupported voting system %q", s.VotingSystem)
	}
	for _, p := range []models.Permission{s.WhoCanReveal, s.WhoCanManage} {
		if p != models.PermissionAll && p != models.PermissionModerator {
			return apperr.Validation("invalid permission %q", p)
		}
	}
	return nil
}

func requireID(field, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.Validation("%s is required", field)
	}
	return nil
}

func requireIDs(gameID, playerID string) error {
	if err := requireID("game_id", gameID); err != nil {
		return err
	}
	return requireID("player_id", playerID)
}
