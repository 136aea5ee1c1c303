package confidence

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/idgen"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/sqlutil"
)

const maxSessionNameLength = 100

// ConfidenceRepository defines what the app layer needs from the repository
type ConfidenceRepository interface {
	Start(ctx context.Context, gameID, actorID string) (*models.Game, error)
	Submit(ctx context.Context, vote models.ConfidenceVote) (*models.ConfidenceVote, error)
	Reveal(ctx context.Context, gameID, actorID string) (*models.Game, error)
	List(ctx context.Context, gameID string) ([]models.ConfidenceVote, error)
}

// App handles the confidence vote lifecycle
type App struct {
	repo  ConfidenceRepository
	newID func() string
}

func NewApp(repo ConfidenceRepository) *App {
	return &App{repo: repo, newID: idgen.VoteID}
}

// Start opens a fresh confidence session. Admin only.
func (a *App) Start(ctx context.Context, gameID, playerID string) (*models.Game, error) {
	if err := requireIDs(gameID, playerID); err != nil {
		return nil, err
	}
	g, err := a.repo.Start(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to start confidence vote: %w", err)
	}
	log.Info().Str("game_id", gameID).Msg("confidence vote started")
	return g, nil
}

// Submit records the player's 1-5 confidence, replacing any earlier value.
func (a *App) Submit(ctx context.Context, gameID, playerID string, value int, sessionName *string) (*models.ConfidenceVote, error) {
	if err := requireIDs(gameID, playerID); err != nil {
		return nil, err
	}
	if value < models.MinConfidence || value > models.MaxConfidence {
		return nil, apperr.Validation("confidence must be between %d and %d", models.MinConfidence, models.MaxConfidence)
	}
	sessionName = sqlutil.TrimPtr(sessionName)
	if sessionName != nil && len(*sessionName) > maxSessionNameLength {
		return nil, apperr.Validation("session name must be at most %d characters", maxSessionNameLength)
	}

	v, err := a.repo.Submit(ctx, models.ConfidenceVote{
		ID:          a.newID(),
		GameID:      gameID,
		PlayerID:    playerID,
		Value:       value,
		SessionName: sessionName,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit confidence vote: %w", err)
	}
	return v, nil
}

// Reveal closes the session. Admin only.
func (a *App) Reveal(ctx context.Context, gameID, playerID string) (*models.Game, error) {
	if err := requireIDs(gameID, playerID); err != nil {
		return nil, err
	}
	g, err := a.repo.Reveal(ctx, gameID, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to reveal confidence vote: %w", err)
	}
	log.Info().Str("game_id", gameID).Msg("confidence vote revealed")
	return g, nil
}

func (a *App) List(ctx context.Context, gameID string) ([]models.ConfidenceVote, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, apperr.Validation("game_id is required")
	}
	votes, err := a.repo.List(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list confidence votes: %w", err)
	}
	if votes == nil {
		votes = []models.ConfidenceVote{}
	}
	return votes, nil
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
