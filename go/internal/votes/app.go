package votes

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/idgen"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/scoring"
)

// VotesRepository defines what the app layer needs from the repository
type VotesRepository interface {
	Submit(ctx context.Context, vote models.Vote) (*models.Vote, error)
	List(ctx context.Context, issueID string) ([]models.Vote, error)
}

// App handles vote business logic
type App struct {
	repo  VotesRepository
	deck  scoring.Deck
	newID func() string
}

// NewApp creates a new votes App validating against deck.
func NewApp(repo VotesRepository, deck scoring.Deck) *App {
	return &App{repo: repo, deck: deck, newID: idgen.VoteID}
}

// Submit records the player's card for the issue, replacing any earlier card.
func (a *App) Submit(ctx context.Context, issueID, playerID, value string) (*models.Vote, error) {
	if strings.TrimSpace(issueID) == "" || strings.TrimSpace(playerID) == "" {
		return nil, apperr.Validation("issue_id and player_id are required")
	}
	if !a.deck.Contains(value) {
		return nil, apperr.Validation("%q is not a card in the deck", value)
	}

	vote, err := a.repo.Submit(ctx, models.Vote{
		ID:       a.newID(),
		IssueID:  issueID,
		PlayerID: playerID,
		Value:    value,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit vote: %w", err)
	}
	log.Debug().Str("issue_id", issueID).Str("player_id", playerID).Int64("version", vote.Version).Msg("vote submitted")
	return vote, nil
}

func (a *App) List(ctx context.Context, issueID string) ([]models.Vote, error) {
	if strings.TrimSpace(issueID) == "" {
		return nil, apperr.Validation("issue_id is required")
	}
	votes, err := a.repo.List(ctx, issueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	if votes == nil {
		votes = []models.Vote{}
	}
	return votes, nil
}
