package issues

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

const (
	maxTitleLength       = 200
	maxDescriptionLength = 5000
)

// IssuesRepository defines what the app layer needs from the repository
type IssuesRepository interface {
	Create(ctx context.Context, actorID string, issue models.Issue) (*models.Issue, error)
	Update(ctx context.Context, req UpdateIssueRequest) (*models.Issue, error)
	Delete(ctx context.Context, gameID, actorID, issueID string) error
	List(ctx context.Context, gameID string) ([]models.Issue, error)
}

// App handles issue business logic
type App struct {
	repo  IssuesRepository
	newID func() string
}

// NewApp creates a new issues App
func NewApp(repo IssuesRepository) *App {
	return &App{repo: repo, newID: idgen.IssueID}
}

// Create adds a pending issue at the end of the game's list. Admin only.
func (a *App) Create(ctx context.Context, req CreateIssueRequest) (*models.Issue, error) {
	if err := requireIDs(req.GameID, req.PlayerID); err != nil {
		return nil, err
	}
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	desc := sqlutil.TrimPtr(req.Description)
	if err := validateDescription(desc); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	issue, err := a.repo.Create(ctx, req.PlayerID, models.Issue{
		ID:          a.newID(),
		GameID:      req.GameID,
		Title:       title,
		Description: desc,
		Status:      models.IssueStatusPending,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create issue: %w", err)
	}
	log.Info().Str("game_id", req.GameID).Str("issue_id", issue.ID).Int("sort_order", issue.SortOrder).Msg("issue created")
	return issue, nil
}

// Update edits an issue. Admin only.
func (a *App) Update(ctx context.Context, req UpdateIssueRequest) (*models.Issue, error) {
	if err := requireIDs(req.GameID, req.PlayerID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.IssueID) == "" {
		return nil, apperr.Validation("issue_id is required")
	}
	if err := a.validatePatch(&req.Patch); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}

	issue, err := a.repo.Update(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to update issue: %w", err)
	}
	log.Info().Str("game_id", req.GameID).Str("issue_id", issue.ID).Int64("version", issue.Version).Msg("issue updated")
	return issue, nil
}

// Delete removes an issue. Admin only.
func (a *App) Delete(ctx context.Context, gameID, playerID, issueID string) error {
	if err := requireIDs(gameID, playerID); err != nil {
		return err
	}
	if strings.TrimSpace(issueID) == "" {
		return apperr.Validation("issue_id is required")
	}
	if err := a.repo.Delete(ctx, gameID, playerID, issueID); err != nil {
		return fmt.Errorf("failed to delete issue: %w", err)
	}
	log.Info().Str("game_id", gameID).Str("issue_id", issueID).Msg("issue deleted")
	return nil
}

// List returns the game's issues in sort order.
func (a *App) List(ctx context.Context, gameID string) ([]models.Issue, error) {
	if strings.TrimSpace(gameID) == "" {
		return nil, apperr.Validation("game_id is required")
	}
	issues, err := a.repo.List(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list issues: %w", err)
	}
	if issues == nil {
		issues = []models.Issue{}
	}
	return issues, nil
}

func (a *App) validatePatch(p *models.IssuePatch) error {
	if p.Title != nil {
		title, err := validateTitle(*p.Title)
		if err != nil {
			return err
		}
		p.Title = &title
	}
	if p.Description != nil {
		p.Description = sqlutil.TrimPtr(p.Description)
		if p.Description == nil {
			p.ClearDescription = true
		}
		if err := validateDescription(p.Description); err != nil {
			return err
		}
	}
	if p.Status != nil && !p.Status.Valid() {
		return apperr.Validation("invalid issue status %q", *p.Status)
	}
	if p.SortOrder != nil && *p.SortOrder < 1 {
		return apperr.Validation("sort_order must be positive")
	}
	// Scores are written by reveal only.
	p.FinalScore, p.ClearFinalScore, p.Version = nil, false, nil
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", apperr.Validation("title is required")
	}
	if len(title) > maxTitleLength {
		return "", apperr.Validation("title must be at most %d characters", maxTitleLength)
	}
	return title, nil
}

func validateDescription(desc *string) error {
	if desc != nil && len(*desc) > maxDescriptionLength {
		return apperr.Validation("description must be at most %d characters", maxDescriptionLength)
	}
	return nil
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
