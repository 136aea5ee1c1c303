package games

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

type fakeRepo struct {
	created  []models.Game
	revealed []string
	err      error
}

func (f *fakeRepo) CreateGame(_ context.Context, game models.Game) (*models.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, game)
	game.Status = models.GameStatusVoting
	game.Version = 1
	return &game, nil
}

func (f *fakeRepo) GetSnapshot(_ context.Context, gameID string) (*models.Snapshot, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Snapshot{Game: models.Game{ID: gameID}}, nil
}

func (f *fakeRepo) UpdateSettings(_ context.Context, req UpdateSettingsRequest) (*models.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Game{ID: req.GameID, Name: req.Name, GameSettings: req.Settings}, nil
}

func (f *fakeRepo) Reveal(_ context.Context, gameID, _ string) (*RevealResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.revealed = append(f.revealed, gameID)
	score := 6.0
	return &RevealResult{
		Game:  models.Game{ID: gameID, Status: models.GameStatusRevealed},
		Issue: &models.Issue{ID: "i1", Status: models.IssueStatusVoted, FinalScore: &score},
	}, nil
}

func (f *fakeRepo) NewRound(_ context.Context, gameID, _ string) (*models.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Game{ID: gameID, Status: models.GameStatusVoting}, nil
}

func (f *fakeRepo) SetCurrentIssue(_ context.Context, gameID, _, issueID string) (*CurrentIssueResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &CurrentIssueResult{
		Game:  models.Game{ID: gameID, CurrentIssueID: &issueID},
		Issue: models.Issue{ID: issueID, Status: models.IssueStatusVoting},
	}, nil
}

func (f *fakeRepo) TransferAdmin(_ context.Context, gameID, _, targetID string) (*models.Game, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Game{ID: gameID, CreatorID: &targetID}, nil
}

func newTestApp(repo *fakeRepo) *App {
	app := NewApp(repo, models.DefaultGameSettings())
	app.newID = func() string { return "abcd1234" }
	return app
}

func TestCreateGame(t *testing.T) {
	repo := &fakeRepo{}
	app := newTestApp(repo)

	game, err := app.CreateGame(context.Background(), CreateGameRequest{Name: "  Sprint 42  "})
	require.NoError(t, err)
	assert.Equal(t, "abcd1234", game.ID)
	assert.Equal(t, "Sprint 42", game.Name)
	assert.Equal(t, models.DefaultGameSettings(), game.GameSettings)
	require.Len(t, repo.created, 1)
	assert.Nil(t, repo.created[0].CreatorID)
}

func TestCreateGameValidation(t *testing.T) {
	app := newTestApp(&fakeRepo{})

	_, err := app.CreateGame(context.Background(), CreateGameRequest{Name: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	bad := models.DefaultGameSettings()
	bad.VotingSystem = "tshirt"
	_, err = app.CreateGame(context.Background(), CreateGameRequest{Name: "x", Settings: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	bad = models.DefaultGameSettings()
	bad.WhoCanReveal = "everyone"
	_, err = app.CreateGame(context.Background(), CreateGameRequest{Name: "x", Settings: &bad})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAdminOperationsRequireIDs(t *testing.T) {
	repo := &fakeRepo{}
	app := newTestApp(repo)
	ctx := context.Background()

	_, err := app.Reveal(ctx, "g1", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = app.NewRound(ctx, "", "p1")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = app.SetCurrentIssue(ctx, "g1", "p1", " ")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = app.TransferAdmin(ctx, "g1", "p1", "p1")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, repo.revealed)
}

func TestRepositoryErrorsKeepTheirKind(t *testing.T) {
	app := newTestApp(&fakeRepo{err: apperr.Forbidden(apperr.ReasonNotAdmin, "not admin")})

	_, err := app.Reveal(context.Background(), "g1", "p2")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
	assert.Equal(t, apperr.ReasonNotAdmin, apperr.ReasonOf(err))
	assert.Contains(t, err.Error(), "failed to reveal votes")
}

func TestReveal(t *testing.T) {
	repo := &fakeRepo{}
	app := newTestApp(repo)

	res, err := app.Reveal(context.Background(), "g1", "p1")
	require.NoError(t, err)
	assert.True(t, res.Game.IsRevealed())
	require.NotNil(t, res.Issue)
	assert.True(t, res.Issue.IsEstimated())
	assert.Equal(t, []string{"g1"}, repo.revealed)
}
