package confidence

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

type fakeRepo struct {
	status models.ConfidenceStatus
	votes  map[string]models.ConfidenceVote
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{status: models.ConfidenceStatusIdle, votes: map[string]models.ConfidenceVote{}}
}

func (f *fakeRepo) Start(_ context.Context, gameID, actorID string) (*models.Game, error) {
	if actorID != "admin" {
		return nil, apperr.Forbidden(apperr.ReasonNotAdmin, "not admin")
	}
	f.votes = map[string]models.ConfidenceVote{}
	f.status = models.ConfidenceStatusVoting
	return &models.Game{ID: gameID, ConfidenceStatus: f.status}, nil
}

func (f *fakeRepo) Submit(_ context.Context, vote models.ConfidenceVote) (*models.ConfidenceVote, error) {
	if f.status != models.ConfidenceStatusVoting {
		return nil, apperr.Validation("no confidence vote is open")
	}
	f.votes[vote.PlayerID] = vote
	return &vote, nil
}

func (f *fakeRepo) Reveal(_ context.Context, gameID, actorID string) (*models.Game, error) {
	if actorID != "admin" {
		return nil, apperr.Forbidden(apperr.ReasonNotAdmin, "not admin")
	}
	f.status = models.ConfidenceStatusRevealed
	return &models.Game{ID: gameID, ConfidenceStatus: f.status}, nil
}

func (f *fakeRepo) List(context.Context, string) ([]models.ConfidenceVote, error) {
	out := make([]models.ConfidenceVote, 0, len(f.votes))
	for _, v := range f.votes {
		out = append(out, v)
	}
	return out, nil
}

func TestConfidenceLifecycle(t *testing.T) {
	repo := newFakeRepo()
	app := NewApp(repo)
	ctx := context.Background()

	_, err := app.Submit(ctx, "g1", "p1", 3, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = app.Start(ctx, "g1", "p1")
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	g, err := app.Start(ctx, "g1", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceStatusVoting, g.ConfidenceStatus)

	name := "  Sprint 7 "
	_, err = app.Submit(ctx, "g1", "p1", 2, &name)
	require.NoError(t, err)
	v, err := app.Submit(ctx, "g1", "p1", 4, &name)
	require.NoError(t, err)
	require.NotNil(t, v.SessionName)
	assert.Equal(t, "Sprint 7", *v.SessionName)

	votes, err := app.List(ctx, "g1")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, 4, votes[0].Value)

	g, err = app.Reveal(ctx, "g1", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ConfidenceStatusRevealed, g.ConfidenceStatus)
}

func TestConfidenceValueRange(t *testing.T) {
	app := NewApp(newFakeRepo())
	for _, v := range []int{0, 6, -1} {
		_, err := app.Submit(context.Background(), "g1", "p1", v, nil)
		assert.ErrorIs(t, err, apperr.ErrValidation, v)
	}
}
