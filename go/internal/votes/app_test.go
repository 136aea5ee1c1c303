package votes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/scoring"
)

// fakeRepo keeps one vote per (issue, player) the way the votes_issue_player_key constraint does.
type fakeRepo struct {
	votes map[[2]string]models.Vote
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{votes: map[[2]string]models.Vote{}}
}

func (f *fakeRepo) Submit(_ context.Context, vote models.Vote) (*models.Vote, error) {
	key := [2]string{vote.IssueID, vote.PlayerID}
	if old, ok := f.votes[key]; ok {
		old.Value = vote.Value
		old.Version++
		f.votes[key] = old
		return &old, nil
	}
	vote.Version = 1
	f.votes[key] = vote
	return &vote, nil
}

func (f *fakeRepo) List(_ context.Context, issueID string) ([]models.Vote, error) {
	var out []models.Vote
	for k, v := range f.votes {
		if k[0] == issueID {
			out = append(out, v)
		}
	}
	return out, nil
}

func TestSubmitRejectsUnknownCard(t *testing.T) {
	app := NewApp(newFakeRepo(), scoring.DefaultDeck())

	_, err := app.Submit(context.Background(), "i1", "p1", "4")
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = app.Submit(context.Background(), "", "p1", "5")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	for _, card := range []string{"0", "13", scoring.CardUnsure, scoring.CardBreak} {
		_, err := app.Submit(context.Background(), "i1", "p1", card)
		assert.NoError(t, err, card)
	}
}

func TestResubmitReplaces(t *testing.T) {
	repo := newFakeRepo()
	app := NewApp(repo, scoring.DefaultDeck())
	ctx := context.Background()

	_, err := app.Submit(ctx, "I1", "P1", "5")
	require.NoError(t, err)
	v, err := app.Submit(ctx, "I1", "P1", "8")
	require.NoError(t, err)
	assert.Equal(t, int64(2), v.Version)

	votes, err := app.List(ctx, "I1")
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "8", votes[0].Value)
}

func TestServiceMapsValidationOverTheWire(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(pokerv1.NewVoteServiceHandler(NewService(NewApp(newFakeRepo(), scoring.DefaultDeck()))))
	srv := httptest.NewServer(mux)
	defer srv.Close()
	client := pokerv1.NewClient(srv.Client(), srv.URL)

	_, err := client.SubmitVote(context.Background(), &pokerv1.SubmitVoteRequest{IssueID: "I1", PlayerID: "P1", Value: "7"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	resp, err := client.SubmitVote(context.Background(), &pokerv1.SubmitVoteRequest{IssueID: "I1", PlayerID: "P1", Value: "8"})
	require.NoError(t, err)
	assert.Equal(t, "8", resp.Vote.Value)
}
