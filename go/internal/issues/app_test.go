package issues

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

type fakeRepo struct {
	issues  map[string]models.Issue
	deleted []string
	updates []UpdateIssueRequest
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{issues: map[string]models.Issue{}}
}

func (f *fakeRepo) Create(_ context.Context, _ string, issue models.Issue) (*models.Issue, error) {
	issue.SortOrder = len(f.issues) + 1
	f.issues[issue.ID] = issue
	return &issue, nil
}

func (f *fakeRepo) Update(_ context.Context, req UpdateIssueRequest) (*models.Issue, error) {
	f.updates = append(f.updates, req)
	current, ok := f.issues[req.IssueID]
	if !ok {
		return nil, apperr.NotFound("issue", req.IssueID)
	}
	next := req.Patch.Apply(current)
	f.issues[next.ID] = next
	return &next, nil
}

func (f *fakeRepo) Delete(_ context.Context, _, _, issueID string) error {
	f.deleted = append(f.deleted, issueID)
	return nil
}

func (f *fakeRepo) List(context.Context, string) ([]models.Issue, error) {
	return nil, nil
}

func newTestApp(repo *fakeRepo) *App {
	app := NewApp(repo)
	n := 0
	app.newID = func() string {
		n++
		return "issue" + string(rune('0'+n)) + "000000"
	}
	return app
}

func TestCreateIssue(t *testing.T) {
	repo := newFakeRepo()
	app := newTestApp(repo)
	desc := "  details "

	issue, err := app.Create(context.Background(), CreateIssueRequest{GameID: "g1", PlayerID: "p1", Title: " Login ", Description: &desc})
	require.NoError(t, err)
	assert.Equal(t, "Login", issue.Title)
	require.NotNil(t, issue.Description)
	assert.Equal(t, "details", *issue.Description)
	assert.Equal(t, models.IssueStatusPending, issue.Status)
	assert.Equal(t, 1, issue.SortOrder)

	_, err = app.Create(context.Background(), CreateIssueRequest{GameID: "g1", PlayerID: "p1", Title: "   "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestUpdateIssuePatch(t *testing.T) {
	repo := newFakeRepo()
	app := newTestApp(repo)
	created, err := app.Create(context.Background(), CreateIssueRequest{GameID: "g1", PlayerID: "p1", Title: "Login"})
	require.NoError(t, err)

	title := " Signup "
	blank := " "
	score := 99.0
	updated, err := app.Update(context.Background(), UpdateIssueRequest{
		GameID:   "g1",
		PlayerID: "p1",
		IssueID:  created.ID,
		Patch:    models.IssuePatch{Title: &title, Description: &blank, FinalScore: &score},
	})
	require.NoError(t, err)
	assert.Equal(t, "Signup", updated.Title)
	assert.Nil(t, updated.Description)
	assert.Nil(t, updated.FinalScore)
	assert.True(t, repo.updates[0].Patch.ClearDescription)
}

func TestUpdateIssueValidation(t *testing.T) {
	app := newTestApp(newFakeRepo())
	ctx := context.Background()

	bad := models.IssueStatus("done")
	_, err := app.Update(ctx, UpdateIssueRequest{GameID: "g1", PlayerID: "p1", IssueID: "i1", Patch: models.IssuePatch{Status: &bad}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	zero := 0
	_, err = app.Update(ctx, UpdateIssueRequest{GameID: "g1", PlayerID: "p1", IssueID: "i1", Patch: models.IssuePatch{SortOrder: &zero}})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	empty := ""
	_, err = app.Update(ctx, UpdateIssueRequest{GameID: "g1", PlayerID: "p1", IssueID: "i1", Patch: models.IssuePatch{Title: &empty}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestDeleteAndListIssue(t *testing.T) {
	repo := newFakeRepo()
	app := newTestApp(repo)

	require.NoError(t, app.Delete(context.Background(), "g1", "p1", "i1"))
	assert.Equal(t, []string{"i1"}, repo.deleted)
	assert.ErrorIs(t, app.Delete(context.Background(), "g1", "p1", ""), apperr.ErrValidation)

	issues, err := app.List(context.Background(), "g1")
	require.NoError(t, err)
	assert.NotNil(t, issues)
	assert.Empty(t, issues)
}
