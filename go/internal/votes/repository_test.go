package votes

import (
	"context"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/db"
	"github.com/mcdev12/planningpoker/go/internal/db/dbtest"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

type fixture struct {
	game    models.Game
	player  models.Player
	current models.Issue
	other   models.Issue
}

func seed(t *testing.T, pool *pgxpool.Pool) fixture {
	t.Helper()
	ctx := context.Background()
	q := db.New(pool)
	g, err := q.InsertGame(ctx, models.Game{ID: "game0001", Name: "Sprint", GameSettings: models.DefaultGameSettings()})
	require.NoError(t, err)
	p, err := q.InsertPlayer(ctx, models.Player{ID: "player000001", GameID: g.ID, Name: "Ada"})
	require.NoError(t, err)
	cur, err := q.InsertIssue(ctx, models.Issue{ID: "issue0000001", GameID: g.ID, Title: "One", Status: models.IssueStatusVoting, SortOrder: 1})
	require.NoError(t, err)
	other, err := q.InsertIssue(ctx, models.Issue{ID: "issue0000002", GameID: g.ID, Title: "Two", Status: models.IssueStatusPending, SortOrder: 2})
	require.NoError(t, err)
	g, err = q.SetCurrentIssue(ctx, g.ID, &cur.ID, models.GameStatusVoting)
	require.NoError(t, err)
	return fixture{game: *g, player: *p, current: *cur, other: *other}
}

func TestSubmitUpsertsPerIssueAndPlayer(t *testing.T) {
	pool := dbtest.Open(t)
	f := seed(t, pool)
	repo := NewRepository(pool)
	ctx := context.Background()

	first, err := repo.Submit(ctx, models.Vote{ID: "vote00000001", IssueID: f.current.ID, PlayerID: f.player.ID, Value: "5"})
	require.NoError(t, err)
	second, err := repo.Submit(ctx, models.Vote{ID: "vote00000002", IssueID: f.current.ID, PlayerID: f.player.ID, Value: "8"})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Version+1, second.Version)

	votes, err := repo.List(ctx, f.current.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, "8", votes[0].Value)

	changes, err := db.New(pool).FetchUnsentChanges(ctx, 10)
	require.NoError(t, err)
	require.Len(t, changes, 2)
	assert.Equal(t, models.OpInsert, changes[0].Op)
	assert.Equal(t, models.OpUpdate, changes[1].Op)
}

func TestConcurrentDoubleSubmitLeavesOneRow(t *testing.T) {
	pool := dbtest.Open(t)
	f := seed(t, pool)
	repo := NewRepository(pool)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Submit(context.Background(), models.Vote{
				ID:       "vote0000000" + string(rune('a'+i)),
				IssueID:  f.current.ID,
				PlayerID: f.player.ID,
				Value:    "3",
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	votes, err := repo.List(context.Background(), f.current.ID)
	require.NoError(t, err)
	assert.Len(t, votes, 1)
}

func TestSubmitRejectsOutsideTheRound(t *testing.T) {
	pool := dbtest.Open(t)
	f := seed(t, pool)
	repo := NewRepository(pool)
	ctx := context.Background()

	_, err := repo.Submit(ctx, models.Vote{ID: "vote00000001", IssueID: f.other.ID, PlayerID: f.player.ID, Value: "5"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = db.New(pool).SetGameStatus(ctx, f.game.ID, models.GameStatusRevealed)
	require.NoError(t, err)
	_, err = repo.Submit(ctx, models.Vote{ID: "vote00000002", IssueID: f.current.ID, PlayerID: f.player.ID, Value: "5"})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = repo.Submit(ctx, models.Vote{ID: "vote00000003", IssueID: f.current.ID, PlayerID: "ghost0000001", Value: "5"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}
