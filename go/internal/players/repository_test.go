package players

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/db"
	"github.com/mcdev12/planningpoker/go/internal/db/dbtest"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

func insertGame(t *testing.T, q *db.Queries, id string) {
	t.Helper()
	_, err := q.InsertGame(context.Background(), models.Game{ID: id, Name: "Sprint", GameSettings: models.DefaultGameSettings()})
	require.NoError(t, err)
}

func TestConcurrentJoinsSameAvatar(t *testing.T) {
	pool := dbtest.Open(t)
	insertGame(t, db.New(pool), "game0001")
	repo := NewRepository(pool)
	fox := "fox"

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Join(context.Background(), models.Player{
				ID:     []string{"playeraaaaaa", "playerbbbbbb"}[i],
				GameID: "game0001",
				Name:   "P",
				Avatar: &fox,
			})
		}(i)
	}
	wg.Wait()

	var ok, taken int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case apperr.ReasonOf(err) == apperr.ReasonAvatarTaken:
			taken++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, taken)
}

func TestConcurrentFirstJoinsElectOneCreator(t *testing.T) {
	pool := dbtest.Open(t)
	insertGame(t, db.New(pool), "game0001")
	repo := NewRepository(pool)

	var wg sync.WaitGroup
	results := make([]*JoinResult, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			res, err := repo.Join(context.Background(), models.Player{
				ID:     "player00000" + string(rune('a'+i)),
				GameID: "game0001",
				Name:   "P",
			})
			assert.NoError(t, err)
			results[i] = res
		}(i)
	}
	wg.Wait()

	admins := 0
	var adminID string
	for _, res := range results {
		require.NotNil(t, res)
		if res.IsAdmin {
			admins++
			adminID = res.Player.ID
		}
	}
	assert.Equal(t, 1, admins)

	g, err := db.New(pool).GetGame(context.Background(), "game0001")
	require.NoError(t, err)
	assert.True(t, g.IsCreator(adminID))
}

func TestKickRules(t *testing.T) {
	pool := dbtest.Open(t)
	ctx := context.Background()
	insertGame(t, db.New(pool), "game0001")
	repo := NewRepository(pool)

	admin, err := repo.Join(ctx, models.Player{ID: "playeradmin1", GameID: "game0001", Name: "Ada"})
	require.NoError(t, err)
	require.True(t, admin.IsAdmin)
	other, err := repo.Join(ctx, models.Player{ID: "playerother1", GameID: "game0001", Name: "Bob"})
	require.NoError(t, err)

	err = repo.Kick(ctx, "game0001", other.Player.ID, admin.Player.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	err = repo.Kick(ctx, "game0001", admin.Player.ID, admin.Player.ID)
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Equal(t, apperr.ReasonSelfKick, apperr.ReasonOf(err))

	require.NoError(t, repo.Kick(ctx, "game0001", admin.Player.ID, other.Player.ID))
	_, err = db.New(pool).GetPlayer(ctx, other.Player.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	changes, err := db.New(pool).FetchUnsentChanges(ctx, 10)
	require.NoError(t, err)
	last := changes[len(changes)-1]
	assert.Equal(t, models.OpDelete, last.Op)
	assert.Equal(t, other.Player.ID, last.RowID)
	assert.Empty(t, last.Row)
}
