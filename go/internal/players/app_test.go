package players

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

type presenceCall struct {
	playerID string
	online   bool
	at       time.Time
}

type fakeRepo struct {
	joined   []models.Player
	kicked   []string
	presence []presenceCall
	online   []models.Player
	err      error
}

func (f *fakeRepo) Join(_ context.Context, player models.Player) (*JoinResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.joined = append(f.joined, player)
	return &JoinResult{Player: player, IsAdmin: len(f.joined) == 1}, nil
}

func (f *fakeRepo) UpdateProfile(_ context.Context, req UpdateProfileRequest) (*models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Player{ID: req.PlayerID, GameID: req.GameID, Name: req.Name, Avatar: req.Avatar}, nil
}

func (f *fakeRepo) SetSpectator(_ context.Context, req SetSpectatorRequest) (*models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &models.Player{ID: req.TargetID, GameID: req.GameID, IsSpectator: req.IsSpectator}, nil
}

func (f *fakeRepo) Kick(_ context.Context, _, _, targetID string) error {
	if f.err != nil {
		return f.err
	}
	f.kicked = append(f.kicked, targetID)
	return nil
}

func (f *fakeRepo) SetPresence(_ context.Context, playerID string, online bool, at time.Time) (*models.Player, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.presence = append(f.presence, presenceCall{playerID, online, at})
	return &models.Player{ID: playerID, GameID: "g1", IsOnline: online, LastSeen: at}, nil
}

func (f *fakeRepo) ListOnline(context.Context) ([]models.Player, error) {
	return f.online, f.err
}

func newTestApp(repo *fakeRepo, clock clockwork.Clock) *App {
	app := NewApp(repo, clock)
	n := 0
	app.newID = func() string {
		n++
		return []string{"", "player000001", "player000002", "player000003"}[n]
	}
	return app
}

func TestJoinTrimsInput(t *testing.T) {
	repo := &fakeRepo{}
	app := newTestApp(repo, clockwork.NewFakeClock())
	avatar := "  fox  "

	res, err := app.Join(context.Background(), JoinRequest{GameID: "g1", Name: "  Ada ", Avatar: &avatar})
	require.NoError(t, err)
	assert.True(t, res.IsAdmin)
	assert.Equal(t, "player000001", res.Player.ID)
	assert.Equal(t, "Ada", res.Player.Name)
	require.NotNil(t, res.Player.Avatar)
	assert.Equal(t, "fox", *res.Player.Avatar)

	blank := "   "
	res, err = app.Join(context.Background(), JoinRequest{GameID: "g1", Name: "Bob", Avatar: &blank})
	require.NoError(t, err)
	assert.False(t, res.IsAdmin)
	assert.Nil(t, res.Player.Avatar)
}

func TestJoinValidation(t *testing.T) {
	repo := &fakeRepo{}
	app := newTestApp(repo, clockwork.NewFakeClock())

	_, err := app.Join(context.Background(), JoinRequest{GameID: "g1", Name: " "})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	_, err = app.Join(context.Background(), JoinRequest{Name: "Ada"})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	assert.Empty(t, repo.joined)
}

func TestJoinAvatarTakenIsDistinguishable(t *testing.T) {
	app := newTestApp(&fakeRepo{err: apperr.AvatarTaken("fox")}, clockwork.NewFakeClock())

	_, err := app.Join(context.Background(), JoinRequest{GameID: "g1", Name: "Ada"})
	assert.ErrorIs(t, err, apperr.ErrAvatarTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestSetSpectatorDefaultsToSelf(t *testing.T) {
	app := newTestApp(&fakeRepo{}, clockwork.NewFakeClock())

	p, err := app.SetSpectator(context.Background(), SetSpectatorRequest{GameID: "g1", ActorID: "p1", IsSpectator: true})
	require.NoError(t, err)
	assert.Equal(t, "p1", p.ID)
	assert.True(t, p.IsSpectator)
}

func TestKick(t *testing.T) {
	repo := &fakeRepo{}
	app := newTestApp(repo, clockwork.NewFakeClock())

	require.NoError(t, app.Kick(context.Background(), "g1", "p1", "p2"))
	assert.Equal(t, []string{"p2"}, repo.kicked)

	err := app.Kick(context.Background(), "g1", "p1", "")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPresenceMarksUseClock(t *testing.T) {
	repo := &fakeRepo{online: []models.Player{{ID: "p1"}, {ID: "p2"}}}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC))
	app := newTestApp(repo, clock)

	require.NoError(t, app.MarkOnline(context.Background(), "p1"))
	clock.Advance(time.Minute)
	require.NoError(t, app.MarkOffline(context.Background(), "p1"))

	require.Len(t, repo.presence, 2)
	assert.True(t, repo.presence[0].online)
	assert.False(t, repo.presence[1].online)
	assert.Equal(t, time.Minute, repo.presence[1].at.Sub(repo.presence[0].at))

	ids, err := app.OnlinePlayers(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"p1", "p2"}, ids)
}
