package pokerv1

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

type stubPlayers struct {
	PlayerServiceHandler
}

func (stubPlayers) JoinGame(_ context.Context, req *connect.Request[JoinGameRequest]) (*connect.Response[JoinGameResponse], error) {
	if req.Msg.Avatar != nil && *req.Msg.Avatar == "fox" {
		return nil, apperr.ToConnect(apperr.AvatarTaken("fox"))
	}
	return connect.NewResponse(&JoinGameResponse{
		Player:  models.Player{ID: "p1", GameID: req.Msg.GameID, Name: req.Msg.Name},
		IsAdmin: true,
	}), nil
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	mux := http.NewServeMux()
	mux.Handle(NewPlayerServiceHandler(stubPlayers{}))
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), srv.URL)
}

func TestJoinGameRoundTrip(t *testing.T) {
	client := newTestClient(t)

	resp, err := client.JoinGame(context.Background(), &JoinGameRequest{GameID: "g1", Name: "Ada"})
	require.NoError(t, err)
	assert.Equal(t, "p1", resp.Player.ID)
	assert.Equal(t, "g1", resp.Player.GameID)
	assert.True(t, resp.IsAdmin)
}

func TestErrorReasonSurvivesWire(t *testing.T) {
	client := newTestClient(t)
	fox := "fox"

	_, err := client.JoinGame(context.Background(), &JoinGameRequest{GameID: "g1", Name: "Ada", Avatar: &fox})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrAvatarTaken)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUnknownProcedureIsNotFound(t *testing.T) {
	mux := http.NewServeMux()
	mux.Handle(NewPlayerServiceHandler(stubPlayers{}))
	srv := httptest.NewServer(mux)
	defer srv.Close()

	resp, err := srv.Client().Post(srv.URL+"/"+PlayerServiceName+"/Nope", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
