package players

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

// PlayersApp defines what the service layer needs from the players application
type PlayersApp interface {
	Join(ctx context.Context, req JoinRequest) (*JoinResult, error)
	UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*models.Player, error)
	SetSpectator(ctx context.Context, req SetSpectatorRequest) (*models.Player, error)
	Kick(ctx context.Context, gameID, actorID, targetID string) error
}

// Service implements the PlayerService RPC interface
type Service struct {
	app PlayersApp
}

// NewService creates a new players service
func NewService(app PlayersApp) *Service {
	return &Service{app: app}
}

var _ pokerv1.PlayerServiceHandler = (*Service)(nil)

func (s *Service) JoinGame(ctx context.Context, req *connect.Request[pokerv1.JoinGameRequest]) (*connect.Response[pokerv1.JoinGameResponse], error) {
	res, err := s.app.Join(ctx, JoinRequest{
		GameID:      req.Msg.GameID,
		Name:        req.Msg.Name,
		Avatar:      req.Msg.Avatar,
		IsSpectator: req.Msg.IsSpectator,
	})
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.JoinGameResponse{Player: res.Player, IsAdmin: res.IsAdmin}), nil
}

func (s *Service) UpdatePlayerProfile(ctx context.Context, req *connect.Request[pokerv1.UpdatePlayerProfileRequest]) (*connect.Response[pokerv1.PlayerResponse], error) {
	player, err := s.app.UpdateProfile(ctx, UpdateProfileRequest{
		GameID:   req.Msg.GameID,
		PlayerID: req.Msg.PlayerID,
		Name:     req.Msg.Name,
		Avatar:   req.Msg.Avatar,
	})
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.PlayerResponse{Player: *player}), nil
}

func (s *Service) SetSpectator(ctx context.Context, req *connect.Request[pokerv1.SetSpectatorRequest]) (*connect.Response[pokerv1.PlayerResponse], error) {
	player, err := s.app.SetSpectator(ctx, SetSpectatorRequest{
		GameID:      req.Msg.GameID,
		ActorID:     req.Msg.PlayerID,
		TargetID:    req.Msg.TargetPlayerID,
		IsSpectator: req.Msg.IsSpectator,
	})
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.PlayerResponse{Player: *player}), nil
}

func (s *Service) KickPlayer(ctx context.Context, req *connect.Request[pokerv1.KickPlayerRequest]) (*connect.Response[pokerv1.KickPlayerResponse], error) {
	if err := s.app.Kick(ctx, req.Msg.GameID, req.Msg.PlayerID, req.Msg.TargetPlayerID); err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.KickPlayerResponse{TargetPlayerID: req.Msg.TargetPlayerID}), nil
}
