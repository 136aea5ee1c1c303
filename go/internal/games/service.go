package games

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

// GamesApp defines what the service layer needs from the games application
type GamesApp interface {
	CreateGame(ctx context.Context, req CreateGameRequest) (*models.Game, error)
	GetSnapshot(ctx context.Context, gameID string) (*models.Snapshot, error)
	UpdateSettings(ctx context.Context, req UpdateSettingsRequest) (*models.Game, error)
	Reveal(ctx context.Context, gameID, playerID string) (*RevealResult, error)
	NewRound(ctx context.Context, gameID, playerID string) (*models.Game, error)
	SetCurrentIssue(ctx context.Context, gameID, playerID, issueID string) (*CurrentIssueResult, error)
	TransferAdmin(ctx context.Context, gameID, playerID, targetID string) (*models.Game, error)
}

// Service implements the GameService RPC interface
type Service struct {
	app GamesApp
}

// NewService creates a new games service
func NewService(app GamesApp) *Service {
	return &Service{app: app}
}

var _ pokerv1.GameServiceHandler = (*Service)(nil)

func (s *Service) CreateGame(ctx context.Context, req *connect.Request[pokerv1.CreateGameRequest]) (*connect.Response[pokerv1.CreateGameResponse], error) {
	game, err := s.app.CreateGame(ctx, CreateGameRequest{Name: req.Msg.Name, Settings: req.Msg.Settings})
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.CreateGameResponse{Game: *game}), nil
}

func (s *Service) GetGameSnapshot(ctx context.Context, req *connect.Request[pokerv1.GetGameSnapshotRequest]) (*connect.Response[pokerv1.GetGameSnapshotResponse], error) {
	snap, err := s.app.GetSnapshot(ctx, req.Msg.GameID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.GetGameSnapshotResponse{Snapshot: *snap}), nil
}

func (s *Service) UpdateGameSettings(ctx context.Context, req *connect.Request[pokerv1.UpdateGameSettingsRequest]) (*connect.Response[pokerv1.GameResponse], error) {
	game, err := s.app.UpdateSettings(ctx, UpdateSettingsRequest{
		GameID:       req.Msg.GameID,
		PlayerID:     req.Msg.PlayerID,
		Name:         req.Msg.Name,
		Settings:     req.Msg.Settings,
		HostPlayerID: req.Msg.HostPlayerID,
	})
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.GameResponse{Game: *game}), nil
}

func (s *Service) RevealVotes(ctx context.Context, req *connect.Request[pokerv1.RevealVotesRequest]) (*connect.Response[pokerv1.RevealVotesResponse], error) {
	res, err := s.app.Reveal(ctx, req.Msg.GameID, req.Msg.PlayerID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.RevealVotesResponse{Game: res.Game, Issue: res.Issue}), nil
}

func (s *Service) StartNewRound(ctx context.Context, req *connect.Request[pokerv1.StartNewRoundRequest]) (*connect.Response[pokerv1.GameResponse], error) {
	game, err := s.app.NewRound(ctx, req.Msg.GameID, req.Msg.PlayerID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.GameResponse{Game: *game}), nil
}

func (s *Service) SetCurrentIssue(ctx context.Context, req *connect.Request[pokerv1.SetCurrentIssueRequest]) (*connect.Response[pokerv1.SetCurrentIssueResponse], error) {
	res, err := s.app.SetCurrentIssue(ctx, req.Msg.GameID, req.Msg.PlayerID, req.Msg.IssueID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.SetCurrentIssueResponse{Game: res.Game, Issue: res.Issue}), nil
}

func (s *Service) TransferAdmin(ctx context.Context, req *connect.Request[pokerv1.TransferAdminRequest]) (*connect.Response[pokerv1.GameResponse], error) {
	game, err := s.app.TransferAdmin(ctx, req.Msg.GameID, req.Msg.PlayerID, req.Msg.TargetPlayerID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.GameResponse{Game: *game}), nil
}
