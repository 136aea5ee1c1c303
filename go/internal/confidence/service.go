package confidence

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

// ConfidenceApp defines what the service layer needs from the confidence application
type ConfidenceApp interface {
	Start(ctx context.Context, gameID, playerID string) (*models.Game, error)
	Submit(ctx context.Context, gameID, playerID string, value int, sessionName *string) (*models.ConfidenceVote, error)
	Reveal(ctx context.Context, gameID, playerID string) (*models.Game, error)
	List(ctx context.Context, gameID string) ([]models.ConfidenceVote, error)
}

// Service implements the ConfidenceService RPC interface
type Service struct {
	app ConfidenceApp
}

func NewService(app ConfidenceApp) *Service {
	return &Service{app: app}
}

var _ pokerv1.ConfidenceServiceHandler = (*Service)(nil)

func (s *Service) StartConfidenceVote(ctx context.Context, req *connect.Request[pokerv1.StartConfidenceVoteRequest]) (*connect.Response[pokerv1.GameResponse], error) {
	g, err := s.app.Start(ctx, req.Msg.GameID, req.Msg.PlayerID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.GameResponse{Game: *g}), nil
}

func (s *Service) SubmitConfidenceVote(ctx context.Context, req *connect.Request[pokerv1.SubmitConfidenceVoteRequest]) (*connect.Response[pokerv1.SubmitConfidenceVoteResponse], error) {
	v, err := s.app.Submit(ctx, req.Msg.GameID, req.Msg.PlayerID, req.Msg.Value, req.Msg.SessionName)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.SubmitConfidenceVoteResponse{Vote: *v}), nil
}

func (s *Service) RevealConfidenceVote(ctx context.Context, req *connect.Request[pokerv1.RevealConfidenceVoteRequest]) (*connect.Response[pokerv1.GameResponse], error) {
	g, err := s.app.Reveal(ctx, req.Msg.GameID, req.Msg.PlayerID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.GameResponse{Game: *g}), nil
}

func (s *Service) ListConfidenceVotes(ctx context.Context, req *connect.Request[pokerv1.ListConfidenceVotesRequest]) (*connect.Response[pokerv1.ListConfidenceVotesResponse], error) {
	votes, err := s.app.List(ctx, req.Msg.GameID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.ListConfidenceVotesResponse{Votes: votes}), nil
}
