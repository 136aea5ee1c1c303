package votes

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

// VotesApp defines what the service layer needs from the votes application
type VotesApp interface {
	Submit(ctx context.Context, issueID, playerID, value string) (*models.Vote, error)
	List(ctx context.Context, issueID string) ([]models.Vote, error)
}

// Service implements the VoteService RPC interface
type Service struct {
	app VotesApp
}

func NewService(app VotesApp) *Service {
	return &Service{app: app}
}

var _ pokerv1.VoteServiceHandler = (*Service)(nil)

func (s *Service) SubmitVote(ctx context.Context, req *connect.Request[pokerv1.SubmitVoteRequest]) (*connect.Response[pokerv1.SubmitVoteResponse], error) {
	vote, err := s.app.Submit(ctx, req.Msg.IssueID, req.Msg.PlayerID, req.Msg.Value)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.SubmitVoteResponse{Vote: *vote}), nil
}

func (s *Service) ListVotes(ctx context.Context, req *connect.Request[pokerv1.ListVotesRequest]) (*connect.Response[pokerv1.ListVotesResponse], error) {
	votes, err := s.app.List(ctx, req.Msg.IssueID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.ListVotesResponse{Votes: votes}), nil
}
