package issues

import (
	"context"

	"connectrpc.com/connect"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

// IssuesApp defines what the service layer needs from the issues application
type IssuesApp interface {
	Create(ctx context.Context, req CreateIssueRequest) (*models.Issue, error)
	Update(ctx context.Context, req UpdateIssueRequest) (*models.Issue, error)
	Delete(ctx context.Context, gameID, playerID, issueID string) error
	List(ctx context.Context, gameID string) ([]models.Issue, error)
}

// Service implements the IssueService RPC interface
type Service struct {
	app IssuesApp
}

// NewService creates a new issues service
func NewService(app IssuesApp) *Service {
	return &Service{app: app}
}

var _ pokerv1.IssueServiceHandler = (*Service)(nil)

func (s *Service) CreateIssue(ctx context.Context, req *connect.Request[pokerv1.CreateIssueRequest]) (*connect.Response[pokerv1.IssueResponse], error) {
	issue, err := s.app.Create(ctx, CreateIssueRequest{
		GameID:      req.Msg.GameID,
		PlayerID:    req.Msg.PlayerID,
		Title:       req.Msg.Title,
		Description: req.Msg.Description,
	})
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.IssueResponse{Issue: *issue}), nil
}

func (s *Service) UpdateIssue(ctx context.Context, req *connect.Request[pokerv1.UpdateIssueRequest]) (*connect.Response[pokerv1.IssueResponse], error) {
	issue, err := s.app.Update(ctx, UpdateIssueRequest{
		GameID:   req.Msg.GameID,
		PlayerID: req.Msg.PlayerID,
		IssueID:  req.Msg.IssueID,
		Patch: models.IssuePatch{
			Title:            req.Msg.Title,
			Description:      req.Msg.Description,
			ClearDescription: req.Msg.ClearDescription,
			Status:           req.Msg.Status,
			SortOrder:        req.Msg.SortOrder,
		},
	})
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.IssueResponse{Issue: *issue}), nil
}

func (s *Service) DeleteIssue(ctx context.Context, req *connect.Request[pokerv1.DeleteIssueRequest]) (*connect.Response[pokerv1.DeleteIssueResponse], error) {
	if err := s.app.Delete(ctx, req.Msg.GameID, req.Msg.PlayerID, req.Msg.IssueID); err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.DeleteIssueResponse{IssueID: req.Msg.IssueID}), nil
}

func (s *Service) ListIssues(ctx context.Context, req *connect.Request[pokerv1.ListIssuesRequest]) (*connect.Response[pokerv1.ListIssuesResponse], error) {
	issues, err := s.app.List(ctx, req.Msg.GameID)
	if err != nil {
		return nil, apperr.ToConnect(err)
	}
	return connect.NewResponse(&pokerv1.ListIssuesResponse{Issues: issues}), nil
}
