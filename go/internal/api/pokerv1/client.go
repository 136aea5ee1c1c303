package pokerv1

import (
	"context"
	"strings"

	"connectrpc.com/connect"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
)

// Client calls every poker service over one base URL. Failures come back classified
// through apperr so callers can branch on kind and reason.
type Client struct {
	createGame         *connect.Client[CreateGameRequest, CreateGameResponse]
	getGameSnapshot    *connect.Client[GetGameSnapshotRequest, GetGameSnapshotResponse]
	updateGameSettings *connect.Client[UpdateGameSettingsRequest, GameResponse]
	revealVotes        *connect.Client[RevealVotesRequest, RevealVotesResponse]
	startNewRound      *connect.Client[StartNewRoundRequest, GameResponse]
	setCurrentIssue    *connect.Client[SetCurrentIssueRequest, SetCurrentIssueResponse]
	transferAdmin      *connect.Client[TransferAdminRequest, GameResponse]

	joinGame            *connect.Client[JoinGameRequest, JoinGameResponse]
	updatePlayerProfile *connect.Client[UpdatePlayerProfileRequest, PlayerResponse]
	setSpectator        *connect.Client[SetSpectatorRequest, PlayerResponse]
	kickPlayer          *connect.Client[KickPlayerRequest, KickPlayerResponse]

	createIssue *connect.Client[CreateIssueRequest, IssueResponse]
	updateIssue *connect.Client[UpdateIssueRequest, IssueResponse]
	deleteIssue *connect.Client[DeleteIssueRequest, DeleteIssueResponse]
	listIssues  *connect.Client[ListIssuesRequest, ListIssuesResponse]

	submitVote *connect.Client[SubmitVoteRequest, SubmitVoteResponse]
	listVotes  *connect.Client[ListVotesRequest, ListVotesResponse]

	startConfidenceVote  *connect.Client[StartConfidenceVoteRequest, GameResponse]
	submitConfidenceVote *connect.Client[SubmitConfidenceVoteRequest, SubmitConfidenceVoteResponse]
	revealConfidenceVote *connect.Client[RevealConfidenceVoteRequest, GameResponse]
	listConfidenceVotes  *connect.Client[ListConfidenceVotesRequest, ListConfidenceVotesResponse]
}

func NewClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *Client {
	baseURL = strings.TrimRight(baseURL, "/")
	o := append([]connect.ClientOption{connect.WithCodec(Codec{})}, opts...)
	return &Client{
		createGame:         connect.NewClient[CreateGameRequest, CreateGameResponse](httpClient, baseURL+GameServiceCreateGameProcedure, o...),
		getGameSnapshot:    connect.NewClient[GetGameSnapshotRequest, GetGameSnapshotResponse](httpClient, baseURL+GameServiceGetGameSnapshotProcedure, o...),
		updateGameSettings: connect.NewClient[UpdateGameSettingsRequest, GameResponse](httpClient, baseURL+GameServiceUpdateGameSettingsProcedure, o...),
		revealVotes:        connect.NewClient[RevealVotesRequest, RevealVotesResponse](httpClient, baseURL+GameServiceRevealVotesProcedure, o...),
		startNewRound:      connect.NewClient[StartNewRoundRequest, GameResponse](httpClient, baseURL+GameServiceStartNewRoundProcedure, o...),
		setCurrentIssue:    connect.NewClient[SetCurrentIssueRequest, SetCurrentIssueResponse](httpClient, baseURL+GameServiceSetCurrentIssueProcedure, o...),
		transferAdmin:      connect.NewClient[TransferAdminRequest, GameResponse](httpClient, baseURL+GameServiceTransferAdminProcedure, o...),

		joinGame:            connect.NewClient[JoinGameRequest, JoinGameResponse](httpClient, baseURL+PlayerServiceJoinGameProcedure, o...),
		updatePlayerProfile: connect.NewClient[UpdatePlayerProfileRequest, PlayerResponse](httpClient, baseURL+PlayerServiceUpdatePlayerProfileProcedure, o...),
		setSpectator:        connect.NewClient[SetSpectatorRequest, PlayerResponse](httpClient, baseURL+PlayerServiceSetSpectatorProcedure, o...),
		kickPlayer:          connect.NewClient[KickPlayerRequest, KickPlayerResponse](httpClient, baseURL+PlayerServiceKickPlayerProcedure, o...),

		createIssue: connect.NewClient[CreateIssueRequest, IssueResponse](httpClient, baseURL+IssueServiceCreateIssueProcedure, o...),
		updateIssue: connect.NewClient[UpdateIssueRequest, IssueResponse](httpClient, baseURL+IssueServiceUpdateIssueProcedure, o...),
		deleteIssue: connect.NewClient[DeleteIssueRequest, DeleteIssueResponse](httpClient, baseURL+IssueServiceDeleteIssueProcedure, o...),
		listIssues:  connect.NewClient[ListIssuesRequest, ListIssuesResponse](httpClient, baseURL+IssueServiceListIssuesProcedure, o...),

		submitVote: connect.NewClient[SubmitVoteRequest, SubmitVoteResponse](httpClient, baseURL+VoteServiceSubmitVoteProcedure, o...),
		listVotes:  connect.NewClient[ListVotesRequest, ListVotesResponse](httpClient, baseURL+VoteServiceListVotesProcedure, o...),

		startConfidenceVote:  connect.NewClient[StartConfidenceVoteRequest, GameResponse](httpClient, baseURL+ConfidenceServiceStartConfidenceVoteProcedure, o...),
		submitConfidenceVote: connect.NewClient[SubmitConfidenceVoteRequest, SubmitConfidenceVoteResponse](httpClient, baseURL+ConfidenceServiceSubmitConfidenceVoteProcedure, o...),
		revealConfidenceVote: connect.NewClient[RevealConfidenceVoteRequest, GameResponse](httpClient, baseURL+ConfidenceServiceRevealConfidenceVoteProcedure, o...),
		listConfidenceVotes:  connect.NewClient[ListConfidenceVotesRequest, ListConfidenceVotesResponse](httpClient, baseURL+ConfidenceServiceListConfidenceVotesProcedure, o...),
	}
}

func call[Req, Res any](ctx context.Context, c *connect.Client[Req, Res], req *Req) (*Res, error) {
	resp, err := c.CallUnary(ctx, connect.NewRequest(req))
	if err != nil {
		return nil, apperr.FromConnect(err)
	}
	return resp.Msg, nil
}

func (c *Client) CreateGame(ctx context.Context, req *CreateGameRequest) (*CreateGameResponse, error) {
	return call(ctx, c.createGame, req)
}

func (c *Client) GetGameSnapshot(ctx context.Context, req *GetGameSnapshotRequest) (*GetGameSnapshotResponse, error) {
	return call(ctx, c.getGameSnapshot, req)
}

func (c *Client) UpdateGameSettings(ctx context.Context, req *UpdateGameSettingsRequest) (*GameResponse, error) {
	return call(ctx, c.updateGameSettings, req)
}

func (c *Client) RevealVotes(ctx context.Context, req *RevealVotesRequest) (*RevealVotesResponse, error) {
	return call(ctx, c.revealVotes, req)
}

func (c *Client) StartNewRound(ctx context.Context, req *StartNewRoundRequest) (*GameResponse, error) {
	return call(ctx, c.startNewRound, req)
}

func (c *Client) SetCurrentIssue(ctx context.Context, req *SetCurrentIssueRequest) (*SetCurrentIssueResponse, error) {
	return call(ctx, c.setCurrentIssue, req)
}

func (c *Client) TransferAdmin(ctx context.Context, req *TransferAdminRequest) (*GameResponse, error) {
	return call(ctx, c.transferAdmin, req)
}

func (c *Client) JoinGame(ctx context.Context, req *JoinGameRequest) (*JoinGameResponse, error) {
	return call(ctx, c.joinGame, req)
}

func (c *Client) UpdatePlayerProfile(ctx context.Context, req *UpdatePlayerProfileRequest) (*PlayerResponse, error) {
	return call(ctx, c.updatePlayerProfile, req)
}

func (c *Client) SetSpectator(ctx context.Context, req *SetSpectatorRequest) (*PlayerResponse, error) {
	return call(ctx, c.setSpectator, req)
}

func (c *Client) KickPlayer(ctx context.Context, req *KickPlayerRequest) (*KickPlayerResponse, error) {
	return call(ctx, c.kickPlayer, req)
}

func (c *Client) CreateIssue(ctx context.Context, req *CreateIssueRequest) (*IssueResponse, error) {
	return call(ctx, c.createIssue, req)
}

func (c *Client) UpdateIssue(ctx context.Context, req *UpdateIssueRequest) (*IssueResponse, error) {
	return call(ctx, c.updateIssue, req)
}

func (c *Client) DeleteIssue(ctx context.Context, req *DeleteIssueRequest) (*DeleteIssueResponse, error) {
	return call(ctx, c.deleteIssue, req)
}

func (c *Client) ListIssues(ctx context.Context, req *ListIssuesRequest) (*ListIssuesResponse, error) {
	return call(ctx, c.listIssues, req)
}

func (c *Client) SubmitVote(ctx context.Context, req *SubmitVoteRequest) (*SubmitVoteResponse, error) {
	return call(ctx, c.submitVote, req)
}

func (c *Client) ListVotes(ctx context.Context, req *ListVotesRequest) (*ListVotesResponse, error) {
	return call(ctx, c.listVotes, req)
}

func (c *Client) StartConfidenceVote(ctx context.Context, req *StartConfidenceVoteRequest) (*GameResponse, error) {
	return call(ctx, c.startConfidenceVote, req)
}

func (c *Client) SubmitConfidenceVote(ctx context.Context, req *SubmitConfidenceVoteRequest) (*SubmitConfidenceVoteResponse, error) {
	return call(ctx, c.submitConfidenceVote, req)
}

func (c *Client) RevealConfidenceVote(ctx context.Context, req *RevealConfidenceVoteRequest) (*GameResponse, error) {
	return call(ctx, c.revealConfidenceVote, req)
}

func (c *Client) ListConfidenceVotes(ctx context.Context, req *ListConfidenceVotesRequest) (*ListConfidenceVotesResponse, error) {
	return call(ctx, c.listConfidenceVotes, req)
}
