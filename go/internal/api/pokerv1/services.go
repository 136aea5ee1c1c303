package pokerv1

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

const (
	GameServiceName       = "poker.v1.GameService"
	PlayerServiceName     = "poker.v1.PlayerService"
	IssueServiceName      = "poker.v1.IssueService"
	VoteServiceName       = "poker.v1.VoteService"
	ConfidenceServiceName = "poker.v1.ConfidenceService"
)

const (
	GameServiceCreateGameProcedure         = "/" + GameServiceName + "/CreateGame"
	GameServiceGetGameSnapshotProcedure    = "/" + GameServiceName + "/GetGameSnapshot"
	GameServiceUpdateGameSettingsProcedure = "/" + GameServiceName + "/UpdateGameSettings"
	GameServiceRevealVotesProcedure        = "/" + GameServiceName + "/RevealVotes"
	GameServiceStartNewRoundProcedure      = "/" + GameServiceName + "/StartNewRound"
	GameServiceSetCurrentIssueProcedure    = "/" + GameServiceName + "/SetCurrentIssue"
	GameServiceTransferAdminProcedure      = "/" + GameServiceName + "/TransferAdmin"

	PlayerServiceJoinGameProcedure            = "/" + PlayerServiceName + "/JoinGame"
	PlayerServiceUpdatePlayerProfileProcedure = "/" + PlayerServiceName + "/UpdatePlayerProfile"
	PlayerServiceSetSpectatorProcedure        = "/" + PlayerServiceName + "/SetSpectator"
	PlayerServiceKickPlayerProcedure          = "/" + PlayerServiceName + "/KickPlayer"

	IssueServiceCreateIssueProcedure = "/" + IssueServiceName + "/CreateIssue"
	IssueServiceUpdateIssueProcedure = "/" + IssueServiceName + "/UpdateIssue"
	IssueServiceDeleteIssueProcedure = "/" + IssueServiceName + "/DeleteIssue"
	IssueServiceListIssuesProcedure  = "/" + IssueServiceName + "/ListIssues"

	VoteServiceSubmitVoteProcedure = "/" + VoteServiceName + "/SubmitVote"
	VoteServiceListVotesProcedure  = "/" + VoteServiceName + "/ListVotes"

	ConfidenceServiceStartConfidenceVoteProcedure  = "/" + ConfidenceServiceName + "/StartConfidenceVote"
	ConfidenceServiceSubmitConfidenceVoteProcedure = "/" + ConfidenceServiceName + "/SubmitConfidenceVote"
	ConfidenceServiceRevealConfidenceVoteProcedure = "/" + ConfidenceServiceName + "/RevealConfidenceVote"
	ConfidenceServiceListConfidenceVotesProcedure  = "/" + ConfidenceServiceName + "/ListConfidenceVotes"
)

type GameServiceHandler interface {
	CreateGame(context.Context, *connect.Request[CreateGameRequest]) (*connect.Response[CreateGameResponse], error)
	GetGameSnapshot(context.Context, *connect.Request[GetGameSnapshotRequest]) (*connect.Response[GetGameSnapshotResponse], error)
	UpdateGameSettings(context.Context, *connect.Request[UpdateGameSettingsRequest]) (*connect.Response[GameResponse], error)
	RevealVotes(context.Context, *connect.Request[RevealVotesRequest]) (*connect.Response[RevealVotesResponse], error)
	StartNewRound(context.Context, *connect.Request[StartNewRoundRequest]) (*connect.Response[GameResponse], error)
	SetCurrentIssue(context.Context, *connect.Request[SetCurrentIssueRequest]) (*connect.Response[SetCurrentIssueResponse], error)
	TransferAdmin(context.Context, *connect.Request[TransferAdminRequest]) (*connect.Response[GameResponse], error)
}

type PlayerServiceHandler interface {
	JoinGame(context.Context, *connect.Request[JoinGameRequest]) (*connect.Response[JoinGameResponse], error)
	UpdatePlayerProfile(context.Context, *connect.Request[UpdatePlayerProfileRequest]) (*connect.Response[PlayerResponse], error)
	SetSpectator(context.Context, *connect.Request[SetSpectatorRequest]) (*connect.Response[PlayerResponse], error)
	KickPlayer(context.Context, *connect.Request[KickPlayerRequest]) (*connect.Response[KickPlayerResponse], error)
}

type IssueServiceHandler interface {
	CreateIssue(context.Context, *connect.Request[CreateIssueRequest]) (*connect.Response[IssueResponse], error)
	UpdateIssue(context.Context, *connect.Request[UpdateIssueRequest]) (*connect.Response[IssueResponse], error)
	DeleteIssue(context.Context, *connect.Request[DeleteIssueRequest]) (*connect.Response[DeleteIssueResponse], error)
	ListIssues(context.Context, *connect.Request[ListIssuesRequest]) (*connect.Response[ListIssuesResponse], error)
}

type VoteServiceHandler interface {
	SubmitVote(context.Context, *connect.Request[SubmitVoteRequest]) (*connect.Response[SubmitVoteResponse], error)
	ListVotes(context.Context, *connect.Request[ListVotesRequest]) (*connect.Response[ListVotesResponse], error)
}

type ConfidenceServiceHandler interface {
	StartConfidenceVote(context.Context, *connect.Request[StartConfidenceVoteRequest]) (*connect.Response[GameResponse], error)
	SubmitConfidenceVote(context.Context, *connect.Request[SubmitConfidenceVoteRequest]) (*connect.Response[SubmitConfidenceVoteResponse], error)
	RevealConfidenceVote(context.Context, *connect.Request[RevealConfidenceVoteRequest]) (*connect.Response[GameResponse], error)
	ListConfidenceVotes(context.Context, *connect.Request[ListConfidenceVotesRequest]) (*connect.Response[ListConfidenceVotesResponse], error)
}

func handlerOptions(opts []connect.HandlerOption) []connect.HandlerOption {
	return append([]connect.HandlerOption{connect.WithCodec(Codec{})}, opts...)
}

// router dispatches on the full procedure path under one service prefix.
func router(service string, handlers map[string]http.Handler) (string, http.Handler) {
	return "/" + service + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := handlers[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

// NewGameServiceHandler builds an HTTP handler from the service implementation. It returns the
// path on which to mount the handler and the handler itself.
func NewGameServiceHandler(svc GameServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return router(GameServiceName, map[string]http.Handler{
		GameServiceCreateGameProcedure:         connect.NewUnaryHandler(GameServiceCreateGameProcedure, svc.CreateGame, o...),
		GameServiceGetGameSnapshotProcedure:    connect.NewUnaryHandler(GameServiceGetGameSnapshotProcedure, svc.GetGameSnapshot, o...),
		GameServiceUpdateGameSettingsProcedure: connect.NewUnaryHandler(GameServiceUpdateGameSettingsProcedure, svc.UpdateGameSettings, o...),
		GameServiceRevealVotesProcedure:        connect.NewUnaryHandler(GameServiceRevealVotesProcedure, svc.RevealVotes, o...),
		GameServiceStartNewRoundProcedure:      connect.NewUnaryHandler(GameServiceStartNewRoundProcedure, svc.StartNewRound, o...),
		GameServiceSetCurrentIssueProcedure:    connect.NewUnaryHandler(GameServiceSetCurrentIssueProcedure, svc.SetCurrentIssue, o...),
		GameServiceTransferAdminProcedure:      connect.NewUnaryHandler(GameServiceTransferAdminProcedure, svc.TransferAdmin, o...),
	})
}

func NewPlayerServiceHandler(svc PlayerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return router(PlayerServiceName, map[string]http.Handler{
		PlayerServiceJoinGameProcedure:            connect.NewUnaryHandler(PlayerServiceJoinGameProcedure, svc.JoinGame, o...),
		PlayerServiceUpdatePlayerProfileProcedure: connect.NewUnaryHandler(PlayerServiceUpdatePlayerProfileProcedure, svc.UpdatePlayerProfile, o...),
		PlayerServiceSetSpectatorProcedure:        connect.NewUnaryHandler(PlayerServiceSetSpectatorProcedure, svc.SetSpectator, o...),
		PlayerServiceKickPlayerProcedure:          connect.NewUnaryHandler(PlayerServiceKickPlayerProcedure, svc.KickPlayer, o...),
	})
}

func NewIssueServiceHandler(svc IssueServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return router(IssueServiceName, map[string]http.Handler{
		IssueServiceCreateIssueProcedure: connect.NewUnaryHandler(IssueServiceCreateIssueProcedure, svc.CreateIssue, o...),
		IssueServiceUpdateIssueProcedure: connect.NewUnaryHandler(IssueServiceUpdateIssueProcedure, svc.UpdateIssue, o...),
		IssueServiceDeleteIssueProcedure: connect.NewUnaryHandler(IssueServiceDeleteIssueProcedure, svc.DeleteIssue, o...),
		IssueServiceListIssuesProcedure:  connect.NewUnaryHandler(IssueServiceListIssuesProcedure, svc.ListIssues, o...),
	})
}

func NewVoteServiceHandler(svc VoteServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return router(VoteServiceName, map[string]http.Handler{
		VoteServiceSubmitVoteProcedure: connect.NewUnaryHandler(VoteServiceSubmitVoteProcedure, svc.SubmitVote, o...),
		VoteServiceListVotesProcedure:  connect.NewUnaryHandler(VoteServiceListVotesProcedure, svc.ListVotes, o...),
	})
}

func NewConfidenceServiceHandler(svc ConfidenceServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	o := handlerOptions(opts)
	return router(ConfidenceServiceName, map[string]http.Handler{
		ConfidenceServiceStartConfidenceVoteProcedure:  connect.NewUnaryHandler(ConfidenceServiceStartConfidenceVoteProcedure, svc.StartConfidenceVote, o...),
		ConfidenceServiceSubmitConfidenceVoteProcedure: connect.NewUnaryHandler(ConfidenceServiceSubmitConfidenceVoteProcedure, svc.SubmitConfidenceVote, o...),
		ConfidenceServiceRevealConfidenceVoteProcedure: connect.NewUnaryHandler(ConfidenceServiceRevealConfidenceVoteProcedure, svc.RevealConfidenceVote, o...),
		ConfidenceServiceListConfidenceVotesProcedure:  connect.NewUnaryHandler(ConfidenceServiceListConfidenceVotesProcedure, svc.ListConfidenceVotes, o...),
	})
}
