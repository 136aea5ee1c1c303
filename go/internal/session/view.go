package session

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/api/pokerv1"
	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/feed"
	"github.com/mcdev12/planningpoker/go/internal/identity"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

// API is the part of the RPC client a view calls. *pokerv1.Client satisfies it.
type API interface {
	GetGameSnapshot(ctx context.Context, req *pokerv1.GetGameSnapshotRequest) (*pokerv1.GetGameSnapshotResponse, error)
	UpdateGameSettings(ctx context.Context, req *pokerv1.UpdateGameSettingsRequest) (*pokerv1.GameResponse, error)
	RevealVotes(ctx context.Context, req *pokerv1.RevealVotesRequest) (*pokerv1.RevealVotesResponse, error)
	StartNewRound(ctx context.Context, req *pokerv1.StartNewRoundRequest) (*pokerv1.GameResponse, error)
	SetCurrentIssue(ctx context.Context, req *pokerv1.SetCurrentIssueRequest) (*pokerv1.SetCurrentIssueResponse, error)
	TransferAdmin(ctx context.Context, req *pokerv1.TransferAdminRequest) (*pokerv1.GameResponse, error)
	JoinGame(ctx context.Context, req *pokerv1.JoinGameRequest) (*pokerv1.JoinGameResponse, error)
	UpdatePlayerProfile(ctx context.Context, req *pokerv1.UpdatePlayerProfileRequest) (*pokerv1.PlayerResponse, error)
	SetSpectator(ctx context.Context, req *pokerv1.SetSpectatorRequest) (*pokerv1.PlayerResponse, error)
	KickPlayer(ctx context.Context, req *pokerv1.KickPlayerRequest) (*pokerv1.KickPlayerResponse, error)
	CreateIssue(ctx context.Context, req *pokerv1.CreateIssueRequest) (*pokerv1.IssueResponse, error)
	UpdateIssue(ctx context.Context, req *pokerv1.UpdateIssueRequest) (*pokerv1.IssueResponse, error)
	DeleteIssue(ctx context.Context, req *pokerv1.DeleteIssueRequest) (*pokerv1.DeleteIssueResponse, error)
	SubmitVote(ctx context.Context, req *pokerv1.SubmitVoteRequest) (*pokerv1.SubmitVoteResponse, error)
	StartConfidenceVote(ctx context.Context, req *pokerv1.StartConfidenceVoteRequest) (*pokerv1.GameResponse, error)
	SubmitConfidenceVote(ctx context.Context, req *pokerv1.SubmitConfidenceVoteRequest) (*pokerv1.SubmitConfidenceVoteResponse, error)
	RevealConfidenceVote(ctx context.Context, req *pokerv1.RevealConfidenceVoteRequest) (*pokerv1.GameResponse, error)
}

var _ API = (*pokerv1.Client)(nil)

// snapshotFetcher adapts the RPC client to Fetcher.
type snapshotFetcher struct {
	api API
}

func (f snapshotFetcher) Snapshot(ctx context.Context, gameID string) (*models.Snapshot, error) {
	resp, err := f.api.GetGameSnapshot(ctx, &pokerv1.GetGameSnapshotRequest{GameID: gameID})
	if err != nil {
		return nil, err
	}
	return &resp.Snapshot, nil
}

type autoRevealKey struct {
	issueID string
	version int64
}

// View is everything one mounted game screen needs: the local projection, its sync loop,
// the local identity and the client side of every mutating operation.
type View struct {
	api        API
	store      *Store
	orch       *Orchestrator
	identities identity.Store
	pending    *Pending

	mu         sync.Mutex
	autoReveal autoRevealKey
	// auto-reveal checks started off the feed goroutine
	background sync.WaitGroup
}

func NewView(api API, subscriber feed.Subscriber, identities identity.Store, clock clockwork.Clock, cfg OrchestratorConfig) *View {
	if identities == nil {
		identities = identity.NewMemory()
	}
	store := NewStore()
	v := &View{
		api:        api,
		store:      store,
		orch:       NewOrchestrator(store, snapshotFetcher{api: api}, subscriber, identities, clock, cfg),
		identities: identities,
		pending:    NewPending(),
	}
	v.orch.SetOnChange(v.onChange)
	return v
}

func (v *View) Store() *Store                { return v.store }
func (v *View) Orchestrator() *Orchestrator { return v.orch }
func (v *View) Pending() *Pending           { return v.pending }

func (v *View) Mount(ctx context.Context, gameID string) error {
	return v.orch.Mount(ctx, gameID)
}

// Unmount detaches the view and waits for background auto-reveal checks to finish.
func (v *View) Unmount() {
	v.orch.Unmount()
	v.background.Wait()
}

// PlayerID is the local player, or "" before joining.
func (v *View) PlayerID() string {
	id, _ := v.orch.Identity()
	return id
}

// IsAdmin reports whether the local player holds the admin slot.
func (v *View) IsAdmin() bool {
	return v.store.IsAdmin(v.PlayerID())
}

func (v *View) active() (string, string, error) {
	id, state := v.orch.Identity()
	gameID := v.orch.GameID()
	switch {
	case v.orch.Phase() != PhaseSubscribed:
		return "", "", apperr.Validation("view is not attached")
	case state == IdentityRemoved:
		return "", "", apperr.NotFound("player", id)
	case state != IdentityActive || id == "":
		return "", "", apperr.Validation("join the game first")
	}
	return gameID, id, nil
}

func (v *View) admin() (string, string, error) {
	gameID, id, err := v.active()
	if err != nil {
		return "", "", err
	}
	if !v.store.IsAdmin(id) {
		return "", "", apperr.Forbidden(apperr.ReasonNotAdmin, "only the game admin can do this")
	}
	return gameID, id, nil
}

// Join creates a player for the local client and remembers it.
func (v *View) Join(ctx context.Context, name string, avatar *string, spectator bool) (*models.Player, error) {
	gameID := v.orch.GameID()
	if v.orch.Phase() != PhaseSubscribed {
		return nil, apperr.Validation("view is not attached")
	}
	if _, state := v.orch.Identity(); state == IdentityRemoved {
		return nil, apperr.Forbidden(apperr.ReasonNone, "removed from this game")
	}
	resp, err := v.api.JoinGame(ctx, &pokerv1.JoinGameRequest{GameID: gameID, Name: name, Avatar: avatar, IsSpectator: spectator})
	if err != nil {
		return nil, err
	}
	p := resp.Player
	if err := v.identities.Save(ctx, gameID, p.ID); err != nil {
		log.Warn().Err(err).Str("game_id", gameID).Msg("failed to persist local identity")
	}
	v.orch.Mutate(func(s *Store) {
		if cur, ok := s.Player(p.ID); !ok || cur.Version < p.Version {
			s.AddOrReplacePlayer(p)
		}
	})
	v.orch.SetLocalPlayer(p.ID)
	return &p, nil
}

// Leave forgets the local identity for this game.
func (v *View) Leave(ctx context.Context) error {
	gameID := v.orch.GameID()
	if err := v.identities.Clear(ctx, gameID); err != nil {
		return fmt.Errorf("failed to clear local identity: %w", err)
	}
	v.orch.ForgetLocalPlayer()
	return nil
}

// SelectCard sets the local vote immediately and submits it, rolling back on failure.
func (v *View) SelectCard(ctx context.Context, value string) (*models.Vote, error) {
	gameID, me, err := v.active()
	if err != nil {
		return nil, err
	}
	cur := v.store.CurrentIssue()
	if cur == nil {
		return nil, apperr.Validation("no issue is being estimated")
	}
	if v.store.IsRevealed() {
		return nil, apperr.Validation("votes are already revealed")
	}

	tentative := models.Vote{IssueID: cur.ID, PlayerID: me, Value: value}
	token, err := v.pending.Apply(KindVote, func() func() {
		prev, hadPrev := v.store.Vote(cur.ID, me)
		if hadPrev {
			tentative.ID = prev.ID
			tentative.Version = prev.Version
		}
		v.orch.Mutate(func(s *Store) { s.UpsertVote(tentative) })
		return func() {
			v.orch.Mutate(func(s *Store) {
				now, ok := s.Vote(cur.ID, me)
				if !ok || now != tentative {
					// a newer change landed meanwhile
					return
				}
				if hadPrev {
					s.UpsertVote(prev)
				} else {
					s.RemoveVote(cur.ID, me)
				}
			})
		}
	})
	if err != nil {
		return nil, err
	}

	resp, err := v.api.SubmitVote(ctx, &pokerv1.SubmitVoteRequest{IssueID: cur.ID, PlayerID: me, Value: value})
	if err != nil {
		v.pending.Rollback(token)
		log.Debug().Err(err).Str("game_id", gameID).Str("issue_id", cur.ID).Msg("vote rolled back")
		return nil, err
	}
	confirmed := resp.Vote
	v.orch.Mutate(func(s *Store) {
		if now, ok := s.Vote(confirmed.IssueID, me); !ok || now.ID != confirmed.ID || now.Version <= confirmed.Version {
			s.UpsertVote(confirmed)
		}
	})
	v.pending.Confirm(token)

	v.MaybeAutoReveal(ctx)
	return &confirmed, nil
}

// Reveal shows the votes of the current issue and finalizes its score.
func (v *View) Reveal(ctx context.Context) (*pokerv1.RevealVotesResponse, error) {
	gameID, me, err := v.admin()
	if err != nil {
		return nil, err
	}
	token, err := v.pending.Apply(KindReveal, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.api.RevealVotes(ctx, &pokerv1.RevealVotesRequest{GameID: gameID, PlayerID: me})
	v.pending.Resolve(token, err)
	return resp, err
}

// MaybeAutoReveal reveals once when auto-reveal is on and every voter has voted. Only the
// admin's client acts; it reports whether a reveal was issued.
func (v *View) MaybeAutoReveal(ctx context.Context) bool {
	me := v.PlayerID()
	g := v.store.Game()
	cur := v.store.CurrentIssue()
	if g == nil || cur == nil || !g.AutoReveal || g.IsRevealed() || !g.IsCreator(me) || !v.store.AllVoted() {
		return false
	}
	key := autoRevealKey{issueID: cur.ID, version: g.Version}
	v.mu.Lock()
	if v.autoReveal == key {
		v.mu.Unlock()
		return false
	}
	v.autoReveal = key
	v.mu.Unlock()

	if _, err := v.Reveal(ctx); err != nil {
		// let the next change try again
		v.mu.Lock()
		if v.autoReveal == key {
			v.autoReveal = autoRevealKey{}
		}
		v.mu.Unlock()
		log.Warn().Err(err).Str("game_id", g.ID).Msg("auto-reveal failed")
		return false
	}
	log.Info().Str("game_id", g.ID).Str("issue_id", cur.ID).Msg("auto-revealed votes")
	return true
}

// onChange runs on the feed goroutine, so the reveal round trip happens elsewhere.
func (v *View) onChange() {
	v.background.Add(1)
	go func() {
		defer v.background.Done()
		v.MaybeAutoReveal(context.Background())
	}()
}

func (v *View) NewRound(ctx context.Context) error {
	gameID, me, err := v.admin()
	if err != nil {
		return err
	}
	token, err := v.pending.Apply(KindNewRound, nil)
	if err != nil {
		return err
	}
	_, err = v.api.StartNewRound(ctx, &pokerv1.StartNewRoundRequest{GameID: gameID, PlayerID: me})
	v.pending.Resolve(token, err)
	return err
}

func (v *View) SetCurrentIssue(ctx context.Context, issueID string) error {
	gameID, me, err := v.admin()
	if err != nil {
		return err
	}
	_, err = v.api.SetCurrentIssue(ctx, &pokerv1.SetCurrentIssueRequest{GameID: gameID, PlayerID: me, IssueID: issueID})
	return err
}

func (v *View) TransferAdmin(ctx context.Context, targetID string) error {
	gameID, me, err := v.admin()
	if err != nil {
		return err
	}
	_, err = v.api.TransferAdmin(ctx, &pokerv1.TransferAdminRequest{GameID: gameID, PlayerID: me, TargetPlayerID: targetID})
	return err
}

func (v *View) UpdateSettings(ctx context.Context, name string, settings models.GameSettings, hostPlayerID *string) error {
	gameID, me, err := v.admin()
	if err != nil {
		return err
	}
	_, err = v.api.UpdateGameSettings(ctx, &pokerv1.UpdateGameSettingsRequest{
		GameID: gameID, PlayerID: me, Name: name, Settings: settings, HostPlayerID: hostPlayerID,
	})
	return err
}

func (v *View) CreateIssue(ctx context.Context, title string, description *string) (*models.Issue, error) {
	gameID, me, err := v.admin()
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" {
		return nil, apperr.Validation("title is required")
	}
	resp, err := v.api.CreateIssue(ctx, &pokerv1.CreateIssueRequest{GameID: gameID, PlayerID: me, Title: title, Description: description})
	if err != nil {
		return nil, err
	}
	return &resp.Issue, nil
}

func (v *View) UpdateIssue(ctx context.Context, req pokerv1.UpdateIssueRequest) (*models.Issue, error) {
	gameID, me, err := v.admin()
	if err != nil {
		return nil, err
	}
	req.GameID, req.PlayerID = gameID, me
	resp, err := v.api.UpdateIssue(ctx, &req)
	if err != nil {
		return nil, err
	}
	return &resp.Issue, nil
}

// DeleteIssue removes the issue and applies the removal locally without waiting for the feed.
func (v *View) DeleteIssue(ctx context.Context, issueID string) error {
	gameID, me, err := v.admin()
	if err != nil {
		return err
	}
	if _, err := v.api.DeleteIssue(ctx, &pokerv1.DeleteIssueRequest{GameID: gameID, PlayerID: me, IssueID: issueID}); err != nil {
		return err
	}
	v.orch.RemoveIssue(issueID)
	return nil
}

// Kick removes another player and applies the removal locally without waiting for the feed.
func (v *View) Kick(ctx context.Context, targetID string) error {
	gameID, me, err := v.admin()
	if err != nil {
		return err
	}
	if targetID == me {
		return apperr.New(apperr.KindValidation, apperr.ReasonSelfKick, "cannot kick yourself")
	}
	if _, err := v.api.KickPlayer(ctx, &pokerv1.KickPlayerRequest{GameID: gameID, PlayerID: me, TargetPlayerID: targetID}); err != nil {
		return err
	}
	v.orch.RemovePlayer(targetID)
	return nil
}

// UpdateProfile changes the local player's name and avatar. An AvatarTaken failure leaves the
// local state untouched so the caller can re-prompt.
func (v *View) UpdateProfile(ctx context.Context, name string, avatar *string) (*models.Player, error) {
	gameID, me, err := v.active()
	if err != nil {
		return nil, err
	}
	token, err := v.pending.Apply(KindProfile, nil)
	if err != nil {
		return nil, err
	}
	resp, err := v.api.UpdatePlayerProfile(ctx, &pokerv1.UpdatePlayerProfileRequest{GameID: gameID, PlayerID: me, Name: name, Avatar: avatar})
	v.pending.Resolve(token, err)
	if err != nil {
		return nil, err
	}
	p := resp.Player
	v.orch.Mutate(func(s *Store) {
		if cur, ok := s.Player(p.ID); !ok || cur.Version < p.Version {
			s.AddOrReplacePlayer(p)
		}
	})
	return &p, nil
}

// SetSpectator toggles targetID, or the local player when targetID is empty.
func (v *View) SetSpectator(ctx context.Context, targetID string, spectator bool) error {
	gameID, me, err := v.active()
	if err != nil {
		return err
	}
	if targetID == "" {
		targetID = me
	}
	if targetID != me && !v.store.IsAdmin(me) {
		return apperr.Forbidden(apperr.ReasonNotAdmin, "only the game admin can change other players")
	}
	_, err = v.api.SetSpectator(ctx, &pokerv1.SetSpectatorRequest{GameID: gameID, PlayerID: me, TargetPlayerID: targetID, IsSpectator: spectator})
	return err
}

func (v *View) StartConfidence(ctx context.Context) error {
	gameID, me, err := v.admin()
	if err != nil {
		return err
	}
	_, err = v.api.StartConfidenceVote(ctx, &pokerv1.StartConfidenceVoteRequest{GameID: gameID, PlayerID: me})
	return err
}

// SubmitConfidence sets the local confidence vote immediately, rolling back on failure.
func (v *View) SubmitConfidence(ctx context.Context, value int, sessionName *string) error {
	gameID, me, err := v.active()
	if err != nil {
		return err
	}
	if value < models.MinConfidence || value > models.MaxConfidence {
		return apperr.Validation("confidence must be between %d and %d", models.MinConfidence, models.MaxConfidence)
	}

	tentative := models.ConfidenceVote{GameID: gameID, PlayerID: me, Value: value, SessionName: sessionName}
	token, err := v.pending.Apply(KindConfidence, func() func() {
		prev, hadPrev := v.store.ConfidenceVote(me)
		if hadPrev {
			tentative.ID = prev.ID
			tentative.Version = prev.Version
		}
		v.orch.Mutate(func(s *Store) { s.UpsertConfidenceVote(tentative) })
		return func() {
			v.orch.Mutate(func(s *Store) {
				now, ok := s.ConfidenceVote(me)
				if !ok || now.ID != tentative.ID || now.Version != tentative.Version || now.Value != tentative.Value {
					return
				}
				if hadPrev {
					s.UpsertConfidenceVote(prev)
				} else {
					s.RemoveConfidenceVote(me)
				}
			})
		}
	})
	if err != nil {
		return err
	}

	resp, err := v.api.SubmitConfidenceVote(ctx, &pokerv1.SubmitConfidenceVoteRequest{GameID: gameID, PlayerID: me, Value: value, SessionName: sessionName})
	if err != nil {
		v.pending.Rollback(token)
		return err
	}
	confirmed := resp.Vote
	v.orch.Mutate(func(s *Store) {
		if now, ok := s.ConfidenceVote(me); !ok || now.ID != confirmed.ID || now.Version <= confirmed.Version {
			s.UpsertConfidenceVote(confirmed)
		}
	})
	v.pending.Confirm(token)
	return nil
}

func (v *View) RevealConfidence(ctx context.Context) error {
	gameID, me, err := v.admin()
	if err != nil {
		return err
	}
	_, err = v.api.RevealConfidenceVote(ctx, &pokerv1.RevealConfidenceVoteRequest{GameID: gameID, PlayerID: me})
	return err
}
