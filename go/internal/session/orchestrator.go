package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/planningpoker/go/internal/apperr"
	"github.com/mcdev12/planningpoker/go/internal/feed"
	"github.com/mcdev12/planningpoker/go/internal/identity"
	"github.com/mcdev12/planningpoker/go/internal/models"
)

// Phase is where a mounted view is in its lifecycle.
type Phase string

const (
	PhaseDetached   Phase = "detached"
	PhaseFetching   Phase = "fetching"
	PhaseSubscribed Phase = "subscribed"
	// PhaseNotFound is terminal for the mount: the game does not exist.
	PhaseNotFound Phase = "not_found"
)

// IdentityState says what the local player should be shown.
type IdentityState string

const (
	IdentityUnknown   IdentityState = "unknown"
	IdentityNeedsJoin IdentityState = "needs_join"
	IdentityActive    IdentityState = "active"
	// IdentityRemoved is terminal: the local player was kicked.
	IdentityRemoved IdentityState = "removed"
)

// ErrGameNotFound is returned by Mount when the game does not exist.
var ErrGameNotFound = errors.New("game not found")

// Fetcher performs the initial snapshot read.
type Fetcher interface {
	Snapshot(ctx context.Context, gameID string) (*models.Snapshot, error)
}

// Stats are the diagnostics counters of a mount.
type Stats struct {
	Phase   Phase
	Applied uint64
	Dropped uint64
	Stale   uint64
}

type OrchestratorConfig struct {
	// GuardDelay waits before subscribing so rapid remounts do not churn subscriptions.
	GuardDelay time.Duration
	// ResyncDelay spaces remount attempts after the change feed is lost.
	ResyncDelay time.Duration
}

const defaultResyncDelay = time.Second

type voteKey struct{ issueID, playerID string }

// stashedVote is a vote for an issue that is not current yet.
type stashedVote struct {
	vote models.Vote
	seq  int64
}

// Orchestrator owns one game's subscription and applies its events to a Store.
type Orchestrator struct {
	store      *Store
	fetcher    Fetcher
	subscriber feed.Subscriber
	identities identity.Store
	clock      clockwork.Clock
	cfg        OrchestratorConfig

	mu         sync.Mutex
	gameID     string
	phase      Phase
	generation uint64
	cancel     feed.Cancel
	buffer     []models.ChangeEvent
	// highest change already reflected in the snapshot
	snapSeq int64
	// bumped by Mount and Unmount; a resync loop runs only while it is unchanged
	epoch      uint64
	stopResync context.CancelFunc

	localPlayerID string
	identityState IdentityState

	// feed sequence of the events that produced the held votes, for status-driven clears
	voteSeq       map[voteKey]int64
	confidenceSeq map[string]int64
	// votes for issues that are not current, keyed by issue
	stash map[string]map[string]stashedVote

	applied uint64
	dropped uint64
	stale   uint64

	onChange func()
}

func NewOrchestrator(store *Store, fetcher Fetcher, subscriber feed.Subscriber, identities identity.Store, clock clockwork.Clock, cfg OrchestratorConfig) *Orchestrator {
	if cfg.ResyncDelay <= 0 {
		cfg.ResyncDelay = defaultResyncDelay
	}
	return &Orchestrator{
		store:         store,
		fetcher:       fetcher,
		subscriber:    subscriber,
		identities:    identities,
		clock:         clock,
		cfg:           cfg,
		phase:         PhaseDetached,
		identityState: IdentityUnknown,
	}
}

// Mount subscribes to gameID, loads the snapshot and replays whatever arrived meanwhile.
// Mounting again performs a full resync. If the feed is lost later the orchestrator detaches
// and remounts on its own until Mount or Unmount is called again.
func (o *Orchestrator) Mount(ctx context.Context, gameID string) error {
	if gameID == "" {
		return apperr.Validation("game_id is required")
	}
	return o.mount(ctx, gameID, o.nextEpoch())
}

func (o *Orchestrator) nextEpoch() uint64 {
	o.mu.Lock()
	o.epoch++
	stop := o.stopResync
	o.stopResync = nil
	epoch := o.epoch
	o.mu.Unlock()
	if stop != nil {
		stop()
	}
	return epoch
}

func (o *Orchestrator) mount(ctx context.Context, gameID string, epoch uint64) error {
	o.mu.Lock()
	if o.epoch != epoch {
		o.mu.Unlock()
		return nil
	}
	prev := o.cancel
	o.cancel = nil
	o.generation++
	gen := o.generation
	o.gameID = gameID
	o.phase = PhaseFetching
	o.buffer = nil
	o.resetLocked()
	o.mu.Unlock()
	if prev != nil {
		prev()
	}
	o.store.Reset()

	if o.cfg.GuardDelay > 0 {
		select {
		case <-ctx.Done():
			o.abort(gen, PhaseDetached)
			return ctx.Err()
		case <-o.clock.After(o.cfg.GuardDelay):
		}
	}

	cancel, err := o.subscriber.Subscribe(ctx, feed.Filter{GameID: gameID, Tables: models.AllTables},
		func(ev models.ChangeEvent) { o.onEvent(gen, ev) },
		func(err error) { o.onLost(gen, epoch, gameID, err) })
	if err != nil {
		o.abort(gen, PhaseDetached)
		return fmt.Errorf("failed to subscribe to game changes: %w", err)
	}
	if !o.setCancel(gen, cancel) {
		cancel()
		return nil
	}

	snap, err := o.fetcher.Snapshot(ctx, gameID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			o.abort(gen, PhaseNotFound)
			log.Info().Str("game_id", gameID).Msg("game not found")
			return ErrGameNotFound
		}
		o.abort(gen, PhaseDetached)
		return fmt.Errorf("failed to fetch game snapshot: %w", err)
	}

	localID := ""
	if o.identities != nil {
		if localID, err = o.identities.Get(ctx, gameID); err != nil {
			log.Warn().Err(err).Str("game_id", gameID).Msg("failed to read local identity")
			localID = ""
		}
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		return nil
	}

	o.store.SetGame(&snap.Game)
	o.store.SetPlayers(snap.Players)
	o.store.SetIssues(snap.Issues)
	o.store.SetVotes(currentOnly(snap.Votes, snap.Game.CurrentIssueID))
	o.store.SetConfidenceVotes(snap.ConfidenceVotes)
	o.snapSeq = snap.Seq
	o.resolveIdentityLocked(ctx, localID, snap.Players)

	buffered := o.buffer
	o.buffer = nil
	o.phase = PhaseSubscribed
	for _, ev := range buffered {
		o.applyLocked(ev)
	}

	log.Debug().
		Str("game_id", gameID).
		Int("players", len(snap.Players)).
		Int("issues", len(snap.Issues)).
		Int("replayed", len(buffered)).
		Int64("seq", snap.Seq).
		Msg("game view subscribed")
	return nil
}

// Unmount releases the subscription and stops any pending resync. Events and writes arriving
// afterwards are ignored.
func (o *Orchestrator) Unmount() {
	o.nextEpoch()
	o.detach()
}

func (o *Orchestrator) detach() {
	o.mu.Lock()
	cancel := o.cancel
	o.cancel = nil
	o.generation++
	o.phase = PhaseDetached
	o.buffer = nil
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// onLost detaches a mount whose feed ended and keeps remounting it in the background. Events
// published while detached are never delivered, so only a fresh snapshot can catch up.
func (o *Orchestrator) onLost(gen, epoch uint64, gameID string, err error) {
	o.mu.Lock()
	if o.generation != gen || o.epoch != epoch {
		o.mu.Unlock()
		return
	}
	if o.stopResync != nil {
		o.stopResync()
	}
	ctx, stop := context.WithCancel(context.Background())
	o.stopResync = stop
	cancel := o.cancel
	o.cancel = nil
	o.buffer = nil
	o.phase = PhaseDetached
	o.generation++
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	log.Warn().Err(err).Str("game_id", gameID).Msg("change feed lost, resyncing")
	go o.resync(ctx, gameID, epoch)
}

func (o *Orchestrator) resync(ctx context.Context, gameID string, epoch uint64) {
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-o.clock.After(o.cfg.ResyncDelay):
		}
		err := o.mount(ctx, gameID, epoch)
		if err == nil || errors.Is(err, ErrGameNotFound) {
			return
		}
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Str("game_id", gameID).Int("attempt", attempt).Msg("resync failed")
	}
}

func (o *Orchestrator) abort(gen uint64, phase Phase) {
	o.mu.Lock()
	if o.generation != gen {
		o.mu.Unlock()
		return
	}
	cancel := o.cancel
	o.cancel = nil
	o.buffer = nil
	o.phase = phase
	o.generation++
	o.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (o *Orchestrator) setCancel(gen uint64, cancel feed.Cancel) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		return false
	}
	o.cancel = cancel
	return true
}

func (o *Orchestrator) resetLocked() {
	o.snapSeq = 0
	o.localPlayerID = ""
	o.identityState = IdentityUnknown
	o.voteSeq = make(map[voteKey]int64)
	o.confidenceSeq = make(map[string]int64)
	o.stash = make(map[string]map[string]stashedVote)
	o.applied, o.dropped, o.stale = 0, 0, 0
}

// Phase reports the lifecycle phase.
func (o *Orchestrator) Phase() Phase {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.phase
}

func (o *Orchestrator) GameID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.gameID
}

func (o *Orchestrator) Stats() Stats {
	o.mu.Lock()
	defer o.mu.Unlock()
	return Stats{Phase: o.phase, Applied: o.applied, Dropped: o.dropped, Stale: o.stale}
}

// Identity returns the local player id and what the view should show for it.
func (o *Orchestrator) Identity() (string, IdentityState) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.localPlayerID, o.identityState
}

// Mutate runs fn against the store only while the view is attached, and reports whether it ran.
func (o *Orchestrator) Mutate(fn func(s *Store)) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != PhaseSubscribed {
		return false
	}
	fn(o.store)
	return true
}

// SetLocalPlayer records a freshly joined identity.
func (o *Orchestrator) SetLocalPlayer(playerID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != PhaseSubscribed {
		return
	}
	o.localPlayerID = playerID
	o.identityState = IdentityActive
}

// ForgetLocalPlayer routes the view back to the join flow.
func (o *Orchestrator) ForgetLocalPlayer() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.localPlayerID = ""
	if o.identityState != IdentityRemoved {
		o.identityState = IdentityNeedsJoin
	}
}

// RemovePlayer drops a player locally and handles the local player being the one removed.
// Kick calls this directly since the delete event may not round-trip with a payload.
func (o *Orchestrator) RemovePlayer(playerID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != PhaseSubscribed {
		return
	}
	o.removePlayerLocked(playerID)
}

// RemoveIssue drops an issue locally; the invoking client of a delete calls this directly.
func (o *Orchestrator) RemoveIssue(issueID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.phase != PhaseSubscribed {
		return
	}
	o.store.RemoveIssue(issueID)
	delete(o.stash, issueID)
}

func (o *Orchestrator) resolveIdentityLocked(ctx context.Context, localID string, players []models.Player) {
	if localID == "" {
		o.identityState = IdentityNeedsJoin
		return
	}
	for _, p := range players {
		if p.ID == localID {
			o.localPlayerID = localID
			o.identityState = IdentityActive
			return
		}
	}
	// stale identity: the player no longer exists in this game
	log.Info().Str("game_id", o.gameID).Str("player_id", localID).Msg("discarding stale local identity")
	o.identityState = IdentityNeedsJoin
	if o.identities == nil {
		return
	}
	if err := o.identities.Clear(context.WithoutCancel(ctx), o.gameID); err != nil {
		log.Warn().Err(err).Str("game_id", o.gameID).Msg("failed to clear local identity")
	}
}

// SetOnChange registers fn to run, outside the lock, after each applied event.
func (o *Orchestrator) SetOnChange(fn func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onChange = fn
}

func (o *Orchestrator) onEvent(gen uint64, ev models.ChangeEvent) {
	o.mu.Lock()
	if o.generation != gen {
		o.mu.Unlock()
		return
	}
	var notify func()
	switch o.phase {
	case PhaseFetching:
		o.buffer = append(o.buffer, ev)
	case PhaseSubscribed:
		if o.applyLocked(ev) == applied {
			notify = o.onChange
		}
	}
	o.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// Apply feeds one event through the merge rules, as if it came off the subscription.
func (o *Orchestrator) Apply(ev models.ChangeEvent) {
	o.mu.Lock()
	gen := o.generation
	o.mu.Unlock()
	o.onEvent(gen, ev)
}

type outcome int

const (
	applied outcome = iota
	dropped
	stale
)

func (o *Orchestrator) applyLocked(ev models.ChangeEvent) outcome {
	var res outcome
	var reason string
	switch {
	case ev.GameID != o.gameID:
		res, reason = dropped, "foreign game"
	case ev.Seq != 0 && ev.Seq <= o.snapSeq:
		// already part of the snapshot
		res = stale
	default:
		switch ev.Table {
		case models.TableGames:
			res, reason = o.applyGame(ev)
		case models.TablePlayers:
			res, reason = o.applyPlayer(ev)
		case models.TableIssues:
			res, reason = o.applyIssue(ev)
		case models.TableVotes:
			res, reason = o.applyVote(ev)
		case models.TableConfidenceVotes:
			res, reason = o.applyConfidenceVote(ev)
		default:
			res, reason = dropped, "unknown table"
		}
	}

	switch res {
	case applied:
		o.applied++
	case stale:
		o.stale++
	case dropped:
		o.dropped++
		log.Warn().
			Str("game_id", ev.GameID).
			Str("table", string(ev.Table)).
			Str("op", string(ev.Op)).
			Str("row_id", ev.RowID).
			Str("reason", reason).
			Msg("dropping change event")
	}
	return res
}

func decodeRow[T any](ev models.ChangeEvent) (T, error) {
	var row T
	if len(ev.Row) == 0 || string(ev.Row) == "null" {
		return row, errors.New("missing row")
	}
	err := json.Unmarshal(ev.Row, &row)
	return row, err
}

func (o *Orchestrator) applyGame(ev models.ChangeEvent) (outcome, string) {
	if ev.Op == models.OpDelete {
		return dropped, "game delete"
	}
	g, err := decodeRow[models.Game](ev)
	if err != nil {
		return dropped, err.Error()
	}
	if g.ID != o.gameID {
		return dropped, "row of another game"
	}
	prev := o.store.Game()
	if prev != nil && g.Version <= prev.Version {
		return stale, ""
	}

	o.store.SetGame(&g)

	if prev.IsRevealed() && g.Status == models.GameStatusVoting {
		// the round was reset; its bulk vote delete is never seen row by row
		o.store.RetainVotes(func(v models.Vote) bool {
			return o.voteSeq[voteKey{v.IssueID, v.PlayerID}] > ev.Seq
		})
	}
	if prev != nil && prev.ConfidenceStatus != models.ConfidenceStatusVoting && g.ConfidenceStatus == models.ConfidenceStatusVoting {
		o.store.RetainConfidenceVotes(func(v models.ConfidenceVote) bool {
			return o.confidenceSeq[v.PlayerID] > ev.Seq
		})
	}
	if prevIssue, nextIssue := issueID(prev), issueID(&g); prev != nil && prevIssue != nextIssue {
		o.switchIssue(nextIssue, ev.Seq)
	}
	return applied, ""
}

// switchIssue moves the held votes aside and promotes what was stashed for the new issue.
// Stashed votes older than the switch were deleted by it and are discarded.
func (o *Orchestrator) switchIssue(to string, seq int64) {
	for _, v := range o.store.Votes() {
		if _, exists := o.store.Issue(v.IssueID); exists && v.IssueID != to {
			o.stashVote(v, o.voteSeq[voteKey{v.IssueID, v.PlayerID}])
		}
	}
	o.store.RetainVotes(func(v models.Vote) bool { return v.IssueID == to })

	for playerID, sv := range o.stash[to] {
		if sv.seq > seq {
			o.store.UpsertVote(sv.vote)
			o.voteSeq[voteKey{to, playerID}] = sv.seq
		}
	}
	delete(o.stash, to)
}

func (o *Orchestrator) stashVote(v models.Vote, seq int64) {
	byPlayer := o.stash[v.IssueID]
	if byPlayer == nil {
		byPlayer = make(map[string]stashedVote)
		o.stash[v.IssueID] = byPlayer
	}
	if cur, ok := byPlayer[v.PlayerID]; ok && cur.vote.ID == v.ID && cur.vote.Version >= v.Version {
		return
	}
	byPlayer[v.PlayerID] = stashedVote{vote: v, seq: seq}
}

func (o *Orchestrator) applyPlayer(ev models.ChangeEvent) (outcome, string) {
	if ev.Op == models.OpDelete {
		id := ev.RowID
		if id == "" {
			if p, err := decodeRow[models.Player](ev); err == nil {
				id = p.ID
			}
		}
		if id == "" {
			return dropped, "player delete without id"
		}
		o.removePlayerLocked(id)
		return applied, ""
	}
	p, err := decodeRow[models.Player](ev)
	if err != nil {
		return dropped, err.Error()
	}
	if p.GameID != o.gameID {
		return dropped, "row of another game"
	}
	if cur, ok := o.store.Player(p.ID); ok && p.Version <= cur.Version {
		return stale, ""
	}
	o.store.AddOrReplacePlayer(p)
	return applied, ""
}

func (o *Orchestrator) removePlayerLocked(playerID string) {
	o.store.RemovePlayer(playerID)
	o.store.RemovePlayerVotes(playerID)
	for _, byPlayer := range o.stash {
		delete(byPlayer, playerID)
	}
	if playerID != "" && playerID == o.localPlayerID {
		log.Info().Str("game_id", o.gameID).Str("player_id", playerID).Msg("local player was removed from the game")
		o.identityState = IdentityRemoved
		if o.identities != nil {
			if err := o.identities.Clear(context.Background(), o.gameID); err != nil {
				log.Warn().Err(err).Str("game_id", o.gameID).Msg("failed to clear local identity")
			}
		}
	}
}

func (o *Orchestrator) applyIssue(ev models.ChangeEvent) (outcome, string) {
	if ev.Op == models.OpDelete {
		if ev.RowID == "" {
			return dropped, "issue delete without id"
		}
		o.store.RemoveIssue(ev.RowID)
		delete(o.stash, ev.RowID)
		return applied, ""
	}
	issue, err := decodeRow[models.Issue](ev)
	if err != nil {
		return dropped, err.Error()
	}
	if issue.GameID != o.gameID {
		return dropped, "row of another game"
	}
	if cur, ok := o.store.Issue(issue.ID); ok && issue.Version <= cur.Version {
		return stale, ""
	}
	o.store.AddOrReplaceIssue(issue)
	return applied, ""
}

func (o *Orchestrator) applyVote(ev models.ChangeEvent) (outcome, string) {
	if ev.Op == models.OpDelete {
		if v, err := decodeRow[models.Vote](ev); err == nil {
			o.store.RemoveVote(v.IssueID, v.PlayerID)
			if byPlayer := o.stash[v.IssueID]; byPlayer != nil {
				delete(byPlayer, v.PlayerID)
			}
			return applied, ""
		}
		if ev.RowID == "" {
			return dropped, "vote delete without id"
		}
		o.store.RemoveVoteByID(ev.RowID)
		return applied, ""
	}
	v, err := decodeRow[models.Vote](ev)
	if err != nil {
		return dropped, err.Error()
	}
	if v.IssueID == "" || v.PlayerID == "" {
		return dropped, "vote without issue or player"
	}

	current := issueID(o.store.Game())
	if v.IssueID != current {
		// never merged into the current aggregate; promoted if the issue becomes current
		o.stashVote(v, ev.Seq)
		return applied, ""
	}
	if cur, ok := o.store.Vote(v.IssueID, v.PlayerID); ok && cur.ID == v.ID && v.Version <= cur.Version {
		return stale, ""
	}
	o.store.UpsertVote(v)
	o.voteSeq[voteKey{v.IssueID, v.PlayerID}] = ev.Seq
	return applied, ""
}

func (o *Orchestrator) applyConfidenceVote(ev models.ChangeEvent) (outcome, string) {
	if ev.Op == models.OpDelete {
		if v, err := decodeRow[models.ConfidenceVote](ev); err == nil {
			o.store.RemoveConfidenceVote(v.PlayerID)
			return applied, ""
		}
		if ev.RowID == "" {
			return dropped, "confidence vote delete without id"
		}
		o.store.RemoveConfidenceVoteByID(ev.RowID)
		return applied, ""
	}
	v, err := decodeRow[models.ConfidenceVote](ev)
	if err != nil {
		return dropped, err.Error()
	}
	if v.GameID != o.gameID {
		return dropped, "row of another game"
	}
	if cur, ok := o.store.ConfidenceVote(v.PlayerID); ok && cur.ID == v.ID && v.Version <= cur.Version {
		return stale, ""
	}
	o.store.UpsertConfidenceVote(v)
	o.confidenceSeq[v.PlayerID] = ev.Seq
	return applied, ""
}

func issueID(g *models.Game) string {
	if g == nil || g.CurrentIssueID == nil {
		return ""
	}
	return *g.CurrentIssueID
}

func currentOnly(votes []models.Vote, current *string) []models.Vote {
	if current == nil {
		return nil
	}
	var out []models.Vote
	for _, v := range votes {
		if v.IssueID == *current {
			out = append(out, v)
		}
	}
	return out
}
