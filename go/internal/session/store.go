// Package session keeps a client's local projection of one game in sync with the change feed.
package session

import (
	"sort"
	"sync"

	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/scoring"
)

// Store is the client-local projection of one game. Every operation is total: unknown ids are
// ignored. Getters return copies.
type Store struct {
	mu              sync.RWMutex
	game            *models.Game
	players         []models.Player
	issues          []models.Issue
	votes           []models.Vote
	confidenceVotes []models.ConfidenceVote
}

func NewStore() *Store {
	return &Store{}
}

// Reset drops everything.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.game = nil
	s.players = nil
	s.issues = nil
	s.votes = nil
	s.confidenceVotes = nil
}

func (s *Store) Game() *models.Game {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.game == nil {
		return nil
	}
	g := *s.game
	return &g
}

func (s *Store) SetGame(g *models.Game) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g == nil {
		s.game = nil
		return
	}
	cp := *g
	s.game = &cp
}

// Players

func (s *Store) Players() []models.Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Player(nil), s.players...)
}

func (s *Store) Player(id string) (models.Player, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if p.ID == id {
			return p, true
		}
	}
	return models.Player{}, false
}

func (s *Store) SetPlayers(players []models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = append([]models.Player(nil), players...)
}

// AddOrReplacePlayer upserts by id.
func (s *Store) AddOrReplacePlayer(p models.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.players {
		if s.players[i].ID == p.ID {
			s.players[i] = p
			return
		}
	}
	s.players = append(s.players, p)
}

func (s *Store) RemovePlayer(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players = without(s.players, func(p models.Player) bool { return p.ID == id })
}

// RemovePlayerVotes drops the player's issue and confidence votes.
func (s *Store) RemovePlayerVotes(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = without(s.votes, func(v models.Vote) bool { return v.PlayerID == playerID })
	s.confidenceVotes = without(s.confidenceVotes, func(v models.ConfidenceVote) bool { return v.PlayerID == playerID })
}

// Issues

func (s *Store) Issues() []models.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Issue(nil), s.issues...)
}

func (s *Store) Issue(id string) (models.Issue, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, i := range s.issues {
		if i.ID == id {
			return i, true
		}
	}
	return models.Issue{}, false
}

// SetIssues replaces the list, ordered by sort order with ties in the given order.
func (s *Store) SetIssues(issues []models.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = append([]models.Issue(nil), issues...)
	s.sortIssues()
}

// AddOrReplaceIssue upserts by id.
func (s *Store) AddOrReplaceIssue(issue models.Issue) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID == issue.ID {
			s.issues[i] = issue
			s.sortIssues()
			return
		}
	}
	s.issues = append(s.issues, issue)
	s.sortIssues()
}

func (s *Store) PatchIssue(id string, patch models.IssuePatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.issues {
		if s.issues[i].ID == id {
			s.issues[i] = patch.Apply(s.issues[i])
			s.sortIssues()
			return
		}
	}
}

func (s *Store) RemoveIssue(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issues = without(s.issues, func(i models.Issue) bool { return i.ID == id })
}

func (s *Store) sortIssues() {
	sort.SliceStable(s.issues, func(a, b int) bool { return s.issues[a].SortOrder < s.issues[b].SortOrder })
}

// Votes

func (s *Store) Votes() []models.Vote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Vote(nil), s.votes...)
}

// Vote returns the vote of playerID on issueID.
func (s *Store) Vote(issueID, playerID string) (models.Vote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.votes {
		if v.IssueID == issueID && v.PlayerID == playerID {
			return v, true
		}
	}
	return models.Vote{}, false
}

func (s *Store) SetVotes(votes []models.Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = nil
	for _, v := range votes {
		s.upsertVote(v)
	}
}

// UpsertVote replaces the vote for the same (issue, player) in place, or appends.
func (s *Store) UpsertVote(v models.Vote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertVote(v)
}

func (s *Store) upsertVote(v models.Vote) {
	for i := range s.votes {
		if s.votes[i].IssueID == v.IssueID && s.votes[i].PlayerID == v.PlayerID {
			s.votes[i] = v
			return
		}
	}
	s.votes = append(s.votes, v)
}

// RemoveVote drops the vote for (issueID, playerID).
func (s *Store) RemoveVote(issueID, playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = without(s.votes, func(v models.Vote) bool { return v.IssueID == issueID && v.PlayerID == playerID })
}

// RemoveVoteByID drops the vote row with id.
func (s *Store) RemoveVoteByID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = without(s.votes, func(v models.Vote) bool { return v.ID == id })
}

// RetainVotes keeps only the votes keep returns true for.
func (s *Store) RetainVotes(keep func(models.Vote) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = without(s.votes, func(v models.Vote) bool { return !keep(v) })
}

func (s *Store) ClearVotes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.votes = nil
}

// Confidence votes

func (s *Store) ConfidenceVotes() []models.ConfidenceVote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ConfidenceVote(nil), s.confidenceVotes...)
}

func (s *Store) ConfidenceVote(playerID string) (models.ConfidenceVote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.confidenceVotes {
		if v.PlayerID == playerID {
			return v, true
		}
	}
	return models.ConfidenceVote{}, false
}

func (s *Store) SetConfidenceVotes(votes []models.ConfidenceVote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confidenceVotes = nil
	for _, v := range votes {
		s.upsertConfidenceVote(v)
	}
}

// UpsertConfidenceVote replaces the vote of the same player in place, or appends.
func (s *Store) UpsertConfidenceVote(v models.ConfidenceVote) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upsertConfidenceVote(v)
}

func (s *Store) upsertConfidenceVote(v models.ConfidenceVote) {
	for i := range s.confidenceVotes {
		if s.confidenceVotes[i].PlayerID == v.PlayerID {
			s.confidenceVotes[i] = v
			return
		}
	}
	s.confidenceVotes = append(s.confidenceVotes, v)
}

func (s *Store) RemoveConfidenceVote(playerID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confidenceVotes = without(s.confidenceVotes, func(v models.ConfidenceVote) bool { return v.PlayerID == playerID })
}

func (s *Store) RemoveConfidenceVoteByID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confidenceVotes = without(s.confidenceVotes, func(v models.ConfidenceVote) bool { return v.ID == id })
}

// RetainConfidenceVotes keeps only the votes keep returns true for.
func (s *Store) RetainConfidenceVotes(keep func(models.ConfidenceVote) bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confidenceVotes = without(s.confidenceVotes, func(v models.ConfidenceVote) bool { return !keep(v) })
}

func (s *Store) ClearConfidenceVotes() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.confidenceVotes = nil
}

// Derived values

// CurrentIssue is the issue the game points at, or nil.
func (s *Store) CurrentIssue() *models.Issue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentIssue()
}

func (s *Store) currentIssue() *models.Issue {
	if s.game == nil || s.game.CurrentIssueID == nil {
		return nil
	}
	for _, i := range s.issues {
		if i.ID == *s.game.CurrentIssueID {
			cp := i
			return &cp
		}
	}
	return nil
}

func (s *Store) IsRevealed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.IsRevealed()
}

func (s *Store) IsAdmin(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.game.IsCreator(playerID)
}

// AllIssuesEstimated is true when there is at least one issue and all are voted with a score.
func (s *Store) AllIssuesEstimated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.issues) == 0 {
		return false
	}
	for _, i := range s.issues {
		if !i.IsEstimated() {
			return false
		}
	}
	return true
}

// AverageConfidence is the mean confidence rounded to one decimal, nil when nobody voted.
func (s *Store) AverageConfidence() *float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	values := make([]int, len(s.confidenceVotes))
	for i, v := range s.confidenceVotes {
		values[i] = v.Value
	}
	return scoring.AverageInts(values)
}

// CurrentVoteValues lists the card values cast on the current issue.
func (s *Store) CurrentVoteValues() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentVoteValues()
}

func (s *Store) currentVoteValues() []string {
	cur := s.currentIssue()
	if cur == nil {
		return nil
	}
	var values []string
	for _, v := range s.votes {
		if v.IssueID == cur.ID {
			values = append(values, v.Value)
		}
	}
	return values
}

// VoteAverage is the numeric mean of the current issue's votes.
func (s *Store) VoteAverage() *float64 {
	return scoring.Average(s.CurrentVoteValues())
}

// Consensus reports whether the current issue has at least two votes, all identical.
func (s *Store) Consensus() bool {
	return scoring.HasConsensus(s.CurrentVoteValues())
}

// Spread is max minus min over the current issue's numeric votes.
func (s *Store) Spread() float64 {
	return scoring.VoteSpread(s.CurrentVoteValues())
}

// SuggestedCard is the fibonacci card closest to the current average, nil without numeric votes.
func (s *Store) SuggestedCard() *int {
	avg := s.VoteAverage()
	if avg == nil {
		return nil
	}
	card := scoring.ClosestFibonacci(*avg)
	return &card
}

// Meme picks the reveal overlay for the current round. It is nil unless the round is revealed
// and the game has fun features on.
func (s *Store) Meme(catalog scoring.MemeCatalog, pick func(n int) int) *scoring.Meme {
	s.mu.RLock()
	g := s.game
	values := s.currentVoteValues()
	s.mu.RUnlock()
	if !g.IsRevealed() || !g.FunFeatures {
		return nil
	}
	return scoring.SelectMeme(values, catalog, pick)
}

// HasVoted reports whether playerID voted on the current issue. Non-numeric cards count.
func (s *Store) HasVoted(playerID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.currentIssue()
	if cur == nil {
		return false
	}
	for _, v := range s.votes {
		if v.IssueID == cur.ID && v.PlayerID == playerID {
			return true
		}
	}
	return false
}

// AllVoted is true when there is at least one non-spectator and every one of them voted on the
// current issue.
func (s *Store) AllVoted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cur := s.currentIssue()
	if cur == nil {
		return false
	}
	voted := make(map[string]bool)
	for _, v := range s.votes {
		if v.IssueID == cur.ID {
			voted[v.PlayerID] = true
		}
	}
	voters := 0
	for _, p := range s.players {
		if p.IsSpectator {
			continue
		}
		voters++
		if !voted[p.ID] {
			return false
		}
	}
	return voters > 0
}

func without[T any](items []T, drop func(T) bool) []T {
	out := items[:0:0]
	for _, it := range items {
		if !drop(it) {
			out = append(out, it)
		}
	}
	return out
}
