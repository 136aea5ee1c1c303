package session

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/planningpoker/go/internal/models"
	"github.com/mcdev12/planningpoker/go/internal/scoring"
)

func strPtr(s string) *string { return &s }

func TestUpsertVoteKeysOnIssueAndPlayer(t *testing.T) {
	s := NewStore()
	s.UpsertVote(models.Vote{ID: "v1", IssueID: "I1", PlayerID: "P1", Value: "5"})
	s.UpsertVote(models.Vote{ID: "v2", IssueID: "I1", PlayerID: "P1", Value: "8"})
	s.UpsertVote(models.Vote{ID: "v3", IssueID: "I1", PlayerID: "P2", Value: "3"})

	votes := s.Votes()
	require.Len(t, votes, 2)
	assert.Equal(t, "8", votes[0].Value)
	assert.Equal(t, "v2", votes[0].ID)

	s.SetVotes([]models.Vote{{IssueID: "I1", PlayerID: "P1", Value: "1"}, {IssueID: "I1", PlayerID: "P1", Value: "2"}})
	require.Len(t, s.Votes(), 1)
	assert.Equal(t, "2", s.Votes()[0].Value)
}

func TestConfidenceUpsertKeysOnPlayer(t *testing.T) {
	s := NewStore()
	s.UpsertConfidenceVote(models.ConfidenceVote{ID: "c1", PlayerID: "P1", Value: 2})
	s.UpsertConfidenceVote(models.ConfidenceVote{ID: "c2", PlayerID: "P1", Value: 4})
	s.UpsertConfidenceVote(models.ConfidenceVote{ID: "c3", PlayerID: "P2", Value: 5})

	require.Len(t, s.ConfidenceVotes(), 2)
	avg := s.AverageConfidence()
	require.NotNil(t, avg)
	assert.Equal(t, 4.5, *avg)

	s.ClearConfidenceVotes()
	assert.Nil(t, s.AverageConfidence())
}

func TestCurrentIssueFollowsGameAndIssues(t *testing.T) {
	s := NewStore()
	assert.Nil(t, s.CurrentIssue())

	s.SetGame(&models.Game{ID: "g", CurrentIssueID: strPtr("I2"), Status: models.GameStatusRevealed})
	assert.Nil(t, s.CurrentIssue())
	assert.True(t, s.IsRevealed())

	s.SetIssues([]models.Issue{{ID: "I2", SortOrder: 2}, {ID: "I1", SortOrder: 1}})
	require.NotNil(t, s.CurrentIssue())
	assert.Equal(t, "I2", s.CurrentIssue().ID)
	assert.Equal(t, "I1", s.Issues()[0].ID)

	s.RemoveIssue("I2")
	assert.Nil(t, s.CurrentIssue())
	s.RemoveIssue("missing")
	assert.Len(t, s.Issues(), 1)
}

func TestIssueUpsertAndPatchKeepSortOrder(t *testing.T) {
	s := NewStore()
	s.AddOrReplaceIssue(models.Issue{ID: "a", Title: "A", SortOrder: 1})
	s.AddOrReplaceIssue(models.Issue{ID: "c", Title: "C", SortOrder: 3})
	s.AddOrReplaceIssue(models.Issue{ID: "b", Title: "B", SortOrder: 2})
	s.AddOrReplaceIssue(models.Issue{ID: "a", Title: "A2", SortOrder: 1})

	ids := func() []string {
		var out []string
		for _, i := range s.Issues() {
			out = append(out, i.ID)
		}
		return out
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids())

	order := 4
	s.PatchIssue("a", models.IssuePatch{SortOrder: &order, Description: strPtr("d")})
	assert.Equal(t, []string{"b", "c", "a"}, ids())
	a, ok := s.Issue("a")
	require.True(t, ok)
	assert.Equal(t, "A2", a.Title)
	assert.Equal(t, "d", *a.Description)

	s.PatchIssue("nope", models.IssuePatch{SortOrder: &order})
	assert.Len(t, s.Issues(), 3)
}

func TestAdminAndEstimation(t *testing.T) {
	s := NewStore()
	assert.False(t, s.IsAdmin("P1"))
	s.SetGame(&models.Game{ID: "g", CreatorID: strPtr("P1")})
	assert.True(t, s.IsAdmin("P1"))
	assert.False(t, s.IsAdmin("P2"))
	assert.False(t, s.IsAdmin(""))

	assert.False(t, s.AllIssuesEstimated())
	score := 5.0
	s.SetIssues([]models.Issue{{ID: "I1", Status: models.IssueStatusVoted, FinalScore: &score}})
	assert.True(t, s.AllIssuesEstimated())
	s.AddOrReplaceIssue(models.Issue{ID: "I2", Status: models.IssueStatusVoted})
	assert.False(t, s.AllIssuesEstimated())
}

func TestAllVotedCountsNonNumericAndSkipsSpectators(t *testing.T) {
	s := NewStore()
	s.SetGame(&models.Game{ID: "g", CurrentIssueID: strPtr("I1")})
	s.SetIssues([]models.Issue{{ID: "I1"}})
	s.SetPlayers([]models.Player{{ID: "P1"}, {ID: "P2"}, {ID: "S", IsSpectator: true}})
	assert.False(t, s.AllVoted())

	s.UpsertVote(models.Vote{IssueID: "I1", PlayerID: "P1", Value: "3"})
	s.UpsertVote(models.Vote{IssueID: "I1", PlayerID: "P2", Value: "coffee"})
	s.UpsertVote(models.Vote{IssueID: "I9", PlayerID: "P2", Value: "13"})
	assert.True(t, s.AllVoted())
	assert.True(t, s.HasVoted("P2"))
	assert.False(t, s.HasVoted("S"))

	avg := s.VoteAverage()
	require.NotNil(t, avg)
	assert.Equal(t, 3.0, *avg)
	assert.ElementsMatch(t, []string{"3", "coffee"}, s.CurrentVoteValues())
}

func TestRemovePlayerVotes(t *testing.T) {
	s := NewStore()
	s.SetPlayers([]models.Player{{ID: "P1"}, {ID: "P2"}})
	s.UpsertVote(models.Vote{IssueID: "I1", PlayerID: "P1"})
	s.UpsertVote(models.Vote{IssueID: "I1", PlayerID: "P2"})
	s.UpsertConfidenceVote(models.ConfidenceVote{PlayerID: "P1", Value: 3})

	s.RemovePlayer("P1")
	s.RemovePlayerVotes("P1")
	s.RemovePlayer("ghost")

	assert.Len(t, s.Players(), 1)
	assert.Len(t, s.Votes(), 1)
	assert.Empty(t, s.ConfidenceVotes())
}

func TestGettersReturnCopies(t *testing.T) {
	s := NewStore()
	s.SetGame(&models.Game{ID: "g", Name: "before"})
	g := s.Game()
	g.Name = "after"
	assert.Equal(t, "before", s.Game().Name)

	s.SetPlayers([]models.Player{{ID: "P1", Name: "a"}})
	players := s.Players()
	players[0].Name = "b"
	p, _ := s.Player("P1")
	assert.Equal(t, "a", p.Name)
}

func TestRoundSummary(t *testing.T) {
	s := NewStore()
	game := models.Game{ID: "g1", Status: models.GameStatusVoting, CurrentIssueID: strPtr("I1")}
	game.FunFeatures = true
	s.SetGame(&game)
	s.SetIssues([]models.Issue{{ID: "I1", GameID: "g1"}})
	s.SetVotes([]models.Vote{{IssueID: "I1", PlayerID: "P1", Value: "3"}, {IssueID: "I1", PlayerID: "P2", Value: "3"}})

	catalog := scoring.MemeCatalog{
		scoring.MemeConsensus: {{Src: "agree.gif", Alt: "agree"}},
		scoring.MemeChaos:     {{Src: "fire.gif", Alt: "fire"}},
	}
	first := func(int) int { return 0 }

	assert.Nil(t, s.Meme(catalog, first), "no meme before reveal")
	assert.True(t, s.Consensus())
	assert.Zero(t, s.Spread())

	game.Status = models.GameStatusRevealed
	s.SetGame(&game)
	m := s.Meme(catalog, first)
	require.NotNil(t, m)
	assert.Equal(t, "agree.gif", m.Src)

	s.UpsertVote(models.Vote{IssueID: "I1", PlayerID: "P2", Value: "13"})
	assert.False(t, s.Consensus())
	assert.Equal(t, 10.0, s.Spread())
	assert.Equal(t, "fire.gif", s.Meme(catalog, first).Src)
	card := s.SuggestedCard()
	require.NotNil(t, card)
	assert.Equal(t, 8, *card)

	game.FunFeatures = false
	s.SetGame(&game)
	assert.Nil(t, s.Meme(catalog, first))
}
