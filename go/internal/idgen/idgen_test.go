package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLengths(t *testing.T) {
	assert.Len(t, GameID(), GameIDLength)
	assert.Len(t, PlayerID(), RowIDLength)
	assert.Len(t, IssueID(), RowIDLength)
	assert.Len(t, VoteID(), RowIDLength)
	assert.Len(t, New(40), 40)
}

func TestAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		assert.True(t, Valid(PlayerID()))
	}
	assert.False(t, Valid(""))
	assert.False(t, Valid("ABC"))
	assert.False(t, Valid("ab-c"))
}

func TestUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 5000; i++ {
		id := PlayerID()
		_, dup := seen[id]
		assert.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}
