package scoring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAverage(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   *float64
	}{
		{"mixed", []string{"3", "5", "8"}, ptr(5.3)},
		{"ignores non numeric", []string{"3", "5", "?", "coffee"}, ptr(4)},
		{"reveal example", []string{"5", "5", "8"}, ptr(6)},
		{"only non numeric", []string{"?", "coffee"}, nil},
		{"empty", nil, nil},
		{"single", []string{"13"}, ptr(13)},
		{"rejects nan", []string{"NaN", "Inf", "2"}, ptr(2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Average(tt.values)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.want, *got, 1e-9)
		})
	}
}

func TestRound1(t *testing.T) {
	assert.Equal(t, 0.3, Round1(0.25))
	assert.Equal(t, -0.3, Round1(-0.25))
	assert.Equal(t, 2.7, Round1(8.0/3))
	z := Round1(-0.04)
	assert.Equal(t, 0.0, z)
	assert.False(t, math.Signbit(z))
}

func TestAverageInts(t *testing.T) {
	assert.Nil(t, AverageInts(nil))
	got := AverageInts([]int{1, 2, 2})
	require.NotNil(t, got)
	assert.Equal(t, 1.7, *got)
}

func TestClosestFibonacci(t *testing.T) {
	assert.Equal(t, 5, ClosestFibonacci(5.3))
	assert.Equal(t, 8, ClosestFibonacci(7))
	// 4 sits between 3 and 5; the smaller card wins the tie.
	assert.Equal(t, 3, ClosestFibonacci(4))
	assert.Equal(t, 89, ClosestFibonacci(200))
	assert.Equal(t, 0, ClosestFibonacci(-3))
}

func TestConsensusAndSpread(t *testing.T) {
	assert.False(t, HasConsensus([]string{"5"}))
	assert.True(t, HasConsensus([]string{"5", "5"}))
	assert.False(t, HasConsensus([]string{"5", "8"}))
	assert.True(t, HasConsensus([]string{"?", "?"}))

	assert.Equal(t, 0.0, VoteSpread([]string{"5", "?"}))
	assert.Equal(t, 10.0, VoteSpread([]string{"3", "13", "coffee"}))
}

func TestCategorizeVotes(t *testing.T) {
	tests := []struct {
		values []string
		want   MemeCategory
	}{
		{nil, MemeRandom},
		{[]string{"5", "coffee", "?"}, MemeBreak},
		{[]string{"5", "☕"}, MemeBreak},
		{[]string{"5", "?"}, MemeConfused},
		{[]string{"8", "8", "8"}, MemeConsensus},
		{[]string{"8"}, MemeConsensus},
		{[]string{"1", "13"}, MemeChaos},
		{[]string{"3", "8"}, MemeRandom},
		{[]string{"4"}, MemeRandom},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategorizeVotes(tt.values), "%v", tt.values)
	}
}

func TestSelectMeme(t *testing.T) {
	catalog := MemeCatalog{
		MemeConsensus: {{Src: "/memes/01.jpg"}, {Src: "/memes/02.jpg"}},
	}
	m := SelectMeme([]string{"5", "5"}, catalog, func(n int) int { return n - 1 })
	require.NotNil(t, m)
	assert.Equal(t, "/memes/02.jpg", m.Src)

	assert.Nil(t, SelectMeme([]string{"1", "89"}, catalog, nil))
}

func TestDeck(t *testing.T) {
	d := DefaultDeck()
	assert.True(t, d.Contains("13"))
	assert.True(t, d.Contains("coffee"))
	assert.False(t, d.Contains("4"))
	assert.Len(t, d.Values(), 13)
}

func ptr(f float64) *float64 { return &f }
