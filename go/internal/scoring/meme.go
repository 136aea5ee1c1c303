package scoring

import (
	"math/rand/v2"
	"strconv"
)

// MemeCategory classifies a revealed round for the fun overlay.
type MemeCategory string

const (
	MemeConsensus MemeCategory = "consensus"
	MemeChaos     MemeCategory = "chaos"
	MemeConfused  MemeCategory = "confused"
	MemeBreak     MemeCategory = "break"
	MemeRandom    MemeCategory = "random"
)

// chaosSpread is the spread above which a round counts as chaos.
const chaosSpread = 5

// Meme is one overlay asset.
type Meme struct {
	Src     string `yaml:"src" json:"src"`
	Alt     string `yaml:"alt" json:"alt"`
	Caption string `yaml:"caption,omitempty" json:"caption,omitempty"`
}

// MemeCatalog maps categories to their assets.
type MemeCatalog map[MemeCategory][]Meme

// CategorizeVotes picks the overlay category for a set of revealed values.
// Break beats confused, which beats consensus and chaos; only fibonacci cards count as numeric.
func CategorizeVotes(values []string) MemeCategory {
	if len(values) == 0 {
		return MemeRandom
	}
	for _, v := range values {
		if v == CardBreak || v == CardBreakEmoji {
			return MemeBreak
		}
	}
	for _, v := range values {
		if v == CardUnsure {
			return MemeConfused
		}
	}

	var nums []int
	for _, v := range values {
		if n, ok := fibonacciValue(v); ok {
			nums = append(nums, n)
		}
	}
	if len(nums) == 0 {
		return MemeRandom
	}

	lo, hi := nums[0], nums[0]
	for _, n := range nums[1:] {
		lo = min(lo, n)
		hi = max(hi, n)
	}
	if lo == hi {
		return MemeConsensus
	}
	if hi-lo > chaosSpread {
		return MemeChaos
	}
	return MemeRandom
}

func fibonacciValue(v string) (int, bool) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	for _, f := range fibonacci {
		if f == n {
			return n, true
		}
	}
	return 0, false
}

// SelectMeme picks a random asset for the round's category, or nil when the category is empty.
// pick returns an index in [0, n); nil uses math/rand/v2.
func SelectMeme(values []string, catalog MemeCatalog, pick func(n int) int) *Meme {
	memes := catalog[CategorizeVotes(values)]
	if len(memes) == 0 {
		return nil
	}
	if pick == nil {
		pick = rand.IntN
	}
	m := memes[pick(len(memes))]
	return &m
}
