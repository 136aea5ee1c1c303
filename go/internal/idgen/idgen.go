// Package idgen produces short URL-safe identifiers for games and their rows.
package idgen

import (
	"github.com/google/uuid"
)

const (
	Alphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

	GameIDLength = 8
	RowIDLength  = 12
)

// New returns a random identifier of length n drawn from Alphabet. Randomness comes from
// version 4 UUIDs; bytes at or above the largest multiple of the alphabet size are rejected so
// every character is equally likely.
func New(n int) string {
	const limit = 252 // 7 * 36
	out := make([]byte, 0, n)
	for len(out) < n {
		id := uuid.New()
		for i, b := range id {
			// version and variant nibbles are fixed
			if i == 6 || i == 8 {
				continue
			}
			if b >= limit {
				continue
			}
			out = append(out, Alphabet[int(b)%len(Alphabet)])
			if len(out) == n {
				break
			}
		}
	}
	return string(out)
}

func GameID() string   { return New(GameIDLength) }
func PlayerID() string { return New(RowIDLength) }
func IssueID() string  { return New(RowIDLength) }
func VoteID() string   { return New(RowIDLength) }

// Valid reports whether id is a non-empty string over Alphabet.
func Valid(id string) bool {
	if id == "" {
		return false
	}
	for i := 0; i < len(id); i++ {
		c := id[i]
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'z') {
			return false
		}
	}
	return true
}
