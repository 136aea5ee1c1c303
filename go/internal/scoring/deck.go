// Package scoring holds the deterministic vote arithmetic shared by the reveal write path and
// every client's read-side aggregates.
package scoring

const (
	CardUnsure = "?"
	CardBreak  = "coffee"
	// CardBreakEmoji is accepted as an alias of CardBreak when classifying votes.
	CardBreakEmoji = "☕"
)

// Card is one selectable estimate.
type Card struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
}

// Deck is the enumerated card set votes are validated against.
type Deck struct {
	Cards []Card `yaml:"cards" json:"cards"`
}

// DefaultDeck is the fibonacci deck plus the unsure and break cards.
func DefaultDeck() Deck {
	return Deck{Cards: []Card{
		{Value: "0", Label: "0"},
		{Value: "1", Label: "1"},
		{Value: "2", Label: "2"},
		{Value: "3", Label: "3"},
		{Value: "5", Label: "5"},
		{Value: "8", Label: "8"},
		{Value: "13", Label: "13"},
		{Value: "21", Label: "21"},
		{Value: "34", Label: "34"},
		{Value: "55", Label: "55"},
		{Value: "89", Label: "89"},
		{Value: CardUnsure, Label: "?"},
		{Value: CardBreak, Label: CardBreakEmoji},
	}}
}

// Contains reports whether value is one of the deck's cards.
func (d Deck) Contains(value string) bool {
	for _, c := range d.Cards {
		if c.Value == value {
			return true
		}
	}
	return false
}

// Values lists the card values in deck order.
func (d Deck) Values() []string {
	out := make([]string, len(d.Cards))
	for i, c := range d.Cards {
		out[i] = c.Value
	}
	return out
}
