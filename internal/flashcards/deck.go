// Package flashcards implements the lesson flashcard cursor.
package flashcards

import "fmt"

// Card is one flashcard as stored in a lesson's quiz file.
type Card struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Deck walks an ordered set of cards one at a time. Like a quiz session it
// is page-lifetime state, owned by a single interaction.
type Deck struct {
	cards   []Card
	current int
	flipped bool
}

// New creates a deck. An empty card list is the caller's empty-state.
func New(cards []Card) (*Deck, error) {
	if len(cards) == 0 {
		return nil, fmt.Errorf("deck has no cards")
	}
	return &Deck{cards: cards}, nil
}

// Len returns the number of cards.
func (d *Deck) Len() int { return len(d.cards) }

// Current returns the index and content of the card being shown.
func (d *Deck) Current() (int, Card) {
	return d.current, d.cards[d.current]
}

// Flipped reports whether the current card is showing its back.
func (d *Deck) Flipped() bool { return d.flipped }

// Flip toggles the current card between front and back.
func (d *Deck) Flip() {
	d.flipped = !d.flipped
}

// Next moves to the following card, front side up. No-op on the last card.
func (d *Deck) Next() {
	if d.current >= len(d.cards)-1 {
		return
	}
	d.current++
	d.flipped = false
}

// Prev moves to the previous card, front side up. No-op on the first card.
func (d *Deck) Prev() {
	if d.current == 0 {
		return
	}
	d.current--
	d.flipped = false
}

// Reset returns to the first card, front side up.
func (d *Deck) Reset() {
	d.current = 0
	d.flipped = false
}
