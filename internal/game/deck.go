package game

import (
	"math/rand/v2"

	"github.com/google/uuid"
	"github.com/jason-s-yu/daketi/internal/models"
)

// NewDeck returns an unshuffled 52-card deck, one card per rank and suit.
func NewDeck() []models.Card {
	deck := make([]models.Card, 0, models.DeckSize)
	for _, s := range models.Suits {
		for _, r := range models.Ranks {
			deck = append(deck, models.NewCard(r, s))
		}
	}
	return deck
}

// ShuffleDeck performs an in-place Fisher-Yates shuffle using rng.
func ShuffleDeck(deck []models.Card, rng *rand.Rand) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// removeAt returns cards without the element at i. The result never shares
// a backing array with the input, so snapshots taken earlier stay intact.
func removeAt(cards []models.Card, i int) []models.Card {
	out := make([]models.Card, 0, len(cards)-1)
	out = append(out, cards[:i]...)
	return append(out, cards[i+1:]...)
}

// removeCards drops every card whose id appears in gone.
func removeCards(cards []models.Card, gone []models.Card) []models.Card {
	ids := make(map[uuid.UUID]struct{}, len(gone))
	for _, c := range gone {
		ids[c.ID] = struct{}{}
	}
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if _, drop := ids[c.ID]; !drop {
			out = append(out, c)
		}
	}
	return out
}

func cloneCards(cards []models.Card) []models.Card {
	out := make([]models.Card, len(cards))
	copy(out, cards)
	return out
}
