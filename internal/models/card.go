// internal/models/card.go
package models

import "github.com/google/uuid"

// Rank is the face of a card: "2".."10", "J", "Q", "K", "A".
type Rank string

// Suit is one of the four French suits.
type Suit string

const (
	Spades   Suit = "♠"
	Hearts   Suit = "♥"
	Clubs    Suit = "♣"
	Diamonds Suit = "♦"
)

const (
	ColorRed   = "red"
	ColorBlack = "black"
)

// Suits and Ranks list every suit and rank in deck-construction order.
var (
	Suits = []Suit{Spades, Hearts, Clubs, Diamonds}
	Ranks = []Rank{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}
)

// Card is a single playing card. It is handled by value and never mutated
// after NewCard; ID stays stable for the card's lifetime so clients can
// correlate DOM nodes and animations.
type Card struct {
	ID    uuid.UUID `json:"id"`
	Rank  Rank      `json:"rank"`
	Suit  Suit      `json:"suit"`
	Value int       `json:"value"`
	Color string    `json:"color"`
}

// NewCard builds a card with a fresh id and its derived value and color.
func NewCard(rank Rank, suit Suit) Card {
	return Card{
		ID:    uuid.New(),
		Rank:  rank,
		Suit:  suit,
		Value: RankValue(rank),
		Color: SuitColor(suit),
	}
}

// RankValue scores a rank: number cards 5, court cards 10, aces 20.
func RankValue(r Rank) int {
	switch r {
	case "J", "Q", "K":
		return 10
	case "A":
		return 20
	default:
		return 5
	}
}

// SuitColor returns "red" for hearts and diamonds, "black" otherwise.
func SuitColor(s Suit) string {
	if s == Hearts || s == Diamonds {
		return ColorRed
	}
	return ColorBlack
}

// SumValues totals the point value of the given cards.
func SumValues(cards []Card) int {
	total := 0
	for _, c := range cards {
		total += c.Value
	}
	return total
}
