package game

import (
	"math"

	"github.com/jason-s-yu/daketi/internal/models"
)

// Weights for the cheat-assisted draw. A flagged drawer gets the card with the
// highest favour score; everyone else, while a flagged seat exists, gets the
// card with the lowest guard penalty.
const (
	favourStealBonus   = 1000
	favourStealPerCard = 50
	favourSelfBonus    = 500
	favourTableBonus   = 200

	guardCheaterPenalty = 10000
	guardSelfPenalty    = 1000
	guardTablePenalty   = 500
	guardStealPenalty   = 300
)

// drawIndex picks which deck position seat draws from. Without any flagged
// seat this is always the top of the deck.
func (g *DaketiGame) drawIndex(seat int) int {
	if g.Players[seat].IsCheater {
		return g.favouredDrawIndex(seat)
	}
	if protected := g.protectedCheater(seat); protected != nil {
		return g.guardedDrawIndex(seat, protected)
	}
	return len(g.Deck) - 1
}

// protectedCheater returns the lowest flagged seat other than seat.
// Only one cheater is protected at a time.
func (g *DaketiGame) protectedCheater(seat int) *models.Player {
	for _, p := range g.Players {
		if p.ID != seat && p.IsCheater {
			return p
		}
	}
	return nil
}

// favourScore rates how much card would help seat right now.
func (g *DaketiGame) favourScore(seat int, card models.Card) int {
	a := Analyze(g.FaceUpCards, g.Players, seat, card)
	score := card.Value
	if len(a.StealTargets) > 0 {
		score += favourStealBonus + favourStealPerCard*a.StolenCount()
	}
	if a.SelfMatch {
		score += favourSelfBonus
	}
	if len(a.TableMatch) > 0 {
		score += favourTableBonus
	}
	return score
}

// guardPenalty rates how much card would help seat, weighted heavily against
// anything that threatens the protected seat's pile.
func (g *DaketiGame) guardPenalty(seat int, protected *models.Player, card models.Card) int {
	penalty := card.Value
	if top, ok := protected.PileTop(); ok && top.Rank == card.Rank {
		penalty += guardCheaterPenalty
	}
	a := Analyze(g.FaceUpCards, g.Players, seat, card)
	if a.SelfMatch {
		penalty += guardSelfPenalty
	}
	if len(a.TableMatch) > 0 {
		penalty += guardTablePenalty
	}
	if len(a.StealTargets) > 0 {
		penalty += guardStealPenalty
	}
	return penalty
}

// favouredDrawIndex scans the whole deck from the top down; ties keep the
// card nearest the top.
func (g *DaketiGame) favouredDrawIndex(seat int) int {
	best, bestScore := len(g.Deck)-1, math.MinInt
	for i := len(g.Deck) - 1; i >= 0; i-- {
		if s := g.favourScore(seat, g.Deck[i]); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

func (g *DaketiGame) guardedDrawIndex(seat int, protected *models.Player) int {
	best, bestPenalty := len(g.Deck)-1, math.MaxInt
	for i := len(g.Deck) - 1; i >= 0; i-- {
		if p := g.guardPenalty(seat, protected, g.Deck[i]); p < bestPenalty {
			best, bestPenalty = i, p
		}
	}
	return best
}

// ToggleCheat flips the seat's cheat flag and returns the new value.
func (g *DaketiGame) ToggleCheat(seat int) (bool, error) {
	p := g.Player(seat)
	if p == nil {
		return false, ErrInvalidAction
	}
	p.IsCheater = !p.IsCheater
	return p.IsCheater, nil
}
