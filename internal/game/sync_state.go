// internal/game/sync_state.go
package game

import (
	"github.com/google/uuid"
	"github.com/jason-s-yu/daketi/internal/models"
)

// PublicPlayer is one seat as seen by a particular recipient. Hand is only
// populated for the recipient's own seat; everyone else gets HandCount.
type PublicPlayer struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	IsBot     bool          `json:"isBot"`
	Pile      []models.Card `json:"pile"`
	HandCount int           `json:"handCount"`
	Hand      []models.Card `json:"hand"`
	Score     int           `json:"score"`
	Cheat     bool          `json:"cheat,omitempty"`
}

// PublicState is the sanitized snapshot sent in roomJoined and stateUpdate.
// The deck is only ever exposed as a count.
type PublicState struct {
	GameID           uuid.UUID      `json:"gameId"`
	DeckCount        int            `json:"deckCount"`
	FaceUpCards      []models.Card  `json:"faceUpCards"`
	CurrentPlayerIdx int            `json:"currentPlayerIdx"`
	TurnPhase        TurnPhase      `json:"turnPhase"`
	GameOver         bool           `json:"gameOver"`
	Players          []PublicPlayer `json:"players"`
}

// GetPublicState generates a snapshot of the game for the given seat. Pass -1
// for an observer view with no hand revealed. All slices are copies, so the
// snapshot can be marshaled after the room lock is released.
func (g *DaketiGame) GetPublicState(forSeat int) PublicState {
	st := PublicState{
		GameID:           g.ID,
		DeckCount:        len(g.Deck),
		FaceUpCards:      cloneCards(g.FaceUpCards),
		CurrentPlayerIdx: g.CurrentPlayerIdx,
		TurnPhase:        g.TurnPhase,
		GameOver:         g.IsGameOver(),
		Players:          make([]PublicPlayer, 0, len(g.Players)),
	}
	for _, p := range g.Players {
		pp := PublicPlayer{
			ID:        p.ID,
			Name:      p.Name,
			IsBot:     p.IsBot,
			Pile:      cloneCards(p.Pile),
			HandCount: len(p.Hand),
			Score:     p.Score(),
		}
		if p.ID == forSeat {
			pp.Hand = cloneCards(p.Hand)
			pp.Cheat = p.IsCheater
		}
		st.Players = append(st.Players, pp)
	}
	return st
}

// FinalPlayers returns a full copy of every seat for the gameOver event.
func (g *DaketiGame) FinalPlayers() []models.Player {
	out := make([]models.Player, 0, len(g.Players))
	for _, p := range g.Players {
		cp := *p
		cp.Hand = cloneCards(p.Hand)
		cp.Pile = cloneCards(p.Pile)
		out = append(out, cp)
	}
	return out
}
