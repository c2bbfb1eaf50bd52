package models

import (
	"github.com/google/uuid"
)

// Player is one seat at the table. ID is the 0-based seat index and never
// changes. SessionID is the volatile connection handle (uuid.Nil when no
// live connection is bound); PersistentID identifies the human across
// reconnects and is never cleared once set.
type Player struct {
	ID           int       `json:"id"`
	Name         string    `json:"name"`
	IsBot        bool      `json:"isBot"`
	Hand         []Card    `json:"hand"`
	Pile         []Card    `json:"pile"`
	SessionID    uuid.UUID `json:"-"`
	PersistentID string    `json:"-"`
	IsCheater    bool      `json:"-"`
}

// NewBotPlayer returns an unbound seat controlled by the bot policy.
func NewBotPlayer(seat int, name string) *Player {
	return &Player{
		ID:    seat,
		Name:  name,
		IsBot: true,
		Hand:  []Card{},
		Pile:  []Card{},
	}
}

// Bind attaches a live session to the seat and hands control back to a human.
// A blank name keeps the current one.
func (p *Player) Bind(sessionID uuid.UUID, persistentID, name string) {
	p.SessionID = sessionID
	if persistentID != "" {
		p.PersistentID = persistentID
	}
	if name != "" {
		p.Name = name
	}
	p.IsBot = sessionID == uuid.Nil
}

// Unbind drops the live session; the bot policy takes over the seat.
// PersistentID is kept so the human can reclaim the seat later.
func (p *Player) Unbind() {
	p.SessionID = uuid.Nil
	p.IsBot = true
}

// Connected reports whether a live session controls this seat.
func (p *Player) Connected() bool {
	return p.SessionID != uuid.Nil
}

// IsVacant reports whether the seat was never claimed by a human.
func (p *Player) IsVacant() bool {
	return p.IsBot && p.PersistentID == ""
}

// Score is the total value of the captured pile.
func (p *Player) Score() int {
	return SumValues(p.Pile)
}

// PileTop returns the most recently captured card.
func (p *Player) PileTop() (Card, bool) {
	if len(p.Pile) == 0 {
		return Card{}, false
	}
	return p.Pile[len(p.Pile)-1], true
}
