package models

// ActionType is a move a seat can request during its turn.
type ActionType string

const (
	ActionDraw    ActionType = "DRAW"
	ActionDiscard ActionType = "DISCARD"
	ActionCapture ActionType = "CAPTURE"
)

// Valid reports whether a is one of the known action types.
func (a ActionType) Valid() bool {
	switch a {
	case ActionDraw, ActionDiscard, ActionCapture:
		return true
	}
	return false
}

// GameAction captures a player's in-game move.
type GameAction struct {
	ActionType ActionType `json:"action"`
	HandIndex  *int       `json:"handIndex,omitempty"`
}
