package game

import (
	"github.com/jason-s-yu/daketi/internal/models"
)

// GameEventType is an enum-like type for the events pushed to clients.
type GameEventType string

const (
	EventRoomJoined  GameEventType = "roomJoined"
	EventStateUpdate GameEventType = "stateUpdate"
	EventAnimation   GameEventType = "animation"
	EventGameOver    GameEventType = "gameOver"
	EventError       GameEventType = "error"
	EventCheatStatus GameEventType = "cheatStatus"
	EventPong        GameEventType = "pong"
)

// GameEvent holds data about an event that can be sent to clients in a consistent format.
type GameEvent struct {
	Type GameEventType `json:"type"`

	RoomCode     string `json:"roomCode,omitempty"`
	SeatID       *int   `json:"seatId,omitempty"`
	PersistentID string `json:"persistentId,omitempty"`

	State *PublicState `json:"state,omitempty"`

	// animation
	Action  models.ActionType `json:"action,omitempty"`
	Details *AnimationDetails `json:"details,omitempty"`

	// gameOver
	Players []models.Player `json:"players,omitempty"`
	Scores  []int           `json:"scores,omitempty"`

	Message string `json:"message,omitempty"`
	Cheat   *bool  `json:"cheat,omitempty"`
}

// RoomJoinedEvent confirms a seat binding to the joining session.
func RoomJoinedEvent(roomCode string, seat int, persistentID string, state PublicState) GameEvent {
	return GameEvent{
		Type:         EventRoomJoined,
		RoomCode:     roomCode,
		SeatID:       &seat,
		PersistentID: persistentID,
		State:        &state,
	}
}

// StateUpdateEvent wraps one recipient's sanitized view.
func StateUpdateEvent(state PublicState) GameEvent {
	return GameEvent{Type: EventStateUpdate, State: &state}
}

// AnimationEvent describes what moved during res.
func AnimationEvent(res *ActionResult) GameEvent {
	seat := res.Seat
	details := res.Details
	return GameEvent{
		Type:    EventAnimation,
		SeatID:  &seat,
		Action:  res.Type,
		Details: &details,
	}
}

// GameOverEvent carries every seat, piles included, plus final scores.
func GameOverEvent(g *DaketiGame) GameEvent {
	return GameEvent{
		Type:    EventGameOver,
		Players: g.FinalPlayers(),
		Scores:  g.Scores(),
	}
}

// ErrorEvent reports a failure back to the requesting connection only.
func ErrorEvent(msg string) GameEvent {
	return GameEvent{Type: EventError, Message: msg}
}

// CheatStatusEvent acknowledges a cheat toggle.
func CheatStatusEvent(enabled bool) GameEvent {
	return GameEvent{Type: EventCheatStatus, Cheat: &enabled}
}
