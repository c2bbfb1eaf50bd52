// internal/handlers/game_server.go
package handlers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jason-s-yu/daketi/internal/game"
	"github.com/jason-s-yu/daketi/internal/room"
	"github.com/sirupsen/logrus"
)

// outBuffer is how many events may queue for one connection before it is
// treated as a stalled client and dropped.
const outBuffer = 64

// Session is one live WebSocket connection. Its ID is the volatile handle
// rooms bind seats to; it changes on every reconnect.
type Session struct {
	ID      uuid.UUID
	Cancel  context.CancelFunc
	OutChan chan game.GameEvent

	mu       sync.Mutex
	roomCode string
	slow     bool
}

// Write queues ev for the write pump without blocking. A full queue cancels
// the session so the read loop tears it down.
func (s *Session) Write(ev game.GameEvent) bool {
	select {
	case s.OutChan <- ev:
		return true
	default:
		s.mu.Lock()
		s.slow = true
		s.mu.Unlock()
		s.Cancel()
		return false
	}
}

// Slow reports whether the session was cut off for falling behind.
func (s *Session) Slow() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.slow
}

// RoomCode returns the room the session last created or joined.
func (s *Session) RoomCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roomCode
}

func (s *Session) setRoomCode(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomCode = code
}

// GameServer holds the room registry and the live sessions it delivers to.
type GameServer struct {
	Rooms  *room.RoomStore
	logger *logrus.Logger

	mu       sync.Mutex
	sessions map[uuid.UUID]*Session
}

// NewGameServer builds the room store with opts, routing its events to sessions.
func NewGameServer(logger *logrus.Logger, opts room.Options) *GameServer {
	gs := &GameServer{
		logger:   logger,
		sessions: make(map[uuid.UUID]*Session),
	}
	opts.Logger = logger
	opts.SendFn = gs.SendTo
	gs.Rooms = room.NewRoomStore(opts)
	return gs
}

// SendTo delivers ev to a live session; events for gone sessions are dropped.
func (gs *GameServer) SendTo(sessionID uuid.UUID, ev game.GameEvent) {
	gs.mu.Lock()
	s := gs.sessions[sessionID]
	gs.mu.Unlock()
	if s == nil {
		return
	}
	if !s.Write(ev) {
		gs.logger.WithFields(logrus.Fields{"session": sessionID, "event": ev.Type}).Warn("outbound queue full, dropping session")
	}
}

// Register creates a session tied to cancel.
func (gs *GameServer) Register(cancel context.CancelFunc) *Session {
	s := &Session{
		ID:      uuid.New(),
		Cancel:  cancel,
		OutChan: make(chan game.GameEvent, outBuffer),
	}
	gs.mu.Lock()
	gs.sessions[s.ID] = s
	gs.mu.Unlock()
	return s
}

// Unregister forgets the session and releases its seat to the bot policy.
func (gs *GameServer) Unregister(s *Session) {
	gs.mu.Lock()
	delete(gs.sessions, s.ID)
	gs.mu.Unlock()
	gs.leaveRoom(s)
}

// SessionCount is the number of live connections.
func (gs *GameServer) SessionCount() int {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	return len(gs.sessions)
}

// leaveRoom unbinds the session from the room it was in, if any.
func (gs *GameServer) leaveRoom(s *Session) {
	code := s.RoomCode()
	if code == "" {
		return
	}
	s.setRoomCode("")
	if r, ok := gs.Rooms.GetRoom(code); ok {
		r.HandleDisconnect(s.ID)
	}
}
