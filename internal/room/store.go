// internal/room/store.go
package room

import (
	"context"
	"errors"
	"math/rand/v2"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/daketi/internal/cache"
	"github.com/jason-s-yu/daketi/internal/database"
	"github.com/jason-s-yu/daketi/internal/game"
	"github.com/jason-s-yu/daketi/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrRoomNotFound = errors.New("Room Not Found")
	ErrRoomFull     = errors.New("Room Full")

	// ErrNotSeated means the session holds no seat in the addressed room.
	ErrNotSeated = errors.New("session is not seated in this room")
	// ErrAnimationPending rejects human input while a settle step is scheduled.
	ErrAnimationPending = errors.New("animation pending")
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 4
)

// SendFunc delivers one event to one session. It is called with the room lock
// held and must not block or call back into the room.
type SendFunc func(sessionID uuid.UUID, ev game.GameEvent)

// ActionRecorder receives every accepted action.
type ActionRecorder interface {
	PublishGameAction(ctx context.Context, record cache.GameActionRecord) error
}

// ResultRecorder receives the final standings of every finished game.
type ResultRecorder interface {
	RecordGameResults(ctx context.Context, res database.GameResult) error
}

// Options configures a RoomStore. Zero values are usable: no delay, no
// recording, events dropped.
type Options struct {
	AnimationDelay time.Duration
	IdleTTL        time.Duration
	Logger         *logrus.Logger
	Recorder       ActionRecorder
	Results        ResultRecorder
	SendFn         SendFunc
	Strategy       game.Strategy
}

// RoomStore maps room codes to live rooms.
type RoomStore struct {
	mu    sync.Mutex
	rooms map[string]*Room
	opts  Options
	now   func() time.Time
}

// NewRoomStore returns an empty store.
func NewRoomStore(opts Options) *RoomStore {
	if opts.Logger == nil {
		opts.Logger = logrus.StandardLogger()
	}
	if opts.SendFn == nil {
		opts.SendFn = func(uuid.UUID, game.GameEvent) {}
	}
	if opts.Strategy == nil {
		opts.Strategy = game.GreedyStrategy{}
	}
	return &RoomStore{
		rooms: make(map[string]*Room),
		opts:  opts,
		now:   time.Now,
	}
}

// NormalizeCode upper-cases and trims a user-typed room code.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func newCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(b)
}

// CreateRoom deals a new game, binds seat 0 to the caller and sends it roomJoined.
// A blank persistentID is replaced with a generated one.
func (s *RoomStore) CreateRoom(sessionID uuid.UUID, playerName, persistentID string, cfg models.GameConfig) (*Room, error) {
	g, err := game.NewDaketiGame(cfg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	code := newCode()
	for s.rooms[code] != nil {
		code = newCode()
	}
	r := newRoom(code, g, s)
	s.rooms[code] = r
	s.mu.Unlock()

	r.Mu.Lock()
	defer r.Mu.Unlock()
	if persistentID == "" {
		persistentID = uuid.NewString()
	}
	g.Players[0].Bind(sessionID, persistentID, playerName)
	r.lastActive = s.now()
	r.log.WithFields(logrus.Fields{"players": g.Config.NumPlayers, "handSize": g.Config.HandSize, "faceUpSize": g.Config.FaceUpSize}).Info("room created")
	s.opts.SendFn(sessionID, game.RoomJoinedEvent(code, 0, persistentID, g.GetPublicState(0)))
	return r, nil
}

// JoinRoom binds the caller to a seat: the one its persistentID already holds,
// else the first seat no human ever claimed.
func (s *RoomStore) JoinRoom(code string, sessionID uuid.UUID, playerName, persistentID string) (*Room, error) {
	r, ok := s.GetRoom(code)
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := r.join(sessionID, playerName, persistentID); err != nil {
		return nil, err
	}
	return r, nil
}

// GetRoom looks a room up case-insensitively.
func (s *RoomStore) GetRoom(code string) (*Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[NormalizeCode(code)]
	return r, ok
}

// DeleteRoom removes the room and invalidates any pending settle step.
func (s *RoomStore) DeleteRoom(code string) {
	s.mu.Lock()
	r, ok := s.rooms[NormalizeCode(code)]
	delete(s.rooms, NormalizeCode(code))
	s.mu.Unlock()
	if !ok {
		return
	}
	r.Mu.Lock()
	r.closeLocked()
	r.Mu.Unlock()
	r.log.Info("room deleted")
}

// Sweep evicts rooms nobody is connected to: finished rooms at once, others
// after IdleTTL without a bound session. It returns the evicted codes.
func (s *RoomStore) Sweep(now time.Time) []string {
	s.mu.Lock()
	candidates := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		candidates = append(candidates, r)
	}
	s.mu.Unlock()

	var evicted []string
	for _, r := range candidates {
		r.Mu.Lock()
		idle := r.humansLocked() == 0 && (r.finished || (s.opts.IdleTTL > 0 && now.Sub(r.lastActive) >= s.opts.IdleTTL))
		r.Mu.Unlock()
		if idle {
			s.DeleteRoom(r.Code)
			evicted = append(evicted, r.Code)
		}
	}
	sort.Strings(evicted)
	return evicted
}

// RunJanitor sweeps every interval until ctx is done.
func (s *RoomStore) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if evicted := s.Sweep(now); len(evicted) > 0 {
				s.opts.Logger.WithField("rooms", evicted).Info("janitor evicted idle rooms")
			}
		}
	}
}

// Summary is the public listing entry for one room.
type Summary struct {
	RoomCode   string `json:"roomCode"`
	NumPlayers int    `json:"numPlayers"`
	Humans     int    `json:"humans"`
	DeckCount  int    `json:"deckCount"`
	GameOver   bool   `json:"gameOver"`
}

// Rooms lists every live room ordered by code.
func (s *RoomStore) Rooms() []Summary {
	s.mu.Lock()
	rooms := make([]*Room, 0, len(s.rooms))
	for _, r := range s.rooms {
		rooms = append(rooms, r)
	}
	s.mu.Unlock()

	out := make([]Summary, 0, len(rooms))
	for _, r := range rooms {
		r.Mu.Lock()
		out = append(out, Summary{
			RoomCode:   r.Code,
			NumPlayers: len(r.Game.Players),
			Humans:     r.humansLocked(),
			DeckCount:  len(r.Game.Deck),
			GameOver:   r.Game.IsGameOver(),
		})
		r.Mu.Unlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoomCode < out[j].RoomCode })
	return out
}
