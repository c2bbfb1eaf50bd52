// internal/room/room.go
package room

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/daketi/internal/cache"
	"github.com/jason-s-yu/daketi/internal/database"
	"github.com/jason-s-yu/daketi/internal/game"
	"github.com/jason-s-yu/daketi/internal/models"
	"github.com/sirupsen/logrus"
)

const recordTimeout = 5 * time.Second

// Room owns one game and the sessions bound to its seats. Every game
// mutation happens under Mu, so actions in a room never interleave.
//
// Accepted actions run through a two-step pipeline: the animation event goes
// out at once, then after the animation delay a settle step broadcasts the
// new state and, if a bot is now current, plays its move and schedules the
// next settle step. Steps carry a sequence number so a step made obsolete by
// a later schedule (or by eviction) does nothing when its timer fires.
type Room struct {
	Code string
	Game *game.DaketiGame
	Mu   sync.Mutex

	store *RoomStore
	log   *logrus.Entry

	step        uint64
	pending     bool
	finished    bool
	closed      bool
	actionIndex int
	lastActive  time.Time
}

func newRoom(code string, g *game.DaketiGame, store *RoomStore) *Room {
	return &Room{
		Code:  code,
		Game:  g,
		store: store,
		log: store.opts.Logger.WithFields(logrus.Fields{
			"room": code,
			"game": g.ID,
		}),
	}
}

func (r *Room) join(sessionID uuid.UUID, playerName, persistentID string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed {
		return ErrRoomNotFound
	}

	g := r.Game
	seat := g.SeatByPersistentID(persistentID)
	reconnect := seat != nil
	if seat == nil {
		seat = g.FirstVacantSeat()
	}
	if seat == nil {
		return ErrRoomFull
	}
	if persistentID == "" {
		persistentID = uuid.NewString()
	}

	prev := seat.SessionID
	seat.Bind(sessionID, persistentID, playerName)
	r.lastActive = r.store.now()

	entry := r.log.WithFields(logrus.Fields{"seat": seat.ID, "name": seat.Name, "reconnect": reconnect})
	if prev != uuid.Nil && prev != sessionID {
		entry = entry.WithField("superseded", prev)
	}
	entry.Info("seat bound")

	r.send(sessionID, game.RoomJoinedEvent(r.Code, seat.ID, seat.PersistentID, g.GetPublicState(seat.ID)))
	if r.finished {
		r.send(sessionID, game.GameOverEvent(g))
		return nil
	}
	for _, p := range g.Players {
		if p.Connected() && p.ID != seat.ID {
			r.send(p.SessionID, game.StateUpdateEvent(g.GetPublicState(p.ID)))
		}
	}
	return nil
}

// HandleAction applies a human move for the seat bound to sessionID.
// Illegal moves leave the game untouched and return the reason; callers
// are expected to drop them silently.
func (r *Room) HandleAction(sessionID uuid.UUID, action models.GameAction) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	if r.closed || r.finished {
		return fmt.Errorf("%w: game is over", game.ErrInvalidAction)
	}
	seat := r.Game.SeatBySession(sessionID)
	if seat == nil {
		return ErrNotSeated
	}
	if r.pending {
		return ErrAnimationPending
	}

	res, err := r.Game.Apply(seat.ID, action)
	if err != nil {
		r.log.WithFields(logrus.Fields{"seat": seat.ID, "action": action.ActionType}).WithError(err).Debug("action ignored")
		return err
	}
	r.lastActive = r.store.now()
	r.acceptLocked(res)
	return nil
}

// ToggleCheat flips the caller's cheat flag and acknowledges the new value.
func (r *Room) ToggleCheat(sessionID uuid.UUID) (bool, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	seat := r.Game.SeatBySession(sessionID)
	if seat == nil {
		return false, ErrNotSeated
	}
	on, err := r.Game.ToggleCheat(seat.ID)
	if err != nil {
		return false, err
	}
	r.log.WithFields(logrus.Fields{"seat": seat.ID, "cheat": on}).Debug("cheat toggled")
	r.send(sessionID, game.CheatStatusEvent(on))
	return on, nil
}

// HandleDisconnect hands the session's seat to the bot policy. If that seat
// is current and nothing is scheduled, a settle step is scheduled so the bot
// moves; a step already in flight reads the new bot flag itself.
func (r *Room) HandleDisconnect(sessionID uuid.UUID) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	seat := r.Game.SeatBySession(sessionID)
	if seat == nil {
		return
	}
	seat.Unbind()
	r.lastActive = r.store.now()
	r.log.WithField("seat", seat.ID).Info("seat released to bot")

	if r.closed || r.finished {
		return
	}
	r.broadcastStateLocked()
	if r.Game.CurrentPlayerIdx == seat.ID && !r.pending && !r.Game.IsGameOver() {
		r.scheduleLocked()
	}
}

// Humans counts seats with a live session.
func (r *Room) Humans() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.humansLocked()
}

// Finished reports whether the game over event has been sent.
func (r *Room) Finished() bool {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.finished
}

func (r *Room) humansLocked() int {
	n := 0
	for _, p := range r.Game.Players {
		if p.Connected() {
			n++
		}
	}
	return n
}

// acceptLocked records an applied action, animates it and schedules the settle step.
func (r *Room) acceptLocked(res *game.ActionResult) {
	r.recordLocked(res)
	r.broadcastLocked(game.AnimationEvent(res))
	r.scheduleLocked()
}

func (r *Room) scheduleLocked() {
	r.step++
	r.pending = true
	step := r.step
	time.AfterFunc(r.store.opts.AnimationDelay, func() {
		r.settle(step)
	})
}

func (r *Room) settle(step uint64) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			r.pending = false
			r.log.WithField("panic", rec).Error("settle step panicked")
		}
	}()

	if r.closed || step != r.step {
		r.log.WithField("step", step).Debug("stale settle step ignored")
		return
	}

	g := r.Game
	if g.IsGameOver() {
		r.finishLocked()
		return
	}
	r.broadcastStateLocked()

	if !g.CurrentPlayer().IsBot {
		r.pending = false
		return
	}
	res, err := g.PlayBotTurn(r.store.opts.Strategy)
	if err != nil {
		r.pending = false
		r.log.WithField("seat", g.CurrentPlayerIdx).WithError(err).Error("bot move rejected")
		return
	}
	r.acceptLocked(res)
}

func (r *Room) finishLocked() {
	r.finished = true
	r.pending = false
	g := r.Game
	r.broadcastLocked(game.GameOverEvent(g))
	r.log.WithField("scores", g.Scores()).Info("game over")

	results := r.store.opts.Results
	if results == nil {
		return
	}
	res := database.GameResult{GameID: g.ID, RoomCode: r.Code}
	for _, p := range g.Players {
		res.Players = append(res.Players, database.PlayerResult{
			Seat:         p.ID,
			Name:         p.Name,
			PersistentID: p.PersistentID,
			IsBot:        p.IsBot,
			Score:        p.Score(),
			PileSize:     len(p.Pile),
		})
	}
	go func(log *logrus.Entry) {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := results.RecordGameResults(ctx, res); err != nil {
			log.WithError(err).Warn("failed to store game results")
		}
	}(r.log)
}

func (r *Room) recordLocked(res *game.ActionResult) {
	idx := r.actionIndex
	r.actionIndex++

	recorder := r.store.opts.Recorder
	if recorder == nil {
		return
	}
	card := res.Details.Card
	payload := map[string]interface{}{
		"card":   string(card.Rank) + string(card.Suit),
		"cardId": card.ID.String(),
	}
	if res.HandIndex != nil {
		payload["handIndex"] = *res.HandIndex
	}
	if a := res.Details.Analysis; a != nil {
		payload["stolen"] = a.StolenCount()
		payload["tableMatched"] = len(a.TableMatch)
		payload["selfMatch"] = a.SelfMatch
	}
	if res.Details.ExtraTurn != nil {
		payload["extraTurn"] = *res.Details.ExtraTurn
	}
	rec := cache.GameActionRecord{
		RoomCode:      r.Code,
		GameID:        r.Game.ID,
		ActionIndex:   idx,
		Seat:          res.Seat,
		ActionType:    string(res.Type),
		ActionPayload: payload,
		Timestamp:     r.store.now().UnixMilli(),
	}
	go func(log *logrus.Entry) {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		defer cancel()
		if err := recorder.PublishGameAction(ctx, rec); err != nil {
			log.WithError(err).Warn("failed to publish game action")
		}
	}(r.log)
}

func (r *Room) send(sessionID uuid.UUID, ev game.GameEvent) {
	ev.RoomCode = r.Code
	r.store.opts.SendFn(sessionID, ev)
}

// broadcastLocked sends the same event to every bound session.
func (r *Room) broadcastLocked(ev game.GameEvent) {
	for _, p := range r.Game.Players {
		if p.Connected() {
			r.send(p.SessionID, ev)
		}
	}
}

// broadcastStateLocked sends each bound session its own sanitized view.
func (r *Room) broadcastStateLocked() {
	for _, p := range r.Game.Players {
		if p.Connected() {
			r.send(p.SessionID, game.StateUpdateEvent(r.Game.GetPublicState(p.ID)))
		}
	}
}

func (r *Room) closeLocked() {
	r.closed = true
	r.pending = false
	r.step++
}
