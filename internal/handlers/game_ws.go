// internal/handlers/game_ws.go
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/jason-s-yu/daketi/internal/game"
	"github.com/jason-s-yu/daketi/internal/middleware"
	"github.com/jason-s-yu/daketi/internal/models"
	"github.com/jason-s-yu/daketi/internal/room"
	"github.com/sirupsen/logrus"
)

// Subprotocol is the only WebSocket subprotocol the game endpoint speaks.
const Subprotocol = "daketi"

// ClientMessage is the envelope for every inbound WebSocket message.
type ClientMessage struct {
	Type string `json:"type"`

	RoomCode     string             `json:"roomCode,omitempty"`
	PlayerName   string             `json:"playerName,omitempty"`
	PersistentID string             `json:"persistentId,omitempty"`
	Config       *models.GameConfig `json:"config,omitempty"`

	// action
	Action  models.ActionType `json:"action,omitempty"`
	Payload *ActionPayload    `json:"payload,omitempty"`
}

// ActionPayload carries the hand position for DISCARD and CAPTURE.
type ActionPayload struct {
	HandIndex *int `json:"handIndex,omitempty"`
}

// GameWSHandler upgrades the connection, registers a session and runs the
// read loop until the client goes away. The session's seat, if any, is handed
// to the bot policy on exit.
func GameWSHandler(logger *logrus.Logger, gs *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{Subprotocol},
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warnf("WebSocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "Internal server error during handler exit.")

		if c.Subprotocol() != Subprotocol {
			logger.Warnf("Client %s connected with invalid subprotocol: %q", r.RemoteAddr, c.Subprotocol())
			c.Close(BadSubprotocolError, fmt.Sprintf("Client must use the '%s' subprotocol.", Subprotocol))
			return
		}
		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sess := gs.Register(cancel)
		go writePump(ctx, c, sess, logger)

		err = readPump(ctx, c, gs, sess, logger)

		gs.Unregister(sess)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, err)
		if sess.Slow() {
			c.Close(SlowConsumerError, "Too far behind on game events.")
			return
		}
		c.Close(websocket.StatusNormalClosure, "")
	}
}

// readPump reads client messages until the connection or ctx ends.
// It returns the read error unless the close was a normal one.
func readPump(ctx context.Context, c *websocket.Conn, gs *GameServer, sess *Session, logger *logrus.Logger) error {
	for {
		msgType, data, err := c.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		if msgType != websocket.MessageText {
			logger.Warnf("Received non-text message type %d from session %s. Ignoring.", msgType, sess.ID)
			continue
		}

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("Invalid JSON received from session %s: %v", sess.ID, err)
			sess.Write(game.ErrorEvent("Invalid JSON format."))
			continue
		}
		logger.WithFields(logrus.Fields{"session": sess.ID, "type": msg.Type}).Trace("received message")
		gs.dispatch(sess, msg)
	}
}

// dispatch routes one inbound message. Illegal game actions are dropped
// without a reply; only room lookup failures are reported back.
func (gs *GameServer) dispatch(sess *Session, msg ClientMessage) {
	switch msg.Type {
	case "createRoom":
		cfg := models.GameConfig{}
		if msg.Config != nil {
			cfg = *msg.Config
		}
		gs.leaveRoom(sess)
		r, err := gs.Rooms.CreateRoom(sess.ID, msg.PlayerName, msg.PersistentID, cfg)
		if err != nil {
			sess.Write(game.ErrorEvent(err.Error()))
			return
		}
		sess.setRoomCode(r.Code)

	case "joinRoom":
		gs.leaveRoom(sess)
		r, err := gs.Rooms.JoinRoom(msg.RoomCode, sess.ID, msg.PlayerName, msg.PersistentID)
		if err != nil {
			sess.Write(game.ErrorEvent(err.Error()))
			return
		}
		sess.setRoomCode(r.Code)

	case "action":
		r, ok := gs.sessionRoom(sess, msg.RoomCode)
		if !ok {
			return
		}
		action := models.GameAction{ActionType: msg.Action}
		if msg.Payload != nil {
			action.HandIndex = msg.Payload.HandIndex
		}
		// rejected actions are logged by the room and otherwise ignored
		_ = r.HandleAction(sess.ID, action)

	case "toggleCheat":
		r, ok := gs.sessionRoom(sess, msg.RoomCode)
		if !ok {
			return
		}
		_, _ = r.ToggleCheat(sess.ID)

	case "ping":
		sess.Write(game.GameEvent{Type: game.EventPong})

	default:
		gs.logger.Warnf("Unknown message type '%s' from session %s.", msg.Type, sess.ID)
		sess.Write(game.ErrorEvent(fmt.Sprintf("Unknown message type: %s", msg.Type)))
	}
}

// sessionRoom resolves the room a message addresses: the named room if given,
// else the session's current one.
func (gs *GameServer) sessionRoom(sess *Session, code string) (*room.Room, bool) {
	if code == "" {
		code = sess.RoomCode()
	}
	if code == "" {
		return nil, false
	}
	return gs.Rooms.GetRoom(code)
}

// writePump drains the session queue onto the socket and pings idle clients.
func writePump(ctx context.Context, c *websocket.Conn, sess *Session, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-sess.OutChan:
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err := wsjson.Write(writeCtx, c, ev)
			cancel()
			if err != nil {
				logger.Warnf("Failed to write %s to session %s: %v", ev.Type, sess.ID, err)
				sess.Cancel()
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("Failed to ping session %s: %v. Assuming disconnect.", sess.ID, err)
				sess.Cancel()
				return
			}
		}
	}
}
