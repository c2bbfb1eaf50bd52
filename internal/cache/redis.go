// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// DefaultQueueName is the Redis list (queue) name for game action logs.
const DefaultQueueName = "daketi_actions"

// GameActionRecord holds the minimal info needed by the historian service.
type GameActionRecord struct {
	RoomCode      string                 `json:"room_code"`
	GameID        uuid.UUID              `json:"game_id"`
	ActionIndex   int                    `json:"action_index"`
	Seat          int                    `json:"seat"`
	ActionType    string                 `json:"action_type"`
	ActionPayload map[string]interface{} `json:"action_payload"`
	Timestamp     int64                  `json:"timestamp"`
}

// Historian pushes action records onto a Redis list for the historian service to drain.
type Historian struct {
	Rdb       *redis.Client
	QueueName string
}

// ConnectRedis dials addr/db and pings it before returning a client.
func ConnectRedis(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// NewHistorian wraps rdb; a blank queue name falls back to DefaultQueueName.
func NewHistorian(rdb *redis.Client, queueName string) *Historian {
	if queueName == "" {
		queueName = DefaultQueueName
	}
	return &Historian{Rdb: rdb, QueueName: queueName}
}

// PublishGameAction serializes the given record to JSON, then pushes it to the Redis queue.
func (h *Historian) PublishGameAction(ctx context.Context, record GameActionRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal GameActionRecord: %w", err)
	}
	if err := h.Rdb.RPush(ctx, h.QueueName, data).Err(); err != nil {
		return fmt.Errorf("failed to RPush to Redis list '%s': %w", h.QueueName, err)
	}
	return nil
}

// PopGameAction blocks up to timeout for the next record. It returns
// (nil, nil) when the queue stayed empty.
func (h *Historian) PopGameAction(ctx context.Context, timeout time.Duration) (*GameActionRecord, error) {
	res, err := h.Rdb.BLPop(ctx, timeout, h.QueueName).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("BLPop %s: %w", h.QueueName, err)
	}
	if len(res) < 2 {
		return nil, nil
	}
	// res[0] is the queue name and res[1] the payload.
	var rec GameActionRecord
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return nil, fmt.Errorf("invalid action record: %w", err)
	}
	return &rec, nil
}
