// Package historian drains the action queue written by game rooms and
// persists it to Postgres in batches, marking games abandoned once they stop
// producing actions.
package historian

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jason-s-yu/daketi/internal/cache"
	"github.com/jason-s-yu/daketi/internal/database"
	"github.com/sirupsen/logrus"
)

// Source yields queued action records; (nil, nil) means nothing arrived in time.
type Source interface {
	PopGameAction(ctx context.Context, timeout time.Duration) (*cache.GameActionRecord, error)
}

// Sink persists batches and abandonment marks.
type Sink interface {
	InsertGameActions(ctx context.Context, actions []database.GameAction) error
	MarkGameAbandoned(ctx context.Context, gameID uuid.UUID) error
}

// Options tunes batching and the inactivity threshold.
type Options struct {
	BatchSize     int
	FlushDelay    time.Duration
	Inactivity    time.Duration
	PopTimeout    time.Duration
	CheckInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 20
	}
	if o.FlushDelay <= 0 {
		o.FlushDelay = 500 * time.Millisecond
	}
	if o.Inactivity <= 0 {
		o.Inactivity = 10 * time.Minute
	}
	if o.PopTimeout <= 0 {
		o.PopTimeout = 3 * time.Second
	}
	if o.CheckInterval <= 0 {
		o.CheckInterval = time.Minute
	}
	return o
}

// Service moves action records from a Source into a Sink.
type Service struct {
	src    Source
	sink   Sink
	opts   Options
	logger *logrus.Logger

	batchMu sync.Mutex
	batch   []database.GameAction

	// lastActivity tracks map[uuid.UUID]time.Time per game
	lastActivity sync.Map
	now          func() time.Time
}

// NewService wires src to sink.
func NewService(src Source, sink Sink, opts Options, logger *logrus.Logger) *Service {
	opts = opts.withDefaults()
	return &Service{
		src:    src,
		sink:   sink,
		opts:   opts,
		logger: logger,
		batch:  make([]database.GameAction, 0, opts.BatchSize),
		now:    time.Now,
	}
}

// Run blocks until ctx is done, then flushes whatever is still batched.
func (hs *Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(3)
	go func() { defer wg.Done(); hs.readLoop(ctx) }()
	go func() { defer wg.Done(); hs.flushLoop(ctx) }()
	go func() { defer wg.Done(); hs.inactivityLoop(ctx) }()

	hs.logger.Info("daketi-historian service started.")
	wg.Wait()

	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	hs.Flush(flushCtx)
	hs.logger.Info("daketi-historian shut down.")
}

func (hs *Service) readLoop(ctx context.Context) {
	for ctx.Err() == nil {
		rec, err := hs.src.PopGameAction(ctx, hs.opts.PopTimeout)
		if err != nil {
			if ctx.Err() == nil {
				hs.logger.WithError(err).Error("pop game action")
			}
			continue
		}
		if rec == nil {
			continue
		}
		hs.Add(ctx, *rec)
	}
}

func (hs *Service) flushLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.FlushDelay)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.Flush(ctx)
		}
	}
}

// Add batches one record, flushing once the batch is full.
func (hs *Service) Add(ctx context.Context, rec cache.GameActionRecord) {
	hs.lastActivity.Store(rec.GameID, hs.now())

	hs.batchMu.Lock()
	hs.batch = append(hs.batch, toGameAction(rec))
	full := len(hs.batch) >= hs.opts.BatchSize
	hs.batchMu.Unlock()

	if full {
		hs.Flush(ctx)
	}
}

// Flush writes the current batch in one transaction. A failed batch is put
// back in front of anything queued since.
func (hs *Service) Flush(ctx context.Context) {
	hs.batchMu.Lock()
	if len(hs.batch) == 0 {
		hs.batchMu.Unlock()
		return
	}
	pending := hs.batch
	hs.batch = make([]database.GameAction, 0, hs.opts.BatchSize)
	hs.batchMu.Unlock()

	if err := hs.sink.InsertGameActions(ctx, pending); err != nil {
		hs.logger.WithError(err).WithField("count", len(pending)).Error("flush game actions")
		hs.batchMu.Lock()
		hs.batch = append(pending, hs.batch...)
		hs.batchMu.Unlock()
		return
	}
	hs.logger.Debugf("Flushed %d actions to DB.", len(pending))
}

func (hs *Service) inactivityLoop(ctx context.Context) {
	ticker := time.NewTicker(hs.opts.CheckInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			hs.SweepInactive(ctx)
		}
	}
}

// SweepInactive marks every game idle past the threshold as abandoned.
// Games that finish normally are already completed and are left alone by the sink.
func (hs *Service) SweepInactive(ctx context.Context) []uuid.UUID {
	now := hs.now()
	var marked []uuid.UUID
	hs.lastActivity.Range(func(key, val interface{}) bool {
		gameID, ok1 := key.(uuid.UUID)
		last, ok2 := val.(time.Time)
		if !ok1 || !ok2 || now.Sub(last) <= hs.opts.Inactivity {
			return true
		}
		if err := hs.sink.MarkGameAbandoned(ctx, gameID); err != nil {
			hs.logger.WithError(err).WithField("game", gameID).Warn("failed to mark game abandoned")
			return true
		}
		hs.lastActivity.Delete(gameID)
		marked = append(marked, gameID)
		return true
	})
	return marked
}

func toGameAction(rec cache.GameActionRecord) database.GameAction {
	payload := rec.ActionPayload
	if payload == nil {
		payload = map[string]interface{}{}
	}
	return database.GameAction{
		GameID:      rec.GameID,
		RoomCode:    rec.RoomCode,
		ActionIndex: rec.ActionIndex,
		Seat:        rec.Seat,
		ActionType:  rec.ActionType,
		Payload:     payload,
		CreatedAt:   time.UnixMilli(rec.Timestamp),
	}
}
