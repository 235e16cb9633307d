package floorplan

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CommitRequest is a finished drag ready to be persisted.
type CommitRequest struct {
	EntityID string  `json:"entityId"`
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Rotation float64 `json:"rotation"`
}

// Update converts the request into the writer payload.
func (r CommitRequest) Update() PositionUpdate {
	return PositionUpdate{X: r.X, Y: r.Y, Rotation: r.Rotation}
}

// PositionUpdate is the persisted part of a move.
type PositionUpdate struct {
	X        int     `json:"x"`
	Y        int     `json:"y"`
	Rotation float64 `json:"rotation"`
}

// EntitySource lists the tables of one hall.
type EntitySource interface {
	ListEntities(ctx context.Context, containerID string) ([]Entity, error)
}

// PositionWriter persists a table position.
type PositionWriter interface {
	UpdatePosition(ctx context.Context, entityID string, u PositionUpdate) error
}

// CommitResult is handed to the completion callback.
type CommitResult struct {
	Request CommitRequest
	Err     error
}

// Committer sends commits to a PositionWriter without blocking the
// caller. It never retries and never rolls anything back: the caller
// learns about failures through the callback and re-reads.
type Committer struct {
	writer  PositionWriter
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
}

// NewCommitter creates a Committer. A zero timeout means 10 seconds.
func NewCommitter(writer PositionWriter, timeout time.Duration, logger *zap.Logger) *Committer {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Committer{writer: writer, timeout: timeout, logger: logger}
}

// Dispatch starts the write and returns immediately. done may be nil.
func (c *Committer) Dispatch(req CommitRequest, done func(CommitResult)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		err := c.writer.UpdatePosition(ctx, req.EntityID, req.Update())
		if err != nil {
			c.logger.Warn("position commit failed",
				zap.String("table_id", req.EntityID),
				zap.Int("x", req.X),
				zap.Int("y", req.Y),
				zap.Error(err))
		} else {
			c.logger.Debug("position committed",
				zap.String("table_id", req.EntityID),
				zap.Int("x", req.X),
				zap.Int("y", req.Y))
		}
		if done != nil {
			done(CommitResult{Request: req, Err: err})
		}
	}()
}

// Wait blocks until every dispatched commit has finished.
func (c *Committer) Wait() {
	c.wg.Wait()
}
