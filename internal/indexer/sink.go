package indexer

import (
	"context"
	"sync/atomic"
	"time"

	"cosmossdk.io/log"

	"piverse/internal/types"
)

const (
	insertTimeout = 5 * time.Second
	drainTimeout  = 10 * time.Second
)

// BlockWriter persists a committed block.
type BlockWriter interface {
	InsertBlock(ctx context.Context, b types.CommittedBlock) error
}

// Sink queues committed blocks for archiving off the consensus path.
// Publish never blocks; a full queue drops the block with a warning.
type Sink struct {
	w      BlockWriter
	logger log.Logger
	queue  chan types.CommittedBlock

	written atomic.Uint64
	dropped atomic.Uint64
	failed  atomic.Uint64
}

func NewSink(w BlockWriter, logger log.Logger, queueSize int) *Sink {
	if queueSize <= 0 {
		queueSize = 1
	}
	return &Sink{
		w:      w,
		logger: logger.With("module", "indexer"),
		queue:  make(chan types.CommittedBlock, queueSize),
	}
}

func (s *Sink) Publish(b types.CommittedBlock) {
	select {
	case s.queue <- b:
	default:
		s.dropped.Add(1)
		s.logger.Warn("indexer queue full, dropping block", "height", b.Height, "events", b.EventCount())
	}
}

// Run writes queued blocks until ctx is done, then drains what is left.
func (s *Sink) Run(ctx context.Context) {
	for {
		select {
		case b := <-s.queue:
			s.write(ctx, b)
		case <-ctx.Done():
			s.drain()
			return
		}
	}
}

func (s *Sink) drain() {
	ctx, cancel := context.WithTimeout(context.Background(), drainTimeout)
	defer cancel()
	for {
		select {
		case b := <-s.queue:
			s.write(ctx, b)
		default:
			return
		}
	}
}

func (s *Sink) write(ctx context.Context, b types.CommittedBlock) {
	ctx, cancel := context.WithTimeout(ctx, insertTimeout)
	defer cancel()
	if err := s.w.InsertBlock(ctx, b); err != nil {
		s.failed.Add(1)
		s.logger.Error("index block failed", "height", b.Height, "err", err)
		return
	}
	s.written.Add(1)
	s.logger.Debug("indexed block", "height", b.Height, "events", b.EventCount())
}

// Stats reports written, dropped and failed block counts.
func (s *Sink) Stats() (written, dropped, failed uint64) {
	return s.written.Load(), s.dropped.Load(), s.failed.Load()
}
