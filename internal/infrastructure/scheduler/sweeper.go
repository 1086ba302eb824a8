// Package scheduler runs the deferred-deletion sweep: bot replies are
// scheduled for removal when sent, and the sweeper deletes the due ones
// through the chat transport on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/avolkov/mediaseek/internal/core/domain"
	"github.com/avolkov/mediaseek/internal/core/ports"
	"github.com/avolkov/mediaseek/internal/observability/metrics"
)

// DeletionStore lists and prunes scheduled deletions.
type DeletionStore interface {
	DueDeletions(ctx context.Context, now time.Time, limit int) ([]domain.MessageRef, error)
	Remove(ctx context.Context, ref domain.MessageRef) error
}

type Sweeper struct {
	store     DeletionStore
	transport ports.Transport
	metrics   *metrics.BotMetrics
	logger    *slog.Logger
	service   string

	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewSweeper(store DeletionStore, transport ports.Transport, botMetrics *metrics.BotMetrics, logger *slog.Logger, service string, interval time.Duration, batchSize int) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	if interval <= 0 {
		interval = 30 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Sweeper{
		store:     store,
		transport: transport,
		metrics:   botMetrics,
		logger:    logger,
		service:   service,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Run sweeps on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Sweep(ctx); err != nil {
				s.logger.Error("deletion sweep failed", "error", err)
			}
		}
	}
}

// Sweep deletes every due message once. A failed gateway delete is logged
// and the row is pruned anyway: the message was going to expire on the
// gateway side too, and retrying a 15-minute-old delete forever only blocks
// the schedule.
func (s *Sweeper) Sweep(ctx context.Context) error {
	due, err := s.store.DueDeletions(ctx, s.now(), s.batchSize)
	if err != nil {
		return err
	}

	for _, ref := range due {
		deleteErr := s.transport.DeleteMessage(ctx, ref)
		if deleteErr != nil {
			s.logger.Warn("delete expired reply failed",
				"chat_id", ref.ChatID,
				"message_id", ref.MessageID,
				"error", deleteErr,
			)
		}
		if s.metrics != nil {
			s.metrics.ObserveSweep(s.service, deleteErr)
		}
		if err := s.store.Remove(ctx, ref); err != nil {
			return err
		}
	}
	return nil
}
