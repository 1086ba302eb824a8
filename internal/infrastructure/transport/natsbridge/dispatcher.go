package natsbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/avolkov/mediaseek/internal/core/domain"
	"github.com/avolkov/mediaseek/internal/core/ports"
	"github.com/avolkov/mediaseek/internal/core/usecase"
	"github.com/avolkov/mediaseek/internal/observability/metrics"
)

// Dispatcher consumes gateway events and feeds them into the message
// pipeline. Each subscription processes one event at a time; the gateway
// load-balances across replicas via the queue group.
type Dispatcher struct {
	conn     *nats.Conn
	subjects Subjects
	pipeline ports.MessagePipeline
	metrics  *metrics.BotMetrics
	logger   *slog.Logger
	service  string
}

func NewDispatcher(conn *nats.Conn, subjects Subjects, pipeline ports.MessagePipeline, botMetrics *metrics.BotMetrics, logger *slog.Logger, service string) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		conn:     conn,
		subjects: subjects,
		pipeline: pipeline,
		metrics:  botMetrics,
		logger:   logger,
		service:  service,
	}
}

// Run subscribes to the message and action subjects and blocks until ctx is
// cancelled, then drains both subscriptions.
func (d *Dispatcher) Run(ctx context.Context) error {
	msgSub, err := d.conn.QueueSubscribe(d.subjects.Messages, "searchbot", func(msg *nats.Msg) {
		d.handleMessage(ctx, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe messages: %w", err)
	}

	actionSub, err := d.conn.QueueSubscribe(d.subjects.Actions, "searchbot", func(msg *nats.Msg) {
		d.handleAction(ctx, msg.Data)
	})
	if err != nil {
		return fmt.Errorf("subscribe actions: %w", err)
	}

	if err := d.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}
	d.logger.Info("dispatcher started",
		"messages_subject", d.subjects.Messages,
		"actions_subject", d.subjects.Actions,
	)

	<-ctx.Done()
	if err := msgSub.Drain(); err != nil {
		return fmt.Errorf("drain message subscription: %w", err)
	}
	if err := actionSub.Drain(); err != nil {
		return fmt.Errorf("drain action subscription: %w", err)
	}
	if err := d.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func (d *Dispatcher) handleMessage(ctx context.Context, data []byte) {
	if ctx.Err() != nil {
		return
	}

	var event domain.MessageEvent
	if err := json.Unmarshal(data, &event); err != nil {
		d.logger.Warn("drop undecodable message event", "error", err)
		return
	}

	d.observe(ctx, "message", func(handlerCtx context.Context) error {
		return d.pipeline.HandleMessage(handlerCtx, event)
	})
}

func (d *Dispatcher) handleAction(ctx context.Context, data []byte) {
	if ctx.Err() != nil {
		return
	}

	var event domain.ActionEvent
	if err := json.Unmarshal(data, &event); err != nil {
		d.logger.Warn("drop undecodable action event", "error", err)
		return
	}

	prefix, _, ok := strings.Cut(event.Payload, "_")
	if !ok {
		d.logger.Warn("drop action with malformed payload", "payload", event.Payload)
		return
	}

	switch prefix {
	case usecase.ResearchPrefix:
		d.observe(ctx, "research", func(handlerCtx context.Context) error {
			return d.pipeline.HandleResearch(handlerCtx, event)
		})
	case usecase.EscalationPrefix:
		d.observe(ctx, "escalation", func(handlerCtx context.Context) error {
			return d.pipeline.HandleEscalation(handlerCtx, event)
		})
	default:
		d.logger.Warn("drop action with unknown prefix", "prefix", prefix)
	}
}

func (d *Dispatcher) observe(ctx context.Context, kind string, handle func(context.Context) error) {
	handlerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if d.metrics != nil {
		d.metrics.StartEvent()
	}
	started := time.Now()

	err := handle(handlerCtx)
	if d.metrics != nil {
		d.metrics.FinishEvent(d.service, kind, time.Since(started), err)
	}
	if err != nil {
		d.logger.Error("event handling failed", "kind", kind, "error", err)
	}
}
