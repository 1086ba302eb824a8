// Package natsbridge connects the search core to the chat gateway over
// NATS. Inbound chat events arrive on the message/action subjects; outbound
// deliveries go back as gateway commands. Sends use request/reply so the
// gateway can return the created message ref, everything else is
// fire-and-forget under the resilience executor.
package natsbridge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"golang.org/x/time/rate"

	"github.com/avolkov/mediaseek/internal/core/domain"
	"github.com/avolkov/mediaseek/internal/infrastructure/resilience"
)

// Subjects names the NATS subjects the bridge uses.
type Subjects struct {
	Messages string
	Actions  string
	Send     string
	Control  string
}

type Options struct {
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	RequestTimeout time.Duration

	SendRateLimit rate.Limit
	SendBurst     int

	Executor *resilience.Executor
}

// Connect dials NATS with the bridge's reconnect policy.
func Connect(url string, options Options) (*nats.Conn, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}

	conn, err := nats.Connect(
		url,
		nats.Name("mediaseek-bot"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(true),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return conn, nil
}

// Transport implements the chat-delivery port over the gateway subjects.
type Transport struct {
	conn     *nats.Conn
	subjects Subjects
	executor *resilience.Executor
	limiter  *rate.Limiter

	requestTimeout time.Duration
}

func NewTransport(conn *nats.Conn, subjects Subjects, options Options) *Transport {
	requestTimeout := options.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = 10 * time.Second
	}
	limit := options.SendRateLimit
	if limit <= 0 {
		limit = rate.Limit(20)
	}
	burst := options.SendBurst
	if burst <= 0 {
		burst = 5
	}
	return &Transport{
		conn:           conn,
		subjects:       subjects,
		executor:       options.Executor,
		limiter:        rate.NewLimiter(limit, burst),
		requestTimeout: requestTimeout,
	}
}

type actionPayload struct {
	Label   string `json:"label"`
	Payload string `json:"payload"`
}

type sendCommand struct {
	ChatID           int64           `json:"chat_id,omitempty"`
	ReplyToMessageID int64           `json:"reply_to_message_id,omitempty"`
	UserID           int64           `json:"user_id,omitempty"`
	Text             string          `json:"text"`
	Actions          []actionPayload `json:"actions,omitempty"`
}

type sendResult struct {
	ChatID    int64  `json:"chat_id"`
	MessageID int64  `json:"message_id"`
	Error     string `json:"error,omitempty"`
}

type controlCommand struct {
	Op        string          `json:"op"`
	ChatID    int64           `json:"chat_id,omitempty"`
	MessageID int64           `json:"message_id,omitempty"`
	ActionID  string          `json:"action_id,omitempty"`
	Text      string          `json:"text,omitempty"`
	Alert     bool            `json:"alert,omitempty"`
	Actions   []actionPayload `json:"actions,omitempty"`
}

func (t *Transport) SendReply(ctx context.Context, chatID, replyToMessageID int64, text string, actions []domain.Action) (domain.MessageRef, error) {
	result, err := t.send(ctx, sendCommand{
		ChatID:           chatID,
		ReplyToMessageID: replyToMessageID,
		Text:             text,
		Actions:          encodeActions(actions),
	})
	if err != nil {
		return domain.MessageRef{}, err
	}
	return domain.MessageRef{ChatID: result.ChatID, MessageID: result.MessageID}, nil
}

func (t *Transport) SendDirect(ctx context.Context, userID int64, text string) error {
	_, err := t.send(ctx, sendCommand{UserID: userID, Text: text})
	return err
}

func (t *Transport) send(ctx context.Context, cmd sendCommand) (*sendResult, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("send rate limit: %w", err)
	}

	data, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("marshal send command: %w", err)
	}

	reqCtx := ctx
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		reqCtx, cancel = context.WithTimeout(ctx, t.requestTimeout)
		defer cancel()
	}

	msg, err := t.conn.RequestWithContext(reqCtx, t.subjects.Send, data)
	if err != nil {
		return nil, wrapTemporaryIfNeeded(fmt.Errorf("gateway send request: %w", err))
	}

	var result sendResult
	if err := json.Unmarshal(msg.Data, &result); err != nil {
		return nil, fmt.Errorf("decode send result: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("gateway send: %s", result.Error)
	}
	return &result, nil
}

func (t *Transport) EditMessage(ctx context.Context, ref domain.MessageRef, text string, actions []domain.Action) error {
	return t.publishControl(ctx, controlCommand{
		Op:        "edit",
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
		Text:      text,
		Actions:   encodeActions(actions),
	})
}

func (t *Transport) DeleteMessage(ctx context.Context, ref domain.MessageRef) error {
	return t.publishControl(ctx, controlCommand{
		Op:        "delete",
		ChatID:    ref.ChatID,
		MessageID: ref.MessageID,
	})
}

func (t *Transport) AnswerAction(ctx context.Context, actionID, text string, alert bool) error {
	return t.publishControl(ctx, controlCommand{
		Op:       "answer",
		ActionID: actionID,
		Text:     text,
		Alert:    alert,
	})
}

func (t *Transport) publishControl(ctx context.Context, cmd controlCommand) error {
	data, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshal %s command: %w", cmd.Op, err)
	}

	call := func(context.Context) error {
		if err := t.conn.Publish(t.subjects.Control, data); err != nil {
			return fmt.Errorf("publish %s command: %w", cmd.Op, err)
		}
		return nil
	}

	if t.executor != nil {
		err = t.executor.Do(ctx, "gateway.control", call, classifyNATSError)
	} else {
		err = call(ctx)
	}
	return wrapTemporaryIfNeeded(err)
}

func encodeActions(actions []domain.Action) []actionPayload {
	if len(actions) == 0 {
		return nil
	}
	encoded := make([]actionPayload, 0, len(actions))
	for _, a := range actions {
		encoded = append(encoded, actionPayload{Label: a.Label, Payload: a.Payload})
	}
	return encoded
}

func classifyNATSError(err error) resilience.ErrorClass {
	if err == nil {
		return resilience.ErrorClass{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClass{}
	}
	if resilience.IsCircuitOpen(err) {
		return resilience.ErrorClass{Retry: true, CountFailure: true}
	}
	if errors.Is(err, nats.ErrNoServers) ||
		errors.Is(err, nats.ErrTimeout) ||
		errors.Is(err, nats.ErrConnectionClosed) ||
		errors.Is(err, nats.ErrDisconnected) {
		return resilience.ErrorClass{Retry: true, CountFailure: true}
	}
	return resilience.ErrorClass{CountFailure: true}
}

func wrapTemporaryIfNeeded(err error) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifyNATSError(err).Retry || resilience.IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, "gateway delivery", err)
	}
	return err
}
