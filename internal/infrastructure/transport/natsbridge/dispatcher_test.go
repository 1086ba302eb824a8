package natsbridge

import (
	"context"
	"errors"
	"testing"

	"github.com/nats-io/nats.go"

	"github.com/avolkov/mediaseek/internal/core/domain"
)

type pipelineFake struct {
	messages    []domain.MessageEvent
	researches  []domain.ActionEvent
	escalations []domain.ActionEvent
	err         error
}

func (p *pipelineFake) HandleMessage(_ context.Context, event domain.MessageEvent) error {
	p.messages = append(p.messages, event)
	return p.err
}

func (p *pipelineFake) HandleResearch(_ context.Context, event domain.ActionEvent) error {
	p.researches = append(p.researches, event)
	return p.err
}

func (p *pipelineFake) HandleEscalation(_ context.Context, event domain.ActionEvent) error {
	p.escalations = append(p.escalations, event)
	return p.err
}

func newTestDispatcher(pipeline *pipelineFake) *Dispatcher {
	return NewDispatcher(nil, Subjects{}, pipeline, nil, nil, "test")
}

func TestDispatcherDecodesMessageEvent(t *testing.T) {
	pipeline := &pipelineFake{}
	d := newTestDispatcher(pipeline)

	d.handleMessage(context.Background(), []byte(`{"chat_id":-100,"message_id":7,"user_id":42,"text":"One Piece"}`))

	if len(pipeline.messages) != 1 {
		t.Fatalf("expected one message event, got %d", len(pipeline.messages))
	}
	got := pipeline.messages[0]
	if got.ChatID != -100 || got.MessageID != 7 || got.UserID != 42 || got.Text != "One Piece" {
		t.Fatalf("unexpected event: %+v", got)
	}
}

func TestDispatcherDropsUndecodableMessage(t *testing.T) {
	pipeline := &pipelineFake{}
	d := newTestDispatcher(pipeline)

	d.handleMessage(context.Background(), []byte(`{not json`))

	if len(pipeline.messages) != 0 {
		t.Fatalf("expected no message events, got %d", len(pipeline.messages))
	}
}

func TestDispatcherRoutesActionsByPrefix(t *testing.T) {
	pipeline := &pipelineFake{}
	d := newTestDispatcher(pipeline)

	d.handleAction(context.Background(), []byte(`{"action_id":"a1","payload":"recheck_One_Piece"}`))
	d.handleAction(context.Background(), []byte(`{"action_id":"a2","payload":"request_One Piece"}`))

	if len(pipeline.researches) != 1 || pipeline.researches[0].Payload != "recheck_One_Piece" {
		t.Fatalf("unexpected research events: %+v", pipeline.researches)
	}
	if len(pipeline.escalations) != 1 || pipeline.escalations[0].Payload != "request_One Piece" {
		t.Fatalf("unexpected escalation events: %+v", pipeline.escalations)
	}
}

func TestDispatcherDropsUnknownOrMalformedActions(t *testing.T) {
	pipeline := &pipelineFake{}
	d := newTestDispatcher(pipeline)

	d.handleAction(context.Background(), []byte(`{"action_id":"a1","payload":"subscribe_One Piece"}`))
	d.handleAction(context.Background(), []byte(`{"action_id":"a2","payload":"noprefix"}`))

	if len(pipeline.researches) != 0 || len(pipeline.escalations) != 0 {
		t.Fatalf("expected no routed actions, got research=%d escalation=%d",
			len(pipeline.researches), len(pipeline.escalations))
	}
}

func TestDispatcherIgnoresEventsAfterShutdown(t *testing.T) {
	pipeline := &pipelineFake{}
	d := newTestDispatcher(pipeline)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	d.handleMessage(ctx, []byte(`{"chat_id":1,"message_id":2,"user_id":3,"text":"Naruto"}`))

	if len(pipeline.messages) != 0 {
		t.Fatalf("expected no events after shutdown, got %d", len(pipeline.messages))
	}
}

func TestClassifyNATSError(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		retry bool
		count bool
	}{
		{name: "nil", err: nil},
		{name: "context canceled", err: context.Canceled},
		{name: "deadline exceeded", err: context.DeadlineExceeded},
		{name: "no servers", err: nats.ErrNoServers, retry: true, count: true},
		{name: "timeout", err: nats.ErrTimeout, retry: true, count: true},
		{name: "connection closed", err: nats.ErrConnectionClosed, retry: true, count: true},
		{name: "other", err: errors.New("boom"), retry: false, count: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			class := classifyNATSError(tc.err)
			if class.Retry != tc.retry || class.CountFailure != tc.count {
				t.Fatalf("classify(%v) = %+v, want retry=%v count=%v", tc.err, class, tc.retry, tc.count)
			}
		})
	}
}

func TestWrapTemporaryMarksRetryableErrors(t *testing.T) {
	err := wrapTemporaryIfNeeded(nats.ErrTimeout)
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected temporary error, got %v", err)
	}

	plain := errors.New("bad payload")
	if got := wrapTemporaryIfNeeded(plain); domain.IsKind(got, domain.ErrTemporary) {
		t.Fatalf("expected non-temporary error, got %v", got)
	}
	if wrapTemporaryIfNeeded(nil) != nil {
		t.Fatal("expected nil to stay nil")
	}
}
