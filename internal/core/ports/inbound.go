package ports

import (
	"context"

	"github.com/avolkov/mediaseek/internal/core/domain"
)

// MessagePipeline is the inbound contract for the three chat entry points:
// a plain-text group message, a re-search action and an admin-escalation
// action. Handlers return an error only for unexpected failures; gating,
// classification and authorization rejections complete with nil.
type MessagePipeline interface {
	HandleMessage(ctx context.Context, event domain.MessageEvent) error
	HandleResearch(ctx context.Context, event domain.ActionEvent) error
	HandleEscalation(ctx context.Context, event domain.ActionEvent) error
}
