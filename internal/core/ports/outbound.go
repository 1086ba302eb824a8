package ports

import (
	"context"
	"time"

	"github.com/avolkov/mediaseek/internal/core/domain"
)

// SubscriptionGate answers whether a user passed the subscription check for
// a chat. A false answer aborts the pipeline silently.
type SubscriptionGate interface {
	IsSubscribed(ctx context.Context, chatID, userID int64) (bool, error)
}

// GroupConfigStore reads per-chat configuration owned by an external
// configuration service.
type GroupConfigStore interface {
	GetGroupConfig(ctx context.Context, chatID int64) (*domain.GroupConfig, error)
}

// TitleCatalog queries the external metadata catalog for canonical titles
// matching a free-text term. The catalog is untrusted and unreliable.
type TitleCatalog interface {
	SearchTitles(ctx context.Context, term string, limit int) ([]domain.CandidateTitle, error)
}

// SourceSearcher runs a full-text search against one configured content
// source. Each call scans the source fully once, in the source's native
// relevance order.
type SourceSearcher interface {
	SearchMessages(ctx context.Context, sourceID, query string) ([]domain.SourceItem, error)
}

// Transport delivers messages and action answers through the chat gateway.
type Transport interface {
	SendReply(ctx context.Context, chatID, replyToMessageID int64, text string, actions []domain.Action) (domain.MessageRef, error)
	SendDirect(ctx context.Context, userID int64, text string) error
	EditMessage(ctx context.Context, ref domain.MessageRef, text string, actions []domain.Action) error
	DeleteMessage(ctx context.Context, ref domain.MessageRef) error
	AnswerAction(ctx context.Context, actionID, text string, alert bool) error
}

// DeleteScheduler records a message for deferred deletion.
type DeleteScheduler interface {
	ScheduleDelete(ctx context.Context, ref domain.MessageRef, at time.Time) error
}
