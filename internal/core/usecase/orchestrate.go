package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avolkov/mediaseek/internal/core/domain"
	"github.com/avolkov/mediaseek/internal/core/ports"
)

// SearchOrchestrator drives one search pipeline per chat event: gating,
// classification, normalization, source search, fallback and reply. All
// cross-event state lives in external collaborators; the orchestrator is
// safe for concurrent pipelines.
type SearchOrchestrator struct {
	gate       ports.SubscriptionGate
	groups     ports.GroupConfigStore
	classifier *TitleClassifier
	normalizer *TitleNormalizer
	searcher   *CatalogSearcher
	transport  ports.Transport
	scheduler  ports.DeleteScheduler
	logger     *slog.Logger

	replyTTL      time.Duration
	escalationTTL time.Duration
	now           func() time.Time
}

func NewSearchOrchestrator(
	gate ports.SubscriptionGate,
	groups ports.GroupConfigStore,
	classifier *TitleClassifier,
	normalizer *TitleNormalizer,
	searcher *CatalogSearcher,
	transport ports.Transport,
	scheduler ports.DeleteScheduler,
	replyTTL time.Duration,
	escalationTTL time.Duration,
	logger *slog.Logger,
) *SearchOrchestrator {
	if replyTTL <= 0 {
		replyTTL = 15 * time.Minute
	}
	if escalationTTL <= 0 {
		escalationTTL = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchOrchestrator{
		gate:          gate,
		groups:        groups,
		classifier:    classifier,
		normalizer:    normalizer,
		searcher:      searcher,
		transport:     transport,
		scheduler:     scheduler,
		logger:        logger,
		replyTTL:      replyTTL,
		escalationTTL: escalationTTL,
		now:           time.Now,
	}
}

// HandleMessage runs the full pipeline for a plain-text group message.
// Gating and classification rejections complete silently; only failures
// past the point of a committed reply bubble up.
func (o *SearchOrchestrator) HandleMessage(ctx context.Context, event domain.MessageEvent) error {
	query := strings.TrimSpace(event.Text)
	if query == "" || strings.HasPrefix(query, "/") {
		return nil
	}

	log := o.logger.With(
		"pipeline_id", uuid.NewString(),
		"chat_id", event.ChatID,
		"user_id", event.UserID,
	)

	subscribed, err := o.gate.IsSubscribed(ctx, event.ChatID, event.UserID)
	if err != nil {
		log.Warn("subscription check failed", "error", err)
		return nil
	}
	if !subscribed {
		return nil
	}

	cfg, err := o.groupConfig(ctx, log, event.ChatID)
	if err != nil || cfg == nil {
		return nil
	}

	if !o.classifier.IsPotentialTitle(query) {
		return nil
	}

	normalized := o.normalizer.Normalize(ctx, query)

	matches, err := o.searcher.Search(ctx, cfg.SourceIDs, normalized)
	if err != nil {
		log.Warn("source search degraded", "query", normalized, "error", err)
	}
	if len(matches) == 0 {
		// One retry with the raw query before giving up.
		matches, err = o.searcher.Search(ctx, cfg.SourceIDs, query)
		if err != nil {
			log.Warn("fallback source search degraded", "query", query, "error", err)
		}
	}

	var ref domain.MessageRef
	if len(matches) == 0 {
		text := formatNoResults(query, normalized)
		ref, err = o.transport.SendReply(ctx, event.ChatID, event.MessageID, text, escalationActions(normalized))
	} else {
		ref, err = o.transport.SendReply(ctx, event.ChatID, event.MessageID, formatResults(resultsHeader, matches), nil)
	}
	if err != nil {
		return fmt.Errorf("send search reply: %w", err)
	}

	if err := o.scheduler.ScheduleDelete(ctx, ref, o.now().Add(o.replyTTL)); err != nil {
		log.Warn("schedule reply delete failed", "message_id", ref.MessageID, "error", err)
	}
	log.Info("search reply sent", "query", query, "normalized", normalized, "matches", len(matches))
	return nil
}

// HandleResearch re-runs the pipeline from a prior reply, restricted to
// the original requester. It always searches the normalized query; there
// is no raw-query fallback on this path.
func (o *SearchOrchestrator) HandleResearch(ctx context.Context, event domain.ActionEvent) error {
	ref := domain.MessageRef{ChatID: event.ChatID, MessageID: event.MessageID}

	if event.RequesterID == 0 {
		// The message this reply was attached to is gone; drop the stale reply.
		return o.transport.DeleteMessage(ctx, ref)
	}
	if event.InvokerID != event.RequesterID {
		return o.transport.AnswerAction(ctx, event.ActionID, notForYouNotice, true)
	}

	if err := o.transport.EditMessage(ctx, ref, searchingText, nil); err != nil {
		return fmt.Errorf("edit progress message: %w", err)
	}

	log := o.logger.With("chat_id", event.ChatID, "user_id", event.InvokerID)
	query := researchQuery(event.Payload)

	cfg, err := o.groups.GetGroupConfig(ctx, event.ChatID)
	if err != nil {
		o.editFailure(ctx, log, ref)
		return fmt.Errorf("get group config: %w", err)
	}

	normalized := o.normalizer.Normalize(ctx, query)
	matches, err := o.searcher.Search(ctx, cfg.SourceIDs, normalized)
	if err != nil {
		log.Warn("source search degraded", "query", normalized, "error", err)
	}

	if len(matches) == 0 {
		err = o.transport.EditMessage(ctx, ref, formatNoResults("", normalized), escalationActions(normalized))
	} else {
		err = o.transport.EditMessage(ctx, ref, formatResults(researchHeader, matches), nil)
	}
	if err != nil {
		return fmt.Errorf("edit search results: %w", err)
	}
	log.Info("research completed", "query", query, "normalized", normalized, "matches", len(matches))
	return nil
}

// HandleEscalation forwards the carried query to the chat's admin,
// confirms to the invoker and schedules the escalation message itself for
// deletion.
func (o *SearchOrchestrator) HandleEscalation(ctx context.Context, event domain.ActionEvent) error {
	ref := domain.MessageRef{ChatID: event.ChatID, MessageID: event.MessageID}

	if event.RequesterID == 0 {
		return o.transport.DeleteMessage(ctx, ref)
	}
	if event.InvokerID != event.RequesterID {
		return o.transport.AnswerAction(ctx, event.ActionID, notForYouNotice, true)
	}

	log := o.logger.With("chat_id", event.ChatID, "user_id", event.InvokerID)
	query := escalationQuery(event.Payload)

	cfg, err := o.groups.GetGroupConfig(ctx, event.ChatID)
	if err != nil {
		o.editFailure(ctx, log, ref)
		return fmt.Errorf("get group config: %w", err)
	}

	if err := o.transport.SendDirect(ctx, cfg.AdminUserID, formatAdminRequest(query)); err != nil {
		o.editFailure(ctx, log, ref)
		return fmt.Errorf("forward request to admin: %w", err)
	}
	if err := o.transport.AnswerAction(ctx, event.ActionID, requestSentNotice, true); err != nil {
		log.Warn("answer escalation action failed", "error", err)
	}
	if err := o.scheduler.ScheduleDelete(ctx, ref, o.now().Add(o.escalationTTL)); err != nil {
		log.Warn("schedule escalation delete failed", "message_id", ref.MessageID, "error", err)
	}
	log.Info("request forwarded to admin", "query", query, "admin_id", cfg.AdminUserID)
	return nil
}

// groupConfig reads the chat configuration, treating a missing group or an
// empty source list as a silent skip.
func (o *SearchOrchestrator) groupConfig(ctx context.Context, log *slog.Logger, chatID int64) (*domain.GroupConfig, error) {
	cfg, err := o.groups.GetGroupConfig(ctx, chatID)
	if err != nil {
		if !domain.IsKind(err, domain.ErrGroupNotFound) {
			log.Warn("group config read failed", "error", err)
		}
		return nil, err
	}
	if len(cfg.SourceIDs) == 0 {
		return nil, nil
	}
	return cfg, nil
}

// editFailure replaces the reply with a generic error so action-triggered
// paths never leave a spinner behind. Best effort.
func (o *SearchOrchestrator) editFailure(ctx context.Context, log *slog.Logger, ref domain.MessageRef) {
	if err := o.transport.EditMessage(ctx, ref, genericError, nil); err != nil {
		log.Warn("edit failure notice failed", "message_id", ref.MessageID, "error", err)
	}
}
