package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/avolkov/mediaseek/internal/config"
	"github.com/avolkov/mediaseek/internal/core/usecase"
	"github.com/avolkov/mediaseek/internal/infrastructure/catalog/anilist"
	"github.com/avolkov/mediaseek/internal/infrastructure/gate/redisgate"
	"github.com/avolkov/mediaseek/internal/infrastructure/repository/postgres"
	"github.com/avolkov/mediaseek/internal/infrastructure/resilience"
	"github.com/avolkov/mediaseek/internal/infrastructure/scheduler"
	"github.com/avolkov/mediaseek/internal/infrastructure/sources/meili"
	"github.com/avolkov/mediaseek/internal/infrastructure/transport/natsbridge"
	"github.com/avolkov/mediaseek/internal/observability/metrics"
)

const serviceName = "mediaseek-bot"

type App struct {
	Config config.Config

	Dispatcher *natsbridge.Dispatcher
	Sweeper    *scheduler.Sweeper
	Metrics    *metrics.BotMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	groups := postgres.NewGroupRepository(db)
	if err := groups.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure group schema: %w", err)
	}
	schedule := postgres.NewScheduleRepository(db)
	if err := schedule.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schedule schema: %w", err)
	}

	gate, err := redisgate.New(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("init subscription gate: %w", err)
	}

	sources := meili.New(cfg.MeiliURL, cfg.MeiliAPIKey, cfg.MeiliIndexPrefix)
	catalog := anilist.New(cfg.CatalogURL, time.Duration(cfg.CatalogTimeoutSeconds)*time.Second)

	executor := resilience.NewExecutor(resilience.DefaultPolicy())
	conn, err := natsbridge.Connect(cfg.NATSURL, natsbridge.Options{})
	if err != nil {
		return nil, fmt.Errorf("init nats: %w", err)
	}
	subjects := natsbridge.Subjects{
		Messages: cfg.NATSMessagesSubject,
		Actions:  cfg.NATSActionsSubject,
		Send:     cfg.NATSSendSubject,
		Control:  cfg.NATSControlSubject,
	}
	transport := natsbridge.NewTransport(conn, subjects, natsbridge.Options{
		Executor:      executor,
		SendRateLimit: rate.Limit(cfg.SendRateLimitRPS),
		SendBurst:     cfg.SendRateBurst,
	})

	classifier := usecase.NewTitleClassifier()
	normalizer := usecase.NewTitleNormalizer(catalog, cfg.CatalogMaxResults, cfg.SimilarityThreshold, logger)
	searcher := usecase.NewCatalogSearcher(sources)
	orchestrator := usecase.NewSearchOrchestrator(
		gate,
		groups,
		classifier,
		normalizer,
		searcher,
		transport,
		schedule,
		time.Duration(cfg.ReplyTTLMinutes)*time.Minute,
		time.Duration(cfg.EscalationTTLSeconds)*time.Second,
		logger,
	)

	botMetrics := metrics.NewBotMetrics(serviceName)
	dispatcher := natsbridge.NewDispatcher(conn, subjects, orchestrator, botMetrics, logger, serviceName)
	sweeper := scheduler.NewSweeper(
		schedule,
		transport,
		botMetrics,
		logger,
		serviceName,
		time.Duration(cfg.SweepIntervalSeconds)*time.Second,
		cfg.SweepBatchSize,
	)

	return &App{
		Config:     cfg,
		Dispatcher: dispatcher,
		Sweeper:    sweeper,
		Metrics:    botMetrics,

		closeFn: func() {
			conn.Close()
			_ = gate.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
