package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"trade_exchange/internal/config"
	"trade_exchange/internal/domain/service/botops"
	"trade_exchange/internal/domain/service/classifier"
	"trade_exchange/internal/domain/service/exchange"
	"trade_exchange/internal/infrastructure/gateway"
	"trade_exchange/internal/infrastructure/monitoring"
	"trade_exchange/internal/infrastructure/notifier"
	"trade_exchange/internal/infrastructure/persistence"
	"trade_exchange/internal/infrastructure/reputation"
	"trade_exchange/internal/infrastructure/tradelock"
	"trade_exchange/internal/plugin"
	"trade_exchange/internal/server"
	"trade_exchange/internal/tasks"
	"trade_exchange/internal/transport/bot"
	"trade_exchange/internal/worker"
	"trade_exchange/migrations"
	"trade_exchange/pkg/application/connectors"
	"trade_exchange/pkg/application/modules"
	"trade_exchange/pkg/contextx"
	"trade_exchange/pkg/logx"
	"trade_exchange/pkg/metrics"
)

const (
	AppName = "trade-exchange"

	shutdownTimeout   = 10 * time.Second
	asynqConcurrency  = 10
	lockBackendRedis  = "redis"
	lockBackendLocal  = "local"
	notifierStartText = "trade exchange started"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

// Version проставляется при сборке через -ldflags.
var Version = "dev" //nolint:gochecknoglobals

func Run(ctx context.Context) error {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config.Load: %w", err)
	}

	accounts, err := config.LoadAccounts(cfg.AccountsFile)
	if err != nil {
		return fmt.Errorf("config.LoadAccounts: %w", err)
	}

	botNames := lo.Map(accounts, func(a config.Account, _ int) string { return a.Name })

	logger(ctx).Info("accounts loaded", slog.Int("count", len(accounts)), slog.Any("bots", botNames))

	// 2. Storages
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
		Migrations:      migrations.FS,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	rds := &connectors.Redis{
		Address:        cfg.Redis.Address,
		Username:       cfg.Redis.Username,
		Password:       cfg.Redis.Password,
		DatabaseNumber: cfg.Redis.DB,
		PoolSize:       cfg.Redis.PoolSize,
	}
	redisClient := rds.Client(ctx)
	defer rds.Close(ctx)

	// 3. Repositories
	results := persistence.NewTradeResultRepository(db)
	blacklist := persistence.NewBlacklistRepository(db)

	// 4. Gateway
	gatewayClient, err := gateway.NewClient(cfg.Gateway)
	if err != nil {
		return fmt.Errorf("gateway.NewClient: %w", err)
	}

	pool, err := gateway.NewPool(gatewayClient, botNames, cfg.Gateway.StatusPollInterval)
	if err != nil {
		return fmt.Errorf("gateway.NewPool: %w", err)
	}

	// 5. Plugins
	metricsRegistry := metrics.NewRegistry()

	collector, err := monitoring.NewCollector(metricsRegistry)
	if err != nil {
		return fmt.Errorf("monitoring.NewCollector: %w", err)
	}

	registry := plugin.NewRegistry()
	defer registry.Wait()

	registry.RegisterObserver(collector)
	registry.RegisterObserver(results)

	if cfg.Notifier.Enabled() && cfg.Notifier.ChatID != 0 {
		alertBot, err := notifier.NewTelegramBot(cfg.Notifier.Token, cfg.Notifier.ChatID)
		if err != nil {
			return fmt.Errorf("notifier.NewTelegramBot: %w", err)
		}

		if err := alertBot.SendText(ctx, notifierStartText); err != nil {
			logger(ctx).Warn("notifier test message failed", logx.Error(err))
		}

		registry.RegisterObserver(alertBot)
	}

	var reputationClient *reputation.Client

	if cfg.Reputation.BaseURL != "" {
		reputationClient, err = reputation.NewClient(cfg.Reputation)
		if err != nil {
			return fmt.Errorf("reputation.NewClient: %w", err)
		}
	}

	// 6. Queue
	asynqClient := asynq.NewClient(rds.AsynqOpt())
	defer asynqClient.Close()

	enqueuer := tasks.NewEnqueuer(asynqClient)
	handlers := tasks.NewHandlers().WithNothingToSendError(gateway.ErrNothingToSend)
	ops := botops.NewService(enqueuer, blacklist, results).WithStats(collector)

	// 7. Bots
	coordinators := make(map[string]*exchange.Coordinator, len(accounts))

	for _, account := range accounts {
		session, ok := pool.Session(account.Name)
		if !ok {
			return fmt.Errorf("session %q: %w", account.Name, gateway.ErrNoSessions)
		}

		lock, err := newTradingLock(cfg.Trading, redisClient, account.Name)
		if err != nil {
			return err
		}

		policy := account.Policy(cfg.Trading, cfg.Reputation.Timeout)

		cls := classifier.NewClassifier(
			account.Name,
			policy,
			blacklist,
			accounts.Access(account.Name),
			session,
			session,
		).WithOverride(registry)

		if reputationClient != nil {
			cls.WithReputation(reputationClient)
		}

		coordinator := exchange.NewCoordinator(account.Name, session, cls, lock).
			WithObserver(registry).
			WithLootHandler(enqueuer).
			WithPassRecorder(collector)

		if account.HasMobileAuthenticator {
			coordinator.WithConfirmer(session)
		}

		coordinators[account.Name] = coordinator

		handlers.WithWaker(account.Name, coordinator)
		ops.WithCoordinator(account.Name, coordinator)

		if policy.SendOnFarmingFinished && len(policy.LootableTypes) > 0 && len(account.MasterIDs) > 0 {
			handlers.WithLootTarget(account.Name, tasks.LootTarget{
				Sender:      session,
				Lock:        lock,
				RecipientID: account.MasterIDs[0],
				Types:       policy.LootableTypes,
			})
		}
	}

	pool.Subscribe(connectionHandler{coordinators: coordinators, waker: enqueuer})

	poller := worker.NewTradePoller(enqueuer, cfg.Trading.PollInterval).WithBots(botNames...)
	defer poller.Stop()

	var adminBot *bot.Bot

	if cfg.Notifier.Enabled() && len(cfg.Notifier.AdminIDs) > 0 {
		adminBot, err = bot.New(cfg.Notifier, ops)
		if err != nil {
			return fmt.Errorf("bot.New: %w", err)
		}
	}

	// 8. Run
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := pool.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("pool.Start: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		if err := pool.WaitReady(ctx); err != nil {
			return nil //nolint:nilerr
		}

		logger(ctx).Info("all bot sessions ready", slog.Int("sessions", pool.Size()))

		if err := poller.Start(ctx); err != nil {
			return fmt.Errorf("poller.Start: %w", err)
		}

		return nil
	})

	modules.AsynqServer{
		Redis:       rds.AsynqOpt(),
		Concurrency: asynqConcurrency,
	}.Run(ctx, g, modules.AsynqQueues{tasks.Queue: 1}, handlers.AsynqHandlers()...)

	modules.HTTPServer{ShutdownTimeout: shutdownTimeout}.Run(
		ctx,
		g,
		server.NewHTTPServer(cfg.HTTP.ListenAddress, server.NewServer(ops, cfg.HTTP.APIToken)),
	)

	modules.MetricServer{
		ListenAddress: cfg.HTTP.MetricsAddress,
		Gatherer:      metricsRegistry,
	}.Run(ctx, g)

	modules.ProbeServer{
		Name:          AppName,
		Version:       Version,
		ListenAddress: cfg.HTTP.ProbeAddress,
		Ready:         pool.IsReady,
	}.Run(ctx, g)

	if adminBot != nil {
		g.Go(func() error {
			if err := adminBot.Run(ctx); err != nil {
				return fmt.Errorf("adminBot.Run: %w", err)
			}

			return nil
		})
	}

	logger(ctx).Info("application started", slog.String(logx.FieldAppVersion, Version))

	if err := g.Wait(); err != nil {
		return fmt.Errorf("errgroup.Wait: %w", err)
	}

	logger(ctx).Info("application stopping")

	return nil
}

func newTradingLock(cfg config.Trading, client *redis.Client, botName string) (exchange.TradingLock, error) {
	switch cfg.LockBackend {
	case lockBackendRedis:
		return tradelock.NewRedis(client, botName, cfg.LockTTL), nil
	case lockBackendLocal:
		return tradelock.NewLocal(), nil
	default:
		return nil, fmt.Errorf("unknown trading lock backend %q", cfg.LockBackend)
	}
}

// connectionHandler сбрасывает состояние координатора при разрыве сессии
// и будит бота после переподключения.
type connectionHandler struct {
	coordinators map[string]*exchange.Coordinator
	waker        *tasks.Enqueuer
}

func (h connectionHandler) OnDisconnected(botName string) {
	if c, ok := h.coordinators[botName]; ok {
		c.OnDisconnected()
	}
}

func (h connectionHandler) OnConnected(ctx context.Context, botName string) {
	if err := h.waker.Wake(ctx, botName); err != nil {
		logger(ctx).Warn("wake after reconnect failed", slog.String(logx.FieldBot, botName), logx.Error(err))
	}
}
