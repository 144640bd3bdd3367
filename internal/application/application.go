package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"tg_escrow/internal/config"
	"tg_escrow/internal/domain/entity"
	"tg_escrow/internal/domain/registry"
	service "tg_escrow/internal/domain/service/deal"
	"tg_escrow/internal/domain/session"
	"tg_escrow/internal/infrastructure/persistence"
	"tg_escrow/internal/infrastructure/verify"
	"tg_escrow/internal/server"
	"tg_escrow/internal/transport/bot"
	"tg_escrow/internal/worker"
	"tg_escrow/pkg/application/connectors"
	"tg_escrow/pkg/application/modules"
	"tg_escrow/pkg/logx"
	"tg_escrow/pkg/middlewarex"
)

const logFieldMaxLen = 4096

func Run(ctx context.Context, log *slog.Logger, cancel context.CancelFunc) error {
	// 1. Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config load: %w", err)
	}

	// 2. Database
	pg := &connectors.Postgres{
		DSN:             cfg.Postgres.DSN,
		MaxOpenConns:    cfg.Postgres.MaxOpenConns,
		MaxIdleConns:    cfg.Postgres.MaxIdleConns,
		ConnMaxLifetime: cfg.Postgres.ConnMaxLifetime,
	}
	db := pg.Client(ctx)
	defer pg.Close(ctx)

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("db ping: %w", err)
	}
	log.Info("database connection OK")

	// 3. Redis
	rd := &connectors.Redis{
		Address:        cfg.Redis.Address,
		Username:       cfg.Redis.Username,
		Password:       cfg.Redis.Password,
		DatabaseNumber: cfg.Redis.DatabaseNumber,
		PoolSize:       cfg.Redis.PoolSize,
	}
	rdb := rd.Client(ctx)
	defer rd.Close(ctx)

	// 4. Реестр сделок + восстановление из снапшота
	deals := registry.New()
	snapshots := persistence.NewSnapshotStore(rdb)

	saved, err := snapshots.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	if err := deals.Restore(saved); err != nil {
		return fmt.Errorf("restore registry: %w", err)
	}
	log.Info("registry restored", "deals", len(saved))

	// 5. Ядро
	tracker := session.NewTracker()
	gate := verify.NewCaptchaGate()

	// Недозаполненные анкеты продолжаются с того же шага после рестарта.
	for _, d := range saved {
		if d.State == entity.StateFilling {
			tracker.Resume(d.Initiator, d.ID, d.NextStep())
			gate.MarkVerified(d.Initiator)
		}
	}

	// 6. Очередь рассылки
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Address,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DatabaseNumber,
	})
	defer asynqClient.Close()

	enqueuer := worker.NewBroadcastEnqueuer(asynqClient)

	svc := service.NewDealService(deals, tracker, gate, enqueuer)

	// 7. Бот
	escrowBot, err := bot.New(ctx, cfg.Bot, svc, gate)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}

	go func() {
		if err := escrowBot.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("bot stopped", logx.Error(err))
			cancel()
		}
	}()
	log.Info("bot started", "group_id", cfg.Bot.GroupID)

	// 8. Архиватор
	archive := persistence.NewDealArchiveRepository(db)
	archiver := worker.NewArchiver(deals, snapshots, archive, cfg.Worker.ArchiveInterval)

	go func() {
		if err := archiver.Run(ctx); err != nil && ctx.Err() == nil {
			log.Error("archiver died", logx.Error(err))
			cancel()
		}
	}()

	// 9. Серверные модули
	g, gCtx := errgroup.WithContext(ctx)

	modules.AsynqServer{
		RedisAddress:  cfg.Redis.Address,
		RedisUsername: cfg.Redis.Username,
		RedisPassword: cfg.Redis.Password,
		RedisDB:       cfg.Redis.DatabaseNumber,
	}.Run(gCtx, g,
		modules.AsynqQueues{worker.QueueBroadcast: 1},
		modules.AsynqHandler{
			Pattern: worker.TypeBroadcastDeliver,
			Handle:  worker.NewBroadcastDeliverer(escrowBot.Sender()).HandleDeliver,
		},
	)

	modules.HTTPServer{ShutdownTimeout: cfg.HTTP.ShutdownTimeout}.Run(gCtx, g, &http.Server{
		Addr:    cfg.HTTP.ListenAddress,
		Handler: newRouter(svc),
	})

	modules.MetricServer{ListenAddress: cfg.HTTP.MetricsListenAddress}.Run(gCtx, g)

	modules.ProbeServer{
		Name:          "tg_escrow",
		Version:       "dev",
		ListenAddress: cfg.HTTP.ProbeListenAddress,
	}.Run(gCtx, g)

	if err := g.Wait(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("modules: %w", err)
	}

	log.Info("application stopping...")

	return nil
}

func newRouter(svc *service.DealService) http.Handler {
	masker := logx.NewSensitiveDataMasker()

	r := chi.NewRouter()
	r.Use(
		middlewarex.TraceID,
		middlewarex.Logger,
		middlewarex.Recovery,
		middlewarex.RequestLogging(masker, logFieldMaxLen),
		middlewarex.ResponseLogging(masker, logFieldMaxLen),
	)

	server.NewServer(server.NewDealServer(svc)).RegisterRoutes(r)

	return r
}
