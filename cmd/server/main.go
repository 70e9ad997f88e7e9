package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"improvehub/internal/api"
	"improvehub/internal/config"
	"improvehub/internal/gateway"
	"improvehub/internal/reconcile"
	"improvehub/internal/service/auth"
	"improvehub/internal/service/board"
	"improvehub/internal/state"
	"improvehub/internal/webhook"
	"improvehub/pkg/circuitbreaker"
	pkgconfig "improvehub/pkg/config"
	"improvehub/pkg/db"
	"improvehub/pkg/logger"
	"improvehub/pkg/mq"
	"improvehub/pkg/otel"
	"improvehub/pkg/redis"
	"improvehub/pkg/util"
)

var _ state.Remote = (*webhook.Client)(nil)

func main() {
	env := flag.String("env", pkgconfig.GetConfigEnv(), "config environment (local, production)")
	dir := flag.String("config", pkgconfig.GetEnv("CONFIG_DIR", "config"), "config directory")
	flag.Parse()

	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load(*env, *dir)
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	log.Info("Starting improvehub...",
		zap.String("env", *env),
		zap.String("db_host", cfg.DB.Host),
		zap.String("webhook_transport", cfg.Webhook.Transport),
	)

	shutdownOtel, err := otel.Init(cfg.Otel, log)
	if err != nil {
		log.Warn("OpenTelemetry init failed, tracing disabled", zap.Error(err))
		shutdownOtel = func() {}
	}
	defer shutdownOtel()

	// DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to init DB", zap.Error(err))
	}
	defer dbConn.Close()

	loader := gateway.NewLoader(
		gateway.NewPgSource(dbConn),
		tablesFrom(cfg.Store),
		reconcile.New(log),
		log,
	)

	// 出站同步
	sink, sinkReady, closeSink := newSink(cfg.Webhook, cfg.MQ, log)
	defer closeSink()

	client := webhook.NewClient(sink, circuitbreaker.Config{
		FailureThreshold:    cfg.Webhook.BreakerFailures,
		SuccessThreshold:    2,
		Timeout:             cfg.Webhook.BreakerTimeout,
		HalfOpenMaxRequests: 1,
	}, log)
	ctrl := state.NewController(client, log)

	// Redis 不可用时不去重
	var dedup board.Deduper
	if rdb := redis.NewRedisClient(cfg.Redis); rdb != nil {
		defer rdb.Close()
		dedup = util.NewDeduperWithLogger(rdb, cfg.Redis.DedupTTL, log)
	} else {
		log.Info("Redis not configured, demand submissions are not deduplicated")
	}

	b := board.NewBoard(ctrl, loader, client, dedup, log)

	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if _, err := b.Refresh(initCtx); err != nil {
		log.Error("Initial load failed, starting with an empty board", zap.Error(err))
	}
	initCancel()

	refreshCtx, refreshCancel := context.WithCancel(context.Background())
	defer refreshCancel()
	go b.StartRefresher(refreshCtx, cfg.Store.RefreshInterval)

	authService := auth.NewService(loader, cfg.JWT.Secret, cfg.JWT.TTL)
	router := api.NewRouter(b, authService, cfg.JWT.Secret, dbConn, log)
	if sinkReady != nil {
		router.AddReadyCheck("mq", sinkReady)
	}
	srv := router.Server(cfg.Server.Port)

	go func() {
		log.Info("HTTP server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down improvehub...")
	refreshCancel()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}

	if n := ctrl.Background().InFlight(); n > 0 {
		log.Warn("Abandoning in-flight sync calls", zap.Int("count", n))
	}
	ctrl.Close()

	log.Info("Shutdown complete")
}

func tablesFrom(cfg config.StoreConfig) gateway.Tables {
	return gateway.Tables{
		Projects:       cfg.ProjectsTable,
		Demands:        cfg.DemandsTable,
		Profiles:       cfg.ProfilesTable,
		UsernameColumn: cfg.UsernameColumn,
		PasswordColumn: cfg.PasswordColumn,
	}
}

var errMQDisconnected = errors.New("mq publisher disconnected")

// newSink picks the outbound transport. The readiness check is nil for
// transports without a connection; the returned func releases the transport.
func newSink(cfg config.WebhookConfig, mqCfg pkgconfig.MQConfig, log *zap.Logger) (webhook.Sink, api.ReadyCheck, func()) {
	switch cfg.Transport {
	case "amqp":
		publisher, err := mq.NewPublisher(mqCfg.URL, mq.ExchangeName)
		if err != nil {
			log.Fatal("Failed to init MQ publisher", zap.Error(err))
		}
		ready := func(context.Context) error {
			if !publisher.IsConnected() {
				return errMQDisconnected
			}
			return nil
		}
		return webhook.NewAMQPSink(publisher), ready, publisher.Close
	case "none":
		log.Warn("Webhook transport disabled, remote sync calls are discarded")
		return webhook.DiscardSink{Logger: log}, nil, func() {}
	default:
		if cfg.LifecycleURL == "" || cfg.IntakeURL == "" {
			log.Warn("Webhook endpoint missing, affected sync calls will fail",
				zap.Bool("lifecycle_set", cfg.LifecycleURL != ""),
				zap.Bool("intake_set", cfg.IntakeURL != ""),
			)
		}
		return webhook.NewHTTPSink(cfg.LifecycleURL, cfg.IntakeURL, cfg.Secret, cfg.Timeout), nil, func() {}
	}
}
