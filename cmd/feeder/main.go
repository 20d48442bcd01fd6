package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/lidofinance/blockview/internal/app/feeder"
	"github.com/lidofinance/blockview/internal/app/server"
	"github.com/lidofinance/blockview/internal/connectors/logger"
	"github.com/lidofinance/blockview/internal/connectors/metrics"
	nc "github.com/lidofinance/blockview/internal/connectors/nats"
	"github.com/lidofinance/blockview/internal/connectors/redis"
	"github.com/lidofinance/blockview/internal/env"
)

const (
	maxMsgSize       = 1024 * 1024 // 1 Mb
	redisPoolSize    = 10
	claimTTL         = 10 * time.Minute
	streamMaxAge     = 30 * time.Minute
	sentryFlushDelay = 2 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	defer stop()
	g, gCtx := errgroup.WithContext(ctx)

	cfg, envErr := env.Read("")
	if envErr != nil {
		fmt.Println("Read env error:", envErr.Error())
		return
	}

	log, sentryClient, logErr := logger.New(&cfg.AppConfig)
	if logErr != nil {
		fmt.Println("Logger error:", logErr.Error())
		return
	}
	if sentryClient != nil {
		defer sentryClient.Flush(sentryFlushDelay)
	}

	rds, err := redis.NewRedisClient(gCtx, cfg.AppConfig.RedisURL, log, redisPoolSize)
	if err != nil {
		log.Error(fmt.Sprintf(`create redis client error: %v`, err))
		if rds != nil {
			_ = rds.Close()
		}
		return
	}
	defer rds.Close()

	natsClient, natsErr := nc.New(&cfg.AppConfig, log)
	if natsErr != nil {
		log.Error(fmt.Sprintf(`Could not connect to nats error: %v`, natsErr))
		return
	}
	defer natsClient.Close()
	log.Info("Nats connected")

	js, jetStreamErr := jetstream.New(natsClient)
	if jetStreamErr != nil {
		log.Error(fmt.Sprintf(`Could not connect to jetStream error: %v`, jetStreamErr))
		return
	}
	log.Info("Nats jetStream connected")

	_, streamErr := js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
		Name:       cfg.AppConfig.NatsStreamName,
		Discard:    jetstream.DiscardOld,
		MaxAge:     streamMaxAge,
		Subjects:   []string{cfg.AppConfig.BlockTopic},
		MaxMsgSize: maxMsgSize,
		Duplicates: claimTTL,
	})
	if streamErr != nil && !errors.Is(streamErr, nats.ErrStreamNameAlreadyInUse) {
		log.Error(fmt.Sprintf("could not create %s stream error: %v", cfg.AppConfig.NatsStreamName, streamErr))
		return
	}

	r := chi.NewRouter()
	metricsStore := metrics.New(prometheus.NewRegistry(), cfg.AppConfig.MetricsPrefix, cfg.AppConfig.Name, cfg.AppConfig.Env)

	services := server.NewServices(&cfg.AppConfig, metricsStore, log)
	app := server.New(&cfg.AppConfig, log, metricsStore, &services)

	app.Metrics.BuildInfo.Inc()

	claims := redis.NewClaims(rds, cfg.AppConfig.BlockTopic, claimTTL)
	feederWrk := feeder.New(log, services.ChainSrv, js, claims, metricsStore, cfg.AppConfig.BlockTopic)
	feederWrk.Run(gCtx, g, cfg.AppConfig.FeederInterval)

	app.RegisterMiddlewares(r)
	app.RegisterInfraRoutes(r)
	app.RunHTTPServer(gCtx, g, cfg.AppConfig.Port, r)

	log.Info(fmt.Sprintf(`Started %s feeder`, cfg.AppConfig.Name))

	if err := g.Wait(); err != nil {
		log.Error(err.Error())
	}

	fmt.Println(`Main done`)
}
