package main

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/radieske/bet-ledger-engine/internal/api"
	"github.com/radieske/bet-ledger-engine/internal/auth"
	"github.com/radieske/bet-ledger-engine/internal/betting"
	"github.com/radieske/bet-ledger-engine/internal/ledger"
	"github.com/radieske/bet-ledger-engine/internal/match"
	"github.com/radieske/bet-ledger-engine/internal/query"
	"github.com/radieske/bet-ledger-engine/internal/settlement"
	"github.com/radieske/bet-ledger-engine/internal/shared/cache"
	"github.com/radieske/bet-ledger-engine/internal/shared/config"
	"github.com/radieske/bet-ledger-engine/internal/shared/db"
	"github.com/radieske/bet-ledger-engine/internal/shared/kafka"
	"github.com/radieske/bet-ledger-engine/internal/shared/logger"
	"github.com/radieske/bet-ledger-engine/internal/shared/metrics"
	"github.com/radieske/bet-ledger-engine/internal/team"
	"github.com/radieske/bet-ledger-engine/internal/ws"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(fmt.Errorf("logger init: %w", err))
	}
	defer log.Sync()

	log.Info("starting service", zap.String("service", cfg.ServiceName), zap.String("env", cfg.Env))

	// Postgres
	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("postgres connect", zap.Error(err))
	}
	defer pg.Close()

	// Redis
	rdb, err := cache.ConnectRedis(cfg.RedisAddr)
	if err != nil {
		log.Fatal("redis connect", zap.Error(err))
	}
	defer rdb.Close()

	// Kafka writers
	betWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicBetPlaced)
	defer betWriter.Close()
	matchWriter := kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchCompleted)
	defer matchWriter.Close()

	// deps
	jwtSvc := auth.NewJWTService(cfg.JWTSecret)
	authSvc := auth.NewService(log, auth.NewPostgres(pg), jwtSvc)
	walletRepo := ledger.NewPostgres(pg)
	teamRepo := team.NewPostgres(pg)

	broadcaster := ws.NewRedisBroadcaster(rdb, cfg.RedisPubSubChannel, log)
	settleEngine := settlement.NewEngine(log, settlement.NewPostgres(pg))
	matchSvc := match.NewService(log, match.NewPostgres(pg), settleEngine,
		match.NewKafkaPublisher(matchWriter), broadcaster)
	betSvc := betting.NewService(log, betting.NewPostgres(pg),
		betting.NewKafkaPublisher(betWriter))

	reads := &query.ReadRepo{DB: pg}
	listCache := query.NewCache(rdb)

	hub := ws.NewHub(func(r *http.Request) bool { return true })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ws.StartRedisSubscriber(ctx, rdb, cfg.RedisPubSubChannel, hub, log)

	// HTTP público
	srv := api.NewServer(log, jwtSvc, authSvc, betSvc, matchSvc, teamRepo, walletRepo, reads, listCache, hub)
	apiSrv := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: srv.Router(),
	}

	// metrics/health
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})

	log.Info("api listening", zap.String("addr", apiSrv.Addr))
	if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("api srv", zap.Error(err))
	}
}
