package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/radieske/bet-ledger-engine/internal/domain"
	"github.com/radieske/bet-ledger-engine/internal/settlement"
	"github.com/radieske/bet-ledger-engine/internal/shared/config"
	"github.com/radieske/bet-ledger-engine/internal/shared/db"
	"github.com/radieske/bet-ledger-engine/internal/shared/kafka"
	"github.com/radieske/bet-ledger-engine/internal/shared/logger"
	"github.com/radieske/bet-ledger-engine/internal/shared/metrics"
	ev "github.com/radieske/bet-ledger-engine/pkg/contracts/events"
)

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	pg, err := db.ConnectPostgres(cfg.PostgresDSN)
	if err != nil {
		log.Fatal("pg connect", zap.Error(err))
	}
	defer pg.Close()

	// Consumer: re-executa a liquidação a partir dos eventos match_completed.
	// A liquidação é idempotente, então reprocessar a mesma partida é seguro.
	reader := kafka.NewReader(cfg.KafkaBrokers, cfg.TopicMatchCompleted, "settlement-worker")
	defer reader.Close()

	var dlqWriter *kafkago.Writer
	if cfg.TopicMatchCompletedDLQ != "" {
		dlqWriter = kafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchCompletedDLQ)
		defer dlqWriter.Close()
	}

	// Métricas Prometheus para monitoramento da liquidação
	consumed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_events_consumed_total", Help: "eventos match_completed consumidos"})
	settled := prometheus.NewCounterVec(prometheus.CounterOpts{Name: "settlement_bets_settled_total", Help: "apostas liquidadas por status"}, []string{"status"})
	failed := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_bets_failed_total", Help: "apostas com falha de liquidação"})
	dlqSent := prometheus.NewCounter(prometheus.CounterOpts{Name: "settlement_dlq_total", Help: "eventos enviados para a DLQ"})
	prometheus.MustRegister(consumed, settled, failed, dlqSent)

	engine := settlement.NewEngine(log, settlement.NewPostgres(pg))
	engine.OnSettled = func(status string) { settled.WithLabelValues(status).Inc() }
	engine.OnFailed = func() { failed.Inc() }

	// Servidor HTTP para métricas e health check
	metrics.StartMetricsServer(cfg.MetricsPort, func(ctx context.Context) error {
		if err := pg.PingContext(ctx); err != nil {
			return fmt.Errorf("pg: %w", err)
		}
		return nil
	})

	log.Info("settlement-worker started", zap.String("consume", cfg.TopicMatchCompleted))

	ctx := context.Background()

	// Loop principal: consome eventos e reprocessa a liquidação da partida
	for {
		_, value, err := kafka.ReadNext(ctx, reader)
		if err != nil {
			log.Warn("kafka read", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		consumed.Inc()

		var evc ev.MatchCompleted
		if jerr := json.Unmarshal(value, &evc); jerr != nil {
			log.Error("unmarshal match_completed", zap.Error(jerr))
			continue
		}

		if err := processOne(ctx, engine, &evc); err != nil {
			log.Error("settle match", zap.String("matchId", evc.MatchID), zap.Error(err))
			if dlqWriter != nil {
				if derr := kafka.WriteJSON(ctx, dlqWriter, evc.MatchID, value); derr != nil {
					log.Error("dlq write", zap.Error(derr))
				} else {
					dlqSent.Inc()
				}
			}
			// Backoff simples para evitar flood em caso de erro
			time.Sleep(500 * time.Millisecond)
		}
	}
}

// processOne re-executa a liquidação de uma partida, com retries antes da DLQ.
// Partidas anuladas estornam as apostas; as demais liquidam pelo resultado.
func processOne(ctx context.Context, engine *settlement.Engine, evc *ev.MatchCompleted) error {
	run := func() (settlement.Summary, error) {
		if evc.CompletionMode == string(domain.CompletionVoided) {
			return engine.Void(ctx, evc.MatchID)
		}
		if !domain.ValidOutcome(domain.Outcome(evc.Result)) {
			return settlement.Summary{}, fmt.Errorf("resultado inválido: %q", evc.Result)
		}
		return engine.Settle(ctx, evc.MatchID, domain.Outcome(evc.Result))
	}

	sum, err := run()
	if err != nil {
		const retries = 3
		for i := 0; i < retries; i++ {
			time.Sleep(time.Duration(300*(i+1)) * time.Millisecond)
			if sum, err = run(); err == nil {
				break
			}
		}
		if err != nil {
			return err
		}
	}
	if sum.Failed > 0 {
		return fmt.Errorf("%d apostas não liquidadas", sum.Failed)
	}
	return nil
}
