package settlement

import (
	"context"

	"go.uber.org/zap"

	"github.com/radieske/bet-ledger-engine/internal/domain"
)

// Store define a persistência usada pelo motor de liquidação
type Store interface {
	ListPendingBets(ctx context.Context, matchID string) ([]domain.Bet, error)
	SettleBet(ctx context.Context, betID string, won bool) error
	CancelBet(ctx context.Context, betID string) error
}

// Summary resume um passe de liquidação sobre uma partida
type Summary struct {
	Won       int `json:"won"`
	Lost      int `json:"lost"`
	Cancelled int `json:"cancelled"`
	Failed    int `json:"failed"`
}

// Engine resolve todas as apostas pendentes de uma partida concluída.
// A liquidação é um mapa sobre transações por aposta independentes, não
// uma transação global: falha numa aposta não aborta as demais, e
// re-executar o passe só toca o que ficou pendente.
type Engine struct {
	log   *zap.Logger
	store Store

	// callbacks de métricas, opcionais
	OnSettled func(status string)
	OnFailed  func()
}

func NewEngine(log *zap.Logger, store Store) *Engine {
	return &Engine{log: log, store: store}
}

// Settle aplica o resultado da partida a cada aposta pendente:
// outcome == result ganha (crédito de stake * odds_on_bet), o resto perde.
// Seguro de re-executar após falha parcial.
func (e *Engine) Settle(ctx context.Context, matchID string, result domain.Outcome) (Summary, error) {
	bets, err := e.store.ListPendingBets(ctx, matchID)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, b := range bets {
		won := b.Outcome == result
		if err := e.store.SettleBet(ctx, b.ID, won); err != nil {
			// A aposta fica pending e entra no próximo passe
			e.log.Error("bet settlement failed",
				zap.String("bet_id", b.ID), zap.String("match_id", matchID), zap.Error(err))
			sum.Failed++
			if e.OnFailed != nil {
				e.OnFailed()
			}
			continue
		}
		if won {
			sum.Won++
		} else {
			sum.Lost++
		}
		if e.OnSettled != nil {
			if won {
				e.OnSettled("won")
			} else {
				e.OnSettled("lost")
			}
		}
	}

	e.log.Info("match settled",
		zap.String("match_id", matchID),
		zap.String("result", string(result)),
		zap.Int("won", sum.Won), zap.Int("lost", sum.Lost), zap.Int("failed", sum.Failed),
	)
	return sum, nil
}

// Void anula todas as apostas pendentes da partida, devolvendo o stake
// de cada uma a 1.0
func (e *Engine) Void(ctx context.Context, matchID string) (Summary, error) {
	bets, err := e.store.ListPendingBets(ctx, matchID)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	for _, b := range bets {
		if err := e.store.CancelBet(ctx, b.ID); err != nil {
			e.log.Error("bet cancel failed",
				zap.String("bet_id", b.ID), zap.String("match_id", matchID), zap.Error(err))
			sum.Failed++
			if e.OnFailed != nil {
				e.OnFailed()
			}
			continue
		}
		sum.Cancelled++
		if e.OnSettled != nil {
			e.OnSettled("cancelled")
		}
	}

	e.log.Info("match voided",
		zap.String("match_id", matchID),
		zap.Int("cancelled", sum.Cancelled), zap.Int("failed", sum.Failed),
	)
	return sum, nil
}
