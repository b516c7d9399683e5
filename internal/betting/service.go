package betting

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/bet-ledger-engine/internal/domain"
	"github.com/radieske/bet-ledger-engine/pkg/contracts/events"
)

// PlaceBetInput agrupa os parâmetros de admissão. IdempotencyKey é opcional
// e vem do cliente; um retry com a mesma chave não gera débito duplicado.
type PlaceBetInput struct {
	UserID         string
	MatchID        string
	Outcome        domain.Outcome
	StakeCents     int64
	IdempotencyKey string
}

// Store define a persistência usada pelo serviço de apostas
type Store interface {
	PlaceBet(ctx context.Context, in PlaceBetInput) (domain.Bet, error)
	FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Bet, error)
}

// Publisher publica eventos de aposta admitida
type Publisher interface {
	PublishBetPlaced(ctx context.Context, e events.BetPlaced) error
}

// Service é o motor de apostas: resolve replay por idempotency key,
// delega a admissão atômica ao Store e publica o evento após o commit
type Service struct {
	log   *zap.Logger
	store Store
	publ  Publisher
}

func NewService(log *zap.Logger, store Store, publ Publisher) *Service {
	return &Service{log: log, store: store, publ: publ}
}

// PlaceBet admite ou rejeita uma aposta. Um retry com a mesma idempotency
// key devolve a aposta já criada sem novo débito.
func (s *Service) PlaceBet(ctx context.Context, in PlaceBetInput) (domain.Bet, error) {
	if in.IdempotencyKey != "" {
		existing, err := s.store.FindByIdempotencyKey(ctx, in.UserID, in.IdempotencyKey)
		if err != nil {
			return domain.Bet{}, err
		}
		if existing != nil {
			s.log.Info("bet replayed by idempotency key",
				zap.String("bet_id", existing.ID), zap.String("user_id", in.UserID))
			return *existing, nil
		}
	}

	bet, err := s.store.PlaceBet(ctx, in)
	if err != nil {
		return domain.Bet{}, err
	}

	s.log.Info("bet placed",
		zap.String("bet_id", bet.ID),
		zap.String("match_id", bet.MatchID),
		zap.String("outcome", string(bet.Outcome)),
		zap.Int64("stake_cents", bet.StakeCents),
		zap.Float64("odds_on_bet", bet.OddsOnBet),
	)

	// Publicação best-effort: a aposta já está committed
	if s.publ != nil {
		_ = s.publ.PublishBetPlaced(ctx, events.BetPlaced{
			BetID:      bet.ID,
			UserID:     bet.UserID,
			MatchID:    bet.MatchID,
			Outcome:    string(bet.Outcome),
			StakeCents: bet.StakeCents,
			OddsOnBet:  bet.OddsOnBet,
			TsUnixMs:   time.Now().UnixMilli(),
		})
	}

	return bet, nil
}
