package match

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/radieske/bet-ledger-engine/internal/domain"
	"github.com/radieske/bet-ledger-engine/internal/settlement"
	"github.com/radieske/bet-ledger-engine/pkg/contracts/events"
)

// Store define a persistência de partidas usada pelo serviço
type Store interface {
	Create(ctx context.Context, m domain.Match) error
	Get(ctx context.Context, id string) (domain.Match, error)
	UpdateOdds(ctx context.Context, id string, odds domain.Odds) error
	Start(ctx context.Context, id string) (domain.Match, error)
	Complete(ctx context.Context, id string, result *domain.Outcome, mode domain.CompletionMode) (domain.Match, bool, error)
}

// Settler liquida as apostas de uma partida concluída
type Settler interface {
	Settle(ctx context.Context, matchID string, result domain.Outcome) (settlement.Summary, error)
	Void(ctx context.Context, matchID string) (settlement.Summary, error)
}

// Publisher emite o evento de conclusão para o passe de replay do worker
type Publisher interface {
	PublishMatchCompleted(ctx context.Context, e events.MatchCompleted) error
}

// Broadcaster propaga mudanças de odds/status para o fan-out WebSocket
type Broadcaster interface {
	BroadcastMatchUpdate(ctx context.Context, matchID string, payload any)
}

// Service é a máquina de estado das partidas: scheduled -> active ->
// completed, sem regressão. A conclusão é a única transição com efeito
// colateral — ela dispara a liquidação.
type Service struct {
	log     *zap.Logger
	store   Store
	settler Settler
	publ    Publisher
	bcast   Broadcaster

	// pick sorteia o resultado do force-complete; injetável nos testes
	pick func() domain.Outcome
}

func NewService(log *zap.Logger, store Store, settler Settler, publ Publisher, bcast Broadcaster) *Service {
	return &Service{
		log:     log,
		store:   store,
		settler: settler,
		publ:    publ,
		bcast:   bcast,
		pick: func() domain.Outcome {
			return domain.Outcomes[rand.Intn(len(domain.Outcomes))]
		},
	}
}

// CreateInput agrupa os campos de criação de partida
type CreateInput struct {
	HomeTeamID string
	AwayTeamID string
	StartTime  time.Time
	Odds       domain.Odds
}

// Create registra uma partida scheduled com suas odds iniciais
func (s *Service) Create(ctx context.Context, in CreateInput) (domain.Match, error) {
	if in.HomeTeamID == in.AwayTeamID {
		return domain.Match{}, ErrSameTeams
	}
	if !in.Odds.Valid() {
		return domain.Match{}, ErrInvalidOdds
	}

	m := domain.Match{
		ID:         uuid.NewString(),
		HomeTeamID: in.HomeTeamID,
		AwayTeamID: in.AwayTeamID,
		StartTime:  in.StartTime,
		Status:     domain.MatchScheduled,
		Odds:       in.Odds,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Create(ctx, m); err != nil {
		return domain.Match{}, err
	}

	s.log.Info("match created", zap.String("match_id", m.ID))
	return m, nil
}

// UpdateOdds troca as odds correntes enquanto a partida está scheduled.
// Não altera odds_on_bet de nenhuma aposta existente.
func (s *Service) UpdateOdds(ctx context.Context, id string, odds domain.Odds) (domain.Match, error) {
	if !odds.Valid() {
		return domain.Match{}, ErrInvalidOdds
	}
	if err := s.store.UpdateOdds(ctx, id, odds); err != nil {
		return domain.Match{}, err
	}

	m, err := s.store.Get(ctx, id)
	if err != nil {
		return domain.Match{}, err
	}

	s.log.Info("odds updated", zap.String("match_id", id),
		zap.Float64("win_home", odds.WinHome), zap.Float64("draw", odds.Draw), zap.Float64("win_away", odds.WinAway))
	s.broadcast(ctx, m)
	return m, nil
}

// Start aplica scheduled -> active
func (s *Service) Start(ctx context.Context, id string) (domain.Match, error) {
	m, err := s.store.Start(ctx, id)
	if err != nil {
		return domain.Match{}, err
	}
	s.log.Info("match started", zap.String("match_id", id))
	s.broadcast(ctx, m)
	return m, nil
}

// Complete encerra a partida com um resultado conhecido e liquida as
// apostas. Repetir a chamada com o mesmo resultado é no-op devolvendo a
// partida já concluída; resultado divergente é conflito.
func (s *Service) Complete(ctx context.Context, id string, result domain.Outcome) (domain.Match, error) {
	if !domain.ValidOutcome(result) {
		return domain.Match{}, ErrInvalidResult
	}
	return s.complete(ctx, id, result, domain.CompletionByResult)
}

// ForceComplete encerra administrativamente uma partida sem resultado
// conhecido, sorteando uniformemente entre os três resultados. O modo
// forced_random fica gravado na partida e o log distingue o caminho,
// já que o payout aqui vem de sorte e não de fato.
func (s *Service) ForceComplete(ctx context.Context, id string) (domain.Match, error) {
	result := s.pick()
	s.log.Warn("force-completing match with random result",
		zap.String("match_id", id), zap.String("result", string(result)))
	return s.complete(ctx, id, result, domain.CompletionForced)
}

// Void anula a partida: apostas pendentes viram cancelled com o stake
// devolvido a 1.0. A partida fecha completed sem result.
func (s *Service) Void(ctx context.Context, id string) (domain.Match, error) {
	m, transitioned, err := s.store.Complete(ctx, id, nil, domain.CompletionVoided)
	if err != nil {
		return domain.Match{}, err
	}
	if !transitioned {
		return m, nil
	}

	if _, err := s.settler.Void(ctx, id); err != nil {
		// o worker re-executa a partir do evento
		s.log.Error("void settlement pass failed", zap.String("match_id", id), zap.Error(err))
	}

	s.publish(ctx, m)
	s.broadcast(ctx, m)
	return m, nil
}

func (s *Service) complete(ctx context.Context, id string, result domain.Outcome, mode domain.CompletionMode) (domain.Match, error) {
	m, transitioned, err := s.store.Complete(ctx, id, &result, mode)
	if err != nil {
		return domain.Match{}, err
	}
	if !transitioned {
		// já estava completed com o mesmo resultado
		return m, nil
	}

	if _, err := s.settler.Settle(ctx, id, result); err != nil {
		// apostas que falharem seguem pending; o worker repete o passe
		s.log.Error("settlement pass failed", zap.String("match_id", id), zap.Error(err))
	}

	s.publish(ctx, m)
	s.broadcast(ctx, m)
	return m, nil
}

// publish emite o match_completed que alimenta o passe de replay do
// worker. Se a liquidação síncrona falhou, este evento é o único gatilho
// de retry, então a publicação insiste antes de desistir.
func (s *Service) publish(ctx context.Context, m domain.Match) {
	if s.publ == nil {
		return
	}
	var result string
	if m.Result != nil {
		result = string(*m.Result)
	}
	evc := events.MatchCompleted{
		MatchID:        m.ID,
		Result:         result,
		CompletionMode: string(m.CompletionMode),
		Ts:             time.Now().UTC(),
	}

	var err error
	for i := 0; i < 3; i++ {
		if err = s.publ.PublishMatchCompleted(ctx, evc); err == nil {
			return
		}
		time.Sleep(time.Duration(100*(i+1)) * time.Millisecond)
	}
	s.log.Error("match_completed publish failed",
		zap.String("match_id", m.ID), zap.Error(err))
}

func (s *Service) broadcast(ctx context.Context, m domain.Match) {
	if s.bcast != nil {
		s.bcast.BroadcastMatchUpdate(ctx, m.ID, m)
	}
}
