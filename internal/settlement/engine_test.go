package settlement

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/bet-ledger-engine/internal/domain"
)

// fakeStore simula a persistência de liquidação em memória, espelhando a
// regra do Postgres: apostas fora de pending são ignoradas no passe.
type fakeStore struct {
	bets     map[string]*domain.Bet
	order    []string
	failOn   map[string]error
	settled  []string
	balances map[string]int64
}

func newFakeStore(bets ...*domain.Bet) *fakeStore {
	fs := &fakeStore{bets: map[string]*domain.Bet{}, failOn: map[string]error{}, balances: map[string]int64{}}
	for _, b := range bets {
		fs.bets[b.ID] = b
		fs.order = append(fs.order, b.ID)
	}
	return fs
}

func (f *fakeStore) ListPendingBets(_ context.Context, matchID string) ([]domain.Bet, error) {
	var out []domain.Bet
	for _, id := range f.order {
		b := f.bets[id]
		if b.MatchID == matchID && b.Status == domain.BetPending {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeStore) SettleBet(_ context.Context, betID string, won bool) error {
	if err := f.failOn[betID]; err != nil {
		return err
	}
	b := f.bets[betID]
	if b.Status != domain.BetPending {
		return nil
	}
	if won {
		b.Status = domain.BetWon
		f.balances[b.UserID] += b.PayoutCents()
	} else {
		b.Status = domain.BetLost
	}
	f.settled = append(f.settled, betID)
	return nil
}

func (f *fakeStore) CancelBet(_ context.Context, betID string) error {
	if err := f.failOn[betID]; err != nil {
		return err
	}
	b := f.bets[betID]
	if b.Status != domain.BetPending {
		return nil
	}
	b.Status = domain.BetCancelled
	f.balances[b.UserID] += b.StakeCents
	f.settled = append(f.settled, betID)
	return nil
}

func pendingBet(id, matchID string, outcome domain.Outcome, stake int64, odds float64) *domain.Bet {
	return &domain.Bet{
		ID:         id,
		UserID:     "u-" + id,
		MatchID:    matchID,
		Outcome:    outcome,
		StakeCents: stake,
		OddsOnBet:  odds,
		Status:     domain.BetPending,
	}
}

func TestSettleClassifiesByResult(t *testing.T) {
	store := newFakeStore(
		pendingBet("b1", "m1", domain.OutcomeWinHome, 2000, 1.8),
		pendingBet("b2", "m1", domain.OutcomeWinAway, 1000, 2.5),
		pendingBet("b3", "m1", domain.OutcomeDraw, 500, 3.2),
	)
	engine := NewEngine(zap.NewNop(), store)

	sum, err := engine.Settle(context.Background(), "m1", domain.OutcomeWinHome)
	require.NoError(t, err)

	assert.Equal(t, 1, sum.Won)
	assert.Equal(t, 2, sum.Lost)
	assert.Equal(t, 0, sum.Failed)
	assert.Equal(t, domain.BetWon, store.bets["b1"].Status)
	assert.Equal(t, domain.BetLost, store.bets["b2"].Status)
	assert.Equal(t, domain.BetLost, store.bets["b3"].Status)
}

func TestSettleIsIdempotent(t *testing.T) {
	store := newFakeStore(
		pendingBet("b1", "m1", domain.OutcomeDraw, 1500, 3.0),
		pendingBet("b2", "m1", domain.OutcomeWinHome, 700, 1.5),
	)
	engine := NewEngine(zap.NewNop(), store)

	_, err := engine.Settle(context.Background(), "m1", domain.OutcomeDraw)
	require.NoError(t, err)
	require.Len(t, store.settled, 2)

	// segundo passe: nada pendente, nada muda
	sum, err := engine.Settle(context.Background(), "m1", domain.OutcomeDraw)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
	assert.Len(t, store.settled, 2)
	assert.Equal(t, domain.BetWon, store.bets["b1"].Status)
}

func TestSettlePartialFailureLeavesBetPending(t *testing.T) {
	store := newFakeStore(
		pendingBet("b1", "m1", domain.OutcomeWinHome, 1000, 2.0),
		pendingBet("b2", "m1", domain.OutcomeWinHome, 1000, 2.0),
		pendingBet("b3", "m1", domain.OutcomeWinAway, 1000, 2.0),
	)
	store.failOn["b2"] = errors.New("deadlock")
	engine := NewEngine(zap.NewNop(), store)

	sum, err := engine.Settle(context.Background(), "m1", domain.OutcomeWinHome)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.Won)
	assert.Equal(t, 1, sum.Lost)
	assert.Equal(t, 1, sum.Failed)
	assert.Equal(t, domain.BetPending, store.bets["b2"].Status)

	// re-execução só toca a aposta que ficou pendente
	delete(store.failOn, "b2")
	sum, err = engine.Settle(context.Background(), "m1", domain.OutcomeWinHome)
	require.NoError(t, err)
	assert.Equal(t, Summary{Won: 1}, sum)
	assert.Equal(t, domain.BetWon, store.bets["b2"].Status)
}

func TestVoidCancelsPendingBets(t *testing.T) {
	store := newFakeStore(
		pendingBet("b1", "m1", domain.OutcomeWinHome, 2000, 1.8),
		pendingBet("b2", "m1", domain.OutcomeDraw, 300, 3.4),
	)
	// aposta já liquidada em outra partida não entra no passe
	other := pendingBet("b3", "m2", domain.OutcomeWinAway, 100, 2.0)
	store.bets["b3"] = other
	store.order = append(store.order, "b3")

	engine := NewEngine(zap.NewNop(), store)
	sum, err := engine.Void(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, 2, sum.Cancelled)
	assert.Equal(t, domain.BetCancelled, store.bets["b1"].Status)
	assert.Equal(t, domain.BetCancelled, store.bets["b2"].Status)
	assert.Equal(t, domain.BetPending, store.bets["b3"].Status)
}

func TestSettleCreditsPayoutOnWin(t *testing.T) {
	// saldo 100, aposta de 20 a 1.8 já debitada (saldo 80):
	// win_home paga 80 + 20*1.8 = 116; win_away deixa em 80
	bet := pendingBet("b1", "m1", domain.OutcomeWinHome, 2000, 1.8)

	store := newFakeStore(bet)
	store.balances[bet.UserID] = 8000
	engine := NewEngine(zap.NewNop(), store)

	_, err := engine.Settle(context.Background(), "m1", domain.OutcomeWinHome)
	require.NoError(t, err)
	assert.Equal(t, int64(11600), store.balances[bet.UserID])

	lost := pendingBet("b2", "m2", domain.OutcomeWinHome, 2000, 1.8)
	store = newFakeStore(lost)
	store.balances[lost.UserID] = 8000
	engine = NewEngine(zap.NewNop(), store)

	_, err = engine.Settle(context.Background(), "m2", domain.OutcomeWinAway)
	require.NoError(t, err)
	assert.Equal(t, int64(8000), store.balances[lost.UserID])
}

func TestVoidRefundsStake(t *testing.T) {
	bet := pendingBet("b1", "m1", domain.OutcomeDraw, 2000, 3.0)
	store := newFakeStore(bet)
	store.balances[bet.UserID] = 8000
	engine := NewEngine(zap.NewNop(), store)

	_, err := engine.Void(context.Background(), "m1")
	require.NoError(t, err)
	// estorno a 1.0: só o stake volta
	assert.Equal(t, int64(10000), store.balances[bet.UserID])
}

func TestEngineMetricsCallbacks(t *testing.T) {
	store := newFakeStore(
		pendingBet("b1", "m1", domain.OutcomeWinHome, 1000, 2.0),
		pendingBet("b2", "m1", domain.OutcomeDraw, 1000, 2.0),
	)
	engine := NewEngine(zap.NewNop(), store)

	byStatus := map[string]int{}
	engine.OnSettled = func(status string) { byStatus[status]++ }

	_, err := engine.Settle(context.Background(), "m1", domain.OutcomeWinHome)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"won": 1, "lost": 1}, byStatus)
}
