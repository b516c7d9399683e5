package match

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/bet-ledger-engine/internal/domain"
	"github.com/radieske/bet-ledger-engine/internal/settlement"
	"github.com/radieske/bet-ledger-engine/pkg/contracts/events"
)

// fakeStore espelha em memória a máquina de estado do Postgres:
// transições monotônicas, conclusão idempotente e conflito de resultado.
type fakeStore struct {
	mu      sync.Mutex
	matches map[string]*domain.Match
}

func newFakeStore() *fakeStore {
	return &fakeStore{matches: map[string]*domain.Match{}}
}

func (f *fakeStore) Create(_ context.Context, m domain.Match) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.matches[m.ID] = &m
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (domain.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return domain.Match{}, ErrNotFound
	}
	return *m, nil
}

func (f *fakeStore) UpdateOdds(_ context.Context, id string, odds domain.Odds) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return ErrNotFound
	}
	if m.Status != domain.MatchScheduled {
		return ErrOddsLocked
	}
	m.Odds = odds
	return nil
}

func (f *fakeStore) Start(_ context.Context, id string) (domain.Match, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return domain.Match{}, ErrNotFound
	}
	if m.Status != domain.MatchScheduled {
		return domain.Match{}, ErrInvalidTransition
	}
	m.Status = domain.MatchActive
	return *m, nil
}

func (f *fakeStore) Complete(_ context.Context, id string, result *domain.Outcome, mode domain.CompletionMode) (domain.Match, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.matches[id]
	if !ok {
		return domain.Match{}, false, ErrNotFound
	}
	if m.Status == domain.MatchCompleted {
		if mode == domain.CompletionByResult && result != nil && (m.Result == nil || *m.Result != *result) {
			return domain.Match{}, false, ErrResultConflict
		}
		return *m, false, nil
	}
	now := time.Now().UTC()
	m.Status = domain.MatchCompleted
	m.Result = result
	m.CompletionMode = mode
	m.CompletedAt = &now
	return *m, true, nil
}

// fakeSettler registra os passes de liquidação disparados pelo serviço
type fakeSettler struct {
	settleCalls []string
	voidCalls   []string
	lastResult  domain.Outcome
}

func (f *fakeSettler) Settle(_ context.Context, matchID string, result domain.Outcome) (settlement.Summary, error) {
	f.settleCalls = append(f.settleCalls, matchID)
	f.lastResult = result
	return settlement.Summary{}, nil
}

func (f *fakeSettler) Void(_ context.Context, matchID string) (settlement.Summary, error) {
	f.voidCalls = append(f.voidCalls, matchID)
	return settlement.Summary{}, nil
}

type fakePublisher struct {
	events   []events.MatchCompleted
	failures int // falha as primeiras n publicações
	attempts int
}

func (f *fakePublisher) PublishMatchCompleted(_ context.Context, e events.MatchCompleted) error {
	f.attempts++
	if f.failures > 0 {
		f.failures--
		return errors.New("broker unavailable")
	}
	f.events = append(f.events, e)
	return nil
}

func newTestService(t *testing.T) (*Service, *fakeStore, *fakeSettler, *fakePublisher) {
	t.Helper()
	store := newFakeStore()
	settler := &fakeSettler{}
	publ := &fakePublisher{}
	svc := NewService(zap.NewNop(), store, settler, publ, nil)
	return svc, store, settler, publ
}

func createScheduled(t *testing.T, svc *Service) domain.Match {
	t.Helper()
	m, err := svc.Create(context.Background(), CreateInput{
		HomeTeamID: "t-home",
		AwayTeamID: "t-away",
		StartTime:  time.Now().Add(time.Hour),
		Odds:       domain.Odds{WinHome: 1.8, Draw: 3.2, WinAway: 2.5},
	})
	require.NoError(t, err)
	return m
}

func TestCreateValidations(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateInput{HomeTeamID: "t1", AwayTeamID: "t1",
		Odds: domain.Odds{WinHome: 1.8, Draw: 3.2, WinAway: 2.5}})
	assert.ErrorIs(t, err, ErrSameTeams)

	_, err = svc.Create(ctx, CreateInput{HomeTeamID: "t1", AwayTeamID: "t2",
		Odds: domain.Odds{WinHome: 0.9, Draw: 3.2, WinAway: 2.5}})
	assert.ErrorIs(t, err, ErrInvalidOdds)
}

func TestTransitionsAreMonotonic(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	m := createScheduled(t, svc)

	started, err := svc.Start(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchActive, started.Status)

	// active não volta pra scheduled
	_, err = svc.Start(ctx, m.ID)
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// odds congeladas fora de scheduled
	_, err = svc.UpdateOdds(ctx, m.ID, domain.Odds{WinHome: 2.0, Draw: 3.0, WinAway: 2.0})
	assert.ErrorIs(t, err, ErrOddsLocked)
}

func TestCompleteSettlesOnceAndPublishes(t *testing.T) {
	svc, _, settler, publ := newTestService(t)
	ctx := context.Background()
	m := createScheduled(t, svc)
	_, err := svc.Start(ctx, m.ID)
	require.NoError(t, err)

	done, err := svc.Complete(ctx, m.ID, domain.OutcomeWinAway)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, domain.OutcomeWinAway, *done.Result)
	assert.Equal(t, domain.CompletionByResult, done.CompletionMode)

	require.Len(t, settler.settleCalls, 1)
	assert.Equal(t, domain.OutcomeWinAway, settler.lastResult)
	require.Len(t, publ.events, 1)
	assert.Equal(t, string(domain.OutcomeWinAway), publ.events[0].Result)

	// repetir com o mesmo resultado: no-op, sem novo passe de liquidação
	again, err := svc.Complete(ctx, m.ID, domain.OutcomeWinAway)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchCompleted, again.Status)
	assert.Len(t, settler.settleCalls, 1)
	assert.Len(t, publ.events, 1)
}

func TestCompleteResultConflict(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	m := createScheduled(t, svc)

	_, err := svc.Complete(ctx, m.ID, domain.OutcomeDraw)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, m.ID, domain.OutcomeWinHome)
	assert.ErrorIs(t, err, ErrResultConflict)
}

func TestCompleteRejectsUnknownResult(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	m := createScheduled(t, svc)

	_, err := svc.Complete(context.Background(), m.ID, "home_win")
	assert.ErrorIs(t, err, ErrInvalidResult)
}

func TestForceCompleteUsesPickedResult(t *testing.T) {
	svc, _, settler, _ := newTestService(t)
	svc.pick = func() domain.Outcome { return domain.OutcomeDraw }
	m := createScheduled(t, svc)

	done, err := svc.ForceComplete(context.Background(), m.ID)
	require.NoError(t, err)
	require.NotNil(t, done.Result)
	assert.Equal(t, domain.OutcomeDraw, *done.Result)
	assert.Equal(t, domain.CompletionForced, done.CompletionMode)
	assert.Equal(t, domain.OutcomeDraw, settler.lastResult)
}

func TestForceCompleteRetryReturnsStoredResult(t *testing.T) {
	svc, _, settler, publ := newTestService(t)
	svc.pick = func() domain.Outcome { return domain.OutcomeDraw }
	m := createScheduled(t, svc)
	ctx := context.Background()

	first, err := svc.ForceComplete(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, first.Result)
	assert.Equal(t, domain.OutcomeDraw, *first.Result)

	// retry com sorteio caindo em outro resultado: devolve o gravado,
	// sem conflito, sem novo passe de liquidação nem novo evento
	svc.pick = func() domain.Outcome { return domain.OutcomeWinHome }
	again, err := svc.ForceComplete(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, again.Result)
	assert.Equal(t, domain.OutcomeDraw, *again.Result)
	assert.Len(t, settler.settleCalls, 1)
	assert.Len(t, publ.events, 1)
}

func TestForceCompleteDefaultPickIsUniform(t *testing.T) {
	svc, _, _, _ := newTestService(t)

	const draws = 3000
	seen := map[domain.Outcome]int{}
	for i := 0; i < draws; i++ {
		seen[svc.pick()]++
	}
	// tolerância de +-10 pontos percentuais em volta de 1/3
	for _, o := range domain.Outcomes {
		assert.InDelta(t, draws/3, seen[o], 0.10*draws, "distribuição de %s fora da tolerância", o)
	}
}

func TestCompletePublishRetriesUntilSuccess(t *testing.T) {
	svc, _, _, publ := newTestService(t)
	publ.failures = 2
	m := createScheduled(t, svc)

	_, err := svc.Complete(context.Background(), m.ID, domain.OutcomeWinHome)
	require.NoError(t, err)

	// duas falhas transitórias do broker, evento sai na terceira tentativa
	assert.Equal(t, 3, publ.attempts)
	require.Len(t, publ.events, 1)
	assert.Equal(t, m.ID, publ.events[0].MatchID)
}

func TestCompleteSurvivesPublishExhaustion(t *testing.T) {
	svc, store, settler, publ := newTestService(t)
	publ.failures = 10
	m := createScheduled(t, svc)

	// mesmo sem conseguir publicar, a conclusão e a liquidação valem
	done, err := svc.Complete(context.Background(), m.ID, domain.OutcomeDraw)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchCompleted, done.Status)
	assert.Len(t, settler.settleCalls, 1)
	assert.Empty(t, publ.events)

	stored, err := store.Get(context.Background(), m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchCompleted, stored.Status)
}

func TestVoidCancelsAndClosesWithoutResult(t *testing.T) {
	svc, _, settler, publ := newTestService(t)
	ctx := context.Background()
	m := createScheduled(t, svc)

	done, err := svc.Void(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.MatchCompleted, done.Status)
	assert.Nil(t, done.Result)
	assert.Equal(t, domain.CompletionVoided, done.CompletionMode)
	require.Len(t, settler.voidCalls, 1)
	require.Len(t, publ.events, 1)
	assert.Equal(t, string(domain.CompletionVoided), publ.events[0].CompletionMode)
	assert.Empty(t, publ.events[0].Result)

	// anular de novo é no-op
	_, err = svc.Void(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, settler.voidCalls, 1)
}
