package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPayoutCentsRoundsHalfAway(t *testing.T) {
	cases := []struct {
		stake int64
		odds  float64
		want  int64
	}{
		{2000, 1.8, 3600},
		{1000, 2.5, 2500},
		{333, 1.15, 383},  // 382.95 arredonda pra cima
		{1, 2.5, 3},       // meio centavo arredonda pra longe do zero
		{100, 1.0, 100},   // odd 1.0 = devolução do stake
		{12345, 3.33, 41109},
	}
	for _, c := range cases {
		b := Bet{StakeCents: c.stake, OddsOnBet: c.odds}
		assert.Equal(t, c.want, b.PayoutCents(), "stake=%d odds=%v", c.stake, c.odds)
	}
}

func TestOddsValidation(t *testing.T) {
	assert.True(t, Odds{WinHome: 1.0, Draw: 1.0, WinAway: 1.0}.Valid())
	assert.True(t, Odds{WinHome: 1.8, Draw: 3.2, WinAway: 2.5}.Valid())
	assert.False(t, Odds{WinHome: 0.99, Draw: 3.2, WinAway: 2.5}.Valid())
	assert.False(t, Odds{WinHome: 1.8, Draw: 0, WinAway: 2.5}.Valid())
}

func TestOddsForOutcome(t *testing.T) {
	o := Odds{WinHome: 1.8, Draw: 3.2, WinAway: 2.5}
	assert.Equal(t, 1.8, o.For(OutcomeWinHome))
	assert.Equal(t, 3.2, o.For(OutcomeDraw))
	assert.Equal(t, 2.5, o.For(OutcomeWinAway))
}

func TestValidOutcome(t *testing.T) {
	for _, o := range Outcomes {
		assert.True(t, ValidOutcome(o))
	}
	assert.False(t, ValidOutcome("home_win"))
	assert.False(t, ValidOutcome(""))
}
