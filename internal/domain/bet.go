package domain

import (
	"math"
	"time"
)

// Status da aposta. pending é o único estado não-terminal; won, lost e
// cancelled nunca são revisitados.
type BetStatus string

const (
	BetPending   BetStatus = "pending"
	BetWon       BetStatus = "won"
	BetLost      BetStatus = "lost"
	BetCancelled BetStatus = "cancelled"
)

// Bet é a aposta persistida. OddsOnBet é snapshot da odd do outcome no
// momento da criação e é imutável depois disso — edições posteriores de
// odds não alteram apostas pendentes nem liquidadas.
type Bet struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	MatchID        string    `json:"match_id"`
	Outcome        Outcome   `json:"outcome"`
	StakeCents     int64     `json:"stake_cents"`
	OddsOnBet      float64   `json:"odds_on_bet"`
	Status         BetStatus `json:"status"`
	IdempotencyKey string    `json:"-"`
	CreatedAt      time.Time `json:"created_at"`
	SettledAt      *time.Time `json:"settled_at,omitempty"`
}

// PayoutCents calcula o prêmio de uma aposta vencedora em centavos.
func (b Bet) PayoutCents() int64 {
	return int64(math.Round(float64(b.StakeCents) * b.OddsOnBet))
}
