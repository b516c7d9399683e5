package query

import (
	"time"

	"github.com/radieske/bet-ledger-engine/internal/domain"
)

// MatchView é a projeção de partida consumida pelo cliente, com nomes
// dos times resolvidos
type MatchView struct {
	ID             string         `json:"id"`
	HomeTeamID     string         `json:"home_team_id"`
	HomeTeamName   string         `json:"home_team_name"`
	AwayTeamID     string         `json:"away_team_id"`
	AwayTeamName   string         `json:"away_team_name"`
	StartTime      time.Time      `json:"start_time"`
	Status         string         `json:"status"`
	Odds           domain.Odds    `json:"odds"`
	Result         *string        `json:"result,omitempty"`
	CompletionMode string         `json:"completion_mode,omitempty"`
}

// BetView é a aposta do histórico do usuário com contexto da partida
type BetView struct {
	ID           string     `json:"id"`
	MatchID      string     `json:"match_id"`
	HomeTeamName string     `json:"home_team_name"`
	AwayTeamName string     `json:"away_team_name"`
	Outcome      string     `json:"outcome"`
	StakeCents   int64      `json:"stake_cents"`
	OddsOnBet    float64    `json:"odds_on_bet"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
	SettledAt    *time.Time `json:"settled_at,omitempty"`
}
