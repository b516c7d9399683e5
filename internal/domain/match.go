package domain

import "time"

// Status do ciclo de vida da partida. Transições são monotônicas:
// scheduled -> active -> completed, sem regressão.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "scheduled"
	MatchActive    MatchStatus = "active"
	MatchCompleted MatchStatus = "completed"
)

// Outcome é um dos três resultados possíveis do mercado 1x2.
type Outcome string

const (
	OutcomeWinHome Outcome = "win_home"
	OutcomeDraw    Outcome = "draw"
	OutcomeWinAway Outcome = "win_away"
)

// Outcomes lista os resultados válidos, na ordem usada pelo sorteio
// do force-complete.
var Outcomes = []Outcome{OutcomeWinHome, OutcomeDraw, OutcomeWinAway}

// ValidOutcome indica se o valor recebido é um dos três resultados do 1x2.
func ValidOutcome(o Outcome) bool {
	return o == OutcomeWinHome || o == OutcomeDraw || o == OutcomeWinAway
}

// CompletionMode distingue, para auditoria, como a partida foi encerrada:
// com resultado real, por sorteio administrativo ou anulada.
type CompletionMode string

const (
	CompletionByResult CompletionMode = "result"
	CompletionForced   CompletionMode = "forced_random"
	CompletionVoided   CompletionMode = "voided"
)

// Odds do mercado 1x2 de uma partida. Valores decimais >= 1.0.
type Odds struct {
	WinHome float64 `json:"win_home"`
	Draw    float64 `json:"draw"`
	WinAway float64 `json:"win_away"`
}

// For retorna a odd corrente para um outcome.
func (o Odds) For(out Outcome) float64 {
	switch out {
	case OutcomeWinHome:
		return o.WinHome
	case OutcomeDraw:
		return o.Draw
	default:
		return o.WinAway
	}
}

// Valid exige odds positivas e >= 1.0 nos três resultados.
func (o Odds) Valid() bool {
	return o.WinHome >= 1.0 && o.Draw >= 1.0 && o.WinAway >= 1.0
}

// Match é a partida persistida. Result só é preenchido quando
// Status = completed; partidas nunca são apagadas depois que
// existem apostas referenciando-as.
type Match struct {
	ID             string         `json:"id"`
	HomeTeamID     string         `json:"home_team_id"`
	AwayTeamID     string         `json:"away_team_id"`
	StartTime      time.Time      `json:"start_time"`
	Status         MatchStatus    `json:"status"`
	Odds           Odds           `json:"odds"`
	Result         *Outcome       `json:"result,omitempty"`
	CompletionMode CompletionMode `json:"completion_mode,omitempty"`
	CompletedAt    *time.Time     `json:"completed_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
