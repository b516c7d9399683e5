package dto

import "time"

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type TeamRequest struct {
	Name string `json:"name"`
}

type OddsPayload struct {
	WinHome float64 `json:"win_home"`
	Draw    float64 `json:"draw"`
	WinAway float64 `json:"win_away"`
}

type CreateMatchRequest struct {
	HomeTeamID string      `json:"home_team_id"`
	AwayTeamID string      `json:"away_team_id"`
	StartTime  time.Time   `json:"start_time"`
	Odds       OddsPayload `json:"odds"`
}

// CompleteMatchRequest traz o resultado conhecido; corpo vazio não é
// aceito no complete normal (force-complete tem rota própria)
type CompleteMatchRequest struct {
	Result string `json:"result"`
}

type PlaceBetRequest struct {
	MatchID    string `json:"match_id"`
	Outcome    string `json:"outcome"` // "win_home" | "draw" | "win_away"
	StakeCents int64  `json:"stake_cents"`
}

type DepositRequest struct {
	AmountCents int64 `json:"amount_cents"`
}
