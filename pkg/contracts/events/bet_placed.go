package events

type BetPlaced struct {
	BetID      string  `json:"bet_id"`
	UserID     string  `json:"user_id"`
	MatchID    string  `json:"match_id"`
	Outcome    string  `json:"outcome"`
	StakeCents int64   `json:"stake_cents"`
	OddsOnBet  float64 `json:"odds_on_bet"` // odd congelada no momento da aposta
	TsUnixMs   int64   `json:"ts_unix_ms"`
}
