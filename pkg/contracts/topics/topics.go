package topics

const (
	// Bets
	BetPlaced = "bet_placed"

	// Matches / settlement
	MatchCompleted = "match_completed"

	// DLQs
	MatchCompletedDLQ = "match_completed_dlq"
)
