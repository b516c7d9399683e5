package query

import (
	"context"
	"database/sql"
)

// ReadRepo concentra as projeções read-only consumidas pelo cliente.
// Sem efeitos colaterais; lê sempre estado committed, então uma aposta
// nunca aparece won sem o crédito correspondente já refletido no saldo.
type ReadRepo struct {
	DB *sql.DB
}

// ListMatches retorna as partidas com nomes dos times, opcionalmente
// filtradas por status
func (r *ReadRepo) ListMatches(ctx context.Context, status string) ([]MatchView, error) {
	const q = `
		SELECT m.id, m.home_team_id, ht.name, m.away_team_id, at.name,
			m.start_time, m.status,
			m.win_home_odd, m.draw_odd, m.win_away_odd,
			m.result, COALESCE(m.completion_mode, '')
		FROM matches m
		JOIN teams ht ON ht.id = m.home_team_id
		JOIN teams at ON at.id = m.away_team_id
		WHERE ($1 = '' OR m.status = $1)
		ORDER BY m.start_time;
	`
	rows, err := r.DB.QueryContext(ctx, q, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MatchView
	for rows.Next() {
		var v MatchView
		if err := rows.Scan(&v.ID, &v.HomeTeamID, &v.HomeTeamName, &v.AwayTeamID, &v.AwayTeamName,
			&v.StartTime, &v.Status,
			&v.Odds.WinHome, &v.Odds.Draw, &v.Odds.WinAway,
			&v.Result, &v.CompletionMode); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// GetMatch retorna a projeção de uma partida
func (r *ReadRepo) GetMatch(ctx context.Context, id string) (MatchView, error) {
	const q = `
		SELECT m.id, m.home_team_id, ht.name, m.away_team_id, at.name,
			m.start_time, m.status,
			m.win_home_odd, m.draw_odd, m.win_away_odd,
			m.result, COALESCE(m.completion_mode, '')
		FROM matches m
		JOIN teams ht ON ht.id = m.home_team_id
		JOIN teams at ON at.id = m.away_team_id
		WHERE m.id = $1;
	`
	var v MatchView
	err := r.DB.QueryRowContext(ctx, q, id).
		Scan(&v.ID, &v.HomeTeamID, &v.HomeTeamName, &v.AwayTeamID, &v.AwayTeamName,
			&v.StartTime, &v.Status,
			&v.Odds.WinHome, &v.Odds.Draw, &v.Odds.WinAway,
			&v.Result, &v.CompletionMode)
	return v, err
}

// BetHistory retorna as apostas do usuário com contexto da partida,
// mais recentes primeiro
func (r *ReadRepo) BetHistory(ctx context.Context, userID string) ([]BetView, error) {
	const q = `
		SELECT b.id, b.match_id, ht.name, at.name,
			b.outcome, b.stake_cents, b.odds_on_bet, b.status, b.created_at, b.settled_at
		FROM bets b
		JOIN matches m ON m.id = b.match_id
		JOIN teams ht ON ht.id = m.home_team_id
		JOIN teams at ON at.id = m.away_team_id
		WHERE b.user_id = $1
		ORDER BY b.created_at DESC;
	`
	rows, err := r.DB.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BetView
	for rows.Next() {
		var v BetView
		if err := rows.Scan(&v.ID, &v.MatchID, &v.HomeTeamName, &v.AwayTeamName,
			&v.Outcome, &v.StakeCents, &v.OddsOnBet, &v.Status, &v.CreatedAt, &v.SettledAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
