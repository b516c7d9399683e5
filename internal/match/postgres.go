package match

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"github.com/radieske/bet-ledger-engine/internal/domain"
)

// Postgres persiste partidas e aplica as transições de status sob lock de
// linha, garantindo monotonicidade mesmo com requisições concorrentes
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// Create insere uma nova partida scheduled
func (p *Postgres) Create(ctx context.Context, m domain.Match) error {
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO matches (id, home_team_id, away_team_id, start_time, status,
			win_home_odd, draw_odd, win_away_odd, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		m.ID, m.HomeTeamID, m.AwayTeamID, m.StartTime, m.Status,
		m.Odds.WinHome, m.Odds.Draw, m.Odds.WinAway, m.CreatedAt,
	)
	// FK violada => time inexistente
	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
		return ErrTeamNotFound
	}
	return err
}

// Get retorna uma partida pelo id
func (p *Postgres) Get(ctx context.Context, id string) (domain.Match, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, home_team_id, away_team_id, start_time, status,
			win_home_odd, draw_odd, win_away_odd, result, completion_mode, completed_at, created_at
		FROM matches WHERE id=$1`, id)
	return scanMatch(row)
}

// UpdateOdds troca as odds correntes, permitido somente enquanto scheduled.
// Apostas existentes não são tocadas: odds_on_bet é snapshot imutável.
func (p *Postgres) UpdateOdds(ctx context.Context, id string, odds domain.Odds) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE matches SET win_home_odd=$1, draw_odd=$2, win_away_odd=$3
		WHERE id=$4 AND status='scheduled'`,
		odds.WinHome, odds.Draw, odds.WinAway, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		// distingue inexistente de janela fechada
		var status string
		err := p.db.QueryRowContext(ctx, `SELECT status FROM matches WHERE id=$1`, id).Scan(&status)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return ErrOddsLocked
	}
	return nil
}

// Start aplica scheduled -> active. Sem efeitos colaterais sobre apostas.
func (p *Postgres) Start(ctx context.Context, id string) (domain.Match, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Match{}, err
	}
	defer tx.Rollback()

	m, err := lockMatch(ctx, tx, id)
	if err != nil {
		return domain.Match{}, err
	}
	if m.Status != domain.MatchScheduled {
		return domain.Match{}, ErrInvalidTransition
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE matches SET status='active' WHERE id=$1`, id); err != nil {
		return domain.Match{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Match{}, err
	}
	m.Status = domain.MatchActive
	return m, nil
}

// Complete aplica a transição terminal para completed. Retorna a partida e
// se a transição aconteceu agora (false = já estava completed, no-op).
// O lock serializa contra admissões de aposta em andamento.
func (p *Postgres) Complete(ctx context.Context, id string, result *domain.Outcome, mode domain.CompletionMode) (domain.Match, bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Match{}, false, err
	}
	defer tx.Rollback()

	m, err := lockMatch(ctx, tx, id)
	if err != nil {
		return domain.Match{}, false, err
	}

	if m.Status == domain.MatchCompleted {
		// idempotente: repetir devolve a partida como está. Divergência só
		// é conflito quando o resultado veio de fato conhecido; no retry de
		// um force-complete o sorteio novo é descartado em favor do gravado.
		if mode == domain.CompletionByResult && result != nil && (m.Result == nil || *m.Result != *result) {
			return domain.Match{}, false, ErrResultConflict
		}
		return m, false, nil
	}

	now := time.Now().UTC()
	var res any
	if result != nil {
		res = string(*result)
	}
	if _, err := tx.ExecContext(ctx, `
		UPDATE matches SET status='completed', result=$1, completion_mode=$2, completed_at=$3
		WHERE id=$4`, res, mode, now, id); err != nil {
		return domain.Match{}, false, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Match{}, false, err
	}

	m.Status = domain.MatchCompleted
	m.Result = result
	m.CompletionMode = mode
	m.CompletedAt = &now
	return m, true, nil
}

// lockMatch trava e lê a linha da partida dentro da transação
func lockMatch(ctx context.Context, tx *sql.Tx, id string) (domain.Match, error) {
	row := tx.QueryRowContext(ctx, `
		SELECT id, home_team_id, away_team_id, start_time, status,
			win_home_odd, draw_odd, win_away_odd, result, completion_mode, completed_at, created_at
		FROM matches WHERE id=$1 FOR UPDATE`, id)
	return scanMatch(row)
}

func scanMatch(row *sql.Row) (domain.Match, error) {
	var m domain.Match
	var result, mode sql.NullString
	var completedAt sql.NullTime
	err := row.Scan(&m.ID, &m.HomeTeamID, &m.AwayTeamID, &m.StartTime, &m.Status,
		&m.Odds.WinHome, &m.Odds.Draw, &m.Odds.WinAway, &result, &mode, &completedAt, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return domain.Match{}, ErrNotFound
	}
	if err != nil {
		return domain.Match{}, err
	}
	if result.Valid {
		r := domain.Outcome(result.String)
		m.Result = &r
	}
	if mode.Valid {
		m.CompletionMode = domain.CompletionMode(mode.String)
	}
	if completedAt.Valid {
		t := completedAt.Time
		m.CompletedAt = &t
	}
	return m, nil
}
