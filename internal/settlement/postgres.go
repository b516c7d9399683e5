package settlement

import (
	"context"
	"database/sql"
	"math"

	"github.com/radieske/bet-ledger-engine/internal/domain"
	"github.com/radieske/bet-ledger-engine/internal/ledger"
)

// Postgres persiste a liquidação de apostas.
// Cada aposta é liquidada numa transação própria: crédito do prêmio e
// mudança de status fecham juntos ou não fecham. Uma queda no meio da
// liquidação da partida deixa apostas ainda pending, nunca uma aposta
// won sem crédito (ou o contrário), e a repetição do passe pula as
// apostas já terminais.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// ListPendingBets retorna as apostas pendentes de uma partida
func (p *Postgres) ListPendingBets(ctx context.Context, matchID string) ([]domain.Bet, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, user_id, match_id, outcome, stake_cents, odds_on_bet, status, created_at
		FROM bets
		WHERE match_id=$1 AND status='pending'
		ORDER BY created_at`, matchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Bet
	for rows.Next() {
		var b domain.Bet
		if err := rows.Scan(&b.ID, &b.UserID, &b.MatchID, &b.Outcome, &b.StakeCents, &b.OddsOnBet, &b.Status, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// SettleBet fecha uma aposta pendente como won (com crédito de
// stake * odds_on_bet) ou lost (sem crédito). Idempotente: aposta já
// terminal é ignorada.
func (p *Postgres) SettleBet(ctx context.Context, betID string, won bool) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b, ok, err := lockPending(ctx, tx, betID)
	if err != nil || !ok {
		return err
	}

	newStatus := domain.BetLost
	if won {
		newStatus = domain.BetWon
		payout := int64(math.Round(float64(b.StakeCents) * b.OddsOnBet))
		if _, err := ledger.CreditTx(ctx, tx, b.UserID, payout, domain.LedgerReasonBetPayout, &b.ID); err != nil {
			return err
		}
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bets SET status=$1, settled_at=NOW() WHERE id=$2`, newStatus, betID); err != nil {
		return err
	}

	return tx.Commit()
}

// CancelBet anula uma aposta pendente devolvendo o stake a 1.0.
// Idempotente pelo mesmo motivo de SettleBet.
func (p *Postgres) CancelBet(ctx context.Context, betID string) error {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	b, ok, err := lockPending(ctx, tx, betID)
	if err != nil || !ok {
		return err
	}

	if _, err := ledger.CreditTx(ctx, tx, b.UserID, b.StakeCents, domain.LedgerReasonBetRefund, &b.ID); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE bets SET status=$1, settled_at=NOW() WHERE id=$2`, domain.BetCancelled, betID); err != nil {
		return err
	}

	return tx.Commit()
}

// lockPending trava a linha da aposta e informa se ela ainda está pending
func lockPending(ctx context.Context, tx *sql.Tx, betID string) (domain.Bet, bool, error) {
	var b domain.Bet
	err := tx.QueryRowContext(ctx, `
		SELECT id, user_id, stake_cents, odds_on_bet, status
		FROM bets WHERE id=$1 FOR UPDATE`, betID).
		Scan(&b.ID, &b.UserID, &b.StakeCents, &b.OddsOnBet, &b.Status)
	if err == sql.ErrNoRows {
		return domain.Bet{}, false, nil
	}
	if err != nil {
		return domain.Bet{}, false, err
	}
	if b.Status != domain.BetPending {
		return domain.Bet{}, false, nil // já terminal, replay seguro
	}
	return b, true, nil
}
