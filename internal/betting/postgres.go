package betting

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/radieske/bet-ledger-engine/internal/domain"
	"github.com/radieske/bet-ledger-engine/internal/ledger"
)

// Postgres executa a admissão de apostas em banco.
// Todo o caminho de admissão — lock da partida, validações, débito da
// carteira e insert da aposta — roda numa única transação. O lock na linha
// da partida impede que uma aposta seja admitida contra uma partida que
// está sendo concluída ao mesmo tempo.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// FindByIdempotencyKey retorna a aposta já criada para (user, key), se houver
func (p *Postgres) FindByIdempotencyKey(ctx context.Context, userID, key string) (*domain.Bet, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT id, user_id, match_id, outcome, stake_cents, odds_on_bet, status, created_at
		FROM bets
		WHERE user_id=$1 AND idempotency_key=$2`, userID, key)

	var b domain.Bet
	err := row.Scan(&b.ID, &b.UserID, &b.MatchID, &b.Outcome, &b.StakeCents, &b.OddsOnBet, &b.Status, &b.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.IdempotencyKey = key
	return &b, nil
}

// PlaceBet admite uma aposta, checando as precondições na ordem do contrato:
// 1) partida existe e está aberta (scheduled)
// 2) stake > 0
// 3) outcome é um dos três resultados do 1x2
// 4) débito atômico na carteira (saldo checado sob o mesmo lock)
// Em qualquer falha nada é persistido; no sucesso a odd corrente do outcome
// é congelada em odds_on_bet e a aposta nasce pending.
func (p *Postgres) PlaceBet(ctx context.Context, in PlaceBetInput) (domain.Bet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Bet{}, err
	}
	defer tx.Rollback()

	// Lock na partida: serializa contra a transição de conclusão
	var status string
	var odds domain.Odds
	err = tx.QueryRowContext(ctx, `
		SELECT status, win_home_odd, draw_odd, win_away_odd
		FROM matches WHERE id=$1 FOR UPDATE`, in.MatchID).
		Scan(&status, &odds.WinHome, &odds.Draw, &odds.WinAway)
	if err == sql.ErrNoRows {
		return domain.Bet{}, ErrMatchNotFound
	}
	if err != nil {
		return domain.Bet{}, err
	}

	// Janela de aceitação: só partidas scheduled recebem apostas
	if domain.MatchStatus(status) != domain.MatchScheduled {
		return domain.Bet{}, ErrMatchNotOpen
	}

	if in.StakeCents <= 0 {
		return domain.Bet{}, ErrInvalidAmount
	}

	if !domain.ValidOutcome(in.Outcome) {
		return domain.Bet{}, ErrInvalidOutcome
	}

	bet := domain.Bet{
		ID:             uuid.NewString(),
		UserID:         in.UserID,
		MatchID:        in.MatchID,
		Outcome:        in.Outcome,
		StakeCents:     in.StakeCents,
		OddsOnBet:      odds.For(in.Outcome), // snapshot no momento da escrita
		Status:         domain.BetPending,
		IdempotencyKey: in.IdempotencyKey,
		CreatedAt:      time.Now().UTC(),
	}

	// Débito e aposta na mesma transação: nunca existe débito sem aposta
	// nem aposta sem débito
	if _, err := ledger.DebitTx(ctx, tx, in.UserID, in.StakeCents, domain.LedgerReasonBetPlaced, &bet.ID); err != nil {
		if err == ledger.ErrInsufficientFunds {
			return domain.Bet{}, ErrInsufficientFunds
		}
		return domain.Bet{}, err
	}

	var idem any
	if bet.IdempotencyKey != "" {
		idem = bet.IdempotencyKey
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO bets (id, user_id, match_id, outcome, stake_cents, odds_on_bet, status, idempotency_key, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)`,
		bet.ID, bet.UserID, bet.MatchID, bet.Outcome, bet.StakeCents, bet.OddsOnBet, bet.Status, idem, bet.CreatedAt,
	); err != nil {
		// Dois retries simultâneos com a mesma chave: quem perde o unique
		// index devolve a aposta que o vencedor já commitou. O débito desta
		// transação é desfeito pelo rollback.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" && bet.IdempotencyKey != "" {
			if existing, ferr := p.FindByIdempotencyKey(ctx, in.UserID, in.IdempotencyKey); ferr == nil && existing != nil {
				return *existing, nil
			}
		}
		return domain.Bet{}, err
	}

	if err := tx.Commit(); err != nil {
		return domain.Bet{}, err
	}
	return bet, nil
}
