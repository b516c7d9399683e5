package ledger

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/radieske/bet-ledger-engine/internal/domain"
)

// Postgres implementa o ledger de carteiras em banco.
// Toda mutação de saldo acontece numa transação com lock pessimista na
// linha da carteira e registra exatamente um lançamento em wallet_ledger;
// o saldo é sempre recomputável a partir do log de lançamentos.
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// GetOrCreateWallet retorna a carteira do usuário, criando com saldo zero
// se ainda não existir
func (p *Postgres) GetOrCreateWallet(ctx context.Context, userID string) (domain.Wallet, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Wallet{}, err
	}
	defer tx.Rollback()

	w := domain.Wallet{UserID: userID}
	err = tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1`, userID).
		Scan(&w.ID, &w.BalanceCents)
	if err == sql.ErrNoRows {
		w.ID = uuid.NewString()
		if _, err = tx.ExecContext(ctx,
			`INSERT INTO wallets(id, user_id, balance_cents, version) VALUES($1,$2,0,1)`,
			w.ID, userID); err != nil {
			return domain.Wallet{}, err
		}
		w.BalanceCents = 0
	} else if err != nil {
		return domain.Wallet{}, err
	}

	if err = tx.Commit(); err != nil {
		return domain.Wallet{}, err
	}
	return w, nil
}

// Credit incrementa o saldo e registra o lançamento no ledger.
// Quando refBetID é informado, o índice único (wallet, reason, ref) torna a
// operação idempotente: um replay com a mesma referência não credita de novo.
func (p *Postgres) Credit(ctx context.Context, userID string, amountCents int64, reason string, refBetID *string) (int64, error) {
	if amountCents <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := CreditTx(ctx, tx, userID, amountCents, reason, refBetID)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Debit decrementa o saldo se houver fundos e registra o lançamento.
// Checagem de saldo e débito acontecem sob o mesmo lock de linha: dois
// débitos simultâneos nunca passam ambos se só um caberia no saldo.
func (p *Postgres) Debit(ctx context.Context, userID string, amountCents int64, reason string, refBetID *string) (int64, error) {
	if amountCents <= 0 {
		return 0, ErrInvalidAmount
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	newBalance, err := DebitTx(ctx, tx, userID, amountCents, reason, refBetID)
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, err
	}
	return newBalance, nil
}

// Balance retorna a carteira com o saldo corrente
func (p *Postgres) Balance(ctx context.Context, userID string) (domain.Wallet, error) {
	var w domain.Wallet
	w.UserID = userID
	err := p.db.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1`, userID).
		Scan(&w.ID, &w.BalanceCents)
	if err == sql.ErrNoRows {
		return domain.Wallet{}, ErrWalletNotFound
	}
	return w, err
}

// Entries lista os lançamentos do ledger do usuário, mais recentes primeiro
func (p *Postgres) Entries(ctx context.Context, userID string, limit int) ([]domain.LedgerEntry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := p.db.QueryContext(ctx, `
		SELECT l.id, l.wallet_id, l.delta_cents, l.reason, l.ref_bet_id, l.created_at
		FROM wallet_ledger l
		JOIN wallets w ON w.id = l.wallet_id
		WHERE w.user_id = $1
		ORDER BY l.id DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.LedgerEntry
	for rows.Next() {
		var e domain.LedgerEntry
		if err := rows.Scan(&e.ID, &e.WalletID, &e.DeltaCents, &e.Reason, &e.RefBetID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CreditTx aplica um crédito dentro de uma transação já aberta.
// Compartilhado com os repositórios de aposta/liquidação para que
// crédito e mudança de status fechem como unidade atômica.
func CreditTx(ctx context.Context, tx *sql.Tx, userID string, amountCents int64, reason string, refBetID *string) (int64, error) {
	var walletID string
	if err := tx.QueryRowContext(ctx,
		`SELECT id FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).Scan(&walletID); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrWalletNotFound
		}
		return 0, err
	}

	var newBalance int64
	if err := tx.QueryRowContext(ctx, `
		UPDATE wallets SET balance_cents = balance_cents + $1, version = version + 1
		WHERE id=$2
		RETURNING balance_cents`, amountCents, walletID).Scan(&newBalance); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, delta_cents, reason, ref_bet_id)
		VALUES($1,$2,$3,$4)`, walletID, amountCents, reason, refBetID); err != nil {
		return 0, err
	}

	return newBalance, nil
}

// DebitTx aplica um débito dentro de uma transação já aberta, falhando com
// ErrInsufficientFunds sem tocar o saldo quando não há fundos
func DebitTx(ctx context.Context, tx *sql.Tx, userID string, amountCents int64, reason string, refBetID *string) (int64, error) {
	var walletID string
	var balance int64
	if err := tx.QueryRowContext(ctx,
		`SELECT id, balance_cents FROM wallets WHERE user_id=$1 FOR UPDATE`, userID).
		Scan(&walletID, &balance); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrWalletNotFound
		}
		return 0, err
	}

	if balance < amountCents {
		return 0, ErrInsufficientFunds
	}

	var newBalance int64
	if err := tx.QueryRowContext(ctx, `
		UPDATE wallets SET balance_cents = balance_cents - $1, version = version + 1
		WHERE id=$2
		RETURNING balance_cents`, amountCents, walletID).Scan(&newBalance); err != nil {
		return 0, err
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO wallet_ledger(wallet_id, delta_cents, reason, ref_bet_id)
		VALUES($1,$2,$3,$4)`, walletID, -amountCents, reason, refBetID); err != nil {
		return 0, err
	}

	return newBalance, nil
}
