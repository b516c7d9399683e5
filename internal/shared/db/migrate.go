package db

import (
	"database/sql"
	"fmt"
)

// Migrate aplica o schema do ledger/apostas de forma idempotente
// (CREATE IF NOT EXISTS), na ordem das dependências entre tabelas
func Migrate(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'user',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS wallets (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL UNIQUE REFERENCES users(id),
			balance_cents BIGINT NOT NULL DEFAULT 0,
			version BIGINT NOT NULL DEFAULT 1,
			CHECK (balance_cents >= 0)
		)`,

		// Ledger append-only: o saldo da carteira é sempre recomputável
		// a partir da soma dos delta_cents
		`CREATE TABLE IF NOT EXISTS wallet_ledger (
			id BIGSERIAL PRIMARY KEY,
			wallet_id UUID NOT NULL REFERENCES wallets(id),
			delta_cents BIGINT NOT NULL,
			reason TEXT NOT NULL,
			ref_bet_id UUID,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_wallet_ledger_wallet ON wallet_ledger(wallet_id)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_wallet_ledger_ref
			ON wallet_ledger(wallet_id, reason, ref_bet_id) WHERE ref_bet_id IS NOT NULL`,

		`CREATE TABLE IF NOT EXISTS teams (
			id UUID PRIMARY KEY,
			name TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS matches (
			id UUID PRIMARY KEY,
			home_team_id UUID NOT NULL REFERENCES teams(id),
			away_team_id UUID NOT NULL REFERENCES teams(id),
			start_time TIMESTAMPTZ NOT NULL,
			status TEXT NOT NULL DEFAULT 'scheduled',
			win_home_odd DOUBLE PRECISION NOT NULL,
			draw_odd DOUBLE PRECISION NOT NULL,
			win_away_odd DOUBLE PRECISION NOT NULL,
			result TEXT,
			completion_mode TEXT,
			completed_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (home_team_id <> away_team_id),
			CHECK (win_home_odd >= 1.0 AND draw_odd >= 1.0 AND win_away_odd >= 1.0)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_matches_status ON matches(status)`,

		`CREATE TABLE IF NOT EXISTS bets (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id),
			match_id UUID NOT NULL REFERENCES matches(id),
			outcome TEXT NOT NULL,
			stake_cents BIGINT NOT NULL CHECK (stake_cents > 0),
			odds_on_bet DOUBLE PRECISION NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			idempotency_key TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			settled_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bets_user ON bets(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bets_match_status ON bets(match_id, status)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS uq_bets_idempotency
			ON bets(user_id, idempotency_key) WHERE idempotency_key IS NOT NULL`,
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
