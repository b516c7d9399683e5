package domain

import "time"

// Razões padronizadas dos lançamentos no ledger.
const (
	LedgerReasonDeposit    = "deposit"
	LedgerReasonBetPlaced  = "bet_placed"
	LedgerReasonBetPayout  = "bet_payout"
	LedgerReasonBetRefund  = "bet_refund"
)

// Wallet é a carteira do usuário. O saldo é sempre derivável da soma dos
// lançamentos do ledger; nunca é alterado fora de um débito/crédito.
type Wallet struct {
	ID           string `json:"wallet_id"`
	UserID       string `json:"user_id"`
	BalanceCents int64  `json:"balance_cents"`
	Version      int64  `json:"-"`
}

// LedgerEntry é um lançamento imutável no ledger da carteira (append-only).
type LedgerEntry struct {
	ID         int64     `json:"id"`
	WalletID   string    `json:"wallet_id"`
	DeltaCents int64     `json:"delta_cents"`
	Reason     string    `json:"reason"`
	RefBetID   *string   `json:"ref_bet_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
