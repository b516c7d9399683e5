package api

import (
	"encoding/json"
	"net/http"

	"github.com/radieske/bet-ledger-engine/internal/api/dto"
	"github.com/radieske/bet-ledger-engine/internal/auth"
	"github.com/radieske/bet-ledger-engine/internal/domain"
)

// getWallet retorna (ou cria) a carteira e o saldo do usuário da sessão
func (s *Server) getWallet(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	wallet, err := s.wallet.GetOrCreateWallet(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{
		UserID:       claims.UserID,
		WalletID:     wallet.ID,
		BalanceCents: wallet.BalanceCents,
	})
}

// deposit credita saldo com razão "deposit"
func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.AmountCents <= 0 {
		http.Error(w, "amount_cents must be positive", http.StatusBadRequest)
		return
	}

	if _, err := s.wallet.Credit(r.Context(), claims.UserID, req.AmountCents, domain.LedgerReasonDeposit, nil); err != nil {
		writeError(w, err)
		return
	}

	wallet, err := s.wallet.Balance(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.WalletResponse{
		UserID:       claims.UserID,
		WalletID:     wallet.ID,
		BalanceCents: wallet.BalanceCents,
	})
}

// walletLedger lista os lançamentos do ledger do usuário
func (s *Server) walletLedger(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	entries, err := s.wallet.Entries(r.Context(), claims.UserID, 100)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
