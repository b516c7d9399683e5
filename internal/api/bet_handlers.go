package api

import (
	"encoding/json"
	"net/http"

	"github.com/radieske/bet-ledger-engine/internal/api/dto"
	"github.com/radieske/bet-ledger-engine/internal/auth"
	"github.com/radieske/bet-ledger-engine/internal/betting"
	"github.com/radieske/bet-ledger-engine/internal/domain"
)

// placeBet admite uma aposta para o usuário da sessão. O header
// Idempotency-Key torna o retry de um timeout seguro: a mesma chave
// devolve a mesma aposta sem novo débito.
func (s *Server) placeBet(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	var req dto.PlaceBetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.MatchID == "" {
		http.Error(w, "match_id required", http.StatusBadRequest)
		return
	}

	bet, err := s.bets.PlaceBet(r.Context(), betting.PlaceBetInput{
		UserID:         claims.UserID,
		MatchID:        req.MatchID,
		Outcome:        domain.Outcome(req.Outcome),
		StakeCents:     req.StakeCents,
		IdempotencyKey: r.Header.Get("Idempotency-Key"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bet)
}

// myBets lista o histórico de apostas do usuário da sessão
func (s *Server) myBets(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	bets, err := s.reads.BetHistory(r.Context(), claims.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bets)
}
