package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/bet-ledger-engine/internal/api/dto"
	"github.com/radieske/bet-ledger-engine/internal/domain"
	"github.com/radieske/bet-ledger-engine/internal/match"
	"github.com/radieske/bet-ledger-engine/internal/query"
)

// listMatches serve a listagem com cache Redis de TTL curto
func (s *Server) listMatches(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")

	var fromCache []query.MatchView
	if ok, _ := s.cache.GetMatches(r.Context(), status, &fromCache); ok {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	views, err := s.reads.ListMatches(r.Context(), status)
	if err != nil {
		writeError(w, err)
		return
	}

	_ = s.cache.SetMatches(r.Context(), status, views, 30*time.Second)
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) getMatch(w http.ResponseWriter, r *http.Request) {
	v, err := s.reads.GetMatch(r.Context(), chi.URLParam(r, "id"))
	if err == sql.ErrNoRows {
		writeError(w, match.ErrNotFound)
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) createMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.HomeTeamID == "" || req.AwayTeamID == "" || req.StartTime.IsZero() {
		http.Error(w, "home_team_id, away_team_id and start_time required", http.StatusBadRequest)
		return
	}

	m, err := s.matches.Create(r.Context(), match.CreateInput{
		HomeTeamID: req.HomeTeamID,
		AwayTeamID: req.AwayTeamID,
		StartTime:  req.StartTime,
		Odds: domain.Odds{
			WinHome: req.Odds.WinHome,
			Draw:    req.Odds.Draw,
			WinAway: req.Odds.WinAway,
		},
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.cache.InvalidateMatches(r.Context())
	writeJSON(w, http.StatusCreated, m)
}

func (s *Server) updateOdds(w http.ResponseWriter, r *http.Request) {
	var req dto.OddsPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	m, err := s.matches.UpdateOdds(r.Context(), chi.URLParam(r, "id"), domain.Odds{
		WinHome: req.WinHome,
		Draw:    req.Draw,
		WinAway: req.WinAway,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	s.cache.InvalidateMatches(r.Context())
	writeJSON(w, http.StatusOK, m)
}

func (s *Server) startMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.matches.Start(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.cache.InvalidateMatches(r.Context())
	writeJSON(w, http.StatusOK, m)
}

// completeMatch encerra com resultado conhecido e liquida as apostas
func (s *Server) completeMatch(w http.ResponseWriter, r *http.Request) {
	var req dto.CompleteMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Result == "" {
		http.Error(w, "result required", http.StatusBadRequest)
		return
	}

	m, err := s.matches.Complete(r.Context(), chi.URLParam(r, "id"), domain.Outcome(req.Result))
	if err != nil {
		writeError(w, err)
		return
	}
	s.cache.InvalidateMatches(r.Context())
	writeJSON(w, http.StatusOK, m)
}

// forceCompleteMatch encerra administrativamente com resultado sorteado
func (s *Server) forceCompleteMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.matches.ForceComplete(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.cache.InvalidateMatches(r.Context())
	writeJSON(w, http.StatusOK, m)
}

// voidMatch anula a partida devolvendo os stakes pendentes
func (s *Server) voidMatch(w http.ResponseWriter, r *http.Request) {
	m, err := s.matches.Void(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	s.cache.InvalidateMatches(r.Context())
	writeJSON(w, http.StatusOK, m)
}
