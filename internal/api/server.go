package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radieske/bet-ledger-engine/internal/api/dto"
	"github.com/radieske/bet-ledger-engine/internal/auth"
	"github.com/radieske/bet-ledger-engine/internal/betting"
	"github.com/radieske/bet-ledger-engine/internal/ledger"
	"github.com/radieske/bet-ledger-engine/internal/match"
	"github.com/radieske/bet-ledger-engine/internal/query"
	"github.com/radieske/bet-ledger-engine/internal/team"
	"github.com/radieske/bet-ledger-engine/internal/ws"
)

// Server expõe a API REST/WS do motor de apostas
type Server struct {
	log *zap.Logger

	jwt     *auth.JWTService
	authSvc *auth.Service
	bets    *betting.Service
	matches *match.Service
	teams   *team.Postgres
	wallet  *ledger.Postgres
	reads   *query.ReadRepo
	cache   *query.Cache
	hub     *ws.Hub
}

func NewServer(
	log *zap.Logger,
	jwt *auth.JWTService,
	authSvc *auth.Service,
	bets *betting.Service,
	matches *match.Service,
	teams *team.Postgres,
	wallet *ledger.Postgres,
	reads *query.ReadRepo,
	cache *query.Cache,
	hub *ws.Hub,
) *Server {
	return &Server{
		log:     log,
		jwt:     jwt,
		authSvc: authSvc,
		bets:    bets,
		matches: matches,
		teams:   teams,
		wallet:  wallet,
		reads:   reads,
		cache:   cache,
		hub:     hub,
	}
}

// Router monta as rotas da API
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Route("/v1", func(r chi.Router) {
		// público
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)
		r.Get("/teams", s.listTeams)
		r.Get("/teams/{id}", s.getTeam)
		r.Get("/matches", s.listMatches)
		r.Get("/matches/{id}", s.getMatch)
		r.Get("/ws", s.hub.HandleWS)

		// autenticado
		r.Group(func(r chi.Router) {
			r.Use(auth.Middleware(s.jwt))

			r.Post("/bets", s.placeBet)
			r.Get("/bets", s.myBets)
			r.Get("/wallet", s.getWallet)
			r.Post("/wallet/deposit", s.deposit)
			r.Get("/wallet/ledger", s.walletLedger)

			// admin
			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAdmin)

				r.Post("/teams", s.createTeam)
				r.Put("/teams/{id}", s.renameTeam)
				r.Delete("/teams/{id}", s.deleteTeam)

				r.Post("/matches", s.createMatch)
				r.Put("/matches/{id}/odds", s.updateOdds)
				r.Post("/matches/{id}/start", s.startMatch)
				r.Post("/matches/{id}/complete", s.completeMatch)
				r.Post("/matches/{id}/force-complete", s.forceCompleteMatch)
				r.Post("/matches/{id}/void", s.voidMatch)
			})
		})
	})

	return r
}

// writeJSON serializa a resposta em JSON com o status informado
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError mapeia os erros de domínio para status HTTP
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, betting.ErrInvalidAmount),
		errors.Is(err, betting.ErrInvalidOutcome),
		errors.Is(err, match.ErrSameTeams),
		errors.Is(err, match.ErrInvalidOdds),
		errors.Is(err, match.ErrInvalidResult),
		errors.Is(err, ledger.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken):
		status = http.StatusUnauthorized
	case errors.Is(err, betting.ErrMatchNotFound),
		errors.Is(err, match.ErrNotFound),
		errors.Is(err, match.ErrTeamNotFound),
		errors.Is(err, team.ErrNotFound),
		errors.Is(err, ledger.ErrWalletNotFound):
		status = http.StatusNotFound
	case errors.Is(err, betting.ErrMatchNotOpen),
		errors.Is(err, match.ErrInvalidTransition),
		errors.Is(err, match.ErrOddsLocked),
		errors.Is(err, match.ErrResultConflict),
		errors.Is(err, team.ErrReferenced),
		errors.Is(err, auth.ErrEmailTaken):
		status = http.StatusConflict
	case errors.Is(err, betting.ErrInsufficientFunds), errors.Is(err, ledger.ErrInsufficientFunds):
		status = http.StatusUnprocessableEntity
	}
	writeJSON(w, status, dto.ErrorResponse{Error: err.Error()})
}
