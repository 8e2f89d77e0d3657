package httpapi

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/radieske/parimutuel-ledger-poc/internal/rounds-service/cache"
	"github.com/radieske/parimutuel-ledger-poc/internal/rounds-service/dto"
	"github.com/radieske/parimutuel-ledger-poc/internal/rounds-service/repo"
)

// API expõe os endpoints REST de consulta de rodadas liquidadas
// Utiliza um repositório de leitura (Postgres) e cache (Redis)
type API struct {
	ReadRepo *repo.ReadRepo // acesso ao banco de dados
	Cache    *cache.Cache   // cache de rodadas
}

// Router retorna o roteador HTTP com os endpoints REST
func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/v1/rounds", a.listRounds)         // Lista rodadas liquidadas recentes
	r.Get("/v1/rounds/latest", a.latestRound) // Última rodada liquidada
	r.Get("/v1/rounds/{n}", a.getRound)       // Uma rodada específica
	return r
}

// writeJSON serializa a resposta em JSON e define o status HTTP
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// listRounds retorna as rodadas liquidadas mais recentes
func (a *API) listRounds(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 500 {
			limit = n
		}
	}
	rounds, err := a.ReadRepo.ListRounds(r.Context(), limit)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, rounds)
}

// latestRound resolve o número da última rodada pelo cache e delega ao lookup
func (a *API) latestRound(w http.ResponseWriter, r *http.Request) {
	n, ok, err := a.Cache.LatestRound(r.Context())
	if err != nil || !ok {
		// sem ponteiro no cache: cai no banco
		rounds, derr := a.ReadRepo.ListRounds(r.Context(), 1)
		if derr != nil || len(rounds) == 0 {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusOK, rounds[0])
		return
	}
	a.writeRound(w, r, n)
}

// getRound retorna uma rodada liquidada, preferencialmente do cache
func (a *API) getRound(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseInt(chi.URLParam(r, "n"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "round number required"})
		return
	}
	a.writeRound(w, r, n)
}

func (a *API) writeRound(w http.ResponseWriter, r *http.Request, n int64) {
	var fromCache dto.Round
	if ok, _ := a.Cache.GetRound(r.Context(), n, &fromCache); ok && fromCache.Round == n {
		writeJSON(w, http.StatusOK, fromCache)
		return
	}

	round, err := a.ReadRepo.GetRound(r.Context(), n)
	if err != nil {
		if err == sql.ErrNoRows {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}

	_ = a.Cache.SetRound(r.Context(), n, round, 30*time.Second) // salva no cache por 30s
	writeJSON(w, http.StatusOK, round)
}
