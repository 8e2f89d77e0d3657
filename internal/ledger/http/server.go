package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/engine"
	"github.com/radieske/parimutuel-ledger-poc/internal/ledger/http/dto"
	"github.com/radieske/parimutuel-ledger-poc/pkg/contracts/events"
)

// Snapshotter persiste o retrato do engine após cada mutação (best-effort).
type Snapshotter interface {
	Save(ctx context.Context, s engine.State) error
}

// Publisher publica os eventos do ledger no Kafka (best-effort).
type Publisher interface {
	PublishStakePlaced(ctx context.Context, e events.StakePlaced) error
	PublishRoundSettled(ctx context.Context, e events.RoundSettled) error
	PublishWinningsClaimed(ctx context.Context, e events.WinningsClaimed) error
	PublishFeesWithdrawn(ctx context.Context, e events.FeesWithdrawn) error
}

// Server expõe a API REST do ledger pari-mutuel.
// Operações privilegiadas exigem o header X-Operator-Token.
type Server struct {
	log           *zap.Logger
	eng           *engine.Engine
	operatorToken string
	snap          Snapshotter // pode ser nil (testes)
	publ          Publisher   // pode ser nil (testes)

	OnOp    func(op string) // métricas (counter++ por operação)
	OnError func(op string) // métricas de erro por operação
}

func NewServer(log *zap.Logger, eng *engine.Engine, operatorToken string, snap Snapshotter, publ Publisher) *Server {
	return &Server{log: log, eng: eng, operatorToken: operatorToken, snap: snap, publ: publ}
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/rounds/deposit", s.deposit)      // POST
	mux.HandleFunc("/rounds/close", s.closeBetting)   // POST (operador)
	mux.HandleFunc("/rounds/settle", s.settle)        // POST (operador)
	mux.HandleFunc("/rounds/next", s.startNewRound)   // POST (operador)
	mux.HandleFunc("/rounds/current", s.currentRound) // GET
	mux.HandleFunc("/rounds/", s.roundByNumber)       // GET /rounds/{n} e /rounds/{n}/stakes
	mux.HandleFunc("/claims", s.claim)                // POST
	mux.HandleFunc("/fees/withdraw", s.withdrawFees)  // POST (operador)
	mux.HandleFunc("/config", s.config)               // GET
	return mux
}

// authorized valida o token do operador nas rotas privilegiadas
func (s *Server) authorized(r *http.Request) bool {
	return r.Header.Get("X-Operator-Token") == s.operatorToken
}

func (s *Server) deposit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	side, ok := engine.ParseSide(req.Side)
	if req.UserID == "" || !ok {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	rcpt, err := s.eng.Deposit(r.Context(), req.UserID, req.AmountCents, side)
	if err != nil {
		s.fail(w, "deposit", err)
		return
	}
	s.count("deposit")
	s.persist(r.Context())

	if s.publ != nil {
		_ = s.publ.PublishStakePlaced(r.Context(), events.StakePlaced{
			Round:       rcpt.Round,
			UserID:      req.UserID,
			Side:        req.Side,
			AmountCents: req.AmountCents,
			FeeCents:    rcpt.FeeCents,
			NetCents:    rcpt.NetCents,
		})
	}

	writeJSON(w, dto.DepositResponse{Round: rcpt.Round, FeeCents: rcpt.FeeCents, NetCents: rcpt.NetCents})
}

func (s *Server) closeBetting(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		http.Error(w, engine.ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	round := s.eng.CloseBetting()
	s.count("close_betting")
	s.persist(r.Context())

	writeJSON(w, map[string]int64{"round": round})
}

func (s *Server) settle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		http.Error(w, engine.ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}
	var req dto.SettleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	side, ok := engine.ParseSide(req.WinningSide)
	if !ok {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	info, err := s.eng.Settle(side)
	if err != nil {
		s.fail(w, "settle", err)
		return
	}
	s.count("settle")
	s.persist(r.Context())

	if s.publ != nil {
		_ = s.publ.PublishRoundSettled(r.Context(), events.RoundSettled{
			Round:             info.Round,
			WinningSide:       info.WinningSide,
			TotalStakedACents: info.TotalStakedACents,
			TotalStakedBCents: info.TotalStakedBCents,
			TotalFeesCents:    info.TotalFeesCents,
			PayoutRatio:       info.PayoutRatio,
			SettledAt:         time.Now().UTC(),
		})
	}

	writeJSON(w, roundResponse(info))
}

func (s *Server) startNewRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		http.Error(w, engine.ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	round, err := s.eng.StartNewRound()
	if err != nil {
		s.fail(w, "start_new_round", err)
		return
	}
	s.count("start_new_round")
	s.persist(r.Context())

	writeJSON(w, map[string]int64{"round": round})
}

func (s *Server) claim(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	var req dto.ClaimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}

	res, err := s.eng.ClaimAll(r.Context(), req.UserID)
	if err != nil {
		s.fail(w, "claim", err)
		return
	}
	s.count("claim")
	s.persist(r.Context())

	if s.publ != nil {
		_ = s.publ.PublishWinningsClaimed(r.Context(), events.WinningsClaimed{
			UserID:     req.UserID,
			TotalCents: res.TotalCents,
			Rounds:     res.Rounds,
			Watermark:  res.Watermark,
			Ts:         time.Now().UTC(),
		})
	}

	writeJSON(w, dto.ClaimResponse{TotalCents: res.TotalCents, Rounds: res.Rounds, Watermark: res.Watermark})
}

func (s *Server) withdrawFees(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !s.authorized(r) {
		http.Error(w, engine.ErrUnauthorized.Error(), http.StatusUnauthorized)
		return
	}

	res, err := s.eng.WithdrawFees(r.Context())
	if err != nil {
		s.fail(w, "withdraw_fees", err)
		return
	}
	s.count("withdraw_fees")
	s.persist(r.Context())

	if s.publ != nil {
		_ = s.publ.PublishFeesWithdrawn(r.Context(), events.FeesWithdrawn{
			TotalCents: res.TotalCents,
			Rounds:     res.Rounds,
			Watermark:  res.Watermark,
			Ts:         time.Now().UTC(),
		})
	}

	writeJSON(w, dto.ClaimResponse{TotalCents: res.TotalCents, Rounds: res.Rounds, Watermark: res.Watermark})
}

func (s *Server) currentRound(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	info, _ := s.eng.RoundInfo(s.eng.CurrentRound())
	writeJSON(w, roundResponse(info))
}

// roundByNumber atende GET /rounds/{n} e GET /rounds/{n}/stakes?userId=...
func (s *Server) roundByNumber(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/rounds/")
	parts := strings.SplitN(rest, "/", 2)
	n, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "round number required", http.StatusBadRequest)
		return
	}

	if len(parts) == 2 && parts[1] == "stakes" {
		userID := r.URL.Query().Get("userId")
		if userID == "" {
			http.Error(w, "userId required", http.StatusBadRequest)
			return
		}
		st, ok := s.eng.StakeInfo(n, userID)
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		writeJSON(w, dto.StakeResponse{
			Round:        st.Round,
			UserID:       st.UserID,
			NetCents:     st.NetCents,
			Side:         st.Side,
			Participated: st.Participated,
			Claimed:      st.Claimed,
		})
		return
	}

	info, ok := s.eng.RoundInfo(n)
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	writeJSON(w, roundResponse(info))
}

func (s *Server) config(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, dto.ConfigResponse{FeeBps: s.eng.FeeBps(), CurrentRound: s.eng.CurrentRound()})
}

// persist grava o snapshot do engine; falha vira warn, não derruba a operação
func (s *Server) persist(ctx context.Context) {
	if s.snap == nil {
		return
	}
	if err := s.snap.Save(ctx, s.eng.Snapshot()); err != nil {
		s.log.Warn("snapshot save failed", zap.Error(err))
	}
}

func (s *Server) count(op string) {
	if s.OnOp != nil {
		s.OnOp(op)
	}
}

// fail traduz os erros de negócio do engine para status HTTP
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if s.OnError != nil {
		s.OnError(op)
	}

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, engine.ErrZeroAmount):
		status = http.StatusBadRequest
	case errors.Is(err, engine.ErrRoundClosed),
		errors.Is(err, engine.ErrSideMismatch),
		errors.Is(err, engine.ErrPrecedingRoundNotSettled),
		errors.Is(err, engine.ErrAlreadySettled):
		status = http.StatusConflict
	case errors.Is(err, engine.ErrNothingToClaim),
		errors.Is(err, engine.ErrNoFeesToWithdraw):
		status = http.StatusNotFound
	case errors.Is(err, engine.ErrTransferFailed):
		status = http.StatusBadGateway
	}
	http.Error(w, err.Error(), status)
}

func roundResponse(info engine.RoundInfo) dto.RoundResponse {
	return dto.RoundResponse{
		Round:             info.Round,
		BettingOpen:       info.BettingOpen,
		Settled:           info.Settled,
		WinningSide:       info.WinningSide,
		TotalStakedACents: info.TotalStakedACents,
		TotalStakedBCents: info.TotalStakedBCents,
		TotalFeesCents:    info.TotalFeesCents,
		PayoutRatio:       info.PayoutRatio,
		FeesClaimed:       info.FeesClaimed,
	}
}

// writeJSON serializa e envia resposta JSON
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
