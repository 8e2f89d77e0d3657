package engine

import (
	"fmt"
	"math/big"
	"sort"
)

// State é o retrato serializável do engine, usado pelo snapshot em Postgres
// para sobreviver a restarts do ledger-service.
type State struct {
	CurrentRound int64            `json:"current_round"`
	Rounds       []RoundState     `json:"rounds"`
	Stakes       []StakeState     `json:"stakes"`
	Watermarks   map[string]int64 `json:"watermarks"`
	FeeWatermark int64            `json:"fee_watermark"`
}

type RoundState struct {
	Round             int64  `json:"round"`
	BettingOpen       bool   `json:"betting_open"`
	Settled           bool   `json:"settled"`
	WinningSide       string `json:"winning_side,omitempty"`
	TotalStakedACents int64  `json:"total_staked_a_cents"`
	TotalStakedBCents int64  `json:"total_staked_b_cents"`
	TotalFeesCents    int64  `json:"total_fees_cents"`
	PayoutRatio       string `json:"payout_ratio,omitempty"` // decimal, base 1e18
	FeesClaimed       bool   `json:"fees_claimed"`
}

type StakeState struct {
	Round        int64  `json:"round"`
	UserID       string `json:"user_id"`
	NetCents     int64  `json:"net_cents"`
	Side         string `json:"side"`
	Participated bool   `json:"participated"`
	Claimed      bool   `json:"claimed"`
}

// Snapshot copia o estado completo do engine sob o lock. Saída determinística
// (ordenada) para facilitar diff e testes.
func (e *Engine) Snapshot() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := State{
		CurrentRound: e.currentRound,
		Watermarks:   make(map[string]int64, len(e.watermarks)),
		FeeWatermark: e.feeWatermark,
	}

	for n, r := range e.rounds {
		rs := RoundState{
			Round:             n,
			BettingOpen:       r.bettingOpen,
			Settled:           r.settled,
			TotalStakedACents: r.totalStakedA,
			TotalStakedBCents: r.totalStakedB,
			TotalFeesCents:    r.totalFees,
			FeesClaimed:       r.feesClaimed,
		}
		if r.settled {
			rs.WinningSide = string(r.winningSide)
			rs.PayoutRatio = r.payoutRatio.String()
		}
		s.Rounds = append(s.Rounds, rs)
	}
	sort.Slice(s.Rounds, func(i, j int) bool { return s.Rounds[i].Round < s.Rounds[j].Round })

	for k, st := range e.stakes {
		s.Stakes = append(s.Stakes, StakeState{
			Round:        k.round,
			UserID:       k.user,
			NetCents:     st.netAmount,
			Side:         string(st.side),
			Participated: st.participated,
			Claimed:      st.claimed,
		})
	}
	sort.Slice(s.Stakes, func(i, j int) bool {
		if s.Stakes[i].Round != s.Stakes[j].Round {
			return s.Stakes[i].Round < s.Stakes[j].Round
		}
		return s.Stakes[i].UserID < s.Stakes[j].UserID
	})

	for u, wm := range e.watermarks {
		s.Watermarks[u] = wm
	}

	return s
}

// Restore substitui o estado do engine pelo snapshot. Usado no boot do
// ledger-service antes de aceitar tráfego.
func (e *Engine) Restore(s State) error {
	if s.CurrentRound < 1 {
		return fmt.Errorf("invalid snapshot: current_round=%d", s.CurrentRound)
	}

	rounds := make(map[int64]*round, len(s.Rounds))
	for _, rs := range s.Rounds {
		r := &round{
			bettingOpen:  rs.BettingOpen,
			settled:      rs.Settled,
			totalStakedA: rs.TotalStakedACents,
			totalStakedB: rs.TotalStakedBCents,
			totalFees:    rs.TotalFeesCents,
			feesClaimed:  rs.FeesClaimed,
		}
		if rs.Settled {
			side, ok := ParseSide(rs.WinningSide)
			if !ok {
				return fmt.Errorf("invalid snapshot: round %d winning side %q", rs.Round, rs.WinningSide)
			}
			ratio, ok := new(big.Int).SetString(rs.PayoutRatio, 10)
			if !ok {
				return fmt.Errorf("invalid snapshot: round %d payout ratio %q", rs.Round, rs.PayoutRatio)
			}
			r.winningSide = side
			r.payoutRatio = ratio
		}
		rounds[rs.Round] = r
	}
	if _, ok := rounds[s.CurrentRound]; !ok {
		return fmt.Errorf("invalid snapshot: current round %d missing", s.CurrentRound)
	}

	stakes := make(map[stakeKey]*stake, len(s.Stakes))
	for _, ss := range s.Stakes {
		side, ok := ParseSide(ss.Side)
		if !ok {
			return fmt.Errorf("invalid snapshot: stake %d/%s side %q", ss.Round, ss.UserID, ss.Side)
		}
		stakes[stakeKey{round: ss.Round, user: ss.UserID}] = &stake{
			netAmount:    ss.NetCents,
			side:         side,
			participated: ss.Participated,
			claimed:      ss.Claimed,
		}
	}

	watermarks := make(map[string]int64, len(s.Watermarks))
	for u, wm := range s.Watermarks {
		watermarks[u] = wm
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.currentRound = s.CurrentRound
	e.rounds = rounds
	e.stakes = stakes
	e.watermarks = watermarks
	e.feeWatermark = s.FeeWatermark

	return nil
}
