package events

import "time"

// Evento publicado no tópico "round_settled" quando o operador liquida a rodada.
// PayoutRatio é o multiplicador em ponto fixo 1e18, serializado como string
// decimal para não estourar int64 no JSON.
type RoundSettled struct {
	Round             int64     `json:"round"`
	WinningSide       string    `json:"winning_side"` // "A" | "B"
	TotalStakedACents int64     `json:"total_staked_a_cents"`
	TotalStakedBCents int64     `json:"total_staked_b_cents"`
	TotalFeesCents    int64     `json:"total_fees_cents"`
	PayoutRatio       string    `json:"payout_ratio"`
	SettledAt         time.Time `json:"settled_at"`
}
