package dto

// Round é a visão read-side de uma rodada liquidada.
type Round struct {
	Round             int64  `json:"round"`
	WinningSide       string `json:"winning_side"`
	TotalStakedACents int64  `json:"total_staked_a_cents"`
	TotalStakedBCents int64  `json:"total_staked_b_cents"`
	TotalFeesCents    int64  `json:"total_fees_cents"`
	PayoutRatio       string `json:"payout_ratio"`
	SettledAt         string `json:"settled_at"`
}
