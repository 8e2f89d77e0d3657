package dto

type DepositResponse struct {
	Round    int64 `json:"round"`
	FeeCents int64 `json:"fee_cents"`
	NetCents int64 `json:"net_cents"`
}

type RoundResponse struct {
	Round             int64  `json:"round"`
	BettingOpen       bool   `json:"betting_open"`
	Settled           bool   `json:"settled"`
	WinningSide       string `json:"winning_side,omitempty"`
	TotalStakedACents int64  `json:"total_staked_a_cents"`
	TotalStakedBCents int64  `json:"total_staked_b_cents"`
	TotalFeesCents    int64  `json:"total_fees_cents"`
	PayoutRatio       string `json:"payout_ratio,omitempty"`
	FeesClaimed       bool   `json:"fees_claimed"`
}

type StakeResponse struct {
	Round        int64  `json:"round"`
	UserID       string `json:"userId"`
	NetCents     int64  `json:"net_cents"`
	Side         string `json:"side"`
	Participated bool   `json:"participated"`
	Claimed      bool   `json:"claimed"`
}

type ClaimResponse struct {
	TotalCents int64   `json:"total_cents"`
	Rounds     []int64 `json:"rounds"`
	Watermark  int64   `json:"watermark"`
}

type ConfigResponse struct {
	FeeBps       int64 `json:"fee_bps"`
	CurrentRound int64 `json:"current_round"`
}
