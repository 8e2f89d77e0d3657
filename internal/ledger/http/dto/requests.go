package dto

type DepositRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	Side        string `json:"side"` // "A" | "B"
}

type SettleRequest struct {
	WinningSide string `json:"winning_side"` // "A" | "B"
}

type ClaimRequest struct {
	UserID string `json:"userId"`
}
