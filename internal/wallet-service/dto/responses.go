package dto

type WalletResponse struct {
	UserID       string `json:"userId"`
	WalletID     string `json:"walletId"`
	BalanceCents int64  `json:"balance_cents"`
}

type HoldResponse struct {
	HoldID string `json:"hold_id"`
	Status string `json:"status"`
}
