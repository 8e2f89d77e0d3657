package dto

type CreditRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}

type HoldRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"`
}

type HoldResponse struct {
	HoldID string `json:"hold_id"`
	Status string `json:"status"`
}

type CaptureRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}

type ReleaseRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}
