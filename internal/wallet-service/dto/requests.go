package dto

type CreditRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref,omitempty"` // opcional p/ idempotência simples
}

type HoldRequest struct {
	UserID      string `json:"userId"`
	AmountCents int64  `json:"amount_cents"`
	ExternalRef string `json:"external_ref"` // ex: ref da stake
}

type CaptureRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}

type ReleaseRequest struct {
	UserID      string `json:"userId"`
	ExternalRef string `json:"external_ref"`
}
