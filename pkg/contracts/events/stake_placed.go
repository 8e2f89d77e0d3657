package events

// Evento publicado no tópico "stake_placed" a cada depósito aceito.
type StakePlaced struct {
	Round       int64  `json:"round"`
	UserID      string `json:"user_id"`
	Side        string `json:"side"` // "A" | "B"
	AmountCents int64  `json:"amount_cents"`
	FeeCents    int64  `json:"fee_cents"`
	NetCents    int64  `json:"net_cents"`
	TsUnixMs    int64  `json:"ts_unix_ms"`
}
