package events

import "time"

// Evento emitido após um saque de prêmios bem-sucedido (tópico "winnings_claimed").
type WinningsClaimed struct {
	UserID     string    `json:"user_id"`
	TotalCents int64     `json:"total_cents"`
	Rounds     []int64   `json:"rounds"` // rodadas pagas neste saque
	Watermark  int64     `json:"watermark"`
	Ts         time.Time `json:"ts"`
}

// Evento emitido após um saque de taxas do operador (tópico "fees_withdrawn").
type FeesWithdrawn struct {
	TotalCents int64     `json:"total_cents"`
	Rounds     []int64   `json:"rounds"`
	Watermark  int64     `json:"watermark"`
	Ts         time.Time `json:"ts"`
}
