package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket
// Type: subscribe | unsubscribe | ping
// Round: obrigatório para subscribe/unsubscribe ("*" assina todas as rodadas)
type ClientMsg struct {
	Type  string `json:"type"`  // subscribe | unsubscribe | ping
	Round string `json:"round"` // requerido em subscribe/unsubscribe
}

// RoundUpdate representa uma rodada liquidada enviada para clientes WebSocket
type RoundUpdate struct {
	Round   int64       `json:"round"`
	Payload interface{} `json:"payload"`
}
