package events

import "time"

// Evento emitido pela transição de conclusão da partida. O settlement-worker
// consome e re-executa a liquidação; como ela é idempotente, reprocessar a
// mesma partida é seguro.
type MatchCompleted struct {
	MatchID        string    `json:"match_id"`
	Result         string    `json:"result,omitempty"` // vazio quando anulada
	CompletionMode string    `json:"completion_mode"`  // "result" | "forced_random" | "voided"
	Ts             time.Time `json:"ts"`
}
