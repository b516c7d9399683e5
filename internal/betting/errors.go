package betting

import "errors"

// Falhas de admissão de aposta, cada precondição com seu erro próprio
var (
	ErrMatchNotFound     = errors.New("match not found")
	ErrMatchNotOpen      = errors.New("match not open for betting")
	ErrInvalidAmount     = errors.New("invalid stake amount")
	ErrInvalidOutcome    = errors.New("invalid outcome")
	ErrInsufficientFunds = errors.New("insufficient funds")
)
