package engine

import "errors"

// Erros de negócio do ledger. Todas as rejeições são síncronas e determinísticas:
// a operação inteira falha sem efeito parcial.
var (
	ErrZeroAmount               = errors.New("zero amount")
	ErrRoundClosed              = errors.New("round closed for betting")
	ErrSideMismatch             = errors.New("side mismatch for existing stake")
	ErrPrecedingRoundNotSettled = errors.New("preceding round not settled")
	ErrAlreadySettled           = errors.New("round already settled")
	ErrNothingToClaim           = errors.New("nothing to claim")
	ErrNoFeesToWithdraw         = errors.New("no fees to withdraw")
	ErrTransferFailed           = errors.New("transfer failed")
	ErrUnauthorized             = errors.New("unauthorized")
)
