package types

import errorsmod "cosmossdk.io/errors"

// Settlement sentinel errors. Codes are part of the ABCI result and must not
// be renumbered.
var (
	ErrInvalidRequest       = errorsmod.Register(Codespace, 2, "invalid request")
	ErrGameEnded            = errorsmod.Register(Codespace, 3, "game ended")
	ErrGameExpired          = errorsmod.Register(Codespace, 4, "game expired")
	ErrMarketNotResolved    = errorsmod.Register(Codespace, 5, "market not resolved")
	ErrAlreadyClaimed       = errorsmod.Register(Codespace, 6, "already claimed")
	ErrPredictionLost       = errorsmod.Register(Codespace, 7, "prediction lost")
	ErrWinnerRequired       = errorsmod.Register(Codespace, 8, "winner required for breach outcome")
	ErrInvalidWinnerAccount = errorsmod.Register(Codespace, 9, "invalid winner account")
	ErrInvalidOutcome       = errorsmod.Register(Codespace, 10, "invalid resolution outcome")
	ErrUnauthorized         = errorsmod.Register(Codespace, 11, "unauthorized")
	ErrInsufficientFunds    = errorsmod.Register(Codespace, 12, "insufficient funds")
	ErrDuplicateRecord      = errorsmod.Register(Codespace, 13, "record already exists")
	ErrNotFound             = errorsmod.Register(Codespace, 14, "not found")
	ErrOverflow             = errorsmod.Register(Codespace, 15, "arithmetic overflow")
)
