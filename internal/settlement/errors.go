package settlement

import "errors"

// Erros de validação — rejeitados na chamada, sem estado mutado.
var (
	ErrUnknownGame       = errors.New("unknown game variant")
	ErrInvalidGuess      = errors.New("coinflip guess must be 0 or 1")
	ErrNumberOutOfRange  = errors.New("roulette number must be between 0 and 36")
	ErrInvalidColor      = errors.New("roulette color must be red or black")
	ErrConflictingParity = errors.New("even and odd legs are mutually exclusive")
	ErrColorWithZero     = errors.New("color and zero legs are mutually exclusive")
	ErrEmptySelection    = errors.New("roulette selection has no legs")
	ErrBetBelowMinimum   = errors.New("stake below minimum bet")
	ErrBetAboveLimit     = errors.New("stake above effective bet ceiling")
	ErrInvalidLimits     = errors.New("min bet must be positive and below max bet")
	ErrInvalidFeeRate    = errors.New("fee rate must be between 0 and 100")
)

// Erros de autorização.
var (
	ErrNotOracle = errors.New("resolution caller is not the randomness oracle")
	ErrNotOwner  = errors.New("caller is not the configured owner")
)
