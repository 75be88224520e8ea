package ports

import "errors"

// Standard application-level errors.
// Adapters and core components wrap underlying errors with these standard
// errors so callers can branch with errors.Is.
var (
	// General Errors
	ErrUnknown            = errors.New("unknown error occurred")
	ErrInvalidRequest     = errors.New("invalid request parameters or format")
	ErrNotFound           = errors.New("resource not found")
	ErrTimeout            = errors.New("operation timed out")
	ErrConfigurationError = errors.New("invalid or missing configuration")

	// Ledger Errors
	//
	// ErrInsufficientFunds rejects a buy whose total cost exceeds available
	// cash; the engine skips the signal and continues. ErrTradeNotFound
	// means a sell referenced an id that is not among the open positions,
	// which indicates a caller bug and is fatal to the run.
	ErrInsufficientFunds = errors.New("insufficient funds for trade")
	ErrTradeNotFound     = errors.New("trade not found in open positions")

	// Exchange Specific Errors
	ErrExchangeUnavailable  = errors.New("exchange API is unavailable")
	ErrConnectionFailed     = errors.New("failed to connect to the exchange")
	ErrRateLimited          = errors.New("API rate limit exceeded")
	ErrAuthenticationFailed = errors.New("exchange authentication failed (check API keys)")
	ErrInvalidAPIKeys       = errors.New("invalid API keys or permissions")

	// Database Specific Errors
	ErrDuplicateEntry = errors.New("database record already exists")
	ErrDBConnection   = errors.New("database connection error")
	ErrQueryFailed    = errors.New("database query failed")
)
