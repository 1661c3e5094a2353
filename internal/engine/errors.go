package engine

import "errors"

// Trade rejections form a closed set. Callers match them with errors.Is; the
// engine never retries and never reports partial success.
var (
	ErrNotAuthenticated   = errors.New("user not authenticated")
	ErrInvalidQuantity    = errors.New("invalid quantity")
	ErrInvalidPrice       = errors.New("invalid stock price")
	ErrInvalidSide        = errors.New("invalid trade type")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrNoPosition         = errors.New("no shares available to sell")
	ErrInsufficientShares = errors.New("insufficient shares to sell")

	// ErrTradeNotRecorded marks a failure of the final ledger append. The
	// surrounding transaction rolls the position and balance writes back, so
	// no trade is left half-applied.
	ErrTradeNotRecorded = errors.New("trade not recorded")
)

// StoreError wraps an underlying ledger read/write failure. The engine does
// not interpret store error codes beyond "not found" on the position lookup.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return "ledger " + e.Op + ": " + e.Err.Error()
}

func (e *StoreError) Unwrap() error {
	return e.Err
}
