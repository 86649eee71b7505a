package ledger

import "errors"

// User-facing operation errors. The API layer maps these onto apology
// responses; anything not listed here is treated as internal.
var (
	ErrUsernameRequired     = errors.New("must provide username")
	ErrPasswordRequired     = errors.New("must provide password")
	ErrConfirmationRequired = errors.New("password must be confirmed")
	ErrConfirmationMismatch = errors.New("password and confirmation must match")
	ErrUserExists           = errors.New("user already registered")
	ErrSymbolRequired       = errors.New("must provide stock symbol")
	ErrStockNotFound        = errors.New("stock not found")
	ErrInvalidShares        = errors.New("must provide positive number of shares")
	ErrNotOwned             = errors.New("must provide owned stock symbol")
	ErrInvalidAmount        = errors.New("must provide valid cash amount")
	ErrQuoteFailed          = errors.New("failed to lookup for stock")
)

// ValidationError carries a password-policy rejection reason verbatim
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}
