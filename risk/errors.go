// Package risk implements the pre-trade pessimistic reservation gate and
// the post-trade reconciliation that settles fills and cancels against
// it.
package risk

import "errors"

var (
	// ErrInsufficientFunds is returned when a participant's reservable
	// balance cannot cover a trade's pessimistic cost.
	ErrInsufficientFunds = errors.New("risk: insufficient funds")

	// ErrUserNotFound is returned when a command names an unknown
	// participant.
	ErrUserNotFound = errors.New("risk: user not found")

	// ErrSymbolNotFound is returned when a command names a symbol id
	// outside the configured symbol table.
	ErrSymbolNotFound = errors.New("risk: symbol not found")

	// ErrUnsupportedSymbolKind is returned for any symbol kind other
	// than ExchangePair, recognized but not implemented.
	ErrUnsupportedSymbolKind = errors.New("risk: unsupported symbol kind")
)
