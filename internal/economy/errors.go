package economy

import "errors"

var (
	// ErrInvalidAmount indicates a negative coin or XP amount.
	ErrInvalidAmount = errors.New("amount must not be negative")

	// ErrInsufficientFunds indicates the balance cannot cover a debit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrUnknownPerk indicates a perk id absent from the catalog.
	ErrUnknownPerk = errors.New("unknown perk")
)
