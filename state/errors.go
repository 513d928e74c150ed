package state

import "errors"

var (
	// ErrInsufficientBalance is returned when a transfer or create would
	// overdraw the sender.
	ErrInsufficientBalance = errors.New("state: insufficient balance for transfer")

	// ErrNonceOverflow is returned when an account's nonce is saturated.
	ErrNonceOverflow = errors.New("state: nonce overflow")

	// ErrCreateCollision is returned when the derived create address is
	// already occupied (non-zero nonce or existing code).
	ErrCreateCollision = errors.New("state: contract address collision")
)
