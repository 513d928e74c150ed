package evm

import "errors"

// Transaction-level validation errors. None of these touch state: a
// transaction rejected here leaves the journal empty.
var (
	ErrPrevRandaoNotSet       = errors.New("evm: prevrandao required from MERGE onward")
	ErrExcessBlobGasNotSet    = errors.New("evm: blob base fee required from CANCUN onward")
	ErrInvalidNonce           = errors.New("evm: transaction nonce does not match sender nonce")
	ErrSenderHasCode          = errors.New("evm: sender is not an EOA (EIP-3607)")
	ErrInsufficientFunds      = errors.New("evm: sender balance cannot cover gas and value")
	ErrIntrinsicGasTooLow     = errors.New("evm: gas limit below intrinsic cost")
	ErrGasLimitExceedsBlock   = errors.New("evm: transaction gas limit exceeds block gas limit")
	ErrInitCodeSizeExceeded   = errors.New("evm: initcode exceeds EIP-3860 size limit")
)
