package rewards

import "errors"

var (
	// ErrNilState marks a ledger used before its state backend was bound.
	ErrNilState = errors.New("rewards: state not configured")
	// ErrNotAuthorized is returned when the caller is neither the ledger
	// administrator nor its authorized issuer, depending on the operation.
	ErrNotAuthorized = errors.New("rewards: not authorized")
	// ErrAmountMustBePositive rejects zero or negative credits.
	ErrAmountMustBePositive = errors.New("rewards: amount must be positive")
	// ErrInvalidAccount rejects the zero address as a credit target.
	ErrInvalidAccount = errors.New("rewards: invalid account")
	// ErrNilLogic rejects upgrades to a nil logic module.
	ErrNilLogic = errors.New("rewards: logic must not be nil")
)
