package registry

import "errors"

var (
	// ErrNilBackend marks a registry used before its backend was bound.
	ErrNilBackend = errors.New("registry: backend not configured")
	// ErrNotAuthorized gates administrator-only operations.
	ErrNotAuthorized = errors.New("registry: not authorized")
	// ErrInvalidLedgerAddress rejects the zero address as a ledger handle.
	ErrInvalidLedgerAddress = errors.New("registry: invalid ledger address")
	// ErrInvalidCreatorAddress rejects the zero address as a project creator.
	ErrInvalidCreatorAddress = errors.New("registry: invalid creator address")
	// ErrUnknownHandle is returned when no deployment backs the supplied
	// handle.
	ErrUnknownHandle = errors.New("registry: unknown handle")
	// ErrInvalidIndex marks deployment-log reads outside the recorded range.
	ErrInvalidIndex = errors.New("registry: invalid deployment index")
	// ErrNoDeployments is returned when the audit log is still empty.
	ErrNoDeployments = errors.New("registry: no deployments")
)
