// Package erperr defines the sentinel errors shared by every subsystem.
// Callers wrap them with fmt.Errorf("%w: ...") and match with errors.Is.
package erperr

import "errors"

var (
	// ErrAuthentication covers bad credentials and missing sessions.
	ErrAuthentication = errors.New("authentication failed")
	// ErrAuthorization covers insufficient role for an operation.
	ErrAuthorization = errors.New("permission denied")
	// ErrValidation covers malformed input to a service call.
	ErrValidation = errors.New("invalid input")
	// ErrNotFound covers unknown entities, commands and workflows.
	ErrNotFound = errors.New("not found")
	// ErrConcurrency signals an optimistic-lock conflict.
	ErrConcurrency = errors.New("concurrent modification")
	// ErrTransaction signals an explicitly requested rollback.
	ErrTransaction = errors.New("transaction rolled back")
	// ErrDatabase covers failures of the underlying store.
	ErrDatabase = errors.New("database error")
	// ErrCrypto covers hashing primitive failures (never a password mismatch).
	ErrCrypto = errors.New("crypto error")
	// ErrToken covers signing failures, bad signatures and expired tokens.
	ErrToken = errors.New("invalid token")
	// ErrInternal covers invariant violations and unmet preconditions.
	ErrInternal = errors.New("internal error")
	// ErrBusiness covers domain rule violations.
	ErrBusiness = errors.New("business rule violation")
)
