package connection

import "errors"

var (
	// ErrExchange means the remote service rejected an authorization code
	// (expired, already used, redirect mismatch). Terminal for the current
	// callback; never retried.
	ErrExchange = errors.New("authorization code exchange rejected")

	// ErrRefresh means the remote service reported the refresh token itself
	// as invalid or revoked. Terminal: the user must reconnect. Distinct
	// from a transient transport failure, which is returned unwrapped.
	ErrRefresh = errors.New("refresh token rejected")

	// ErrNoLinkedAccount means account discovery exhausted every candidate
	// page without finding a linked business account. This is a remote-side
	// configuration problem, not a bug, and the message shown to the user
	// must say so.
	ErrNoLinkedAccount = errors.New("no linked business account found")

	// ErrUserNotFound means the backing user document does not exist.
	// Distinct from a user that exists but has no connection yet.
	ErrUserNotFound = errors.New("user not found")

	// ErrBadState means a callback state token could not be resolved to a
	// user identity.
	ErrBadState = errors.New("unknown or expired state token")
)
