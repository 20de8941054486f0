// Package common defines shared constants and sentinel errors used across
// client and server layers of MailKeeper. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Account registration errors.
	ErrInvalidUsername = errors.New("invalid username")
	ErrWeakPassword    = errors.New("weak password")
	ErrUsernameTaken   = errors.New("username taken")

	// Credential verification errors. Both must surface to the client as the
	// same generic message so that account existence cannot be probed.
	ErrUnknownAccount = errors.New("unknown account")
	ErrBadCredential  = errors.New("bad credential")

	// Session / dispatch errors.
	ErrNotAuthenticated = errors.New("not authenticated")
	ErrIndexOutOfRange  = errors.New("index out of range")
	ErrMalformedRequest = errors.New("malformed request")

	// Delivery errors.
	ErrUnsupportedDomain = errors.New("unsupported domain")
	ErrUnknownRecipient  = errors.New("unknown recipient")

	// Storage-level error for unexpected I/O failures.
	ErrStorage = errors.New("storage error")
)
