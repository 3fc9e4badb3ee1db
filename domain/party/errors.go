package party

import "errors"

// Recoverable, user-facing failures. Each is surfaced as a private notice to
// the requesting connection only; none terminate the connection.
var (
	ErrPartyNameRequired = errors.New("Party name required.")
	ErrPartyExists       = errors.New("Party already exists.")
	ErrPartyNotFound     = errors.New("Party not found.")
	ErrWrongPassword     = errors.New("Wrong password.")
	ErrNoActiveParty     = errors.New("Join a party to chat with others!")

	// ErrInviteTargetOffline is reported when an invite names a display name
	// with no live connection behind it.
	ErrInviteTargetOffline = errors.New("user not found or offline")

	// ErrEmptyInput marks blank names and messages. Callers drop the request
	// silently instead of reporting it.
	ErrEmptyInput = errors.New("empty input")
)
