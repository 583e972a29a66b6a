package service

import "errors"

// Failure classes surfaced to controllers. Anything not listed here is a
// storage failure that gets logged with detail and returned as an opaque
// internal error.
var (
	ErrInvalidCode        = errors.New("invalid code")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUsernameTaken      = errors.New("username already in use")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrNoActiveSession    = errors.New("no active session")
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyMember      = errors.New("already a member of this crew")
	ErrInviteExhausted    = errors.New("invite code has reached its maximum uses")
	ErrServer             = errors.New("server error")
)
