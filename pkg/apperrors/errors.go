package apperrors

import "errors"

// Store errors
var (
	ErrNotFound     = errors.New("resource not found")
	ErrDuplicateKey = errors.New("duplicate key")
	ErrInvalidID    = errors.New("invalid id format")
)

// Authentication errors
var (
	ErrNoSuchAccount  = errors.New("no account with this email")
	ErrWrongPassword  = errors.New("wrong password")
	ErrSessionInvalid = errors.New("session invalid or expired")
)

// Request workflow errors
var (
	ErrNotARequest       = errors.New("notification is not a request")
	ErrAlreadyAccepted   = errors.New("request already accepted")
	ErrInvalidTransition = errors.New("invalid request status transition")
	ErrNotAddressee      = errors.New("notification is addressed to another user")
)

// Is returns whether err matches target or any of errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}
	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
