package errors

import "errors"

var (
	ErrInvalid      = errors.New("invalid")
	ErrConflict     = errors.New("conflict")
	ErrAuthFailed   = errors.New("authentication failed")
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrNotFound     = errors.New("not found")
	ErrNoCode       = errors.New("no verification code found")
	ErrExpired      = errors.New("verification code expired")
	ErrMismatch     = errors.New("verification code mismatch")
	ErrFederation   = errors.New("federated identity error")
	ErrNotification = errors.New("notification failed")
	ErrTooMany      = errors.New("too many requests")
)

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}
