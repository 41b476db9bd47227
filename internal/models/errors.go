package models

import "errors"

// Sentinel errors surfaced by the repos and services. Handlers pick status
// codes with errors.Is against these.
var (
	ErrNotFound           = errors.New("event not found")
	ErrAlreadyReserved    = errors.New("you have already RSVPed to this event")
	ErrCapacityExceeded   = errors.New("event is at full capacity")
	ErrUnauthorized       = errors.New("not authorized")
	ErrEmailTaken         = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
)
