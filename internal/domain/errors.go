package domain

import "errors"

var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrPrecondition     = errors.New("action not available")
	ErrInFlight         = errors.New("generation already in flight")
	ErrInputsLocked     = errors.New("inputs are locked once generation results exist")
	ErrDownstreamExists = errors.New("downstream result exists")
	ErrUnknownAngle     = errors.New("unknown angle")
	ErrGeneration       = errors.New("generation failed")
	ErrSessionClosed    = errors.New("wizard session closed")
	ErrProviderFailure  = errors.New("provider failure")
)
