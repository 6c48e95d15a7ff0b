package services

import "errors"

// Failure taxonomy for the measurement/recommendation pipeline. Size, fit
// and color decisions fail loudly; only the measurement validator and the
// skin-tone classifier are allowed to degrade to defaults.
var (
	// ErrServiceUnavailable means the vision service is unconfigured or
	// unreachable.
	ErrServiceUnavailable = errors.New("vision service unavailable")

	// ErrMalformedResponse means the vision service replied but the reply
	// could not be parsed into the expected schema.
	ErrMalformedResponse = errors.New("malformed vision service response")

	// ErrInvalidSelection means the vision service chose a value outside the
	// caller-supplied valid set, e.g. a size the store does not carry.
	ErrInvalidSelection = errors.New("vision service selected an invalid value")

	// ErrNoFrames means the caller supplied no capture frames.
	ErrNoFrames = errors.New("no capture frames provided")
)
