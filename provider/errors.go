package provider

import "errors"

// Sentinel errors for model invocations.
var (
	ErrNoChoices       = errors.New("no completion choices returned")
	ErrUnknownProvider = errors.New("unknown provider kind")
)
